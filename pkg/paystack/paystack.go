package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Client talks to the Paystack REST API for card/bank checkout. Amounts are
// kobo throughout, which is also Paystack's native unit for NGN.
type Client struct {
	BaseURL   string
	SecretKey string
	client    *http.Client
}

func NewClient(baseURL, secretKey string) *Client {
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}
	return &Client{
		BaseURL:   baseURL,
		SecretKey: secretKey,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// InitializeRequest starts a hosted checkout session.
type InitializeRequest struct {
	Email       string `json:"email"`
	AmountKobo  int64  `json:"amount"`
	Reference   string `json:"reference"`
	CallbackURL string `json:"callback_url,omitempty"`
	Currency    string `json:"currency,omitempty"`
}

// InitializeResponse carries the checkout URL the caller redirects to.
type InitializeResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// VerifyResponse is the subset of the verify payload the ledger needs.
type VerifyResponse struct {
	Status     string `json:"status"` // success | failed | abandoned
	Reference  string `json:"reference"`
	AmountKobo int64  `json:"amount"`
	Currency   string `json:"currency"`
	PaidAt     string `json:"paid_at"`
	Channel    string `json:"channel"`
}

type apiEnvelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Initialize creates a checkout session for the given email and amount.
func (c *Client) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResponse, error) {
	if req.Currency == "" {
		req.Currency = "NGN"
	}
	body, _ := json.Marshal(req)
	data, err := c.post(ctx, "/transaction/initialize", body)
	if err != nil {
		return nil, err
	}
	var out InitializeResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Verify fetches the final state of a transaction by reference.
func (c *Client) Verify(ctx context.Context, reference string) (*VerifyResponse, error) {
	data, err := c.get(ctx, "/transaction/verify/"+reference)
	if err != nil {
		return nil, err
	}
	var out VerifyResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyWebhookSignature checks the x-paystack-signature header: HMAC-SHA512
// of the raw body keyed with the secret key.
func (c *Client) VerifyWebhookSignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha512.New, []byte(c.SecretKey))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// WebhookEvent is the envelope Paystack posts to the webhook endpoint.
type WebhookEvent struct {
	Event string         `json:"event"` // e.g. charge.success
	Data  VerifyResponse `json:"data"`
}

func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var ev WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

func (c *Client) post(ctx context.Context, path string, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("[Paystack] %s %s status=%d body=%s", req.Method, req.URL.Path, resp.StatusCode, string(respBody))
		return nil, fmt.Errorf("paystack api: %d %s", resp.StatusCode, string(respBody))
	}
	var env apiEnvelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, err
	}
	if !env.Status {
		return nil, fmt.Errorf("paystack api: %s", env.Message)
	}
	return env.Data, nil
}
