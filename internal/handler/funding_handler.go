package handler

import (
	"errors"
	"io"
	"log"
	"net/http"

	"campuspay/internal/middleware"
	"campuspay/internal/repository"
	"campuspay/internal/service"
	"campuspay/pkg/paystack"

	"github.com/gin-gonic/gin"
)

type FundingHandler struct {
	svc      *service.FundingService
	userRepo *repository.UserRepository
	gateway  *paystack.Client
}

func NewFundingHandler(svc *service.FundingService, userRepo *repository.UserRepository, gateway *paystack.Client) *FundingHandler {
	return &FundingHandler{svc: svc, userRepo: userRepo, gateway: gateway}
}

type InitFundingRequest struct {
	AmountKobo int64 `json:"amount_kobo" binding:"required"`
}

// Initialize starts a Paystack checkout session for the caller's wallet.
func (h *FundingHandler) Initialize(c *gin.Context) {
	var req InitFundingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := middleware.GetUserID(c)
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	session, err := h.svc.Initialize(c.Request.Context(), userID, u.Email, req.AmountKobo)
	if err != nil {
		if errors.Is(err, service.ErrFundingLimit) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("[Funding] initialize failed: user=%d amount=%d err=%v", userID, req.AmountKobo, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not start funding session"})
		return
	}
	c.JSON(http.StatusCreated, session)
}

// Verify confirms a funding reference with the gateway and credits the wallet.
// Idempotent: re-verifying a settled reference returns the completed row.
func (h *FundingHandler) Verify(c *gin.Context) {
	reference := c.Param("reference")
	txn, err := h.svc.Confirm(c.Request.Context(), reference)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFundingNotConfirmed):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrWalletNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown reference"})
		default:
			log.Printf("[Funding] verify failed: ref=%s err=%v", reference, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": txn})
}

// PaystackWebhook receives gateway events. The signature is checked against
// the raw body before anything is parsed.
func (h *FundingHandler) PaystackWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	signature := c.GetHeader("x-paystack-signature")
	if !h.gateway.VerifyWebhookSignature(body, signature) {
		log.Printf("[Funding] webhook signature mismatch from %s", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}
	ev, err := paystack.ParseWebhookEvent(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := h.svc.ConfirmFromWebhook(ev); err != nil {
		log.Printf("[Funding] webhook processing failed: event=%s ref=%s err=%v", ev.Event, ev.Data.Reference, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
