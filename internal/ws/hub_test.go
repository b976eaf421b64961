package ws

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(userID uint, buffer int) *Client {
	return &Client{UserID: userID, Send: make(chan []byte, buffer)}
}

func TestPublishFansOutToAllUserConnections(t *testing.T) {
	h := NewHub()
	a := newTestClient(7, 1)
	b := newTestClient(7, 1)
	other := newTestClient(8, 1)
	h.Register(a)
	h.Register(b)
	h.Register(other)

	h.Publish(7, "wallet.credited", map[string]int64{"amount_kobo": 500})

	require.Len(t, a.Send, 1)
	require.Len(t, b.Send, 1)
	assert.Len(t, other.Send, 0)
	assert.Contains(t, string(<-a.Send), "wallet.credited")
}

func TestPublishSkipsSlowConsumer(t *testing.T) {
	h := NewHub()
	c := newTestClient(7, 1)
	h.Register(c)

	h.Publish(7, "wallet.credited", nil)
	h.Publish(7, "wallet.credited", nil) // buffer full, must not block
	assert.Len(t, c.Send, 1)
}

func TestPublishAfterCloseDoesNotPanic(t *testing.T) {
	h := NewHub()
	c := newTestClient(7, 1)
	h.Register(c)
	c.Close()

	h.Publish(7, "wallet.credited", nil)
	assert.Equal(t, 0, h.ClientCount())
}

func TestPublishRacingClose(t *testing.T) {
	h := NewHub()
	clients := make([]*Client, 20)
	for i := range clients {
		clients[i] = newTestClient(7, 1)
		h.Register(clients[i])
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			h.Publish(7, "wallet.credited", nil)
		}
	}()
	go func() {
		defer wg.Done()
		for _, c := range clients {
			c.Close()
		}
	}()
	wg.Wait()
	assert.Equal(t, 0, h.ClientCount())
}

func TestCloseIsIdempotent(t *testing.T) {
	h := NewHub()
	c := newTestClient(7, 1)
	h.Register(c)
	c.Close()
	c.Close()
	assert.Equal(t, 0, h.ClientCount())
}
