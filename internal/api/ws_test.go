package api

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceFeed_PushRoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	feed := NewBalanceFeed()
	router := gin.New()
	NewBalanceFeedRoutes(router.Group("/api/v1"), feed)

	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws/1001"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		feed.mu.RLock()
		defer feed.mu.RUnlock()
		_, ok := feed.clients[1001]
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	feed.PublishBalance(1001, decimal.RequireFromString("12.50"))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var update balanceUpdate
	require.NoError(t, json.Unmarshal(payload, &update))
	assert.Equal(t, "balance_update", update.Type)
	assert.Equal(t, int64(1001), update.TelegramID)
	assert.Equal(t, "12.50", update.Balance)
}

func TestBalanceFeed_PublishDoesNotBlockOnStalledClient(t *testing.T) {
	feed := NewBalanceFeed()

	// a registered client whose write loop is not draining
	client := &feedClient{
		send: make(chan []byte, feedSendBuffer),
		done: make(chan struct{}),
	}
	feed.clients[1001] = client

	published := make(chan struct{})
	go func() {
		defer close(published)
		for i := 0; i < feedSendBuffer+5; i++ {
			feed.PublishBalance(1001, decimal.RequireFromString("1.00"))
		}
	}()

	select {
	case <-published:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a client that is not reading")
	}

	// overflow is dropped, not queued
	assert.Len(t, client.send, feedSendBuffer)
}

func TestBalanceFeed_PublishToClosedClient(t *testing.T) {
	feed := NewBalanceFeed()

	client := &feedClient{
		send: make(chan []byte),
		done: make(chan struct{}),
	}
	feed.clients[1001] = client
	client.close()

	published := make(chan struct{})
	go func() {
		defer close(published)
		feed.PublishBalance(1001, decimal.RequireFromString("1.00"))
	}()

	select {
	case <-published:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a closed client")
	}
}

func TestBalanceFeed_PublishWithoutClientIsNoop(t *testing.T) {
	feed := NewBalanceFeed()
	feed.PublishBalance(404, decimal.RequireFromString("1.00"))
}
