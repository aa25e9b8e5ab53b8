package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"gtask_miniapp/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	feedSendBuffer = 8
	feedWriteWait  = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type feedClient struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *feedClient) close() {
	c.once.Do(func() {
		close(c.done)
	})
}

// BalanceFeed pushes live balance updates to connected mini-app clients. One
// connection per telegram id; a new connection replaces the old one. A user
// with no connection simply misses the push, the balance is still queryable.
type BalanceFeed struct {
	mu      sync.RWMutex
	clients map[int64]*feedClient
}

func NewBalanceFeed() *BalanceFeed {
	return &BalanceFeed{
		clients: make(map[int64]*feedClient),
	}
}

func NewBalanceFeedRoutes(handler *gin.RouterGroup, feed *BalanceFeed) {
	h := handler.Group("/ws")

	h.GET("/:telegram_id", feed.handleWebSocket)
}

func (f *BalanceFeed) handleWebSocket(c *gin.Context) {
	log := logger.Logger()

	uID := c.Param("telegram_id")
	telegramID, err := strconv.ParseInt(uID, 10, 64)
	if err != nil {
		log.Error("invalid telegram_id on ws connect", zap.String("telegram_id", uID))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid telegram_id"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &feedClient{
		conn: conn,
		send: make(chan []byte, feedSendBuffer),
		done: make(chan struct{}),
	}

	f.mu.Lock()
	if old, ok := f.clients[telegramID]; ok {
		old.close()
	}
	f.clients[telegramID] = client
	f.mu.Unlock()

	go f.writeLoop(telegramID, client)
	go f.readLoop(telegramID, client)
}

// writeLoop is the sole writer on the connection. Each frame gets a write
// deadline so a stalled peer fails the write instead of wedging the loop.
func (f *BalanceFeed) writeLoop(telegramID int64, client *feedClient) {
	defer client.conn.Close()

	for {
		select {
		case <-client.done:
			return
		case payload := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := client.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Logger().Warn("failed to push balance update",
					zap.Int64("telegram_id", telegramID),
					zap.Error(err))
				client.close()
				return
			}
		}
	}
}

// readLoop drains inbound frames (the feed is push-only) and deregisters the
// client when the peer goes away.
func (f *BalanceFeed) readLoop(telegramID int64, client *feedClient) {
	defer func() {
		client.close()
		f.mu.Lock()
		if f.clients[telegramID] == client {
			delete(f.clients, telegramID)
		}
		f.mu.Unlock()
	}()

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Logger().Warn("websocket unexpected close",
					zap.Int64("telegram_id", telegramID),
					zap.Error(err))
			}
			return
		}
	}
}

type balanceUpdate struct {
	Type       string `json:"type"`
	TelegramID int64  `json:"telegram_id"`
	Balance    string `json:"balance"`
}

// PublishBalance hands the update to the client's write loop and returns
// immediately. A client whose buffer is full is not keeping up; the update is
// dropped rather than stalling the caller, the next push carries the fresh
// balance anyway.
func (f *BalanceFeed) PublishBalance(telegramID int64, balance decimal.Decimal) {
	f.mu.RLock()
	client, ok := f.clients[telegramID]
	f.mu.RUnlock()
	if !ok {
		return
	}

	payload, err := json.Marshal(balanceUpdate{
		Type:       "balance_update",
		TelegramID: telegramID,
		Balance:    balance.StringFixed(2),
	})
	if err != nil {
		logger.Logger().Error("failed to marshal balance update", zap.Error(err))
		return
	}

	select {
	case client.send <- payload:
	case <-client.done:
	default:
		logger.Logger().Warn("balance update dropped, client not keeping up",
			zap.Int64("telegram_id", telegramID))
	}
}
