package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/tradepilot/backend/internal/contracts"
	"github.com/wonny/tradepilot/backend/pkg/logger"
)

const (
	streamPingInterval        = 30 * time.Second
	streamReconnectDelay      = 1 * time.Second
	streamReconnectMaxDelay   = 30 * time.Second
	streamMaxReconnectRetries = 10
)

// quoteMessage is the feed's wire format for a quote tick
type quoteMessage struct {
	Type          string  `json:"type"`
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Volume        int64   `json:"volume"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Timestamp     int64   `json:"timestamp"` // unix millis
}

// StreamClient maintains a WebSocket subscription to the quote feed.
// ⭐ SSOT: 실시간 시세 스트림 연결 관리는 이 클라이언트에서만
type StreamClient struct {
	url    string
	apiKey string
	logger *logger.Logger

	conn      *websocket.Conn
	connMu    sync.Mutex
	connected bool

	subscriptions map[string]bool
	subMu         sync.RWMutex

	onQuote      func(*contracts.MarketSnapshot)
	onDisconnect func()

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewStreamClient creates a quote stream client
func NewStreamClient(url, apiKey string, log *logger.Logger) *StreamClient {
	return &StreamClient{
		url:           url,
		apiKey:        apiKey,
		logger:        log,
		subscriptions: make(map[string]bool),
		stopCh:        make(chan struct{}),
	}
}

// OnQuote registers the tick callback (피드 → Provider.Update 연결용)
func (c *StreamClient) OnQuote(fn func(*contracts.MarketSnapshot)) { c.onQuote = fn }

// OnDisconnect registers the disconnect callback
func (c *StreamClient) OnDisconnect(fn func()) { c.onDisconnect = fn }

// Connect establishes the WebSocket connection and starts the read loop
func (c *StreamClient) Connect(ctx context.Context) error {
	if err := c.dial(ctx); err != nil {
		return fmt.Errorf("websocket connect: %w", err)
	}

	c.wg.Add(2)
	go c.readLoop()
	go c.pingLoop()

	c.logger.WithField("url", c.url).Info("Quote stream connected")
	return nil
}

// Close shuts the stream down
func (c *StreamClient) Close() {
	close(c.stopCh)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
	}
	c.connected = false
	c.connMu.Unlock()

	c.wg.Wait()
	c.logger.Info("Quote stream closed")
}

// Subscribe adds symbols to the live subscription
func (c *StreamClient) Subscribe(symbols []string) error {
	c.subMu.Lock()
	for _, symbol := range symbols {
		c.subscriptions[symbol] = true
	}
	c.subMu.Unlock()

	return c.sendSubscribe(symbols)
}

func (c *StreamClient) dial(ctx context.Context) error {
	header := map[string][]string{}
	if c.apiKey != "" {
		header["Authorization"] = []string{"Bearer " + c.apiKey}
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, header)
	if err != nil {
		return err
	}

	c.connMu.Lock()
	c.conn = conn
	c.connected = true
	c.connMu.Unlock()
	return nil
}

func (c *StreamClient) sendSubscribe(symbols []string) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if !c.connected || c.conn == nil {
		return fmt.Errorf("stream not connected")
	}

	msg := map[string]interface{}{
		"action":  "subscribe",
		"symbols": symbols,
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("subscribe write failed: %w", err)
	}
	return nil
}

// readLoop consumes quote messages until the stream stops
func (c *StreamClient) readLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.stopCh:
			return
		default:
		}

		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()
		if conn == nil {
			return
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.stopCh:
				return
			default:
			}

			c.logger.WithError(err).Warn("Quote stream read failed, reconnecting")
			if c.onDisconnect != nil {
				c.onDisconnect()
			}
			if !c.reconnect() {
				return
			}
			continue
		}

		c.handleMessage(data)
	}
}

// handleMessage decodes a tick and forwards it as a snapshot
func (c *StreamClient) handleMessage(data []byte) {
	var msg quoteMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.logger.WithError(err).Debug("Skipping malformed stream message")
		return
	}
	if msg.Type != "quote" || msg.Symbol == "" || msg.Price <= 0 {
		return
	}

	snap := &contracts.MarketSnapshot{
		Symbol:        msg.Symbol,
		Price:         msg.Price,
		Change:        msg.Change,
		ChangePercent: msg.ChangePercent,
		Volume:        msg.Volume,
		High:          msg.High,
		Low:           msg.Low,
		FetchedAt:     time.UnixMilli(msg.Timestamp),
	}
	if msg.Timestamp == 0 {
		snap.FetchedAt = time.Now()
	}

	if c.onQuote != nil {
		c.onQuote(snap)
	}
}

// reconnect retries the connection with exponential backoff.
// 재연결 성공 시 기존 구독을 다시 보냄
func (c *StreamClient) reconnect() bool {
	delay := streamReconnectDelay

	for attempt := 1; attempt <= streamMaxReconnectRetries; attempt++ {
		select {
		case <-c.stopCh:
			return false
		case <-time.After(delay):
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := c.dial(ctx)
		cancel()
		if err == nil {
			c.subMu.RLock()
			symbols := make([]string, 0, len(c.subscriptions))
			for symbol := range c.subscriptions {
				symbols = append(symbols, symbol)
			}
			c.subMu.RUnlock()

			if len(symbols) > 0 {
				if err := c.sendSubscribe(symbols); err != nil {
					c.logger.WithError(err).Warn("Resubscribe failed after reconnect")
				}
			}
			c.logger.WithField("attempt", attempt).Info("Quote stream reconnected")
			return true
		}

		c.logger.WithFields(map[string]interface{}{
			"attempt": attempt,
			"error":   err.Error(),
		}).Warn("Quote stream reconnect failed")

		delay *= 2
		if delay > streamReconnectMaxDelay {
			delay = streamReconnectMaxDelay
		}
	}
	return false
}

// pingLoop keeps the connection alive
func (c *StreamClient) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(streamPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.connMu.Lock()
			if c.connected && c.conn != nil {
				if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					c.logger.WithError(err).Debug("Ping failed")
				}
			}
			c.connMu.Unlock()
		}
	}
}
