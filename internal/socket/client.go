// Package socket connects to the dispatch server's realtime event channel
package socket

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"github.com/kode4food/courier/pkg/api"
	"github.com/kode4food/courier/pkg/log"
)

type (
	// Client is a websocket connection that fans inbound job events out to
	// per-job and global handlers
	Client struct {
		conn   *websocket.Conn
		send   chan []byte
		done   chan struct{}
		closed sync.Once
		wg     sync.WaitGroup

		mu     sync.Mutex
		nextID uint64
		jobs   map[api.JobID]map[uint64]Handler
		global map[uint64]Handler
	}

	// Handler receives inbound job events
	Handler func(api.JobEvent)
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBufferSize = 16
)

var (
	ErrClosed       = errors.New("socket closed")
	ErrEmptyJobID   = errors.New("job id is required")
	ErrEmptyAddress = errors.New("socket url is required")
)

// Dial opens a websocket connection and starts its read and write loops
func Dial(ctx context.Context, url string) (*Client, error) {
	if url == "" {
		return nil, ErrEmptyAddress
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	c := &Client{
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
		jobs:   map[api.JobID]map[uint64]Handler{},
		global: map[uint64]Handler{},
	}
	c.wg.Go(c.readLoop)
	c.wg.Go(c.writeLoop)
	slog.Info("Socket connected", slog.String("url", url))
	return c, nil
}

// Subscribe registers h for events of one job. The server is asked to
// stream the job when its first handler is added, and told to stop when
// the returned function removes the last one
func (c *Client) Subscribe(
	id api.JobID, h func(api.JobEvent),
) (func(), error) {
	if id == "" {
		return nil, ErrEmptyJobID
	}

	c.mu.Lock()
	hs, ok := c.jobs[id]
	if !ok {
		hs = map[uint64]Handler{}
		c.jobs[id] = hs
	}
	c.nextID++
	key := c.nextID
	hs[key] = h
	c.mu.Unlock()

	if !ok {
		if err := c.write(api.FrameSubscribe, id); err != nil {
			c.remove(id, key)
			return nil, err
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if c.remove(id, key) {
				_ = c.write(api.FrameUnsubscribe, id)
			}
		})
	}, nil
}

// Handle registers h for every inbound event
func (c *Client) Handle(h func(api.JobEvent)) func() {
	c.mu.Lock()
	c.nextID++
	key := c.nextID
	c.global[key] = h
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.global, key)
	}
}

// Done is closed once the connection has terminated
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close sends a close frame and waits for the connection loops to exit
func (c *Client) Close() error {
	c.shutdown()
	c.wg.Wait()
	return nil
}

func (c *Client) shutdown() {
	c.closed.Do(func() {
		close(c.done)
	})
}

func (c *Client) remove(id api.JobID, key uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	hs, ok := c.jobs[id]
	if !ok {
		return false
	}
	delete(hs, key)
	if len(hs) > 0 {
		return false
	}
	delete(c.jobs, id)
	return true
}

func (c *Client) write(typ string, id api.JobID) error {
	data, err := json.Marshal(api.SubscribeRequest{
		Type: typ,
		Data: api.JobSubscription{JobID: id},
	})
	if err != nil {
		return err
	}
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case <-c.done:
		return ErrClosed
	case c.send <- data:
		return nil
	}
}

func (c *Client) readLoop() {
	defer c.shutdown()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway,
			) {
				slog.Warn("Socket read failed", log.Error(err))
			}
			return
		}
		c.dispatch(message)
	}
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			)
			return

		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteMessage(websocket.TextMessage, data)
			if err != nil {
				slog.Warn("Socket write failed", log.Error(err))
				c.shutdown()
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			if err != nil {
				c.shutdown()
				return
			}
		}
	}
}

func (c *Client) dispatch(message []byte) {
	var ev api.JobEvent
	if err := json.Unmarshal(message, &ev); err != nil || ev.Type == "" {
		slog.Debug("Ignoring socket frame",
			slog.String("frame", string(message)))
		return
	}

	for _, h := range c.handlersFor(ev) {
		h(ev)
	}
}

func (c *Client) handlersFor(ev api.JobEvent) []Handler {
	c.mu.Lock()
	defer c.mu.Unlock()

	res := make([]Handler, 0, len(c.global))
	for _, h := range c.global {
		res = append(res, h)
	}
	id := gjson.GetBytes(ev.Data, "jobId")
	if !id.Exists() {
		return res
	}
	for _, h := range c.jobs[api.JobID(id.String())] {
		res = append(res, h)
	}
	return res
}
