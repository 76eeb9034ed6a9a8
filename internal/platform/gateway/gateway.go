// Package gateway implements the platform event source over a websocket
// connection. It dials the gateway, identifies with the bot token, reads
// JSON event frames, and dispatches message events to registered handlers.
// The read loop reconnects with capped exponential backoff; handler errors
// are logged and never stop delivery.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/r9klabs/r9kbot/internal/platform"
)

const (
	// frame opcodes on the wire
	opIdentify = "identify"
	opEvent    = "event"

	writeTimeout     = 10 * time.Second
	reconnectBase    = time.Second
	reconnectCeiling = time.Minute
)

// frame is the envelope for every gateway message.
type frame struct {
	Op    string          `json:"op"`
	Type  string          `json:"t,omitempty"`
	Data  json.RawMessage `json:"d,omitempty"`
	Token string          `json:"token,omitempty"`
}

// Client is a reconnecting gateway consumer. Register handlers before
// calling Run.
type Client struct {
	URL   string
	Token string
	Log   zerolog.Logger

	// dial is swapped in tests to inject a pipe-backed connection.
	dial func(ctx context.Context, url string) (*websocket.Conn, error)

	handlers map[platform.EventKind][]platform.Handler
}

// New constructs a gateway client for the given endpoint and credential.
func New(url, token string, log zerolog.Logger) *Client {
	return &Client{
		URL:   url,
		Token: token,
		Log:   log,
		dial: func(ctx context.Context, url string) (*websocket.Conn, error) {
			con, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
			return con, err
		},
		handlers: make(map[platform.EventKind][]platform.Handler),
	}
}

// On registers a handler for an event kind. Not safe to call after Run.
func (c *Client) On(kind platform.EventKind, h platform.Handler) {
	c.handlers[kind] = append(c.handlers[kind], h)
}

// Run connects and consumes events until ctx is cancelled. Connection drops
// trigger a reconnect with exponential backoff; Run only returns the context
// error.
func (c *Client) Run(ctx context.Context) error {
	backoff := reconnectBase
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := c.runOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Log.Warn().Err(err).Dur("retry_in", backoff).Msg("gateway connection lost")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > reconnectCeiling {
			backoff = reconnectCeiling
		}
	}
}

// runOnce dials, identifies, and reads frames until the connection fails.
func (c *Client) runOnce(ctx context.Context) error {
	con, err := c.dial(ctx, c.URL)
	if err != nil {
		return fmt.Errorf("gateway dial: %w", err)
	}
	defer con.Close()

	// Close the socket when ctx ends so the blocking read returns.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			con.Close()
		case <-done:
		}
	}()

	if err := c.identify(con); err != nil {
		return err
	}
	c.Log.Info().Str("url", c.URL).Msg("gateway connected")

	for {
		var f frame
		if err := con.ReadJSON(&f); err != nil {
			return fmt.Errorf("gateway read: %w", err)
		}
		if f.Op != opEvent {
			continue
		}
		c.dispatch(ctx, f)
	}
}

func (c *Client) identify(con *websocket.Conn) error {
	con.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := con.WriteJSON(frame{Op: opIdentify, Token: c.Token}); err != nil {
		return fmt.Errorf("gateway identify: %w", err)
	}
	return nil
}

func (c *Client) dispatch(ctx context.Context, f frame) {
	kind := platform.EventKind(f.Type)
	hs := c.handlers[kind]
	if len(hs) == 0 {
		return
	}

	var ev platform.Event
	if err := json.Unmarshal(f.Data, &ev); err != nil {
		c.Log.Error().Err(err).Str("type", f.Type).Msg("malformed event payload")
		return
	}
	ev.Kind = kind

	for _, h := range hs {
		if err := h(ctx, ev); err != nil {
			c.Log.Error().Err(err).
				Str("type", f.Type).
				Str("message_id", ev.MessageID).
				Msg("event handler failed")
		}
	}
}
