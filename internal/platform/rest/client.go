// Package rest implements platform.Actions against the chat platform's HTTP
// API. Requests are retried with backoff on transient failures; every action
// is best-effort from the caller's point of view, so a hard failure comes
// back as a wrapped ErrPlatformAction for logging rather than rollback.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

// ErrPlatformAction wraps any failed moderation action.
var ErrPlatformAction = errors.New("platform action failed")

// leveledZerolog adapts zerolog to retryablehttp's LeveledLogger. Client
// ERRORs are demoted to WARN because the client retries them.
type leveledZerolog struct {
	inner zerolog.Logger
}

func (l leveledZerolog) Error(msg string, keysAndValues ...any) {
	l.inner.Warn().Fields(keysAndValues).Msg(msg)
}

func (l leveledZerolog) Warn(msg string, keysAndValues ...any) {
	l.inner.Warn().Fields(keysAndValues).Msg(msg)
}

func (l leveledZerolog) Info(msg string, keysAndValues ...any) {
	l.inner.Info().Fields(keysAndValues).Msg(msg)
}

func (l leveledZerolog) Debug(msg string, keysAndValues ...any) {
	l.inner.Debug().Fields(keysAndValues).Msg(msg)
}

// Client calls the platform REST API. Construct with New.
type Client struct {
	base  string
	token string
	http  *retryablehttp.Client
}

// New builds a client for the API at baseURL authenticating with token.
func New(baseURL, token string, log zerolog.Logger) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 250 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.HTTPClient.Timeout = 30 * time.Second
	rc.Logger = retryablehttp.LeveledLogger(leveledZerolog{inner: log})

	return &Client{
		base:  strings.TrimRight(baseURL, "/"),
		token: token,
		http:  rc,
	}
}

// DeleteMessage implements platform.Actions.
func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	path := fmt.Sprintf("/channels/%s/messages/%s", url.PathEscape(channelID), url.PathEscape(messageID))
	return c.do(ctx, http.MethodDelete, path, nil)
}

// Reply implements platform.Actions.
func (c *Client) Reply(ctx context.Context, channelID, messageID, text string) error {
	path := fmt.Sprintf("/channels/%s/messages", url.PathEscape(channelID))
	return c.do(ctx, http.MethodPost, path, map[string]any{
		"content":  text,
		"reply_to": messageID,
	})
}

// Announce implements platform.Actions.
func (c *Client) Announce(ctx context.Context, channelID, text string, suppressMentions bool) error {
	path := fmt.Sprintf("/channels/%s/messages", url.PathEscape(channelID))
	return c.do(ctx, http.MethodPost, path, map[string]any{
		"content":           text,
		"suppress_mentions": suppressMentions,
	})
}

// RestrictPosting implements platform.Actions.
func (c *Client) RestrictPosting(ctx context.Context, guildID, userID string, until time.Time, reason string) error {
	path := fmt.Sprintf("/guilds/%s/members/%s/restriction", url.PathEscape(guildID), url.PathEscape(userID))
	return c.do(ctx, http.MethodPut, path, map[string]any{
		"until":  until.UTC().Format(time.RFC3339),
		"reason": reason,
	})
}

func (c *Client) do(ctx context.Context, method, path string, body any) error {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encoding %s %s: %v", ErrPlatformAction, method, path, err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.base+path, payload)
	if err != nil {
		return fmt.Errorf("%w: building %s %s: %v", ErrPlatformAction, method, path, err)
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrPlatformAction, method, path, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s %s: status %d", ErrPlatformAction, method, path, resp.StatusCode)
	}
	return nil
}
