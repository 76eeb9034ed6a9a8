package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type recordedRequest struct {
	method string
	path   string
	auth   string
	body   map[string]any
}

// newTestAPI spins up an HTTP server that records requests and replies with
// the scripted status codes (repeating the last one).
func newTestAPI(t *testing.T, statuses ...int) (*Client, *[]recordedRequest, *httptest.Server) {
	t.Helper()
	var (
		mu   sync.Mutex
		got  []recordedRequest
		call int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			auth:   r.Header.Get("Authorization"),
		}
		if r.Body != nil {
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
				rec.body = body
			}
		}
		mu.Lock()
		got = append(got, rec)
		idx := call
		call++
		mu.Unlock()

		if idx >= len(statuses) {
			idx = len(statuses) - 1
		}
		w.WriteHeader(statuses[idx])
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, "tok-123", zerolog.Nop())
	c.http.RetryWaitMin = time.Millisecond
	c.http.RetryWaitMax = 5 * time.Millisecond
	return c, &got, srv
}

func TestDeleteMessage(t *testing.T) {
	c, got, _ := newTestAPI(t, http.StatusNoContent)

	if err := c.DeleteMessage(context.Background(), "c1", "m1"); err != nil {
		t.Fatalf("DeleteMessage: %v", err)
	}
	r := (*got)[0]
	if r.method != http.MethodDelete || r.path != "/channels/c1/messages/m1" {
		t.Errorf("request = %s %s", r.method, r.path)
	}
	if r.auth != "Bot tok-123" {
		t.Errorf("auth = %q", r.auth)
	}
}

func TestReply(t *testing.T) {
	c, got, _ := newTestAPI(t, http.StatusOK)

	if err := c.Reply(context.Background(), "c1", "m1", "hi there"); err != nil {
		t.Fatalf("Reply: %v", err)
	}
	r := (*got)[0]
	if r.method != http.MethodPost || r.path != "/channels/c1/messages" {
		t.Errorf("request = %s %s", r.method, r.path)
	}
	if r.body["content"] != "hi there" || r.body["reply_to"] != "m1" {
		t.Errorf("body = %v", r.body)
	}
}

func TestAnnounce_SuppressFlag(t *testing.T) {
	c, got, _ := newTestAPI(t, http.StatusOK)

	if err := c.Announce(context.Background(), "c1", "leaderboard", true); err != nil {
		t.Fatalf("Announce: %v", err)
	}
	r := (*got)[0]
	if r.body["suppress_mentions"] != true {
		t.Errorf("body = %v, want suppress_mentions=true", r.body)
	}
}

func TestRestrictPosting(t *testing.T) {
	c, got, _ := newTestAPI(t, http.StatusOK)

	until := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := c.RestrictPosting(context.Background(), "g1", "u1", until, "duplicate content (infraction #2)"); err != nil {
		t.Fatalf("RestrictPosting: %v", err)
	}
	r := (*got)[0]
	if r.method != http.MethodPut || r.path != "/guilds/g1/members/u1/restriction" {
		t.Errorf("request = %s %s", r.method, r.path)
	}
	if r.body["until"] != "2026-03-01T12:00:00Z" {
		t.Errorf("until = %v", r.body["until"])
	}
	if r.body["reason"] != "duplicate content (infraction #2)" {
		t.Errorf("reason = %v", r.body["reason"])
	}
}

func TestDo_RetriesTransientFailures(t *testing.T) {
	c, got, _ := newTestAPI(t, http.StatusInternalServerError, http.StatusNoContent)

	if err := c.DeleteMessage(context.Background(), "c1", "m1"); err != nil {
		t.Fatalf("DeleteMessage after retry: %v", err)
	}
	if len(*got) != 2 {
		t.Fatalf("requests = %d, want 2 (one retry)", len(*got))
	}
}

func TestDo_ClientErrorIsPlatformActionFailure(t *testing.T) {
	c, got, _ := newTestAPI(t, http.StatusForbidden)

	err := c.RestrictPosting(context.Background(), "g1", "u1", time.Now(), "r")
	if !errors.Is(err, ErrPlatformAction) {
		t.Fatalf("err = %v, want ErrPlatformAction", err)
	}
	// 403 is not transient; no retries.
	if len(*got) != 1 {
		t.Fatalf("requests = %d, want 1", len(*got))
	}
}
