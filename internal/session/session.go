// Package session acquires and holds the cookie-based session context
// required by the listing search endpoint.
package session

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/google/uuid"
)

// tokenPath is the endpoint that hands out session cookies.
const tokenPath = "sopr-experiments/listing-user-activity-time/"

// ErrUnavailable is returned when a session could not be established within
// the configured attempt budget. No search request can succeed without a
// session, so callers should treat this as fatal.
var ErrUnavailable = errors.New("session unavailable")

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Context is the opaque session material borrowed by the fetcher for each
// search request. The manager owns it; callers must not mutate it.
type Context struct {
	Cookies []*http.Cookie
}

// Manager acquires session contexts and keeps the most recent one.
type Manager struct {
	client   HTTPClient
	baseURL  string
	headers  http.Header
	attempts uint
	delay    time.Duration
	log      *slog.Logger

	current *Context
}

// NewManager creates a Manager. It does not contact the remote endpoint;
// call Refresh to establish the first session.
func NewManager(client HTTPClient, baseURL string, headers http.Header, attempts uint, delay time.Duration, log *slog.Logger) *Manager {
	return &Manager{
		client:   client,
		baseURL:  baseURL,
		headers:  headers,
		attempts: attempts,
		delay:    delay,
		log:      log,
	}
}

// Current returns the most recently acquired session context, or nil if none
// has been established yet.
func (m *Manager) Current() *Context {
	return m.current
}

// Refresh acquires a new session context, replacing the previous one
// unconditionally on success. It retries up to the configured attempt count
// with a fixed delay between attempts and wraps ErrUnavailable once the
// budget is exhausted.
func (m *Manager) Refresh(ctx context.Context) (*Context, error) {
	var sc *Context

	err := retry.Do(
		func() error {
			c, err := m.acquire(ctx)
			if err != nil {
				return err
			}
			sc = c
			return nil
		},
		retry.Attempts(m.attempts),
		retry.Delay(m.delay),
		retry.DelayType(retry.FixedDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			m.log.Error("session refresh failed", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	m.current = sc
	m.log.Info("session established", "cookies", len(sc.Cookies))
	return sc, nil
}

// tokenRequest is the body the token endpoint expects. The nonce values
// carry no meaning to this system; the endpoint merely requires them.
type tokenRequest struct {
	UserID      *int64  `json:"user_id"`
	T           float64 `json:"t"`
	SessionGUID string  `json:"ml_search_session_guid"`
}

func (m *Manager) acquire(ctx context.Context) (*Context, error) {
	u := uuid.New()
	body, err := json.Marshal(tokenRequest{
		T:           2000 + rand.Float64()*15000,
		SessionGUID: hex.EncodeToString(u[:]),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+tokenPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range m.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http post: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return &Context{Cookies: resp.Cookies()}, nil
}
