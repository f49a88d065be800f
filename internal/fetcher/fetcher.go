// Package fetcher sweeps the paginated listing search endpoint and projects
// raw records into offers.
package fetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"

	"cian_bot/internal/config"
	"cian_bot/internal/model"
	"cian_bot/internal/session"
)

// searchPath is the desktop search endpoint relative to the API base URL.
const searchPath = "search-offers/v2/search-offers-desktop/"

var (
	// ErrNoValidResponse is returned when not a single page of the sweep
	// could be fetched. Fatal: the cycle produced nothing usable.
	ErrNoValidResponse = errors.New("no valid response from search endpoint")

	// ErrMalformedOffer is returned when a fetched record is missing one
	// of the required attributes.
	ErrMalformedOffer = errors.New("malformed offer record")
)

// requiredKeys is the attribute set every raw record must carry to be
// projected into an Offer.
var requiredKeys = []string{
	"roomsCount",
	"fullUrl",
	"totalArea",
	"creationDate",
	"isNew",
	"id",
	"floorNumber",
	"building",
	"phones",
	"bargainTerms",
	"title",
	"description",
}

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher downloads all pages of the configured search and returns the
// projected offers.
type Fetcher struct {
	client   HTTPClient
	sessions *session.Manager
	baseURL  string
	headers  http.Header
	search   config.SearchConfig
	attempts uint
	delay    time.Duration
	log      *slog.Logger
}

// New creates a Fetcher. The session manager must be the same one used to
// establish the initial session; the fetcher triggers refreshes on failure.
func New(client HTTPClient, sessions *session.Manager, baseURL string, headers http.Header, search config.SearchConfig, attempts uint, delay time.Duration, log *slog.Logger) *Fetcher {
	return &Fetcher{
		client:   client,
		sessions: sessions,
		baseURL:  baseURL,
		headers:  headers,
		search:   search,
		attempts: attempts,
		delay:    delay,
		log:      log,
	}
}

type searchResponse struct {
	Data struct {
		Offers []json.RawMessage `json:"offersSerialized"`
	} `json:"data"`
}

// FetchAll sweeps pages starting at 1 until a page comes back empty, and
// returns the concatenation of all non-empty pages projected into offers.
// Any page exhausting its retry budget aborts the whole sweep; partial
// results are never returned as complete.
func (f *Fetcher) FetchAll(ctx context.Context) ([]model.Offer, error) {
	var raws []json.RawMessage

	for page := 1; ; page++ {
		records, err := f.fetchPage(ctx, page)
		if err != nil {
			if len(raws) == 0 {
				return nil, fmt.Errorf("%w: page %d: %w", ErrNoValidResponse, page, err)
			}
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}
		if len(records) < 1 {
			break
		}
		raws = append(raws, records...)
	}

	offers := make([]model.Offer, 0, len(raws))
	for _, raw := range raws {
		offer, err := projectOffer(raw)
		if err != nil {
			f.log.Error("offer projection failed", "error", err)
			return nil, err
		}
		offers = append(offers, offer)
	}

	f.log.Debug("fetch complete", "offers", len(offers))
	return offers, nil
}

// fetchPage requests a single page, retrying up to the attempt budget with a
// fixed delay. Every failed attempt is assumed to have invalidated the
// session, so each one triggers a refresh.
func (f *Fetcher) fetchPage(ctx context.Context, page int) ([]json.RawMessage, error) {
	var records []json.RawMessage

	err := retry.Do(
		func() error {
			rs, err := f.requestPage(ctx, page)
			if err != nil {
				// The session is assumed invalidated by any failure,
				// so refresh here rather than in OnRetry: the hook
				// does not run after the final attempt, and every
				// failed attempt must trigger exactly one refresh.
				if _, rerr := f.sessions.Refresh(ctx); rerr != nil {
					f.log.Error("session refresh after page failure", "page", page, "error", rerr)
				}
				return err
			}
			records = rs
			return nil
		},
		retry.Attempts(f.attempts),
		retry.Delay(f.delay),
		retry.DelayType(retry.FixedDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			f.log.Error("page fetch failed", "page", page, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (f *Fetcher) requestPage(ctx context.Context, page int) ([]json.RawMessage, error) {
	body, err := json.Marshal(buildQuery(f.search, page))
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+searchPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, vs := range f.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if sc := f.sessions.Current(); sc != nil {
		for _, c := range sc.Cookies {
			req.AddCookie(c)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http post: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 20*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var sr searchResponse
	if err := json.Unmarshal(data, &sr); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return sr.Data.Offers, nil
}

// projectOffer narrows a raw record down to the required attribute set.
// A record missing any required key fails the projection.
func projectOffer(raw json.RawMessage) (model.Offer, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return model.Offer{}, fmt.Errorf("%w: decode record: %w", ErrMalformedOffer, err)
	}
	for _, key := range requiredKeys {
		if _, ok := fields[key]; !ok {
			return model.Offer{}, fmt.Errorf("%w: missing key %q", ErrMalformedOffer, key)
		}
	}

	var offer model.Offer
	if err := json.Unmarshal(raw, &offer); err != nil {
		return model.Offer{}, fmt.Errorf("%w: %w", ErrMalformedOffer, err)
	}
	return offer, nil
}
