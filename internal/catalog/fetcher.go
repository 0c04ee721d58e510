// Package catalog lists the models offered by the aggregator.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/iishyfishyy/llmterm/internal/logger"
)

const (
	DefaultURL     = "https://openrouter.ai/api/v1/models"
	DefaultReferer = "https://github.com/iishyfishyy/llmterm"
	DefaultTitle   = "llmterm"

	maxErrorBody = 2 << 10
)

// Entry is one model from the catalog.
type Entry struct {
	ID            string
	ContextLength *int
}

// Fetcher queries the aggregator's model listing.
type Fetcher struct {
	URL       string
	Client    *http.Client
	UserAgent string
	Referer   string
	Title     string
	Log       *zap.Logger
}

// New returns a fetcher for the public aggregator endpoint.
func New(version string) *Fetcher {
	return &Fetcher{
		URL:       DefaultURL,
		Client:    &http.Client{Timeout: 30 * time.Second},
		UserAgent: "llmterm/" + version,
		Referer:   DefaultReferer,
		Title:     DefaultTitle,
	}
}

type listResponse struct {
	Data []struct {
		ID            string `json:"id"`
		ContextLength *int   `json:"context_length"`
	} `json:"data"`
}

// Fetch retrieves the catalog and returns the entries that have both an ID
// and a declared context length, sorted by ID.
func (f *Fetcher) Fetch(ctx context.Context, credential string) ([]Entry, error) {
	log := logger.OrNop(f.Log)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+credential)
	req.Header.Set("Accept", "application/json")
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	if f.Referer != "" {
		req.Header.Set("HTTP-Referer", f.Referer)
	}
	if f.Title != "" {
		req.Header.Set("X-Title", f.Title)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	log.Debug("fetching model catalog", zap.String("url", f.URL))
	resp, err := client.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &RemoteError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var payload listResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if payload.Data == nil {
		return nil, &DecodeError{Err: fmt.Errorf("response has no data array")}
	}

	entries := make([]Entry, 0, len(payload.Data))
	for _, m := range payload.Data {
		if m.ID == "" || m.ContextLength == nil {
			continue
		}
		entries = append(entries, Entry{ID: m.ID, ContextLength: m.ContextLength})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ID < entries[j].ID
	})

	log.Debug("model catalog fetched",
		zap.Int("received", len(payload.Data)),
		zap.Int("usable", len(entries)))
	return entries, nil
}

// NetworkError means the request could not be completed.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "catalog request failed: " + e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }

// RemoteError is a non-success HTTP status from the catalog endpoint.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("catalog returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("catalog returned status %d: %s", e.StatusCode, e.Body)
}

// DecodeError means the response body did not match the expected schema.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "failed to decode catalog: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }
