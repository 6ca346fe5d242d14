// Package catalog is the client for the community store, a remote catalog of
// realities and standalone decks. Decks from the store go through the same
// interchange decoding as a local import.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/retroverse-studios/reality-reigns/internal/config"
	"github.com/retroverse-studios/reality-reigns/internal/deck"
	"github.com/retroverse-studios/reality-reigns/internal/reality"
)

// ErrUnavailable wraps transport and HTTP status failures
var ErrUnavailable = errors.New("catalog unavailable")

// maxBody caps how much of a response is read
const maxBody = 8 << 20

// Client fetches content from the community store
type Client interface {
	ListRealities(ctx context.Context) ([]*reality.Reality, error)
	ListDecks(ctx context.Context) ([]*deck.Deck, error)
	SubmitReality(ctx context.Context, r *reality.Reality) (string, error)
	FetchDeck(ctx context.Context, url string) (*deck.Deck, error)
}

type httpClient struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a store client from the catalog config
func NewClient(cfg config.CatalogConfig, logger *zap.Logger) Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout.Duration
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &httpClient{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Ensure httpClient implements Client
var _ Client = (*httpClient)(nil)

// ListRealities returns the realities offered by the store
func (c *httpClient) ListRealities(ctx context.Context) ([]*reality.Reality, error) {
	body, err := c.get(ctx, c.baseURL+"/realities")
	if err != nil {
		return nil, err
	}

	var realities []*reality.Reality
	if err := json.Unmarshal(body, &realities); err != nil {
		return nil, fmt.Errorf("%w: malformed realities list: %v", ErrUnavailable, err)
	}

	c.logger.Debug("store realities fetched", zap.Int("count", len(realities)))
	return realities, nil
}

// ListDecks returns the store's standalone decks. Entries that fail deck
// decoding are skipped.
func (c *httpClient) ListDecks(ctx context.Context) ([]*deck.Deck, error) {
	body, err := c.get(ctx, c.baseURL+"/decks")
	if err != nil {
		return nil, err
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: malformed decks list: %v", ErrUnavailable, err)
	}

	decks := make([]*deck.Deck, 0, len(raw))
	for i, entry := range raw {
		d, err := deck.Decode(entry)
		if err != nil {
			c.logger.Warn("skipping invalid store deck", zap.Int("position", i), zap.Error(err))
			continue
		}
		decks = append(decks, d)
	}

	c.logger.Debug("store decks fetched", zap.Int("count", len(decks)), zap.Int("skipped", len(raw)-len(decks)))
	return decks, nil
}

// SubmitReality sends a reality to the store for review and returns the store's message
func (c *httpClient) SubmitReality(ctx context.Context, r *reality.Reality) (string, error) {
	if err := r.Validate(); err != nil {
		return "", fmt.Errorf("submission failed: %w", err)
	}

	payload, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("error encoding reality: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/realities", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return "", err
	}

	var resp struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &resp); err != nil || resp.Message == "" {
		return fmt.Sprintf("%q was successfully submitted for review. Thank you!", r.Name), nil
	}
	return resp.Message, nil
}

// FetchDeck downloads and decodes a deck from an arbitrary URL
func (c *httpClient) FetchDeck(ctx context.Context, url string) (*deck.Deck, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	return deck.Decode(body)
}

func (c *httpClient) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req)
}

func (c *httpClient) do(req *http.Request) ([]byte, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("store request failed", zap.String("url", req.URL.String()), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: error reading response: %v", ErrUnavailable, err)
	}

	c.logger.Debug("store request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP error! status: %d", ErrUnavailable, resp.StatusCode)
	}
	return body, nil
}
