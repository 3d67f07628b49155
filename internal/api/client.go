// Package api talks to the retrieval backend over its two HTTP endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"semret/internal/domain"
)

const (
	searchPath = "/api/search"
	ingestPath = "/api/ingest"

	// cap on how much of a response body is kept for errors and acks
	maxBodySnippet = 4 << 10
)

// Config configures the backend client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration // zero leaves the transport default
	UserAgent string
}

// Client is a stateless HTTP client for search and ingest. One attempt per call.
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
	logger    *slog.Logger
}

// New creates a client for cfg.BaseURL. A nil logger discards logs.
func New(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		client:    &http.Client{Timeout: cfg.Timeout},
		logger:    logger,
	}
}

// Search runs one query and returns the backend's results in server order.
func (c *Client) Search(ctx context.Context, query domain.Query) (domain.ResultSet, error) {
	u, err := url.Parse(c.baseURL + searchPath)
	if err != nil {
		return nil, &domain.NetworkError{Op: "search", Err: fmt.Errorf("invalid base url: %w", err)}
	}
	q := u.Query()
	q.Set("query", query.String())
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &domain.NetworkError{Op: "search", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.do("search", req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	var raw []string
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		serr := &domain.ServerError{
			Op:         "search",
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Err:        fmt.Errorf("decode results: %w", err),
		}
		c.logger.Warn("search response malformed", "error", serr)
		return nil, serr
	}
	results := make(domain.ResultSet, len(raw))
	for i, s := range raw {
		results[i] = domain.SearchResult(s)
	}
	c.logger.Debug("search ok", "query", query.String(), "results", len(results))
	return results, nil
}

// Ingest submits a document. Success means the backend accepted it, not that
// it is already searchable.
func (c *Client) Ingest(ctx context.Context, doc domain.Document) (domain.Ack, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return domain.Ack{}, fmt.Errorf("encode document: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+ingestPath, bytes.NewReader(data))
	if err != nil {
		return domain.Ack{}, &domain.NetworkError{Op: "ingest", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do("ingest", req)
	if err != nil {
		return domain.Ack{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySnippet))
	if err != nil {
		c.logger.Debug("ingest ack unreadable", "error", err, "read", len(body))
	}
	c.logger.Debug("ingest ok", "title", doc.Title, "bytes", len(doc.Content))
	return domain.Ack{Message: strings.TrimSpace(string(body))}, nil
}

// do sends req and classifies the outcome. On success the caller owns resp.Body.
func (c *Client) do(op string, req *http.Request) (*http.Response, error) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	start := time.Now()
	resp, err := c.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Warn("backend unreachable", "op", op, "url", req.URL.Redacted(), "elapsed", elapsed, "error", err)
		return nil, &domain.NetworkError{Op: op, Err: err}
	}
	c.logger.Debug("backend response", "op", op, "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode, "elapsed", elapsed)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodySnippet))
		_ = resp.Body.Close()
		serr := &domain.ServerError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
		c.logger.Warn("backend rejected request", "op", op, "status", resp.StatusCode)
		return nil, serr
	}
	return resp, nil
}
