package salesforce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Record is one row returned by a SOQL query. Field access goes through the
// typed helpers; nested relationship fields arrive as nested maps.
type Record map[string]any

// String returns the named field as a string, or "" when absent or not a string.
func (r Record) String(field string) string {
	if v, ok := r[field].(string); ok {
		return v
	}
	return ""
}

// Bool returns the named field as a bool, false when absent.
func (r Record) Bool(field string) bool {
	v, ok := r[field].(bool)
	return ok && v
}

// Nested returns a string field from a nested relationship record, e.g.
// Nested("ChildProduct", "Type") for ChildProduct.Type.
func (r Record) Nested(parent, field string) string {
	child, ok := r[parent].(map[string]any)
	if !ok {
		return ""
	}
	if v, ok := child[field].(string); ok {
		return v
	}
	return ""
}

// QueryResult is the wire shape of a SOQL query response.
type QueryResult struct {
	TotalSize      int      `json:"totalSize"`
	Done           bool     `json:"done"`
	NextRecordsURL string   `json:"nextRecordsUrl"`
	Records        []Record `json:"records"`
}

// Client executes read-only SOQL queries against one Salesforce org. It is
// the only component that touches the remote transport; every call is logged
// with query text, timing, and response shape. No retries are performed — a
// failure propagates to the caller, which decides whether to abort or report
// a partial result.
type Client struct {
	instanceURL  string
	apiVersion   string
	accessToken  string
	queryTimeout time.Duration
	httpClient   *http.Client
	logger       *slog.Logger
}

// Config holds connection parameters for one org.
type Config struct {
	InstanceURL  string
	AccessToken  string
	APIVersion   string
	QueryTimeout time.Duration
	HTTPTimeout  time.Duration
}

// NewClient constructs a client targeting the configured org.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "v64.0"
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 30 * time.Second
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 60 * time.Second
	}
	return &Client{
		instanceURL:  strings.TrimRight(cfg.InstanceURL, "/"),
		apiVersion:   cfg.APIVersion,
		accessToken:  cfg.AccessToken,
		queryTimeout: cfg.QueryTimeout,
		httpClient:   &http.Client{Timeout: cfg.HTTPTimeout},
		logger:       logger,
	}
}

// BaseURL exposes the org instance URL for diagnostics only.
func (c *Client) BaseURL() string { return c.instanceURL }

// APIVersion exposes the configured API version for diagnostics only.
func (c *Client) APIVersion() string { return c.apiVersion }

// Query executes a single SOQL query and returns one page of results.
func (c *Client) Query(ctx context.Context, soql string) (*QueryResult, error) {
	if c == nil {
		return nil, fmt.Errorf("salesforce client not initialised")
	}
	if c.instanceURL == "" {
		return nil, fmt.Errorf("salesforce instance URL not configured")
	}
	endpoint := fmt.Sprintf("%s/services/data/%s/query?q=%s",
		c.instanceURL, c.apiVersion, url.QueryEscape(soql))
	return c.getQueryPage(ctx, endpoint, soql)
}

// QueryAll executes a SOQL query and transparently follows continuation
// cursors until the result set is exhausted.
func (c *Client) QueryAll(ctx context.Context, soql string) (*QueryResult, error) {
	page, err := c.Query(ctx, soql)
	if err != nil {
		return nil, err
	}
	all := &QueryResult{
		TotalSize: page.TotalSize,
		Done:      true,
		Records:   page.Records,
	}
	for !page.Done && page.NextRecordsURL != "" {
		next := page.NextRecordsURL
		if strings.HasPrefix(next, "/") {
			next = c.instanceURL + next
		}
		page, err = c.getQueryPage(ctx, next, soql)
		if err != nil {
			return nil, fmt.Errorf("follow query cursor: %w", err)
		}
		all.Records = append(all.Records, page.Records...)
	}
	return all, nil
}

func (c *Client) getQueryPage(ctx context.Context, endpoint, soql string) (*QueryResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.logger.Error("soql query transport failure",
			slog.String("soql", soql),
			slog.Duration("duration", duration),
			slog.Any("error", err))
		return nil, fmt.Errorf("salesforce query failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		apiErr := classifyError(resp.StatusCode, body)
		c.logger.Error("soql query rejected",
			slog.String("soql", soql),
			slog.Duration("duration", duration),
			slog.Int("status", resp.StatusCode),
			slog.String("errorCode", apiErr.ErrorCode))
		return nil, apiErr
	}

	var result QueryResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode query response: %w", err)
	}

	c.logger.Debug("soql query completed",
		slog.String("soql", soql),
		slog.Duration("duration", duration),
		slog.Int("totalSize", result.TotalSize),
		slog.Int("records", len(result.Records)),
		slog.Bool("done", result.Done))
	return &result, nil
}
