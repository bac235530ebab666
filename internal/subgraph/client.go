// Package subgraph reads pool, tick and position history from a Uniswap v3 style indexed
// dataset over GraphQL.
package subgraph

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

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"feeScope/internal/observability"
)

const (
	DefaultURL       = "https://api.thegraph.com/subgraphs/name/benesjan/uniswap-v3-subgraph"
	DefaultBlocksURL = "https://api.thegraph.com/subgraphs/name/blocklytics/ethereum-blocks"
	// DefaultPageSize is the largest page the hosted indexers serve.
	DefaultPageSize = 1000
)

var (
	// ErrNotFound is returned when a requested entity is absent from the dataset.
	ErrNotFound = errors.New("entity not found")
	// ErrGraphQL is returned when the response carries GraphQL errors.
	ErrGraphQL = errors.New("graphql error")
)

// Config holds client settings.
type Config struct {
	URL          string
	BlocksURL    string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	PageSize     int
}

// Client queries the fee dataset and the blocks dataset.
type Client struct {
	cfg     Config
	http    *http.Client
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewClient builds a client, filling unset config with defaults.
func NewClient(cfg Config, logger *zap.Logger, metrics *observability.Metrics) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.BlocksURL == "" {
		cfg.BlocksURL = DefaultBlocksURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.PageSize <= 0 || cfg.PageSize > DefaultPageSize {
		cfg.PageSize = DefaultPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
		metrics: metrics,
	}
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// query posts a GraphQL document to the fee dataset and returns its data object.
func (c *Client) query(ctx context.Context, operation, document string, vars map[string]any) (gjson.Result, error) {
	return c.post(ctx, c.cfg.URL, operation, document, vars)
}

func (c *Client) post(ctx context.Context, endpoint, operation, document string, vars map[string]any) (gjson.Result, error) {
	body, err := json.Marshal(request{Query: document, Variables: vars})
	if err != nil {
		return gjson.Result{}, fmt.Errorf("marshal %s request: %w", operation, err)
	}

	var data gjson.Result
	onRetry := func(attempt int, err error) {
		c.metrics.SubgraphRetry()
		c.logger.Warn("subgraph request retry",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	err = withRetry(ctx, c.cfg.MaxRetries, c.cfg.RetryBackoff, onRetry, func(ctx context.Context) error {
		start := time.Now()
		res, err := c.do(ctx, endpoint, body)
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		c.metrics.SubgraphRequest(operation, outcome, start)
		if err != nil {
			return err
		}
		data = res
		return nil
	})
	if err != nil {
		return gjson.Result{}, fmt.Errorf("subgraph %s: %w", operation, err)
	}
	return data, nil
}

func (c *Client) do(ctx context.Context, endpoint string, body []byte) (gjson.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return gjson.Result{}, permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("http status %d: %s", resp.StatusCode, snippet(payload))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return gjson.Result{}, err
		}
		return gjson.Result{}, permanent(err)
	}
	if !gjson.ValidBytes(payload) {
		return gjson.Result{}, fmt.Errorf("invalid json: %s", snippet(payload))
	}

	parsed := gjson.ParseBytes(payload)
	if errs := parsed.Get("errors"); errs.IsArray() && len(errs.Array()) > 0 {
		messages := make([]string, 0, len(errs.Array()))
		for _, e := range errs.Array() {
			messages = append(messages, e.Get("message").String())
		}
		return gjson.Result{}, permanent(fmt.Errorf("%w: %s", ErrGraphQL, strings.Join(messages, "; ")))
	}
	return parsed.Get("data"), nil
}

func snippet(b []byte) string {
	const max = 256
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
