package websearch

import (
	"TUI_channel_research/internal/core/domain"
	"TUI_channel_research/internal/core/ports"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	DefaultEndpoint = "https://api.firecrawl.dev"
	defaultMaxTries = 4
)

type Config struct {
	APIKey     string
	Endpoint   string
	HTTPClient ports.HTTPDoer
	// MaxTries bounds the attempts made while rate limited.
	MaxTries uint
	// InitialInterval is the first backoff wait; zero keeps the library default.
	InitialInterval time.Duration
}

type firecrawlClient struct {
	apiKey     string
	endpoint   string
	httpClient ports.HTTPDoer
	maxTries   uint
	initial    time.Duration
	log        ports.LoggerPort
}

func NewFirecrawlClient(cfg Config, logger ports.LoggerPort) ports.WebSearchPort {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	if cfg.MaxTries == 0 {
		cfg.MaxTries = defaultMaxTries
	}

	return &firecrawlClient{
		apiKey:     cfg.APIKey,
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		httpClient: cfg.HTTPClient,
		maxTries:   cfg.MaxTries,
		initial:    cfg.InitialInterval,
		log:        logger,
	}
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

type searchResponse struct {
	Success bool `json:"success"`
	Data    []struct {
		URL         string `json:"url"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Markdown    string `json:"markdown"`
	} `json:"data"`
	Error string `json:"error"`
}

// StatusError is a non-success answer of the search API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("firecrawl search failed with status %d: %s", e.StatusCode, e.Body)
}

// Search retries while the API answers 429, waiting for Retry-After when
// the header is set. Any other failure status is returned at once.
func (c *firecrawlClient) Search(ctx context.Context, query string, limit int) ([]domain.WebResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("empty search query")
	}

	body, err := json.Marshal(searchRequest{Query: query, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("error while encoding search request: %w", err)
	}

	c.log.Info("Init Web Search: " + query)

	expo := backoff.NewExponentialBackOff()
	if c.initial > 0 {
		expo.InitialInterval = c.initial
	}

	operation := func() ([]domain.WebResult, error) {
		return c.search(ctx, body)
	}

	results, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(func(err error, wait time.Duration) {
			c.log.Warning(fmt.Sprintf("Web search rate limited, retrying in %s: %v", wait, err))
		}),
	)
	if err != nil {
		c.log.Error("Web search failed", err)
		return nil, err
	}

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	c.log.Info(fmt.Sprintf("Web search returned %d results", len(results)))
	return results, nil
}

func (c *firecrawlClient) search(ctx context.Context, body []byte) ([]domain.WebResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/search", bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("error while building search request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("error while calling search api: %w", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("error while reading search response: %w", err))
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
		if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
			return nil, errors.Join(statusErr, backoff.RetryAfter(secs))
		}
		return nil, statusErr
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, backoff.Permanent(&StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))})
	}

	var decoded searchResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("error while decoding search response: %w", err))
	}
	if !decoded.Success && decoded.Error != "" {
		return nil, backoff.Permanent(fmt.Errorf("search api error: %s", decoded.Error))
	}

	results := make([]domain.WebResult, 0, len(decoded.Data))
	for _, d := range decoded.Data {
		results = append(results, domain.WebResult{
			URL:         d.URL,
			Title:       d.Title,
			Description: d.Description,
			Markdown:    d.Markdown,
		})
	}

	return results, nil
}
