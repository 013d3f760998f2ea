// Package tavily wraps the web-search provider's REST API.
package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tradeforge/tradeai-gateway/internal/apperr"
	"github.com/tradeforge/tradeai-gateway/internal/platform/logger"
)

type Result struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

type Client interface {
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
	Enabled() bool
}

type client struct {
	log     *logger.Logger
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewClient(apiKey string, baseLog *logger.Logger) Client {
	return &client{
		log:     baseLog.With("service", "tavily"),
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: "https://api.tavily.com",
		http:    &http.Client{Timeout: 20 * time.Second},
	}
}

func (c *client) Enabled() bool { return c.apiKey != "" }

func (c *client) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("%w: tavily api key not configured", apperr.ErrConfig)
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	req := map[string]any{
		"api_key":     c.apiKey,
		"query":       query,
		"max_results": maxResults,
	}
	buf, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: call tavily: %v", apperr.ErrUpstream, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: tavily returned %d: %s",
			apperr.ErrUpstream, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	var body struct {
		Results []Result `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode tavily response: %v", apperr.ErrUpstream, err)
	}
	return body.Results, nil
}
