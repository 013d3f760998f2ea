package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tradeforge/tradeai-gateway/internal/platform/logger"
)

const maxErrorBodyBytes = 1024

var pointIDNamespaceUUID = uuid.MustParse("7c9e3a44-51da-4b8e-9f07-2f4b6a1d9c55")

// Config for the REST client. URL wins over Host/Port when both are set.
type Config struct {
	URL    string
	Host   string
	Port   int
	APIKey string
}

func (c Config) baseURL() string {
	if strings.TrimSpace(c.URL) != "" {
		return strings.TrimRight(strings.TrimSpace(c.URL), "/")
	}
	host := c.Host
	if host == "" {
		host = "localhost"
	}
	port := c.Port
	if port == 0 {
		port = 6333
	}
	return fmt.Sprintf("http://%s:%d", host, port)
}

// Point is one vector plus payload destined for a collection.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// ScoredPoint is a search or scroll hit.
type ScoredPoint struct {
	ID      string
	Score   float64
	Payload map[string]any
}

// Client is the vector store surface the memory and ingest services use.
// Deletion goes through payload filters, never a collection wipe.
type Client interface {
	EnsureCollection(ctx context.Context, collection string, dim int) error
	Upsert(ctx context.Context, collection string, points []Point) error
	Search(ctx context.Context, collection string, vector []float32, limit int, filter map[string]any) ([]ScoredPoint, error)
	Scroll(ctx context.Context, collection string, filter map[string]any, limit int) ([]ScoredPoint, error)
	DeleteByFilter(ctx context.Context, collection string, filter map[string]any) error
	CountByFilter(ctx context.Context, collection string, filter map[string]any) (int, error)
	Ping(ctx context.Context) error
}

type client struct {
	log     *logger.Logger
	cfg     Config
	baseURL string
	http    *http.Client
}

func NewClient(cfg Config, baseLog *logger.Logger) Client {
	return &client{
		log:     baseLog.With("service", "qdrant"),
		cfg:     cfg,
		baseURL: cfg.baseURL(),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// PointID derives a deterministic UUID for a logical key so re-ingesting
// the same chunk overwrites instead of duplicating.
func PointID(parts ...string) string {
	return uuid.NewSHA1(pointIDNamespaceUUID, []byte(strings.Join(parts, "/"))).String()
}

type envelope struct {
	Result json.RawMessage `json:"result"`
	Status json.RawMessage `json:"status"`
	Time   float64         `json:"time"`
}

func (c *client) EnsureCollection(ctx context.Context, collection string, dim int) error {
	const op = "ensure_collection"
	if strings.TrimSpace(collection) == "" {
		return opErr(op, OperationErrorValidation, "collection name is required", nil)
	}
	var exists struct {
		Exists bool `json:"exists"`
	}
	if err := c.doJSON(ctx, op, http.MethodGet, "/collections/"+collection+"/exists", nil, &exists); err != nil {
		return err
	}
	if !exists.Exists {
		req := map[string]any{
			"vectors": map[string]any{
				"size":     dim,
				"distance": "Cosine",
			},
		}
		if err := c.doJSON(ctx, op, http.MethodPut, "/collections/"+collection, req, nil); err != nil {
			return err
		}
		c.log.Info("collection created", "collection", collection, "dim", dim)
	}
	// Scroll orders by created_at, which needs a range-capable payload
	// index. Re-creating it on an existing collection is a no-op.
	idx := map[string]any{
		"field_name":   "created_at",
		"field_schema": "datetime",
	}
	return c.doJSON(ctx, op, http.MethodPut, "/collections/"+collection+"/index?wait=true", idx, nil)
}

func (c *client) Upsert(ctx context.Context, collection string, points []Point) error {
	const op = "upsert"
	if len(points) == 0 {
		return nil
	}
	body := make([]map[string]any, 0, len(points))
	for _, p := range points {
		if strings.TrimSpace(p.ID) == "" {
			return opErr(op, OperationErrorValidation, "point id is required", nil)
		}
		if len(p.Vector) == 0 {
			return opErr(op, OperationErrorValidation, fmt.Sprintf("point %q has an empty vector", p.ID), nil)
		}
		body = append(body, map[string]any{
			"id":      p.ID,
			"vector":  p.Vector,
			"payload": p.Payload,
		})
	}
	req := map[string]any{"points": body}
	return c.doJSON(ctx, op, http.MethodPut, "/collections/"+collection+"/points?wait=true", req, nil)
}

type searchResultItem struct {
	ID      json.RawMessage `json:"id"`
	Score   float64         `json:"score"`
	Payload map[string]any  `json:"payload"`
}

func (c *client) Search(ctx context.Context, collection string, vector []float32, limit int, filter map[string]any) ([]ScoredPoint, error) {
	const op = "search"
	if len(vector) == 0 {
		return nil, opErr(op, OperationErrorValidation, "query vector is required", nil)
	}
	if limit <= 0 {
		limit = 5
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	if f := translateFilter(filter); f != nil {
		req["filter"] = f
	}
	var items []searchResultItem
	if err := c.doJSON(ctx, op, http.MethodPost, "/collections/"+collection+"/points/search", req, &items); err != nil {
		return nil, err
	}
	out := make([]ScoredPoint, 0, len(items))
	for _, it := range items {
		out = append(out, ScoredPoint{ID: rawID(it.ID), Score: it.Score, Payload: it.Payload})
	}
	return out, nil
}

// Scroll returns up to limit points matching the filter, newest first by
// the created_at payload key. Used for "recent N" reads without a query.
func (c *client) Scroll(ctx context.Context, collection string, filter map[string]any, limit int) ([]ScoredPoint, error) {
	const op = "scroll"
	if limit <= 0 {
		limit = 5
	}
	req := map[string]any{
		"limit":        limit,
		"with_payload": true,
		"order_by":     map[string]any{"key": "created_at", "direction": "desc"},
	}
	if f := translateFilter(filter); f != nil {
		req["filter"] = f
	}
	var result struct {
		Points []searchResultItem `json:"points"`
	}
	if err := c.doJSON(ctx, op, http.MethodPost, "/collections/"+collection+"/points/scroll", req, &result); err != nil {
		return nil, err
	}
	out := make([]ScoredPoint, 0, len(result.Points))
	for _, it := range result.Points {
		out = append(out, ScoredPoint{ID: rawID(it.ID), Payload: it.Payload})
	}
	return out, nil
}

func (c *client) DeleteByFilter(ctx context.Context, collection string, filter map[string]any) error {
	const op = "delete"
	f := translateFilter(filter)
	if f == nil {
		return opErr(op, OperationErrorValidation, "delete filter is required", nil)
	}
	req := map[string]any{"filter": f}
	return c.doJSON(ctx, op, http.MethodPost, "/collections/"+collection+"/points/delete?wait=true", req, nil)
}

func (c *client) CountByFilter(ctx context.Context, collection string, filter map[string]any) (int, error) {
	const op = "count"
	req := map[string]any{"exact": true}
	if f := translateFilter(filter); f != nil {
		req["filter"] = f
	}
	var result struct {
		Count int `json:"count"`
	}
	if err := c.doJSON(ctx, op, http.MethodPost, "/collections/"+collection+"/points/count", req, &result); err != nil {
		return 0, err
	}
	return result.Count, nil
}

func (c *client) Ping(ctx context.Context) error {
	return c.doJSON(ctx, "ping", http.MethodGet, "/collections", nil, nil)
}

func (c *client) doJSON(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return opErr(op, OperationErrorEncodeFailed, "encode request", err)
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return opErr(op, OperationErrorValidation, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("api-key", c.cfg.APIKey)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return classifyHTTPCallError(op, "call qdrant", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return opErr(
			op,
			OperationErrorQueryFailed,
			fmt.Sprintf("qdrant returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))),
			nil,
		)
	}
	if out == nil {
		return nil
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return opErr(op, OperationErrorDecodeFailed, "decode response envelope", err)
	}
	if len(env.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return opErr(op, OperationErrorDecodeFailed, "decode result", err)
	}
	return nil
}

func classifyHTTPCallError(op, message string, err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return opErr(op, OperationErrorTimeout, message, err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return opErr(op, OperationErrorTimeout, message, err)
	default:
		return opErr(op, OperationErrorTransportFailed, message, err)
	}
}

func rawID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
