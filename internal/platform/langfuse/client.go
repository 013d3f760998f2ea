// Package langfuse is a small REST adapter for the prompt registry.
// Templates are cached per process; a fallback to the bundled prompt
// files keeps the agents working when the registry is unreachable.
package langfuse

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tradeforge/tradeai-gateway/internal/apperr"
	"github.com/tradeforge/tradeai-gateway/internal/platform/logger"
)

//go:embed prompts/*.md
var bundledPrompts embed.FS

var varPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

type Config struct {
	PublicKey string
	SecretKey string
	BaseURL   string
}

func (c Config) Enabled() bool {
	return strings.TrimSpace(c.PublicKey) != "" && strings.TrimSpace(c.SecretKey) != ""
}

// Template is an immutable compiled-capable prompt.
type Template struct {
	Name    string
	Version int
	Body    string
}

// Compile substitutes {{var}} placeholders. A placeholder with no
// provided value is a config error, not a silent passthrough.
func (t *Template) Compile(vars map[string]string) (string, error) {
	var missing []string
	out := varPattern.ReplaceAllStringFunc(t.Body, func(m string) string {
		key := varPattern.FindStringSubmatch(m)[1]
		v, ok := vars[key]
		if !ok {
			missing = append(missing, key)
			return m
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: template %q has unbound variables: %s",
			apperr.ErrConfig, t.Name, strings.Join(missing, ", "))
	}
	return out, nil
}

// Registry fetches templates by name and version or label.
type Registry interface {
	GetTemplate(ctx context.Context, name string, version int, label string) (*Template, error)
	ClearCache()
	Enabled() bool
}

type registry struct {
	log     *logger.Logger
	cfg     Config
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	cache map[string]*Template
}

func NewRegistry(cfg Config, baseLog *logger.Logger) Registry {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://cloud.langfuse.com"
	}
	return &registry{
		log:     baseLog.With("service", "langfuse"),
		cfg:     cfg,
		baseURL: base,
		http:    &http.Client{Timeout: 10 * time.Second},
		cache:   make(map[string]*Template),
	}
}

func (r *registry) Enabled() bool { return r.cfg.Enabled() }

// GetTemplate resolves name + (version | label), label defaulting to
// "latest". Remote results are cached for the process lifetime; fallback
// loads are not, so a recovered registry is picked up on the next call.
func (r *registry) GetTemplate(ctx context.Context, name string, version int, label string) (*Template, error) {
	if label == "" {
		label = "latest"
	}
	key := cacheKey(name, version, label)

	r.mu.RLock()
	if t, ok := r.cache[key]; ok {
		r.mu.RUnlock()
		return t, nil
	}
	r.mu.RUnlock()

	if r.cfg.Enabled() {
		t, err := r.fetch(ctx, name, version, label)
		if err == nil {
			r.mu.Lock()
			r.cache[key] = t
			r.mu.Unlock()
			return t, nil
		}
		r.log.Warn("prompt fetch failed, using bundled fallback", "name", name, "error", err)
	}
	return r.fallback(name)
}

func (r *registry) ClearCache() {
	r.mu.Lock()
	r.cache = make(map[string]*Template)
	r.mu.Unlock()
}

func (r *registry) fetch(ctx context.Context, name string, version int, label string) (*Template, error) {
	q := url.Values{}
	if version > 0 {
		q.Set("version", strconv.Itoa(version))
	} else {
		q.Set("label", label)
	}
	endpoint := r.baseURL + "/api/public/v2/prompts/" + url.PathEscape(name) + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(r.cfg.PublicKey, r.cfg.SecretKey)
	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: call langfuse: %v", apperr.ErrUpstream, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: langfuse returned %d: %s",
			apperr.ErrUpstream, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	var body struct {
		Name    string          `json:"name"`
		Version int             `json:"version"`
		Prompt  json.RawMessage `json:"prompt"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode prompt: %v", apperr.ErrUpstream, err)
	}
	text, err := promptText(body.Prompt)
	if err != nil {
		return nil, err
	}
	return &Template{Name: name, Version: body.Version, Body: text}, nil
}

// promptText accepts both registry shapes: a plain string or a chat
// array, of which we join the content fields.
func promptText(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var chat []struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(raw, &chat); err == nil {
		parts := make([]string, 0, len(chat))
		for _, m := range chat {
			parts = append(parts, m.Content)
		}
		return strings.Join(parts, "\n\n"), nil
	}
	return "", fmt.Errorf("%w: unsupported prompt shape", apperr.ErrUpstream)
}

func (r *registry) fallback(name string) (*Template, error) {
	data, err := bundledPrompts.ReadFile("prompts/" + name + ".md")
	if err != nil {
		return nil, fmt.Errorf("%w: no bundled prompt for %q", apperr.ErrConfig, name)
	}
	return &Template{Name: name, Version: 0, Body: string(data)}, nil
}

func cacheKey(name string, version int, label string) string {
	if version > 0 {
		return name + "#v" + strconv.Itoa(version)
	}
	return name + "#" + label
}
