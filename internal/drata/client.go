package drata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"

	"github.com/roivaz/drata-compliance-mcp/internal/logging"
)

const maxBodyBytes = 16 << 20

// RequestObserver receives one sample per upstream request. endpoint is the
// path template (e.g. /public/monitors/{id}); code is 0 on transport errors.
type RequestObserver interface {
	ObserveUpstream(endpoint string, code int, elapsed time.Duration)
}

// Client is a read-only client for the Drata public API. It is safe for
// concurrent use.
type Client struct {
	cfg     Config
	baseURL string
	http    *http.Client
	log     logging.Logger
}

// NewClient builds a client authenticating with the API key as a bearer token.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	cfg = cfg.withDefaults()
	base, err := cfg.ResolveBaseURL()
	if err != nil {
		return nil, err
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIKey, TokenType: "Bearer"})
	hc := oauth2.NewClient(context.Background(), ts)
	hc.Timeout = cfg.Timeout

	return &Client{
		cfg:     cfg,
		baseURL: base,
		http:    hc,
		log:     cfg.Logger.WithName("drata"),
	}, nil
}

// BaseURL returns the resolved API base URL.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values) ([]byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	c.log.Debug("request", "path", path, "query", query.Encode())
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(endpoint, 0, start)
		c.log.Error(err, "request failed", "path", path, "elapsed", time.Since(start))
		return nil, unavailable(path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.observe(endpoint, resp.StatusCode, start)
	if err != nil {
		return nil, unavailable(path, fmt.Errorf("read body: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, path, upstreamMessage(body))
		c.log.Debug("upstream error", "path", path, "status", resp.StatusCode, "message", apiErr.Message)
		return nil, apiErr
	}
	if !gjson.ValidBytes(body) {
		return nil, unavailable(path, errors.New("response is not valid JSON"))
	}
	c.log.Debug("response", "path", path, "status", resp.StatusCode, "bytes", len(body), "elapsed", time.Since(start))
	return body, nil
}

func (c *Client) observe(endpoint string, code int, start time.Time) {
	if c.cfg.Observer != nil {
		c.cfg.Observer.ObserveUpstream(endpoint, code, time.Since(start))
	}
}

// upstreamMessage extracts a short human-readable message from an error body.
func upstreamMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return truncate(strings.TrimSpace(string(body)), 300)
	}
	for _, path := range []string{"message", "error.message", "error", "name"} {
		if v := gjson.GetBytes(body, path); v.Exists() {
			if v.IsArray() {
				parts := make([]string, 0, len(v.Array()))
				for _, item := range v.Array() {
					parts = append(parts, item.String())
				}
				return truncate(strings.Join(parts, "; "), 300)
			}
			if s := v.String(); s != "" {
				return truncate(s, 300)
			}
		}
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// getOne fetches a single record.
func getOne[T any](ctx context.Context, c *Client, endpoint, path string, query url.Values) (T, error) {
	var out T
	body, err := c.get(ctx, endpoint, path, query)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, unavailable(path, fmt.Errorf("decode: %w", err))
	}
	return out, nil
}
