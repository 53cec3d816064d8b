package idr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMissingBaseURL = errors.New("idr: base url required")
	ErrUnavailable    = errors.New("idr: request failed")
	ErrStatus         = errors.New("idr: unexpected response status")
	ErrDecode         = errors.New("idr: malformed response")
)

const defaultTimeout = 30 * time.Second

type Config struct {
	BaseURL      string
	APIKey       string
	NotablesPath string
	Timeout      time.Duration
}

// Client fetches notable detection events from an InsightIDR tenant.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// GetNotables fetches raw notable events within an optional time window.
// Providers disagree on envelope nesting, so the result is the flattened
// item list regardless of whether the payload was a bare list, {data: [...]},
// or {data: {data: [...]}}.
func (c *Client) GetNotables(ctx context.Context, since, until string, limit int) ([]map[string]any, error) {
	if c.cfg.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	path := c.cfg.NotablesPath
	if path == "" {
		return nil, fmt.Errorf("%w: notables path not configured", ErrMissingBaseURL)
	}

	params := url.Values{}
	if since != "" {
		params.Set("start_time", since)
	}
	if until != "" {
		params.Set("end_time", until)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	endpoint := c.cfg.BaseURL + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("X-Api-Key", c.cfg.APIKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: GET %s -> %d", ErrStatus, path, resp.StatusCode)
	}

	var raw any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return extractItems(raw), nil
}

func extractItems(raw any) []map[string]any {
	switch v := raw.(type) {
	case []any:
		return toMaps(v)
	case map[string]any:
		if inner, ok := v["data"]; ok {
			return extractItems(inner)
		}
	}
	return nil
}

func toMaps(items []any) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
