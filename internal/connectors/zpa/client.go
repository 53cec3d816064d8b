package zpa

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

	"github.com/blueswarm/orchestrator/internal/patch"
)

var (
	ErrMissingBaseURL = errors.New("zpa: base url required")
	ErrUnavailable    = errors.New("zpa: request failed")
	ErrStatus         = errors.New("zpa: unexpected response status")
	ErrDecode         = errors.New("zpa: malformed response")
)

const (
	defaultTimeout      = 30 * time.Second
	defaultSegmentsPath = "mgmtconfig/v2/admin/applications"
	defaultPoliciesPath = "mgmtconfig/v2/admin/applications"
)

type Config struct {
	BaseURL      string
	ClientSecret string
	SegmentsPath string
	PoliciesPath string
	Timeout      time.Duration
}

// Client reads application segments and current policy state from a ZPA
// management tenant. Read-only: patch application is out of scope here.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.SegmentsPath == "" {
		cfg.SegmentsPath = defaultSegmentsPath
	}
	if cfg.PoliciesPath == "" {
		cfg.PoliciesPath = defaultPoliciesPath
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// ListAppSegments returns the tenant's application segments as a generic tree.
func (c *Client) ListAppSegments(ctx context.Context, limit int) (patch.Node, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	return c.get(ctx, c.cfg.SegmentsPath, params)
}

// GetCurrentPolicies returns the observed policy state, the "current" side
// of a desired-state diff.
func (c *Client) GetCurrentPolicies(ctx context.Context) (patch.Node, error) {
	return c.get(ctx, c.cfg.PoliciesPath, nil)
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (patch.Node, error) {
	if c.cfg.BaseURL == "" {
		return patch.Node{}, ErrMissingBaseURL
	}
	endpoint := c.cfg.BaseURL + "/" + strings.TrimLeft(path, "/")
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return patch.Node{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if c.cfg.ClientSecret != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.ClientSecret)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return patch.Node{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return patch.Node{}, fmt.Errorf("%w: GET %s -> %d", ErrStatus, path, resp.StatusCode)
	}

	var raw any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return patch.Node{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	node, err := patch.FromValue(raw)
	if err != nil {
		return patch.Node{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return node, nil
}
