package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	ErrMissingBaseURL = errors.New("jira: base url required")
	ErrUnavailable    = errors.New("jira: request failed")
	ErrStatus         = errors.New("jira: unexpected response status")
	ErrDecode         = errors.New("jira: malformed response")
)

const defaultTimeout = 30 * time.Second

type Config struct {
	BaseURL  string
	Email    string
	APIToken string
	Timeout  time.Duration
}

// Client talks to the Jira Cloud REST v3 API with basic auth.
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

type IssueStatus struct {
	Name string `json:"name"`
}

type IssueFields struct {
	Summary string      `json:"summary"`
	Status  IssueStatus `json:"status"`
}

type Issue struct {
	Key    string      `json:"key"`
	Fields IssueFields `json:"fields"`
}

type CreateIssueRequest struct {
	ProjectKey   string
	Summary      string
	Description  string
	IssueType    string
	Labels       []string
	Components   []string
	Priority     string
	CustomFields map[string]any
}

type CreatedIssue struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
}

// GetIssue fetches one issue by key.
func (c *Client) GetIssue(ctx context.Context, key string) (Issue, error) {
	var issue Issue
	if err := c.do(ctx, http.MethodGet, "/rest/api/3/issue/"+key, nil, &issue); err != nil {
		return Issue{}, err
	}
	return issue, nil
}

// CreateIssue creates one issue from the request fields.
func (c *Client) CreateIssue(ctx context.Context, req CreateIssueRequest) (CreatedIssue, error) {
	fields := map[string]any{
		"project":   map[string]string{"key": req.ProjectKey},
		"summary":   req.Summary,
		"issuetype": map[string]string{"name": req.IssueType},
	}
	if req.Description != "" {
		fields["description"] = req.Description
	}
	if len(req.Labels) > 0 {
		fields["labels"] = req.Labels
	}
	if len(req.Components) > 0 {
		components := make([]map[string]string, 0, len(req.Components))
		for _, name := range req.Components {
			components = append(components, map[string]string{"name": name})
		}
		fields["components"] = components
	}
	if req.Priority != "" {
		fields["priority"] = map[string]string{"name": req.Priority}
	}
	for k, v := range req.CustomFields {
		fields[k] = v
	}

	var created CreatedIssue
	if err := c.do(ctx, http.MethodPost, "/rest/api/3/issue", map[string]any{"fields": fields}, &created); err != nil {
		return CreatedIssue{}, err
	}
	return created, nil
}

// AddComment posts one comment body to an issue.
func (c *Client) AddComment(ctx context.Context, key, body string) error {
	payload := map[string]any{"body": body}
	return c.do(ctx, http.MethodPost, "/rest/api/3/issue/"+key+"/comment", payload, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	if c.cfg.BaseURL == "" {
		return ErrMissingBaseURL
	}

	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("jira: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.SetBasicAuth(c.cfg.Email, c.cfg.APIToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s %s -> %d", ErrStatus, method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return nil
}
