package idr

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blueswarm/orchestrator/internal/testutil/testlog"
)

func TestGetNotablesFlattensEnvelopes(t *testing.T) {
	testlog.Start(t)
	payloads := []string{
		`[{"title": "one"}]`,
		`{"data": [{"title": "one"}]}`,
		`{"data": {"data": [{"title": "one"}]}}`,
	}
	for _, payload := range payloads {
		body := payload
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("X-Api-Key") != "key" {
				t.Fatalf("missing api key header")
			}
			w.Write([]byte(body))
		}))

		client := NewClient(Config{BaseURL: srv.URL, APIKey: "key", NotablesPath: "idr/v1/notables"})
		items, err := client.GetNotables(context.Background(), "", "", 10)
		srv.Close()
		if err != nil {
			t.Fatalf("payload %s: %v", payload, err)
		}
		if len(items) != 1 || items[0]["title"] != "one" {
			t.Fatalf("payload %s flattened to %+v", payload, items)
		}
	}
}

func TestGetNotablesWindowParams(t *testing.T) {
	testlog.Start(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("start_time") != "2026-08-01T00:00:00Z" || q.Get("limit") != "5" {
			t.Fatalf("window params not forwarded: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, NotablesPath: "notables"})
	if _, err := client.GetNotables(context.Background(), "2026-08-01T00:00:00Z", "", 5); err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
}

func TestGetNotablesUnconfigured(t *testing.T) {
	testlog.Start(t)
	_, err := NewClient(Config{}).GetNotables(context.Background(), "", "", 1)
	if !errors.Is(err, ErrMissingBaseURL) {
		t.Fatalf("expected ErrMissingBaseURL, got %v", err)
	}

	_, err = NewClient(Config{BaseURL: "http://localhost:0"}).GetNotables(context.Background(), "", "", 1)
	if !errors.Is(err, ErrMissingBaseURL) {
		t.Fatalf("expected missing path error, got %v", err)
	}
}

func TestGetNotablesStatusError(t *testing.T) {
	testlog.Start(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, NotablesPath: "notables"})
	_, err := client.GetNotables(context.Background(), "", "", 1)
	if !errors.Is(err, ErrStatus) {
		t.Fatalf("expected ErrStatus, got %v", err)
	}
}
