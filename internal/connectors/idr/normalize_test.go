package idr

import (
	"reflect"
	"testing"

	"github.com/blueswarm/orchestrator/internal/testutil/testlog"
)

func TestNormalizeDefaults(t *testing.T) {
	testlog.Start(t)
	n := Normalize(map[string]any{})
	if n.Title != "IDR Notable" || n.Severity != "medium" {
		t.Fatalf("unexpected defaults: %+v", n)
	}
}

func TestNormalizeFieldAliases(t *testing.T) {
	testlog.Start(t)
	n := Normalize(map[string]any{
		"name":    "lateral movement",
		"risk":    "HIGH",
		"summary": "seen on two hosts",
	})
	if n.Title != "lateral movement" {
		t.Fatalf("name alias not honored: %+v", n)
	}
	if n.Severity != "high" {
		t.Fatalf("severity must lowercase risk: %+v", n)
	}
	if n.Description != "seen on two hosts" {
		t.Fatalf("summary alias not honored: %+v", n)
	}
}

func TestNormalizeIndicatorShapes(t *testing.T) {
	testlog.Start(t)
	n := Normalize(map[string]any{
		"indicators": map[string]any{
			"ipv4": []any{"10.0.0.1", "10.0.0.1", "10.0.0.2"},
		},
		"observables": []any{
			map[string]any{"type": "domain", "value": "evil.example.com"},
			map[string]any{"kind": "url", "indicator": "http://evil.example.com/x"},
			map[string]any{"name": "unnamed-indicator"},
		},
	})
	if got := n.Indicators["ipv4"]; !reflect.DeepEqual(got, []string{"10.0.0.1", "10.0.0.2"}) {
		t.Fatalf("ipv4 not deduped/sorted: %v", got)
	}
	if got := n.Indicators["domain"]; !reflect.DeepEqual(got, []string{"evil.example.com"}) {
		t.Fatalf("mapped observable missing: %v", got)
	}
	if got := n.Indicators["url"]; !reflect.DeepEqual(got, []string{"http://evil.example.com/x"}) {
		t.Fatalf("kind/indicator aliases missing: %v", got)
	}
	if got := n.Indicators["value"]; !reflect.DeepEqual(got, []string{"unnamed-indicator"}) {
		t.Fatalf("untyped observable must bucket as value: %v", got)
	}
}

func TestNormalizeAssets(t *testing.T) {
	testlog.Start(t)
	n := Normalize(map[string]any{
		"assets": []any{"host-a", "host-b", "host-a"},
		"hosts":  map[string]any{"primary": "host-c"},
	})
	want := []string{"host-a", "host-b", "host-c"}
	if !reflect.DeepEqual(n.Assets, want) {
		t.Fatalf("unexpected assets: %v", n.Assets)
	}
}
