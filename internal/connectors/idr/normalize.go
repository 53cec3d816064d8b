package idr

import (
	"fmt"
	"sort"
	"strings"
)

// Notable is the normalized shape of one detection event.
type Notable struct {
	Title       string              `json:"title"`
	Severity    string              `json:"severity"`
	Description string              `json:"description"`
	Indicators  map[string][]string `json:"indicators"`
	Assets      []string            `json:"assets"`
}

var (
	indicatorKeys = []string{"indicators", "iocs", "entities", "observables"}
	assetKeys     = []string{"assets", "hosts", "targets"}
)

// Normalize flattens one raw notable into a Notable. Vendors disagree on
// field names, so each field falls through a list of aliases.
func Normalize(raw map[string]any) Notable {
	n := Notable{
		Title:      "IDR Notable",
		Severity:   "medium",
		Indicators: map[string][]string{},
	}
	if title := firstString(raw, "title", "name"); title != "" {
		n.Title = title
	}
	if sev := firstString(raw, "severity", "risk"); sev != "" {
		n.Severity = strings.ToLower(sev)
	}
	n.Description = firstString(raw, "description", "summary")

	for _, key := range indicatorKeys {
		collectIndicators(raw[key], n.Indicators)
	}
	for typ, vals := range n.Indicators {
		n.Indicators[typ] = dedupe(vals)
	}

	var assets []string
	for _, key := range assetKeys {
		switch v := raw[key].(type) {
		case []any:
			for _, item := range v {
				assets = append(assets, stringify(item))
			}
		case map[string]any:
			for _, item := range v {
				assets = append(assets, stringify(item))
			}
		}
	}
	n.Assets = dedupe(assets)
	return n
}

func collectIndicators(v any, into map[string][]string) {
	switch val := v.(type) {
	case map[string]any:
		for typ, items := range val {
			list, ok := items.([]any)
			if !ok {
				continue
			}
			for _, item := range list {
				if s := stringify(item); s != "" {
					into[typ] = append(into[typ], s)
				}
			}
		}
	case []any:
		for _, item := range val {
			entry, ok := item.(map[string]any)
			if !ok {
				continue
			}
			typ := firstString(entry, "type", "kind")
			if typ == "" {
				typ = "value"
			}
			if s := firstString(entry, "value", "indicator", "name"); s != "" {
				into[typ] = append(into[typ], s)
			}
		}
	}
}

func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

func dedupe(vals []string) []string {
	if len(vals) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(vals))
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
