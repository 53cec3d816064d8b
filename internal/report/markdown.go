// Package report owns markdown rendering of enrichment results for ticket
// descriptions and comments.
package report

import (
	"sort"
	"strings"
)

const maxTableRows = 200

// IndicatorTable renders indicators as a markdown table, sorted by type and
// value, capped per type.
func IndicatorTable(indicators map[string][]string) string {
	if len(indicators) == 0 {
		return "_No indicators extracted._"
	}
	rows := []string{"| Type | Value |", "|---|---|"}
	types := make([]string, 0, len(indicators))
	for typ := range indicators {
		types = append(types, typ)
	}
	sort.Strings(types)
	for _, typ := range types {
		vals := append([]string(nil), indicators[typ]...)
		sort.Strings(vals)
		if len(vals) > maxTableRows {
			vals = vals[:maxTableRows]
		}
		for _, v := range vals {
			rows = append(rows, "| "+typ+" | "+v+" |")
		}
	}
	return strings.Join(rows, "\n")
}

// BuildDescription assembles a ticket description from a title heading,
// summary line, indicator table, asset list, and free-form notes.
func BuildDescription(title, summary string, indicators map[string][]string, assets []string, notes string) string {
	var lines []string
	if title != "" {
		lines = append(lines, "## "+strings.TrimSpace(title), "")
	}
	if summary != "" {
		lines = append(lines, strings.TrimSpace(summary), "")
	}
	if len(assets) > 0 {
		items := make([]string, 0, len(assets))
		for _, a := range assets {
			items = append(items, "- "+a)
		}
		lines = append(lines, "**Assets**", strings.Join(items, "\n"), "")
	}
	lines = append(lines, "**Indicators**", IndicatorTable(indicators), "")
	if notes != "" {
		lines = append(lines, "**Notes**", strings.TrimSpace(notes), "")
	}
	return strings.Join(lines, "\n")
}
