// Package fieldmap owns the ticket field mapping used when notables are
// promoted to ticketing issues.
package fieldmap

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Map controls how normalized notables translate into issue fields.
type Map struct {
	ProjectKey       string            `yaml:"project_key"`
	DefaultIssueType string            `yaml:"default_issue_type"`
	DefaultLabels    []string          `yaml:"default_labels"`
	Components       []string          `yaml:"components"`
	PriorityMap      map[string]string `yaml:"priority_map"`
	CustomFields     map[string]any    `yaml:"custom_fields"`
}

// Default returns the built-in mapping used when no file is configured.
func Default() Map {
	return Map{
		ProjectKey:       "SEC",
		DefaultIssueType: "Task",
		DefaultLabels:    []string{"BLUE-SWARM", "TRIAGE"},
		Components:       []string{"Security"},
		PriorityMap: map[string]string{
			"critical": "Highest",
			"high":     "High",
			"medium":   "Medium",
			"low":      "Low",
		},
		CustomFields: map[string]any{},
	}
}

// Load overlays a YAML file onto the defaults. A missing file yields the
// defaults; a malformed file is an error.
func Load(path string) (Map, error) {
	out := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return Map{}, fmt.Errorf("fieldmap load failed (%s): %w", path, err)
	}

	var overlay Map
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return Map{}, fmt.Errorf("fieldmap parse failed (%s): %w", path, err)
	}

	if overlay.ProjectKey != "" {
		out.ProjectKey = overlay.ProjectKey
	}
	if overlay.DefaultIssueType != "" {
		out.DefaultIssueType = overlay.DefaultIssueType
	}
	if overlay.DefaultLabels != nil {
		out.DefaultLabels = overlay.DefaultLabels
	}
	if overlay.Components != nil {
		out.Components = overlay.Components
	}
	for k, v := range overlay.PriorityMap {
		out.PriorityMap[k] = v
	}
	for k, v := range overlay.CustomFields {
		out.CustomFields[k] = v
	}
	return out, nil
}

// MapPriority resolves a notable severity to an issue priority name.
// Unknown severities map to the empty string (no priority set).
func (m Map) MapPriority(severity string) string {
	if severity == "" {
		return ""
	}
	return m.PriorityMap[strings.ToLower(severity)]
}
