package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// OrchestratorConfig is the service configuration. Mutating behavior
// (enforcement, ticket writes) is opt-in and defaults to off.
type OrchestratorConfig struct {
	ListenAddr     string   `toml:"listen_addr"`
	CorsOrigins    []string `toml:"cors_origins"`
	EnforceEnabled bool     `toml:"enforce_enabled"`
	AllowStatuses  []string `toml:"allow_statuses"`
	FieldmapPath   string   `toml:"fieldmap_path"`

	Jira JiraConfig `toml:"jira"`
	ZPA  ZPAConfig  `toml:"zpa"`
	IDR  IDRConfig  `toml:"idr"`
}

type JiraConfig struct {
	BaseURL     string `toml:"base_url"`
	Email       string `toml:"email"`
	APIToken    string `toml:"api_token"`
	EnableWrite bool   `toml:"enable_write"`
}

type ZPAConfig struct {
	BaseURL      string `toml:"base_url"`
	ClientSecret string `toml:"client_secret"`
	SegmentsPath string `toml:"segments_path"`
	PoliciesPath string `toml:"policies_path"`
}

type IDRConfig struct {
	BaseURL      string `toml:"base_url"`
	APIKey       string `toml:"api_key"`
	NotablesPath string `toml:"notables_path"`
}

func DefaultConfig() OrchestratorConfig {
	return OrchestratorConfig{
		ListenAddr:     ":8080",
		AllowStatuses:  []string{"Approved", "Ready for Change"},
		EnforceEnabled: false,
	}
}

// LoadConfig reads a TOML file and fills zero-value fields from defaults.
func LoadConfig(path string) (OrchestratorConfig, error) {
	var cfg OrchestratorConfig
	if err := loadToml(path, &cfg); err != nil {
		return OrchestratorConfig{}, err
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultConfig().ListenAddr
	}
	if len(cfg.AllowStatuses) == 0 {
		cfg.AllowStatuses = DefaultConfig().AllowStatuses
	}
	if err := ValidateConfig(cfg); err != nil {
		return OrchestratorConfig{}, err
	}
	return cfg, nil
}

func loadToml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	return nil
}

func ValidateConfig(cfg OrchestratorConfig) error {
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		return fmt.Errorf("config missing listen_addr")
	}
	for i, status := range cfg.AllowStatuses {
		if strings.TrimSpace(status) == "" {
			return fmt.Errorf("allow_statuses[%d] is blank", i)
		}
	}
	if cfg.EnforceEnabled && strings.TrimSpace(cfg.Jira.BaseURL) == "" {
		return fmt.Errorf("enforce_enabled requires jira.base_url for approval lookups")
	}
	return nil
}
