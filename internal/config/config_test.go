package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/blueswarm/orchestrator/internal/testutil/testlog"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "orchestrator.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	testlog.Start(t)
	cfg, err := LoadConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("listen addr default wrong: %q", cfg.ListenAddr)
	}
	if !reflect.DeepEqual(cfg.AllowStatuses, []string{"Approved", "Ready for Change"}) {
		t.Fatalf("allow statuses default wrong: %v", cfg.AllowStatuses)
	}
	if cfg.EnforceEnabled {
		t.Fatalf("enforcement must default to disabled")
	}
	if cfg.Jira.EnableWrite {
		t.Fatalf("jira writes must default to disabled")
	}
}

func TestLoadConfigFull(t *testing.T) {
	testlog.Start(t)
	content := `
listen_addr = ":9443"
cors_origins = ["http://localhost:3000"]
enforce_enabled = true
allow_statuses = ["Approved"]
fieldmap_path = "configs/fieldmap.yml"

[jira]
base_url = "https://example.atlassian.net"
email = "bot@example.com"
api_token = "token"
enable_write = true

[zpa]
base_url = "https://config.zpa.example"
client_secret = "secret"

[idr]
base_url = "https://idr.example"
api_key = "key"
notables_path = "idr/v1/notables"
`
	cfg, err := LoadConfig(writeConfig(t, content))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ListenAddr != ":9443" || !cfg.EnforceEnabled {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Jira.BaseURL != "https://example.atlassian.net" || !cfg.Jira.EnableWrite {
		t.Fatalf("jira config wrong: %+v", cfg.Jira)
	}
	if cfg.IDR.NotablesPath != "idr/v1/notables" {
		t.Fatalf("idr config wrong: %+v", cfg.IDR)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	testlog.Start(t)
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatalf("missing config must error")
	}
}

func TestValidateEnforceRequiresJira(t *testing.T) {
	testlog.Start(t)
	_, err := LoadConfig(writeConfig(t, "enforce_enabled = true\n"))
	if err == nil || !strings.Contains(err.Error(), "jira.base_url") {
		t.Fatalf("expected jira requirement error, got %v", err)
	}
}

func TestWriteTemplateLoadsClean(t *testing.T) {
	testlog.Start(t)
	path := filepath.Join(t.TempDir(), "orchestrator.toml")
	if err := WriteTemplate(path, false); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("template must load cleanly: %v", err)
	}
	if cfg.EnforceEnabled {
		t.Fatalf("template must ship with enforcement disabled")
	}
	if err := WriteTemplate(path, false); err == nil {
		t.Fatalf("existing config must not be overwritten")
	}
}

func TestValidateBlankAllowStatus(t *testing.T) {
	testlog.Start(t)
	_, err := LoadConfig(writeConfig(t, `allow_statuses = ["Approved", " "]`))
	if err == nil {
		t.Fatalf("blank allow status must error")
	}
}
