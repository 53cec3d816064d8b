package config

import (
	"fmt"
	"os"
)

// WriteTemplate writes a starter orchestrator config for new deployments.
func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(orchestratorTemplate), 0o600)
}

const orchestratorTemplate = `listen_addr = ":8080"
cors_origins = ["http://localhost:3000"]

# Enforcement is fail-closed: leave disabled until change review is wired up.
enforce_enabled = false
allow_statuses = ["Approved", "Ready for Change"]
fieldmap_path = "configs/jira_fieldmap.yml"

[jira]
base_url = ""
email = ""
api_token = ""
enable_write = false

[zpa]
base_url = ""
client_secret = ""
segments_path = ""
policies_path = ""

[idr]
base_url = ""
api_key = ""
notables_path = ""
`
