package config

import (
	"sort"
	"time"

	"github.com/spf13/viper"
)

// GitHub's public client id for the Copilot device flow.
const defaultClientID = "Iv1.b507a08c87ecfe98"

func Default() Config {
	return Config{
		Auth: AuthConfig{
			GitHubURL: "https://github.com",
			ClientID:  defaultClientID,
			Scopes:    []string{"read:user"},
		},
		Copilot: CopilotConfig{
			TokenURL:      "https://api.github.com",
			APIURL:        "https://api.githubcopilot.com",
			Model:         "gpt-4o",
			IntegrationID: "vscode-chat",
			EditorVersion: "vscode/1.95.0",
		},
		Session: SessionConfig{
			ContextLimit: 5,
			Redact:       true,
		},
		Credentials: CredentialsConfig{Backend: BackendFile},
		HTTP:        HTTPConfig{Timeout: 30 * time.Second},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("verbose", false)
	v.SetDefault("auth.github_url", d.Auth.GitHubURL)
	v.SetDefault("auth.client_id", d.Auth.ClientID)
	v.SetDefault("auth.scopes", d.Auth.Scopes)
	v.SetDefault("copilot.token_url", d.Copilot.TokenURL)
	v.SetDefault("copilot.api_url", d.Copilot.APIURL)
	v.SetDefault("copilot.model", d.Copilot.Model)
	v.SetDefault("copilot.integration_id", d.Copilot.IntegrationID)
	v.SetDefault("copilot.editor_version", d.Copilot.EditorVersion)
	v.SetDefault("session.context_limit", d.Session.ContextLimit)
	v.SetDefault("session.redact", d.Session.Redact)
	v.SetDefault("credentials.backend", d.Credentials.Backend)
	v.SetDefault("http.timeout", d.HTTP.Timeout)
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
