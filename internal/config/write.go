package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	configDirMode  = 0o700
	configFileMode = 0o600
)

var ErrConfigExists = errors.New("config file already exists")

type fileSchema struct {
	Auth        authSchema        `toml:"auth"`
	Copilot     copilotSchema     `toml:"copilot"`
	Session     sessionSchema     `toml:"session"`
	Credentials credentialsSchema `toml:"credentials"`
	HTTP        httpSchema        `toml:"http"`
}

type authSchema struct {
	GitHubURL string   `toml:"github_url"`
	ClientID  string   `toml:"client_id"`
	Scopes    []string `toml:"scopes"`
}

type copilotSchema struct {
	TokenURL      string `toml:"token_url"`
	APIURL        string `toml:"api_url"`
	Model         string `toml:"model"`
	IntegrationID string `toml:"integration_id"`
	EditorVersion string `toml:"editor_version"`
}

type sessionSchema struct {
	ContextLimit int  `toml:"context_limit"`
	Redact       bool `toml:"redact"`
}

type credentialsSchema struct {
	Backend string `toml:"backend"`
}

type httpSchema struct {
	Timeout string `toml:"timeout"`
}

func toSchema(cfg Config) fileSchema {
	return fileSchema{
		Auth: authSchema{
			GitHubURL: cfg.Auth.GitHubURL,
			ClientID:  cfg.Auth.ClientID,
			Scopes:    cfg.Auth.Scopes,
		},
		Copilot: copilotSchema{
			TokenURL:      cfg.Copilot.TokenURL,
			APIURL:        cfg.Copilot.APIURL,
			Model:         cfg.Copilot.Model,
			IntegrationID: cfg.Copilot.IntegrationID,
			EditorVersion: cfg.Copilot.EditorVersion,
		},
		Session: sessionSchema{
			ContextLimit: cfg.Session.ContextLimit,
			Redact:       cfg.Session.Redact,
		},
		Credentials: credentialsSchema{Backend: cfg.Credentials.Backend},
		HTTP:        httpSchema{Timeout: cfg.HTTP.Timeout.String()},
	}
}

// Write encodes cfg as TOML at path. An existing file is kept unless
// overwrite is set.
func Write(path string, cfg Config, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat config file: %w", err)
		}
	}

	data, err := toml.Marshal(toSchema(cfg))
	if err != nil {
		return fmt.Errorf("encode config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, configFileMode); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
