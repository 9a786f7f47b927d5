package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	appName        = "nlsh"
	configName     = "config"
	configType     = "toml"
	configFileName = configName + "." + configType
	envPrefix      = "NLSH"
	sessionsDir    = "sessions"
)

const (
	BackendFile = "file"
	BackendPass = "pass"
)

type Config struct {
	Dir         string            `mapstructure:"-"`
	Verbose     bool              `mapstructure:"verbose"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Copilot     CopilotConfig     `mapstructure:"copilot"`
	Session     SessionConfig     `mapstructure:"session"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	HTTP        HTTPConfig        `mapstructure:"http"`
}

type AuthConfig struct {
	GitHubURL string   `mapstructure:"github_url"`
	ClientID  string   `mapstructure:"client_id"`
	Scopes    []string `mapstructure:"scopes"`
}

type CopilotConfig struct {
	TokenURL      string `mapstructure:"token_url"`
	APIURL        string `mapstructure:"api_url"`
	Model         string `mapstructure:"model"`
	IntegrationID string `mapstructure:"integration_id"`
	EditorVersion string `mapstructure:"editor_version"`
}

type SessionConfig struct {
	ContextLimit int  `mapstructure:"context_limit"`
	Redact       bool `mapstructure:"redact"`
}

type CredentialsConfig struct {
	Backend string `mapstructure:"backend"`
}

type HTTPConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

func (c Config) ConfigFile() string {
	return filepath.Join(c.Dir, configFileName)
}

// SessionsDir is informational; sessions are addressed as blob keys
// relative to Dir.
func (c Config) SessionsDir() string {
	return filepath.Join(c.Dir, sessionsDir)
}

// Dir resolves the configuration directory:
// $NLSH_CONFIG_DIR, then $XDG_CONFIG_HOME/nlsh, then ~/.config/nlsh.
func Dir() (string, error) {
	if dir := os.Getenv(envPrefix + "_CONFIG_DIR"); dir != "" {
		return filepath.Clean(dir), nil
	}
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", appName), nil
}

// Load reads config.toml from the resolved directory when it exists and
// layers NLSH_* environment variables over it. A nil v gets a fresh viper.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	dir, err := Dir()
	if err != nil {
		return Config{}, err
	}

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("copilot.model", envPrefix+"_COPILOT_MODEL", envPrefix+"_MODEL")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.Dir = dir

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Credentials.Backend {
	case BackendFile, BackendPass:
	default:
		return fmt.Errorf("credentials.backend must be %q or %q, got %q", BackendFile, BackendPass, c.Credentials.Backend)
	}

	required := map[string]string{
		"auth.github_url":   c.Auth.GitHubURL,
		"auth.client_id":    c.Auth.ClientID,
		"copilot.token_url": c.Copilot.TokenURL,
		"copilot.api_url":   c.Copilot.APIURL,
		"copilot.model":     c.Copilot.Model,
	}
	for _, key := range sortedKeys(required) {
		if strings.TrimSpace(required[key]) == "" {
			return fmt.Errorf("%s is required", key)
		}
	}

	if c.Session.ContextLimit <= 0 {
		return fmt.Errorf("session.context_limit must be positive, got %d", c.Session.ContextLimit)
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive, got %s", c.HTTP.Timeout)
	}
	return nil
}
