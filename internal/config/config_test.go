package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("NLSH_CONFIG_DIR", dir)
	for _, key := range []string{"NLSH_COPILOT_MODEL", "NLSH_MODEL", "NLSH_VERBOSE", "NLSH_CREDENTIALS_BACKEND", "NLSH_SESSION_CONTEXT_LIMIT"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return dir
}

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	want := Default()
	want.Dir = dir
	assert.Equal(t, want, cfg)
	assert.Equal(t, filepath.Join(dir, "config.toml"), cfg.ConfigFile())
	assert.Equal(t, filepath.Join(dir, "sessions"), cfg.SessionsDir())
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := isolate(t)
	content := `[copilot]
model = "claude-3.5-sonnet"

[session]
context_limit = 3
redact = false

[http]
timeout = "5s"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600))

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "claude-3.5-sonnet", cfg.Copilot.Model)
	assert.Equal(t, 3, cfg.Session.ContextLimit)
	assert.False(t, cfg.Session.Redact)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "https://api.githubcopilot.com", cfg.Copilot.APIURL)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[copilot]\nmodel = \"from-file\"\n"), 0o600))
	t.Setenv("NLSH_MODEL", "from-env")
	t.Setenv("NLSH_CREDENTIALS_BACKEND", "pass")
	t.Setenv("NLSH_VERBOSE", "true")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Copilot.Model)
	assert.Equal(t, BackendPass, cfg.Credentials.Backend)
	assert.True(t, cfg.Verbose)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	testCases := []struct {
		name    string
		content string
		want    string
	}{
		{name: "backend", content: "[credentials]\nbackend = \"keychain\"\n", want: "credentials.backend"},
		{name: "context limit", content: "[session]\ncontext_limit = 0\n", want: "session.context_limit"},
		{name: "model", content: "[copilot]\nmodel = \"\"\n", want: "copilot.model is required"},
		{name: "syntax", content: "[copilot\n", want: "read config file"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := isolate(t)
			require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(tc.content), 0o600))

			_, err := Load(viper.New())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestDirResolutionOrder(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("NLSH_CONFIG_DIR", "")
	t.Setenv("XDG_CONFIG_HOME", "")

	dir, err := Dir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "nlsh"), dir)

	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, "xdg"))
	dir, err = Dir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "xdg", "nlsh"), dir)

	t.Setenv("NLSH_CONFIG_DIR", filepath.Join(home, "explicit"))
	dir, err = Dir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "explicit"), dir)
}

func TestWriteThenLoadRoundTrip(t *testing.T) {
	dir := isolate(t)
	cfg := Default()
	cfg.Copilot.Model = "gpt-4o-mini"
	cfg.HTTP.Timeout = 45 * time.Second

	path := filepath.Join(dir, "config.toml")
	require.NoError(t, Write(path, cfg, false))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(viper.New())
	require.NoError(t, err)
	cfg.Dir = dir
	assert.Equal(t, cfg, loaded)
}

func TestWriteRefusesToOverwrite(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, Write(path, Default(), false))

	err := Write(path, Default(), false)
	require.ErrorIs(t, err, ErrConfigExists)

	require.NoError(t, Write(path, Default(), true))
}
