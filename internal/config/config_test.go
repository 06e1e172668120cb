package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvToken, "")
	t.Setenv(EnvConfigPath, "")
	t.Setenv(EnvMode, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.ErrorIs(t, cfg.Validate(), ErrMissingToken)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
github:
  mode: events
  wait_on_rate_limit: true
output:
  title_width: 40
  summary: false
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv(EnvToken, " secret ")
	t.Setenv(EnvConfigPath, "")
	t.Setenv(EnvMode, "graphql")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.GitHub.Token)
	assert.Equal(t, ModeGraphQL, cfg.GitHub.Mode, "environment overrides the file")
	assert.True(t, cfg.GitHub.WaitOnRateLimit)
	assert.Equal(t, 40, cfg.Output.TitleWidth)
	assert.False(t, cfg.Output.Summary)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_PathFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  title_width: 20\n"), 0o600))
	t.Setenv(EnvConfigPath, path)
	t.Setenv(EnvMode, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Output.TitleWidth)
	assert.Equal(t, ModeSearch, cfg.GitHub.Mode)
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv(EnvConfigPath, "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config file")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("output: [unclosed"), 0o600))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "parse config file")
}

func TestConfig_Validate(t *testing.T) {
	valid := Default()
	valid.GitHub.Token = "token"
	require.NoError(t, valid.Validate())

	badMode := valid
	badMode.GitHub.Mode = "scrape"
	assert.ErrorContains(t, badMode.Validate(), `unknown mode "scrape"`)

	narrow := valid
	narrow.Output.TitleWidth = 2
	assert.ErrorContains(t, narrow.Validate(), "title width")
}

func TestValidateDaysBack(t *testing.T) {
	for _, days := range []int{1, 7, 90} {
		assert.NoError(t, ValidateDaysBack(days), "days %d", days)
	}
	for _, days := range []int{-1, 0, 91} {
		assert.Error(t, ValidateDaysBack(days), "days %d", days)
	}
}

func TestValidateUsername(t *testing.T) {
	for _, user := range []string{"octocat", "a", "octo-cat", "Octo42", strings.Repeat("a", 39)} {
		assert.NoError(t, ValidateUsername(user), "user %q", user)
	}
	for _, user := range []string{"", "-octocat", "octocat repo:x/y", "octo_cat", "octocat/", strings.Repeat("a", 40)} {
		assert.Error(t, ValidateUsername(user), "user %q", user)
	}
}
