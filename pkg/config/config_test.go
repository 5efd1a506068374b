package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renatogalera/chatstream/pkg/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, `
baseURL: https://example.test/v1
model: gpt-4o-mini
organization: org-9
timeoutSeconds: 30
maxTokens: 256
`)
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/v1", cfg.BaseURL)
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, "org-9", cfg.Organization)
	assert.Equal(t, 30, cfg.TimeoutSeconds)
	assert.Equal(t, 256, cfg.MaxTokens)
	require.NoError(t, cfg.Validate())
}

func TestValidate_RejectsMissingModel(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{BaseURL: "https://example.test/v1"}
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsBadURL(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{BaseURL: "not a url", Model: "m"}
	assert.Error(t, cfg.Validate())
}

func TestManager_MergeFlagsOverrideFile(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{BaseURL: "https://example.test/v1", Model: "file-model"}

	mgr := config.NewManager(cfg)
	mgr.SetFlag("model", "flag-model")
	mgr.SetFlag("baseURL", "") // zero value: must not override
	merged := mgr.Merge()

	assert.Equal(t, "flag-model", merged.Model)
	assert.Equal(t, "https://example.test/v1", merged.BaseURL)
}

func TestResolveAPIKey(t *testing.T) {
	key, err := config.ResolveAPIKey("flag-key", "config-key")
	require.NoError(t, err)
	assert.Equal(t, "flag-key", key)

	t.Setenv(config.APIKeyEnvVar, "env-key")
	key, err = config.ResolveAPIKey("", "config-key")
	require.NoError(t, err)
	assert.Equal(t, "env-key", key)

	t.Setenv(config.APIKeyEnvVar, "")
	key, err = config.ResolveAPIKey("", "config-key")
	require.NoError(t, err)
	assert.Equal(t, "config-key", key)

	_, err = config.ResolveAPIKey("", "")
	assert.Error(t, err)
}
