package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/abdidvp/skillguard/internal/adapters/outbound/config"
	"github.com/abdidvp/skillguard/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "skillguard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestYAMLLoader_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := appconfig.New().Load("")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}

func TestYAMLLoader_MissingFileIsAnError(t *testing.T) {
	_, err := appconfig.New().Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestYAMLLoader_EmptyFileReturnsDefaults(t *testing.T) {
	cfg, err := appconfig.New().Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}

func TestYAMLLoader_ValidYAML(t *testing.T) {
	path := writeConfig(t, `
settled_order_statuses: [paid, fulfilled]
output_schema:
  strict: true
redirect:
  allowed_redirect_uris:
    - https://api.example.com/auth/google/callback
`)
	cfg, err := appconfig.New().Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"paid", "fulfilled"}, cfg.SettledOrderStatuses)
	assert.True(t, cfg.OutputSchema.Strict)
	assert.Equal(t, []string{"https://api.example.com/auth/google/callback"}, cfg.Redirect.AllowedRedirectURIs)
	// Unset lists keep their defaults.
	assert.Equal(t, domain.DefaultConfig().Redirect.LoopbackHosts, cfg.Redirect.LoopbackHosts)
}

func TestYAMLLoader_InvalidYAML(t *testing.T) {
	path := writeConfig(t, `{{{invalid yaml`)
	_, err := appconfig.New().Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing")
}

func TestYAMLLoader_UnknownKeyRejected(t *testing.T) {
	path := writeConfig(t, `settled_statuses: [paid]`)
	_, err := appconfig.New().Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "settled_statuses")
}

func TestYAMLLoader_InvalidAllowListURL(t *testing.T) {
	path := writeConfig(t, `
redirect:
  allowed_redirect_uris: ["not a url"]
`)
	_, err := appconfig.New().Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be an absolute URL")
}

func TestYAMLLoader_CredentialProviderNeedsEnvForRequired(t *testing.T) {
	path := writeConfig(t, `
credentials:
  providers:
    gitlab:
      required: [client_id, client_secret]
      env:
        client_id: GITLAB_CLIENT_ID
`)
	_, err := appconfig.New().Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required field "client_secret" has no env mapping`)
}

func TestYAMLLoader_Rules(t *testing.T) {
	path := writeConfig(t, `
rules:
  validate-payment-contract:
    - path: verify_payload.currency
      required: true
      type: string
      one_of: [NGN, GHS]
      when: expected_amount > 0
`)
	cfg, err := appconfig.New().Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Rules["validate-payment-contract"], 1)
	rule := cfg.Rules["validate-payment-contract"][0]
	assert.Equal(t, "verify_payload.currency", rule.Path)
	assert.True(t, rule.Required)
	assert.Equal(t, []string{"NGN", "GHS"}, rule.OneOf)
	assert.Equal(t, "expected_amount > 0", rule.When)
}

func TestYAMLLoader_RuleWithMalformedPath(t *testing.T) {
	path := writeConfig(t, `
rules:
  validate-payment-contract:
    - path: verify_payload..currency
`)
	_, err := appconfig.New().Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dotted path")
}

func TestYAMLLoader_RuleWithUnknownType(t *testing.T) {
	path := writeConfig(t, `
rules:
  validate-redirect-uri:
    - path: redirect_uri
      type: url
`)
	_, err := appconfig.New().Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be one of")
}
