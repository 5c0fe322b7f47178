package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testViper returns an initialized viper with every bound environment variable cleared
func testViper(t *testing.T, cfgFile string) *viper.Viper {
	t.Helper()
	for _, env := range []string{
		"GITHUB_TOKEN", "GH_TOKEN", "PROJECT_URL", "ISSUE_NODE_ID", "ISSUE_BODY",
		"GITHUB_EVENT_PATH", "GITHUB_GRAPHQL_URL", "INTAKE_DRY_RUN", "INTAKE_MAX_ATTEMPTS",
	} {
		t.Setenv(env, "")
	}

	v := viper.New()
	require.NoError(t, Init(v, cfgFile))
	return v
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromEnvironment(t *testing.T) {
	v := testViper(t, "")
	t.Setenv("GITHUB_TOKEN", "ghp_test")
	t.Setenv("PROJECT_URL", "https://github.com/orgs/acme/projects/7")
	t.Setenv("ISSUE_NODE_ID", "I_1")
	t.Setenv("ISSUE_BODY", "### Effort\nHigh")
	t.Setenv("GITHUB_GRAPHQL_URL", "https://ghe.example.com/api/graphql")
	t.Setenv("INTAKE_DRY_RUN", "true")

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, &Config{
		Token:       "ghp_test",
		ProjectURL:  "https://github.com/orgs/acme/projects/7",
		IssueNodeID: "I_1",
		IssueBody:   "### Effort\nHigh",
		Endpoint:    "https://ghe.example.com/api/graphql",
		DryRun:      true,
		MaxAttempts: 3,
	}, cfg)
}

func TestLoadTokenFallsBackToGHToken(t *testing.T) {
	v := testViper(t, "")
	t.Setenv("GH_TOKEN", "gho_fallback")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "gho_fallback", cfg.Token)
}

func TestLoadIssueFromEventPayload(t *testing.T) {
	eventPath := writeFile(t, "event.json", `{
		"action": "opened",
		"issue": {
			"number": 42,
			"node_id": "I_kwDOevent",
			"body": "### Area / Component\nBackend"
		}
	}`)

	t.Run("fills missing issue fields", func(t *testing.T) {
		v := testViper(t, "")
		t.Setenv("GITHUB_EVENT_PATH", eventPath)

		cfg, err := Load(v)
		require.NoError(t, err)
		assert.Equal(t, "I_kwDOevent", cfg.IssueNodeID)
		assert.Equal(t, "### Area / Component\nBackend", cfg.IssueBody)
	})

	t.Run("explicit values win", func(t *testing.T) {
		v := testViper(t, "")
		t.Setenv("GITHUB_EVENT_PATH", eventPath)
		v.Set(KeyIssueNodeID, "I_override")
		v.Set(KeyIssueBody, "### Effort\nLow")

		cfg, err := Load(v)
		require.NoError(t, err)
		assert.Equal(t, "I_override", cfg.IssueNodeID)
		assert.Equal(t, "### Effort\nLow", cfg.IssueBody)
	})

	t.Run("body is not borrowed from a different issue", func(t *testing.T) {
		v := testViper(t, "")
		t.Setenv("GITHUB_EVENT_PATH", eventPath)
		t.Setenv("ISSUE_NODE_ID", "I_other_issue")

		cfg, err := Load(v)
		require.NoError(t, err)
		assert.Equal(t, "I_other_issue", cfg.IssueNodeID)
		assert.Empty(t, cfg.IssueBody)
	})

	t.Run("body is taken when the event names the same issue", func(t *testing.T) {
		v := testViper(t, "")
		t.Setenv("GITHUB_EVENT_PATH", eventPath)
		t.Setenv("ISSUE_NODE_ID", "I_kwDOevent")

		cfg, err := Load(v)
		require.NoError(t, err)
		assert.Equal(t, "I_kwDOevent", cfg.IssueNodeID)
		assert.Equal(t, "### Area / Component\nBackend", cfg.IssueBody)
	})
}

func TestLoadEventWithoutIssue(t *testing.T) {
	v := testViper(t, "")
	t.Setenv("GITHUB_EVENT_PATH", writeFile(t, "event.json", `{"action":"push"}`))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Empty(t, cfg.IssueNodeID)
	assert.Empty(t, cfg.IssueBody)
}

func TestLoadEventErrors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr string
	}{
		{
			name:    "missing file",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.json") },
			wantErr: "failed to read event payload",
		},
		{
			name:    "invalid JSON",
			path:    func(t *testing.T) string { return writeFile(t, "event.json", "{not json") },
			wantErr: "failed to parse event payload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := testViper(t, "")
			t.Setenv("GITHUB_EVENT_PATH", tt.path(t))

			_, err := Load(v)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	cfgFile := writeFile(t, "intake.yaml", `
project_url: https://github.com/users/octocat/projects/3
max_attempts: 5
field_mappings:
  - "Area / Component=Component"
  - "Effort=Size"
`)

	v := testViper(t, cfgFile)
	t.Setenv("PROJECT_URL", "https://github.com/orgs/acme/projects/7")

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/orgs/acme/projects/7", cfg.ProjectURL, "environment overrides config file")
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, []string{"Area / Component=Component", "Effort=Size"}, cfg.FieldMappings)
}

func TestLoadRejectsMaxAttemptsOutOfRange(t *testing.T) {
	for _, attempts := range []string{"0", "-1", "11", "1000"} {
		t.Run(attempts, func(t *testing.T) {
			v := testViper(t, "")
			t.Setenv("INTAKE_MAX_ATTEMPTS", attempts)

			_, err := Load(v)
			assert.ErrorContains(t, err, "invalid max_attempts")
		})
	}

	v := testViper(t, "")
	t.Setenv("INTAKE_MAX_ATTEMPTS", "10")
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, MaxAttemptsLimit, cfg.MaxAttempts)
}

func TestInitMissingConfigFile(t *testing.T) {
	err := Init(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}
