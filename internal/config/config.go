// Package config loads the settings of a sync run from flags, environment,
// an optional config file and the GitHub Actions event payload.
package config

import (
	"fmt"
	"log/slog"

	"github.com/spf13/viper"
)

// Keys under which settings are stored in viper
const (
	KeyToken         = "token"
	KeyProjectURL    = "project_url"
	KeyIssueNodeID   = "issue.node_id"
	KeyIssueBody     = "issue.body"
	KeyEventPath     = "event_path"
	KeyEndpoint      = "endpoint"
	KeyFieldMappings = "field_mappings"
	KeyDryRun        = "dry_run"
	KeyMaxAttempts   = "max_attempts"
)

// EnvPrefix is the prefix for environment variables without an explicit binding
const EnvPrefix = "INTAKE"

// MaxAttemptsLimit is the largest accepted max_attempts value
const MaxAttemptsLimit = 10

// Config holds everything a run needs. Nothing reads process state after Load.
type Config struct {
	Token         string
	ProjectURL    string
	IssueNodeID   string
	IssueBody     string
	Endpoint      string
	FieldMappings []string
	DryRun        bool
	MaxAttempts   int
}

// Init configures environment bindings and defaults on v. When cfgFile is
// set it must exist; otherwise no config file is read.
func Init(v *viper.Viper, cfgFile string) error {
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	bindings := map[string][]string{
		KeyToken:       {"GITHUB_TOKEN", "GH_TOKEN"},
		KeyProjectURL:  {"PROJECT_URL"},
		KeyIssueNodeID: {"ISSUE_NODE_ID"},
		KeyIssueBody:   {"ISSUE_BODY"},
		KeyEventPath:   {"GITHUB_EVENT_PATH"},
		KeyEndpoint:    {"GITHUB_GRAPHQL_URL"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	v.SetDefault(KeyDryRun, false)
	v.SetDefault(KeyMaxAttempts, 3)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

// Load builds a Config from v. The issue node ID and body fall back to the
// issue in the event payload at event_path when not set directly. The event
// body is never paired with a different configured issue.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Token:       v.GetString(KeyToken),
		ProjectURL:  v.GetString(KeyProjectURL),
		IssueNodeID: v.GetString(KeyIssueNodeID),
		IssueBody:   v.GetString(KeyIssueBody),
		Endpoint:    v.GetString(KeyEndpoint),
		DryRun:      v.GetBool(KeyDryRun),
		MaxAttempts: v.GetInt(KeyMaxAttempts),
	}
	if mappings := v.GetStringSlice(KeyFieldMappings); len(mappings) > 0 {
		cfg.FieldMappings = mappings
	}

	if cfg.MaxAttempts < 1 || cfg.MaxAttempts > MaxAttemptsLimit {
		return nil, fmt.Errorf("invalid %s %d: must be between 1 and %d", KeyMaxAttempts, cfg.MaxAttempts, MaxAttemptsLimit)
	}

	eventPath := v.GetString(KeyEventPath)
	if eventPath != "" && (cfg.IssueNodeID == "" || cfg.IssueBody == "") {
		issue, err := ReadIssueEvent(eventPath)
		if err != nil {
			return nil, err
		}
		switch {
		case issue == nil:
		case cfg.IssueNodeID != "" && cfg.IssueNodeID != issue.GetNodeID():
			slog.Warn("ignoring event payload issue, it differs from the configured issue",
				"issue", cfg.IssueNodeID,
				"event_issue", issue.GetNodeID(),
			)
		default:
			cfg.IssueNodeID = issue.GetNodeID()
			if cfg.IssueBody == "" {
				cfg.IssueBody = issue.GetBody()
			}
		}
	}

	return cfg, nil
}
