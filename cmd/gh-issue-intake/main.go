package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/naag/gh-issue-intake/internal/config"
	"github.com/naag/gh-issue-intake/internal/github"
	"github.com/naag/gh-issue-intake/internal/output"
	"github.com/naag/gh-issue-intake/internal/sync"
)

var ui = output.New()

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		ui.Error("%v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "gh-issue-intake",
	Short:         "Add GitHub issues to a project board and fill its fields from the issue form",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Configure logging based on verbose level
		level := slog.LevelInfo
		if verboseLevel > 0 {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync an issue's form sections into project fields",
	Long: `Resolves the project, adds the issue to it if needed and writes the
Effort, Category, Impact, Area and Proposed Action sections of the issue
body into the matching project fields.

Inside GitHub Actions the issue is read from the event payload
(GITHUB_EVENT_PATH) and the token from GITHUB_TOKEN.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

var (
	cfgFile      string
	verboseLevel int
)

// flagBindings maps sync flags to config keys
var flagBindings = map[string]string{
	"project-url":   config.KeyProjectURL,
	"issue-id":      config.KeyIssueNodeID,
	"issue-body":    config.KeyIssueBody,
	"event-path":    config.KeyEventPath,
	"endpoint":      config.KeyEndpoint,
	"field-mapping": config.KeyFieldMappings,
	"dry-run":       config.KeyDryRun,
	"max-attempts":  config.KeyMaxAttempts,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (YAML)")
	rootCmd.PersistentFlags().CountVarP(&verboseLevel, "verbose", "v", "Verbosity level (-v for debug logs, -vv for debug logs and HTTP traffic)")

	syncCmd.Flags().String("project-url", "", "Project URL (e.g., https://github.com/orgs/org/projects/123) [PROJECT_URL]")
	syncCmd.Flags().String("issue-id", "", "Issue node ID [ISSUE_NODE_ID]")
	syncCmd.Flags().String("issue-body", "", "Issue body [ISSUE_BODY]")
	syncCmd.Flags().String("event-path", "", "GitHub Actions event payload to read the issue from [GITHUB_EVENT_PATH]")
	syncCmd.Flags().String("endpoint", "", "GraphQL endpoint for GitHub Enterprise Server [GITHUB_GRAPHQL_URL]")
	syncCmd.Flags().StringArray("field-mapping", nil, "Field mapping in the format 'section=field' (can be specified multiple times)")
	syncCmd.Flags().Bool("dry-run", false, "Log the changes without writing them")
	syncCmd.Flags().Int("max-attempts", 3, "Attempts per request on transient network failures")
}

func runSync(cmd *cobra.Command, args []string) error {
	v := viper.New()
	if err := config.Init(v, cfgFile); err != nil {
		return err
	}
	for flag, key := range flagBindings {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	mappings, err := sync.ParseFieldMappings(cfg.FieldMappings)
	if err != nil {
		return err
	}

	// Initialize GitHub client
	client, err := github.NewGraphQLClient(github.ClientConfig{
		Token:       cfg.Token,
		Endpoint:    cfg.Endpoint,
		Debug:       verboseLevel >= 2,
		MaxAttempts: cfg.MaxAttempts,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize GitHub client: %w", err)
	}

	service := sync.NewService(client, mappings, cfg.DryRun)
	result, err := service.Run(cmd.Context(), sync.Request{
		ProjectURL: cfg.ProjectURL,
		ContentID:  cfg.IssueNodeID,
		Body:       cfg.IssueBody,
	})
	if err != nil {
		return fmt.Errorf("failed to sync issue: %w", err)
	}

	if cfg.DryRun {
		ui.Warning("dry run: no changes were written")
	}
	updated := "none"
	if len(result.Updated) > 0 {
		updated = strings.Join(result.Updated, ", ")
	}
	ui.Success("synced issue to %s (fields updated: %s)", output.Cyan(result.Project.Title), updated)
	return nil
}
