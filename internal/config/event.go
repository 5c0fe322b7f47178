package config

import (
	"encoding/json"
	"fmt"
	"os"

	gh "github.com/google/go-github/v57/github"
)

// ReadIssueEvent decodes the issue from a GitHub Actions event payload.
// It returns nil when the event carries no issue.
func ReadIssueEvent(path string) (*gh.Issue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event payload: %w", err)
	}

	var event gh.IssuesEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to parse event payload %s: %w", path, err)
	}
	return event.GetIssue(), nil
}
