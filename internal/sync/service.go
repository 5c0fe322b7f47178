package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/naag/gh-issue-intake/internal/github"
	"github.com/naag/gh-issue-intake/internal/github/projecturl"
	"github.com/naag/gh-issue-intake/internal/issuebody"
)

// ErrMissingContentID is returned when the issue has no node ID to link to the project
var ErrMissingContentID = errors.New("issue content ID not set")

// Request is everything a single sync run needs to know about the issue
type Request struct {
	ProjectURL string
	ContentID  string
	Body       string
}

// Result summarizes a completed run
type Result struct {
	Project     github.Project
	ItemID      string
	ItemCreated bool
	Updated     []string
	Skipped     []string
}

// Service synchronizes an issue's body sections into project fields
type Service struct {
	client   github.Client
	mappings []FieldMapping
	dryRun   bool
}

// NewService creates a new sync service. A nil mappings slice selects DefaultMappings.
func NewService(client github.Client, mappings []FieldMapping, dryRun bool) *Service {
	if mappings == nil {
		mappings = DefaultMappings()
	}
	return &Service{
		client:   client,
		mappings: mappings,
		dryRun:   dryRun,
	}
}

// Run resolves the project, ensures the issue is an item on it and writes
// every mapped section that has a value. Field update failures do not stop
// the remaining updates; they are reported together as a *PartialUpdateError.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	info, err := projecturl.Parse(req.ProjectURL)
	if err != nil {
		return nil, fmt.Errorf("invalid project URL: %w", err)
	}
	if req.ContentID == "" {
		return nil, ErrMissingContentID
	}

	project, err := s.client.GetProject(ctx, info)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project: %w", err)
	}
	slog.Info("resolved project",
		"url", req.ProjectURL,
		"id", project.ID,
		"title", project.Title,
	)

	sections := issuebody.Extract(req.Body, sectionLabels(s.mappings)...)
	logSections(s.mappings, sections)

	snapshot, err := s.client.GetProjectSnapshot(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project fields and items: %w", err)
	}
	slog.Info("target project",
		"owner", info.OwnerLogin,
		"owner_type", info.OwnerType,
		"number", info.ProjectNumber,
		"title", project.Title,
		"fields", len(snapshot.Fields),
		"items", len(snapshot.Items),
	)

	result := &Result{Project: *project}

	itemID, created, err := s.ensureItem(ctx, snapshot, req.ContentID)
	if err != nil {
		return nil, err
	}
	result.ItemID = itemID
	result.ItemCreated = created

	if err := s.syncFields(ctx, snapshot, itemID, sections, result); err != nil {
		return result, err
	}
	return result, nil
}

func logSections(mappings []FieldMapping, sections issuebody.Sections) {
	attrs := make([]any, 0, len(mappings)*2)
	for _, m := range mappings {
		value, ok := sections.Get(m.Section)
		if !ok {
			value = "<absent>"
		}
		attrs = append(attrs, m.Section, value)
	}
	slog.Info("parsed issue body", attrs...)
}
