package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/naag/gh-issue-intake/internal/github"
	"github.com/naag/gh-issue-intake/internal/issuebody"
)

// ErrPartialUpdate is matched by *PartialUpdateError
var ErrPartialUpdate = errors.New("one or more field updates failed")

// FieldError is a failed update of a single project field
type FieldError struct {
	Field string
	Err   error
}

// PartialUpdateError reports the field updates that failed during a run
type PartialUpdateError struct {
	Failures []FieldError
}

func (e *PartialUpdateError) Error() string {
	msgs := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		msgs = append(msgs, fmt.Sprintf("%s: %v", f.Field, f.Err))
	}
	return fmt.Sprintf("%s: %s", ErrPartialUpdate, strings.Join(msgs, "; "))
}

func (e *PartialUpdateError) Unwrap() []error {
	errs := []error{ErrPartialUpdate}
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// FindField returns the first field whose name equals name case-insensitively
func FindField(fields []github.ProjectField, name string) (*github.ProjectField, bool) {
	var found *github.ProjectField
	for i := range fields {
		if !strings.EqualFold(fields[i].Name, name) {
			continue
		}
		if found != nil {
			slog.Warn("duplicate project field name, using the first match",
				"field", name,
				"used_id", found.ID,
				"ignored_id", fields[i].ID,
			)
			continue
		}
		found = &fields[i]
	}
	return found, found != nil
}

// ensureItem returns the project item linked to contentID, adding the issue
// to the project when no item links it yet.
func (s *Service) ensureItem(ctx context.Context, snapshot *github.ProjectSnapshot, contentID string) (string, bool, error) {
	if item, ok := snapshot.FindItemByContentID(contentID); ok {
		slog.Debug("issue already on project", "item", item.ID, "issue", contentID)
		return item.ID, false, nil
	}

	if s.dryRun {
		slog.Info("dry run: would add issue to project", "issue", contentID, "project", snapshot.ID)
		return "", true, nil
	}

	itemID, err := s.client.AddProjectItem(ctx, snapshot.ID, contentID)
	if err != nil {
		return "", false, fmt.Errorf("failed to add issue to project: %w", err)
	}
	slog.Info("added issue to project", "item", itemID, "issue", contentID)
	return itemID, true, nil
}

// syncFields writes single select mappings first, then text mappings, each
// group in declared order.
func (s *Service) syncFields(ctx context.Context, snapshot *github.ProjectSnapshot, itemID string, sections issuebody.Sections, result *Result) error {
	var failures []FieldError

	for _, kind := range []github.FieldKind{github.FieldKindSingleSelect, github.FieldKindText} {
		for _, mapping := range s.mappings {
			if mapping.Kind != kind {
				continue
			}

			value, _ := sections.Get(mapping.Section)
			field, _ := FindField(snapshot.Fields, mapping.Field)

			var (
				updated bool
				err     error
			)
			switch kind {
			case github.FieldKindSingleSelect:
				updated, err = s.setSingle(ctx, snapshot.ID, itemID, field, mapping.Field, value)
			case github.FieldKindText:
				updated, err = s.setText(ctx, snapshot.ID, itemID, field, mapping.Field, value)
			}

			switch {
			case err != nil:
				slog.Error("failed to update project field",
					"field", mapping.Field,
					"item", itemID,
					"error", err,
				)
				failures = append(failures, FieldError{Field: mapping.Field, Err: err})
			case updated:
				result.Updated = append(result.Updated, mapping.Field)
			default:
				result.Skipped = append(result.Skipped, mapping.Field)
			}
		}
	}

	if len(failures) > 0 {
		return &PartialUpdateError{Failures: failures}
	}
	return nil
}

// setSingle selects the option matching value. A missing field, an empty
// value or a value with no matching option leaves the field untouched.
func (s *Service) setSingle(ctx context.Context, projectID, itemID string, field *github.ProjectField, name, value string) (bool, error) {
	if field == nil || value == "" {
		slog.Debug("skipping field", "field", name, "reason", skipReason(field, value))
		return false, nil
	}
	if field.Kind != github.FieldKindSingleSelect {
		slog.Warn("skipping field", "field", name, "reason", "not a single select field", "kind", field.Kind)
		return false, nil
	}

	option, ok := field.FindOption(value)
	if !ok {
		slog.Info("skipping field", "field", name, "reason", "no matching option", "value", value)
		return false, nil
	}

	return s.update(ctx, projectID, itemID, field, github.OptionValue(option.ID), option.Name)
}

// setText writes value verbatim. A missing field or empty value leaves the field untouched.
func (s *Service) setText(ctx context.Context, projectID, itemID string, field *github.ProjectField, name, value string) (bool, error) {
	if field == nil || value == "" {
		slog.Debug("skipping field", "field", name, "reason", skipReason(field, value))
		return false, nil
	}
	if field.Kind != github.FieldKindText {
		slog.Warn("skipping field", "field", name, "reason", "not a text field", "kind", field.Kind)
		return false, nil
	}

	return s.update(ctx, projectID, itemID, field, github.TextValue(value), value)
}

func (s *Service) update(ctx context.Context, projectID, itemID string, field *github.ProjectField, value github.FieldValue, display string) (bool, error) {
	if s.dryRun {
		slog.Info("dry run: would update field", "field", field.Name, "value", display)
		return true, nil
	}

	if err := s.client.UpdateItemField(ctx, projectID, itemID, field.ID, value); err != nil {
		return false, err
	}
	slog.Info("updated field", "field", field.Name, "value", display)
	return true, nil
}

func skipReason(field *github.ProjectField, value string) string {
	if field == nil {
		return "field not found in project"
	}
	if value == "" {
		return "section absent from issue body"
	}
	return ""
}
