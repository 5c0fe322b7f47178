package sync

import (
	"fmt"
	"strings"

	"github.com/naag/gh-issue-intake/internal/github"
	"github.com/naag/gh-issue-intake/internal/issuebody"
)

// FieldMapping binds an issue body section to the project field it is written to
type FieldMapping struct {
	Section string
	Field   string
	Kind    github.FieldKind
}

// DefaultMappings returns the section to field table in update order
func DefaultMappings() []FieldMapping {
	return []FieldMapping{
		{Section: issuebody.LabelEffort, Field: "Effort", Kind: github.FieldKindSingleSelect},
		{Section: issuebody.LabelCategory, Field: "Category", Kind: github.FieldKindSingleSelect},
		{Section: issuebody.LabelImpact, Field: "Impact", Kind: github.FieldKindText},
		{Section: issuebody.LabelArea, Field: "Area", Kind: github.FieldKindText},
		{Section: issuebody.LabelProposedAction, Field: "Proposed Action", Kind: github.FieldKindText},
	}
}

// ParseFieldMappings applies overrides in the format 'section=field' to the
// default mappings. Only the first '=' separates, so field names may contain
// one. Sections match case-insensitively; unknown sections are rejected, as
// is a field targeted by more than one section.
func ParseFieldMappings(overrides []string) ([]FieldMapping, error) {
	mappings := DefaultMappings()
	for _, override := range overrides {
		section, field, ok := strings.Cut(override, "=")
		section = strings.TrimSpace(section)
		field = strings.TrimSpace(field)
		if !ok || section == "" || field == "" {
			return nil, fmt.Errorf("invalid field mapping format: %s", override)
		}

		found := false
		for i := range mappings {
			if strings.EqualFold(mappings[i].Section, section) {
				mappings[i].Field = field
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown issue section in field mapping: %s", section)
		}
	}

	// Checked on the final set so two overrides can swap fields
	for i := range mappings {
		for j := i + 1; j < len(mappings); j++ {
			if strings.EqualFold(mappings[i].Field, mappings[j].Field) {
				return nil, fmt.Errorf("field %s is mapped from both %s and %s",
					mappings[j].Field, mappings[i].Section, mappings[j].Section)
			}
		}
	}
	return mappings, nil
}

// sectionLabels returns the section labels of mappings in order
func sectionLabels(mappings []FieldMapping) []string {
	labels := make([]string, 0, len(mappings))
	for _, m := range mappings {
		labels = append(labels, m.Section)
	}
	return labels
}
