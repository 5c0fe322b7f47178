// Package issuebody reads the "### <label>" sections that GitHub issue forms
// render into an issue body.
package issuebody

import (
	"strings"
)

// Section labels produced by the intake issue form
const (
	LabelArea           = "Area / Component"
	LabelEffort         = "Effort"
	LabelImpact         = "Impact"
	LabelProposedAction = "Proposed Action"
	LabelCategory       = "Category"
)

const headingPrefix = "### "

// Section returns the text following the first "### <label>" heading in body,
// up to the next "### " heading. Labels match case-insensitively and by
// prefix, so "### Effort (t-shirt size)" matches "Effort". The result is
// trimmed; ok is false when the heading is missing or the section is blank.
func Section(body, label string) (text string, ok bool) {
	target := strings.ToLower(headingPrefix + label)

	var (
		collected []string
		inSection bool
	)
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if !inSection {
			if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), target) {
				inSection = true
			}
			continue
		}
		if strings.HasPrefix(strings.ToLower(line), headingPrefix) {
			break
		}
		collected = append(collected, line)
	}

	text = strings.TrimSpace(strings.Join(collected, "\n"))
	if text == "" {
		return "", false
	}
	return text, true
}

// Sections maps labels to the text of their section. Absent sections have no key.
type Sections map[string]string

// Extract runs Section once per label and keeps the ones present in body
func Extract(body string, labels ...string) Sections {
	sections := make(Sections, len(labels))
	for _, label := range labels {
		if text, ok := Section(body, label); ok {
			sections[label] = text
		}
	}
	return sections
}

// Get returns the text for label and whether the section was present
func (s Sections) Get(label string) (string, bool) {
	text, ok := s[label]
	return text, ok
}
