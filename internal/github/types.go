package github

import (
	"errors"
	"strings"
)

var (
	// ErrMissingCredential is returned when no GitHub token is available
	ErrMissingCredential = errors.New("github token not set")
	// ErrProjectNotFound is returned when a project does not exist or is not visible to the token
	ErrProjectNotFound = errors.New("project not found")
)

// OwnerType represents the type of project owner (user or organization)
type OwnerType int

const (
	// OwnerTypeUser represents a user-owned project
	OwnerTypeUser OwnerType = iota
	// OwnerTypeOrg represents an organization-owned project
	OwnerTypeOrg
)

func (t OwnerType) String() string {
	switch t {
	case OwnerTypeOrg:
		return "org"
	case OwnerTypeUser:
		return "user"
	default:
		return "unknown"
	}
}

// ProjectInfo contains the parsed information from a GitHub project URL
type ProjectInfo struct {
	OwnerType     OwnerType
	OwnerLogin    string
	ProjectNumber int
}

// Project is the minimal identity of a resolved project
type Project struct {
	ID    string
	Title string
}

// FieldKind classifies a project field by how its value is written
type FieldKind int

const (
	// FieldKindOther covers field types this tool never writes (dates, iterations, ...)
	FieldKindOther FieldKind = iota
	// FieldKindText is a free text field
	FieldKindText
	// FieldKindSingleSelect is a field whose value is one of a fixed set of options
	FieldKindSingleSelect
)

func (k FieldKind) String() string {
	switch k {
	case FieldKindText:
		return "text"
	case FieldKindSingleSelect:
		return "single_select"
	default:
		return "other"
	}
}

// FieldOption is one choice of a single select field
type FieldOption struct {
	ID   string
	Name string
}

// ProjectField represents a field configuration in a GitHub project
type ProjectField struct {
	ID      string
	Name    string
	Kind    FieldKind
	Options []FieldOption
}

// FindOption returns the option whose name matches name case-insensitively
func (f ProjectField) FindOption(name string) (FieldOption, bool) {
	for _, opt := range f.Options {
		if strings.EqualFold(opt.Name, name) {
			return opt, true
		}
	}
	return FieldOption{}, false
}

// ProjectItem represents an item (issue or pull request) on a project board
type ProjectItem struct {
	ID        string
	ContentID string
}

// ProjectSnapshot is the field and item state of a project, fetched once per run
type ProjectSnapshot struct {
	ID     string
	Fields []ProjectField
	Items  []ProjectItem
}

// FindItemByContentID returns the item linked to the given issue or pull request node ID
func (s *ProjectSnapshot) FindItemByContentID(contentID string) (ProjectItem, bool) {
	for _, item := range s.Items {
		if item.ContentID == contentID {
			return item, true
		}
	}
	return ProjectItem{}, false
}

// FieldValue is the value written by UpdateItemField. Exactly one of the
// pointers is expected to be set.
type FieldValue struct {
	Text                 *string
	SingleSelectOptionID *string
}

// TextValue builds a FieldValue holding free text
func TextValue(text string) FieldValue {
	return FieldValue{Text: &text}
}

// OptionValue builds a FieldValue selecting a single select option
func OptionValue(optionID string) FieldValue {
	return FieldValue{SingleSelectOptionID: &optionID}
}
