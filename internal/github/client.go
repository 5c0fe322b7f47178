package github

import (
	"context"
)

// Client defines the interface for interacting with GitHub
type Client interface {
	// GetProject resolves a project by owner and number. It returns
	// ErrProjectNotFound when the project is missing or not visible.
	GetProject(ctx context.Context, info *ProjectInfo) (*Project, error)

	// GetProjectSnapshot retrieves the field configurations and items of a project
	GetProjectSnapshot(ctx context.Context, projectID string) (*ProjectSnapshot, error)

	// AddProjectItem adds an issue or pull request to a project and returns the new item ID
	AddProjectItem(ctx context.Context, projectID string, contentID string) (string, error)

	// UpdateItemField sets a field value for an item in a project
	UpdateItemField(ctx context.Context, projectID string, itemID string, fieldID string, value FieldValue) error
}
