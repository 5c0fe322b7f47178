package github

import (
	"context"
)

// FieldUpdate records a call to MockClient.UpdateItemField
type FieldUpdate struct {
	ProjectID string
	ItemID    string
	FieldID   string
	Value     FieldValue
}

// MockClient implements the Client interface for testing
type MockClient struct {
	GetProjectFunc         func(ctx context.Context, info *ProjectInfo) (*Project, error)
	GetProjectSnapshotFunc func(ctx context.Context, projectID string) (*ProjectSnapshot, error)
	AddProjectItemFunc     func(ctx context.Context, projectID string, contentID string) (string, error)
	UpdateItemFieldFunc    func(ctx context.Context, projectID string, itemID string, fieldID string, value FieldValue) error

	// Calls lists the method names in invocation order
	Calls []string
	// Updates lists every UpdateItemField call in invocation order
	Updates []FieldUpdate
}

// GetProject implements the Client interface
func (c *MockClient) GetProject(ctx context.Context, info *ProjectInfo) (*Project, error) {
	c.Calls = append(c.Calls, "GetProject")
	if c.GetProjectFunc != nil {
		return c.GetProjectFunc(ctx, info)
	}
	return &Project{}, nil
}

// GetProjectSnapshot implements the Client interface
func (c *MockClient) GetProjectSnapshot(ctx context.Context, projectID string) (*ProjectSnapshot, error) {
	c.Calls = append(c.Calls, "GetProjectSnapshot")
	if c.GetProjectSnapshotFunc != nil {
		return c.GetProjectSnapshotFunc(ctx, projectID)
	}
	return &ProjectSnapshot{ID: projectID}, nil
}

// AddProjectItem implements the Client interface
func (c *MockClient) AddProjectItem(ctx context.Context, projectID string, contentID string) (string, error) {
	c.Calls = append(c.Calls, "AddProjectItem")
	if c.AddProjectItemFunc != nil {
		return c.AddProjectItemFunc(ctx, projectID, contentID)
	}
	return "", nil
}

// UpdateItemField implements the Client interface
func (c *MockClient) UpdateItemField(ctx context.Context, projectID string, itemID string, fieldID string, value FieldValue) error {
	c.Calls = append(c.Calls, "UpdateItemField")
	c.Updates = append(c.Updates, FieldUpdate{
		ProjectID: projectID,
		ItemID:    itemID,
		FieldID:   fieldID,
		Value:     value,
	})
	if c.UpdateItemFieldFunc != nil {
		return c.UpdateItemFieldFunc(ctx, projectID, itemID, fieldID, value)
	}
	return nil
}
