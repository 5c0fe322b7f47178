package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

const (
	// itemsPageSize is the largest page GitHub serves for project items
	itemsPageSize = 100
	// maxSnapshotItems caps how many existing items are scanned for the issue
	maxSnapshotItems = 200
)

// ClientConfig configures a GraphQLClient
type ClientConfig struct {
	Token string
	// Endpoint overrides the GraphQL endpoint, e.g. for GitHub Enterprise Server
	Endpoint string
	// Debug dumps HTTP requests and responses to the debug log
	Debug bool
	// MaxAttempts bounds retries of transient transport failures. Zero means the default.
	MaxAttempts int
}

// GraphQLClient implements the Client interface using GitHub's GraphQL API
type GraphQLClient struct {
	client *githubv4.Client
}

// NewGraphQLClient creates a new GitHub GraphQL client authenticated with cfg.Token
func NewGraphQLClient(cfg ClientConfig) (*GraphQLClient, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, ErrMissingCredential
	}

	var transport http.RoundTripper = http.DefaultTransport
	if cfg.Debug {
		transport = &debugTransport{transport: transport}
	}
	transport = newRetryTransport(transport, cfg.MaxAttempts)

	src := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: cfg.Token},
	)
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Transport: transport})
	httpClient := oauth2.NewClient(ctx, src)

	if cfg.Endpoint != "" {
		return &GraphQLClient{client: githubv4.NewEnterpriseClient(cfg.Endpoint, httpClient)}, nil
	}
	return &GraphQLClient{client: githubv4.NewClient(httpClient)}, nil
}

// GraphQL query types for GitHub's API
type (
	// projectV2Ref is the identity of a project as returned by an owner lookup
	projectV2Ref struct {
		ID    string
		Title string
	}

	// projectV2FieldConfiguration represents a field configuration in a project
	projectV2FieldConfiguration struct {
		TypeName string `graphql:"__typename"`
		Field    struct {
			ID       string
			Name     string
			DataType string
		} `graphql:"... on ProjectV2Field"`
		SingleSelectField struct {
			ID       string
			Name     string
			DataType string
			Options  []struct {
				ID   string
				Name string
			}
		} `graphql:"... on ProjectV2SingleSelectField"`
		IterationField struct {
			ID       string
			Name     string
			DataType string
		} `graphql:"... on ProjectV2IterationField"`
	}

	// projectV2Item represents an item in a project together with its linked content
	projectV2Item struct {
		ID      string
		Content struct {
			TypeName string `graphql:"__typename"`
			Issue    struct {
				ID string
			} `graphql:"... on Issue"`
			PullRequest struct {
				ID string
			} `graphql:"... on PullRequest"`
			DraftIssue struct {
				ID string
			} `graphql:"... on DraftIssue"`
		}
	}

	// projectV2Snapshot is one page of a project's fields and items
	projectV2Snapshot struct {
		ID     string
		Fields struct {
			Nodes []projectV2FieldConfiguration
		} `graphql:"fields(first: 50)"`
		Items struct {
			Nodes    []projectV2Item
			PageInfo struct {
				HasNextPage bool
				EndCursor   githubv4.String
			}
		} `graphql:"items(first: $itemsPageSize, after: $itemsCursor)"`
	}
)

// GetProject implements the Client interface
func (c *GraphQLClient) GetProject(ctx context.Context, info *ProjectInfo) (*Project, error) {
	var (
		ref *projectV2Ref
		err error
	)

	switch info.OwnerType {
	case OwnerTypeUser:
		ref, err = c.getUserProject(ctx, info.OwnerLogin, info.ProjectNumber)
	case OwnerTypeOrg:
		ref, err = c.getOrgProject(ctx, info.OwnerLogin, info.ProjectNumber)
	default:
		return nil, fmt.Errorf("invalid owner type")
	}

	if err != nil {
		if isNotResolvable(err) {
			return nil, fmt.Errorf("%w: %s %s project #%d: %v", ErrProjectNotFound, info.OwnerType, info.OwnerLogin, info.ProjectNumber, err)
		}
		return nil, err
	}
	if ref.ID == "" {
		return nil, fmt.Errorf("%w: %s %s project #%d", ErrProjectNotFound, info.OwnerType, info.OwnerLogin, info.ProjectNumber)
	}

	return &Project{ID: ref.ID, Title: ref.Title}, nil
}

func (c *GraphQLClient) getOrgProject(ctx context.Context, orgName string, projectNumber int) (*projectV2Ref, error) {
	var query struct {
		Organization struct {
			ProjectV2 projectV2Ref `graphql:"projectV2(number: $projectNumber)"`
		} `graphql:"organization(login: $login)"`
	}

	variables := map[string]interface{}{
		"login":         githubv4.String(orgName),
		"projectNumber": githubv4.Int(projectNumber),
	}

	if err := c.client.Query(ctx, &query, variables); err != nil {
		return nil, fmt.Errorf("failed to query organization project: %w", err)
	}

	return &query.Organization.ProjectV2, nil
}

func (c *GraphQLClient) getUserProject(ctx context.Context, username string, projectNumber int) (*projectV2Ref, error) {
	var query struct {
		User struct {
			ProjectV2 projectV2Ref `graphql:"projectV2(number: $projectNumber)"`
		} `graphql:"user(login: $login)"`
	}

	variables := map[string]interface{}{
		"login":         githubv4.String(username),
		"projectNumber": githubv4.Int(projectNumber),
	}

	if err := c.client.Query(ctx, &query, variables); err != nil {
		return nil, fmt.Errorf("failed to query user project: %w", err)
	}

	return &query.User.ProjectV2, nil
}

// GetProjectSnapshot implements the Client interface. Items are paged until
// maxSnapshotItems have been read.
func (c *GraphQLClient) GetProjectSnapshot(ctx context.Context, projectID string) (*ProjectSnapshot, error) {
	variables := map[string]interface{}{
		"id":            githubv4.ID(projectID),
		"itemsPageSize": githubv4.Int(itemsPageSize),
		"itemsCursor":   (*githubv4.String)(nil),
	}

	snapshot := &ProjectSnapshot{ID: projectID}
	for page := 0; ; page++ {
		var query struct {
			Node struct {
				ProjectV2 projectV2Snapshot `graphql:"... on ProjectV2"`
			} `graphql:"node(id: $id)"`
		}
		if err := c.client.Query(ctx, &query, variables); err != nil {
			return nil, fmt.Errorf("failed to query project fields and items: %w", err)
		}

		project := query.Node.ProjectV2
		if project.ID == "" {
			return nil, fmt.Errorf("%w: node %s", ErrProjectNotFound, projectID)
		}

		if page == 0 {
			snapshot.Fields = convertFields(project.Fields.Nodes)
		}
		for _, node := range project.Items.Nodes {
			if len(snapshot.Items) == maxSnapshotItems {
				break
			}
			snapshot.Items = append(snapshot.Items, convertItem(node))
		}

		if !project.Items.PageInfo.HasNextPage || len(snapshot.Items) >= maxSnapshotItems {
			break
		}
		cursor := project.Items.PageInfo.EndCursor
		variables["itemsCursor"] = &cursor
	}

	slog.Debug("fetched project snapshot",
		"project", projectID,
		"fields", len(snapshot.Fields),
		"items", len(snapshot.Items),
	)

	return snapshot, nil
}

// AddProjectItem implements the Client interface
func (c *GraphQLClient) AddProjectItem(ctx context.Context, projectID string, contentID string) (string, error) {
	var mutation struct {
		AddProjectV2ItemByID struct {
			Item struct {
				ID string
			}
		} `graphql:"addProjectV2ItemById(input: $input)"`
	}

	input := githubv4.AddProjectV2ItemByIdInput{
		ProjectID: githubv4.ID(projectID),
		ContentID: githubv4.ID(contentID),
	}

	if err := c.client.Mutate(ctx, &mutation, input, nil); err != nil {
		return "", fmt.Errorf("failed to add item to project: %w", err)
	}

	itemID := mutation.AddProjectV2ItemByID.Item.ID
	if itemID == "" {
		return "", fmt.Errorf("failed to add item to project: no item returned")
	}
	return itemID, nil
}

// UpdateItemField implements the Client interface
func (c *GraphQLClient) UpdateItemField(ctx context.Context, projectID string, itemID string, fieldID string, value FieldValue) error {
	var mutation struct {
		UpdateProjectV2ItemFieldValue struct {
			ClientMutationID string
		} `graphql:"updateProjectV2ItemFieldValue(input: $input)"`
	}

	input := githubv4.UpdateProjectV2ItemFieldValueInput{
		ProjectID: githubv4.ID(projectID),
		ItemID:    githubv4.ID(itemID),
		FieldID:   githubv4.ID(fieldID),
	}

	switch {
	case value.SingleSelectOptionID != nil:
		optionID := githubv4.String(*value.SingleSelectOptionID)
		input.Value = githubv4.ProjectV2FieldValue{SingleSelectOptionID: &optionID}
	case value.Text != nil:
		text := githubv4.String(*value.Text)
		input.Value = githubv4.ProjectV2FieldValue{Text: &text}
	default:
		return fmt.Errorf("unsupported field value type")
	}

	if err := c.client.Mutate(ctx, &mutation, input, nil); err != nil {
		return fmt.Errorf("failed to update field %s: %w", fieldID, err)
	}
	return nil
}

func convertFields(nodes []projectV2FieldConfiguration) []ProjectField {
	fields := make([]ProjectField, 0, len(nodes))
	for _, node := range nodes {
		switch node.TypeName {
		case "ProjectV2SingleSelectField":
			field := ProjectField{
				ID:   node.SingleSelectField.ID,
				Name: node.SingleSelectField.Name,
				Kind: FieldKindSingleSelect,
			}
			for _, opt := range node.SingleSelectField.Options {
				field.Options = append(field.Options, FieldOption{ID: opt.ID, Name: opt.Name})
			}
			fields = append(fields, field)
		case "ProjectV2Field":
			kind := FieldKindOther
			if node.Field.DataType == "TEXT" {
				kind = FieldKindText
			}
			fields = append(fields, ProjectField{
				ID:   node.Field.ID,
				Name: node.Field.Name,
				Kind: kind,
			})
		case "ProjectV2IterationField":
			fields = append(fields, ProjectField{
				ID:   node.IterationField.ID,
				Name: node.IterationField.Name,
				Kind: FieldKindOther,
			})
		}
	}
	return fields
}

func convertItem(node projectV2Item) ProjectItem {
	item := ProjectItem{ID: node.ID}
	switch node.Content.TypeName {
	case "Issue":
		item.ContentID = node.Content.Issue.ID
	case "PullRequest":
		item.ContentID = node.Content.PullRequest.ID
	case "DraftIssue":
		item.ContentID = node.Content.DraftIssue.ID
	}
	return item
}

// isNotResolvable reports whether GitHub rejected a lookup because the
// owner or project does not exist or is hidden from the token.
func isNotResolvable(err error) bool {
	return strings.Contains(err.Error(), "Could not resolve to")
}
