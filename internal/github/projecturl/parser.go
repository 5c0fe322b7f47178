package projecturl

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/naag/gh-issue-intake/internal/github"
)

// ErrMalformedLocation is matched by every error returned from Parse
var ErrMalformedLocation = errors.New("malformed project URL")

// MalformedLocationError describes why a project URL was rejected
type MalformedLocationError struct {
	Location string
	Reason   string
}

func (e *MalformedLocationError) Error() string {
	return fmt.Sprintf("%s %q: %s", ErrMalformedLocation, e.Location, e.Reason)
}

func (e *MalformedLocationError) Unwrap() error {
	return ErrMalformedLocation
}

// Parse takes a GitHub project URL of the form
// https://<host>/orgs|users/<login>/projects/<number> and returns the parsed ProjectInfo.
// Any host is accepted so GitHub Enterprise Server URLs work too.
func Parse(projectURL string) (*github.ProjectInfo, error) {
	malformed := func(format string, args ...interface{}) error {
		return &MalformedLocationError{Location: projectURL, Reason: fmt.Sprintf(format, args...)}
	}

	u, err := url.Parse(projectURL)
	if err != nil {
		return nil, malformed("invalid URL: %v", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, malformed("invalid URL: missing scheme or host")
	}

	// Split the escaped path so an encoded slash stays inside its segment
	parts := strings.Split(strings.TrimPrefix(u.EscapedPath(), "/"), "/")
	if len(parts) != 4 {
		return nil, malformed("invalid URL format: expected 4 path segments, got %d", len(parts))
	}
	for i, part := range parts {
		if part == "" {
			return nil, malformed("invalid URL format: empty path segment %d", i+1)
		}
	}

	// Check if it's an org or user project
	var ownerType github.OwnerType
	switch parts[0] {
	case "orgs":
		ownerType = github.OwnerTypeOrg
	case "users":
		ownerType = github.OwnerTypeUser
	default:
		return nil, malformed("invalid owner type in URL: %s", parts[0])
	}

	if parts[2] != "projects" {
		return nil, malformed("invalid URL format: expected 'projects' as third component")
	}

	if !isDigits(parts[3]) {
		return nil, malformed("invalid project number: %s", parts[3])
	}
	projectNum, err := strconv.Atoi(parts[3])
	if err != nil || projectNum <= 0 {
		return nil, malformed("invalid project number: %s", parts[3])
	}

	return &github.ProjectInfo{
		OwnerType:     ownerType,
		OwnerLogin:    parts[1],
		ProjectNumber: projectNum,
	}, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
