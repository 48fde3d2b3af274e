// Package directory provides group directory clients used to resolve the
// groups a user belongs to.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/yury-opolev/safeexchange-sub000/internal/errors"
)

// HTTPDirectory resolves group membership from an external directory service
// over HTTP. The service is expected to answer
// GET {baseURL}/users/{userID}/groups with {"groups": ["...", ...]}.
type HTTPDirectory struct {
	baseURL string
	client  *http.Client
}

// NewHTTPDirectory creates a directory client for the given base URL.
func NewHTTPDirectory(baseURL string, timeout time.Duration) *HTTPDirectory {
	return &HTTPDirectory{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// GetGroupsOf fetches the group identifiers for a user.
func (d *HTTPDirectory) GetGroupsOf(ctx context.Context, userID string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/users/%s/groups", d.baseURL, url.PathEscape(userID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to build directory request")
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to call group directory")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// Unknown users simply belong to no groups.
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.New(fmt.Sprintf("group directory returned status %d", resp.StatusCode))
	}

	var body struct {
		Groups []string `json:"groups"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperrors.Wrap(err, "failed to decode directory response")
	}

	return body.Groups, nil
}

// NoopDirectory is a GroupDirectory that reports no memberships. It backs
// deployments with group-based authorization disabled.
type NoopDirectory struct{}

// GetGroupsOf always returns an empty group list.
func (NoopDirectory) GetGroupsOf(ctx context.Context, userID string) ([]string, error) {
	return nil, nil
}
