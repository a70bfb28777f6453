package clients

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"projecthub/backend/utils"
)

// OrganizationsClient implements services.OrganizationMembership.
type OrganizationsClient struct {
	api *utils.ServiceClient
}

func NewOrganizationsClient(api *utils.ServiceClient) *OrganizationsClient {
	return &OrganizationsClient{api: api}
}

func (c *OrganizationsClient) IsMember(ctx context.Context, token, orgID string, userID int64) (bool, error) {
	var m struct {
		IsActive bool `json:"isActive"`
	}
	err := c.api.Do(ctx, http.MethodGet, fmt.Sprintf("/internal/organizations/%s/members/%d", orgID, userID), token, nil, &m)
	var remote *utils.RemoteError
	if errors.As(err, &remote) && (remote.StatusCode == http.StatusNotFound || remote.StatusCode == http.StatusBadRequest) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return m.IsActive, nil
}
