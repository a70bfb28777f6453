package clients

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"projecthub/backend/organizations-service/services"
	"projecthub/backend/utils"
)

// UsersClient implements services.UserDirectory over the identity service.
type UsersClient struct {
	api *utils.ServiceClient
}

func NewUsersClient(api *utils.ServiceClient) *UsersClient {
	return &UsersClient{api: api}
}

func (c *UsersClient) Exists(ctx context.Context, token string, userID int64) error {
	err := c.api.Do(ctx, http.MethodGet, fmt.Sprintf("/internal/users/%d", userID), token, nil, nil)
	var remote *utils.RemoteError
	if errors.As(err, &remote) && remote.StatusCode == http.StatusNotFound {
		return services.ErrUserNotFound
	}
	return err
}
