package clients

import (
	"context"
	"fmt"
	"net/http"

	"projecthub/backend/users-service/models"
	"projecthub/backend/utils"
)

// Participant is a service taking part in user deletion. It answers the
// blocking-role query and runs its own cleanup.
type Participant struct {
	api *utils.ServiceClient
}

func NewParticipant(api *utils.ServiceClient) *Participant {
	return &Participant{api: api}
}

func (p *Participant) Name() string {
	return p.api.Name
}

func (p *Participant) BlockingRoles(ctx context.Context, token string, userID int64) (*models.BlockingRoles, error) {
	var out models.BlockingRoles
	if err := p.api.Do(ctx, http.MethodGet, fmt.Sprintf("/internal/blocking-roles/%d", userID), token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p *Participant) Cleanup(ctx context.Context, token string, userID int64) error {
	return p.api.Do(ctx, http.MethodPost, fmt.Sprintf("/internal/cleanup/%d", userID), token, nil, nil)
}
