package services

import (
	"context"
	"fmt"

	"projecthub/backend/logging"
	"projecthub/backend/metrics"
	"projecthub/backend/organizations-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BlockingRoles lists the organizations where userID holds a sole-authority
// role: the only active owner, or an admin-tier member with no other
// admin-tier member left.
func (s *OrganizationService) BlockingRoles(ctx context.Context, userID int64) (*models.BlockingRoles, error) {
	report := &models.BlockingRoles{UserID: userID, Reasons: []string{}}

	memberships, err := s.members.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load memberships of user %d: %w", userID, err)
	}
	for _, m := range memberships {
		if !m.Role.AdminTier() {
			continue
		}
		oid, err := primitive.ObjectIDFromHex(m.OrganizationID)
		if err != nil {
			continue
		}
		org, err := s.organizations.FindByID(ctx, oid)
		if err != nil {
			return nil, fmt.Errorf("load organization %s: %w", m.OrganizationID, err)
		}
		if !org.IsActive {
			continue
		}

		peers, err := s.members.ListActive(ctx, m.OrganizationID)
		if err != nil {
			return nil, fmt.Errorf("load members of organization %s: %w", m.OrganizationID, err)
		}
		otherOwners, otherAdmins := 0, 0
		for _, p := range peers {
			if p.UserID == userID {
				continue
			}
			if p.Role == models.RoleOwner {
				otherOwners++
			}
			if p.Role.AdminTier() {
				otherAdmins++
			}
		}

		switch {
		case m.Role == models.RoleOwner && otherOwners == 0:
			report.Reasons = append(report.Reasons, fmt.Sprintf("cannot delete: sole owner of organization %s", org.Name))
		case otherAdmins == 0:
			report.Reasons = append(report.Reasons, fmt.Sprintf("cannot delete: sole administrator of organization %s", org.Name))
		}
	}
	report.Blocking = len(report.Reasons) > 0
	if report.Blocking {
		logging.Logger.Infof("Event ID: USER_BLOCKING_ROLES, Description: User %d blocks deletion: %v", userID, report.Reasons)
	}
	return report, nil
}

// CleanupUser deactivates every active membership of userID. Running it again
// changes nothing.
func (s *OrganizationService) CleanupUser(ctx context.Context, userID int64) (*models.CleanupReport, error) {
	n, err := s.members.DeactivateAllForUser(ctx, userID, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("deactivate memberships of user %d: %w", userID, err)
	}
	metrics.CleanupRows.WithLabelValues("organizations").Add(float64(n))
	logging.Logger.Infof("Event ID: USER_MEMBERSHIPS_DEACTIVATED, Description: Deactivated %d organization memberships of user %d", n, userID)
	return &models.CleanupReport{UserID: userID, Deactivated: n}, nil
}
