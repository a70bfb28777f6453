package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"projecthub/backend/organizations-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memOrgs struct {
	mu   sync.Mutex
	orgs map[primitive.ObjectID]models.Organization
}

func (m *memOrgs) Insert(_ context.Context, org *models.Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.orgs == nil {
		m.orgs = map[primitive.ObjectID]models.Organization{}
	}
	for _, o := range m.orgs {
		if o.Name == org.Name {
			return ErrNameTaken
		}
	}
	m.orgs[org.ID] = *org
	return nil
}

func (m *memOrgs) FindByID(_ context.Context, id primitive.ObjectID) (*models.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orgs[id]
	if !ok {
		return nil, ErrOrganizationNotFound
	}
	return &o, nil
}

func (m *memOrgs) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Organization{}
	for _, id := range ids {
		if o, ok := m.orgs[id]; ok {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memMembers struct {
	mu   sync.Mutex
	rows []models.OrganizationUser
}

func (m *memMembers) Insert(_ context.Context, row *models.OrganizationUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.OrganizationID == row.OrganizationID && r.UserID == row.UserID {
			return ErrAlreadyMember
		}
	}
	m.rows = append(m.rows, *row)
	return nil
}

func (m *memMembers) Find(_ context.Context, orgID string, userID int64) (*models.OrganizationUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.OrganizationID == orgID && r.UserID == userID {
			return &r, nil
		}
	}
	return nil, ErrMemberNotFound
}

func (m *memMembers) filter(keep func(models.OrganizationUser) bool) []models.OrganizationUser {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.OrganizationUser{}
	for _, r := range m.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (m *memMembers) ListActive(_ context.Context, orgID string) ([]models.OrganizationUser, error) {
	return m.filter(func(r models.OrganizationUser) bool { return r.IsActive && r.OrganizationID == orgID }), nil
}

func (m *memMembers) ListActiveByUser(_ context.Context, userID int64) ([]models.OrganizationUser, error) {
	return m.filter(func(r models.OrganizationUser) bool { return r.IsActive && r.UserID == userID }), nil
}

func (m *memMembers) mutate(id primitive.ObjectID, fn func(*models.OrganizationUser)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			fn(&m.rows[i])
			return nil
		}
	}
	return ErrMemberNotFound
}

func (m *memMembers) UpdateRole(_ context.Context, id primitive.ObjectID, role models.OrganizationRole) error {
	return m.mutate(id, func(r *models.OrganizationUser) { r.Role = role })
}

func (m *memMembers) Deactivate(_ context.Context, id primitive.ObjectID, at time.Time) error {
	return m.mutate(id, func(r *models.OrganizationUser) { r.IsActive = false; r.RemovedAt = &at })
}

func (m *memMembers) Reactivate(_ context.Context, id primitive.ObjectID, role models.OrganizationRole, at time.Time) error {
	return m.mutate(id, func(r *models.OrganizationUser) {
		r.IsActive, r.Role, r.JoinedAt, r.RemovedAt = true, role, at, nil
	})
}

func (m *memMembers) DeactivateAllForUser(_ context.Context, userID int64, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.rows {
		if m.rows[i].UserID == userID && m.rows[i].IsActive {
			m.rows[i].IsActive = false
			m.rows[i].RemovedAt = &at
			n++
		}
	}
	return n, nil
}

// knownUsers is a UserDirectory over a fixed id set.
type knownUsers map[int64]bool

func (k knownUsers) Exists(_ context.Context, _ string, userID int64) error {
	if !k[userID] {
		return ErrUserNotFound
	}
	return nil
}
