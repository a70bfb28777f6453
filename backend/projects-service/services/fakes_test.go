package services

import (
	"context"
	"sync"
	"time"

	"projecthub/backend/projects-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memProjects struct {
	mu       sync.Mutex
	projects []models.Project
}

func (m *memProjects) Insert(_ context.Context, p *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.projects {
		if e.OrganizationID == p.OrganizationID && e.Name == p.Name {
			return ErrNameTaken
		}
	}
	m.projects = append(m.projects, *p)
	return nil
}

func (m *memProjects) FindByID(_ context.Context, id primitive.ObjectID) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.projects {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, ErrProjectNotFound
}

func (m *memProjects) FindByOrganization(_ context.Context, orgID string) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Project{}
	for _, p := range m.projects {
		if p.OrganizationID == orgID {
			out = append(out, p)
		}
	}
	return out, nil
}

type memMembers struct {
	mu   sync.Mutex
	rows []models.ProjectMember
}

func (m *memMembers) Insert(_ context.Context, row *models.ProjectMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ProjectID == row.ProjectID && r.UserID == row.UserID {
			return ErrAlreadyMember
		}
	}
	m.rows = append(m.rows, *row)
	return nil
}

func (m *memMembers) Find(_ context.Context, projectID string, userID int64) (*models.ProjectMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ProjectID == projectID && r.UserID == userID {
			return &r, nil
		}
	}
	return nil, ErrMemberNotFound
}

func (m *memMembers) filter(keep func(models.ProjectMember) bool) []models.ProjectMember {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ProjectMember{}
	for _, r := range m.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (m *memMembers) ListActive(_ context.Context, projectID string) ([]models.ProjectMember, error) {
	return m.filter(func(r models.ProjectMember) bool { return r.IsActive && r.ProjectID == projectID }), nil
}

func (m *memMembers) ListActiveByUser(_ context.Context, userID int64) ([]models.ProjectMember, error) {
	return m.filter(func(r models.ProjectMember) bool { return r.IsActive && r.UserID == userID }), nil
}

func (m *memMembers) mutate(id primitive.ObjectID, fn func(*models.ProjectMember)) error {
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

func (m *memMembers) UpdateRole(_ context.Context, id primitive.ObjectID, role models.ProjectRole) error {
	return m.mutate(id, func(r *models.ProjectMember) { r.Role = role })
}

func (m *memMembers) Deactivate(_ context.Context, id primitive.ObjectID, at time.Time) error {
	return m.mutate(id, func(r *models.ProjectMember) { r.IsActive = false; r.RemovedAt = &at })
}

func (m *memMembers) Reactivate(_ context.Context, id primitive.ObjectID, role models.ProjectRole, at time.Time) error {
	return m.mutate(id, func(r *models.ProjectMember) {
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

// orgMembers answers IsMember from a fixed user set, for any organization.
type orgMembers map[int64]bool

func (o orgMembers) IsMember(_ context.Context, _ string, _ string, userID int64) (bool, error) {
	return o[userID], nil
}
