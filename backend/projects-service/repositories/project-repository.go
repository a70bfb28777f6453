package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"projecthub/backend/projects-service/models"
	"projecthub/backend/projects-service/services"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProjectRepo struct {
	projects *mongo.Collection
}

func NewProjectRepo(db *mongo.Database) *ProjectRepo {
	return &ProjectRepo{projects: db.Collection("projects")}
}

// EnsureIndexes makes project names unique within an organization.
func (r *ProjectRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.projects.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "organizationId", Value: 1}, {Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create unique index on project name: %w", err)
	}
	return nil
}

func (r *ProjectRepo) Insert(ctx context.Context, p *models.Project) error {
	_, err := r.projects.InsertOne(ctx, p)
	if mongo.IsDuplicateKeyError(err) {
		return services.ErrNameTaken
	}
	return err
}

func (r *ProjectRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	var p models.Project
	err := r.projects.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, services.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find project %s: %w", id.Hex(), err)
	}
	return &p, nil
}

func (r *ProjectRepo) FindByOrganization(ctx context.Context, orgID string) ([]models.Project, error) {
	cursor, err := r.projects.Find(ctx, bson.M{"organizationId": orgID}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []models.Project{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	return out, nil
}

type MemberRepo struct {
	members *mongo.Collection
}

func NewMemberRepo(db *mongo.Database) *MemberRepo {
	return &MemberRepo{members: db.Collection("project_members")}
}

func (r *MemberRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.members.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "projectId", Value: 1}, {Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "isActive", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create project member indexes: %w", err)
	}
	return nil
}

func (r *MemberRepo) Insert(ctx context.Context, m *models.ProjectMember) error {
	if _, err := r.members.InsertOne(ctx, m); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return services.ErrAlreadyMember
		}
		return fmt.Errorf("failed to add project member: %w", err)
	}
	return nil
}

func (r *MemberRepo) Find(ctx context.Context, projectID string, userID int64) (*models.ProjectMember, error) {
	var m models.ProjectMember
	err := r.members.FindOne(ctx, bson.M{"projectId": projectID, "userId": userID}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, services.ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find project member: %w", err)
	}
	return &m, nil
}

func (r *MemberRepo) list(ctx context.Context, filter bson.M) ([]models.ProjectMember, error) {
	cursor, err := r.members.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "joinedAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []models.ProjectMember{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode project members: %w", err)
	}
	return out, nil
}

func (r *MemberRepo) ListActive(ctx context.Context, projectID string) ([]models.ProjectMember, error) {
	return r.list(ctx, bson.M{"projectId": projectID, "isActive": true})
}

func (r *MemberRepo) ListActiveByUser(ctx context.Context, userID int64) ([]models.ProjectMember, error) {
	return r.list(ctx, bson.M{"userId": userID, "isActive": true})
}

func (r *MemberRepo) update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := r.members.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("update project member %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return services.ErrMemberNotFound
	}
	return nil
}

func (r *MemberRepo) UpdateRole(ctx context.Context, id primitive.ObjectID, role models.ProjectRole) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{"role": role}})
}

func (r *MemberRepo) Deactivate(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{"isActive": false, "removedAt": at}})
}

func (r *MemberRepo) Reactivate(ctx context.Context, id primitive.ObjectID, role models.ProjectRole, at time.Time) error {
	return r.update(ctx, id, bson.M{
		"$set":   bson.M{"isActive": true, "role": role, "joinedAt": at},
		"$unset": bson.M{"removedAt": ""},
	})
}

func (r *MemberRepo) DeactivateAllForUser(ctx context.Context, userID int64, at time.Time) (int64, error) {
	res, err := r.members.UpdateMany(ctx,
		bson.M{"userId": userID, "isActive": true},
		bson.M{"$set": bson.M{"isActive": false, "removedAt": at}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
