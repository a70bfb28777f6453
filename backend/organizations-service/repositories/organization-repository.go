package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"projecthub/backend/organizations-service/models"
	"projecthub/backend/organizations-service/services"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OrganizationRepo struct {
	organizations *mongo.Collection
}

func NewOrganizationRepo(db *mongo.Database) *OrganizationRepo {
	return &OrganizationRepo{organizations: db.Collection("organizations")}
}

func (r *OrganizationRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.organizations.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create organization indexes: %w", err)
	}
	return nil
}

func (r *OrganizationRepo) Insert(ctx context.Context, org *models.Organization) error {
	if _, err := r.organizations.InsertOne(ctx, org); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return services.ErrNameTaken
		}
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}

func (r *OrganizationRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Organization, error) {
	var org models.Organization
	err := r.organizations.FindOne(ctx, bson.M{"_id": id}).Decode(&org)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, services.ErrOrganizationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find organization %s: %w", id.Hex(), err)
	}
	return &org, nil
}

func (r *OrganizationRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Organization, error) {
	orgs := []models.Organization{}
	if len(ids) == 0 {
		return orgs, nil
	}
	cursor, err := r.organizations.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	if err := cursor.All(ctx, &orgs); err != nil {
		return nil, fmt.Errorf("decode organizations: %w", err)
	}
	return orgs, nil
}

type MembershipRepo struct {
	members *mongo.Collection
}

func NewMembershipRepo(db *mongo.Database) *MembershipRepo {
	return &MembershipRepo{members: db.Collection("organization_users")}
}

// EnsureIndexes keeps one row per (organization, user); removal and re-adding
// flip isActive on that row.
func (r *MembershipRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.members.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "organizationId", Value: 1}, {Key: "userId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "isActive", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create membership indexes: %w", err)
	}
	return nil
}

func (r *MembershipRepo) Insert(ctx context.Context, m *models.OrganizationUser) error {
	if _, err := r.members.InsertOne(ctx, m); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return services.ErrAlreadyMember
		}
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

func (r *MembershipRepo) Find(ctx context.Context, orgID string, userID int64) (*models.OrganizationUser, error) {
	var m models.OrganizationUser
	err := r.members.FindOne(ctx, bson.M{"organizationId": orgID, "userId": userID}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, services.ErrMemberNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find membership: %w", err)
	}
	return &m, nil
}

func (r *MembershipRepo) list(ctx context.Context, filter bson.M) ([]models.OrganizationUser, error) {
	cursor, err := r.members.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "joinedAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []models.OrganizationUser{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode memberships: %w", err)
	}
	return out, nil
}

func (r *MembershipRepo) ListActive(ctx context.Context, orgID string) ([]models.OrganizationUser, error) {
	return r.list(ctx, bson.M{"organizationId": orgID, "isActive": true})
}

func (r *MembershipRepo) ListActiveByUser(ctx context.Context, userID int64) ([]models.OrganizationUser, error) {
	return r.list(ctx, bson.M{"userId": userID, "isActive": true})
}

func (r *MembershipRepo) update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	res, err := r.members.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("update membership %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return services.ErrMemberNotFound
	}
	return nil
}

func (r *MembershipRepo) UpdateRole(ctx context.Context, id primitive.ObjectID, role models.OrganizationRole) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{"role": role}})
}

func (r *MembershipRepo) Deactivate(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return r.update(ctx, id, bson.M{"$set": bson.M{"isActive": false, "removedAt": at}})
}

func (r *MembershipRepo) Reactivate(ctx context.Context, id primitive.ObjectID, role models.OrganizationRole, at time.Time) error {
	return r.update(ctx, id, bson.M{
		"$set":   bson.M{"isActive": true, "role": role, "joinedAt": at},
		"$unset": bson.M{"removedAt": ""},
	})
}

func (r *MembershipRepo) DeactivateAllForUser(ctx context.Context, userID int64, at time.Time) (int64, error) {
	res, err := r.members.UpdateMany(ctx,
		bson.M{"userId": userID, "isActive": true},
		bson.M{"$set": bson.M{"isActive": false, "removedAt": at}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
