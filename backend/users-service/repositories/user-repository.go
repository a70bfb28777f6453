package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"projecthub/backend/users-service/models"
	"projecthub/backend/users-service/services"
	"projecthub/backend/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepo struct {
	users    *mongo.Collection
	sequence *utils.Sequence
}

func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{
		users:    db.Collection("users"),
		sequence: utils.NewSequence(db.Collection("counters")),
	}
}

func (r *UserRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "isActive", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	id, err := r.sequence.Next(ctx, "user_id")
	if err != nil {
		return err
	}
	u.ID = id
	if _, err := r.users.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return services.ErrUsernameTaken
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := r.users.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, services.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepo) List(ctx context.Context) ([]models.User, error) {
	cursor, err := r.users.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (r *UserRepo) UpdateRole(ctx context.Context, id int64, role string) error {
	res, err := r.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return fmt.Errorf("update role of user %d: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return services.ErrUserNotFound
	}
	return nil
}

func (r *UserRepo) CountActiveByRole(ctx context.Context, role string) (int64, error) {
	return r.users.CountDocuments(ctx, bson.M{
		"role":      role,
		"isActive":  true,
		"deletedAt": bson.M{"$exists": false},
	})
}

// SoftDelete marks the user deleted. Repeating it on a deleted user is a no-op.
func (r *UserRepo) SoftDelete(ctx context.Context, id, deletedBy int64, at time.Time) error {
	_, err := r.users.UpdateOne(ctx,
		bson.M{"_id": id, "deletedAt": bson.M{"$exists": false}},
		bson.M{"$set": bson.M{"isActive": false, "deletedAt": at, "deletedBy": deletedBy}},
	)
	if err != nil {
		return fmt.Errorf("soft delete user %d: %w", id, err)
	}
	return nil
}
