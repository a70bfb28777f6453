package repositories

import (
	"context"
	"errors"
	"fmt"

	"projecthub/backend/tasks-service/models"
	"projecthub/backend/tasks-service/services"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DependencyRepo struct {
	dependencies *mongo.Collection
}

func NewDependencyRepo(db *mongo.Database) *DependencyRepo {
	return &DependencyRepo{dependencies: db.Collection("task_dependencies")}
}

// EnsureIndexes creates the unique (taskId, dependsOnTaskId) index that
// rejects duplicate edges.
func (r *DependencyRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.dependencies.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "taskId", Value: 1}, {Key: "dependsOnTaskId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "dependsOnTaskId", Value: 1}}},
		{Keys: bson.D{{Key: "projectId", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create dependency indexes: %w", err)
	}
	return nil
}

func (r *DependencyRepo) Insert(ctx context.Context, dep *models.TaskDependency) error {
	_, err := r.dependencies.InsertOne(ctx, dep)
	if mongo.IsDuplicateKeyError(err) {
		return services.ErrDuplicateDependency
	}
	return err
}

func (r *DependencyRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.TaskDependency, error) {
	var dep models.TaskDependency
	err := r.dependencies.FindOne(ctx, bson.M{"_id": id}).Decode(&dep)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, services.ErrDependencyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find dependency %s: %w", id.Hex(), err)
	}
	return &dep, nil
}

func (r *DependencyRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.dependencies.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete dependency %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return services.ErrDependencyNotFound
	}
	return nil
}

func (r *DependencyRepo) find(ctx context.Context, filter bson.M) ([]models.TaskDependency, error) {
	cursor, err := r.dependencies.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	deps := []models.TaskDependency{}
	if err := cursor.All(ctx, &deps); err != nil {
		return nil, fmt.Errorf("decode dependencies: %w", err)
	}
	return deps, nil
}

func (r *DependencyRepo) FindByTask(ctx context.Context, taskID primitive.ObjectID) ([]models.TaskDependency, error) {
	return r.find(ctx, bson.M{"taskId": taskID})
}

func (r *DependencyRepo) FindByDependsOn(ctx context.Context, taskID primitive.ObjectID) ([]models.TaskDependency, error) {
	return r.find(ctx, bson.M{"dependsOnTaskId": taskID})
}

func (r *DependencyRepo) FindByProject(ctx context.Context, projectID string) ([]models.TaskDependency, error) {
	return r.find(ctx, bson.M{"projectId": projectID})
}
