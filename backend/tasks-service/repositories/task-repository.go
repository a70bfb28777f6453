package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"projecthub/backend/tasks-service/models"
	"projecthub/backend/tasks-service/services"
	"projecthub/backend/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TaskRepo struct {
	tasks    *mongo.Collection
	sequence *utils.Sequence
}

func NewTaskRepo(db *mongo.Database) *TaskRepo {
	return &TaskRepo{
		tasks:    db.Collection("tasks"),
		sequence: utils.NewSequence(db.Collection("counters")),
	}
}

// EnsureIndexes creates the indexes the queries below rely on.
func (r *TaskRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.tasks.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "projectId", Value: 1}, {Key: "number", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "parentTaskId", Value: 1}, {Key: "isActive", Value: 1}}},
		{Keys: bson.D{{Key: "assignedToUserId", Value: 1}, {Key: "isActive", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create task indexes: %w", err)
	}
	return nil
}

func (r *TaskRepo) NextNumber(ctx context.Context, projectID string) (int64, error) {
	return r.sequence.Next(ctx, "task_number:"+projectID)
}

func (r *TaskRepo) Insert(ctx context.Context, task *models.Task) error {
	_, err := r.tasks.InsertOne(ctx, task)
	return err
}

func (r *TaskRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := r.tasks.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, services.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find task %s: %w", id.Hex(), err)
	}
	return &task, nil
}

func (r *TaskRepo) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Task, error) {
	cursor, err := r.tasks.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tasks := []models.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}
	return tasks, nil
}

// FindByProject returns every task of the project, soft-deleted ones included,
// ordered by number.
func (r *TaskRepo) FindByProject(ctx context.Context, projectID string) ([]models.Task, error) {
	return r.find(ctx, bson.M{"projectId": projectID}, options.Find().SetSort(bson.D{{Key: "number", Value: 1}}))
}

func (r *TaskRepo) FindChildren(ctx context.Context, parentID primitive.ObjectID) ([]models.Task, error) {
	return r.find(ctx, bson.M{"parentTaskId": parentID, "isActive": true}, options.Find().SetSort(bson.D{{Key: "number", Value: 1}}))
}

func (r *TaskRepo) update(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	update["updatedAt"] = time.Now().UTC()
	res, err := r.tasks.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": update})
	if err != nil {
		return fmt.Errorf("update task %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return services.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepo) UpdateParent(ctx context.Context, id primitive.ObjectID, parentID *primitive.ObjectID) error {
	if parentID == nil {
		res, err := r.tasks.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
			"$unset": bson.M{"parentTaskId": ""},
			"$set":   bson.M{"updatedAt": time.Now().UTC()},
		})
		if err != nil {
			return fmt.Errorf("clear parent of %s: %w", id.Hex(), err)
		}
		if res.MatchedCount == 0 {
			return services.ErrTaskNotFound
		}
		return nil
	}
	return r.update(ctx, id, bson.M{"parentTaskId": *parentID})
}

func (r *TaskRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.TaskStatus, completedAt *time.Time) error {
	return r.update(ctx, id, bson.M{"status": status, "completedAt": completedAt})
}

func (r *TaskRepo) UpdateAssignee(ctx context.Context, id primitive.ObjectID, userID *int64) error {
	return r.update(ctx, id, bson.M{"assignedToUserId": userID})
}

func (r *TaskRepo) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	return r.update(ctx, id, bson.M{"isActive": false})
}

func (r *TaskRepo) FindAssigned(ctx context.Context, userID int64, limit int) ([]models.Task, error) {
	return r.find(ctx,
		bson.M{"assignedToUserId": userID, "isActive": true},
		options.Find().SetLimit(int64(limit)).SetSort(bson.D{{Key: "_id", Value: 1}}),
	)
}

func (r *TaskRepo) Unassign(ctx context.Context, ids []primitive.ObjectID, userID int64) (int64, error) {
	res, err := r.tasks.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "assignedToUserId": userID},
		bson.M{"$set": bson.M{"assignedToUserId": nil, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return 0, fmt.Errorf("unassign tasks of user %d: %w", userID, err)
	}
	return res.ModifiedCount, nil
}
