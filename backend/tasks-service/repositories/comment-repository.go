package repositories

import (
	"context"
	"fmt"

	"projecthub/backend/tasks-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CommentRepo struct {
	comments *mongo.Collection
}

func NewCommentRepo(db *mongo.Database) *CommentRepo {
	return &CommentRepo{comments: db.Collection("task_comments")}
}

func (r *CommentRepo) Insert(ctx context.Context, c *models.TaskComment) error {
	_, err := r.comments.InsertOne(ctx, c)
	return err
}

func (r *CommentRepo) FindByTask(ctx context.Context, taskID primitive.ObjectID) ([]models.TaskComment, error) {
	cursor, err := r.comments.Find(ctx,
		bson.M{"taskId": taskID, "isActive": true},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find comments: %w", err)
	}
	defer cursor.Close(ctx)

	comments := []models.TaskComment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	return comments, nil
}
