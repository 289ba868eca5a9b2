package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/transitly/scheduler/internal/model"
)

// TaskRepository stores asynchronous scheduling tasks in the `tasks`
// collection.
type TaskRepository struct {
	collection *mongo.Collection
}

// NewTaskRepository creates a repository over the `tasks` collection.
func NewTaskRepository(database *mongo.Database) *TaskRepository {
	return &TaskRepository{collection: database.Collection("tasks")}
}

// Create inserts a PENDING task for the request and returns its id.
func (r *TaskRepository) Create(ctx context.Context, request model.ScheduleRequest) (string, error) {
	task := model.NewTask(request)
	if _, err := r.collection.InsertOne(ctx, task); err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}
	return task.ID, nil
}

// Get fetches one task by id.
func (r *TaskRepository) Get(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&task)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &task, nil
}

// ClaimPending atomically transitions up to `limit` PENDING tasks to
// PROCESSING and returns their ids.
//
// Each claim is a single FindOneAndUpdate on {status: PENDING}, so two
// concurrent callers can never claim the same task: whichever update lands
// second no longer matches the filter.
func (r *TaskRepository) ClaimPending(ctx context.Context, limit int) ([]string, error) {
	ids := make([]string, 0, limit)
	for len(ids) < limit {
		var claimed struct {
			ID string `bson:"id"`
		}
		err := r.collection.FindOneAndUpdate(ctx,
			bson.M{"status": model.TaskPending},
			bson.M{"$set": bson.M{
				"status":     model.TaskProcessing,
				"updated_at": time.Now().UTC(),
			}},
			options.FindOneAndUpdate().
				SetSort(bson.D{{Key: "created_at", Value: 1}}).
				SetReturnDocument(options.After),
		).Decode(&claimed)
		if errors.Is(err, mongo.ErrNoDocuments) {
			break
		}
		if err != nil {
			return ids, fmt.Errorf("claim pending: %w", err)
		}
		ids = append(ids, claimed.ID)
	}
	return ids, nil
}

// Finalize writes a task's terminal (or interim) state and bumps
// updated_at.
func (r *TaskRepository) Finalize(ctx context.Context, id string, status model.TaskStatus, response *model.ScheduleResponse, errorMessage string) error {
	set := bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if response != nil {
		set["response"] = response
	}
	if errorMessage != "" {
		set["error_message"] = errorMessage
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("finalize task: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
