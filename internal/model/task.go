package model

import "time"

// TaskStatus is the lifecycle state of an asynchronous scheduling task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "PENDING"
	TaskProcessing TaskStatus = "PROCESSING"
	TaskCompleted  TaskStatus = "COMPLETED"
	TaskFailed     TaskStatus = "FAILED"
)

// Task maps to the `tasks` collection: a queued scheduling request plus its
// outcome once the processor has run it.
type Task struct {
	ID           string            `json:"id" bson:"id"`
	Request      ScheduleRequest   `json:"request" bson:"request"`
	Status       TaskStatus        `json:"status" bson:"status"`
	CreatedAt    time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at" bson:"updated_at"`
	ErrorMessage *string           `json:"error_message,omitempty" bson:"error_message,omitempty"`
	Response     *ScheduleResponse `json:"response,omitempty" bson:"response,omitempty"`
}

// NewTask creates a PENDING task for the given request.
func NewTask(request ScheduleRequest) *Task {
	now := time.Now().UTC()
	return &Task{
		ID:        NewID(),
		Request:   request,
		Status:    TaskPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CreateTaskResponse is returned by POST /api/task.
type CreateTaskResponse struct {
	ID string `json:"id"`
}
