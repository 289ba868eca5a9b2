package processor

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/transitly/scheduler/config"
	"github.com/transitly/scheduler/internal/model"
	"github.com/transitly/scheduler/internal/repository"
)

// memTaskStore is an in-memory TaskStore with the same claim exclusivity
// as the Mongo-backed one.
type memTaskStore struct {
	mu    sync.Mutex
	tasks map[string]*model.Task
	order []string
}

func newMemTaskStore() *memTaskStore {
	return &memTaskStore{tasks: make(map[string]*model.Task)}
}

func (s *memTaskStore) add(request model.ScheduleRequest) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	task := model.NewTask(request)
	s.tasks[task.ID] = task
	s.order = append(s.order, task.ID)
	return task.ID
}

func (s *memTaskStore) ClaimPending(_ context.Context, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, id := range s.order {
		if len(ids) >= limit {
			break
		}
		if task := s.tasks[id]; task.Status == model.TaskPending {
			task.Status = model.TaskProcessing
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *memTaskStore) Get(_ context.Context, id string) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *task
	return &copied, nil
}

func (s *memTaskStore) Finalize(_ context.Context, id string, status model.TaskStatus, response *model.ScheduleResponse, errorMessage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return repository.ErrNotFound
	}
	task.Status = status
	task.Response = response
	if errorMessage != "" {
		task.ErrorMessage = &errorMessage
	}
	return nil
}

func (s *memTaskStore) status(id string) model.TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks[id].Status
}

// fakeScheduler fails requests whose date matches failDate.
type fakeScheduler struct {
	failDate string
}

func (f *fakeScheduler) Schedule(_ context.Context, request *model.ScheduleRequest) (*model.ScheduleResponse, error) {
	if request.Date == f.failDate {
		return nil, errors.New("provider unavailable")
	}
	return model.SuccessResponse(nil), nil
}

func testProcessor(store TaskStore, scheduler Scheduler) *Processor {
	return New(store, scheduler, config.ProcessorConfig{BatchSize: 10})
}

func TestRunOnce_CompletesAndFails(t *testing.T) {
	store := newMemTaskStore()
	goodID := store.add(model.ScheduleRequest{Date: "June 1, 2024"})
	badID := store.add(model.ScheduleRequest{Date: "June 2, 2024"})

	p := testProcessor(store, &fakeScheduler{failDate: "June 2, 2024"})
	if err := p.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	if got := store.status(goodID); got != model.TaskCompleted {
		t.Errorf("good task status = %s, want COMPLETED", got)
	}
	if got := store.status(badID); got != model.TaskFailed {
		t.Errorf("bad task status = %s, want FAILED", got)
	}
	if task, _ := store.Get(context.Background(), goodID); task.Response == nil {
		t.Error("completed task has no response")
	}
	if task, _ := store.Get(context.Background(), badID); task.ErrorMessage == nil {
		t.Error("failed task has no error message")
	}
}

func TestRunOnce_RespectsBatchSize(t *testing.T) {
	store := newMemTaskStore()
	for i := 0; i < 5; i++ {
		store.add(model.ScheduleRequest{Date: "June 1, 2024"})
	}

	p := New(store, &fakeScheduler{}, config.ProcessorConfig{BatchSize: 2})
	if err := p.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	completed := 0
	for _, id := range store.order {
		if store.status(id) == model.TaskCompleted {
			completed++
		}
	}
	if completed != 2 {
		t.Errorf("completed = %d, want batch size 2", completed)
	}
}

// shutdownScheduler cancels the loop context from inside Schedule, the
// way Stop does while a task is in flight, and then fails if its own
// context was cancelled along with it.
type shutdownScheduler struct {
	cancelLoop context.CancelFunc
}

func (s *shutdownScheduler) Schedule(ctx context.Context, _ *model.ScheduleRequest) (*model.ScheduleResponse, error) {
	s.cancelLoop()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return model.SuccessResponse(nil), nil
}

func TestRunOnce_InFlightTaskCompletesAfterShutdown(t *testing.T) {
	store := newMemTaskStore()
	id := store.add(model.ScheduleRequest{Date: "June 1, 2024"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := testProcessor(store, &shutdownScheduler{cancelLoop: cancel})

	if err := p.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce: %v", err)
	}

	// The loop context was cancelled mid-task; the task must still run to
	// completion rather than fail or stay stuck in PROCESSING.
	if got := store.status(id); got != model.TaskCompleted {
		t.Errorf("task status = %s, want COMPLETED", got)
	}
	if task, _ := store.Get(context.Background(), id); task.ErrorMessage != nil {
		t.Errorf("task error = %q, want none", *task.ErrorMessage)
	}
}

func TestClaimPending_Exclusive(t *testing.T) {
	store := newMemTaskStore()
	for i := 0; i < 20; i++ {
		store.add(model.ScheduleRequest{Date: "June 1, 2024"})
	}

	// Two concurrent claimers must never receive the same task.
	var wg sync.WaitGroup
	results := make([][]string, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids, err := store.ClaimPending(context.Background(), 15)
			if err != nil {
				t.Errorf("ClaimPending: %v", err)
			}
			results[i] = ids
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, ids := range results {
		for _, id := range ids {
			if seen[id] {
				t.Errorf("task %s claimed twice", id)
			}
			seen[id] = true
		}
	}
	if len(seen) != 20 {
		t.Errorf("claimed %d tasks total, want 20", len(seen))
	}
}
