// Package processor runs queued scheduling tasks in the background: it
// periodically claims a batch of pending tasks from the store, schedules
// each one concurrently, and writes the outcome back.
package processor

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/transitly/scheduler/config"
	"github.com/transitly/scheduler/internal/model"
)

// TaskStore is the slice of the task repository the processor needs.
// ClaimPending must hand each task to at most one caller.
type TaskStore interface {
	ClaimPending(ctx context.Context, limit int) ([]string, error)
	Get(ctx context.Context, id string) (*model.Task, error)
	Finalize(ctx context.Context, id string, status model.TaskStatus, response *model.ScheduleResponse, errorMessage string) error
}

// Scheduler computes a plan for one request.
type Scheduler interface {
	Schedule(ctx context.Context, request *model.ScheduleRequest) (*model.ScheduleResponse, error)
}

// Processor is the background task loop.
type Processor struct {
	store     TaskStore
	scheduler Scheduler
	interval  time.Duration
	batchSize int

	cancel context.CancelFunc
	done   chan struct{}
}

// New builds a processor; Start begins the loop.
func New(store TaskStore, scheduler Scheduler, cfg config.ProcessorConfig) *Processor {
	return &Processor{
		store:     store,
		scheduler: scheduler,
		interval:  cfg.Interval,
		batchSize: cfg.BatchSize,
	}
}

// Start launches the polling loop in its own goroutine.
func (p *Processor) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		log.Printf("[processor] start, interval=%s batch=%d", p.interval, p.batchSize)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			if err := p.RunOnce(ctx); err != nil && ctx.Err() == nil {
				log.Printf("[processor] loop error: %v", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop halts claiming and waits for in-flight tasks to finish.
func (p *Processor) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	log.Printf("[processor] stopped")
}

// RunOnce claims one batch and processes every claimed task concurrently.
// Per-task failures are written back to the store, not returned.
//
// ctx only gates the claim: once a task is claimed it runs on its own
// context, so a shutdown that cancels the loop never aborts in-flight
// work or strands a task in PROCESSING.
func (p *Processor) RunOnce(ctx context.Context) error {
	ids, err := p.store.ClaimPending(ctx, p.batchSize)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			p.processTask(context.Background(), id)
		}(id)
	}
	wg.Wait()
	return nil
}

func (p *Processor) processTask(ctx context.Context, id string) {
	log.Printf("[processor] processing task %s", id)

	task, err := p.store.Get(ctx, id)
	if err != nil {
		log.Printf("[processor] task %s: load failed: %v", id, err)
		return
	}

	response, err := p.scheduler.Schedule(ctx, &task.Request)
	if err != nil {
		log.Printf("[processor] task %s: failed: %v", id, err)
		if err := p.store.Finalize(ctx, id, model.TaskFailed, nil, err.Error()); err != nil {
			log.Printf("[processor] task %s: finalize failed: %v", id, err)
		}
		return
	}

	if err := p.store.Finalize(ctx, id, model.TaskCompleted, response, ""); err != nil {
		log.Printf("[processor] task %s: finalize failed: %v", id, err)
		return
	}
	log.Printf("[processor] task %s completed", id)
}
