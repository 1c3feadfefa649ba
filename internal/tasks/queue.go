package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/jwhyun/finbot/internal/db"
)

// State is a task's lifecycle state. completed and failed are terminal.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// ErrNotFound is returned when polling an unknown task handle.
var ErrNotFound = errors.New("task not found")

// ErrStopped is returned when enqueueing after the pool has shut down.
var ErrStopped = errors.New("task queue stopped")

// Status is a point-in-time view of a task.
type Status struct {
	ID     string
	State  State
	Result string
	Err    string
}

// Handler is the unit of work a task runs. Its return value becomes the
// task result; an error moves the task to failed.
type Handler func(ctx context.Context) (string, error)

type job struct {
	id string
	fn Handler
}

// Queue is a SQLite-backed asynchronous task queue with a fixed worker
// pool. Results survive in the tasks table, so polling a handle stays
// idempotent: reads only, identical answers, no repeated side effects.
type Queue struct {
	db      *db.DB
	jobs    chan job
	workers int
	wg      sync.WaitGroup
	cancel  context.CancelFunc

	mu      sync.Mutex
	stopped bool
}

// NewQueue creates a task queue with the given worker count.
func NewQueue(d *db.DB, workers int) *Queue {
	if workers <= 0 {
		workers = 4
	}
	return &Queue{
		db:      d,
		jobs:    make(chan job, 128),
		workers: workers,
	}
}

// Start launches the worker pool. Tasks a previous process left pending
// or running have lost their handlers and are failed over first, so they
// never poll as pending forever.
func (q *Queue) Start(ctx context.Context) {
	if n := q.sweepStale(); n > 0 {
		log.Printf("tasks: failed %d stale tasks from a previous run", n)
	}

	ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx)
	}
	log.Printf("tasks: started %d workers", q.workers)
}

// Stop shuts the pool down and waits for in-flight tasks. Enqueue calls
// racing the shutdown return ErrStopped instead of sending on the closed
// channel.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	q.mu.Unlock()

	if q.cancel != nil {
		q.cancel()
	}
	close(q.jobs)
	q.wg.Wait()
}

// Enqueue registers a task and hands it to the pool, returning the handle
// to poll.
func (q *Queue) Enqueue(ctx context.Context, sessionID string, fn Handler) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return "", ErrStopped
	}

	id := uuid.NewString()

	_, err := q.db.ExecContext(ctx,
		"INSERT INTO tasks (id, session_id, state) VALUES (?, ?, ?)",
		id, sessionID, string(StatePending))
	if err != nil {
		return "", fmt.Errorf("registering task: %w", err)
	}

	select {
	case q.jobs <- job{id: id, fn: fn}:
		return id, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// RunSync executes the task inline, recording the same lifecycle rows the
// pool would, so polling the handle behaves identically in sync mode.
func (q *Queue) RunSync(ctx context.Context, sessionID string, fn Handler) (string, error) {
	id := uuid.NewString()

	_, err := q.db.ExecContext(ctx,
		"INSERT INTO tasks (id, session_id, state) VALUES (?, ?, ?)",
		id, sessionID, string(StatePending))
	if err != nil {
		return "", fmt.Errorf("registering task: %w", err)
	}

	q.run(ctx, job{id: id, fn: fn})
	return id, nil
}

// sweepStale moves leftover pending/running rows to failed. Runs before
// the workers start, so it cannot race this process's own tasks.
func (q *Queue) sweepStale() int64 {
	res, err := q.db.ExecContext(context.Background(),
		"UPDATE tasks SET state = ?, error = ?, finished_at = datetime('now') WHERE state IN (?, ?)",
		string(StateFailed), "interrupted before completion",
		string(StatePending), string(StateRunning))
	if err != nil {
		log.Printf("tasks: sweeping stale tasks: %v", err)
		return 0
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0
	}
	return n
}

// Poll returns the task's current status. It performs no writes.
func (q *Queue) Poll(ctx context.Context, id string) (*Status, error) {
	var st Status
	var state string
	err := q.db.QueryRowContext(ctx,
		"SELECT id, state, result, error FROM tasks WHERE id = ?", id).
		Scan(&st.ID, &state, &st.Result, &st.Err)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("polling task %s: %w", id, err)
	}
	st.State = State(state)
	return &st, nil
}

func (q *Queue) worker(ctx context.Context) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-q.jobs:
			if !ok {
				return
			}
			q.run(ctx, j)
		}
	}
}

func (q *Queue) run(ctx context.Context, j job) {
	if err := q.setState(j.id, StateRunning); err != nil {
		log.Printf("tasks: marking %s running: %v", j.id, err)
	}

	result, err := j.fn(ctx)
	if err != nil {
		log.Printf("tasks: task %s failed: %v", j.id, err)
		q.finish(j.id, StateFailed, "", err.Error())
		return
	}
	q.finish(j.id, StateCompleted, result, "")
}

// State writes use a background context so terminal results are recorded
// even when the pool is shutting down.
func (q *Queue) setState(id string, s State) error {
	_, err := q.db.ExecContext(context.Background(),
		"UPDATE tasks SET state = ? WHERE id = ?", string(s), id)
	return err
}

func (q *Queue) finish(id string, s State, result, errText string) {
	_, err := q.db.ExecContext(context.Background(),
		"UPDATE tasks SET state = ?, result = ?, error = ?, finished_at = datetime('now') WHERE id = ?",
		string(s), result, errText, id)
	if err != nil {
		log.Printf("tasks: finishing %s: %v", id, err)
	}
}
