package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jwhyun/finbot/internal/db"
)

func setupQueue(t *testing.T) *Queue {
	t.Helper()

	q := NewQueue(openTestDB(t), 2)
	q.Start(context.Background())
	t.Cleanup(q.Stop)
	return q
}

func openTestDB(t *testing.T) *db.DB {
	t.Helper()

	d, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func waitTerminal(t *testing.T, q *Queue, id string) *Status {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		st, err := q.Poll(context.Background(), id)
		if err != nil {
			t.Fatalf("Poll: %v", err)
		}
		if st.State == StateCompleted || st.State == StateFailed {
			return st
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("task never reached a terminal state")
	return nil
}

func TestEnqueueAndComplete(t *testing.T) {
	q := setupQueue(t)

	id, err := q.Enqueue(context.Background(), "sess-1", func(context.Context) (string, error) {
		return "답변입니다", nil
	})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	st := waitTerminal(t, q, id)
	if st.State != StateCompleted {
		t.Fatalf("expected completed, got %s (%s)", st.State, st.Err)
	}
	if st.Result != "답변입니다" {
		t.Errorf("unexpected result %q", st.Result)
	}
}

func TestPollIsIdempotent(t *testing.T) {
	q := setupQueue(t)

	var runs atomic.Int32
	id, err := q.Enqueue(context.Background(), "sess-1", func(context.Context) (string, error) {
		runs.Add(1)
		return "once", nil
	})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	first := waitTerminal(t, q, id)
	for i := 0; i < 5; i++ {
		st, err := q.Poll(context.Background(), id)
		if err != nil {
			t.Fatalf("Poll: %v", err)
		}
		if st.State != first.State || st.Result != first.Result {
			t.Fatalf("poll %d diverged: %+v vs %+v", i, st, first)
		}
	}
	if got := runs.Load(); got != 1 {
		t.Errorf("handler ran %d times, want 1", got)
	}
}

func TestFailedTaskRecordsError(t *testing.T) {
	q := setupQueue(t)

	id, err := q.Enqueue(context.Background(), "sess-1", func(context.Context) (string, error) {
		return "", errors.New("collaborator down")
	})
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	st := waitTerminal(t, q, id)
	if st.State != StateFailed {
		t.Fatalf("expected failed, got %s", st.State)
	}
	if st.Err != "collaborator down" {
		t.Errorf("unexpected error text %q", st.Err)
	}
}

func TestEnqueueAfterStopIsRejected(t *testing.T) {
	q := setupQueue(t)
	q.Stop()

	_, err := q.Enqueue(context.Background(), "sess-1", func(context.Context) (string, error) {
		return "too late", nil
	})
	if !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
}

func TestStartFailsStaleTasks(t *testing.T) {
	d := openTestDB(t)

	// Rows another process left behind: their handlers no longer exist.
	for id, state := range map[string]State{"stale-pending": StatePending, "stale-running": StateRunning} {
		_, err := d.ExecContext(context.Background(),
			"INSERT INTO tasks (id, session_id, state) VALUES (?, ?, ?)",
			id, "sess-1", string(state))
		if err != nil {
			t.Fatalf("seeding %s: %v", id, err)
		}
	}

	q := NewQueue(d, 1)
	q.Start(context.Background())
	t.Cleanup(q.Stop)

	for _, id := range []string{"stale-pending", "stale-running"} {
		st, err := q.Poll(context.Background(), id)
		if err != nil {
			t.Fatalf("Poll %s: %v", id, err)
		}
		if st.State != StateFailed {
			t.Errorf("%s: expected failed, got %s", id, st.State)
		}
		if st.Err != "interrupted before completion" {
			t.Errorf("%s: unexpected error text %q", id, st.Err)
		}
	}
}

func TestPollUnknownHandle(t *testing.T) {
	q := setupQueue(t)

	if _, err := q.Poll(context.Background(), "no-such-task"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
