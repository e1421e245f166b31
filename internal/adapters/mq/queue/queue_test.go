package queue

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, Job{Season: 2025, Week: 1}) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	j := <-q.Dequeue(ctx)
	if j.Week != 1 || j.Season != 2025 {
		t.Errorf("unexpected job %+v", j)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, Job{Week: 1}) || !q.Enqueue(ctx, Job{Week: 2}) {
		t.Fatal("expected first two enqueues to succeed")
	}
	if q.Enqueue(ctx, Job{Week: 3}) {
		t.Error("expected enqueue beyond capacity to fail")
	}
}

func TestInMemoryQueue_CloseDrains(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()

	for w := 1; w <= 3; w++ {
		q.Enqueue(ctx, Job{Week: w})
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}
	if q.Enqueue(ctx, Job{Week: 4}) {
		t.Error("expected enqueue after close to fail")
	}

	var weeks []int
	timeout := time.After(time.Second)
	ch := q.Dequeue(ctx)
	for {
		select {
		case j, ok := <-ch:
			if !ok {
				if len(weeks) != 3 {
					t.Errorf("expected 3 drained jobs, got %v", weeks)
				}
				return
			}
			weeks = append(weeks, j.Week)
		case <-timeout:
			t.Fatal("timed out draining queue")
		}
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1), WithBufferSize(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	// A ready buffer slot may still win the select; only assert no panic and bounded length.
	q.Enqueue(ctx, Job{Week: 1})
	if q.Len(context.Background()) > 1 {
		t.Error("queue exceeded capacity")
	}
}
