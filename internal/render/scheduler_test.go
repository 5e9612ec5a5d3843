package render

import "testing"

func TestFrameQueueRunsInRequestOrder(t *testing.T) {
	q := NewFrameQueue()
	var order []int
	a := q.RequestFrame(func() { order = append(order, 1) })
	b := q.RequestFrame(func() { order = append(order, 2) })

	ids := q.Requested()
	if len(ids) != 2 || ids[0] != a || ids[1] != b {
		t.Fatalf("expected requested ids [%d %d], got %v", a, b, ids)
	}
	for _, id := range ids {
		q.Run(id)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("expected frames to run in order, got %v", order)
	}
	if q.Pending() != 0 {
		t.Fatalf("expected no pending frames, got %d", q.Pending())
	}
}

func TestFrameQueueCancelledFrameNeverRuns(t *testing.T) {
	q := NewFrameQueue()
	ran := false
	id := q.RequestFrame(func() { ran = true })
	ids := q.Requested()

	q.CancelFrame(id)
	if q.Run(ids[0]) {
		t.Fatal("expected cancelled frame not to run")
	}
	if ran {
		t.Fatal("expected callback not to be invoked")
	}
}

func TestFrameQueueRequestedSkipsCancelled(t *testing.T) {
	q := NewFrameQueue()
	id := q.RequestFrame(func() {})
	q.CancelFrame(id)
	if ids := q.Requested(); len(ids) != 0 {
		t.Fatalf("expected no requested ids, got %v", ids)
	}
}

func TestFrameQueueRunsOnce(t *testing.T) {
	q := NewFrameQueue()
	calls := 0
	id := q.RequestFrame(func() { calls++ })
	q.Run(id)
	q.Run(id)
	if calls != 1 {
		t.Fatalf("expected one call, got %d", calls)
	}
}

func TestFrameQueueIDsAreNeverNoFrame(t *testing.T) {
	q := NewFrameQueue()
	for range 3 {
		if id := q.RequestFrame(func() {}); id == NoFrame {
			t.Fatal("expected a real frame id")
		}
	}
}
