package render

// FrameID identifies one requested frame callback.
type FrameID int64

// NoFrame is the "nothing scheduled" sentinel.
const NoFrame FrameID = -1

// Scheduler runs callbacks once per display frame.
type Scheduler interface {
	RequestFrame(cb func()) FrameID
	CancelFrame(id FrameID)
}

// FrameQueue is a Scheduler for a single-threaded event loop. The loop
// drains newly requested IDs, waits for the next frame boundary, and calls
// Run for each. Cancelled frames never run, and frames run in request order
// as long as the loop delivers them in that order.
type FrameQueue struct {
	next      FrameID
	pending   map[FrameID]func()
	requested []FrameID
}

func NewFrameQueue() *FrameQueue {
	return &FrameQueue{pending: make(map[FrameID]func())}
}

func (q *FrameQueue) RequestFrame(cb func()) FrameID {
	id := q.next
	q.next++
	q.pending[id] = cb
	q.requested = append(q.requested, id)
	return id
}

func (q *FrameQueue) CancelFrame(id FrameID) {
	delete(q.pending, id)
}

// Requested returns the IDs requested since the last call. Cancelled IDs are
// left out.
func (q *FrameQueue) Requested() []FrameID {
	if len(q.requested) == 0 {
		return nil
	}
	out := make([]FrameID, 0, len(q.requested))
	for _, id := range q.requested {
		if _, ok := q.pending[id]; ok {
			out = append(out, id)
		}
	}
	q.requested = q.requested[:0]
	return out
}

// Run executes frame id if it is still pending and reports whether it ran.
func (q *FrameQueue) Run(id FrameID) bool {
	cb, ok := q.pending[id]
	if !ok {
		return false
	}
	delete(q.pending, id)
	cb()
	return true
}

// Pending is the number of frames requested but neither run nor cancelled.
func (q *FrameQueue) Pending() int { return len(q.pending) }
