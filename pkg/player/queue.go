package player

// Queue is the ordered list of upcoming tracks for one guild. The
// currently playing track is never a queue member; the session holds it
// separately, so structural operations only ever touch pending tracks.
//
// Queue is not safe for concurrent use. All access goes through the
// owning session, which serializes it behind the session lock.
type Queue struct {
	items []Track
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{items: make([]Track, 0)}
}

// Append adds a track to the tail and returns the new length.
func (q *Queue) Append(t Track) int {
	q.items = append(q.items, t)
	return len(q.items)
}

// RemoveAt removes and returns the track at index. Indices are 0-based.
func (q *Queue) RemoveAt(index int) (Track, error) {
	if index < 0 || index >= len(q.items) {
		return Track{}, ErrIndexOutOfRange
	}
	removed := q.items[index]
	q.items = append(q.items[:index], q.items[index+1:]...)
	return removed, nil
}

// Swap exchanges the tracks at positions i and j. Swapping an index with
// itself succeeds and changes nothing.
func (q *Queue) Swap(i, j int) error {
	if i < 0 || i >= len(q.items) || j < 0 || j >= len(q.items) {
		return ErrIndexOutOfRange
	}
	q.items[i], q.items[j] = q.items[j], q.items[i]
	return nil
}

// Move relocates the track at from to position to, shifting the tracks
// in between.
func (q *Queue) Move(from, to int) error {
	if from < 0 || from >= len(q.items) || to < 0 || to >= len(q.items) {
		return ErrIndexOutOfRange
	}
	if from == to {
		return nil
	}
	t := q.items[from]
	q.items = append(q.items[:from], q.items[from+1:]...)
	q.items = append(q.items[:to], append([]Track{t}, q.items[to:]...)...)
	return nil
}

// PopFront removes and returns the head of the queue. The second return
// is false when the queue is empty; an empty queue is not an error.
func (q *Queue) PopFront() (Track, bool) {
	if len(q.items) == 0 {
		return Track{}, false
	}
	head := q.items[0]
	q.items = q.items[1:]
	return head, true
}

// PeekFront returns the head without removing it.
func (q *Queue) PeekFront() (Track, bool) {
	if len(q.items) == 0 {
		return Track{}, false
	}
	return q.items[0], true
}

// Len returns the number of pending tracks.
func (q *Queue) Len() int {
	return len(q.items)
}

// Clear drops all pending tracks.
func (q *Queue) Clear() {
	q.items = q.items[:0]
}

// Snapshot returns a copy of the pending tracks in order.
func (q *Queue) Snapshot() []Track {
	out := make([]Track, len(q.items))
	copy(out, q.items)
	return out
}
