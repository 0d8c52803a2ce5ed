package core

import "sync"

type queueEntry struct {
	priority int
	seq      uint64
	event    Event
}

// less orders by priority first, then by arrival within the same priority
func (e queueEntry) less(other queueEntry) bool {
	if e.priority != other.priority {
		return e.priority < other.priority
	}
	return e.seq < other.seq
}

// EventQueue is a thread-safe min-heap of market events.
// Lower priority values are dequeued first; events sharing a priority
// keep their arrival order.
type EventQueue struct {
	sync.Mutex
	length int
	seq    uint64
	data   []queueEntry
	wakes  []chan struct{}
}

// NewEventQueue creates an empty event queue
func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// Push adds an event to the queue and wakes any waiting consumers
func (q *EventQueue) Push(event Event) {
	q.Lock()

	q.seq++
	q.data = append(q.data, queueEntry{
		priority: event.Type.Priority(),
		seq:      q.seq,
		event:    event,
	})
	q.length++
	q.up(q.length - 1)

	wakes := q.wakes
	q.Unlock()

	for _, wake := range wakes {
		select {
		case wake <- struct{}{}:
		default:
		}
	}
}

// PopLock returns a channel signaled whenever an event becomes
// available. Consumers drain with Pop at receive time, so a burst that
// arrives while the consumer is busy still dequeues in priority order.
func (q *EventQueue) PopLock() <-chan struct{} {
	wake := make(chan struct{}, 1)
	q.Lock()
	q.wakes = append(q.wakes, wake)
	q.Unlock()
	return wake
}

// Pop removes and returns the highest priority event
func (q *EventQueue) Pop() (Event, bool) {
	q.Lock()
	defer q.Unlock()

	if q.length == 0 {
		return Event{}, false
	}

	top := q.data[0]
	q.length--

	if q.length > 0 {
		// Move the last entry to the top and restore the heap property
		q.data[0] = q.data[q.length]
		q.down(0)
	}

	q.data = q.data[:q.length]

	return top.event, true
}

// Peek returns the highest priority event without removing it
func (q *EventQueue) Peek() (Event, bool) {
	q.Lock()
	defer q.Unlock()

	if q.length == 0 {
		return Event{}, false
	}
	return q.data[0].event, true
}

// Len returns the number of queued events
func (q *EventQueue) Len() int {
	q.Lock()
	defer q.Unlock()

	return q.length
}

func (q *EventQueue) down(pos int) {
	data := q.data
	halfLength := q.length >> 1
	entry := data[pos]

	for pos < halfLength {
		left := (pos << 1) + 1
		right := left + 1

		best := data[left]
		bestPos := left

		if right < q.length && data[right].less(best) {
			bestPos = right
			best = data[right]
		}

		if !best.less(entry) {
			break
		}

		data[pos] = best
		pos = bestPos
	}

	data[pos] = entry
}

func (q *EventQueue) up(pos int) {
	data := q.data
	entry := data[pos]

	for pos > 0 {
		parent := (pos - 1) >> 1
		current := data[parent]

		if !entry.less(current) {
			break
		}

		data[pos] = current
		pos = parent
	}

	data[pos] = entry
}
