// Package fifo implements the fixed-capacity message store used by package
// buffer. Capacity is accounted in bytes: every record costs MessageSize of
// its payload. A Queue is not safe for concurrent use; callers serialize
// access themselves.
package fifo

import "fmt"

// recordOverhead is the framing charged per record on top of the payload.
const recordOverhead = 1

// initialSlots is the ring size a fresh queue starts with.
const initialSlots = 16

// MessageSize reports how many bytes of capacity msg occupies once stored.
func MessageSize(msg string) int { return len(msg) + recordOverhead }

type Queue struct {
	slots []string
	head  int
	count int
	cap   int
	avail int
}

// New returns an empty queue holding up to capacity bytes. A non-positive
// capacity yields a queue that admits nothing.
func New(capacity int) *Queue {
	if capacity < 0 {
		capacity = 0
	}
	return &Queue{slots: make([]string, min(capacity, initialSlots)), cap: capacity, avail: capacity}
}

// grow doubles the ring, never past cap slots. Each record costs at least
// recordOverhead, so cap bounds the number of records that can be stored.
func (q *Queue) grow() {
	n := min(max(2*len(q.slots), 1), q.cap)
	slots := make([]string, n)
	for i := 0; i < q.count; i++ {
		slots[i] = q.slots[(q.head+i)%len(q.slots)]
	}
	q.slots = slots
	q.head = 0
}

func (q *Queue) Cap() int { return q.cap }

// Avail returns the number of free bytes.
func (q *Queue) Avail() int { return q.avail }

// Used returns the number of occupied bytes.
func (q *Queue) Used() int { return q.cap - q.avail }

// Len returns the number of stored records.
func (q *Queue) Len() int { return q.count }

// Empty reports whether no bytes are in use.
func (q *Queue) Empty() bool { return q.avail >= q.cap }

// Fits reports whether msg can be pushed without exceeding capacity.
func (q *Queue) Fits(msg string) bool { return MessageSize(msg) <= q.avail }

// Push appends msg. It panics if msg does not fit; callers check first.
func (q *Queue) Push(msg string) {
	size := MessageSize(msg)
	if size > q.avail {
		panic(fmt.Sprintf("fifo: push of %d bytes exceeds available %d", size, q.avail))
	}
	if q.count == len(q.slots) {
		q.grow()
	}
	q.slots[(q.head+q.count)%len(q.slots)] = msg
	q.count++
	q.avail -= size
}

// Pop removes and returns the oldest record.
func (q *Queue) Pop() (string, bool) {
	if q.count == 0 {
		return "", false
	}
	msg := q.slots[q.head]
	q.slots[q.head] = ""
	q.head = (q.head + 1) % len(q.slots)
	q.count--
	q.avail += MessageSize(msg)
	return msg, true
}

// Free drops all records and the backing storage. The queue admits nothing afterwards.
func (q *Queue) Free() {
	q.slots = nil
	q.head, q.count = 0, 0
	q.cap, q.avail = 0, 0
}
