package animation

import (
	"container/heap"
	"time"
)

// #region heap

type queued struct {
	cmd    Command
	seq    uint64
	waited time.Duration
}

// commandHeap is a max-heap on priority, then FIFO on arrival.
type commandHeap []*queued

func (h commandHeap) Len() int { return len(h) }

func (h commandHeap) Less(i, j int) bool {
	if h[i].cmd.Priority != h[j].cmd.Priority {
		return h[i].cmd.Priority > h[j].cmd.Priority
	}
	return h[i].seq < h[j].seq
}

func (h commandHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *commandHeap) Push(x any) { *h = append(*h, x.(*queued)) }

func (h *commandHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}

// #endregion heap

// #region queue

// Queue is a bounded priority queue of animation commands.
type Queue struct {
	h        commandHeap
	seq      uint64
	capacity int
}

// NewQueue creates a queue holding at most capacity commands (minimum 1).
func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{capacity: capacity}
}

// Len returns the number of queued commands.
func (q *Queue) Len() int { return q.h.Len() }

// Push inserts cmd. If capacity is exceeded the lowest-priority, oldest entry
// is evicted and returned.
func (q *Queue) Push(cmd Command) (Command, bool) {
	q.seq++
	heap.Push(&q.h, &queued{cmd: cmd, seq: q.seq})
	if q.h.Len() <= q.capacity {
		return Command{}, false
	}
	victim := 0
	for i := 1; i < len(q.h); i++ {
		a, b := q.h[i], q.h[victim]
		if a.cmd.Priority < b.cmd.Priority || (a.cmd.Priority == b.cmd.Priority && a.seq < b.seq) {
			victim = i
		}
	}
	return heap.Remove(&q.h, victim).(*queued).cmd, true
}

// Peek returns the highest-priority command without removing it.
func (q *Queue) Peek() (Command, bool) {
	if q.h.Len() == 0 {
		return Command{}, false
	}
	return q.h[0].cmd, true
}

// Pop removes and returns the highest-priority command.
func (q *Queue) Pop() (Command, bool) {
	if q.h.Len() == 0 {
		return Command{}, false
	}
	return heap.Pop(&q.h).(*queued).cmd, true
}

// age adds d to every entry's wait time and drops entries that waited longer
// than maxWait. Urgent entries never expire. Returns the dropped commands.
func (q *Queue) age(d, maxWait time.Duration) []Command {
	if maxWait <= 0 {
		return nil
	}
	var dropped []Command
	kept := q.h[:0]
	for _, it := range q.h {
		it.waited += d
		if it.cmd.Priority != PriorityUrgent && it.waited > maxWait {
			dropped = append(dropped, it.cmd)
			continue
		}
		kept = append(kept, it)
	}
	if len(dropped) == 0 {
		return nil
	}
	clear(q.h[len(kept):])
	q.h = kept
	heap.Init(&q.h)
	return dropped
}

// #endregion queue
