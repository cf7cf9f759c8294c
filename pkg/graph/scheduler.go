package graph

import (
	"container/heap"
	"errors"
	"fmt"
	"sync"
)

// ErrSkip is returned by compute functions that have no value to offer yet.
// It is never reported to the error handler.
var ErrSkip = errors.New("graph: no value")

// ErrCycle is reported when a switch route would make a node its own upstream.
var ErrCycle = errors.New("graph: dependency cycle")

// ErrorHandler receives compute errors. node is the name of the failing node.
type ErrorHandler func(node string, err error)

// SchedulerOption configures a [Scheduler].
type SchedulerOption func(*Scheduler)

// WithErrorHandler sets the handler for compute errors. Handlers run outside
// the scheduler lock, in the same order as subscriber notifications.
func WithErrorHandler(fn ErrorHandler) SchedulerOption {
	return func(s *Scheduler) {
		s.onError = fn
	}
}

// Scheduler owns a graph. All writes go through [Scheduler.Update].
//
// Scheduler is safe for concurrent use; transactions are serialized.
type Scheduler struct {
	mu       sync.Mutex
	seq      uint64
	queue    nodeQueue
	outbox   []func()
	draining bool
	onError  ErrorHandler
}

// New creates an empty scheduler.
func New(opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Tx is a handle to an open transaction. It is only valid inside the function
// passed to [Scheduler.Update].
type Tx struct {
	sched *Scheduler
}

// Update runs fn as one transaction. Sources written by fn are propagated once
// fn returns; nodes depending on several changed sources recompute once.
//
// Subscribers are notified before Update returns, unless Update is called from
// a subscriber, in which case delivery happens after that subscriber returns.
func (s *Scheduler) Update(fn func(tx *Tx)) {
	s.mu.Lock()

	tx := &Tx{sched: s}
	fn(tx)
	tx.sched = nil

	s.flushLocked()
	s.mu.Unlock()

	s.drain()
}

// flushLocked recomputes queued nodes in rank order.
func (s *Scheduler) flushLocked() {
	for s.queue.Len() > 0 {
		n, _ := heap.Pop(&s.queue).(*nodeBase)
		n.queued = false

		if n.recompute() {
			s.changedLocked(n)
		}
	}
}

// changedLocked records that n has a new value: subscribers are snapshotted
// into the outbox and children are queued.
func (s *Scheduler) changedLocked(n *nodeBase) {
	n.version++

	if deliver := n.snapshot(); deliver != nil {
		s.outbox = append(s.outbox, deliver)
	}

	for _, child := range n.children {
		s.enqueueLocked(child)
	}
}

func (s *Scheduler) enqueueLocked(n *nodeBase) {
	if n.queued {
		return
	}

	n.queued = true
	heap.Push(&s.queue, n)
}

func (s *Scheduler) reportLocked(n *nodeBase, err error) {
	if s.onError == nil {
		return
	}

	handler := s.onError
	name := n.name

	s.outbox = append(s.outbox, func() { handler(name, err) })
}

// drain delivers queued notifications. Only one goroutine drains at a time;
// notifications queued meanwhile are picked up by the active drainer.
func (s *Scheduler) drain() {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()

		return
	}

	s.draining = true

	for len(s.outbox) > 0 {
		next := s.outbox[0]
		s.outbox[0] = nil
		s.outbox = s.outbox[1:]

		s.mu.Unlock()
		next()
		s.mu.Lock()
	}

	s.outbox = nil
	s.draining = false
	s.mu.Unlock()
}

func (s *Scheduler) nextSeq() uint64 {
	s.seq++

	return s.seq
}

// attachLocked makes child depend on parent and keeps child ranked after it.
func (s *Scheduler) attachLocked(child, parent *nodeBase) error {
	if parent == child || parent.dependsOn(child) {
		return fmt.Errorf("%w: %s -> %s", ErrCycle, parent.name, child.name)
	}

	parent.children = append(parent.children, child)
	child.parents = append(child.parents, parent)
	s.raiseLocked(child, parent.rank+1)

	return nil
}

func (s *Scheduler) detachLocked(child, parent *nodeBase) {
	child.removeParent(parent)

	for i, c := range parent.children {
		if c == child {
			parent.children = append(parent.children[:i], parent.children[i+1:]...)

			return
		}
	}
}

// raiseLocked lifts n and its descendants to at least minRank.
func (s *Scheduler) raiseLocked(n *nodeBase, minRank int) {
	if n.rank >= minRank {
		return
	}

	n.rank = minRank
	if n.queued {
		heap.Fix(&s.queue, n.index)
	}

	for _, child := range n.children {
		s.raiseLocked(child, minRank+1)
	}
}

// nodeBase is the type-erased part shared by sources and nodes.
type nodeBase struct {
	name     string
	rank     int
	seq      uint64
	version  uint64
	children []*nodeBase
	parents  []*nodeBase
	queued   bool
	index    int

	recompute func() bool
	snapshot  func() func()
}

// dependsOn reports whether n is downstream of other.
func (n *nodeBase) dependsOn(other *nodeBase) bool {
	for _, p := range n.parents {
		if p == other || p.dependsOn(other) {
			return true
		}
	}

	return false
}

func (n *nodeBase) removeParent(parent *nodeBase) {
	for i, p := range n.parents {
		if p == parent {
			n.parents = append(n.parents[:i], n.parents[i+1:]...)

			return
		}
	}
}

// nodeQueue orders nodes by rank, then by creation order.
type nodeQueue []*nodeBase

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool {
	if q[i].rank != q[j].rank {
		return q[i].rank < q[j].rank
	}

	return q[i].seq < q[j].seq
}

func (q nodeQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *nodeQueue) Push(x any) {
	n, _ := x.(*nodeBase)
	n.index = len(*q)
	*q = append(*q, n)
}

func (q *nodeQueue) Pop() any {
	old := *q
	last := len(old) - 1
	n := old[last]
	old[last] = nil
	n.index = -1
	*q = old[:last]

	return n
}
