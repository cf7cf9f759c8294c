package graph

import (
	"errors"
	"slices"
)

// Readable is a graph value that can be read and observed.
//
// Only types from this package implement Readable.
type Readable[T any] interface {
	// Name identifies the value in error reports.
	Name() string
	// Value returns the latest value, or false if none was produced yet.
	Value() (T, bool)
	// Subscribe registers fn for future values and delivers the current one,
	// if any. The returned function removes the subscription.
	Subscribe(fn func(T)) (unsubscribe func())

	peek() (T, bool)
	base() *nodeBase
	scheduler() *Scheduler
}

// Option configures a [Source] or [Node].
type Option[T any] func(*options[T])

type options[T any] struct {
	equal func(a, b T) bool
}

// WithEqual suppresses propagation when eq(previous, next) is true.
// Without it every recompute is treated as a change.
func WithEqual[T any](eq func(a, b T) bool) Option[T] {
	return func(o *options[T]) {
		o.equal = eq
	}
}

// Comparable suppresses propagation of values equal under ==.
func Comparable[T comparable]() Option[T] {
	return WithEqual(func(a, b T) bool { return a == b })
}

// SliceEqual suppresses propagation of slices with equal elements in equal
// order.
func SliceEqual[E comparable]() Option[[]E] {
	return WithEqual(func(a, b []E) bool { return slices.Equal(a, b) })
}

func buildOptions[T any](opts []Option[T]) options[T] {
	var o options[T]

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// cell holds a value plus its subscribers. Guarded by the scheduler lock.
type cell[T any] struct {
	sched *Scheduler
	node  nodeBase
	value T
	has   bool
	equal func(a, b T) bool
	subs  []*subscription[T]
}

type subscription[T any] struct {
	fn     func(T)
	active bool
}

func (c *cell[T]) init(sched *Scheduler, name string, o options[T]) {
	c.sched = sched
	c.equal = o.equal
	c.node.name = name
	c.node.index = -1
	c.node.snapshot = c.snapshot
}

// accept stores v and reports whether it is a change.
func (c *cell[T]) accept(v T) bool {
	if c.has && c.equal != nil && c.equal(c.value, v) {
		return false
	}

	c.value = v
	c.has = true

	return true
}

func (c *cell[T]) snapshot() func() {
	if len(c.subs) == 0 {
		return nil
	}

	v := c.value
	subs := slices.Clone(c.subs)

	return func() {
		for _, sub := range subs {
			if sub.active {
				sub.fn(v)
			}
		}
	}
}

// Name returns the name given at construction.
func (c *cell[T]) Name() string {
	return c.node.name
}

// Value returns the latest value. It must not be called from compute functions.
func (c *cell[T]) Value() (T, bool) {
	c.sched.mu.Lock()
	defer c.sched.mu.Unlock()

	return c.value, c.has
}

// Subscribe registers fn and replays the latest value, if any. The replay is
// queued like any other notification, so it is never delivered after a newer
// value.
func (c *cell[T]) Subscribe(fn func(T)) func() {
	if fn == nil {
		panic("graph: nil subscriber")
	}

	sub := &subscription[T]{fn: fn, active: true}

	c.sched.mu.Lock()
	c.subs = append(c.subs, sub)

	if c.has {
		v := c.value
		c.sched.outbox = append(c.sched.outbox, func() {
			if sub.active {
				sub.fn(v)
			}
		})
	}
	c.sched.mu.Unlock()

	c.sched.drain()

	return func() {
		c.sched.mu.Lock()
		defer c.sched.mu.Unlock()

		if !sub.active {
			return
		}

		sub.active = false
		c.subs = slices.DeleteFunc(c.subs, func(s *subscription[T]) bool { return s == sub })
	}
}

func (c *cell[T]) peek() (T, bool) {
	return c.value, c.has
}

func (c *cell[T]) base() *nodeBase {
	return &c.node
}

func (c *cell[T]) scheduler() *Scheduler {
	return c.sched
}

// Source is a writable leaf of the graph. It always has a value.
type Source[T any] struct {
	cell[T]
}

// NewSource creates a source holding initial.
func NewSource[T any](sched *Scheduler, name string, initial T, opts ...Option[T]) *Source[T] {
	src := &Source[T]{}
	src.init(sched, name, buildOptions(opts))
	src.node.recompute = func() bool { return false }
	src.value = initial
	src.has = true

	sched.mu.Lock()
	src.node.seq = sched.nextSeq()
	sched.mu.Unlock()

	return src
}

// Set writes v. Downstream nodes recompute when the transaction commits.
func (src *Source[T]) Set(tx *Tx, v T) {
	if tx == nil || tx.sched == nil {
		panic("graph: Set outside of a transaction")
	}

	if tx.sched != src.sched {
		panic("graph: Set with a transaction of another scheduler")
	}

	if src.accept(v) {
		src.sched.changedLocked(&src.node)
	}
}

// Node is a derived value.
type Node[T any] struct {
	cell[T]

	compute func() (T, error)
	err     error
}

// Err returns the error of the most recent compute, or nil.
func (n *Node[T]) Err() error {
	n.sched.mu.Lock()
	defer n.sched.mu.Unlock()

	return n.err
}

func newNode[T any](sched *Scheduler, name string, opts []Option[T]) *Node[T] {
	n := &Node[T]{}
	n.init(sched, name, buildOptions(opts))
	n.node.recompute = n.recompute

	return n
}

func (n *Node[T]) recompute() bool {
	v, err := n.compute()
	if err != nil {
		n.err = nil

		if !errors.Is(err, ErrSkip) {
			n.err = err
			n.sched.reportLocked(&n.node, err)
		}

		return false
	}

	n.err = nil

	return n.accept(v)
}

// link attaches n below parents and computes its first value.
func (n *Node[T]) link(parents ...*nodeBase) {
	sched := n.sched

	sched.mu.Lock()

	n.node.seq = sched.nextSeq()

	for _, p := range parents {
		err := sched.attachLocked(&n.node, p)
		if err != nil {
			sched.mu.Unlock()
			panic(err)
		}
	}

	if n.recompute() {
		n.node.version++
	}

	sched.mu.Unlock()

	sched.drain()
}

func checkScheduler(sched *Scheduler, deps ...interface{ scheduler() *Scheduler }) {
	for _, d := range deps {
		if d.scheduler() != sched {
			panic("graph: dependency belongs to another scheduler")
		}
	}
}

// Derive1 creates a node computed from one upstream. fn is only called once
// the upstream has a value.
func Derive1[A, T any](sched *Scheduler, name string, a Readable[A], fn func(A) (T, error), opts ...Option[T]) *Node[T] {
	checkScheduler(sched, a)

	n := newNode(sched, name, opts)
	n.compute = func() (T, error) {
		av, ok := a.peek()
		if !ok {
			var zero T

			return zero, ErrSkip
		}

		return fn(av)
	}
	n.link(a.base())

	return n
}

// Derive2 creates a node joining two upstreams. When both change in the same
// transaction, fn runs once with both new values.
func Derive2[A, B, T any](
	sched *Scheduler, name string, a Readable[A], b Readable[B], fn func(A, B) (T, error), opts ...Option[T],
) *Node[T] {
	checkScheduler(sched, a, b)

	n := newNode(sched, name, opts)
	n.compute = func() (T, error) {
		av, aok := a.peek()
		bv, bok := b.peek()

		if !aok || !bok {
			var zero T

			return zero, ErrSkip
		}

		return fn(av, bv)
	}
	n.link(a.base(), b.base())

	return n
}

// Derive3 creates a node joining three upstreams.
func Derive3[A, B, C, T any](
	sched *Scheduler, name string, a Readable[A], b Readable[B], c Readable[C],
	fn func(A, B, C) (T, error), opts ...Option[T],
) *Node[T] {
	checkScheduler(sched, a, b, c)

	n := newNode(sched, name, opts)
	n.compute = func() (T, error) {
		av, aok := a.peek()
		bv, bok := b.peek()
		cv, cok := c.peek()

		if !aok || !bok || !cok {
			var zero T

			return zero, ErrSkip
		}

		return fn(av, bv, cv)
	}
	n.link(a.base(), b.base(), c.base())

	return n
}
