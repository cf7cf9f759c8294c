package graph

// Route names an upstream and how to read a value from it. The zero Route has
// no upstream; a switch node routed to it produces no value.
type Route[T any] struct {
	up    *nodeBase
	sched *Scheduler
	pick  func() (T, error)
}

// Empty returns a route that never produces a value.
func Empty[T any]() Route[T] {
	return Route[T]{}
}

// IsEmpty reports whether r has no upstream.
func (r Route[T]) IsEmpty() bool {
	return r.up == nil
}

// Select routes to up and reads through pick. pick runs under the scheduler
// lock every time up changes while the route is active.
func Select[U, T any](up Readable[U], pick func(U) (T, error)) Route[T] {
	return Route[T]{
		up:    up.base(),
		sched: up.scheduler(),
		pick: func() (T, error) {
			v, ok := up.peek()
			if !ok {
				var zero T

				return zero, ErrSkip
			}

			return pick(v)
		},
	}
}

// MapRoute transforms the values read through r.
func MapRoute[A, B any](r Route[A], fn func(A) (B, error)) Route[B] {
	if r.IsEmpty() {
		return Route[B]{}
	}

	return Route[B]{
		up:    r.up,
		sched: r.sched,
		pick: func() (B, error) {
			v, err := r.pick()
			if err != nil {
				var zero B

				return zero, err
			}

			return fn(v)
		},
	}
}

// Switch creates a node that follows the upstream chosen by route for the
// current value of outer.
//
// Each time outer changes, route is called and the node detaches from the
// previous upstream before attaching to the new one, so the previous upstream
// can no longer update it. A route error is recorded on the node like a
// compute error and leaves it without an upstream until outer changes again.
func Switch[A, T any](
	sched *Scheduler, name string, outer Readable[A], route func(A) (Route[T], error), opts ...Option[T],
) *Node[T] {
	checkScheduler(sched, outer)

	n := newNode(sched, name, opts)
	outerBase := outer.base()

	var (
		current     Route[T]
		seenVersion uint64
		routed      bool
	)

	n.compute = func() (T, error) {
		var zero T

		if !routed || outerBase.version != seenVersion {
			ov, ok := outer.peek()
			if !ok {
				return zero, ErrSkip
			}

			routed = true
			seenVersion = outerBase.version

			if current.up != nil {
				sched.detachLocked(&n.node, current.up)
				current = Route[T]{}
			}

			next, err := route(ov)
			if err != nil {
				return zero, err
			}

			if next.up != nil {
				if next.sched != sched {
					panic("graph: route upstream belongs to another scheduler")
				}

				err = sched.attachLocked(&n.node, next.up)
				if err != nil {
					return zero, err
				}
			}

			current = next
		}

		if current.up == nil {
			return zero, ErrSkip
		}

		return current.pick()
	}
	n.link(outerBase)

	return n
}
