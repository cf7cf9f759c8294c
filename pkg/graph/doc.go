// Package graph implements a small reactive dependency graph.
//
// A graph is made of [Source] leaves, written inside a [Scheduler.Update]
// transaction, and derived [Node] values that declare their upstreams and a
// pure compute function. When a transaction commits, every node downstream of a
// changed source is recomputed exactly once, after all of its upstreams, in
// rank order. A node whose new value is equal to its previous value (per its
// equality option) does not propagate further.
//
// Basic usage:
//
//	sched := graph.New()
//	count := graph.NewSource(sched, "count", 1, graph.Comparable[int]())
//	doubled := graph.Derive1(sched, "doubled", count, func(c int) (int, error) {
//	    return c * 2, nil
//	}, graph.Comparable[int]())
//
//	unsubscribe := doubled.Subscribe(func(v int) { fmt.Println(v) }) // prints 2
//	defer unsubscribe()
//
//	sched.Update(func(tx *graph.Tx) { count.Set(tx, 5) }) // prints 10
//
// # Values
//
// A compute function returns (T, error). Returning [ErrSkip] means "no value
// right now": the node keeps its previous value (if any) and downstream nodes
// are not notified. Any other error is recorded on the node (see [Node.Err]),
// reported to the scheduler's error handler, and treated like a skip.
//
// # Switching
//
// [Switch] builds a node whose upstream is chosen from the value of an outer
// node. Whenever the outer value changes, the node detaches from its previous
// upstream, so late changes of the old upstream never reach it.
//
// # Listeners
//
// Subscribers are invoked after the scheduler lock is released, in
// transaction order and, within a transaction, in rank order. A subscriber may
// start a new transaction; its notifications are delivered after the current
// subscriber returns. Subscribing to a node that already has a value delivers
// that value, and only that value, in line with pending notifications: if
// another goroutine is delivering, the replay comes from that goroutine
// before any newer value.
//
// Compute and route functions run with the scheduler lock held and must not
// call [Scheduler.Update], [Node.Value], Subscribe, or any constructor.
package graph
