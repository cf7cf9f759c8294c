package graph_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/focus/pkg/graph"
)

func collect[T any](t *testing.T, r graph.Readable[T]) *[]T {
	t.Helper()

	var got []T

	unsubscribe := r.Subscribe(func(v T) { got = append(got, v) })
	t.Cleanup(unsubscribe)

	return &got
}

func Test_Derive1_Recomputes_When_Source_Changes(t *testing.T) {
	t.Parallel()

	sched := graph.New()
	count := graph.NewSource(sched, "count", 1, graph.Comparable[int]())
	doubled := graph.Derive1(sched, "doubled", count, func(c int) (int, error) {
		return c * 2, nil
	})

	got := collect(t, doubled)

	sched.Update(func(tx *graph.Tx) { count.Set(tx, 5) })

	if diff := cmp.Diff([]int{2, 10}, *got); diff != "" {
		t.Fatalf("doubled emissions (-want +got):\n%s", diff)
	}
}

// Contract: equal values stop propagation at the node that produced them.
func Test_Node_Suppresses_Emission_When_Value_Is_Equal(t *testing.T) {
	t.Parallel()

	sched := graph.New()
	words := graph.NewSource(sched, "words", []string{"a", "b"})
	first := graph.Derive1(sched, "first", words, func(w []string) ([]string, error) {
		return w[:1], nil
	}, graph.SliceEqual[string]())

	runs := 0
	downstream := graph.Derive1(sched, "downstream", first, func(w []string) (int, error) {
		runs++

		return len(w), nil
	})

	got := collect(t, first)

	// Rebuilt slice with the same contents.
	sched.Update(func(tx *graph.Tx) { words.Set(tx, []string{"a", "c"}) })

	assert.Len(t, *got, 1)
	assert.Equal(t, 1, runs)

	v, ok := downstream.Value()
	require.True(t, ok)
	assert.Equal(t, 1, v)
}

// Contract: a join recomputes once per transaction even when both inputs changed.
func Test_Derive2_Recomputes_Once_When_Both_Sources_Change_In_One_Transaction(t *testing.T) {
	t.Parallel()

	sched := graph.New()
	a := graph.NewSource(sched, "a", 1)
	b := graph.NewSource(sched, "b", 10)

	var seen [][2]int

	sum := graph.Derive2(sched, "sum", a, b, func(x, y int) (int, error) {
		seen = append(seen, [2]int{x, y})

		return x + y, nil
	})

	sched.Update(func(tx *graph.Tx) {
		a.Set(tx, 2)
		b.Set(tx, 20)
	})

	if diff := cmp.Diff([][2]int{{1, 10}, {2, 20}}, seen); diff != "" {
		t.Fatalf("join inputs (-want +got):\n%s", diff)
	}

	v, _ := sum.Value()
	assert.Equal(t, 22, v)
}

// Contract: a diamond never observes a mixture of old and new upstream values.
func Test_Diamond_Sees_Consistent_Values_When_Root_Changes(t *testing.T) {
	t.Parallel()

	sched := graph.New()
	root := graph.NewSource(sched, "root", 1)
	left := graph.Derive1(sched, "left", root, func(v int) (int, error) { return v * 10, nil })
	right := graph.Derive1(sched, "right", root, func(v int) (int, error) { return v * 100, nil })

	var pairs []string

	graph.Derive2(sched, "join", left, right, func(l, r int) (string, error) {
		pairs = append(pairs, fmt.Sprintf("%d/%d", l, r))

		return "", nil
	})

	sched.Update(func(tx *graph.Tx) { root.Set(tx, 2) })

	assert.Equal(t, []string{"10/100", "20/200"}, pairs)
}

func Test_Node_Keeps_Previous_Value_When_Compute_Skips(t *testing.T) {
	t.Parallel()

	sched := graph.New()
	src := graph.NewSource(sched, "src", 1)
	odd := graph.Derive1(sched, "odd", src, func(v int) (int, error) {
		if v%2 == 0 {
			return 0, graph.ErrSkip
		}

		return v, nil
	})

	got := collect(t, odd)

	sched.Update(func(tx *graph.Tx) { src.Set(tx, 2) })
	sched.Update(func(tx *graph.Tx) { src.Set(tx, 3) })

	assert.Equal(t, []int{1, 3}, *got)
	require.NoError(t, odd.Err())
}

func Test_Node_Reports_Error_When_Compute_Fails(t *testing.T) {
	t.Parallel()

	errBoom := errors.New("boom")

	var reported []string

	sched := graph.New(graph.WithErrorHandler(func(node string, err error) {
		reported = append(reported, node+": "+err.Error())
	}))

	src := graph.NewSource(sched, "src", 1)
	failing := graph.Derive1(sched, "failing", src, func(v int) (int, error) {
		if v > 1 {
			return 0, errBoom
		}

		return v, nil
	})

	sched.Update(func(tx *graph.Tx) { src.Set(tx, 2) })

	require.ErrorIs(t, failing.Err(), errBoom)
	assert.Equal(t, []string{"failing: boom"}, reported)

	v, ok := failing.Value()
	require.True(t, ok)
	assert.Equal(t, 1, v, "value before the failure is kept")

	sched.Update(func(tx *graph.Tx) { src.Set(tx, 1) })
	require.NoError(t, failing.Err())
}

// Contract: late subscribers get the latest value only, without a recompute.
func Test_Subscribe_Replays_Latest_Value_When_Joining_Late(t *testing.T) {
	t.Parallel()

	sched := graph.New()
	src := graph.NewSource(sched, "src", 1)

	runs := 0
	derived := graph.Derive1(sched, "derived", src, func(v int) (int, error) {
		runs++

		return v, nil
	})

	sched.Update(func(tx *graph.Tx) { src.Set(tx, 2) })
	sched.Update(func(tx *graph.Tx) { src.Set(tx, 3) })

	got := collect(t, derived)

	assert.Equal(t, []int{3}, *got)
	assert.Equal(t, 3, runs)
}

func Test_Unsubscribe_Stops_Delivery(t *testing.T) {
	t.Parallel()

	sched := graph.New()
	src := graph.NewSource(sched, "src", 1)

	var got []int

	unsubscribe := src.Subscribe(func(v int) { got = append(got, v) })
	unsubscribe()
	unsubscribe()

	sched.Update(func(tx *graph.Tx) { src.Set(tx, 2) })

	assert.Equal(t, []int{1}, got)
}

// Contract: a subscriber may open a transaction; its notifications follow the
// current delivery instead of interleaving with it.
func Test_Update_From_Subscriber_Is_Delivered_After_Current_Subscriber(t *testing.T) {
	t.Parallel()

	sched := graph.New()
	trigger := graph.NewSource(sched, "trigger", 0)
	echo := graph.NewSource(sched, "echo", 0)

	var log []string

	trigger.Subscribe(func(v int) {
		log = append(log, fmt.Sprintf("trigger=%d", v))

		if v == 1 {
			sched.Update(func(tx *graph.Tx) { echo.Set(tx, 1) })
			log = append(log, "after nested update")
		}
	})
	echo.Subscribe(func(v int) { log = append(log, fmt.Sprintf("echo=%d", v)) })

	sched.Update(func(tx *graph.Tx) { trigger.Set(tx, 1) })

	want := []string{"trigger=0", "echo=0", "trigger=1", "after nested update", "echo=1"}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Fatalf("delivery order (-want +got):\n%s", diff)
	}
}

// Contract: a late subscriber never sees its replayed value after a newer one,
// even while another goroutine is still delivering.
func Test_Subscribe_Replays_In_Order_When_Another_Goroutine_Is_Delivering(t *testing.T) {
	t.Parallel()

	sched := graph.New()
	src := graph.NewSource(sched, "src", 1)

	entered := make(chan struct{})
	release := make(chan struct{})

	src.Subscribe(func(v int) {
		if v == 2 {
			close(entered)
			<-release
		}
	})

	done := make(chan struct{})

	go func() {
		defer close(done)

		sched.Update(func(tx *graph.Tx) { src.Set(tx, 2) })
	}()

	<-entered

	var (
		mu  sync.Mutex
		got []int
	)

	src.Subscribe(func(v int) {
		mu.Lock()
		defer mu.Unlock()

		got = append(got, v)
	})
	sched.Update(func(tx *graph.Tx) { src.Set(tx, 3) })

	mu.Lock()
	assert.Empty(t, got, "replay waits behind the delivery in progress")
	mu.Unlock()

	close(release)
	<-done

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, []int{2, 3}, got)
}

type entity struct {
	ID    string
	Title string
}

// Contract: after a switch, the previous upstream no longer reaches the node.
func Test_Switch_Ignores_Previous_Upstream_When_Outer_Changes(t *testing.T) {
	t.Parallel()

	sched := graph.New()
	selected := graph.NewSource(sched, "selected", "left", graph.Comparable[string]())
	left := graph.NewSource(sched, "left", entity{ID: "l", Title: "left v1"})
	right := graph.NewSource(sched, "right", entity{ID: "r", Title: "right v1"})

	title := graph.Switch(sched, "title", selected, func(which string) (graph.Route[string], error) {
		src := left
		if which == "right" {
			src = right
		}

		return graph.Select[entity](src, func(e entity) (string, error) { return e.Title, nil }), nil
	})

	got := collect(t, title)

	sched.Update(func(tx *graph.Tx) { selected.Set(tx, "right") })
	sched.Update(func(tx *graph.Tx) { left.Set(tx, entity{ID: "l", Title: "left v2"}) })
	sched.Update(func(tx *graph.Tx) { right.Set(tx, entity{ID: "r", Title: "right v2"}) })

	assert.Equal(t, []string{"left v1", "right v1", "right v2"}, *got)
}

func Test_Switch_Produces_No_Value_When_Route_Is_Empty(t *testing.T) {
	t.Parallel()

	sched := graph.New()
	selected := graph.NewSource(sched, "selected", "none")
	src := graph.NewSource(sched, "src", 7)

	node := graph.Switch(sched, "node", selected, func(which string) (graph.Route[int], error) {
		if which == "none" {
			return graph.Empty[int](), nil
		}

		return graph.Select[int](src, func(v int) (int, error) { return v, nil }), nil
	})

	_, ok := node.Value()
	assert.False(t, ok)

	sched.Update(func(tx *graph.Tx) { selected.Set(tx, "src") })

	v, ok := node.Value()
	require.True(t, ok)
	assert.Equal(t, 7, v)
}

func Test_Switch_Records_Route_Error(t *testing.T) {
	t.Parallel()

	errBadRoute := errors.New("bad route")

	sched := graph.New()
	selected := graph.NewSource(sched, "selected", "bad")

	node := graph.Switch(sched, "node", selected, func(string) (graph.Route[int], error) {
		return graph.Empty[int](), errBadRoute
	})

	require.ErrorIs(t, node.Err(), errBadRoute)
}

func Test_MapRoute_Transforms_Picked_Value(t *testing.T) {
	t.Parallel()

	sched := graph.New()
	selected := graph.NewSource(sched, "selected", 1)
	src := graph.NewSource(sched, "src", "abc")

	node := graph.Switch(sched, "len", selected, func(int) (graph.Route[int], error) {
		picked := graph.Select[string](src, func(s string) (string, error) { return s, nil })

		return graph.MapRoute(picked, func(s string) (int, error) { return len(s), nil }), nil
	})

	v, ok := node.Value()
	require.True(t, ok)
	assert.Equal(t, 3, v)
}
