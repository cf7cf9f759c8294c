package workctx_test

import (
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/calvinalkan/focus/internal/model"
	"github.com/calvinalkan/focus/internal/store"
	"github.com/calvinalkan/focus/internal/testutil"
	"github.com/calvinalkan/focus/internal/workctx"
	"github.com/calvinalkan/focus/pkg/graph"
)

const testDay = "2024-01-01"

const testSwitchDelay = 50 * time.Millisecond

type fixture struct {
	sched  *graph.Scheduler
	store  *store.Store
	clock  *testutil.Clock
	router *fakeRouter
	svc    *workctx.Service

	mu     sync.Mutex
	errs   []error
	events []store.Action
}

type fixtureOption func(*workctx.Options)

func withPersistence(p workctx.ContextPersistence) fixtureOption {
	return func(o *workctx.Options) { o.Persistence = p }
}

func newFixture(t *testing.T, initial store.State, opts ...fixtureOption) *fixture {
	t.Helper()

	f := &fixture{
		clock:  testutil.NewClock(),
		router: &fakeRouter{},
	}

	f.sched = graph.New(graph.WithErrorHandler(func(_ string, err error) {
		f.mu.Lock()
		defer f.mu.Unlock()

		f.errs = append(f.errs, err)
	}))
	f.store = store.New(f.sched, initial)
	t.Cleanup(f.store.OnAction(func(a store.Action) {
		f.mu.Lock()
		defer f.mu.Unlock()

		f.events = append(f.events, a)
	}))

	options := workctx.Options{
		Store:       f.store,
		Tasks:       f.store,
		Tags:        f.store,
		Projects:    f.store,
		Router:      f.router,
		Clock:       f.clock,
		SwitchDelay: testSwitchDelay,
	}

	for _, opt := range opts {
		opt(&options)
	}

	svc, err := workctx.New(f.sched, options)
	if err != nil {
		t.Fatalf("workctx.New: %v", err)
	}

	t.Cleanup(svc.Close)
	f.svc = svc

	return f
}

func (f *fixture) dispatch(t *testing.T, action store.Action) {
	t.Helper()

	err := f.store.Dispatch(action)
	if err != nil {
		t.Fatalf("dispatch %s: %v", action.ActionType(), err)
	}
}

func (f *fixture) activate(t *testing.T, id string, contextType model.ContextType) {
	t.Helper()

	err := f.svc.SetActiveContext(id, contextType)
	if err != nil {
		t.Fatalf("SetActiveContext(%s, %s): %v", id, contextType, err)
	}
}

func (f *fixture) reported() []error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]error(nil), f.errs...)
}

func (f *fixture) actions() []store.Action {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]store.Action(nil), f.events...)
}

func state(tasks []model.Task, projects []model.Project, tags []model.Tag) store.State {
	return testutil.NewState().Tasks(tasks...).Projects(projects...).Tags(tags...).Build()
}

func myDay(taskIDs ...string) model.Tag {
	return testutil.MyDay(taskIDs...)
}

func collect[T any](t *testing.T, r graph.Readable[T]) *[]T {
	t.Helper()

	var got []T

	unsubscribe := r.Subscribe(func(v T) { got = append(got, v) })
	t.Cleanup(unsubscribe)

	return &got
}

func mustValue[T any](t *testing.T, r graph.Readable[T]) T {
	t.Helper()

	v, ok := r.Value()
	if !ok {
		t.Fatalf("%s has no value", r.Name())
	}

	return v
}

func taskIDs(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}

	return out
}

func treeIDs(tasks []model.TaskWithSubTasks) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}

	return out
}

type fakeRouter struct {
	mu   sync.Mutex
	subs []func(workctx.RouteEvent)
}

func (r *fakeRouter) Subscribe(fn func(workctx.RouteEvent)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := len(r.subs)
	r.subs = append(r.subs, fn)

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		r.subs[idx] = nil
	}
}

func (r *fakeRouter) navigate(kind workctx.RouteEventKind, url string) {
	r.mu.Lock()
	subs := slices.Clone(r.subs)
	r.mu.Unlock()

	for _, fn := range subs {
		if fn != nil {
			fn(workctx.RouteEvent{Kind: kind, URL: url})
		}
	}
}

type fakePersistence struct {
	state *model.ContextState
	err   error
}

func (p fakePersistence) LoadContextState(context.Context) (*model.ContextState, error) {
	return p.state, p.err
}
