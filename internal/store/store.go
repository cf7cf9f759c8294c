// Package store holds the canonical, in-memory application state and exposes
// each state slice as a graph source.
package store

import (
	"fmt"
	"slices"
	"sync"

	"github.com/calvinalkan/focus/internal/model"
	"github.com/calvinalkan/focus/pkg/graph"
)

// Store applies actions to the canonical state. Every dispatch is one graph
// transaction, so nodes joining several slices see each update once.
type Store struct {
	sched *graph.Scheduler

	// state is only read and written inside scheduler transactions.
	state State

	context  *graph.Source[model.ContextState]
	tasks    *graph.Source[model.Collection[model.Task]]
	projects *graph.Source[model.Collection[model.Project]]
	tags     *graph.Source[model.Collection[model.Tag]]

	mu        sync.Mutex
	listeners []*actionListener
}

type actionListener struct {
	fn func(Action)
}

// New creates a store holding initial.
func New(sched *graph.Scheduler, initial State) *Store {
	if sched == nil {
		panic("scheduler is nil")
	}

	return &Store{
		sched:    sched,
		state:    initial,
		context:  graph.NewSource(sched, "store.context", initial.Context, graph.Comparable[model.ContextState]()),
		tasks:    graph.NewSource(sched, "store.tasks", initial.Tasks),
		projects: graph.NewSource(sched, "store.projects", initial.Projects),
		tags:     graph.NewSource(sched, "store.tags", initial.Tags),
	}
}

// ContextState is the active context slice.
func (s *Store) ContextState() graph.Readable[model.ContextState] { return s.context }

// Tasks is the task collection.
func (s *Store) Tasks() graph.Readable[model.Collection[model.Task]] { return s.tasks }

// Projects is the project collection.
func (s *Store) Projects() graph.Readable[model.Collection[model.Project]] { return s.projects }

// Tags is the tag collection.
func (s *Store) Tags() graph.Readable[model.Collection[model.Tag]] { return s.tags }

// Dispatch reduces action into the state, propagates the touched slices in
// one transaction, then notifies action listeners.
func (s *Store) Dispatch(action Action) error {
	if action == nil {
		return fmt.Errorf("dispatch: %w: action is nil", ErrInvalidArgument)
	}

	var err error

	s.sched.Update(func(tx *graph.Tx) {
		next, changed, reduceErr := reduce(s.state, action)
		if reduceErr != nil {
			err = reduceErr

			return
		}

		s.state = next

		if changed&changedContext != 0 {
			s.context.Set(tx, next.Context)
		}

		if changed&changedTasks != 0 {
			s.tasks.Set(tx, next.Tasks)
		}

		if changed&changedProjects != 0 {
			s.projects.Set(tx, next.Projects)
		}

		if changed&changedTags != 0 {
			s.tags.Set(tx, next.Tags)
		}
	})

	if err != nil {
		return fmt.Errorf("dispatch %s: %w", action.ActionType(), err)
	}

	s.mu.Lock()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l.fn(action)
	}

	return nil
}

// OnAction registers fn for every successfully reduced action.
func (s *Store) OnAction(fn func(Action)) (unsubscribe func()) {
	l := &actionListener{fn: fn}

	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.listeners = slices.DeleteFunc(s.listeners, func(other *actionListener) bool { return other == l })
	}
}

// Snapshot returns a consistent copy of the whole state. Collections are
// immutable values, so the copy is shallow.
func (s *Store) Snapshot() State {
	var snap State

	s.sched.Update(func(*graph.Tx) {
		snap = s.state
	})

	return snap
}
