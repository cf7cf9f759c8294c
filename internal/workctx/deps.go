// Package workctx derives live views from the active work context and the
// canonical task collection.
//
// The engine is a set of graph nodes. The resolver tracks the active (id,
// type) pair, the view builder turns it into a [model.WorkContext], and the
// task, metric and flattening views hang off that context. All state lives in
// the store; this package only reads it and dispatches actions.
package workctx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/calvinalkan/focus/internal/model"
	"github.com/calvinalkan/focus/internal/store"
	"github.com/calvinalkan/focus/pkg/graph"
)

// Error variables for work-context operations.
var (
	// ErrInvalidArgument is returned by the bulk task lookup for a nil id list.
	ErrInvalidArgument = store.ErrInvalidArgument
	// ErrUnknownContextType reports an active type that is neither tag nor project.
	ErrUnknownContextType = model.ErrUnknownContextType
	// ErrNoActiveContext is returned by operations that need a resolved context.
	ErrNoActiveContext = errors.New("no active work context")
)

// Store is the canonical state the engine reads from and dispatches to.
type Store interface {
	ContextState() graph.Readable[model.ContextState]
	Tasks() graph.Readable[model.Collection[model.Task]]
	Dispatch(action store.Action) error
	OnAction(fn func(store.Action)) (unsubscribe func())
}

// TaskLookup materializes tasks by id. It must reject a nil id list with an
// error wrapping [ErrInvalidArgument].
type TaskLookup interface {
	TasksByIDs(ids []string) (graph.Route[[]model.TaskWithSubTasks], error)
}

// TagLookup routes to a tag by id. The route has no value while the tag is
// not loaded.
type TagLookup interface {
	TagByID(id string) graph.Route[model.Tag]
}

// ProjectLookup routes to a project by id. The route has no value while the
// project is not loaded.
type ProjectLookup interface {
	ProjectByID(id string) graph.Route[model.Project]
}

// ContextPersistence loads the persisted context state. A nil state with a nil
// error means nothing was persisted.
type ContextPersistence interface {
	LoadContextState(ctx context.Context) (*model.ContextState, error)
}

// RouteEventKind classifies navigation events.
type RouteEventKind int

// Navigation event kinds. Only NavigationStart switches contexts.
const (
	NavigationStart RouteEventKind = iota
	NavigationEnd
)

// RouteEvent is a navigation event carrying the target URL.
type RouteEvent struct {
	Kind RouteEventKind
	URL  string
}

// Router publishes navigation events.
type Router interface {
	Subscribe(fn func(RouteEvent)) (unsubscribe func())
}

// LogErrors returns a graph error handler writing warnings to logger.
func LogErrors(logger *log.Logger) graph.ErrorHandler {
	if logger == nil {
		logger = discardLogger()
	}

	return func(node string, err error) {
		logger.Printf("warning: %s: %v", node, err)
	}
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func errorf(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
