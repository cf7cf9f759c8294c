package workctx

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/calvinalkan/focus/internal/model"
	"github.com/calvinalkan/focus/internal/store"
	"github.com/calvinalkan/focus/pkg/clock"
	"github.com/calvinalkan/focus/pkg/graph"
)

// Options are the collaborators of a [Service]. Store, Tasks, Tags and
// Projects are required.
type Options struct {
	Store       Store
	Tasks       TaskLookup
	Tags        TagLookup
	Projects    ProjectLookup
	Persistence ContextPersistence
	Router      Router
	Clock       clock.Clock
	SwitchDelay time.Duration
	Logger      *log.Logger
}

// Service is the work-context engine: every view derived from the active
// context plus the operations that act on it.
type Service struct {
	*Resolver
	*ViewBuilder
	*ChangeNotifier
	*TaskViews
	*Metrics
	*Flattener

	store       Store
	persistence ContextPersistence
	clock       clock.Clock
	logger      *log.Logger
}

// New builds the engine graph on sched.
func New(sched *graph.Scheduler, opts Options) (*Service, error) {
	switch {
	case sched == nil:
		return nil, fmt.Errorf("new service: %w: scheduler is nil", ErrInvalidArgument)
	case opts.Store == nil:
		return nil, fmt.Errorf("new service: %w: store is nil", ErrInvalidArgument)
	case opts.Tasks == nil:
		return nil, fmt.Errorf("new service: %w: task lookup is nil", ErrInvalidArgument)
	case opts.Tags == nil:
		return nil, fmt.Errorf("new service: %w: tag lookup is nil", ErrInvalidArgument)
	case opts.Projects == nil:
		return nil, fmt.Errorf("new service: %w: project lookup is nil", ErrInvalidArgument)
	}

	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}

	if opts.Logger == nil {
		opts.Logger = discardLogger()
	}

	s := &Service{
		store:       opts.Store,
		persistence: opts.Persistence,
		clock:       opts.Clock,
		logger:      opts.Logger,
	}

	s.Resolver = NewResolver(sched, opts.Store, opts.Router, opts.Logger)
	s.ViewBuilder = NewViewBuilder(sched, s.ActivePair(), opts.Tags, opts.Projects)
	s.ChangeNotifier = NewChangeNotifier(sched, s.ActivePair(), opts.Clock, opts.SwitchDelay)
	s.TaskViews = NewTaskViews(sched, s.ActiveContext(), opts.Store.Tasks(), opts.Tasks)
	s.Metrics = NewMetrics(sched, s.TodayTasks())
	s.Flattener = NewFlattener(sched, s.TodayTasks(), s.BacklogTasks())

	return s, nil
}

// Load hydrates the context state from persistence, falling back to
// [model.DefaultContextState], and dispatches it.
func (s *Service) Load(ctx context.Context) error {
	state := model.DefaultContextState()

	if s.persistence != nil {
		persisted, err := s.persistence.LoadContextState(ctx)
		if err != nil {
			return errorf("load context state", err)
		}

		if persisted != nil {
			state = *persisted
		}
	}

	var err error

	s.quietly(func() { err = s.store.Dispatch(store.LoadContextState{State: state}) })

	if err != nil {
		return errorf("load context state", err)
	}

	return nil
}

// Today is the worklog day of the service clock.
func (s *Service) Today() string {
	return model.WorklogDay(s.clock.Now())
}

// WorkingToday emits the time worked on [Service.Today] at the time of the
// call.
func (s *Service) WorkingToday() graph.Readable[time.Duration] {
	return s.TimeWorkedForDay(s.Today())
}

// ContextErr returns the error that keeps the active context from resolving,
// such as an unknown context type.
func (s *Service) ContextErr() error {
	return s.ActiveContext().Err()
}

// UpdateWorklogExportSettings writes data into the worklog export section of
// the active tag or project.
func (s *Service) UpdateWorklogExportSettings(data model.WorklogExportSettings) error {
	pair, ok := s.Cached()
	if !ok {
		return errorf("update worklog export settings", ErrNoActiveContext)
	}

	if !pair.Type.Valid() {
		err := fmt.Errorf("%w: %q (id %s)", ErrUnknownContextType, pair.Type, pair.ID)
		s.logger.Printf("warning: update worklog export settings: %v", err)

		return errorf("update worklog export settings", err)
	}

	var action store.Action = store.UpdateTagAdvancedCfg{
		TagID:      pair.ID,
		SectionKey: model.SectionWorklogExportSettings,
		Data:       data,
	}

	if pair.Type == model.ContextTypeProject {
		action = store.UpdateProjectAdvancedCfg{
			ProjectID:  pair.ID,
			SectionKey: model.SectionWorklogExportSettings,
			Data:       data,
		}
	}

	err := s.store.Dispatch(action)
	if err != nil {
		return errorf("update worklog export settings", err)
	}

	return nil
}

// MoveTaskToBacklog moves taskID from today to the backlog of the active
// context.
func (s *Service) MoveTaskToBacklog(taskID string) error {
	pair, ok := s.Cached()
	if !ok {
		return errorf("move task to backlog", ErrNoActiveContext)
	}

	err := s.store.Dispatch(store.MoveTaskToBacklog{
		TaskID:          taskID,
		WorkContextID:   pair.ID,
		WorkContextType: pair.Type,
	})
	if err != nil {
		return errorf("move task to backlog", err)
	}

	return nil
}

// OnWorkContextChange calls fn for every set-active-context action.
func (s *Service) OnWorkContextChange(fn func(store.SetActiveContext)) (unsubscribe func()) {
	return s.store.OnAction(func(a store.Action) {
		if set, ok := a.(store.SetActiveContext); ok {
			fn(set)
		}
	})
}

// OnMoveToBacklog calls fn for every move-to-backlog action.
func (s *Service) OnMoveToBacklog(fn func(store.MoveTaskToBacklog)) (unsubscribe func()) {
	return s.store.OnAction(func(a store.Action) {
		if move, ok := a.(store.MoveTaskToBacklog); ok {
			fn(move)
		}
	})
}

// Close releases router and timer subscriptions.
func (s *Service) Close() {
	s.Resolver.Close()
	s.ChangeNotifier.Close()
}

// IsUnknownContextType reports whether err stems from an unknown context type.
func IsUnknownContextType(err error) bool {
	return errors.Is(err, ErrUnknownContextType)
}
