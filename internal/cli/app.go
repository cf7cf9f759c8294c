package cli

import (
	"context"
	"fmt"
	"log"
	"slices"

	"github.com/calvinalkan/focus/internal/config"
	"github.com/calvinalkan/focus/internal/model"
	"github.com/calvinalkan/focus/internal/persistence"
	"github.com/calvinalkan/focus/internal/store"
	"github.com/calvinalkan/focus/internal/workctx"
	"github.com/calvinalkan/focus/pkg/clock"
	"github.com/calvinalkan/focus/pkg/graph"
)

// app is one open data directory with a live engine on top of it.
type app struct {
	data   *persistence.Store
	store  *store.Store
	svc    *workctx.Service
	router *router
	day    string

	dirty       bool
	unsubscribe func()
}

// session opens the app lazily so that commands like print-config never take
// the data directory lock.
type session struct {
	cfg    config.Config
	logger *log.Logger
	clock  clock.Clock
	app    *app
}

func (s *session) open(ctx context.Context, o *IO) (*app, error) {
	if s.app != nil {
		return s.app, nil
	}

	a, err := openApp(ctx, s.cfg, s.clock, o, s.logger)
	if err != nil {
		return nil, err
	}

	s.app = a

	return a, nil
}

func (s *session) close(ctx context.Context) error {
	if s.app == nil {
		return nil
	}

	a := s.app
	s.app = nil

	return a.close(ctx)
}

func openApp(ctx context.Context, cfg config.Config, clk clock.Clock, o *IO, logger *log.Logger) (*app, error) {
	data, err := persistence.Open(cfg.DataDirAbs)
	if err != nil {
		return nil, err
	}

	loaded, err := data.LoadAll(ctx)
	if err != nil {
		_ = data.Close()

		return nil, fmt.Errorf("load data: %w", err)
	}

	logNodeErr := workctx.LogErrors(logger)
	sched := graph.New(graph.WithErrorHandler(func(node string, err error) {
		logNodeErr(node, err)
		action := "check the files in " + cfg.DataDirAbs
		if workctx.IsUnknownContextType(err) {
			action = "switch to an existing tag or project"
		}

		o.Warn(fmt.Sprintf("%s: %v", node, err), action)
	}))

	st := store.New(sched, store.State{
		Tasks:    model.NewCollection(loaded.Tasks, func(t model.Task) string { return t.ID }),
		Projects: model.NewCollection(loaded.Projects, func(p model.Project) string { return p.ID }),
		Tags:     model.NewCollection(withMyDay(loaded.Tags), func(t model.Tag) string { return t.ID }),
	})

	r := newRouter()

	svc, err := workctx.New(sched, workctx.Options{
		Store:       st,
		Tasks:       st,
		Tags:        st,
		Projects:    st,
		Persistence: data,
		Router:      r,
		Clock:       clk,
		SwitchDelay: cfg.SwitchDelay(),
		Logger:      logger,
	})
	if err != nil {
		_ = data.Close()

		return nil, err
	}

	err = svc.Load(ctx)
	if err != nil {
		svc.Close()
		_ = data.Close()

		return nil, err
	}

	a := &app{data: data, store: st, svc: svc, router: r, day: cfg.Day}
	if a.day == "" {
		a.day = svc.Today()
	}

	a.unsubscribe = st.OnAction(func(store.Action) { a.dirty = true })

	return a, nil
}

// withMyDay makes sure the built-in tag exists so the default context
// resolves on an empty data directory.
func withMyDay(tags []model.Tag) []model.Tag {
	if slices.ContainsFunc(tags, func(t model.Tag) bool { return t.ID == model.MyDayTagID }) {
		return tags
	}

	myDay := model.Tag{ID: model.MyDayTagID, Title: "My Day", Icon: "wb_sunny", TaskIDs: []string{}}

	return append([]model.Tag{myDay}, tags...)
}

// commit writes the store back to disk if any action was applied since the
// last commit.
func (a *app) commit(ctx context.Context) error {
	if !a.dirty {
		return nil
	}

	snap := a.store.Snapshot()

	err := a.data.SaveAll(ctx, persistence.Data{
		Tasks:    snap.Tasks.All(),
		Projects: snap.Projects.All(),
		Tags:     snap.Tags.All(),
	})
	if err != nil {
		return err
	}

	err = a.data.SaveContextState(ctx, snap.Context)
	if err != nil {
		return err
	}

	a.dirty = false

	return nil
}

// activePair returns the active pair or an error if no context is active.
func (a *app) activePair() (model.Pair, error) {
	pair, ok := a.svc.Cached()
	if !ok {
		return model.Pair{}, workctx.ErrNoActiveContext
	}

	return pair, nil
}

func (a *app) close(ctx context.Context) error {
	commitErr := a.commit(ctx)

	a.unsubscribe()
	a.svc.Close()

	closeErr := a.data.Close()
	if commitErr != nil {
		return commitErr
	}

	return closeErr
}
