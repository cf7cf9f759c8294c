package workctx

import (
	"log"
	"regexp"
	"sync"

	"github.com/calvinalkan/focus/internal/model"
	"github.com/calvinalkan/focus/internal/store"
	"github.com/calvinalkan/focus/pkg/graph"
)

// Resolver tracks the active (id, type) pair.
//
// The pair is absent (NoContext) until the store holds an active id. Requests
// for the pair that is already active are absorbed: [Resolver.ActivePair]
// only emits value changes.
type Resolver struct {
	store  Store
	logger *log.Logger

	pair *graph.Node[model.Pair]
	id   *graph.Node[string]

	cache  pairCache
	unsubs []func()
}

// NewResolver wires the resolver to st and, if router is non-nil, to
// navigation events.
func NewResolver(sched *graph.Scheduler, st Store, router Router, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = discardLogger()
	}

	r := &Resolver{store: st, logger: logger}

	r.pair = graph.Derive1(sched, "activeWorkContextTypeAndId", st.ContextState(),
		func(s model.ContextState) (model.Pair, error) {
			if s.ActiveID == "" && s.ActiveType == "" {
				return model.Pair{}, graph.ErrSkip
			}

			return s.Pair(), nil
		}, graph.Comparable[model.Pair]())

	r.id = graph.Derive1(sched, "activeWorkContextId", r.pair, func(p model.Pair) (string, error) {
		return p.ID, nil
	}, graph.Comparable[string]())

	r.unsubs = append(r.unsubs, r.pair.Subscribe(r.cache.set))

	if router != nil {
		r.unsubs = append(r.unsubs, router.Subscribe(r.handleRoute))
	}

	return r
}

// ActivePair emits the active pair whenever it changes by value.
func (r *Resolver) ActivePair() graph.Readable[model.Pair] { return r.pair }

// ActiveID emits the active context id.
func (r *Resolver) ActiveID() graph.Readable[string] { return r.id }

// Cached returns the latest pair seen by the resolver's own listener. It can
// lag one step behind an emission that is still being delivered.
func (r *Resolver) Cached() (model.Pair, bool) {
	return r.cache.get()
}

// SetActiveContext requests a switch to (id, type).
func (r *Resolver) SetActiveContext(id string, contextType model.ContextType) error {
	err := r.store.Dispatch(store.SetActiveContext{ID: id, Type: contextType})
	if err != nil {
		return errorf("set active context", err)
	}

	return nil
}

// Close detaches the resolver from the router.
func (r *Resolver) Close() {
	for _, unsubscribe := range r.unsubs {
		unsubscribe()
	}

	r.unsubs = nil
}

func (r *Resolver) handleRoute(ev RouteEvent) {
	if ev.Kind != NavigationStart {
		return
	}

	pair, ok := ParseContextURL(ev.URL)
	if !ok {
		return
	}

	err := r.SetActiveContext(pair.ID, pair.Type)
	if err != nil {
		r.logger.Printf("warning: navigate to %s: %v", ev.URL, err)
	}
}

var contextURLPattern = regexp.MustCompile(`(?:^|/)(tag|project)/([^/?#]+)`)

// ParseContextURL extracts the context pair from a URL such as
// "/tag/MY_DAY/tasks" or "project/p1". Other URLs report false.
func ParseContextURL(url string) (model.Pair, bool) {
	m := contextURLPattern.FindStringSubmatch(url)
	if m == nil {
		return model.Pair{}, false
	}

	contextType := model.ContextTypeTag
	if m[1] == "project" {
		contextType = model.ContextTypeProject
	}

	return model.Pair{ID: m[2], Type: contextType}, true
}

// pairCache is the convenience copy of the active pair.
type pairCache struct {
	mu   sync.RWMutex
	pair model.Pair
	ok   bool
}

func (c *pairCache) set(p model.Pair) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pair = p
	c.ok = true
}

func (c *pairCache) get() (model.Pair, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.pair, c.ok
}
