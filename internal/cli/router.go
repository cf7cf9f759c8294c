package cli

import (
	"sync"

	"github.com/calvinalkan/focus/internal/workctx"
)

// router turns "switch <path>" and repl "go <path>" into navigation events.
type router struct {
	mu   sync.Mutex
	next int
	subs map[int]func(workctx.RouteEvent)
}

func newRouter() *router {
	return &router{subs: make(map[int]func(workctx.RouteEvent))}
}

func (r *router) Subscribe(fn func(workctx.RouteEvent)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.next
	r.next++
	r.subs[id] = fn

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		delete(r.subs, id)
	}
}

// Navigate publishes a start and an end event for url.
func (r *router) Navigate(url string) {
	r.publish(workctx.RouteEvent{Kind: workctx.NavigationStart, URL: url})
	r.publish(workctx.RouteEvent{Kind: workctx.NavigationEnd, URL: url})
}

func (r *router) publish(ev workctx.RouteEvent) {
	r.mu.Lock()
	subs := make([]func(workctx.RouteEvent), 0, len(r.subs))

	for i := range r.next {
		if fn, ok := r.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	r.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}
