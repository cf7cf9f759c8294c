package workctx

import (
	"sync"
	"time"

	"github.com/calvinalkan/focus/internal/model"
	"github.com/calvinalkan/focus/pkg/clock"
	"github.com/calvinalkan/focus/pkg/graph"
)

// DefaultSwitchDelay is how long the switching pulse stays true after the
// last context switch.
const DefaultSwitchDelay = 50 * time.Millisecond

// ChangeNotifier pulses true around context switches.
//
// Every pair emission sets the pulse to true and restarts the timer; the pulse
// falls back to false once delay passed without another switch. Pairs that
// arrive while state is being hydrated (the replay on subscription and
// [Service.Load]) are not switches.
type ChangeNotifier struct {
	sched    *graph.Scheduler
	changing *graph.Source[bool]
	timer    *clock.RestartableTimer

	mu     sync.Mutex
	quiet  int
	closed bool
	unsub  func()
}

// NewChangeNotifier subscribes to pair. A non-positive delay uses
// [DefaultSwitchDelay].
func NewChangeNotifier(
	sched *graph.Scheduler, pair graph.Readable[model.Pair], c clock.Clock, delay time.Duration,
) *ChangeNotifier {
	if delay <= 0 {
		delay = DefaultSwitchDelay
	}

	n := &ChangeNotifier{
		sched:    sched,
		changing: graph.NewSource(sched, "isContextChanging", false, graph.Comparable[bool]()),
	}

	n.timer = clock.NewRestartableTimer(c, delay, func() { n.set(false) })
	n.quietly(func() { n.unsub = pair.Subscribe(n.onPair) })

	return n
}

// IsContextChanging emits the switching pulse. It starts out false.
func (n *ChangeNotifier) IsContextChanging() graph.Readable[bool] { return n.changing }

// Close stops listening and cancels a pending reset. The pulse keeps its
// current value.
func (n *ChangeNotifier) Close() {
	n.mu.Lock()
	n.closed = true
	unsub := n.unsub
	n.unsub = nil
	n.mu.Unlock()

	if unsub != nil {
		unsub()
	}

	n.timer.Stop()
}

func (n *ChangeNotifier) onPair(model.Pair) {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()

		return
	}

	quiet := n.quiet > 0
	n.mu.Unlock()

	if quiet {
		return
	}

	n.set(true)
	n.timer.Restart()
}

// quietly runs fn without pulsing for pairs it resolves.
func (n *ChangeNotifier) quietly(fn func()) {
	n.mu.Lock()
	n.quiet++
	n.mu.Unlock()

	defer func() {
		n.mu.Lock()
		n.quiet--
		n.mu.Unlock()
	}()

	fn()
}

func (n *ChangeNotifier) set(v bool) {
	n.sched.Update(func(tx *graph.Tx) {
		n.changing.Set(tx, v)
	})
}
