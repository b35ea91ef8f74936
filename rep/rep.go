/*
Package rep implements the two replicas of an optimistically replicated state machine.

The server replica is the single source of truth for event order. It serially runs
the authoritative materializers and assigns a dense sequence to every successful
commit. The client replica applies submissions immediately, tracks them in a
pending table under a freshly minted client id and reconciles the server
acknowledgements against that table: a matching success retires the entry, a
matching failure compensates with the rollback materializer, an unmatched success
is applied blindly and an unmatched failure is ignored.

Each replica owns one drain goroutine that runs its queued events in order. On the
server the drain is the only caller of materializers. The client also runs
materializers from Receive and serializes those runs with its drain under a
mutex, so no two materializer runs of the same replica ever overlap. Application state
mutated by materializers must only be touched from materializer bodies.
*/
package rep

import (
	"sync"

	"github.com/mb0/orep/evt"
	"github.com/mb0/xelf/cor"
)

// Materializer applies an event to application state.
type Materializer func(*evt.CommitEvent) error

// fifo is an unbounded event queue feeding a single drain goroutine. Pushes
// never block; the first push reports that the drain task must be started.
type fifo struct {
	mu   sync.Mutex
	evs  []*evt.CommitEvent
	sig  chan struct{}
	live bool
	done bool
}

func newFifo() *fifo { return &fifo{sig: make(chan struct{}, 1)} }

func (q *fifo) push(ev *evt.CommitEvent) (start bool, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.done {
		return false, cor.Error("replica stopped")
	}
	q.evs = append(q.evs, ev)
	start, q.live = !q.live, true
	select {
	case q.sig <- struct{}{}:
	default:
	}
	return start, nil
}

// pop blocks until an event is queued or the queue is stopped. Once stopped it
// reports false even if events are still queued.
func (q *fifo) pop() (*evt.CommitEvent, bool) {
	for {
		q.mu.Lock()
		if q.done {
			q.mu.Unlock()
			return nil, false
		}
		if len(q.evs) > 0 {
			ev := q.evs[0]
			q.evs = q.evs[1:]
			q.mu.Unlock()
			return ev, true
		}
		q.mu.Unlock()
		<-q.sig
	}
}

func (q *fifo) stop() {
	q.mu.Lock()
	q.done = true
	q.mu.Unlock()
	select {
	case q.sig <- struct{}{}:
	default:
	}
}
