package rep

import (
	"sync"

	"github.com/mb0/orep/evt"
	"github.com/mb0/orep/log"
	"github.com/mb0/xelf/cor"
)

// Mat bundles the optimistic apply and compensating rollback materializers for
// one event kind. Rollback must invert Apply for the same payload; the library
// only guarantees it calls them in that pairing.
type Mat struct {
	Apply    Materializer
	Rollback Materializer
}

// Client is the optimistic replica. Commits apply immediately and stay in the
// pending table until the server acknowledgement arrives through Receive.
type Client struct {
	// OnCommit is invoked once per dequeued event, after the optimistic apply
	// succeeded and the event was recorded as pending. The event carries the
	// freshly minted client id; the glue forwards it to the server replica.
	OnCommit func(*evt.CommitEvent) error
	// Log receives materializer and callback warnings, defaults to log.Root.
	Log log.Logger

	kinds evt.Kinds
	mats  map[string]Mat
	que   *fifo
	seq   int64

	// mu serializes materializer runs between the drain task and Receive and
	// guards the pending table.
	mu      sync.Mutex
	pending map[string]*evt.CommitEvent
}

// NewClient returns a client replica. Every declared kind needs both an apply
// and a rollback materializer; seq mirrors the server's initial sequence and is
// reserved for gap detection.
func NewClient(seq int64, kinds evt.Kinds, mats map[string]Mat) (*Client, error) {
	err := kinds.Check()
	if err != nil {
		return nil, err
	}
	for name := range kinds {
		m, ok := mats[name]
		if !ok || m.Apply == nil {
			return nil, cor.Errorf("event %s without apply materializer", name)
		}
		if m.Rollback == nil {
			return nil, cor.Errorf("event %s without rollback materializer", name)
		}
	}
	for name := range mats {
		if _, ok := kinds[name]; !ok {
			return nil, cor.Errorf("materializer for undeclared event %s", name)
		}
	}
	return &Client{
		Log: log.Root, kinds: kinds, mats: mats, que: newFifo(), seq: seq,
		pending: make(map[string]*evt.CommitEvent),
	}, nil
}

// Commit validates ev and queues it for optimistic application. It returns once
// ev is queued and fails only on validation errors. A failing apply is silent:
// the event is dropped with a warning, never recorded as pending and never
// reported through OnCommit.
func (c *Client) Commit(ev *evt.CommitEvent) error {
	err := c.kinds.Validate(ev)
	if err != nil {
		return err
	}
	start, err := c.que.push(ev)
	if err != nil {
		return err
	}
	if start {
		go c.drain()
	}
	return nil
}

// Receive reconciles a server acknowledgement against the pending table. A
// matching success retires the entry with no further state change, a matching
// failure runs the rollback and retires the entry even if the rollback errors.
// Acknowledgements this client did not originate are applied blindly on
// success and ignored on failure. Receive returns once reconciliation applied.
func (c *Client) Receive(cv *evt.CommittedEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cv.Cid != "" {
		if p := c.pending[cv.Cid]; p != nil {
			delete(c.pending, cv.Cid)
			if !cv.Err {
				// state already reflects the optimistic apply
				return nil
			}
			err := c.mats[p.Name].Rollback(&cv.CommitEvent)
			if err != nil {
				c.Log.Warn("rollback failed", "event", cv.Name, "err", err)
			}
			return nil
		}
	}
	if cv.Err {
		// not ours to undo
		return nil
	}
	m, ok := c.mats[cv.Name]
	if !ok {
		return cor.Errorf("unknown event %s", cv.Name)
	}
	return m.Apply(&cv.CommitEvent)
}

// Pending returns the number of optimistic events awaiting acknowledgement.
func (c *Client) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Stop ends the drain task. Events still queued are dropped unapplied and later
// commits are refused.
func (c *Client) Stop() { c.que.stop() }

func (c *Client) drain() {
	for {
		ev, ok := c.que.pop()
		if !ok {
			return
		}
		c.exec(ev)
	}
}

func (c *Client) exec(ev *evt.CommitEvent) {
	e := *ev
	m := c.mats[e.Name]
	c.mu.Lock()
	e.Cid = c.mint()
	err := m.Apply(&e)
	if err != nil {
		c.mu.Unlock()
		c.Log.Warn("apply failed", "event", e.Name, "err", err)
		return
	}
	c.pending[e.Cid] = &e
	c.mu.Unlock()
	if c.OnCommit != nil {
		err = c.OnCommit(&e)
		if err != nil {
			c.Log.Warn("on commit failed", "event", e.Name, "err", err)
		}
	}
}

// mint returns a client id unused by the live pending set. Callers must hold mu.
func (c *Client) mint() string {
	for {
		cid := evt.NewCid()
		if _, ok := c.pending[cid]; !ok {
			return cid
		}
	}
}
