package rep

import (
	"github.com/mb0/orep/evt"
	"github.com/mb0/orep/log"
	"github.com/mb0/xelf/cor"
)

// Server is the authoritative replica. It serially materializes validated
// events in submission order and acknowledges every dequeued event exactly once
// through OnCommitted.
type Server struct {
	// OnCommitted is invoked after the materializer ran or failed. On success
	// the event carries the assigned sequence, on failure evt.NoSeq and the
	// error flag. Callback errors are logged and swallowed; the commit still
	// counts for sequence purposes.
	OnCommitted func(*evt.CommittedEvent) error
	// Log receives materializer and callback warnings, defaults to log.Root.
	Log log.Logger

	kinds evt.Kinds
	mats  map[string]Materializer
	que   *fifo
	seq   int64
}

// NewServer returns a server replica that assigns sequence slots starting at seq.
// Every declared kind needs a materializer and every materializer a declared kind.
func NewServer(seq int64, kinds evt.Kinds, mats map[string]Materializer) (*Server, error) {
	err := kinds.Check()
	if err != nil {
		return nil, err
	}
	for name := range kinds {
		if mats[name] == nil {
			return nil, cor.Errorf("event %s without materializer", name)
		}
	}
	for name := range mats {
		if _, ok := kinds[name]; !ok {
			return nil, cor.Errorf("materializer for undeclared event %s", name)
		}
	}
	return &Server{Log: log.Root, kinds: kinds, mats: mats, que: newFifo(), seq: seq}, nil
}

// Commit validates ev and queues it for authoritative execution. It returns once
// ev is queued and fails only on validation errors; materializer failures are
// reported through OnCommitted.
func (s *Server) Commit(ev *evt.CommitEvent) error {
	err := s.kinds.Validate(ev)
	if err != nil {
		return err
	}
	start, err := s.que.push(ev)
	if err != nil {
		return err
	}
	if start {
		go s.drain()
	}
	return nil
}

// Stop ends the drain task. Events still queued are dropped unacknowledged and
// later commits are refused.
func (s *Server) Stop() { s.que.stop() }

func (s *Server) drain() {
	for {
		ev, ok := s.que.pop()
		if !ok {
			return
		}
		s.exec(ev)
	}
}

func (s *Server) exec(ev *evt.CommitEvent) {
	err := s.mats[ev.Name](ev)
	res := &evt.CommittedEvent{CommitEvent: *ev, Seq: s.seq}
	if err != nil {
		res.Seq, res.Err = evt.NoSeq, true
		s.Log.Warn("materialize failed", "event", ev.Name, "err", err)
	}
	if s.OnCommitted != nil {
		cerr := s.OnCommitted(res)
		if cerr != nil {
			s.Log.Warn("on committed failed", "event", ev.Name, "err", cerr)
		}
	}
	if err == nil {
		s.seq++
	}
}
