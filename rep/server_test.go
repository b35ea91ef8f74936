package rep

import (
	"testing"
	"time"

	"github.com/mb0/orep/evt"
	"github.com/mb0/orep/log"
	"github.com/mb0/xelf/cor"
	"github.com/mb0/xelf/lit"
	"github.com/mb0/xelf/typ"
)

func counterKinds() evt.Kinds {
	return evt.Kinds{"increment": typ.Int, "decrement": typ.Int}
}

func amount(t *testing.T, ev *evt.CommitEvent) int64 {
	t.Helper()
	n, ok := ev.Payload.(lit.Int)
	if !ok {
		t.Fatalf("event %s payload %T is not an int", ev.Name, ev.Payload)
	}
	return int64(n)
}

// serverCounter materializes into v and rejects decrements below zero.
func serverCounter(t *testing.T, v *int64) map[string]Materializer {
	return map[string]Materializer{
		"increment": func(ev *evt.CommitEvent) error {
			*v += amount(t, ev)
			return nil
		},
		"decrement": func(ev *evt.CommitEvent) error {
			n := amount(t, ev)
			if *v < n {
				return cor.Errorf("counter %d cannot take %d", *v, n)
			}
			*v -= n
			return nil
		},
	}
}

func newTestServer(t *testing.T, seq int64, v *int64) (*Server, chan *evt.CommittedEvent) {
	t.Helper()
	s, err := NewServer(seq, counterKinds(), serverCounter(t, v))
	if err != nil {
		t.Fatalf("new server failed: %v", err)
	}
	s.Log = &log.Testing{TB: t}
	acks := make(chan *evt.CommittedEvent, 32)
	s.OnCommitted = func(cv *evt.CommittedEvent) error {
		acks <- cv
		return nil
	}
	t.Cleanup(s.Stop)
	return s, acks
}

func waitAck(t *testing.T, acks chan *evt.CommittedEvent) *evt.CommittedEvent {
	t.Helper()
	select {
	case cv := <-acks:
		return cv
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for ack")
	}
	return nil
}

func commit(t *testing.T, s *Server, name string, n int64) {
	t.Helper()
	err := s.Commit(&evt.CommitEvent{Name: name, Payload: lit.Int(n)})
	if err != nil {
		t.Fatalf("commit %s %d failed: %v", name, n, err)
	}
}

func TestServerSequence(t *testing.T) {
	var v int64
	s, acks := newTestServer(t, 0, &v)
	for _, n := range []int64{1, 2, 3} {
		commit(t, s, "increment", n)
	}
	for i, want := range []int64{1, 2, 3} {
		cv := waitAck(t, acks)
		if cv.Seq != int64(i) {
			t.Errorf("ack %d got seq %d want %d", i, cv.Seq, i)
		}
		if cv.Err {
			t.Errorf("ack %d unexpectedly errored", i)
		}
		if got := amount(t, &cv.CommitEvent); got != want {
			t.Errorf("ack %d got payload %d want %d", i, got, want)
		}
	}
	if v != 6 {
		t.Errorf("got state %d want 6", v)
	}
}

func TestServerInitialSequence(t *testing.T) {
	var v int64
	s, acks := newTestServer(t, 42, &v)
	commit(t, s, "increment", 1)
	if cv := waitAck(t, acks); cv.Seq != 42 {
		t.Errorf("got seq %d want 42", cv.Seq)
	}
}

func TestServerReject(t *testing.T) {
	var v int64
	s, acks := newTestServer(t, 0, &v)
	commit(t, s, "increment", 2)
	commit(t, s, "decrement", 5)
	commit(t, s, "increment", 3)
	wants := []struct {
		seq int64
		err bool
	}{{0, false}, {evt.NoSeq, true}, {1, false}}
	for i, want := range wants {
		cv := waitAck(t, acks)
		if cv.Seq != want.seq || cv.Err != want.err {
			t.Errorf("ack %d got seq %d err %v want seq %d err %v",
				i, cv.Seq, cv.Err, want.seq, want.err)
		}
	}
	if v != 5 {
		t.Errorf("got state %d want 5", v)
	}
}

func TestServerValidation(t *testing.T) {
	var v int64
	s, acks := newTestServer(t, 0, &v)
	err := s.Commit(&evt.CommitEvent{Name: "bogus", Payload: lit.Int(1)})
	if err == nil {
		t.Errorf("commit of undeclared event did not fail")
	}
	err = s.Commit(&evt.CommitEvent{Name: "increment", Payload: lit.Str("nope")})
	if err == nil {
		t.Errorf("commit with bad payload did not fail")
	}
	commit(t, s, "increment", 1)
	cv := waitAck(t, acks)
	if cv.Name != "increment" || cv.Seq != 0 {
		t.Errorf("got first ack %s seq %d, rejected events were queued", cv.Name, cv.Seq)
	}
}

func TestServerCallbackError(t *testing.T) {
	var v int64
	s, err := NewServer(0, counterKinds(), serverCounter(t, &v))
	if err != nil {
		t.Fatalf("new server failed: %v", err)
	}
	s.Log = &log.Testing{TB: t}
	t.Cleanup(s.Stop)
	acks := make(chan *evt.CommittedEvent, 32)
	s.OnCommitted = func(cv *evt.CommittedEvent) error {
		acks <- cv
		return cor.Error("callback boom")
	}
	commit(t, s, "increment", 1)
	commit(t, s, "increment", 2)
	if cv := waitAck(t, acks); cv.Seq != 0 {
		t.Errorf("got seq %d want 0", cv.Seq)
	}
	if cv := waitAck(t, acks); cv.Seq != 1 {
		t.Errorf("got seq %d after callback error want 1", cv.Seq)
	}
}

func TestServerStop(t *testing.T) {
	var v int64
	s, _ := newTestServer(t, 0, &v)
	s.Stop()
	err := s.Commit(&evt.CommitEvent{Name: "increment", Payload: lit.Int(1)})
	if err == nil {
		t.Errorf("commit after stop did not fail")
	}
}

func TestServerConfig(t *testing.T) {
	var v int64
	mats := serverCounter(t, &v)
	tests := []struct {
		name  string
		kinds evt.Kinds
		mats  map[string]Materializer
	}{
		{"no kinds", evt.Kinds{}, mats},
		{"missing materializer", counterKinds(), map[string]Materializer{"increment": mats["increment"]}},
		{"undeclared materializer", evt.Kinds{"increment": typ.Int}, mats},
	}
	for _, test := range tests {
		_, err := NewServer(0, test.kinds, test.mats)
		if err == nil {
			t.Errorf("%s: construction did not fail", test.name)
		}
	}
}
