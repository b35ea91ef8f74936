package main

import (
	"fmt"
	"time"

	"github.com/mb0/orep/evt"
	"github.com/mb0/orep/rep"
	"github.com/mb0/xelf/cor"
	"github.com/mb0/xelf/lit"
)

// pair wires a client and a server replica over separate counters. Commits flow
// to the server through OnCommit; acknowledgements are buffered on a channel so
// the script controls when the client reconciles them and can show the
// optimistic state in between.
type pair struct {
	cli  *rep.Client
	srv  *rep.Server
	cval *counter
	sval *counter
	sent chan *evt.CommitEvent
	acks chan *evt.CommittedEvent
}

func newPair() (*pair, error) {
	p := &pair{
		cval: &counter{}, sval: &counter{},
		sent: make(chan *evt.CommitEvent, 32),
		acks: make(chan *evt.CommittedEvent, 32),
	}
	var err error
	p.cli, err = rep.NewClient(0, kinds(), clientMats(p.cval))
	if err != nil {
		return nil, err
	}
	p.srv, err = rep.NewServer(0, kinds(), serverMats(p.sval))
	if err != nil {
		return nil, err
	}
	p.cli.OnCommit = func(ev *evt.CommitEvent) error {
		err := p.srv.Commit(ev)
		p.sent <- ev
		return err
	}
	p.srv.OnCommitted = func(cv *evt.CommittedEvent) error {
		p.acks <- cv
		return nil
	}
	return p, nil
}

func (p *pair) stop() {
	p.cli.Stop()
	p.srv.Stop()
}

// commit submits events and waits until all optimistic applies went out.
func (p *pair) commit(evs ...*evt.CommitEvent) error {
	for _, ev := range evs {
		err := p.cli.Commit(ev)
		if err != nil {
			return err
		}
	}
	for range evs {
		select {
		case <-p.sent:
		case <-time.After(time.Second):
			return cor.Error("timeout waiting for optimistic apply")
		}
	}
	return nil
}

// reconcile feeds n buffered acknowledgements back into the client.
func (p *pair) reconcile(n int) error {
	for i := 0; i < n; i++ {
		select {
		case cv := <-p.acks:
			err := p.cli.Receive(cv)
			if err != nil {
				return err
			}
		case <-time.After(time.Second):
			return cor.Errorf("timeout waiting for ack %d of %d", i+1, n)
		}
	}
	return nil
}

func (p *pair) show(label string) {
	fmt.Printf("%-28s client=%d server=%d pending=%d\n",
		label, p.cval.value(), p.sval.value(), p.cli.Pending())
}

func demo() error {
	p, err := newPair()
	if err != nil {
		return err
	}
	defer p.stop()

	fmt.Println("happy path round trip")
	err = p.commit(&evt.CommitEvent{Name: "increment", Payload: lit.Int(5)})
	if err != nil {
		return err
	}
	p.show("  optimistic increment 5:")
	err = p.reconcile(1)
	if err != nil {
		return err
	}
	p.show("  after round trip:")

	fmt.Println("optimistic rejection")
	err = p.commit(&evt.CommitEvent{Name: "decrement", Payload: lit.Int(8)})
	if err != nil {
		return err
	}
	p.show("  optimistic decrement 8:")
	err = p.reconcile(1)
	if err != nil {
		return err
	}
	p.show("  after rejection rollback:")

	fmt.Println("mixed burst")
	err = p.commit(
		&evt.CommitEvent{Name: "increment", Payload: lit.Int(3)},
		&evt.CommitEvent{Name: "decrement", Payload: lit.Int(10)},
		&evt.CommitEvent{Name: "increment", Payload: lit.Int(2)},
	)
	if err != nil {
		return err
	}
	p.show("  optimistic burst:")
	err = p.reconcile(3)
	if err != nil {
		return err
	}
	p.show("  after burst:")
	return nil
}
