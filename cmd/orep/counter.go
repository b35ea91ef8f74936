package main

import (
	"sync"

	"github.com/mb0/orep/evt"
	"github.com/mb0/orep/rep"
	"github.com/mb0/xelf/cor"
	"github.com/mb0/xelf/lit"
	"github.com/mb0/xelf/typ"
)

// counter is the demo application state. Each replica owns its own copy; the
// mutex only covers display reads racing the drain goroutine.
type counter struct {
	mu  sync.Mutex
	val int64
}

func (c *counter) value() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.val
}

func (c *counter) add(n int64) {
	c.mu.Lock()
	c.val += n
	c.mu.Unlock()
}

// take subtracts n and fails if the counter would go negative.
func (c *counter) take(n int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.val < n {
		return cor.Errorf("counter %d cannot take %d", c.val, n)
	}
	c.val -= n
	return nil
}

func kinds() evt.Kinds {
	return evt.Kinds{"increment": typ.Int, "decrement": typ.Int}
}

func amount(ev *evt.CommitEvent) (int64, error) {
	n, ok := ev.Payload.(lit.Int)
	if !ok {
		return 0, cor.Errorf("event %s with payload %T", ev.Name, ev.Payload)
	}
	return int64(n), nil
}

// serverMats returns the authoritative materializers: decrements below zero are
// rejected.
func serverMats(c *counter) map[string]rep.Materializer {
	return map[string]rep.Materializer{
		"increment": func(ev *evt.CommitEvent) error {
			n, err := amount(ev)
			if err != nil {
				return err
			}
			c.add(n)
			return nil
		},
		"decrement": func(ev *evt.CommitEvent) error {
			n, err := amount(ev)
			if err != nil {
				return err
			}
			return c.take(n)
		},
	}
}

// clientMats returns the optimistic materializers: applies are unguarded, the
// counter may dip negative until the server verdict arrives, and each rollback
// is the exact inverse of its apply.
func clientMats(c *counter) map[string]rep.Mat {
	incr := func(ev *evt.CommitEvent) error {
		n, err := amount(ev)
		if err == nil {
			c.add(n)
		}
		return err
	}
	decr := func(ev *evt.CommitEvent) error {
		n, err := amount(ev)
		if err == nil {
			c.add(-n)
		}
		return err
	}
	return map[string]rep.Mat{
		"increment": {Apply: incr, Rollback: decr},
		"decrement": {Apply: decr, Rollback: incr},
	}
}
