package evt

import (
	"github.com/mb0/xelf/cor"
	"github.com/mb0/xelf/lit"
	"github.com/mb0/xelf/typ"
)

// NoSeq is the sequence sentinel acknowledging a failed commit.
const NoSeq = -1

// Kinds maps event names to their payload types. The mapping is fixed at replica
// construction and must not change for the lifetime of the replica.
type Kinds map[string]typ.Type

// Check returns an error unless at least one kind is declared and all names are keys.
func (ks Kinds) Check() error {
	if len(ks) == 0 {
		return cor.Error("no event kinds declared")
	}
	for name := range ks {
		if !cor.IsKey(name) {
			return cor.Errorf("invalid event name %q", name)
		}
	}
	return nil
}

// Validate checks that ev names a declared kind and that its payload conforms to
// the declared type. The converted payload replaces the submitted one. Events
// failing validation must not enter any queue.
func (ks Kinds) Validate(ev *CommitEvent) error {
	if ev == nil || ev.Name == "" {
		return cor.Error("event without name")
	}
	t, ok := ks[ev.Name]
	if !ok {
		return cor.Errorf("unknown event %s", ev.Name)
	}
	if ev.Payload == nil {
		return cor.Errorf("event %s without payload", ev.Name)
	}
	l, err := lit.Convert(ev.Payload, t, 0)
	if err != nil {
		return cor.Errorf("event %s payload: %w", ev.Name, err)
	}
	ev.Payload = l
	return nil
}

// CommitEvent is a submitted event. Cid is empty until the client replica stamps
// the event during its optimistic apply.
type CommitEvent struct {
	Name    string
	Payload lit.Lit
	Cid     string
}

// CommittedEvent is the server acknowledgement for one commit event. Seq is the
// assigned slot, or NoSeq with Err set if the authoritative materializer failed.
type CommittedEvent struct {
	CommitEvent
	Seq int64
	Err bool
}
