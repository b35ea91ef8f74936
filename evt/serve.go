package evt

import (
	"encoding/json"

	"github.com/mb0/orep/hub"
)

// Subjects used by the replication glue.
const (
	// SubjCommit submits a commit event to the server replica.
	SubjCommit = "commit"
	// SubjUpdate carries a committed event from the server to client replicas.
	SubjUpdate = "update"
)

// CommitRes is the reply to a commit submission.
type CommitRes struct {
	Err string `json:"err,omitempty"`
}

// CommitFunc adapts a server replica commit to a hub service.
type CommitFunc func(*hub.Msg, *CommitEvent) error

func (f CommitFunc) Serve(m *hub.Msg) any {
	ev, err := commitBody(m)
	if err != nil {
		return &CommitRes{Err: err.Error()}
	}
	err = f(m, ev)
	if err != nil {
		return &CommitRes{Err: err.Error()}
	}
	return &CommitRes{}
}

// UpdateFunc adapts a client replica receive to a hub service. Updates are
// one-way: the service replies only when the update cannot be parsed or
// received, with the error in a CommitRes.
type UpdateFunc func(*hub.Msg, *CommittedEvent) error

func (f UpdateFunc) Serve(m *hub.Msg) any {
	cv, err := updateBody(m)
	if err == nil {
		err = f(m, cv)
	}
	if err != nil {
		return &CommitRes{Err: err.Error()}
	}
	return nil
}

func commitBody(m *hub.Msg) (*CommitEvent, error) {
	if ev, ok := m.Data.(*CommitEvent); ok {
		return ev, nil
	}
	ev := &CommitEvent{}
	return ev, json.Unmarshal(m.Raw, ev)
}

func updateBody(m *hub.Msg) (*CommittedEvent, error) {
	if cv, ok := m.Data.(*CommittedEvent); ok {
		return cv, nil
	}
	cv := &CommittedEvent{}
	return cv, json.Unmarshal(m.Raw, cv)
}
