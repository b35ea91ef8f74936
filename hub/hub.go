// Package hub provides a transport agnostic connection hub.
//
// The replication glue uses it to route commit submissions from connected client
// replicas to the server replica and to fan committed acknowledgements back out.
package hub

import "sync"

const (
	SubjSignon  = "+"
	SubjSignoff = "-"
)

// Msg is the central data structure passed between connections.
//
// From and Subj must be populated. Tok can be used by the origin connection to
// match replies to requests and is otherwise unprocessed. The body is either raw
// bytes or typed data, or both. If Raw is empty and Data is set, a transport may
// choose a serialization format, usually JSON; in-process connections use Data
// directly and skip serialization altogether.
type Msg struct {
	// From is the connection this message originates from.
	From Conn
	// Subj is the message header used for routing and determining the data type.
	Subj string
	Tok  []byte
	Raw  []byte
	Data any
}

// Router routes a received message to a connection.
type Router interface{ Route(*Msg) }

// RouterFunc implements Router for simple route functions.
type RouterFunc func(*Msg)

func (r RouterFunc) Route(m *Msg) { r(m) }

// Conn is the common interface for participants connected to a hub.
type Conn interface {
	// ID is an internal connection identifier, the hub has id 0, transient
	// connections have a negative and normal connections positive ids.
	ID() int64
	// Chan returns an unchanging receiver channel. The hub sends a nil message
	// to this channel after a sign-off message from this conn was routed.
	Chan() chan<- *Msg
}

// Hub is the central participant that manages connection sign-on and sign-offs
// and keeps a list of all signed-on participants. Hub itself is a Conn with id 0.
type Hub struct {
	sync.Mutex
	cmap map[int64]Conn
	mque chan *Msg
}

// NewHub creates and returns a new hub.
func NewHub() *Hub {
	return &Hub{
		cmap: make(map[int64]Conn, 8),
		mque: make(chan *Msg, 128),
	}
}

func (h *Hub) ID() int64         { return 0 }
func (h *Hub) Chan() chan<- *Msg { return h.mque }

// Run starts routing received messages with the given router. It returns after
// a nil message was sent to the hub channel. It is usually run in a go routine.
func (h *Hub) Run(r Router) {
	for m := range h.mque {
		if m == nil {
			break
		}
		if m.Subj == SubjSignon {
			h.Lock()
			h.cmap[m.From.ID()] = m.From
			h.Unlock()
		}
		r.Route(m)
		if m.Subj == SubjSignoff {
			h.Lock()
			delete(h.cmap, m.From.ID())
			m.From.Chan() <- nil
			h.Unlock()
		}
	}
}

// Conns returns a snapshot of all signed-on connections.
func (h *Hub) Conns() []Conn {
	h.Lock()
	defer h.Unlock()
	res := make([]Conn, 0, len(h.cmap))
	for _, c := range h.cmap {
		res = append(res, c)
	}
	return res
}

// Signon announces c to the hub.
func Signon(h *Hub, c Conn) { h.Chan() <- &Msg{From: c, Subj: SubjSignon} }

// Signoff retracts c from the hub.
func Signoff(h *Hub, c Conn) { h.Chan() <- &Msg{From: c, Subj: SubjSignoff} }
