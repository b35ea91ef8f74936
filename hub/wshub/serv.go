// Package wshub connects replicas across processes with websocket transports
// speaking the hub message frame.
package wshub

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/mb0/orep/hub"
	"github.com/mb0/orep/log"
)

// Serve returns a handler that upgrades requests to websocket connections and
// signs them on to the hub until they disconnect.
func Serve(h *hub.Hub, l log.Logger) http.HandlerFunc {
	if l == nil {
		l = log.Root
	}
	upgr := &websocket.Upgrader{}
	return func(w http.ResponseWriter, r *http.Request) {
		wc, err := upgr.Upgrade(w, r, nil)
		if err != nil {
			l.Error("wshub upgrade failed", "err", err)
			return
		}
		c := newConn(hub.NextID(), wc, make(chan *hub.Msg, 32))
		hub.Signon(h, c)
		go c.writeAll(l)
		err = c.readAll(h.Chan())
		hub.Signoff(h, c)
		if err != nil {
			l.Error("wshub read failed", "err", err)
		}
	}
}
