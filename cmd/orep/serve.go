package main

import (
	"flag"
	"net/http"

	"github.com/mb0/orep/evt"
	"github.com/mb0/orep/hub"
	"github.com/mb0/orep/hub/wshub"
	olog "github.com/mb0/orep/log"
	"github.com/mb0/orep/rep"
	"github.com/pkg/errors"
)

// serve hosts a counter server replica on a websocket hub. Every committed
// event, successful or not, is broadcast to all signed-on connections; clients
// pick out their own by client id, blindly apply the other successful events
// and ignore the other failures.
func serve(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", ":7580", "listen address")
	err := fs.Parse(args)
	if err != nil {
		return err
	}
	cnt := &counter{}
	srv, err := rep.NewServer(0, kinds(), serverMats(cnt))
	if err != nil {
		return err
	}
	defer srv.Stop()
	h := hub.NewHub()
	srv.OnCommitted = func(cv *evt.CommittedEvent) error {
		h.Chan() <- &hub.Msg{From: h, Subj: evt.SubjUpdate, Data: cv}
		return nil
	}
	services := hub.Services{
		evt.SubjCommit: evt.CommitFunc(func(m *hub.Msg, ev *evt.CommitEvent) error {
			return srv.Commit(ev)
		}),
	}
	go h.Run(hub.RouterFunc(func(m *hub.Msg) {
		switch m.Subj {
		case hub.SubjSignon, hub.SubjSignoff:
		case evt.SubjUpdate:
			for _, c := range h.Conns() {
				c.Chan() <- m
			}
		default:
			err := services.Handle(m, h)
			if err != nil {
				olog.Root.Error("route failed", "subj", m.Subj, "err", err)
			}
		}
	}))
	olog.Root.Debug("serving counter hub", "addr", *addr)
	http.Handle("/hub", wshub.Serve(h, olog.Root))
	return errors.Wrap(http.ListenAndServe(*addr, nil), "serve hub")
}
