package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/mb0/orep/evt"
	"github.com/mb0/orep/hub"
	"github.com/mb0/orep/hub/wshub"
	"github.com/mb0/orep/rep"
	"github.com/mb0/xelf/lit"
	"github.com/peterh/liner"
	"github.com/pkg/errors"
)

const replHelp = `commands: inc <n>, dec <n>, val, help, exit`

// repl runs an interactive counter client. Without arguments it wires an
// in-process server replica; with a websocket url it joins a served one.
func repl(args []string) error {
	cnt := &counter{}
	cli, err := rep.NewClient(0, kinds(), clientMats(cnt))
	if err != nil {
		return err
	}
	defer cli.Stop()
	if len(args) > 0 {
		connect(cli, args[0])
	} else {
		sval := &counter{}
		srv, err := rep.NewServer(0, kinds(), serverMats(sval))
		if err != nil {
			return err
		}
		defer srv.Stop()
		cli.OnCommit = srv.Commit
		srv.OnCommitted = cli.Receive
	}

	lin := liner.NewLiner()
	defer lin.Close()
	lin.SetMultiLineMode(true)
	for i := 0; ; i++ {
		var got string
		if i == 0 {
			got, err = lin.PromptWithSuggestion("> ", "inc 1", 4)
		} else {
			got, err = lin.Prompt("> ")
		}
		if err != nil {
			if err == io.EOF {
				fmt.Println()
				return nil
			}
			log.Printf("unexpected error reading prompt: %v", err)
			continue
		}
		cmd, rest, _ := strings.Cut(strings.TrimSpace(got), " ")
		switch cmd {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "help":
			fmt.Println(replHelp)
			continue
		case "val":
			fmt.Printf("= %d pending %d\n", cnt.value(), cli.Pending())
			lin.AppendHistory(got)
			continue
		case "inc", "dec":
			n, err := strconv.ParseInt(strings.TrimSpace(rest), 10, 64)
			if err != nil {
				log.Printf("error parsing amount %q: %v", rest, err)
				continue
			}
			name := "increment"
			if cmd == "dec" {
				name = "decrement"
			}
			err = cli.Commit(&evt.CommitEvent{Name: name, Payload: lit.Int(n)})
			if err != nil {
				log.Printf("error committing %s: %v", name, err)
				continue
			}
			lin.AppendHistory(got)
			fmt.Printf("= %d pending %d\n", cnt.value(), cli.Pending())
		default:
			log.Printf("unknown command %s\n%s", cmd, replHelp)
		}
	}
}

// connect joins a served counter replica. Commits go out as commit messages,
// updates are reconciled as they arrive. Connection failures are logged; the
// repl keeps running with whatever it has.
func connect(cli *rep.Client, url string) {
	wc := wshub.NewClient(url)
	r := make(chan *hub.Msg, 32)
	up := evt.UpdateFunc(func(_ *hub.Msg, cv *evt.CommittedEvent) error {
		return cli.Receive(cv)
	})
	go func() {
		for m := range r {
			switch m.Subj {
			case hub.SubjSignon, hub.SubjSignoff:
			case evt.SubjUpdate:
				res := up.Serve(m)
				if res != nil {
					log.Printf("update failed: %s", res.(*evt.CommitRes).Err)
				}
			case evt.SubjCommit:
				var res evt.CommitRes
				err := commitReply(m, &res)
				if err != nil {
					log.Printf("bad commit reply: %v", err)
				} else if res.Err != "" {
					log.Printf("commit refused: %s", res.Err)
				}
			}
		}
	}()
	go func() {
		err := wc.Connect(r)
		if err != nil {
			log.Printf("%+v", errors.Wrap(err, "connect hub"))
		}
	}()
	cli.OnCommit = func(ev *evt.CommitEvent) error {
		wc.Chan() <- &hub.Msg{From: wc, Subj: evt.SubjCommit, Data: ev}
		return nil
	}
}

func commitReply(m *hub.Msg, res *evt.CommitRes) error {
	if r, ok := m.Data.(*evt.CommitRes); ok {
		*res = *r
		return nil
	}
	return json.Unmarshal(m.Raw, res)
}
