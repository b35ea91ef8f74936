package hub

import (
	"testing"
	"time"
)

type echo struct{}

func (echo) Serve(m *Msg) any { return string(m.Raw) }

func TestHubReq(t *testing.T) {
	h := NewHub()
	services := Services{"echo": echo{}}
	go h.Run(RouterFunc(func(m *Msg) {
		switch m.Subj {
		case SubjSignon, SubjSignoff:
		default:
			err := services.Handle(m, h)
			if err != nil {
				t.Logf("route failed: %v", err)
			}
		}
	}))
	defer func() { h.Chan() <- nil }()
	res, err := Req(h, &Msg{Subj: "echo", Raw: []byte("hello")}, time.Second)
	if err != nil {
		t.Fatalf("req failed: %v", err)
	}
	if got := res.Data.(string); got != "hello" {
		t.Errorf("got %q want %q", got, "hello")
	}
	_, err = Req(h, &Msg{Subj: "bogus"}, 50*time.Millisecond)
	if err == nil {
		t.Errorf("req without service did not time out")
	}
}

func TestHubSignon(t *testing.T) {
	h := NewHub()
	go h.Run(RouterFunc(func(m *Msg) {}))
	defer func() { h.Chan() <- nil }()
	c := NewChanConn(NextID(), make(chan *Msg, 1))
	Signon(h, c)
	waitConns(t, h, 1)
	Signoff(h, c)
	waitConns(t, h, 0)
}

func waitConns(t *testing.T, h *Hub, want int) {
	t.Helper()
	for i := 0; i < 100; i++ {
		if len(h.Conns()) == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("got %d conns want %d", len(h.Conns()), want)
}
