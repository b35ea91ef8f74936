package wshub

import (
	"github.com/gorilla/websocket"
	"github.com/mb0/orep/hub"
	"github.com/mb0/orep/log"
)

// Client is a hub conn that dials a remote hub over websocket. Messages sent to
// its channel are transmitted to the remote hub, received messages are routed
// to the channel passed to Connect.
type Client struct {
	url  string
	id   int64
	send chan *hub.Msg
	*websocket.Dialer
	Log log.Logger
}

// NewClient returns a new unconnected client for the given websocket url.
func NewClient(url string) *Client {
	return &Client{url: url, id: hub.NextID(), send: make(chan *hub.Msg, 32)}
}

func (c *Client) ID() int64             { return c.id }
func (c *Client) Chan() chan<- *hub.Msg { return c.send }

// Connect dials the remote hub and pumps messages until the connection fails
// or is closed. Received messages arrive on r with a conn sharing this client's
// id and send channel as sender, bracketed by sign-on and sign-off messages
// from this client.
func (c *Client) Connect(r chan<- *hub.Msg) error {
	c.init()
	wc, _, err := c.Dial(c.url, nil)
	if err != nil {
		return err
	}
	cc := newConn(c.id, wc, c.send)
	r <- &hub.Msg{From: c, Subj: hub.SubjSignon}
	go cc.writeAll(c.Log)
	err = cc.readAll(r)
	r <- &hub.Msg{From: c, Subj: hub.SubjSignoff}
	return err
}

func (c *Client) init() {
	if c.Dialer == nil {
		c.Dialer = websocket.DefaultDialer
	}
	if c.Log == nil {
		c.Log = log.Root
	}
}
