package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// writeWait bounds a single frame write to a slow client.
const writeWait = 5 * time.Second

// conn wraps a websocket.Conn so that broadcasts from command handlers and
// the connection's own replies never write concurrently.
// See https://pkg.go.dev/github.com/gorilla/websocket#hdr-Concurrency.
type conn struct {
	c       *websocket.Conn
	writeMu *sync.Mutex
}

func newConn(c *websocket.Conn) conn {
	return conn{c, &sync.Mutex{}}
}

func (s conn) ReadJSON(v any) error {
	return s.c.ReadJSON(v)
}

func (s conn) WriteJSON(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.c.SetWriteDeadline(time.Now().Add(writeWait))
	return s.c.WriteJSON(v)
}

func (s conn) Close() error {
	return s.c.Close()
}
