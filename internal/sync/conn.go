// Package sync drives one team's websocket connection: authenticate,
// send the initial view, then keep pushing fresh views as the team's
// widgets change or their valid_until deadline passes.
package sync

import (
	"bytes"
	"compress/flate"
	"encoding/json"
	"io"
	"time"

	"github.com/flumox/flumox-server/internal/platform/logger"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 16
)

// conn wraps a websocket connection with the read/write pump idiom: reads
// happen on their own goroutine feeding a channel, writes (including
// periodic pings) happen on the caller's goroutine so only one goroutine
// ever calls the gorilla connection's write methods, which is not
// safe for concurrent use.
type conn struct {
	ws       *websocket.Conn
	log      *logger.Logger
	incoming chan []byte
	closed   chan struct{}
	compress bool
}

func newConn(ws *websocket.Conn, log *logger.Logger) *conn {
	c := &conn{ws: ws, log: log, incoming: make(chan []byte), closed: make(chan struct{})}
	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	return c
}

// readPump reads messages off the connection until it closes, delivering
// each to incoming. It owns all reads: nothing else may call ws.ReadMessage.
func (c *conn) readPump() {
	defer close(c.closed)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		select {
		case c.incoming <- data:
		case <-c.closed:
			return
		}
	}
}

// enableCompress switches send to deflate-compress every message from this
// point on, sent as a binary frame instead of text. Negotiated once, in the
// Auth message; never toggled back off for the life of the connection.
func (c *conn) enableCompress() {
	c.compress = true
}

// send writes one JSON message to the client, as plain text or, if
// compression was negotiated, as a deflate-compressed binary frame.
func (c *conn) send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if !c.compress {
		return c.ws.WriteMessage(websocket.TextMessage, data)
	}
	compressed, err := deflate(data)
	if err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.BinaryMessage, compressed)
}

// deflate compresses data with raw DEFLATE (no zlib/gzip wrapper), matching
// what a browser-side pako/zlib consumer expects to inflate.
func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// inflate reverses deflate; used by tests to decode a compressed frame.
func inflate(data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	return io.ReadAll(r)
}

// ping writes a ping frame, refreshing the client's read deadline once a
// pong comes back via the handler installed in newConn.
func (c *conn) ping() error {
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(websocket.PingMessage, nil)
}

func (c *conn) close() {
	c.ws.Close()
}
