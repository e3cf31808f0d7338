package transport

import (
	"context"
	"net/http"

	"nhooyr.io/websocket"
)

// readLimit caps a single inbound message; innerHTML payloads can be large.
const readLimit = 4 << 20

// NhooyrDialer dials with nhooyr.io/websocket.
type NhooyrDialer struct{}

func (NhooyrDialer) Dial(ctx context.Context, url string, header http.Header) (Conn, error) {
	c, resp, err := websocket.Dial(ctx, url, &websocket.DialOptions{HTTPHeader: header})
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	c.SetReadLimit(readLimit)
	return &nhooyrConn{c: c}, nil
}

type nhooyrConn struct {
	c *websocket.Conn
}

func (n *nhooyrConn) Read(ctx context.Context) ([]byte, error) {
	_, msg, err := n.c.Read(ctx)
	return msg, err
}

func (n *nhooyrConn) Write(ctx context.Context, data []byte) error {
	return n.c.Write(ctx, websocket.MessageText, data)
}

func (n *nhooyrConn) Close() error {
	return n.c.Close(websocket.StatusNormalClosure, "shutdown")
}
