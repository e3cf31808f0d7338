package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// GorillaDialer dials with gorilla/websocket.
type GorillaDialer struct {
	HandshakeTimeout time.Duration
}

func (d GorillaDialer) Dial(ctx context.Context, url string, header http.Header) (Conn, error) {
	dialer := *websocket.DefaultDialer
	if d.HandshakeTimeout > 0 {
		dialer.HandshakeTimeout = d.HandshakeTimeout
	}
	c, resp, err := dialer.DialContext(ctx, url, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return &gorillaConn{c: c}, nil
}

type gorillaConn struct {
	c *websocket.Conn
}

// Read unblocks on ctx cancellation by closing the socket.
func (g *gorillaConn) Read(ctx context.Context) ([]byte, error) {
	stop := context.AfterFunc(ctx, func() { g.c.Close() })
	defer stop()
	for {
		typ, msg, err := g.c.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, err
		}
		if typ == websocket.TextMessage || typ == websocket.BinaryMessage {
			return msg, nil
		}
	}
}

func (g *gorillaConn) Write(ctx context.Context, data []byte) error {
	if dl, ok := ctx.Deadline(); ok {
		g.c.SetWriteDeadline(dl)
		defer g.c.SetWriteDeadline(time.Time{})
	}
	return g.c.WriteMessage(websocket.TextMessage, data)
}

func (g *gorillaConn) Close() error {
	g.c.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutdown"),
		time.Now().Add(time.Second))
	return g.c.Close()
}
