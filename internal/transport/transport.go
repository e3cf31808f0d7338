// Package transport abstracts the WebSocket client library behind a small
// text-message interface.
package transport

import (
	"context"
	"fmt"
	"net/http"
)

// Conn is one open WebSocket carrying text messages.
type Conn interface {
	// Read blocks for the next message.
	Read(ctx context.Context) ([]byte, error)
	// Write sends one text message. Safe for one writer at a time.
	Write(ctx context.Context, data []byte) error
	Close() error
}

// Dialer opens connections.
type Dialer interface {
	Dial(ctx context.Context, url string, header http.Header) (Conn, error)
}

// Kind names a Dialer implementation.
type Kind string

const (
	KindGorilla Kind = "gorilla"
	KindNhooyr  Kind = "nhooyr"
)

// New returns the dialer for kind.
func New(kind Kind) (Dialer, error) {
	switch kind {
	case KindGorilla, "":
		return GorillaDialer{}, nil
	case KindNhooyr:
		return NhooyrDialer{}, nil
	default:
		return nil, fmt.Errorf("unknown transport %q", kind)
	}
}
