package page

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuadTriangle/domlink/internal/dom"
	"github.com/QuadTriangle/domlink/internal/responder"
)

func TestLoadBuiltin(t *testing.T) {
	doc, err := Load(context.Background(), "", time.Second)
	require.NoError(t, err)
	assert.True(t, doc.Exists(SelectorMessages))
	assert.True(t, doc.Exists(SelectorInput))
	assert.Empty(t, SockURL(doc))

	SetSockURL(doc, "ws://x/ws")
	assert.Equal(t, "ws://x/ws", SockURL(doc))
}

func TestRenderInjectsEndpoint(t *testing.T) {
	markup, err := Render(`ws://host/ws?a=1&b="2"`)
	require.NoError(t, err)
	doc, err := dom.ParseString(markup)
	require.NoError(t, err)
	assert.Equal(t, `ws://host/ws?a=1&b="2"`, SockURL(doc))
}

func TestLoadFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "p.html")
	require.NoError(t, os.WriteFile(p, []byte(`<meta name="sock-url" content="ws://file/ws"><div id="msg-list"></div>`), 0o644))

	doc, err := Load(context.Background(), p, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "ws://file/ws", SockURL(doc))

	_, err = Load(context.Background(), filepath.Join(t.TempDir(), "missing.html"), time.Second)
	assert.Error(t, err)
}

func TestLoadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/client" {
			http.NotFound(w, r)
			return
		}
		markup, _ := Render("ws://served/ws")
		w.Write([]byte(markup))
	}))
	defer srv.Close()

	doc, err := Load(context.Background(), srv.URL+"/client", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "ws://served/ws", SockURL(doc))

	_, err = Load(context.Background(), srv.URL+"/nope", time.Second)
	assert.ErrorContains(t, err, "404")
}

func TestStatusLines(t *testing.T) {
	doc, err := Load(context.Background(), "", time.Second)
	require.NoError(t, err)
	s := NewStatus(doc)

	s.Disconnected()
	s.Connected()

	list := doc.Query(SelectorMessages)
	children := list.Children()
	require.Len(t, children, 2)
	assert.Equal(t, StatusDisconnected, children[0].Text())
	assert.Equal(t, StatusConnected, children[1].Text())
	cls, _ := children[1].Attr("class")
	assert.Equal(t, "msg", cls)
	assert.Equal(t, 2, list.ScrollTop())
	assert.True(t, doc.Active().Is(doc.Query(SelectorInput)))
}

type sender struct {
	sent []string
	err  error
}

func (s *sender) Send(_ context.Context, data []byte) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, string(data))
	return nil
}

func TestSendClearsBox(t *testing.T) {
	doc, err := Load(context.Background(), "", time.Second)
	require.NoError(t, err)
	s := &sender{}
	r, err := responder.New(s, responder.ResponseRaw, responder.InputCmd, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, Send(context.Background(), doc, r, `say "hi there"`))
	assert.Equal(t, []string{`{"Type":"CMD","Args":["say","\"hi there\""]}`}, s.sent)
	v, _ := doc.Query(SelectorInput).Attr("value")
	assert.Empty(t, v)

	s.err = errors.New("closed")
	assert.Error(t, Send(context.Background(), doc, r, "x"))
}
