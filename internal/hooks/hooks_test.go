package hooks

import (
	"errors"
	"net/http"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuadTriangle/domlink/internal/wire"
)

type fakePlugin struct {
	name    string
	flag    bool
	header  http.Header
	deny    []string
	cmd     []CommandHook
	conn    []ConnectionHook
	flagged bool
}

func (p *fakePlugin) Name() string { return p.name }
func (p *fakePlugin) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&p.flag, p.name, false, "enable "+p.name)
	p.flagged = true
}
func (p *fakePlugin) Enabled() bool                     { return p.flag }
func (p *fakePlugin) DialHeader() http.Header           { return p.header }
func (p *fakePlugin) DeniedCommands() []string          { return p.deny }
func (p *fakePlugin) CommandHooks() []CommandHook       { return p.cmd }
func (p *fakePlugin) ConnectionHooks() []ConnectionHook { return p.conn }

type tagHook struct {
	NoOpCommandHook
	tag   string
	after *[]string
}

func (h tagHook) BeforeExecute(cmd wire.Command) wire.Command {
	cmd.Selector += h.tag
	return cmd
}

func (h tagHook) AfterExecute(cmd wire.Command, res Result) {
	*h.after = append(*h.after, h.tag+":"+string(res.Outcome))
}

type connLog struct {
	NoOpConnectionHook
	events []string
}

func (c *connLog) OnConnect(endpoint, id string) { c.events = append(c.events, "connect "+id) }
func (c *connLog) OnDisconnect(_ string, err error) {
	c.events = append(c.events, "disconnect "+err.Error())
}

func TestPipelineActivatesEnabledPlugins(t *testing.T) {
	var after []string
	on := &fakePlugin{
		name:   "on",
		header: http.Header{"origin": {"http://a"}},
		deny:   []string{"innerHTML", "editable"},
		cmd:    []CommandHook{tagHook{tag: "1", after: &after}},
	}
	also := &fakePlugin{
		name: "also",
		deny: []string{"editable"},
		cmd:  []CommandHook{tagHook{tag: "2", after: &after}},
	}
	off := &fakePlugin{
		name:   "off",
		header: http.Header{"X-Off": {"1"}},
		deny:   []string{"append"},
		cmd:    []CommandHook{tagHook{tag: "x", after: &after}},
	}

	var p Pipeline
	p.RegisterPlugin(on)
	p.RegisterPlugin(also)
	p.RegisterPlugin(off)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	p.RegisterFlags(fs)
	assert.True(t, off.flagged)
	require.NoError(t, fs.Parse([]string{"--on", "--also"}))
	p.Activate()

	assert.Equal(t, []string{"on", "also"}, p.Enabled())
	assert.Equal(t, "http://a", p.DialHeader().Get("Origin"))
	assert.Empty(t, p.DialHeader().Get("X-Off"))
	assert.Equal(t, []string{"innerHTML", "editable"}, p.DeniedCommands())

	cmd := p.RunBeforeExecute(wire.Command{Name: "focus", Selector: "#a"})
	assert.Equal(t, "#a12", cmd.Selector)
	p.RunAfterExecute(cmd, Result{Outcome: OutcomeExecuted})
	assert.Equal(t, []string{"1:executed", "2:executed"}, after)
}

func TestPipelineConnectionHooks(t *testing.T) {
	var p Pipeline
	log := &connLog{}
	p.AddConnectionHook(log)

	p.NotifyConnect("ws://x", "id1")
	p.NotifyMessage("ws://x")
	p.NotifyDisconnect("ws://x", errors.New("eof"))

	assert.Equal(t, []string{"connect id1", "disconnect eof"}, log.events)
}

func TestZeroPipeline(t *testing.T) {
	var p Pipeline
	cmd := wire.Command{Name: "exists"}
	assert.Equal(t, cmd, p.RunBeforeExecute(cmd))
	assert.Nil(t, p.DialHeader())
	assert.Empty(t, p.DeniedCommands())
	p.RunAfterExecute(cmd, Result{})
}
