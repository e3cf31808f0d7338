package origin

import (
	"net/http"
	"strings"

	"github.com/spf13/pflag"

	"github.com/QuadTriangle/domlink/internal/hooks"
)

type plugin struct {
	origin string
}

func New() hooks.Plugin {
	return &plugin{}
}

func (p *plugin) Name() string { return "origin" }

func (p *plugin) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&p.origin, "origin", "", "Origin header sent on the WebSocket handshake (servers may reject mismatches)")
}

func (p *plugin) Enabled() bool { return strings.TrimSpace(p.origin) != "" }

func (p *plugin) DialHeader() http.Header {
	return http.Header{"Origin": {strings.TrimSpace(p.origin)}}
}

func (p *plugin) DeniedCommands() []string                { return nil }
func (p *plugin) CommandHooks() []hooks.CommandHook       { return nil }
func (p *plugin) ConnectionHooks() []hooks.ConnectionHook { return nil }
