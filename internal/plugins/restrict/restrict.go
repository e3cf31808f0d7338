package restrict

import (
	"net/http"
	"strings"

	"github.com/spf13/pflag"

	"github.com/QuadTriangle/domlink/internal/hooks"
)

type plugin struct {
	deny string
}

func New() hooks.Plugin {
	return &plugin{}
}

func (p *plugin) Name() string { return "restrict" }

func (p *plugin) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&p.deny, "deny-commands", "", "Comma-separated command names to remove from the allow-list (e.g. innerHTML,editable)")
}

func (p *plugin) Enabled() bool { return strings.TrimSpace(p.deny) != "" }

func (p *plugin) DeniedCommands() []string {
	parts := strings.Split(p.deny, ",")
	names := make([]string, 0, len(parts))
	for _, s := range parts {
		s = strings.TrimSpace(s)
		if s != "" {
			names = append(names, s)
		}
	}
	return names
}

func (p *plugin) DialHeader() http.Header                 { return nil }
func (p *plugin) CommandHooks() []hooks.CommandHook       { return nil }
func (p *plugin) ConnectionHooks() []hooks.ConnectionHook { return nil }
