// Package registry is the closed allow-list of commands a server may send.
// A registry is built once and never widened; only registered names execute.
package registry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/QuadTriangle/domlink/internal/dom"
	"github.com/QuadTriangle/domlink/internal/wire"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrDuplicate      = errors.New("command already registered")
)

// Target says how a handler uses the command selector.
type Target int

const (
	TargetNone Target = iota
	TargetRequired
	TargetOptional
)

// RunFunc performs a command. el is nil only for TargetNone and for
// TargetOptional when nothing matched. Query handlers return the value to
// send upstream.
type RunFunc func(doc *dom.Document, el *dom.Element, cmd wire.Command) (string, error)

// Handler binds a command name to its effect.
type Handler struct {
	Name   string
	Desc   string
	Target Target
	Query  bool
	Run    RunFunc
}

// Registry maps command names to handlers. The zero value is empty.
type Registry struct {
	items map[string]Handler
}

func build(handlers ...Handler) (*Registry, error) {
	r := &Registry{items: make(map[string]Handler, len(handlers))}
	for _, h := range handlers {
		if h.Name == "" || h.Run == nil {
			return nil, fmt.Errorf("invalid handler %q", h.Name)
		}
		if _, ok := r.items[h.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicate, h.Name)
		}
		r.items[h.Name] = h
	}
	return r, nil
}

// Lookup returns the handler for name.
func (r *Registry) Lookup(name string) (Handler, bool) {
	if r == nil {
		return Handler{}, false
	}
	h, ok := r.items[name]
	return h, ok
}

// Has reports whether name is allowed.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns the allowed names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Handlers returns all handlers sorted by name.
func (r *Registry) Handlers() []Handler {
	names := r.Names()
	out := make([]Handler, 0, len(names))
	for _, name := range names {
		out = append(out, r.items[name])
	}
	return out
}

// Without returns a narrower copy with the given names removed. Names that
// are not registered are reported as ErrUnknownCommand.
func (r *Registry) Without(names ...string) (*Registry, error) {
	out := &Registry{items: make(map[string]Handler, len(r.items))}
	for k, v := range r.items {
		out.items[k] = v
	}
	for _, name := range names {
		if _, ok := out.items[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
		}
		delete(out.items, name)
	}
	return out, nil
}
