// Package dom holds the client's live HTML document. Elements are looked up
// with CSS selectors and mutated in place; observers are told about every
// change after it has been applied.
package dom

import (
	"bytes"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Mutation kinds reported to observers.
const (
	MutationAppend = "append"
	MutationHTML   = "html"
	MutationAttr   = "attr"
	MutationStyle  = "style"
	MutationFocus  = "focus"
	MutationScroll = "scroll"
)

// Mutation describes one applied change.
type Mutation struct {
	Kind   string
	Target *Element
	Added  *Element // set for MutationAppend
	Name   string   // attribute or style property, when relevant
}

// Callback is a named click handler bound to an element.
type Callback func(el *Element)

// Document is safe for concurrent use. Mutations are expected from a single
// goroutine; readers may come from anywhere.
type Document struct {
	mu        sync.RWMutex
	doc       *goquery.Document
	active    *html.Node
	scrollTop map[*html.Node]int
	onClick   map[*html.Node]string
	callbacks map[string]Callback
	observers []func(Mutation)
}

// Parse builds a document from HTML markup.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	d := &Document{
		doc:       doc,
		scrollTop: make(map[*html.Node]int),
		onClick:   make(map[*html.Node]string),
	}
	d.callbacks = defaultCallbacks()
	return d, nil
}

// ParseString is Parse for in-memory markup.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

// Observe registers fn to be called after every mutation.
func (d *Document) Observe(fn func(Mutation)) {
	d.mu.Lock()
	d.observers = append(d.observers, fn)
	d.mu.Unlock()
}

func (d *Document) notify(m Mutation) {
	d.mu.RLock()
	observers := append([]func(Mutation){}, d.observers...)
	d.mu.RUnlock()
	for _, fn := range observers {
		fn(m)
	}
}

// Query returns the first element matching selector, or nil when the
// selector is empty, invalid or matches nothing.
func (d *Document) Query(selector string) *Element {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return nil
	}
	if _, err := cascadia.Compile(selector); err != nil {
		return nil
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	found := d.doc.FindMatcher(goquery.Single(selector))
	if found.Length() == 0 {
		return nil
	}
	return &Element{doc: d, node: found.Nodes[0]}
}

// Exists reports whether selector matches a live element.
func (d *Document) Exists(selector string) bool {
	return d.Query(selector) != nil
}

// CreateElement returns a detached element with the given tag name. An
// empty name means div; anything that is not an element name is rejected.
func (d *Document) CreateElement(tag string) (*Element, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		tag = "div"
	}
	if !ValidTagName(tag) {
		return nil, invalidName("tag", tag)
	}
	tag = strings.ToLower(tag)
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	return &Element{doc: d, node: n}, nil
}

// Active returns the focused element, or nil.
func (d *Document) Active() *Element {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.active == nil {
		return nil
	}
	return &Element{doc: d, node: d.active}
}

// Render serializes the whole document.
func (d *Document) Render() (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var buf bytes.Buffer
	for _, n := range d.doc.Nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// HasCallback reports whether name is a known click callback.
func (d *Document) HasCallback(name string) bool {
	_, ok := d.callbacks[name]
	return ok
}

// Click runs the callback bound to el, if any.
func (d *Document) Click(el *Element) bool {
	d.mu.RLock()
	name, ok := d.onClick[el.node]
	d.mu.RUnlock()
	if !ok {
		return false
	}
	cb, ok := d.callbacks[name]
	if !ok {
		return false
	}
	cb(el)
	return true
}

func defaultCallbacks() map[string]Callback {
	return map[string]Callback{
		"removeDecoration": func(el *Element) { _ = el.SetStyle("text-decoration", "none") },
		"highlight":        func(el *Element) { _ = el.SetStyle("background-color", "#ff0") },
	}
}
