package dom

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Element is a handle on one node of a Document.
type Element struct {
	doc  *Document
	node *html.Node
}

// Node exposes the underlying html node.
func (e *Element) Node() *html.Node { return e.node }

// Tag returns the lower-case tag name.
func (e *Element) Tag() string { return e.node.Data }

// Is reports whether both handles point at the same node.
func (e *Element) Is(other *Element) bool {
	return other != nil && e.node == other.node
}

func (e *Element) sel() *goquery.Selection {
	return goquery.NewDocumentFromNode(e.node).Selection
}

// Attr returns an attribute value and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return e.sel().Attr(name)
}

// SetAttr sets an attribute, replacing any previous value. Invalid names
// leave the element untouched.
func (e *Element) SetAttr(name, value string) error {
	if !ValidAttrName(name) {
		return invalidName("attribute", name)
	}
	e.doc.mu.Lock()
	e.sel().SetAttr(name, value)
	e.doc.mu.Unlock()
	e.doc.notify(Mutation{Kind: MutationAttr, Target: e, Name: name})
	return nil
}

// RemoveAttr drops an attribute.
func (e *Element) RemoveAttr(name string) {
	e.doc.mu.Lock()
	e.sel().RemoveAttr(name)
	e.doc.mu.Unlock()
	e.doc.notify(Mutation{Kind: MutationAttr, Target: e, Name: name})
}

// HTML returns the inner markup.
func (e *Element) HTML() (string, error) {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return e.sel().Html()
}

// SetHTML replaces the children with parsed markup.
func (e *Element) SetHTML(markup string) {
	e.doc.mu.Lock()
	e.sel().SetHtml(markup)
	e.doc.mu.Unlock()
	e.doc.notify(Mutation{Kind: MutationHTML, Target: e})
}

// AppendHTML parses markup and appends the resulting nodes.
func (e *Element) AppendHTML(markup string) {
	e.doc.mu.Lock()
	before := e.node.LastChild
	e.sel().AppendHtml(markup)
	var added *html.Node
	if e.node.LastChild != before {
		added = e.node.LastChild
	}
	e.doc.mu.Unlock()
	m := Mutation{Kind: MutationAppend, Target: e}
	if added != nil {
		m.Added = &Element{doc: e.doc, node: added}
	}
	e.doc.notify(m)
}

// Text returns the combined text content.
func (e *Element) Text() string {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return e.sel().Text()
}

// SetText replaces the children with a single text node.
func (e *Element) SetText(text string) {
	e.doc.mu.Lock()
	e.sel().SetText(text)
	e.doc.mu.Unlock()
	e.doc.notify(Mutation{Kind: MutationHTML, Target: e})
}

// AppendChild attaches child as the last child, detaching it first if needed.
func (e *Element) AppendChild(child *Element) {
	e.doc.mu.Lock()
	if child.node.Parent != nil {
		child.node.Parent.RemoveChild(child.node)
	}
	e.node.AppendChild(child.node)
	e.doc.mu.Unlock()
	e.doc.notify(Mutation{Kind: MutationAppend, Target: e, Added: child})
}

// Children returns the element children in order.
func (e *Element) Children() []*Element {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	var out []*Element
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, &Element{doc: e.doc, node: c})
		}
	}
	return out
}

// SetEditable toggles contenteditable.
func (e *Element) SetEditable(on bool) {
	value := "false"
	if on {
		value = "true"
	}
	_ = e.SetAttr("contenteditable", value)
}

// Editable reports whether contenteditable is "true".
func (e *Element) Editable() bool {
	v, _ := e.Attr("contenteditable")
	return v == "true"
}

// Focus makes e the active element.
func (e *Element) Focus() {
	e.doc.mu.Lock()
	e.doc.active = e.node
	e.doc.mu.Unlock()
	e.doc.notify(Mutation{Kind: MutationFocus, Target: e})
}

// Blur clears focus if e holds it.
func (e *Element) Blur() {
	e.doc.mu.Lock()
	changed := e.doc.active == e.node
	if changed {
		e.doc.active = nil
	}
	e.doc.mu.Unlock()
	if changed {
		e.doc.notify(Mutation{Kind: MutationFocus, Target: e})
	}
}

// ScrollHeight is the number of element children; there is no layout, so
// one child counts as one row.
func (e *Element) ScrollHeight() int {
	return len(e.Children())
}

// ScrollTop returns the last scroll position set on e.
func (e *Element) ScrollTop() int {
	e.doc.mu.RLock()
	defer e.doc.mu.RUnlock()
	return e.doc.scrollTop[e.node]
}

// ScrollToBottom sets scrollTop to scrollHeight.
func (e *Element) ScrollToBottom() {
	h := e.ScrollHeight()
	e.doc.mu.Lock()
	e.doc.scrollTop[e.node] = h
	e.doc.mu.Unlock()
	e.doc.notify(Mutation{Kind: MutationScroll, Target: e})
}

// BindClick attaches a named callback. Unknown names are ignored.
func (e *Element) BindClick(name string) bool {
	if !e.doc.HasCallback(name) {
		return false
	}
	e.doc.mu.Lock()
	e.doc.onClick[e.node] = name
	e.doc.mu.Unlock()
	return true
}
