package registry

import (
	"strings"

	"github.com/QuadTriangle/domlink/internal/dom"
	"github.com/QuadTriangle/domlink/internal/wire"
)

// Command names.
const (
	CmdAppendElement   = "appendElement"
	CmdAppend          = "append"
	CmdInnerHTML       = "innerHTML"
	CmdEditable        = "editable"
	CmdFocus           = "focus"
	CmdSetAttribute    = "setAttribute"
	CmdGetAttribute    = "getAttribute"
	CmdGetProperty     = "getProperty"
	CmdExists          = "exists"
	CmdGetHTML         = "getHTML"
	CmdScroll          = "scroll"
	CmdBackground      = "background"
	CmdBackgroundColor = "background-color"
	CmdColor           = "color"
	CmdBorder          = "border"
	CmdBorderColor     = "border-color"
)

// StyleShorthands are the inline style properties a server may set directly.
var StyleShorthands = []string{
	CmdBackground, CmdBackgroundColor, CmdColor, CmdBorder, CmdBorderColor,
}

// Default returns the standard allow-list.
func Default() *Registry {
	handlers := []Handler{
		{
			Name:   CmdAppendElement,
			Desc:   "create an element and append it under the selected parent",
			Target: TargetRequired,
			Run:    appendElement,
		},
		{
			Name:   CmdAppend,
			Desc:   "append raw markup under the selected element",
			Target: TargetRequired,
			Run: func(_ *dom.Document, el *dom.Element, cmd wire.Command) (string, error) {
				el.AppendHTML(cmd.Arg(wire.FieldHTML))
				return "", nil
			},
		},
		{
			Name:   CmdInnerHTML,
			Desc:   "replace the inner HTML of the selected element",
			Target: TargetRequired,
			Run: func(_ *dom.Document, el *dom.Element, cmd wire.Command) (string, error) {
				el.SetHTML(cmd.Arg(wire.FieldValue))
				return "", nil
			},
		},
		{
			Name:   CmdEditable,
			Desc:   "toggle contentEditable",
			Target: TargetRequired,
			Run: func(_ *dom.Document, el *dom.Element, cmd wire.Command) (string, error) {
				el.SetEditable(cmd.Flag(wire.FieldValue))
				return "", nil
			},
		},
		{
			Name:   CmdFocus,
			Desc:   "focus (Value=true) or blur the selected element",
			Target: TargetRequired,
			Run: func(_ *dom.Document, el *dom.Element, cmd wire.Command) (string, error) {
				if cmd.Flag(wire.FieldValue) {
					el.Focus()
				} else {
					el.Blur()
				}
				return "", nil
			},
		},
		{
			Name:   CmdSetAttribute,
			Desc:   "set an attribute",
			Target: TargetRequired,
			Run: func(_ *dom.Document, el *dom.Element, cmd wire.Command) (string, error) {
				name := strings.TrimSpace(cmd.Arg(wire.FieldAttribute))
				if name == "" {
					return "", nil
				}
				return "", el.SetAttr(name, cmd.Arg(wire.FieldValue))
			},
		},
		{
			Name:   CmdScroll,
			Desc:   "scroll the selected element to the bottom",
			Target: TargetRequired,
			Run: func(_ *dom.Document, el *dom.Element, _ wire.Command) (string, error) {
				el.ScrollToBottom()
				return "", nil
			},
		},
		{
			Name:   CmdGetAttribute,
			Desc:   "send an attribute value upstream",
			Target: TargetRequired,
			Query:  true,
			Run: func(_ *dom.Document, el *dom.Element, cmd wire.Command) (string, error) {
				v, _ := el.Attr(cmd.Arg(wire.FieldAttribute))
				return v, nil
			},
		},
		{
			Name:   CmdGetProperty,
			Desc:   "send a style property value upstream",
			Target: TargetRequired,
			Query:  true,
			Run: func(_ *dom.Document, el *dom.Element, cmd wire.Command) (string, error) {
				return el.Style(cmd.Arg(wire.FieldProperty)), nil
			},
		},
		{
			Name:   CmdExists,
			Desc:   "send \"true\" or \"false\" depending on whether the selector matches",
			Target: TargetOptional,
			Query:  true,
			Run: func(_ *dom.Document, el *dom.Element, _ wire.Command) (string, error) {
				if el == nil {
					return "false", nil
				}
				return "true", nil
			},
		},
		{
			Name:   CmdGetHTML,
			Desc:   "send the inner HTML upstream",
			Target: TargetRequired,
			Query:  true,
			Run: func(_ *dom.Document, el *dom.Element, _ wire.Command) (string, error) {
				return el.HTML()
			},
		},
	}
	for _, prop := range StyleShorthands {
		handlers = append(handlers, styleHandler(prop))
	}

	r, err := build(handlers...)
	if err != nil {
		// The table above is static; a failure here is a programming error.
		panic(err)
	}
	return r
}

func styleHandler(property string) Handler {
	return Handler{
		Name:   property,
		Desc:   "set the inline " + property + " style",
		Target: TargetRequired,
		Run: func(_ *dom.Document, el *dom.Element, cmd wire.Command) (string, error) {
			return "", el.SetStyle(property, cmd.Arg(wire.FieldValue))
		},
	}
}

// appendElement builds the new node fully before attaching it so observers
// see a complete element. A rejected tag or attribute name returns before the
// parent is touched.
func appendElement(doc *dom.Document, parent *dom.Element, cmd wire.Command) (string, error) {
	child, err := doc.CreateElement(cmd.Arg(wire.FieldElement))
	if err != nil {
		return "", err
	}

	attrs := []struct{ name, value string }{
		{"class", cmd.Arg(wire.FieldClass)},
		{"id", cmd.Arg(wire.FieldID)},
		{"href", cmd.Arg(wire.FieldHref)},
		{"target", cmd.Arg(wire.FieldTarget)},
	}
	for _, a := range attrs {
		if a.value == "" {
			continue
		}
		if err := child.SetAttr(a.name, a.value); err != nil {
			return "", err
		}
	}
	if attr := strings.TrimSpace(cmd.Arg(wire.FieldAttribute)); attr != "" {
		if err := child.SetAttr(attr, cmd.Arg(wire.FieldValue)); err != nil {
			return "", err
		}
	}
	if v := cmd.Arg(wire.FieldText); v != "" {
		child.SetText(v)
	}
	if v := cmd.Arg(wire.FieldHTML); v != "" {
		child.AppendHTML(v)
	}
	if v := cmd.Arg(wire.FieldOnClick); v != "" {
		child.BindClick(v)
	}

	parent.AppendChild(child)

	if cmd.Flag(wire.FieldFocus) {
		child.Focus()
	}
	if cmd.Flag(wire.FieldScroll) {
		parent.ScrollToBottom()
	}
	return "", nil
}
