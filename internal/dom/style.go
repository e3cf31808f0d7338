package dom

import (
	"fmt"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

// Style returns the inline value of a style property. Without a layout
// engine the inline declaration is the computed value.
func (e *Element) Style(property string) string {
	raw, _ := e.Attr("style")
	property = strings.ToLower(strings.TrimSpace(property))
	for _, decl := range parseStyle(raw) {
		if decl.Property == property {
			return decl.Value
		}
	}
	return ""
}

// SetStyle sets one inline style property, keeping the others in place. The
// value must parse as a single declaration of that property; anything else
// is rejected and the element is left untouched. An empty value removes the
// property.
func (e *Element) SetStyle(property, value string) error {
	property = strings.ToLower(strings.TrimSpace(property))
	if property == "" {
		return fmt.Errorf("%w: empty property", ErrInvalidStyle)
	}
	var next *css.Declaration
	if strings.TrimSpace(value) != "" {
		if strings.ContainsAny(value, "{};") {
			return fmt.Errorf("%w: %s", ErrInvalidStyle, property)
		}
		parsed, err := parser.ParseDeclarations(property + ": " + value + ";")
		if err != nil || len(parsed) != 1 || strings.ToLower(parsed[0].Property) != property {
			return fmt.Errorf("%w: %s", ErrInvalidStyle, property)
		}
		next = parsed[0]
		next.Property = property
	}

	raw, _ := e.Attr("style")
	decls := parseStyle(raw)
	out := decls[:0]
	replaced := false
	for _, decl := range decls {
		if decl.Property != property {
			out = append(out, decl)
			continue
		}
		if next != nil && !replaced {
			out = append(out, next)
			replaced = true
		}
	}
	if next != nil && !replaced {
		out = append(out, next)
	}

	e.doc.mu.Lock()
	e.sel().SetAttr("style", formatStyle(out))
	e.doc.mu.Unlock()
	e.doc.notify(Mutation{Kind: MutationStyle, Target: e, Name: property})
	return nil
}

// parseStyle reads a style attribute. The parser only assigns a value once it
// sees a terminator, so a missing final ";" is added.
func parseStyle(raw string) []*css.Declaration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if !strings.HasSuffix(raw, ";") {
		raw += ";"
	}
	decls, err := parser.ParseDeclarations(raw)
	if err != nil {
		return nil
	}
	for _, d := range decls {
		d.Property = strings.ToLower(d.Property)
	}
	return decls
}

func formatStyle(decls []*css.Declaration) string {
	var b strings.Builder
	for i, d := range decls {
		if d.Value == "" {
			continue
		}
		if i > 0 && b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(d.Property)
		b.WriteString(": ")
		b.WriteString(d.Value)
		if d.Important {
			b.WriteString(" !important")
		}
		b.WriteString(";")
	}
	return b.String()
}
