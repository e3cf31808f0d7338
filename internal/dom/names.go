package dom

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	ErrInvalidName  = errors.New("invalid name")
	ErrInvalidStyle = errors.New("invalid style declaration")
)

var tagNameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]*$`)

// ValidTagName reports whether tag is a plain HTML element name.
func ValidTagName(tag string) bool {
	return tagNameRe.MatchString(tag)
}

// ValidAttrName reports whether name can be serialized as an attribute name
// without changing the surrounding markup.
func ValidAttrName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if unicode.IsSpace(r) || unicode.IsControl(r) || r == unicode.ReplacementChar {
			return false
		}
		if strings.ContainsRune(`"'<>/=`, r) {
			return false
		}
	}
	return true
}

func invalidName(kind, name string) error {
	return fmt.Errorf("%w: %s %q", ErrInvalidName, kind, name)
}
