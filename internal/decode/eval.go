package decode

import (
	"errors"
	"fmt"
	"strings"

	"github.com/QuadTriangle/domlink/internal/wire"
)

// evalSetProperty is rewritten to the style shorthand named by its second
// argument, so the shorthand allow-list still applies.
const evalSetProperty = "setProperty"

// evalSignatures maps call names to the fields their positional arguments
// fill. The first field is always the selector.
var evalSignatures = map[string][]string{
	"append":        {wire.FieldSelector, wire.FieldHTML},
	"innerHTML":     {wire.FieldSelector, wire.FieldValue},
	"editable":      {wire.FieldSelector, wire.FieldValue},
	"focus":         {wire.FieldSelector, wire.FieldValue},
	"setAttribute":  {wire.FieldSelector, wire.FieldAttribute, wire.FieldValue},
	"getAttribute":  {wire.FieldSelector, wire.FieldAttribute},
	"getProperty":   {wire.FieldSelector, wire.FieldProperty},
	"exists":        {wire.FieldSelector},
	"getHTML":       {wire.FieldSelector},
	"scroll":        {wire.FieldSelector},
	evalSetProperty: {wire.FieldSelector, wire.FieldProperty, wire.FieldValue},
}

func (d *Decoder) decodeEval(msg string) (wire.Command, error) {
	s := strings.TrimSpace(msg)
	s = strings.TrimSuffix(s, ";")

	open := strings.IndexByte(s, '(')
	if open <= 0 {
		return wire.Command{}, fmt.Errorf("%w: not a call", ErrIgnored)
	}
	name := strings.TrimSpace(s[:open])
	fields, ok := evalSignatures[name]
	if !ok {
		return wire.Command{}, fmt.Errorf("%w: call %q not allowed", ErrIgnored, name)
	}
	if !strings.HasSuffix(s, ")") {
		return wire.Command{}, fmt.Errorf("%w: unterminated call %q", ErrIgnored, name)
	}

	args, err := parseArgs(s[open+1 : len(s)-1])
	if err != nil {
		return wire.Command{}, fmt.Errorf("%w: %s: %v", ErrIgnored, name, err)
	}
	if len(args) > len(fields) {
		return wire.Command{}, fmt.Errorf("%w: %s takes %d arguments, got %d", ErrIgnored, name, len(fields), len(args))
	}

	cmd := wire.Command{Name: name, Args: make(map[string]string, len(args))}
	for i, arg := range args {
		if fields[i] == wire.FieldSelector {
			cmd.Selector = arg
			continue
		}
		cmd.Args[fields[i]] = arg
	}
	if name == evalSetProperty {
		cmd.Name = strings.ToLower(strings.TrimSpace(cmd.Args[wire.FieldProperty]))
		delete(cmd.Args, wire.FieldProperty)
	}
	if !d.allowed(cmd.Name) {
		return wire.Command{}, fmt.Errorf("%w: command %q not allowed", ErrIgnored, cmd.Name)
	}
	return cmd, nil
}

// parseArgs reads a comma-separated list of quoted strings and bare
// literals.
func parseArgs(s string) ([]string, error) {
	var args []string
	i := 0
	skipSpace := func() {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
			i++
		}
	}

	skipSpace()
	if i == len(s) {
		return nil, nil
	}
	for {
		skipSpace()
		if i == len(s) {
			return nil, errors.New("missing argument")
		}
		var arg string
		if q := s[i]; q == '"' || q == '\'' {
			v, n, err := readQuoted(s[i:], q)
			if err != nil {
				return nil, err
			}
			arg, i = v, i+n
		} else {
			start := i
			for i < len(s) && s[i] != ',' {
				i++
			}
			arg = strings.TrimSpace(s[start:i])
			if arg == "" {
				return nil, errors.New("empty argument")
			}
		}
		args = append(args, arg)

		skipSpace()
		if i == len(s) {
			return args, nil
		}
		if s[i] != ',' {
			return nil, fmt.Errorf("unexpected %q after argument %d", s[i], len(args))
		}
		i++
	}
}

// readQuoted reads a string literal starting at s[0] == q and returns its
// value and the number of bytes consumed.
func readQuoted(s string, q byte) (string, int, error) {
	var b strings.Builder
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\':
			if i+1 == len(s) {
				return "", 0, errors.New("dangling escape")
			}
			i++
			switch s[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(s[i])
			}
		case c == q:
			return b.String(), i + 1, nil
		default:
			b.WriteByte(c)
		}
	}
	return "", 0, errors.New("unterminated string")
}
