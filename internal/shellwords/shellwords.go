// Package shellwords splits typed input into arguments. Anything in ``, ''
// or "" is one argument, spaces included; quote characters are kept.
package shellwords

import "regexp"

// Quoted spans are lazy: 'a' 'b' is two tokens, where a greedy match gives one.
var tokenRe = regexp.MustCompile("`[^`]*`" + `|'[^'\n\f\v]*'|"[^"\t\n\f\r\v]*"|\S+`)

// Split returns the tokens of s in order. An unmatched quote does not open
// a span; the run it starts is returned as a bare token.
func Split(s string) []string {
	return tokenRe.FindAllString(s, -1)
}
