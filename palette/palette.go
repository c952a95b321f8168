// Package palette maps cluster indices to presentation color tokens.
//
// A Palette is a fixed, ordered list of tokens. Index i renders as
// p[i mod len(p)], so palettes shorter than k cycle predictably and the same
// index always renders the same color for the whole run.
package palette

import (
	"fmt"
	"strings"
)

// Palette is an ordered list of CSS color tokens.
type Palette []string

// Default is a ten-entry qualitative palette in rgb() notation.
var Default = Palette{
	"rgb(31,119,180)",
	"rgb(255,127,14)",
	"rgb(44,160,44)",
	"rgb(214,39,40)",
	"rgb(148,103,189)",
	"rgb(140,86,75)",
	"rgb(227,119,194)",
	"rgb(127,127,127)",
	"rgb(188,189,34)",
	"rgb(23,190,207)",
}

// Color returns the token for cluster index i. Negative indices are folded
// into range. An empty palette falls back to Default.
func (p Palette) Color(i int) string {
	if len(p) == 0 {
		return Default.Color(i)
	}
	m := i % len(p)
	if m < 0 {
		m += len(p)
	}
	return p[m]
}

// Colors returns the tokens for indices 0..k-1.
func (p Palette) Colors(k int) []string {
	if k <= 0 {
		return nil
	}
	out := make([]string, k)
	for i := range out {
		out[i] = p.Color(i)
	}
	return out
}

// RGB builds an rgb() token.
func RGB(r, g, b uint8) string {
	return fmt.Sprintf("rgb(%d,%d,%d)", r, g, b)
}

// Parse splits a comma separated list of tokens, e.g. from a flag.
// Tokens in rgb() notation keep their inner commas.
func Parse(s string) (Palette, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var (
		out   Palette
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("palette: unbalanced ')' at offset %d", i)
			}
		case ',':
			if depth == 0 {
				if tok := strings.TrimSpace(s[start:i]); tok != "" {
					out = append(out, tok)
				}
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("palette: unbalanced '(' in %q", s)
	}
	if tok := strings.TrimSpace(s[start:]); tok != "" {
		out = append(out, tok)
	}
	return out, nil
}
