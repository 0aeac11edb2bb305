// Package selection turns channel selection strings into boolean masks.
//
// A selection is a list of tokens separated by spaces, commas or semicolons:
//
//	*          every channel
//	Cz         a channel name (case-insensitive)
//	12         a 1-based channel index
//	F3-F8      a range, by names or by indices, in either direction
//	!T7        removes the following token from the selection
//
// Tokens apply from left to right, so "* !Cz" selects all but Cz.
package selection

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownChannel is returned for tokens that match no channel
var ErrUnknownChannel = errors.New("unknown channel")

// Selector is the default channel selector
type Selector struct{}

// Select implements the channel selector collaborator of the interpolation engine
func (Selector) Select(expr string, names []string) ([]bool, error) {
	return Parse(expr, names)
}

// Parse returns the mask of channels selected by expr
func Parse(expr string, names []string) ([]bool, error) {
	mask := make([]bool, len(names))

	index := make(map[string]int, len(names))
	for i, name := range names {
		key := strings.ToLower(name)
		if _, ok := index[key]; !ok {
			index[key] = i
		}
	}

	tokens := strings.FieldsFunc(expr, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ',' || r == ';' || r == '\n'
	})

	for _, tok := range tokens {
		value := true
		if strings.HasPrefix(tok, "!") {
			value = false
			tok = tok[1:]
			if tok == "" {
				return nil, fmt.Errorf("dangling '!' in selection %q", expr)
			}
		}

		from, to, err := resolve(tok, index, len(names))
		if err != nil {
			return nil, err
		}
		if from > to {
			from, to = to, from
		}
		for i := from; i <= to; i++ {
			mask[i] = value
		}
	}

	return mask, nil
}

// resolve returns the inclusive index range a token designates
func resolve(tok string, index map[string]int, n int) (int, int, error) {
	if tok == "*" {
		if n == 0 {
			return 0, -1, nil
		}
		return 0, n - 1, nil
	}

	// A whole-token name wins over a range reading, for names like "A1-A2"
	if i, ok := lookup(tok, index, n); ok {
		return i, i, nil
	}

	if dash := strings.Index(tok, "-"); dash > 0 && dash < len(tok)-1 {
		from, ok1 := lookup(tok[:dash], index, n)
		to, ok2 := lookup(tok[dash+1:], index, n)
		if ok1 && ok2 {
			return from, to, nil
		}
	}

	return 0, 0, fmt.Errorf("%w: %q", ErrUnknownChannel, tok)
}

func lookup(tok string, index map[string]int, n int) (int, bool) {
	if i, ok := index[strings.ToLower(tok)]; ok {
		return i, true
	}
	if v, err := strconv.Atoi(tok); err == nil && v >= 1 && v <= n {
		return v - 1, true
	}
	return 0, false
}

// Names returns the names whose mask entry is set
func Names(mask []bool, names []string) []string {
	var out []string
	for i, on := range mask {
		if on && i < len(names) {
			out = append(out, names[i])
		}
	}
	return out
}
