// Package bonding models CGSmiles bonding descriptors: the `$`, `<` and `>`
// markers that declare where a fragment instance may bond to a neighbouring
// instance.
package bonding

import (
	"fmt"
	"strings"
)

// Kind is the directionality of a bonding descriptor.
type Kind uint8

const (
	// Undirected (`$`) bonds only to another Undirected descriptor.
	Undirected Kind = iota + 1
	// Left (`<`) bonds only to Right.
	Left
	// Right (`>`) bonds only to Left.
	Right
)

// Symbol returns the textual marker of the kind.
func (k Kind) Symbol() byte {
	switch k {
	case Undirected:
		return '$'
	case Left:
		return '<'
	case Right:
		return '>'
	default:
		return '?'
	}
}

func (k Kind) String() string {
	switch k {
	case Undirected:
		return "undirected"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// complement returns the kind a descriptor of kind k pairs with.
func (k Kind) complement() Kind {
	switch k {
	case Left:
		return Right
	case Right:
		return Left
	default:
		return k
	}
}

// KindOf maps a marker byte to its Kind.
func KindOf(c byte) (Kind, bool) {
	switch c {
	case '$':
		return Undirected, true
	case '<':
		return Left, true
	case '>':
		return Right, true
	}
	return 0, false
}

// IsMarker reports whether c opens a bonding descriptor.
func IsMarker(c byte) bool {
	_, ok := KindOf(c)
	return ok
}

// Descriptor is a bonding descriptor. An empty Label means unlabeled.
type Descriptor struct {
	Kind  Kind
	Label string
}

// String renders the descriptor in notation form, e.g. "$", "<1".
func (d Descriptor) String() string {
	return string(d.Kind.Symbol()) + d.Label
}

// Labeled reports whether the descriptor carries an identifier.
func (d Descriptor) Labeled() bool {
	return d.Label != ""
}

// Matches reports whether a and b may be consumed together to form a bond.
// The relation is symmetric.
func Matches(a, b Descriptor) bool {
	if a.Kind == 0 || b.Kind == 0 {
		return false
	}
	if a.Kind.complement() != b.Kind {
		return false
	}
	return a.Label == b.Label
}

// Rank orders matches: a labeled match outranks an unlabeled one.
type Rank int

const (
	NoMatch Rank = iota
	UnlabeledMatch
	LabeledMatch
)

// RankOf returns the rank of pairing a with b.
func RankOf(a, b Descriptor) Rank {
	if !Matches(a, b) {
		return NoMatch
	}
	if a.Labeled() {
		return LabeledMatch
	}
	return UnlabeledMatch
}

// Parse reads exactly one descriptor from s.
func Parse(s string) (Descriptor, error) {
	d, n, err := Scan(s)
	if err != nil {
		return Descriptor{}, err
	}
	if n != len(s) {
		return Descriptor{}, fmt.Errorf("trailing characters %q after descriptor %q", s[n:], s[:n])
	}
	return d, nil
}

// Scan reads one descriptor from the start of s and returns the number of
// bytes consumed. Labels are runs of decimal digits.
func Scan(s string) (Descriptor, int, error) {
	if s == "" {
		return Descriptor{}, 0, fmt.Errorf("empty bonding descriptor")
	}
	kind, ok := KindOf(s[0])
	if !ok {
		return Descriptor{}, 0, fmt.Errorf("invalid bonding descriptor marker %q", s[0])
	}
	n := 1
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return Descriptor{Kind: kind, Label: s[1:n]}, n, nil
}

// ScanAll reads a run of consecutive descriptors, e.g. "$1<" -> [$1, <].
func ScanAll(s string) ([]Descriptor, error) {
	var out []Descriptor
	for s != "" {
		d, n, err := Scan(s)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
		s = s[n:]
	}
	return out, nil
}

// Join renders a pool as a comma separated list.
func Join(pool []Descriptor) string {
	parts := make([]string, len(pool))
	for i, d := range pool {
		parts[i] = d.String()
	}
	return strings.Join(parts, ",")
}

// Strings renders a pool as notation strings.
func Strings(pool []Descriptor) []string {
	out := make([]string, len(pool))
	for i, d := range pool {
		out[i] = d.String()
	}
	return out
}
