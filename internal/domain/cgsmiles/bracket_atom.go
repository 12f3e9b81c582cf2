package cgsmiles

import (
	"fmt"
	"strconv"

	"github.com/turtacn/cgsmiles/internal/domain/bonding"
	"github.com/turtacn/cgsmiles/internal/domain/molgraph"
)

// bracketError locates a failure inside the bracket content.
type bracketError struct {
	offset int
	msg    string
}

func (e *bracketError) Error() string { return e.msg }

// Field bounds for bracket atoms. The hydrogen count is a single digit and
// charges are limited to ±15.
const (
	maxIsotopeDigits = 3
	maxChargeDigits  = 2
	maxCharge        = 15
)

var aromaticBracketSymbols = map[string]string{
	"b": "B", "c": "C", "n": "N", "o": "O", "p": "P", "s": "S",
	"se": "Se", "as": "As", "te": "Te", "si": "Si",
}

// parseBracketAtom reads `isotope? symbol chirality? hcount? charge? class?
// descriptors*` from the content of a bracket atom. Isotope, chirality and
// class are accepted and discarded.
func parseBracketAtom(content string) (parsedAtom, *bracketError) {
	atom := parsedAtom{HCount: -1}
	i := 0

	for i < len(content) && isDigit(content[i]) {
		i++
	}
	if i > maxIsotopeDigits {
		return atom, &bracketError{offset: 0, msg: fmt.Sprintf("isotope %q has more than %d digits", content[:i], maxIsotopeDigits)}
	}

	symStart := i
	sym, aromatic, n := readBracketSymbol(content[i:])
	if n == 0 {
		return atom, &bracketError{offset: symStart, msg: fmt.Sprintf("unknown atom in bracket %q", content)}
	}
	atom.Element = sym
	atom.Aromatic = aromatic
	i += n

	for i < len(content) && content[i] == '@' {
		i++
	}

	if i < len(content) && content[i] == 'H' {
		i++
		j := i
		for j < len(content) && isDigit(content[j]) {
			j++
		}
		switch j - i {
		case 0:
			atom.HCount = 1
		case 1:
			atom.HCount = int(content[i] - '0')
		default:
			return atom, &bracketError{offset: i, msg: fmt.Sprintf("hydrogen count %q must be a single digit", content[i:j])}
		}
		i = j
	}

	if i < len(content) && (content[i] == '+' || content[i] == '-') {
		sign := 1
		if content[i] == '-' {
			sign = -1
		}
		c := content[i]
		i++
		j := i
		for j < len(content) && isDigit(content[j]) {
			j++
		}
		mag := 1
		switch {
		case j-i > maxChargeDigits:
			return atom, &bracketError{offset: i, msg: fmt.Sprintf("charge %q is out of range", content[i:j])}
		case j > i:
			v, err := strconv.Atoi(content[i:j])
			if err != nil {
				return atom, &bracketError{offset: i, msg: fmt.Sprintf("invalid charge %q", content[i:j])}
			}
			mag = v
			i = j
		default:
			for i < len(content) && content[i] == c {
				mag++
				i++
			}
		}
		if mag > maxCharge {
			return atom, &bracketError{offset: i, msg: fmt.Sprintf("charge magnitude %d exceeds %d", mag, maxCharge)}
		}
		atom.Charge = sign * mag
	}

	if i < len(content) && content[i] == ':' {
		i++
		j := i
		for j < len(content) && isDigit(content[j]) {
			j++
		}
		if j == i {
			return atom, &bracketError{offset: i, msg: "atom class must be a number"}
		}
		i = j
	}

	if i < len(content) {
		if !bonding.IsMarker(content[i]) {
			return atom, &bracketError{offset: i, msg: fmt.Sprintf("unexpected character %q in bracket atom", content[i])}
		}
		descs, err := bonding.ScanAll(content[i:])
		if err != nil {
			return atom, &bracketError{offset: i, msg: fmt.Sprintf("invalid bonding descriptor: %v", err)}
		}
		atom.Bonding = descs
	}
	return atom, nil
}

// readBracketSymbol returns the element symbol at the start of s, whether it
// was written in aromatic form and the number of bytes consumed.
func readBracketSymbol(s string) (string, bool, int) {
	if s == "" {
		return "", false, 0
	}
	if len(s) >= 2 {
		if el, ok := aromaticBracketSymbols[s[:2]]; ok {
			return el, true, 2
		}
	}
	if el, ok := aromaticBracketSymbols[s[:1]]; ok {
		return el, true, 1
	}
	if s[0] < 'A' || s[0] > 'Z' {
		return "", false, 0
	}
	if len(s) >= 2 && s[1] >= 'a' && s[1] <= 'z' && molgraph.IsElement(s[:2]) {
		return s[:2], false, 2
	}
	if molgraph.IsElement(s[:1]) {
		return s[:1], false, 1
	}
	return "", false, 0
}
