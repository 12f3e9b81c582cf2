package cgsmiles

import (
	"strings"
)

// FragmentDef is one `#name=smiles` entry of the fragment dictionary.
type FragmentDef struct {
	Name   string
	SMILES string
}

// key identifies the definition in the template cache.
func (d FragmentDef) key() string {
	return d.Name + "=" + d.SMILES
}

// Notation is a CGSmiles string split into its meta block and dictionary.
type Notation struct {
	Meta      string
	Fragments []FragmentDef
	byName    map[string]int
}

// Lookup returns the definition registered under name.
func (n *Notation) Lookup(name string) (FragmentDef, bool) {
	i, ok := n.byName[name]
	if !ok {
		return FragmentDef{}, false
	}
	return n.Fragments[i], true
}

// ParseNotation splits `{meta}.{#a=..,#b=..}[.{...}]` into its blocks. The
// first block is the meta block; every following block is a dictionary.
func ParseNotation(s string) (*Notation, error) {
	blocks, starts, err := splitBlocks(s)
	if err != nil {
		return nil, err
	}
	n := &Notation{Meta: blocks[0], byName: make(map[string]int)}
	for i, block := range blocks[1:] {
		if err := n.parseDictionary(block, starts[i+1]); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// splitBlocks returns the contents of the top-level brace blocks and the
// offset of each content in s.
func splitBlocks(s string) ([]string, []int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil, grammarError(metaScope, 0, "empty notation")
	}
	var blocks []string
	var starts []int
	i := 0
	for {
		if i >= len(s) || s[i] != '{' {
			return nil, nil, grammarError(metaScope, i, "expected '{'")
		}
		end := strings.IndexAny(s[i+1:], "{}")
		if end < 0 || s[i+1+end] != '}' {
			return nil, nil, grammarError(metaScope, i, "unbalanced braces")
		}
		blocks = append(blocks, s[i+1:i+1+end])
		starts = append(starts, i+1)
		i += end + 2
		if i == len(s) {
			return blocks, starts, nil
		}
		if s[i] != '.' {
			return nil, nil, grammarError(metaScope, i, "unexpected character %q between blocks", s[i])
		}
		i++
	}
}

// parseDictionary reads comma separated `#name=smiles` entries.
func (n *Notation) parseDictionary(block string, offset int) error {
	pos := offset
	for _, entry := range splitTopLevel(block, ',') {
		if err := n.addEntry(entry, pos); err != nil {
			return err
		}
		pos += len(entry) + 1
	}
	return nil
}

func (n *Notation) addEntry(entry string, pos int) error {
	if entry == "" {
		return grammarError(metaScope, pos, "empty fragment definition")
	}
	if entry[0] != '#' {
		return grammarError(metaScope, pos, "fragment definition must start with '#'")
	}
	eq := strings.IndexByte(entry, '=')
	if eq < 0 {
		return grammarError(metaScope, pos, "fragment definition is missing '='")
	}
	name := entry[1:eq]
	if err := checkFragmentName(name, pos+1); err != nil {
		return err
	}
	smiles := entry[eq+1:]
	if smiles == "" {
		return grammarError(name, pos+eq+1, "empty fragment SMILES")
	}
	if _, dup := n.byName[name]; dup {
		return grammarError(name, pos, "fragment %q defined twice", name)
	}
	n.byName[name] = len(n.Fragments)
	n.Fragments = append(n.Fragments, FragmentDef{Name: name, SMILES: smiles})
	return nil
}

func checkFragmentName(name string, pos int) error {
	if name == "" {
		return grammarError(metaScope, pos, "empty fragment name")
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '-':
		default:
			return grammarError(metaScope, pos+i, "invalid character %q in fragment name", c)
		}
	}
	return nil
}

// splitTopLevel splits s on sep outside square brackets.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
