// Package molecule defines the request and response documents of the resolve
// API. No domain logic lives here, only plain data types that are safe to
// import from any layer.
package molecule

import (
	"sort"
	"strconv"
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// Requests
// ─────────────────────────────────────────────────────────────────────────────

// ResolveRequest asks for the resolution of one CGSmiles notation.
type ResolveRequest struct {
	Notation string `json:"notation" yaml:"notation" binding:"required"`
}

// ValidateRequest asks for a syntax check of one CGSmiles notation.
type ValidateRequest struct {
	Notation string `json:"notation" yaml:"notation" binding:"required"`
}

// TemplatesRequest asks for the parsed fragment dictionary of a notation.
type TemplatesRequest struct {
	Notation string `json:"notation" yaml:"notation" binding:"required"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Molecule graph
// ─────────────────────────────────────────────────────────────────────────────

// AtomDTO is one atom of the resolved molecule.
type AtomDTO struct {
	ID       int    `json:"id" yaml:"id"`
	Element  string `json:"element" yaml:"element"`
	Aromatic bool   `json:"aromatic,omitempty" yaml:"aromatic,omitempty"`
	Charge   int    `json:"charge,omitempty" yaml:"charge,omitempty"`
	// MetaNode is the fragment instance the atom belongs to.
	MetaNode int `json:"meta_node" yaml:"meta_node"`
	// Bonding lists the descriptors left on the atom after resolution.
	Bonding []string `json:"bonding,omitempty" yaml:"bonding,omitempty"`
}

// BondDTO is one bond of the resolved molecule with A < B.
type BondDTO struct {
	A        int  `json:"a" yaml:"a"`
	B        int  `json:"b" yaml:"b"`
	Order    int  `json:"order" yaml:"order"`
	Aromatic bool `json:"aromatic,omitempty" yaml:"aromatic,omitempty"`
}

// MoleculeDTO is the atom-level graph.
type MoleculeDTO struct {
	Formula string    `json:"formula" yaml:"formula"`
	Atoms   []AtomDTO `json:"atoms" yaml:"atoms"`
	Bonds   []BondDTO `json:"bonds" yaml:"bonds"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Meta graph
// ─────────────────────────────────────────────────────────────────────────────

// MetaNodeDTO is one fragment instance.
type MetaNodeDTO struct {
	ID       int    `json:"id" yaml:"id"`
	Fragment string `json:"fragment" yaml:"fragment"`
	AtomIDs  []int  `json:"atom_ids" yaml:"atom_ids"`
}

// MetaEdgeDTO is one meta edge and the atoms that realize it.
type MetaEdgeDTO struct {
	From       int       `json:"from" yaml:"from"`
	To         int       `json:"to" yaml:"to"`
	SourceAtom int       `json:"source_atom" yaml:"source_atom"`
	TargetAtom int       `json:"target_atom" yaml:"target_atom"`
	Consumed   [2]string `json:"consumed" yaml:"consumed"`
}

// MetaMoleculeDTO is the coarse graph of fragment instances.
type MetaMoleculeDTO struct {
	Nodes []MetaNodeDTO `json:"nodes" yaml:"nodes"`
	Edges []MetaEdgeDTO `json:"edges" yaml:"edges"`
}

// LeftoverDTO reports descriptors that no meta edge consumed.
type LeftoverDTO struct {
	MetaNode    int      `json:"meta_node" yaml:"meta_node"`
	Atom        int      `json:"atom" yaml:"atom"`
	Descriptors []string `json:"descriptors" yaml:"descriptors"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Responses
// ─────────────────────────────────────────────────────────────────────────────

// ResolveResponse is the full resolution report.
type ResolveResponse struct {
	ResolutionID string          `json:"resolution_id" yaml:"resolution_id"`
	Notation     string          `json:"notation" yaml:"notation"`
	Meta         MetaMoleculeDTO `json:"meta" yaml:"meta"`
	Molecule     MoleculeDTO     `json:"molecule" yaml:"molecule"`
	Unconsumed   []LeftoverDTO   `json:"unconsumed,omitempty" yaml:"unconsumed,omitempty"`
	Cached       bool            `json:"cached,omitempty" yaml:"cached,omitempty"`
}

// ValidateResponse summarizes a notation without bonding it.
type ValidateResponse struct {
	Valid     bool     `json:"valid" yaml:"valid"`
	MetaNodes []string `json:"meta_nodes" yaml:"meta_nodes"`
	MetaEdges [][2]int `json:"meta_edges" yaml:"meta_edges"`
	Fragments []string `json:"fragments" yaml:"fragments"`
}

// AtomDescriptorsDTO lists the descriptors declared on one template atom.
type AtomDescriptorsDTO struct {
	Atom        int      `json:"atom" yaml:"atom"`
	Element     string   `json:"element" yaml:"element"`
	Descriptors []string `json:"descriptors" yaml:"descriptors"`
}

// TemplateDTO describes one parsed fragment of the dictionary.
type TemplateDTO struct {
	Name        string               `json:"name" yaml:"name"`
	SMILES      string               `json:"smiles" yaml:"smiles"`
	Formula     string               `json:"formula" yaml:"formula"`
	Atoms       int                  `json:"atoms" yaml:"atoms"`
	Bonds       int                  `json:"bonds" yaml:"bonds"`
	Descriptors []AtomDescriptorsDTO `json:"descriptors,omitempty" yaml:"descriptors,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

// HillFormula renders element counts in Hill order: C first, then H, then the
// rest alphabetically. Without carbon every element is alphabetical.
func HillFormula(elements []string) string {
	counts := make(map[string]int)
	for _, e := range elements {
		counts[e]++
	}
	var keys []string
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	write := func(e string) {
		b.WriteString(e)
		if n := counts[e]; n > 1 {
			b.WriteString(strconv.Itoa(n))
		}
		delete(counts, e)
	}
	if counts["C"] > 0 {
		write("C")
		if counts["H"] > 0 {
			write("H")
		}
	}
	for _, k := range keys {
		if _, ok := counts[k]; ok {
			write(k)
		}
	}
	return b.String()
}

// Pairs returns the meta edges as plain index pairs.
func (m MetaMoleculeDTO) Pairs() [][2]int {
	out := make([][2]int, len(m.Edges))
	for i, e := range m.Edges {
		out[i] = [2]int{e.From, e.To}
	}
	return out
}
