package cgsmiles

import (
	"github.com/turtacn/cgsmiles/internal/domain/bonding"
	"github.com/turtacn/cgsmiles/internal/domain/molgraph"
)

// MetaNode is one fragment instance with its own copy of the block graph.
type MetaNode struct {
	ID       int
	FragName string
	// Graph holds the instance atoms under their global ids. Atoms are shared
	// with the molecule graph.
	Graph *molgraph.Graph
	// Offset is the global id of the instance's first atom.
	Offset int
}

// MetaEdge is a declared connection and, once resolved, the atom-level bond
// that realizes it.
type MetaEdge struct {
	From, To int
	// SourceAtom and TargetAtom are the bonded atoms in From and To.
	SourceAtom, TargetAtom int
	// Consumed holds the descriptors consumed on the From and To side.
	Consumed [2]bonding.Descriptor
}

// MetaMolecule is the coarse graph of fragment instances.
type MetaMolecule struct {
	Nodes []*MetaNode
	Edges []*MetaEdge
}

// FragNames returns the fragment name of every node in id order.
func (m *MetaMolecule) FragNames() []string {
	out := make([]string, len(m.Nodes))
	for i, n := range m.Nodes {
		out[i] = n.FragName
	}
	return out
}

// Leftover is an atom that kept descriptors after resolution.
type Leftover struct {
	Node        int
	Atom        int
	Descriptors []bonding.Descriptor
}

// Unconsumed lists atoms whose descriptor pools were not emptied, ordered by
// atom id.
func (m *MetaMolecule) Unconsumed() []Leftover {
	var out []Leftover
	for _, n := range m.Nodes {
		for _, a := range n.Graph.Atoms() {
			if a.HasDescriptors() {
				out = append(out, Leftover{
					Node:        n.ID,
					Atom:        a.ID,
					Descriptors: append([]bonding.Descriptor(nil), a.Bonding...),
				})
			}
		}
	}
	return out
}

// UnconsumedCount returns the number of descriptors left in all pools.
func (m *MetaMolecule) UnconsumedCount() int {
	total := 0
	for _, l := range m.Unconsumed() {
		total += len(l.Descriptors)
	}
	return total
}
