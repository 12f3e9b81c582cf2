package cgsmiles

import (
	"github.com/turtacn/cgsmiles/internal/domain/molgraph"
)

// expand instantiates every placeholder of ref in declaration order. Each
// instance receives the next free id range, so global id = instance offset +
// local template index. The returned molecule holds all instance atoms and
// intra-fragment bonds but no inter-fragment bonds.
func expand(ref *ReferenceGraph, templates map[string]*molgraph.Graph) (*MetaMolecule, *molgraph.Graph, error) {
	meta := &MetaMolecule{Nodes: make([]*MetaNode, 0, len(ref.Nodes))}
	molecule := molgraph.New()
	offset := 0
	for _, r := range ref.Nodes {
		tpl, ok := templates[r.Name]
		if !ok {
			return nil, nil, undefinedFragmentError(r.Name, r.ID, r.Pos)
		}
		inst := tpl.CopyWithOffset(offset)
		if err := molecule.Merge(inst); err != nil {
			return nil, nil, err
		}
		meta.Nodes = append(meta.Nodes, &MetaNode{
			ID:       r.ID,
			FragName: r.Name,
			Graph:    inst,
			Offset:   offset,
		})
		offset += tpl.NumAtoms()
	}
	for _, e := range ref.Edges {
		meta.Edges = append(meta.Edges, &MetaEdge{From: e.From, To: e.To, SourceAtom: -1, TargetAtom: -1})
	}
	return meta, molecule, nil
}
