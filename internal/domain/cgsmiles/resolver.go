// Package cgsmiles parses CGSmiles notation and resolves it into a meta
// molecule of fragment instances and the fully bonded atomistic molecule.
//
// Resolution runs in fixed stages: split the notation, parse the fragment
// dictionary and the meta block, instantiate one block graph per placeholder,
// then realize every meta edge by consuming one matching pair of bonding
// descriptors.
package cgsmiles

import (
	"github.com/turtacn/cgsmiles/internal/domain/bonding"
	"github.com/turtacn/cgsmiles/internal/domain/molgraph"
	"github.com/turtacn/cgsmiles/pkg/errors"
)

// EdgeMatch is the outcome of GenerateEdge.
type EdgeMatch struct {
	Source, Target                     int
	SourceDescriptor, TargetDescriptor bonding.Descriptor
}

// GenerateEdge picks the atom pair that realizes a bond between source and
// target and consumes one descriptor on each side.
//
// Candidates are pairs of atoms whose pools hold at least one matching
// descriptor pair. A labeled match outranks an unlabeled one; ties go to the
// lowest source atom id, then the lowest target atom id. Within the chosen
// pair the first matching descriptors in declaration order are consumed.
func GenerateEdge(source, target *molgraph.Graph) (EdgeMatch, error) {
	var (
		best     bonding.Rank
		bestSrc  *molgraph.Atom
		bestTgt  *molgraph.Atom
		bestI    int
		bestJ    int
		srcAtoms = atomsWithDescriptors(source)
		tgtAtoms = atomsWithDescriptors(target)
	)
	for _, a := range srcAtoms {
		for _, b := range tgtAtoms {
			rank, i, j := bestDescriptorPair(a.Bonding, b.Bonding)
			if rank > best {
				best, bestSrc, bestTgt, bestI, bestJ = rank, a, b, i, j
			}
		}
	}
	if best == bonding.NoMatch {
		return EdgeMatch{}, errors.New(errors.ErrCodeResolution, "no compatible bonding descriptors")
	}
	return EdgeMatch{
		Source:           bestSrc.ID,
		Target:           bestTgt.ID,
		SourceDescriptor: bestSrc.Consume(bestI),
		TargetDescriptor: bestTgt.Consume(bestJ),
	}, nil
}

func atomsWithDescriptors(g *molgraph.Graph) []*molgraph.Atom {
	var out []*molgraph.Atom
	for _, a := range g.Atoms() {
		if a.HasDescriptors() {
			out = append(out, a)
		}
	}
	return out
}

// bestDescriptorPair returns the best rank between two pools and the indices
// of the first pair achieving it.
func bestDescriptorPair(src, tgt []bonding.Descriptor) (bonding.Rank, int, int) {
	best, bi, bj := bonding.NoMatch, -1, -1
	for i, d := range src {
		for j, e := range tgt {
			if r := bonding.RankOf(d, e); r > best {
				best, bi, bj = r, i, j
				if best == bonding.LabeledMatch {
					return best, bi, bj
				}
			}
		}
	}
	return best, bi, bj
}

// DefaultMaxAtoms bounds the resolved molecule size.
const DefaultMaxAtoms = 1000000

// Option configures a Resolver.
type Option func(*Resolver)

// WithTemplateCache shares cache across resolutions.
func WithTemplateCache(cache *TemplateCache) Option {
	return func(r *Resolver) { r.cache = cache }
}

// WithMaxRepeat bounds `|N` repeat counts.
func WithMaxRepeat(n int) Option {
	return func(r *Resolver) { r.maxRepeat = n }
}

// WithMaxInstances bounds the fragment instances after repeat expansion.
func WithMaxInstances(n int) Option {
	return func(r *Resolver) { r.maxInstances = n }
}

// WithMaxAtoms bounds the atoms of the resolved molecule, hydrogens
// included; 0 disables the check.
func WithMaxAtoms(n int) Option {
	return func(r *Resolver) { r.maxAtoms = n }
}

// WithMaxNotationLength bounds the accepted input length; 0 disables the check.
func WithMaxNotationLength(n int) Option {
	return func(r *Resolver) { r.maxLength = n }
}

// Resolver turns CGSmiles strings into molecules. A Resolver is safe for
// concurrent use; each call owns its instances and descriptor pools.
type Resolver struct {
	cache        *TemplateCache
	maxRepeat    int
	maxInstances int
	maxAtoms     int
	maxLength    int
}

// NewResolver builds a Resolver. Without WithTemplateCache every call parses
// its fragments into a private cache.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		maxRepeat:    DefaultMaxRepeat,
		maxInstances: DefaultMaxInstances,
		maxAtoms:     DefaultMaxAtoms,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve is a convenience wrapper around a default Resolver.
func Resolve(notation string) (*MetaMolecule, *molgraph.Graph, error) {
	return NewResolver().Resolve(notation)
}

// Resolve parses notation and realizes every meta edge. It is all or
// nothing: on error no partial molecule is returned.
func (r *Resolver) Resolve(notation string) (*MetaMolecule, *molgraph.Graph, error) {
	ref, templates, err := r.prepare(notation)
	if err != nil {
		return nil, nil, err
	}
	meta, molecule, err := expand(ref, templates)
	if err != nil {
		return nil, nil, err
	}
	for _, edge := range meta.Edges {
		if err := resolveEdge(meta, molecule, edge); err != nil {
			return nil, nil, err
		}
	}
	return meta, molecule, nil
}

// Validate runs every parsing stage and the fragment name check without
// bonding.
func (r *Resolver) Validate(notation string) (*ReferenceGraph, error) {
	ref, _, err := r.prepare(notation)
	if err != nil {
		return nil, err
	}
	return ref, nil
}

// Template is a parsed dictionary entry.
type Template struct {
	Name   string
	SMILES string
	Graph  *molgraph.Graph
}

// Templates parses the dictionary of notation and returns its templates in
// declaration order. The meta block is not interpreted.
func (r *Resolver) Templates(notation string) ([]Template, error) {
	if err := r.checkLength(notation); err != nil {
		return nil, err
	}
	n, err := ParseNotation(notation)
	if err != nil {
		return nil, err
	}
	cache := r.templateCache()
	out := make([]Template, 0, len(n.Fragments))
	for _, def := range n.Fragments {
		g, err := cache.Get(def)
		if err != nil {
			return nil, err
		}
		out = append(out, Template{Name: def.Name, SMILES: def.SMILES, Graph: g})
	}
	return out, nil
}

func (r *Resolver) templateCache() *TemplateCache {
	if r.cache != nil {
		return r.cache
	}
	return NewTemplateCache(nil)
}

func (r *Resolver) checkLength(notation string) error {
	if r.maxLength > 0 && len(notation) > r.maxLength {
		return errors.Newf(errors.ErrCodeNotationTooLarge, "notation length %d exceeds limit %d", len(notation), r.maxLength)
	}
	return nil
}

// prepare parses both blocks, parses every dictionary entry and checks that
// every placeholder names a defined fragment.
func (r *Resolver) prepare(notation string) (*ReferenceGraph, map[string]*molgraph.Graph, error) {
	if err := r.checkLength(notation); err != nil {
		return nil, nil, err
	}
	n, err := ParseNotation(notation)
	if err != nil {
		return nil, nil, err
	}
	ref, err := ParseMeta(n.Meta, MetaLimits{MaxRepeat: r.maxRepeat, MaxInstances: r.maxInstances})
	if err != nil {
		return nil, nil, err
	}
	cache := r.templateCache()
	templates := make(map[string]*molgraph.Graph, len(n.Fragments))
	for _, def := range n.Fragments {
		g, err := cache.Get(def)
		if err != nil {
			return nil, nil, err
		}
		templates[def.Name] = g
	}
	atoms := 0
	for _, node := range ref.Nodes {
		tpl, ok := templates[node.Name]
		if !ok {
			return nil, nil, undefinedFragmentError(node.Name, node.ID, node.Pos)
		}
		atoms += tpl.NumAtoms()
		if r.maxAtoms > 0 && atoms > r.maxAtoms {
			return nil, nil, limitError(metaScope, node.Pos, "molecule exceeds %d atoms at instance %d", r.maxAtoms, node.ID)
		}
	}
	return ref, templates, nil
}

// resolveEdge realizes one meta edge. A second meta edge landing on an
// already bonded atom pair raises the bond order.
func resolveEdge(meta *MetaMolecule, molecule *molgraph.Graph, edge *MetaEdge) error {
	from, to := meta.Nodes[edge.From], meta.Nodes[edge.To]
	match, err := GenerateEdge(from.Graph, to.Graph)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeResolution, "cannot resolve meta edge").
			WithDetailf("meta_edge=%d-%d fragments=%s-%s", edge.From, edge.To, from.FragName, to.FragName)
	}
	edge.SourceAtom, edge.TargetAtom = match.Source, match.Target
	edge.Consumed = [2]bonding.Descriptor{match.SourceDescriptor, match.TargetDescriptor}
	if b, ok := molecule.Bond(match.Source, match.Target); ok {
		b.Order++
		return nil
	}
	return molecule.AddBond(match.Source, match.Target, 1, false)
}
