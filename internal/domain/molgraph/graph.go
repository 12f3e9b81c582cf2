// Package molgraph provides the typed, attributed graph container used for
// fragment block graphs and for the resolved molecule.
//
// Atoms are stored in an arena keyed by integer id. Instantiating a template
// copies it into a fresh id range (CopyWithOffset) so that every instance of a
// fragment owns distinct atom identities and distinct descriptor pools.
package molgraph

import (
	"sort"

	"github.com/turtacn/cgsmiles/internal/domain/bonding"
	"github.com/turtacn/cgsmiles/pkg/errors"
)

// Atom is one atom of a block graph or molecule.
type Atom struct {
	ID       int
	Element  string
	Aromatic bool
	Charge   int
	// Bonding is the atom's descriptor pool in declaration order. Consuming a
	// descriptor removes it from the pool.
	Bonding []bonding.Descriptor
}

// HasDescriptors reports whether the pool is non-empty.
func (a *Atom) HasDescriptors() bool {
	return len(a.Bonding) > 0
}

// Consume removes the descriptor at index i from the pool and returns it.
func (a *Atom) Consume(i int) bonding.Descriptor {
	d := a.Bonding[i]
	a.Bonding = append(a.Bonding[:i:i], a.Bonding[i+1:]...)
	return d
}

func (a *Atom) clone(offset int) *Atom {
	c := *a
	c.ID = a.ID + offset
	if a.Bonding != nil {
		c.Bonding = append([]bonding.Descriptor(nil), a.Bonding...)
	}
	return &c
}

// Bond connects two atoms. A is always the lower id.
type Bond struct {
	A, B     int
	Order    int
	Aromatic bool
}

// Valence returns the bond's contribution to valence; aromatic bonds count 1.
func (b *Bond) Valence() int {
	if b.Aromatic {
		return 1
	}
	return b.Order
}

// Other returns the endpoint opposite to id.
func (b *Bond) Other(id int) int {
	if b.A == id {
		return b.B
	}
	return b.A
}

// Graph is an undirected simple graph of atoms.
type Graph struct {
	atoms map[int]*Atom
	adj   map[int]map[int]*Bond
	nbond int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		atoms: make(map[int]*Atom),
		adj:   make(map[int]map[int]*Bond),
	}
}

// AddAtom stores a copy of a under a.ID and returns the stored atom.
func (g *Graph) AddAtom(a Atom) (*Atom, error) {
	if _, ok := g.atoms[a.ID]; ok {
		return nil, errors.New(errors.ErrCodeGraph, "duplicate atom id").WithDetailf("id=%d", a.ID)
	}
	stored := a
	g.atoms[a.ID] = &stored
	g.adj[a.ID] = make(map[int]*Bond)
	return &stored, nil
}

// Atom returns the atom stored under id.
func (g *Graph) Atom(id int) (*Atom, bool) {
	a, ok := g.atoms[id]
	return a, ok
}

// NumAtoms returns the number of atoms.
func (g *Graph) NumAtoms() int { return len(g.atoms) }

// NumBonds returns the number of bonds.
func (g *Graph) NumBonds() int { return g.nbond }

// AtomIDs returns all atom ids in ascending order.
func (g *Graph) AtomIDs() []int {
	ids := make([]int, 0, len(g.atoms))
	for id := range g.atoms {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Atoms returns all atoms in ascending id order.
func (g *Graph) Atoms() []*Atom {
	ids := g.AtomIDs()
	out := make([]*Atom, len(ids))
	for i, id := range ids {
		out[i] = g.atoms[id]
	}
	return out
}

// Elements returns the element symbols in ascending id order.
func (g *Graph) Elements() []string {
	atoms := g.Atoms()
	out := make([]string, len(atoms))
	for i, a := range atoms {
		out[i] = a.Element
	}
	return out
}

// AddBond connects a and b.
func (g *Graph) AddBond(a, b, order int, aromatic bool) error {
	if a == b {
		return errors.New(errors.ErrCodeGraph, "self bond").WithDetailf("atom=%d", a)
	}
	if _, ok := g.atoms[a]; !ok {
		return errors.New(errors.ErrCodeGraph, "bond endpoint missing").WithDetailf("atom=%d", a)
	}
	if _, ok := g.atoms[b]; !ok {
		return errors.New(errors.ErrCodeGraph, "bond endpoint missing").WithDetailf("atom=%d", b)
	}
	if _, ok := g.adj[a][b]; ok {
		return errors.New(errors.ErrCodeGraph, "duplicate bond").WithDetailf("atoms=%d-%d", a, b)
	}
	if a > b {
		a, b = b, a
	}
	bond := &Bond{A: a, B: b, Order: order, Aromatic: aromatic}
	g.adj[a][b] = bond
	g.adj[b][a] = bond
	g.nbond++
	return nil
}

// Bond returns the bond between a and b.
func (g *Graph) Bond(a, b int) (*Bond, bool) {
	bond, ok := g.adj[a][b]
	return bond, ok
}

// HasBond reports whether a and b are bonded.
func (g *Graph) HasBond(a, b int) bool {
	_, ok := g.adj[a][b]
	return ok
}

// Neighbors returns the neighbours of id in ascending order.
func (g *Graph) Neighbors(id int) []int {
	out := make([]int, 0, len(g.adj[id]))
	for n := range g.adj[id] {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Degree returns the number of bonds at id.
func (g *Graph) Degree(id int) int {
	return len(g.adj[id])
}

// BondOrderSum returns the summed bond valence at id.
func (g *Graph) BondOrderSum(id int) int {
	sum := 0
	for _, b := range g.adj[id] {
		sum += b.Valence()
	}
	return sum
}

// Bonds returns all bonds ordered by (A, B).
func (g *Graph) Bonds() []*Bond {
	out := make([]*Bond, 0, g.nbond)
	for a, m := range g.adj {
		for b, bond := range m {
			if a < b {
				out = append(out, bond)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

// Edges returns all bonds as sorted id pairs.
func (g *Graph) Edges() [][2]int {
	bonds := g.Bonds()
	out := make([][2]int, len(bonds))
	for i, b := range bonds {
		out[i] = [2]int{b.A, b.B}
	}
	return out
}

// MaxID returns the largest atom id, or -1 for an empty graph.
func (g *Graph) MaxID() int {
	max := -1
	for id := range g.atoms {
		if id > max {
			max = id
		}
	}
	return max
}

// CopyWithOffset returns a deep copy with every atom id shifted by offset.
// Descriptor pools are copied, so consuming from the copy leaves the source
// untouched.
func (g *Graph) CopyWithOffset(offset int) *Graph {
	c := New()
	for id, a := range g.atoms {
		c.atoms[id+offset] = a.clone(offset)
		c.adj[id+offset] = make(map[int]*Bond, len(g.adj[id]))
	}
	for _, b := range g.Bonds() {
		nb := &Bond{A: b.A + offset, B: b.B + offset, Order: b.Order, Aromatic: b.Aromatic}
		c.adj[nb.A][nb.B] = nb
		c.adj[nb.B][nb.A] = nb
	}
	c.nbond = g.nbond
	return c
}

// Copy returns a deep copy with unchanged ids.
func (g *Graph) Copy() *Graph {
	return g.CopyWithOffset(0)
}

// Merge adds every atom and bond of other to g. Atoms are shared, not copied,
// so descriptor consumption through either graph is visible in both.
func (g *Graph) Merge(other *Graph) error {
	for id := range other.atoms {
		if _, ok := g.atoms[id]; ok {
			return errors.New(errors.ErrCodeGraph, "merge would duplicate atom id").WithDetailf("id=%d", id)
		}
	}
	for id, a := range other.atoms {
		g.atoms[id] = a
		g.adj[id] = make(map[int]*Bond, len(other.adj[id]))
	}
	for _, b := range other.Bonds() {
		g.adj[b.A][b.B] = b
		g.adj[b.B][b.A] = b
		g.nbond++
	}
	return nil
}
