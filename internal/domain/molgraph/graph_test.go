package molgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/cgsmiles/internal/domain/bonding"
	"github.com/turtacn/cgsmiles/pkg/errors"
)

func pathGraph(t *testing.T, n int) *Graph {
	t.Helper()
	g := New()
	for i := 0; i < n; i++ {
		_, err := g.AddAtom(Atom{ID: i, Element: "C"})
		require.NoError(t, err)
	}
	for i := 1; i < n; i++ {
		require.NoError(t, g.AddBond(i-1, i, 1, false))
	}
	return g
}

func TestAddAtom_Duplicate(t *testing.T) {
	g := New()
	_, err := g.AddAtom(Atom{ID: 0, Element: "C"})
	require.NoError(t, err)
	_, err = g.AddAtom(Atom{ID: 0, Element: "O"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeGraph))
}

func TestAddBond_Errors(t *testing.T) {
	g := pathGraph(t, 3)

	assert.Error(t, g.AddBond(1, 1, 1, false), "self bond")
	assert.Error(t, g.AddBond(0, 9, 1, false), "missing endpoint")
	assert.Error(t, g.AddBond(1, 0, 1, false), "duplicate bond")
	assert.Equal(t, 2, g.NumBonds())
}

func TestBonds_SortedAndNormalized(t *testing.T) {
	g := New()
	for i := 0; i < 4; i++ {
		_, err := g.AddAtom(Atom{ID: i, Element: "C"})
		require.NoError(t, err)
	}
	require.NoError(t, g.AddBond(3, 1, 2, false))
	require.NoError(t, g.AddBond(2, 0, 1, false))
	require.NoError(t, g.AddBond(1, 0, 1, true))

	assert.Equal(t, [][2]int{{0, 1}, {0, 2}, {1, 3}}, g.Edges())
	b, ok := g.Bond(3, 1)
	require.True(t, ok)
	assert.Equal(t, 1, b.A)
	assert.Equal(t, 3, b.B)
	assert.Equal(t, 3, b.Other(1))
	assert.Equal(t, 3, g.BondOrderSum(1), "double plus aromatic")
	assert.Equal(t, []int{0, 3}, g.Neighbors(1))
	assert.Equal(t, 2, g.Degree(0))
}

func TestCopyWithOffset_IsDeep(t *testing.T) {
	g := pathGraph(t, 3)
	a, _ := g.Atom(0)
	a.Bonding = []bonding.Descriptor{{Kind: bonding.Undirected}}

	c := g.CopyWithOffset(10)
	assert.Equal(t, []int{10, 11, 12}, c.AtomIDs())
	assert.Equal(t, [][2]int{{10, 11}, {11, 12}}, c.Edges())

	ca, ok := c.Atom(10)
	require.True(t, ok)
	ca.Consume(0)
	assert.Empty(t, ca.Bonding)
	assert.Len(t, a.Bonding, 1, "source pool untouched")
	assert.Equal(t, 12, c.MaxID())
}

func TestMerge_SharesAtoms(t *testing.T) {
	m := New()
	g := pathGraph(t, 2)
	a, _ := g.Atom(1)
	a.Bonding = []bonding.Descriptor{{Kind: bonding.Left}, {Kind: bonding.Right}}

	require.NoError(t, m.Merge(g))
	require.NoError(t, m.Merge(g.CopyWithOffset(2)))
	assert.Equal(t, 4, m.NumAtoms())
	assert.Equal(t, 2, m.NumBonds())

	ma, _ := m.Atom(1)
	got := ma.Consume(1)
	assert.Equal(t, bonding.Right, got.Kind)
	assert.Len(t, a.Bonding, 1, "merged atom is shared with the block graph")

	assert.Error(t, m.Merge(g), "ids already present")
}

func TestConsume_DoesNotAlias(t *testing.T) {
	pool := []bonding.Descriptor{{Kind: bonding.Undirected, Label: "1"}, {Kind: bonding.Undirected, Label: "2"}, {Kind: bonding.Left}}
	a := &Atom{Bonding: pool}
	d := a.Consume(0)
	assert.Equal(t, "1", d.Label)
	assert.Equal(t, "$2,<", bonding.Join(a.Bonding))
	assert.Equal(t, "1", pool[0].Label)
}

func TestElements(t *testing.T) {
	g := New()
	for i, e := range []string{"O", "C", "H"} {
		_, err := g.AddAtom(Atom{ID: i, Element: e})
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"O", "C", "H"}, g.Elements())
	assert.Equal(t, -1, New().MaxID())
}
