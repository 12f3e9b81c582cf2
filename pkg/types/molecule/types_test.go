package molecule

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestHillFormula(t *testing.T) {
	tests := []struct {
		name     string
		elements []string
		want     string
	}{
		{"empty", nil, ""},
		{"methane", []string{"C", "H", "H", "H", "H"}, "CH4"},
		{"ethanol", []string{"C", "C", "O", "H", "H", "H", "H", "H", "H"}, "C2H6O"},
		{"no carbon", []string{"O", "H", "H"}, "H2O"},
		{"salt", []string{"Na", "Cl"}, "ClNa"},
		{"carbon without hydrogen", []string{"C", "O", "O"}, "CO2"},
		{"ordering of heteroatoms", []string{"S", "N", "C", "Br", "H"}, "CHBrNS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HillFormula(tt.elements))
		})
	}
}

func TestMetaMoleculeDTO_Pairs(t *testing.T) {
	m := MetaMoleculeDTO{Edges: []MetaEdgeDTO{{From: 0, To: 1}, {From: 1, To: 2}}}
	assert.Equal(t, [][2]int{{0, 1}, {1, 2}}, m.Pairs())
	assert.Empty(t, MetaMoleculeDTO{}.Pairs())
}

func TestResolveResponse_JSONShape(t *testing.T) {
	resp := ResolveResponse{
		ResolutionID: "r1",
		Notation:     "{[#A]}.{#A=C}",
		Meta:         MetaMoleculeDTO{Nodes: []MetaNodeDTO{{ID: 0, Fragment: "A", AtomIDs: []int{0}}}},
		Molecule:     MoleculeDTO{Formula: "C", Atoms: []AtomDTO{{ID: 0, Element: "C"}}},
	}
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	s := string(data)
	assert.Contains(t, s, `"resolution_id":"r1"`)
	assert.Contains(t, s, `"atom_ids":[0]`)
	assert.NotContains(t, s, `"unconsumed"`)
	assert.NotContains(t, s, `"aromatic"`)
}

func TestResolveResponse_YAMLShape(t *testing.T) {
	resp := ResolveResponse{
		Meta: MetaMoleculeDTO{Edges: []MetaEdgeDTO{{From: 0, To: 1, SourceAtom: 0, TargetAtom: 3, Consumed: [2]string{"$", "$"}}}},
	}
	data, err := yaml.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), "source_atom: 0")
	assert.Contains(t, string(data), "target_atom: 3")
}
