package cgsmiles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/cgsmiles/pkg/errors"
)

func TestParseNotation(t *testing.T) {
	n, err := ParseNotation("{[#OHter][#PEO]|2[#OHter]}.{#PEO=[$]COC[$],#OHter=[$][O]}")
	require.NoError(t, err)
	assert.Equal(t, "[#OHter][#PEO]|2[#OHter]", n.Meta)
	require.Len(t, n.Fragments, 2)
	assert.Equal(t, FragmentDef{Name: "PEO", SMILES: "[$]COC[$]"}, n.Fragments[0])

	def, ok := n.Lookup("OHter")
	require.True(t, ok)
	assert.Equal(t, "[$][O]", def.SMILES)
	_, ok = n.Lookup("missing")
	assert.False(t, ok)
}

func TestParseNotation_TripleBondInDefinition(t *testing.T) {
	n, err := ParseNotation("{[#A]}.{#A=[$]C#N}")
	require.NoError(t, err)
	assert.Equal(t, "[$]C#N", n.Fragments[0].SMILES)
}

func TestParseNotation_MetaOnly(t *testing.T) {
	n, err := ParseNotation("{[#A]}")
	require.NoError(t, err)
	assert.Empty(t, n.Fragments)
}

func TestParseNotation_MultipleBlocks(t *testing.T) {
	n, err := ParseNotation("{[#A][#B]}.{#A=C}.{#B=O}")
	require.NoError(t, err)
	assert.Len(t, n.Fragments, 2)
}

func TestParseNotation_GrammarErrors(t *testing.T) {
	tests := []struct {
		name     string
		notation string
	}{
		{"empty", ""},
		{"no braces", "[#A].[#A=C]"},
		{"unclosed meta", "{[#A].{#A=C}"},
		{"unclosed dictionary", "{[#A]}.{#A=C"},
		{"missing dot", "{[#A]}{#A=C}"},
		{"trailing dot", "{[#A]}."},
		{"trailing text", "{[#A]}.{#A=C}x"},
		{"entry without hash", "{[#A]}.{A=C}"},
		{"entry without equals", "{[#A]}.{#A}"},
		{"empty smiles", "{[#A]}.{#A=}"},
		{"empty entry", "{[#A]}.{#A=C,}"},
		{"bad name", "{[#A]}.{#A!=C}"},
		{"duplicate name", "{[#A]}.{#A=C,#A=O}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseNotation(tt.notation)
			require.Error(t, err)
			assert.True(t, errors.IsGrammarError(err), "got %v", err)
		})
	}
}

func TestSplitTopLevel(t *testing.T) {
	assert.Equal(t, []string{"#A=C", "#B=[O]"}, splitTopLevel("#A=C,#B=[O]", ','))
	assert.Equal(t, []string{"a[,]b"}, splitTopLevel("a[,]b", ','))
}
