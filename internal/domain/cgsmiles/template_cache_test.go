package cgsmiles

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/cgsmiles/pkg/errors"
)

func TestTemplateCache_HitAndMiss(t *testing.T) {
	var hits, misses atomic.Int64
	c := NewTemplateCache(func(hit bool) {
		if hit {
			hits.Add(1)
		} else {
			misses.Add(1)
		}
	})
	def := FragmentDef{Name: "PEO", SMILES: "[$]COC[$]"}

	g1, err := c.Get(def)
	require.NoError(t, err)
	g2, err := c.Get(def)
	require.NoError(t, err)

	assert.Same(t, g1, g2)
	assert.Equal(t, int64(1), hits.Load())
	assert.Equal(t, int64(1), misses.Load())
	assert.Equal(t, 1, c.Len())
}

func TestTemplateCache_KeyIncludesDefinition(t *testing.T) {
	c := NewTemplateCache(nil)
	a, err := c.Get(FragmentDef{Name: "X", SMILES: "C"})
	require.NoError(t, err)
	b, err := c.Get(FragmentDef{Name: "X", SMILES: "O"})
	require.NoError(t, err)

	assert.Equal(t, []string{"C", "H", "H", "H", "H"}, a.Elements())
	assert.Equal(t, []string{"O", "H", "H"}, b.Elements())
	assert.Equal(t, 2, c.Len())
}

func TestTemplateCache_ErrorsAreNotCached(t *testing.T) {
	c := NewTemplateCache(nil)
	_, err := c.Get(FragmentDef{Name: "bad", SMILES: "C("})
	require.Error(t, err)
	assert.True(t, errors.IsGrammarError(err))
	assert.Equal(t, 0, c.Len())
}

func TestTemplateCache_ConcurrentGet(t *testing.T) {
	c := NewTemplateCache(nil)
	def := FragmentDef{Name: "PS", SMILES: "[$]CC[$]c1ccccc1"}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g, err := c.Get(def)
			if assert.NoError(t, err) {
				assert.Equal(t, 16, g.NumAtoms())
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, c.Len())
}
