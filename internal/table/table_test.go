package table_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/shadercache/gpu"
	"github.com/meigma/shadercache/internal/table"
)

func program(slots ...[]byte) *gpu.CachedProgram {
	p := &gpu.CachedProgram{SpecializationState: gpu.NewGraphicsSpecialization(gpu.GraphicsState{}, nil)}
	for _, code := range slots {
		if code == nil {
			p.Shaders = append(p.Shaders, nil)
			continue
		}
		p.Shaders = append(p.Shaders, &gpu.CachedStage{Code: code})
	}
	return p
}

func TestTableLookup(t *testing.T) {
	t.Parallel()
	tbl := table.New()
	a := program(nil, []byte("vert"), []byte("frag"))
	b := program(nil, []byte("vert"), []byte("frag"))
	c := program(nil, []byte("vert"), []byte("other"))
	tbl.Add(a)
	tbl.Add(b)
	tbl.Add(c)

	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, []*gpu.CachedProgram{a, b}, tbl.Lookup(a.GuestShaders()))
	assert.Equal(t, []*gpu.CachedProgram{c}, tbl.Lookup(c.GuestShaders()))
	assert.Empty(t, tbl.Lookup(program([]byte("vert"), nil, []byte("frag")).GuestShaders()))

	tbl.Clear()
	assert.Zero(t, tbl.Len())
	assert.Empty(t, tbl.Lookup(a.GuestShaders()))
}

func TestKeyDistinguishesSlots(t *testing.T) {
	t.Parallel()
	k1 := table.Key(program(nil, []byte("ab"), []byte("c")).GuestShaders())
	k2 := table.Key(program(nil, []byte("a"), []byte("bc")).GuestShaders())
	k3 := table.Key(program([]byte("ab"), nil, []byte("c")).GuestShaders())
	assert.NotEqual(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	require.NoError(t, k1.Validate())
}

func TestSetConcurrentAdd(t *testing.T) {
	t.Parallel()
	set := table.NewSet()
	p := program(nil, []byte("vert"), nil)
	cp := &gpu.CachedProgram{
		SpecializationState: gpu.NewComputeSpecialization(gpu.ComputeState{}),
		Shaders:             []*gpu.CachedStage{{Code: []byte("kernel")}},
	}

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			set.AddGraphics(p)
		}()
		go func() {
			defer wg.Done()
			set.AddCompute(cp)
		}()
	}
	wg.Wait()

	assert.Equal(t, 16, set.Graphics.Len())
	assert.Len(t, set.Graphics.Lookup(p.GuestShaders()), 16)
	assert.Equal(t, 16, set.Compute.Len())
}
