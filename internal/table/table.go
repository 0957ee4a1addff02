// Package table holds the programs available to the renderer, indexed by
// the guest code they were translated from.
package table

import (
	"encoding/binary"
	"sync"

	_ "crypto/sha256" // digest.Canonical

	"github.com/opencontainers/go-digest"
	gocache "github.com/patrickmn/go-cache"

	"github.com/meigma/shadercache/gpu"
)

// Table maps guest code to the programs compiled from it. Several programs
// may share guest code when they were specialized for different GPU state.
//
// Table is safe for concurrent use.
type Table struct {
	mu      sync.Mutex
	entries *gocache.Cache
	count   int
}

// New creates an empty table. Entries never expire.
func New() *Table {
	return &Table{entries: gocache.New(gocache.NoExpiration, 0)}
}

// Key returns the table key of a program's guest code. Empty slots are
// part of the key, so a program with and without vertex A never collide.
func Key(shaders []*gpu.GuestCode) digest.Digest {
	d := digest.Canonical.Digester()
	h := d.Hash()
	var buf [4]byte
	for _, s := range shaders {
		if s == nil {
			binary.LittleEndian.PutUint32(buf[:], 0xffffffff)
			h.Write(buf[:])
			continue
		}
		binary.LittleEndian.PutUint32(buf[:], uint32(len(s.Code))) //nolint:gosec // guest code is far below 4 GiB
		h.Write(buf[:])
		h.Write(s.Code)
	}
	return d.Digest()
}

// Add registers a linked program.
func (t *Table) Add(p *gpu.CachedProgram) {
	key := Key(p.GuestShaders()).String()

	t.mu.Lock()
	defer t.mu.Unlock()
	var list []*gpu.CachedProgram
	if v, ok := t.entries.Get(key); ok {
		list = v.([]*gpu.CachedProgram)
	}
	t.entries.Set(key, append(list, p), gocache.NoExpiration)
	t.count++
}

// Lookup returns the programs compiled from the given guest code, oldest
// first.
func (t *Table) Lookup(shaders []*gpu.GuestCode) []*gpu.CachedProgram {
	v, ok := t.entries.Get(Key(shaders).String())
	if !ok {
		return nil
	}
	list := v.([]*gpu.CachedProgram)
	return list[:len(list):len(list)]
}

// Len returns the number of programs in the table.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// Clear removes every program.
func (t *Table) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries.Flush()
	t.count = 0
}

// Set is the pair of graphics and compute tables.
type Set struct {
	Graphics *Table
	Compute  *Table
}

// NewSet creates empty tables.
func NewSet() *Set {
	return &Set{Graphics: New(), Compute: New()}
}

// AddGraphics registers a graphics program.
func (s *Set) AddGraphics(p *gpu.CachedProgram) { s.Graphics.Add(p) }

// AddCompute registers a compute program.
func (s *Set) AddCompute(p *gpu.CachedProgram) { s.Compute.Add(p) }
