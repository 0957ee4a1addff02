package loader_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/shadercache/gpu"
	"github.com/meigma/shadercache/internal/codec"
	"github.com/meigma/shadercache/internal/guest"
	"github.com/meigma/shadercache/internal/host"
	"github.com/meigma/shadercache/internal/loader"
	"github.com/meigma/shadercache/internal/testutil"
)

var caps = gpu.Capabilities{API: "vulkan", VendorName: "Test GPU", MaxParallelCompiles: 4}

type tables struct {
	mu       sync.Mutex
	graphics []*gpu.CachedProgram
	compute  []*gpu.CachedProgram
}

func (t *tables) AddGraphics(p *gpu.CachedProgram) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.graphics = append(t.graphics, p)
}

func (t *tables) AddCompute(p *gpu.CachedProgram) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.compute = append(t.compute, p)
}

type event struct {
	state          loader.State
	current, total int
}

type recorder struct {
	events []event
	onLoad func(current int)
}

func (r *recorder) progress(state loader.State, current, total int) {
	r.events = append(r.events, event{state, current, total})
	if state == loader.StateLoading && r.onLoad != nil {
		r.onLoad(current)
	}
}

func newStorage(t *testing.T, dir string) *host.Storage {
	t.Helper()
	g, err := guest.New(dir)
	require.NoError(t, err)
	s, err := host.New(dir, g, caps)
	require.NoError(t, err)
	return s
}

func graphicsProgram(ops ...byte) *gpu.CachedProgram {
	shaders := make([]*gpu.CachedStage, gpu.GraphicsSlots)
	shaders[1] = &gpu.CachedStage{
		Info: &gpu.ShaderProgramInfo{Stage: gpu.StageVertex},
		Code: testutil.GuestShader(ops...),
	}
	shaders[5] = &gpu.CachedStage{
		Info: &gpu.ShaderProgramInfo{Stage: gpu.StageFragment},
		Code: testutil.GuestShader('o', 'c'),
	}
	return &gpu.CachedProgram{
		SpecializationState: gpu.NewGraphicsSpecialization(gpu.GraphicsState{}, nil),
		Shaders:             shaders,
	}
}

func computeProgram(ops ...byte) *gpu.CachedProgram {
	return &gpu.CachedProgram{
		SpecializationState: gpu.NewComputeSpecialization(gpu.ComputeState{LocalSizeX: 64, LocalSizeY: 1, LocalSizeZ: 1}),
		Shaders: []*gpu.CachedStage{{
			Info: &gpu.ShaderProgramInfo{Stage: gpu.StageCompute},
			Code: testutil.GuestShader(ops...),
		}},
	}
}

// hostBinary packs a stored binary tagged with version, the way a backend
// compiled by that translator version would have produced it.
func hostBinary(version string, p *gpu.CachedProgram) []byte {
	var srcs []gpu.ShaderSource
	for _, st := range p.Shaders {
		if st == nil || st.Info == nil {
			continue
		}
		srcs = append(srcs, gpu.ShaderSource{
			Stage:  st.Info.Stage,
			Binary: []byte(version + ":" + st.Info.Stage.String() + ":" + string(st.Code)),
		})
	}
	return codec.Pack(srcs)
}

func seed(t *testing.T, s *host.Storage, version string, programs ...*gpu.CachedProgram) {
	t.Helper()
	streams, err := s.GetOutputStreams()
	require.NoError(t, err)
	for _, p := range programs {
		require.NoError(t, s.AddShader(p, hostBinary(version, p), streams))
	}
	require.NoError(t, streams.Close())
}

func rejectVersion(version string) func([]gpu.ShaderSource) bool {
	return func(srcs []gpu.ShaderSource) bool {
		for _, s := range srcs {
			if bytes.HasPrefix(s.Binary, []byte(version+":")) {
				return true
			}
		}
		return false
	}
}

type setup struct {
	backend    *testutil.Backend
	translator *testutil.Translator
	tables     *tables
	recorder   *recorder
	workers    int
}

func newLoader(t *testing.T, s *host.Storage, st *setup) *loader.Loader {
	t.Helper()
	if st.backend == nil {
		st.backend = &testutil.Backend{Caps: caps}
	}
	if st.translator == nil {
		st.translator = &testutil.Translator{Version: "v2"}
	}
	if st.tables == nil {
		st.tables = &tables{}
	}
	if st.recorder == nil {
		st.recorder = &recorder{}
	}
	l, err := loader.New(loader.Config{
		Store:      s,
		Backend:    st.backend,
		Translator: st.translator,
		Tables:     st.tables,
		Workers:    st.workers,
		Progress:   st.recorder.progress,
	})
	require.NoError(t, err)
	return l
}

func assertProgress(t *testing.T, events []event, total int) {
	t.Helper()
	require.NotEmpty(t, events)
	assert.Equal(t, event{loader.StateStart, 0, total}, events[0])
	assert.Equal(t, event{loader.StateLoaded, total, total}, events[len(events)-1])

	middle := events[1 : len(events)-1]
	last := 0
	for len(middle) > 0 && middle[0].state == loader.StateLoading {
		assert.Equal(t, total, middle[0].total)
		assert.Equal(t, last+1, middle[0].current)
		last = middle[0].current
		middle = middle[1:]
	}
	if len(middle) == 0 {
		return
	}

	// A rebuild reports packaging from 0 up to the number of stored programs.
	stored := middle[0].total
	for i, e := range middle {
		require.Equal(t, loader.StatePackaging, e.state)
		assert.Equal(t, event{loader.StatePackaging, i, stored}, e)
	}
	assert.Len(t, middle, stored+1)
}

func packaging(events []event) []event {
	var out []event
	for _, e := range events {
		if e.state == loader.StatePackaging {
			out = append(out, e)
		}
	}
	return out
}

func TestLoadHostPrograms(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s := newStorage(t, dir)
	seed(t, s, "v1",
		graphicsProgram('c', 'a'),
		computeProgram('s', 'b'),
		graphicsProgram('c', 'c'),
	)

	st := &setup{}
	l := newLoader(t, s, st)
	res, err := l.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, loader.Result{Total: 3, Programs: 3}, res)
	assert.Len(t, st.tables.graphics, 2)
	assert.Len(t, st.tables.compute, 1)
	assert.Zero(t, st.translator.Decodes())
	assertProgress(t, st.recorder.events, 3)
	assert.Equal(t, loader.Status{State: loader.StateLoaded, Current: 3, Total: 3}, l.Status())

	count, err := s.GetProgramCount()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestLoadRetranslatesRejectedBinaries(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s := newStorage(t, dir)

	withVertexA := graphicsProgram('c', 'd')
	withVertexA.Shaders[0] = &gpu.CachedStage{Code: testutil.GuestShader('a', 'c')}
	seed(t, s, "v1",
		graphicsProgram('c', 'a'),
		computeProgram('s', 'b'),
		withVertexA,
	)

	st := &setup{backend: &testutil.Backend{Caps: caps, Reject: rejectVersion("v1")}}
	res, err := newLoader(t, s, st).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, loader.Result{Total: 3, Programs: 3, Translated: 3, Rebuilt: true}, res)
	assertProgress(t, st.recorder.events, 3)
	assert.Len(t, packaging(st.recorder.events), 4)

	require.Len(t, st.tables.compute, 1)
	cp := st.tables.compute[0].HostProgram.(*testutil.Program)
	require.Len(t, cp.Sources(), 1)
	assert.True(t, bytes.HasPrefix(cp.Sources()[0].Binary, []byte("v2:compute:")))

	var merged bool
	for _, p := range st.tables.graphics {
		srcs := p.HostProgram.(*testutil.Program).Sources()
		require.Len(t, srcs, 2)
		assert.Equal(t, gpu.StageVertex, srcs[0].Stage)
		assert.Equal(t, gpu.StageFragment, srcs[1].Stage)
		if strings.Contains(string(srcs[0].Binary), "A[") {
			merged = true
			assert.NotNil(t, p.Shaders[0])
			assert.Nil(t, p.Shaders[0].Info)
		}
	}
	assert.True(t, merged, "vertex A should be merged into the vertex stage")

	// The rebuilt cache holds binaries the backend accepts.
	st2 := &setup{backend: &testutil.Backend{Caps: caps, Reject: rejectVersion("v1")}}
	res, err = newLoader(t, newStorage(t, dir), st2).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, loader.Result{Total: 3, Programs: 3}, res)
	assert.Zero(t, st2.translator.Decodes())
}

func TestLoadCountsUnrecoverablePrograms(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s := newStorage(t, dir)
	seed(t, s, "v1",
		graphicsProgram('c', testutil.OpFailLink),
		graphicsProgram('c', testutil.OpFailTranslate),
		graphicsProgram('c', 'a'),
		computeProgram(testutil.OpFailTranslate),
	)

	st := &setup{backend: &testutil.Backend{Caps: caps, Reject: rejectVersion("v1")}}
	res, err := newLoader(t, s, st).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, loader.Result{Total: 4, Programs: 1, Translated: 1, Errors: 3, Rebuilt: true}, res)
	assertProgress(t, st.recorder.events, 4)

	count, err := s.GetProgramCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestLoadRebuildKeepsIndexOrder(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s := newStorage(t, dir)
	ops := []byte{'a', 'b', testutil.OpFailTranslate, 'd', 'e', 'f' + 1}
	var programs []*gpu.CachedProgram
	for _, op := range ops {
		programs = append(programs, graphicsProgram('c', op))
	}
	seed(t, s, "v1", programs...)

	st := &setup{backend: &testutil.Backend{Caps: caps, Reject: rejectVersion("v1")}, workers: 3}
	res, err := newLoader(t, s, st).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 5, res.Programs)

	order := &setup{}
	_, err = newLoader(t, newStorage(t, dir), order).Load(context.Background())
	require.NoError(t, err)

	var got []byte
	for _, p := range order.tables.graphics {
		code := p.Shaders[1].Code
		got = append(got, code[len(code)-1])
	}
	assert.Equal(t, []byte{'a', 'b', 'd', 'e', 'f' + 1}, got)
}

func TestLoadFailedRetranslationKeepsFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s := newStorage(t, dir)
	seed(t, s, "v1",
		graphicsProgram(testutil.OpFailTranslate),
		computeProgram(testutil.OpFailTranslate),
	)
	guestBefore, err := s.Guest().Count()
	require.NoError(t, err)

	st := &setup{backend: &testutil.Backend{Caps: caps, Reject: rejectVersion("v1")}}
	res, err := newLoader(t, s, st).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, loader.Result{Total: 2, Errors: 2}, res)
	assert.Empty(t, packaging(st.recorder.events))

	count, err := s.GetProgramCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	guestCount, err := s.Guest().Count()
	require.NoError(t, err)
	assert.Equal(t, guestBefore, guestCount)
}

func TestLoadRecoversFromBadGuestHeader(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s := newStorage(t, dir)
	seed(t, s, "v1", graphicsProgram('c', 'a'), computeProgram('s', 'b'))

	f, err := os.OpenFile(s.Guest().TocPath(), os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.WriteAt([]byte("XXXX"), 0)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	st := &setup{backend: &testutil.Backend{Caps: caps, Reject: rejectVersion("v1")}}
	res, err := newLoader(t, s, st).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, loader.Result{Total: 2, Rebuilt: true}, res)

	guestCount, err := s.Guest().Count()
	require.NoError(t, err)
	assert.Zero(t, guestCount)

	// The emptied cache accepts new programs and loads them back.
	s2 := newStorage(t, dir)
	res, err = newLoader(t, s2, &setup{}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, loader.Result{}, res)

	seed(t, s2, "v2", graphicsProgram('c', 'n'))
	st3 := &setup{}
	res, err = newLoader(t, newStorage(t, dir), st3).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, loader.Result{Total: 1, Programs: 1}, res)
	require.Len(t, st3.tables.graphics, 1)
}

// cancellingStore cancels the load from inside the first rebuild write.
type cancellingStore struct {
	*host.Storage
	cancel context.CancelFunc
	adds   int
}

func (s *cancellingStore) AddShader(p *gpu.CachedProgram, binary []byte, streams *host.OutputStreams) error {
	s.adds++
	s.cancel()
	return s.Storage.AddShader(p, binary, streams)
}

func TestLoadRebuildStopsOnCancel(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s := newStorage(t, dir)
	var programs []*gpu.CachedProgram
	for i := range 6 {
		programs = append(programs, graphicsProgram('c', byte('A'+i)))
	}
	seed(t, s, "v1", programs...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := &cancellingStore{Storage: s, cancel: cancel}
	st := &setup{
		backend:    &testutil.Backend{Caps: caps, Reject: rejectVersion("v1")},
		translator: &testutil.Translator{Version: "v2"},
		tables:     &tables{},
		recorder:   &recorder{},
	}
	l, err := loader.New(loader.Config{
		Store:      store,
		Backend:    st.backend,
		Translator: st.translator,
		Tables:     st.tables,
		Progress:   st.recorder.progress,
	})
	require.NoError(t, err)

	res, err := l.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, loader.Result{Total: 6, Programs: 6, Translated: 6, Rebuilt: true, Cancelled: true}, res)
	assert.Equal(t, 1, store.adds)
	assert.Equal(t, []event{
		{loader.StatePackaging, 0, 6},
		{loader.StatePackaging, 1, 6},
	}, packaging(st.recorder.events))
	last := st.recorder.events[len(st.recorder.events)-1]
	assert.Equal(t, event{loader.StateLoaded, 6, 6}, last)

	count, err := s.GetProgramCount()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// decodeBindingTranslator assigns one storage buffer binding while decoding
// and another while translating.
type decodeBindingTranslator struct{}

type decodeBindingContext struct {
	acc     gpu.Accessor
	decoded int
}

func (decodeBindingTranslator) DecodeGraphics(gpu.Accessor, gpu.TranslationFlags, int) (gpu.TranslatorContext, error) {
	return nil, errors.New("graphics not supported")
}

func (decodeBindingTranslator) DecodeCompute(acc gpu.Accessor) (gpu.TranslatorContext, error) {
	return &decodeBindingContext{acc: acc, decoded: acc.QueryBindingStorageBuffer(0)}, nil
}

func (c *decodeBindingContext) Translate(gpu.TranslatorContext) (*gpu.ShaderProgram, error) {
	translated := c.acc.QueryBindingStorageBuffer(1)
	return &gpu.ShaderProgram{
		Binary: []byte("bindings"),
		Info: &gpu.ShaderProgramInfo{
			Stage: gpu.StageCompute,
			SBuffers: []gpu.BufferDescriptor{
				{Binding: int32(c.decoded)},  //nolint:gosec // small
				{Binding: int32(translated)}, //nolint:gosec // small
			},
		},
	}, nil
}

func TestLoadComputeBindingsQueriedDuringDecode(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s := newStorage(t, dir)
	seed(t, s, "v1", computeProgram('s', 's'))

	tbl := &tables{}
	l, err := loader.New(loader.Config{
		Store:      s,
		Backend:    &testutil.Backend{Caps: caps, Reject: rejectVersion("v1")},
		Translator: decodeBindingTranslator{},
		Tables:     tbl,
	})
	require.NoError(t, err)
	res, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, loader.Result{Total: 1, Programs: 1, Translated: 1, Rebuilt: true}, res)

	require.Len(t, tbl.compute, 1)
	assert.Equal(t, []gpu.BufferDescriptor{{Binding: 0}, {Binding: 1}}, tbl.compute[0].Shaders[0].Info.SBuffers)
}

func TestLoadBoundsInFlightCompiles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		reject func([]gpu.ShaderSource) bool
	}{
		{name: "host binaries"},
		{name: "retranslated", reject: rejectVersion("v1")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			s := newStorage(t, dir)
			var programs []*gpu.CachedProgram
			for i := range 24 {
				programs = append(programs, graphicsProgram('c', byte('A'+i)))
			}
			seed(t, s, "v1", programs...)

			backend := &testutil.Backend{Caps: caps, PendingChecks: 1000, Reject: tt.reject}
			st := &setup{backend: backend, workers: 2}
			res, err := newLoader(t, s, st).Load(context.Background())
			require.NoError(t, err)

			assert.Equal(t, 24, res.Programs)
			assert.Positive(t, backend.MaxOutstanding())
			assert.LessOrEqual(t, backend.MaxOutstanding(), caps.MaxParallelCompiles)
			assertProgress(t, st.recorder.events, 24)
		})
	}
}

func TestLoadSurvivesCorruption(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		corrupt func(t *testing.T, s *host.Storage)
		// programs is the number of programs expected to load.
		programs int
	}{
		{
			name: "truncated shared data",
			corrupt: func(t *testing.T, s *host.Storage) {
				truncateBy(t, s.SharedDataPath(), 3)
			},
			programs: 2,
		},
		{
			name: "truncated shared toc header",
			corrupt: func(t *testing.T, s *host.Storage) {
				require.NoError(t, os.Truncate(s.SharedTocPath(), 10))
			},
		},
		{
			name: "empty guest data",
			corrupt: func(t *testing.T, s *host.Storage) {
				require.NoError(t, os.Truncate(s.Guest().DataPath(), 0))
			},
		},
		{
			name: "garbage guest toc",
			corrupt: func(t *testing.T, s *host.Storage) {
				require.NoError(t, os.WriteFile(s.Guest().TocPath(), bytes.Repeat([]byte{0xff}, 64), 0o600))
			},
		},
		{
			name: "garbage host data",
			corrupt: func(t *testing.T, s *host.Storage) {
				require.NoError(t, os.WriteFile(s.HostDataPath(), bytes.Repeat([]byte{0x5a}, 256), 0o600))
			},
			programs: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			s := newStorage(t, dir)
			seed(t, s, "v1", graphicsProgram('c', 'a'), computeProgram('b'), graphicsProgram('c', 'z'))
			tt.corrupt(t, s)

			st := &setup{}
			var res loader.Result
			require.NotPanics(t, func() {
				var err error
				res, err = newLoader(t, s, st).Load(context.Background())
				require.NoError(t, err)
			})
			assert.Equal(t, tt.programs, res.Programs)
			assert.True(t, res.Rebuilt)
			assert.Equal(t, loader.StateLoaded, st.recorder.events[len(st.recorder.events)-1].state)

			// The rebuilt cache loads cleanly.
			again := &setup{}
			res, err := newLoader(t, newStorage(t, dir), again).Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.programs, res.Programs)
			assert.Zero(t, res.Errors)
			assert.Zero(t, res.Translated)
		})
	}
}

func truncateBy(t *testing.T, path string, n int64) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, os.Truncate(path, info.Size()-n))
}

func TestLoadCancellation(t *testing.T) {
	t.Parallel()

	t.Run("before start", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		s := newStorage(t, dir)
		seed(t, s, "v1", graphicsProgram('c', 'a'), graphicsProgram('c', 'b'))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		st := &setup{backend: &testutil.Backend{Caps: caps, Reject: rejectVersion("v1")}}
		res, err := newLoader(t, s, st).Load(ctx)
		require.NoError(t, err)

		assert.True(t, res.Cancelled)
		assert.False(t, res.Rebuilt)
		assert.Zero(t, res.Programs)
		assert.Equal(t, loader.StateLoaded, st.recorder.events[len(st.recorder.events)-1].state)

		count, err := s.GetProgramCount()
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("mid load", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		s := newStorage(t, dir)
		var programs []*gpu.CachedProgram
		for i := range 40 {
			programs = append(programs, graphicsProgram('c', byte('A'+i)))
		}
		seed(t, s, "v1", programs...)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		rec := &recorder{onLoad: func(current int) {
			if current == 5 {
				cancel()
			}
		}}
		st := &setup{
			backend:  &testutil.Backend{Caps: caps, Reject: rejectVersion("v1"), PendingChecks: 2},
			recorder: rec,
			workers:  2,
		}
		res, err := newLoader(t, s, st).Load(ctx)
		require.NoError(t, err)

		assert.True(t, res.Cancelled)
		assert.False(t, res.Rebuilt)
		assert.Less(t, res.Programs, 40)
		last := rec.events[len(rec.events)-1]
		assert.Equal(t, event{loader.StateLoaded, 40, 40}, last)

		count, err := s.GetProgramCount()
		require.NoError(t, err)
		assert.Equal(t, 40, count)
	})
}

func TestLoadWithoutCache(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	st := &setup{}
	res, err := newLoader(t, newStorage(t, filepath.Join(dir, "cache")), st).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, loader.Result{}, res)
	assert.Equal(t, []event{{loader.StateStart, 0, 0}, {loader.StateLoaded, 0, 0}}, st.recorder.events)
}

func TestLoadRunsOnce(t *testing.T) {
	t.Parallel()
	l := newLoader(t, newStorage(t, t.TempDir()), &setup{})
	_, err := l.Load(context.Background())
	require.NoError(t, err)
	_, err = l.Load(context.Background())
	require.ErrorIs(t, err, loader.ErrAlreadyLoaded)
}

func TestNewRequiresCollaborators(t *testing.T) {
	t.Parallel()
	s := newStorage(t, t.TempDir())
	backend := &testutil.Backend{Caps: caps}
	translator := &testutil.Translator{}

	for _, cfg := range []loader.Config{
		{Backend: backend, Translator: translator},
		{Store: s, Translator: translator},
		{Store: s, Backend: backend},
	} {
		_, err := loader.New(cfg)
		require.Error(t, err)
	}
}
