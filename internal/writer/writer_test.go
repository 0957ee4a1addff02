package writer_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/shadercache/gpu"
	"github.com/meigma/shadercache/internal/guest"
	"github.com/meigma/shadercache/internal/host"
	"github.com/meigma/shadercache/internal/metrics"
	"github.com/meigma/shadercache/internal/testutil"
	"github.com/meigma/shadercache/internal/writer"
)

type fakeStore struct {
	mu      sync.Mutex
	written [][]byte
	opens   int
	fail    func(binary []byte) bool
}

func (s *fakeStore) GetOutputStreams() (*host.OutputStreams, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opens++
	return &host.OutputStreams{}, nil
}

func (s *fakeStore) AddShader(_ *gpu.CachedProgram, binary []byte, _ *host.OutputStreams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil && s.fail(binary) {
		return errors.New("disk full")
	}
	s.written = append(s.written, binary)
	return nil
}

func (s *fakeStore) snapshot() ([][]byte, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.written...), s.opens
}

func computeProgram(code string) *gpu.CachedProgram {
	return &gpu.CachedProgram{
		SpecializationState: gpu.NewComputeSpecialization(gpu.ComputeState{LocalSizeX: 1, LocalSizeY: 1, LocalSizeZ: 1}),
		Shaders: []*gpu.CachedStage{{
			Info: &gpu.ShaderProgramInfo{Stage: gpu.StageCompute},
			Code: testutil.GuestShader([]byte(code)...),
		}},
	}
}

func TestWorkerWritesInOrder(t *testing.T) {
	t.Parallel()
	store := &fakeStore{}
	w := writer.New(store)
	defer w.Close()

	for _, b := range []string{"a", "b", "c"} {
		w.AddShader(computeProgram(b), []byte(b))
	}
	w.Flush()

	written, opens := store.snapshot()
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b"), []byte("c")}, written)
	assert.Equal(t, 1, opens)
}

func TestWorkerDropsFailedWrites(t *testing.T) {
	t.Parallel()
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	store := &fakeStore{fail: func(b []byte) bool { return string(b) == "bad" }}
	w := writer.New(store, writer.WithMetrics(m))
	w.AddShader(computeProgram("a"), []byte("ok"))
	w.AddShader(computeProgram("b"), []byte("bad"))
	w.AddShader(computeProgram("c"), []byte("ok2"))
	w.Close()

	written, opens := store.snapshot()
	assert.Equal(t, [][]byte{[]byte("ok"), []byte("ok2")}, written)
	assert.Equal(t, 2, opens, "streams reopen after a failed write")

	expected := `
# HELP shadercache_writer_errors_total Programs dropped by the background writer after a storage error.
# TYPE shadercache_writer_errors_total counter
shadercache_writer_errors_total 1
# HELP shadercache_writer_programs_total Programs written to the disk cache by the background writer.
# TYPE shadercache_writer_programs_total counter
shadercache_writer_programs_total 2
`
	require.NoError(t, promtest.GatherAndCompare(reg, strings.NewReader(expected),
		"shadercache_writer_programs_total", "shadercache_writer_errors_total"))
}

func TestWorkerIgnoresWritesAfterClose(t *testing.T) {
	t.Parallel()
	store := &fakeStore{}
	w := writer.New(store)
	w.AddShader(computeProgram("a"), []byte("a"))
	w.Close()
	w.Close()

	w.AddShader(computeProgram("b"), []byte("b"))
	w.Flush()

	written, _ := store.snapshot()
	assert.Equal(t, [][]byte{[]byte("a")}, written)
}

func TestWorkerConcurrentProducers(t *testing.T) {
	t.Parallel()
	store := &fakeStore{}
	w := writer.New(store)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 25 {
				w.AddShader(computeProgram("x"), []byte{byte(i), byte(j)})
			}
		}()
	}
	wg.Wait()
	w.Close()

	written, _ := store.snapshot()
	assert.Len(t, written, 200)
}

func TestWorkerWritesToStorage(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	g, err := guest.New(dir)
	require.NoError(t, err)
	caps := gpu.Capabilities{API: "vulkan", VendorName: "Test"}
	s, err := host.New(dir, g, caps)
	require.NoError(t, err)

	w := writer.New(s)
	w.AddShader(computeProgram("a"), []byte("binary-a"))
	w.AddShader(computeProgram("b"), []byte("binary-b"))
	w.Close()

	count, err := s.GetProgramCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	p := &countingPipeline{}
	require.NoError(t, s.LoadShaders(context.Background(), p))
	assert.Equal(t, [][]byte{[]byte("binary-a"), []byte("binary-b")}, p.binaries)
}

type countingPipeline struct {
	binaries [][]byte
}

func (p *countingPipeline) QueueHostProgram(_ int, _ []*gpu.CachedStage, binary []byte, _ *gpu.SpecializationState) {
	p.binaries = append(p.binaries, binary)
}

func (p *countingPipeline) QueueGuestProgram(int, []*gpu.GuestCode, *gpu.SpecializationState) {}

func (p *countingPipeline) CheckCompilation() {}
