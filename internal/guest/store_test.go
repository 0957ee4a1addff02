package guest

import (
	"bytes"
	"encoding/binary"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/shadercache/internal/cacheerr"
	"github.com/meigma/shadercache/internal/testutil"
)

func newStore(t *testing.T, dir string, opts ...Option) *Store {
	t.Helper()
	s, err := New(dir, opts...)
	require.NoError(t, err)
	return s
}

func load(t *testing.T, s *Store, index int) ([]byte, []byte, error) {
	t.Helper()
	toc, err := s.OpenTocFile()
	require.NoError(t, err)
	defer toc.Close()
	data, err := s.OpenDataFile()
	require.NoError(t, err)
	defer data.Close()

	gc, err := s.LoadShader(toc, data, index)
	if err != nil {
		return nil, nil, err
	}
	return gc.Code, gc.Cb1Data, nil
}

func pattern(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = seed + byte(i*7)
	}
	return b
}

func TestAddShaderExample(t *testing.T) {
	t.Parallel()

	s := newStore(t, t.TempDir())

	idx, err := s.AddShader(pattern(64, 1), pattern(32, 2))
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	idx, err = s.AddShader(pattern(64, 3), pattern(32, 4))
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	require.NoError(t, s.ClearCache())

	idx, err = s.AddShader(pattern(64, 1), pattern(32, 2))
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
}

func TestRoundTripAcrossRestart(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := newStore(t, dir)

	type shader struct{ code, cb1 []byte }
	shaders := []shader{
		{pattern(128, 1), pattern(16, 9)},
		{pattern(4096, 2), nil},
		{pattern(8, 3), pattern(256, 7)},
	}
	for i, sh := range shaders {
		idx, err := s.AddShader(sh.code, sh.cb1)
		require.NoError(t, err)
		require.Equal(t, i, idx)
	}

	reopened := newStore(t, dir)
	count, err := reopened.Count()
	require.NoError(t, err)
	assert.Equal(t, len(shaders), count)

	for i, sh := range shaders {
		code, cb1, err := load(t, reopened, i)
		require.NoError(t, err)
		assert.Equal(t, sh.code, code)
		assert.Len(t, cb1, len(sh.cb1))
		assert.True(t, bytes.Equal(sh.cb1, cb1))
	}

	// Re-adding after restart deduplicates against the persisted TOC.
	idx, err := reopened.AddShader(shaders[2].code, shaders[2].cb1)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
}

func TestAddShaderDeduplicates(t *testing.T) {
	t.Parallel()

	s := newStore(t, t.TempDir())
	code, cb1 := pattern(64, 5), pattern(32, 6)

	first, err := s.AddShader(code, cb1)
	require.NoError(t, err)
	mods, err := s.ModificationsCount()
	require.NoError(t, err)
	dataInfo, err := os.Stat(s.DataPath())
	require.NoError(t, err)

	second, err := s.AddShader(code, cb1)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	mods2, err := s.ModificationsCount()
	require.NoError(t, err)
	assert.Equal(t, mods, mods2)
	dataInfo2, err := os.Stat(s.DataPath())
	require.NoError(t, err)
	assert.Equal(t, dataInfo.Size(), dataInfo2.Size())
}

func TestAddShaderHashCollisions(t *testing.T) {
	t.Parallel()

	s := newStore(t, t.TempDir(), WithHashFunc(func(_, _ []byte) uint32 { return 7 }))

	tests := []struct {
		name string
		code []byte
		cb1  []byte
		want int
	}{
		{"first", pattern(64, 1), pattern(32, 1), 0},
		{"different code same sizes", pattern(64, 2), pattern(32, 1), 1},
		{"different cb1 same sizes", pattern(64, 1), pattern(32, 2), 2},
		{"different code size", pattern(65, 1), pattern(32, 1), 3},
		{"duplicate of first", pattern(64, 1), pattern(32, 1), 0},
		{"duplicate of second", pattern(64, 2), pattern(32, 1), 1},
	}
	for _, tt := range tests {
		idx, err := s.AddShader(tt.code, tt.cb1)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, idx, tt.name)
	}

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestAddShaderReloadsOnForeignModification(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := newStore(t, dir)
	b := newStore(t, dir)

	idx, err := a.AddShader(pattern(32, 1), nil)
	require.NoError(t, err)
	require.Equal(t, 0, idx)

	idx, err = b.AddShader(pattern(32, 2), nil)
	require.NoError(t, err)
	require.Equal(t, 1, idx)

	// a must see b's entry instead of appending a duplicate.
	idx, err = a.AddShader(pattern(32, 2), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	mods, err := a.ModificationsCount()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), mods)
}

func TestClearCacheIsIdempotent(t *testing.T) {
	t.Parallel()

	s := newStore(t, t.TempDir())
	_, err := s.AddShader(pattern(64, 1), pattern(8, 1))
	require.NoError(t, err)

	for range 2 {
		require.NoError(t, s.ClearCache())
		assert.True(t, s.TocFileExists())
		assert.True(t, s.DataFileExists())

		info, err := os.Stat(s.TocPath())
		require.NoError(t, err)
		assert.Zero(t, info.Size())

		count, err := s.Count()
		require.NoError(t, err)
		assert.Zero(t, count)
	}
}

func TestClearCacheOnFreshStore(t *testing.T) {
	t.Parallel()

	s := newStore(t, t.TempDir())
	assert.False(t, s.TocFileExists())
	require.NoError(t, s.ClearCache())
	assert.True(t, s.TocFileExists())
}

func TestStubbedEntryNeverMatches(t *testing.T) {
	t.Parallel()

	s := newStore(t, t.TempDir())
	code := pattern(64, 1)

	idx, err := s.AddShader(code, nil)
	require.NoError(t, err)
	require.NoError(t, s.StubShader(idx))

	again, err := s.AddShader(code, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, again)

	_, _, err = load(t, s, 0)
	assert.ErrorIs(t, err, cacheerr.ErrCorrupt)

	got, _, err := load(t, s, 1)
	require.NoError(t, err)
	assert.Equal(t, code, got)
}

func TestLoadShaderReturnsOwnedBuffers(t *testing.T) {
	t.Parallel()

	s := newStore(t, t.TempDir())
	code := pattern(64, 1)
	_, err := s.AddShader(code, nil)
	require.NoError(t, err)

	got, _, err := load(t, s, 0)
	require.NoError(t, err)
	got[0] ^= 0xff

	again, _, err := load(t, s, 0)
	require.NoError(t, err)
	assert.Equal(t, code, again)
}

func TestLoadShaderCorruption(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		corrupt func(t *testing.T, s *Store)
		index   int
	}{
		{
			name:    "index beyond toc",
			corrupt: func(*testing.T, *Store) {},
			index:   5,
		},
		{
			name:    "negative index",
			corrupt: func(*testing.T, *Store) {},
			index:   -1,
		},
		{
			name: "offset beyond data file",
			corrupt: func(t *testing.T, s *Store) {
				var off [4]byte
				binary.LittleEndian.PutUint32(off[:], 1<<30)
				writeAt(t, s.TocPath(), off[:], entryOffset(0))
			},
		},
		{
			name: "garbage compressed block",
			corrupt: func(t *testing.T, s *Store) {
				writeAt(t, s.DataPath(), bytes.Repeat([]byte{0xee}, 16), 4)
			},
		},
		{
			name: "code size mismatch",
			corrupt: func(t *testing.T, s *Store) {
				var size [4]byte
				binary.LittleEndian.PutUint32(size[:], 63)
				writeAt(t, s.TocPath(), size[:], entryOffset(0)+4)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			s := newStore(t, dir, WithMemoryCacheSize(0))
			_, err := s.AddShader(pattern(64, 1), nil)
			require.NoError(t, err)

			tt.corrupt(t, s)

			_, _, err = load(t, s, tt.index)
			require.Error(t, err)
			assert.ErrorIs(t, err, cacheerr.ErrCorrupt)
		})
	}
}

func TestBadTocHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		corrupt func(t *testing.T, s *Store)
		loadErr error
	}{
		{
			name: "magic",
			corrupt: func(t *testing.T, s *Store) {
				writeAt(t, s.TocPath(), []byte("XXXX"), 0)
			},
			loadErr: cacheerr.ErrCorrupt,
		},
		{
			name: "version",
			corrupt: func(t *testing.T, s *Store) {
				var v [4]byte
				binary.LittleEndian.PutUint32(v[:], tocVersion+1)
				writeAt(t, s.TocPath(), v[:], 4)
			},
			loadErr: cacheerr.ErrIncompatibleVersion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newStore(t, t.TempDir(), WithMemoryCacheSize(0))
			_, err := s.AddShader(pattern(16, 1), nil)
			require.NoError(t, err)
			_, err = s.AddShader(pattern(16, 3), nil)
			require.NoError(t, err)
			tt.corrupt(t, s)

			_, _, err = load(t, s, 0)
			assert.ErrorIs(t, err, tt.loadErr)

			code := pattern(16, 2)
			index, err := s.AddShader(code, nil)
			require.NoError(t, err)
			assert.Equal(t, 0, index)

			count, err := s.Count()
			require.NoError(t, err)
			assert.Equal(t, 1, count)
			mods, err := s.ModificationsCount()
			require.NoError(t, err)
			assert.Equal(t, uint32(1), mods)

			got, _, err := load(t, s, 0)
			require.NoError(t, err)
			assert.Equal(t, code, got)

			reopened := newStore(t, s.dir)
			index, err = reopened.AddShader(code, nil)
			require.NoError(t, err)
			assert.Equal(t, 0, index)
		})
	}
}

func TestAddShaderIgnoresTrailingPartialEntry(t *testing.T) {
	t.Parallel()

	s := newStore(t, t.TempDir())
	_, err := s.AddShader(pattern(16, 1), nil)
	require.NoError(t, err)

	f, err := os.OpenFile(s.TocPath(), os.O_WRONLY|os.O_APPEND, 0)
	require.NoError(t, err)
	_, err = f.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	idx, err := s.AddShader(pattern(16, 2), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	code, _, err := load(t, s, 1)
	require.NoError(t, err)
	assert.Equal(t, pattern(16, 2), code)
}

func TestAddShaderRejectsEmptyCode(t *testing.T) {
	t.Parallel()

	s := newStore(t, t.TempDir())
	_, err := s.AddShader(nil, pattern(4, 1))
	assert.ErrorIs(t, err, ErrEmptyCode)
}

func TestDefaultHashIsOrderSensitive(t *testing.T) {
	t.Parallel()

	a, b := pattern(16, 1), pattern(16, 2)
	assert.Equal(t, DefaultHash(a, b), DefaultHash(a, b))
	assert.NotEqual(t, DefaultHash(a, b), DefaultHash(b, a))
}

func writeAt(t *testing.T, path string, b []byte, off int64) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.WriteAt(b, off)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestLoadShaderReadFailureIsNotCorruption(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := newStore(t, dir, WithMemoryCacheSize(0))
	code := pattern(48, 9)
	_, err := s.AddShader(code, []byte{1, 2, 3, 4})
	require.NoError(t, err)

	tocBytes, err := os.ReadFile(s.TocPath())
	require.NoError(t, err)
	dataBytes, err := os.ReadFile(s.DataPath())
	require.NoError(t, err)

	gc, err := s.LoadShader(testutil.NewByteSource(tocBytes), testutil.NewByteSource(dataBytes), 0)
	require.NoError(t, err)
	assert.Equal(t, code, gc.Code)

	data := testutil.NewByteSource(dataBytes)
	data.FailAfter = 0
	_, err = s.LoadShader(testutil.NewByteSource(tocBytes), data, 0)
	require.ErrorIs(t, err, testutil.ErrInjected)
	assert.NotErrorIs(t, err, cacheerr.ErrCorrupt)
	assert.Positive(t, data.Reads())
}
