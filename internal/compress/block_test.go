package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockRoundTrip(t *testing.T) {
	t.Parallel()

	p := NewPool(DefaultMaxDecoderMemory)
	src := bytes.Repeat([]byte("shader code "), 100)

	var buf bytes.Buffer
	n, err := p.WriteBlock(&buf, src)
	require.NoError(t, err)
	assert.Equal(t, buf.Len(), n)
	assert.Less(t, n, len(src), "repetitive input should compress")

	got, err := p.ReadBlock(bytes.NewReader(buf.Bytes()), len(src))
	require.NoError(t, err)
	assert.Equal(t, src, got)

	all, err := p.ReadBlockAll(bytes.NewReader(buf.Bytes()), 1<<20)
	require.NoError(t, err)
	assert.Equal(t, src, all)
}

func TestBlockEmpty(t *testing.T) {
	t.Parallel()

	p := NewPool(0)
	var buf bytes.Buffer
	_, err := p.WriteBlock(&buf, nil)
	require.NoError(t, err)

	got, err := p.ReadBlock(bytes.NewReader(buf.Bytes()), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBlockErrors(t *testing.T) {
	t.Parallel()

	p := NewPool(DefaultMaxDecoderMemory)
	src := []byte("0123456789abcdef0123456789abcdef")
	var buf bytes.Buffer
	_, err := p.WriteBlock(&buf, src)
	require.NoError(t, err)
	encoded := buf.Bytes()

	t.Run("truncated header", func(t *testing.T) {
		t.Parallel()
		_, err := p.ReadBlock(bytes.NewReader(encoded[:2]), len(src))
		assert.ErrorIs(t, err, ErrDecompression)
	})

	t.Run("truncated frame", func(t *testing.T) {
		t.Parallel()
		_, err := p.ReadBlock(bytes.NewReader(encoded[:len(encoded)-3]), len(src))
		assert.Error(t, err)
	})

	t.Run("wrong size", func(t *testing.T) {
		t.Parallel()
		_, err := p.ReadBlock(bytes.NewReader(encoded), len(src)-1)
		assert.ErrorIs(t, err, ErrSizeMismatch)

		_, err = p.ReadBlock(bytes.NewReader(encoded), len(src)+1)
		assert.ErrorIs(t, err, ErrSizeMismatch)
	})

	t.Run("garbage frame", func(t *testing.T) {
		t.Parallel()
		bad := append([]byte{8, 0, 0, 0}, []byte("notzstd!")...)
		_, err := p.ReadBlock(bytes.NewReader(bad), 4)
		assert.Error(t, err)
	})

	t.Run("limit exceeded", func(t *testing.T) {
		t.Parallel()
		_, err := p.ReadBlockAll(bytes.NewReader(encoded), 4)
		assert.ErrorIs(t, err, ErrSizeMismatch)
	})
}
