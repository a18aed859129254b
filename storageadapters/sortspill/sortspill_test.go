package sortspill

import (
	"encoding/binary"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// intCodec encodes an int as 8 bytes big-endian, enough to exercise the
// spill-encode/compress/decompress/decode round trip without needing a
// real record type.
type intCodec struct{}

func (intCodec) Encode(v int) ([]byte, error) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	return buf[:], nil
}

func (intCodec) Decode(data []byte) (int, error) {
	return int(binary.BigEndian.Uint64(data)), nil
}

func drain(t *testing.T, cur interface {
	Next() (int, bool, error)
	Close() error
}) []int {
	t.Helper()
	defer cur.Close()
	var out []int
	for {
		v, ok, err := cur.Next()
		require.NoError(t, err)
		if !ok {
			return out
		}
		out = append(out, v)
	}
}

func TestBufferSortsEntirelyInMemoryBelowThreshold(t *testing.T) {
	buf := New[int](t.TempDir(), 10, intCodec{})
	for _, v := range []int{5, 3, 4, 1, 2} {
		buf.Add(v)
	}
	cur := buf.Sorted(func(a, b int) bool { return a < b })
	assert.Equal(t, []int{1, 2, 3, 4, 5}, drain(t, cur))
}

func TestBufferSpillsAndReadsBackPastThreshold(t *testing.T) {
	buf := New[int](t.TempDir(), 2, intCodec{})
	for _, v := range []int{9, 1, 8, 2, 7, 3} {
		buf.Add(v)
	}
	cur := buf.Sorted(func(a, b int) bool { return a < b })
	assert.Equal(t, []int{1, 2, 3, 7, 8, 9}, drain(t, cur))
}

func TestBufferCloseRemovesSpillFile(t *testing.T) {
	dir := t.TempDir()
	buf := New[int](dir, 1, intCodec{})
	buf.Add(1)
	buf.Add(2)
	buf.Add(3)
	require.NoError(t, buf.Close())

	left, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, left)
}
