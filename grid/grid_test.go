package grid

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payload(t *testing.T, floats ...float32) []byte {
	t.Helper()

	b := new(bytes.Buffer)
	b.Write([]byte{0, 0, 0, 0}) // signature
	require.NoError(t, binary.Write(b, binary.BigEndian, floats))

	return b.Bytes()
}

func sequence(n int) []float32 {
	f := make([]float32, n)
	for i := range f {
		f[i] = float32(i)
	}
	return f
}

func TestDecode(t *testing.T) {
	// x=2, y=3, one channel: 6 forward floats then 6 backward
	r := bytes.NewReader(payload(t, sequence(12)...))

	m, err := Decode(r, 2, 3, []string{"Z"})
	require.NoError(t, err)
	require.Contains(t, m, "Z")

	fwd, bwd := m["Z"].Forward, m["Z"].Backward

	assert.Equal(t, 3, fwd.Rows())
	assert.Equal(t, 2, fwd.Cols())
	assert.Equal(t, []float32{0, 1}, fwd.Row(0))
	assert.Equal(t, []float32{2, 3}, fwd.Row(1))
	assert.Equal(t, []float32{4, 5}, fwd.Row(2))

	assert.Equal(t, 3, bwd.Rows())
	assert.Equal(t, 2, bwd.Cols())
	assert.Equal(t, float32(6), bwd.At(0, 0))
	assert.Equal(t, float32(11), bwd.At(2, 1))
}

func TestDecodeMultipleChannels(t *testing.T) {
	r := bytes.NewReader(payload(t, sequence(16)...))

	m, err := Decode(r, 2, 2, []string{"Z", "Current"})
	require.NoError(t, err)
	require.Len(t, m, 2)

	assert.Equal(t, float32(0), m["Z"].Forward.At(0, 0))
	assert.Equal(t, float32(4), m["Z"].Backward.At(0, 0))
	assert.Equal(t, float32(8), m["Current"].Forward.At(0, 0))
	assert.Equal(t, float32(12), m["Current"].Backward.At(0, 0))
	assert.Equal(t, float32(15), m["Current"].Backward.At(1, 1))
}

func TestDecodeTruncated(t *testing.T) {
	// 10 floats where 12 are required
	r := bytes.NewReader(payload(t, sequence(10)...))

	_, err := Decode(r, 2, 3, []string{"Z"})
	assert.ErrorIs(t, err, ErrTruncatedPayload)
}

func TestDecodeMissingSignature(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte{0, 0}), 2, 3, []string{"Z"})
	assert.ErrorIs(t, err, ErrTruncatedPayload)
}

func TestDecodeStopsAfterPayload(t *testing.T) {
	b := payload(t, sequence(8)...)
	b = append(b, 0xde, 0xad, 0xbe, 0xef)

	r := bytes.NewReader(b)
	_, err := Decode(r, 2, 2, []string{"Z"})
	require.NoError(t, err)

	pos, err := r.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(4+8*4), pos)
}

func TestDecodeBigEndian(t *testing.T) {
	b := []byte{
		0, 0, 0, 0, // signature
		0x3f, 0x80, 0x00, 0x00, // 1.0
		0xc0, 0x00, 0x00, 0x00, // -2.0
	}

	m, err := Decode(bytes.NewReader(b), 1, 1, []string{"Z"})
	require.NoError(t, err)

	assert.Equal(t, float32(1), m["Z"].Forward.At(0, 0))
	assert.Equal(t, float32(-2), m["Z"].Backward.At(0, 0))
}

func TestDecodeInvalidShape(t *testing.T) {
	_, err := Decode(bytes.NewReader(nil), 0, 3, []string{"Z"})
	assert.Error(t, err)

	_, err = Decode(bytes.NewReader(nil), 2, 3, nil)
	assert.Error(t, err)
}
