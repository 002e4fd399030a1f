package compress

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/mcproto/pkg/protocol"
)

func TestGzipRoundTrip(t *testing.T) {
	g := Gzip{}
	src := bytes.Repeat([]byte("level.dat "), 100)

	z, err := g.Deflate(src)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1f, 0x8b}, z[:2], "gzip magic")
	assert.Less(t, len(z), len(src))

	back, err := g.Inflate(z)
	require.NoError(t, err)
	assert.Equal(t, src, back)
}

func TestGzipLimits(t *testing.T) {
	z, err := Gzip{}.Deflate(make([]byte, 1024))
	require.NoError(t, err)

	_, err = Gzip{MaxInflated: 100}.Inflate(z)
	assert.ErrorIs(t, err, ErrInflatedTooLarge)
	assert.ErrorIs(t, err, protocol.ErrAllocationTooLarge)

	_, err = Gzip{}.Inflate([]byte("not gzip"))
	assert.Error(t, err)
}

func TestThresholdBelow(t *testing.T) {
	tr := NewThreshold(256)
	p := []byte{0x01, 0x02, 0x03}

	enc, err := tr.Encode(p)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x01, 0x02, 0x03}, enc)

	dec, err := tr.Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, p, dec)
}

func TestThresholdAbove(t *testing.T) {
	tr := NewThreshold(64)
	p := bytes.Repeat([]byte{0xAA}, 1000)

	enc, err := tr.Encode(p)
	require.NoError(t, err)
	size, n := protocol.DecodeVarInt(enc)
	require.Greater(t, n, 0)
	assert.Equal(t, int32(1000), size)
	assert.Less(t, len(enc), len(p))

	dec, err := tr.Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, p, dec)
}

func TestThresholdDisabled(t *testing.T) {
	tr := NewThreshold(-1)
	p := []byte("unchanged")
	enc, err := tr.Encode(p)
	require.NoError(t, err)
	assert.Equal(t, p, enc)

	var nilT *Threshold
	assert.False(t, nilT.Enabled())
}

func TestThresholdDecodeErrors(t *testing.T) {
	tr := &Threshold{Threshold: 0, MaxInflated: 16}

	_, err := tr.Decode([]byte{0x80})
	assert.True(t, errors.Is(err, protocol.ErrTruncatedInput), "err = %v", err)

	_, err = tr.Decode([]byte{0x20, 0x78, 0x9c})
	assert.ErrorIs(t, err, ErrInflatedTooLarge)

	enc, err := NewThreshold(0).Encode([]byte("abcd"))
	require.NoError(t, err)
	enc[0] = 0x05 // lie about the size
	_, err = tr.Decode(enc)
	assert.ErrorIs(t, err, protocol.ErrValueMismatch)
}
