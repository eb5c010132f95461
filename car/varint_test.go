package car

import (
	"bufio"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVarintRoundTrip(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 128, 300, 1 << 20, 1<<63 - 1} {
		var buf bytes.Buffer
		_, err := putUvarint(&buf, v)
		require.NoError(t, err)

		got, err := readVarint(bufio.NewReader(&buf))
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestReadVarintEOF(t *testing.T) {
	_, err := readVarint(bufio.NewReader(bytes.NewReader(nil)))
	require.ErrorIs(t, err, io.EOF)
}

func TestReadVarintMalformed(t *testing.T) {
	// 10 continuation bytes of all-ones followed by a terminating
	// byte: more bytes than a 64-bit uvarint ever needs.
	bad := append(bytes.Repeat([]byte{0xff}, 10), 0x01)
	_, err := readVarint(bufio.NewReader(bytes.NewReader(bad)))
	require.ErrorIs(t, err, ErrMalformedVarint)
}
