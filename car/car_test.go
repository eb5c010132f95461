package car

import (
	"bytes"
	"testing"

	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/require"
)

func blockCid(t *testing.T, data []byte) cid.Cid {
	t.Helper()
	h, err := mh.Sum(data, mh.SHA2_256, -1)
	require.NoError(t, err)
	return cid.NewCidV1(cid.Raw, h)
}

func TestWriterReaderRoundTrip(t *testing.T) {
	blocks := [][]byte{[]byte("aaaa"), []byte("bbbb"), []byte("cccc")}
	cids := make([]cid.Cid, len(blocks))
	for i, b := range blocks {
		cids[i] = blockCid(t, b)
	}

	var buf bytes.Buffer
	w, err := Create(&buf, []cid.Cid{cids[len(cids)-1]})
	require.NoError(t, err)
	for i, b := range blocks {
		require.NoError(t, w.Put(cids[i], b))
	}
	require.NoError(t, w.Finish())

	r, err := OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Equal(t, []cid.Cid{cids[len(cids)-1]}, r.Roots())

	n, err := r.Index()
	require.NoError(t, err)
	require.Equal(t, len(blocks), n)

	for i, b := range blocks {
		got, err := r.ReadBlock(cids[i])
		require.NoError(t, err)
		require.Equal(t, b, got)
	}

	require.NoError(t, r.Verify())
}

func TestWriterDedupsRepeatedPuts(t *testing.T) {
	data := []byte("same bytes twice")
	c := blockCid(t, data)

	var buf bytes.Buffer
	w, err := Create(&buf, []cid.Cid{c})
	require.NoError(t, err)
	require.NoError(t, w.Put(c, data))
	require.NoError(t, w.Put(c, data))
	require.NoError(t, w.Finish())

	r, err := OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	n, err := r.Index()
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestReaderReadBlockNotFound(t *testing.T) {
	c := blockCid(t, []byte("x"))
	var buf bytes.Buffer
	w, err := Create(&buf, []cid.Cid{c})
	require.NoError(t, err)
	require.NoError(t, w.Finish())

	r, err := OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	_, err = r.ReadBlock(blockCid(t, []byte("missing")))
	require.ErrorIs(t, err, ErrBlockNotFound)
}

func TestVerifyDetectsHashMismatch(t *testing.T) {
	data := []byte("original")
	c := blockCid(t, data)

	var buf bytes.Buffer
	w, err := Create(&buf, []cid.Cid{c})
	require.NoError(t, err)
	require.NoError(t, w.Put(c, data))
	require.NoError(t, w.Finish())

	// Corrupt the payload byte without touching the CID or length.
	corrupted := buf.Bytes()
	corrupted[len(corrupted)-1] ^= 0xff

	r, err := OpenReader(bytes.NewReader(corrupted))
	require.NoError(t, err)

	err = r.Verify()
	var mismatch *HashMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestCreateRejectsNoRoots(t *testing.T) {
	var buf bytes.Buffer
	_, err := Create(&buf, nil)
	require.ErrorIs(t, err, ErrNoRoots)
}

func TestOpenReaderRejectsTruncatedHeader(t *testing.T) {
	_, err := OpenReader(bytes.NewReader([]byte{0x05, 0x01, 0x02}))
	require.Error(t, err)
}
