package unixfs

import (
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multicodec"
	mh "github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/require"

	"github.com/blocklessnetwork/car-utils/car"
)

func pbCid(t *testing.T, data []byte) cid.Cid {
	t.Helper()
	h, err := mh.Sum(data, mh.SHA2_256, -1)
	require.NoError(t, err)
	return cid.NewCidV1(uint64(multicodec.DagPb), h)
}

func TestFileRoundTripNoChildren(t *testing.T) {
	raw, err := EncodeFile([]byte("hello world"), nil)
	require.NoError(t, err)

	c := pbCid(t, raw)
	n, err := Parse(c, raw)
	require.NoError(t, err)

	f, ok := n.(File)
	require.True(t, ok)
	require.Equal(t, []byte("hello world"), f.Data)
	require.Empty(t, f.Childrens)
}

func TestFileRoundTripWithChildren(t *testing.T) {
	leafA := FileEntryWithTSize(pbCid(t, []byte("a")), 4, 5)
	leafB := FileEntryWithTSize(pbCid(t, []byte("b")), 6, 7)

	raw, err := EncodeFile(nil, []FileEntry{leafA, leafB})
	require.NoError(t, err)

	c := pbCid(t, raw)
	n, err := Parse(c, raw)
	require.NoError(t, err)

	f, ok := n.(File)
	require.True(t, ok)
	require.Len(t, f.Childrens, 2)
	require.Equal(t, uint64(4), f.Childrens[0].FileSize)
	require.Equal(t, uint64(6), f.Childrens[1].FileSize)
	require.True(t, f.Childrens[0].Cid.Equals(leafA.Cid))

	tsize, ok := f.Childrens[0].TSize()
	require.True(t, ok)
	require.Equal(t, uint64(5), tsize)
}

func TestDirectoryRoundTrip(t *testing.T) {
	childA := DirectoryEntry{Entry: Entry{Cid: pbCid(t, []byte("a"))}, Name: "a.txt"}
	childB := DirectoryEntry{Entry: Entry{Cid: pbCid(t, []byte("b"))}, Name: "b.txt"}

	raw, err := EncodeDirectory([]DirectoryEntry{childA, childB})
	require.NoError(t, err)

	c := pbCid(t, raw)
	n, err := Parse(c, raw)
	require.NoError(t, err)

	d, ok := n.(Directory)
	require.True(t, ok)
	require.Len(t, d.Childrens, 2)
	require.Equal(t, "a.txt", d.Childrens[0].Name)
	require.Equal(t, "b.txt", d.Childrens[1].Name)
}

func TestSymlinkRoundTrip(t *testing.T) {
	raw := EncodeSymlink([]byte("../target"))

	c := pbCid(t, raw)
	n, err := Parse(c, raw)
	require.NoError(t, err)

	s, ok := n.(Symlink)
	require.True(t, ok)
	require.Equal(t, []byte("../target"), s.Target)
}

func TestParseRawLeaf(t *testing.T) {
	data := []byte("raw leaf bytes")
	h, err := mh.Sum(data, mh.SHA2_256, -1)
	require.NoError(t, err)
	c := cid.NewCidV1(uint64(multicodec.Raw), h)

	n, err := Parse(c, data)
	require.NoError(t, err)
	f, ok := n.(File)
	require.True(t, ok)
	require.Equal(t, data, f.Data)
}

func TestDecodePBNodeMatchesEncodedShape(t *testing.T) {
	raw, err := EncodeFile(nil, []FileEntry{FileEntryWithTSize(pbCid(t, []byte("a")), 4, 0)})
	require.NoError(t, err)

	nodeData, links, err := decodePBNode(raw)
	require.NoError(t, err)
	d, err := decodePBData(nodeData)
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.Len(t, d.blocksizes, 1)
}

func TestParseUnsupportedNodeType(t *testing.T) {
	pbd := appendPBData(nil, pbTMetadata, nil, nil, nil)
	raw := appendPBNode(nil, pbd)

	c := pbCid(t, raw)
	_, err := Parse(c, raw)
	require.ErrorIs(t, err, car.ErrUnsupportedNodeType)
}
