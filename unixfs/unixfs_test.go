package unixfs_test

import (
	"testing"

	. "github.com/blocklessnetwork/car-utils/unixfs"
	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/require"
)

func TestParseRaw(t *testing.T) {
	data := []byte("hello world")
	h, err := mh.Sum(data, mh.SHA2_256, -1)
	require.NoError(t, err)
	c := cid.NewCidV1(cid.Raw, h)

	n, err := Parse(c, data)
	require.NoError(t, err)

	f, ok := n.(File)
	require.True(t, ok)
	require.Equal(t, data, f.Data)
	require.Empty(t, f.Childrens)

	tsize, ok := f.TSize()
	require.True(t, ok)
	require.Equal(t, uint64(len(data)), tsize)
	require.True(t, c.Equals(f.Cid))
}

func TestEntryTSizeAbsentByDefault(t *testing.T) {
	var e Entry
	_, ok := e.TSize()
	require.False(t, ok)
}

func TestTypeOf(t *testing.T) {
	require.Equal(t, TFile, TypeOf(File{}))
	require.Equal(t, TDirectory, TypeOf(Directory{}))
	require.Equal(t, TSymlink, TypeOf(Symlink{}))
}
