package packer_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/blocklessnetwork/car-utils/car"
	"github.com/blocklessnetwork/car-utils/packer"
	"github.com/blocklessnetwork/car-utils/unixfs"
)

// readBack opens a freshly written CAR buffer and resolves its single
// root to a unixfs.Node.
func readBack(t *testing.T, buf *bytes.Buffer) unixfs.Node {
	t.Helper()
	r, err := car.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	roots := r.Roots()
	require.Len(t, roots, 1)

	data, err := r.ReadBlock(roots[0])
	require.NoError(t, err)
	n, err := unixfs.Parse(roots[0], data)
	require.NoError(t, err)
	return n
}

func TestPackSmallDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644))

	var buf bytes.Buffer
	require.NoError(t, packer.New().Pack(dir, &buf))

	r, err := car.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	n, err := r.Index()
	require.NoError(t, err)
	require.Equal(t, 2, n) // single-chunk file collapses to its leaf CID: raw leaf + directory

	root := r.Roots()[0]
	data, err := r.ReadBlock(root)
	require.NoError(t, err)
	node, err := unixfs.Parse(root, data)
	require.NoError(t, err)

	d, ok := node.(unixfs.Directory)
	require.True(t, ok)
	require.Len(t, d.Childrens, 1)
	require.Equal(t, "a.txt", d.Childrens[0].Name)
}

func TestPackSingleChunkFileHasNoWrapperNode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	var buf bytes.Buffer
	require.NoError(t, packer.New(packer.WithNoWrap(true)).Pack(path, &buf))

	node := readBack(t, &buf)
	f, ok := node.(unixfs.File)
	require.True(t, ok)
	require.Equal(t, []byte("hello"), f.Data)
	require.Empty(t, f.Childrens)
}

func TestPackMultiChunkFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.bin")
	content := bytes.Repeat([]byte{0}, 512*1024)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	var buf bytes.Buffer
	require.NoError(t, packer.New(packer.WithNoWrap(true), packer.WithChunkSize(256*1024)).Pack(path, &buf))

	node := readBack(t, &buf)
	f, ok := node.(unixfs.File)
	require.True(t, ok)
	require.Len(t, f.Childrens, 2)
	require.True(t, f.Childrens[0].Cid.Equals(f.Childrens[1].Cid)) // identical zero-filled leaves
}

func TestPackEmptyDirectory(t *testing.T) {
	dir := t.TempDir()

	var buf bytes.Buffer
	require.NoError(t, packer.New().Pack(dir, &buf))

	r, err := car.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	n, err := r.Index()
	require.NoError(t, err)
	require.Equal(t, 1, n)

	node := readBack(t, &buf)
	d, ok := node.(unixfs.Directory)
	require.True(t, ok)
	require.Empty(t, d.Childrens)
}

func TestPackDeduplicatesIdenticalFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("same"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("same"), 0o644))

	var buf bytes.Buffer
	require.NoError(t, packer.New().Pack(dir, &buf))

	r, err := car.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	n, err := r.Index()
	require.NoError(t, err)
	require.Equal(t, 2, n) // one shared leaf + the directory (files collapse to their leaf CID)

	node := readBack(t, &buf)
	d := node.(unixfs.Directory)
	require.True(t, d.Childrens[0].Cid.Equals(d.Childrens[1].Cid))
}

func TestPackSymlink(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Symlink("./target", filepath.Join(dir, "link")))

	var buf bytes.Buffer
	require.NoError(t, packer.New().Pack(dir, &buf))

	node := readBack(t, &buf)
	d := node.(unixfs.Directory)
	require.Len(t, d.Childrens, 1)

	r, err := car.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	linkData, err := r.ReadBlock(d.Childrens[0].Cid)
	require.NoError(t, err)
	linkNode, err := unixfs.Parse(d.Childrens[0].Cid, linkData)
	require.NoError(t, err)
	s, ok := linkNode.(unixfs.Symlink)
	require.True(t, ok)
	require.Equal(t, []byte("./target"), s.Target)
}
