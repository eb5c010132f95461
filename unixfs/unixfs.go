// Package unixfs provides type-safe low-level primitives to read and
// write UnixFS blocks: the DAG-PB wrapper plus the small UnixFS Data
// message carried in its Data field, for the four node kinds the
// packer and unpacker need (File, Directory, Symlink, and the
// raw-leaf shortcut). It handles encoding, decoding, and structural
// validation, but not cross-block traversal; that lives in packer and
// unpacker.
package unixfs

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multicodec"

	"github.com/blocklessnetwork/car-utils/car"
)

// Entry is a basic unit block: a CID plus its cumulative DAG size.
type Entry struct {
	Cid cid.Cid
	// tSize encodes the cumulative size of the DAG rooted at Cid,
	// offset by one; zero means "not present" rather than size zero.
	tSize uint64
}

// TSize returns the cumulative size of the DAG rooted at this entry,
// and whether one was present at all.
func (e Entry) TSize() (tsize uint64, ok bool) {
	if e.tSize == 0 {
		return 0, false
	}
	return e.tSize - 1, true
}

func (e Entry) Untyped() Entry { return e }

// EntryWithTSize builds an Entry carrying a cumulative DAG size.
func EntryWithTSize(c cid.Cid, tSize uint64) Entry {
	return Entry{Cid: c, tSize: tSize + 1}
}

// FileEntry is one child of a File: a link to a chunk or sub-file,
// paired with that child's logical (file, not DAG) size.
type FileEntry struct {
	Entry
	FileSize uint64
}

// FileEntryWithTSize builds a FileEntry carrying both a logical file
// size and a cumulative DAG size.
func FileEntryWithTSize(c cid.Cid, fileSize, tSize uint64) FileEntry {
	return FileEntry{Entry: Entry{Cid: c, tSize: tSize + 1}, FileSize: fileSize}
}

// DirectoryEntry is one named child of a Directory.
type DirectoryEntry struct {
	Entry
	Name string
}

var _ Node = File{}

// File is a (possibly chunked) regular file. Data holds this node's
// own inline bytes; Childrens holds links to further chunks or
// sub-files, in file order, each tagged with its logical size so the
// full file size can be recovered without fetching every child.
type File struct {
	badge
	Entry
	Data []byte
	// FileSize is the logical byte length of the whole subtree: for a
	// leaf it equals len(Data); for a node with children it is the
	// UnixFS record's own filesize field.
	FileSize  uint64
	Childrens []FileEntry
}

var _ Node = Directory{}

// Directory is a flat (non-HAMT-sharded) UnixFS directory: its
// Childrens are its direct entries, in the order they were written.
type Directory struct {
	badge
	Entry
	Childrens []DirectoryEntry
}

var _ Node = Symlink{}

// Symlink is a UnixFS symlink; Target is the link's text, exactly as
// it would be passed to os.Symlink.
type Symlink struct {
	badge
	Entry
	Target []byte
}

// badge authorizes a type to be a Node.
type badge struct{}

func (badge) nodeBadge() {
	panic("badge was called even though it only exists to trick the type checker")
}

// Node is an interface that is exclusively a File, Directory, or
// Symlink. Do not embed this interface; its only purpose is to
// provide a type-safe, closed enum.
type Node interface {
	Untyped() Entry
	nodeBadge()
}

// Parse decodes data into the Node it represents. The caller is
// responsible for having already verified that data hashes to c;
// Parse does not re-check that.
func Parse(c cid.Cid, data []byte) (Node, error) {
	codec := multicodec.Code(c.Prefix().Codec)
	switch codec {
	case multicodec.Raw:
		return File{
			Entry:    Entry{Cid: c, tSize: uint64(len(data)) + 1},
			Data:     data,
			FileSize: uint64(len(data)),
		}, nil
	case multicodec.DagPb:
		return parsePB(c, data)
	default:
		return nil, car.ErrUnsupportedNodeType
	}
}
