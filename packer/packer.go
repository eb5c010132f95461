// Package packer walks a local file-system subtree and assembles it
// into an in-memory UnixFS DAG, then streams that DAG out as a CAR v1
// archive once its root CID is known.
package packer

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/ipfs/go-cid"
	logging "github.com/ipfs/go-log/v2"
	"github.com/multiformats/go-multicodec"
	mh "github.com/multiformats/go-multihash"

	"github.com/blocklessnetwork/car-utils/car"
	"github.com/blocklessnetwork/car-utils/chunker"
	"github.com/blocklessnetwork/car-utils/unixfs"
)

var logger = logging.Logger("packer")

// Packer accumulates UnixFS blocks in memory during a pack, since the
// CAR header must name the root CID before any block is written and
// the root is only known once the whole tree has been walked.
type Packer struct {
	opts   Options
	blocks []car.Block
	seen   map[cid.Cid]struct{}
}

// New creates a Packer with the given options.
func New(opts ...Option) *Packer {
	return &Packer{
		opts: applyOptions(opts...),
		seen: make(map[cid.Cid]struct{}),
	}
}

// Pack walks sourcePath (a file or a directory) and writes a CAR v1
// archive to w whose single root is the packed tree.
func (p *Packer) Pack(sourcePath string, w io.Writer) error {
	info, err := os.Lstat(sourcePath)
	if err != nil {
		return err
	}

	var root cid.Cid
	if info.IsDir() {
		root, _, err = p.packDir(sourcePath)
		if err != nil {
			return err
		}
	} else {
		fileCid, tsize, err := p.packFile(sourcePath, info)
		if err != nil {
			return err
		}
		if p.opts.NoWrap {
			root = fileCid
		} else {
			name := filepath.Base(sourcePath)
			entry := unixfs.DirectoryEntry{
				Entry: unixfs.EntryWithTSize(fileCid, tsize),
				Name:  name,
			}
			root, _, err = p.emitDirectory([]unixfs.DirectoryEntry{entry})
			if err != nil {
				return err
			}
		}
	}

	writer, err := car.Create(w, []cid.Cid{root})
	if err != nil {
		return err
	}
	for _, b := range p.blocks {
		if err := writer.Put(b.Cid(), b.RawData()); err != nil {
			return fmt.Errorf("packer: writing block %s: %w", b.Cid(), err)
		}
	}
	return writer.Finish()
}

// packDir walks one directory level, sorting entries by
// byte-lexicographic name before descending, and assembles a
// Directory node over the packed children.
func (p *Packer) packDir(path string) (cid.Cid, uint64, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return cid.Cid{}, 0, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	children := make([]unixfs.DirectoryEntry, 0, len(entries))
	for _, entry := range entries {
		childPath := filepath.Join(path, entry.Name())
		info, err := entry.Info()
		if err != nil {
			return cid.Cid{}, 0, err
		}

		var childCid cid.Cid
		var tsize uint64

		switch {
		case info.Mode().IsRegular():
			childCid, tsize, err = p.packFile(childPath, info)
		case info.IsDir():
			childCid, tsize, err = p.packDir(childPath)
		case info.Mode()&fs.ModeSymlink != 0:
			childCid, tsize, err = p.packSymlink(childPath)
		default:
			logger.Warnf("skipping special file %s", childPath)
			continue
		}
		if err != nil {
			return cid.Cid{}, 0, err
		}

		children = append(children, unixfs.DirectoryEntry{
			Entry: unixfs.EntryWithTSize(childCid, tsize),
			Name:  entry.Name(),
		})
	}

	return p.emitDirectory(children)
}

func (p *Packer) emitDirectory(children []unixfs.DirectoryEntry) (cid.Cid, uint64, error) {
	raw, err := unixfs.EncodeDirectory(children)
	if err != nil {
		return cid.Cid{}, 0, err
	}
	c, err := dagPbCid(raw)
	if err != nil {
		return cid.Cid{}, 0, err
	}

	tsize := uint64(len(raw))
	for _, child := range children {
		if s, ok := child.TSize(); ok {
			tsize += s
		}
	}

	p.put(c, raw)
	return c, tsize, nil
}

func (p *Packer) packSymlink(path string) (cid.Cid, uint64, error) {
	target, err := os.Readlink(path)
	if err != nil {
		return cid.Cid{}, 0, err
	}
	raw := unixfs.EncodeSymlink([]byte(target))
	c, err := dagPbCid(raw)
	if err != nil {
		return cid.Cid{}, 0, err
	}
	p.put(c, raw)
	return c, uint64(len(raw)), nil
}

// packFile chunks path into fixed-size windows and assembles the
// resulting leaves into a File node. It returns the file's own CID
// and the cumulative byte size of its subtree.
func (p *Packer) packFile(path string, info fs.FileInfo) (cid.Cid, uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return cid.Cid{}, 0, err
	}
	defer f.Close()

	splitter, err := chunker.FromString(f, p.opts.Chunker)
	if err != nil {
		return cid.Cid{}, 0, err
	}

	var leaves []unixfs.FileEntry
	for {
		chunk, err := splitter.NextBytes()
		if err == io.EOF {
			break
		}
		if err != nil {
			return cid.Cid{}, 0, err
		}

		raw := unixfs.EncodeRawLeaf(chunk)
		c, err := dagPbCid(raw)
		if err != nil {
			return cid.Cid{}, 0, err
		}
		p.put(c, raw)

		leaves = append(leaves, unixfs.FileEntryWithTSize(c, uint64(len(chunk)), uint64(len(raw))))
	}

	switch len(leaves) {
	case 1:
		// A file of exactly one chunk has no wrapper: the leaf's CID
		// is the file's CID.
		tsize, _ := leaves[0].TSize()
		return leaves[0].Cid, tsize, nil

	default:
		raw, err := unixfs.EncodeFile(nil, leaves)
		if err != nil {
			return cid.Cid{}, 0, err
		}
		c, err := dagPbCid(raw)
		if err != nil {
			return cid.Cid{}, 0, err
		}

		tsize := uint64(len(raw))
		for _, l := range leaves {
			if s, ok := l.TSize(); ok {
				tsize += s
			}
		}

		p.put(c, raw)
		return c, tsize, nil
	}
}

// put buffers a block, deduplicating by CID so that packing a
// directory with two identical files produces one leaf block
// referenced twice.
func (p *Packer) put(c cid.Cid, data []byte) {
	if _, dup := p.seen[c]; dup {
		logger.Debugf("deduplicating block %s", c)
		return
	}
	p.seen[c] = struct{}{}
	p.blocks = append(p.blocks, car.NewBlockWithCid(c, data))
}

// dagPbCid hashes raw (a DAG-PB-wrapped UnixFS node) with SHA-256 and
// wraps the digest as a CIDv1 under the dag-pb codec.
func dagPbCid(raw []byte) (cid.Cid, error) {
	h, err := mh.Sum(raw, mh.SHA2_256, -1)
	if err != nil {
		return cid.Cid{}, err
	}
	return cid.NewCidV1(uint64(multicodec.DagPb), h), nil
}
