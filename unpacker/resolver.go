// Package unpacker resolves a UnixFS DAG rooted in a CAR reader: it
// lists a directory's immediate entries, streams a file's bytes, and
// reconstructs a whole tree on disk.
package unpacker

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ipfs/go-cid"
	lru "github.com/hashicorp/golang-lru"
	logging "github.com/ipfs/go-log/v2"

	"github.com/blocklessnetwork/car-utils/car"
	"github.com/blocklessnetwork/car-utils/unixfs"
)

var logger = logging.Logger("unpacker")

// blockCacheSize bounds the resolver's small LRU of recently read raw
// block bytes; an optimisation, not a contract.
const blockCacheSize = 64

// Resolver traverses the UnixFS DAG stored in a car.Reader.
type Resolver struct {
	r     *car.Reader
	cache *lru.Cache
}

// New wraps r in a Resolver with its small block cache.
func New(r *car.Reader) (*Resolver, error) {
	cache, err := lru.New(blockCacheSize)
	if err != nil {
		return nil, err
	}
	return &Resolver{r: r, cache: cache}, nil
}

// Roots returns the CIDs named in the CAR's header.
func (res *Resolver) Roots() []cid.Cid {
	return res.r.Roots()
}

func (res *Resolver) block(c cid.Cid) ([]byte, error) {
	if v, ok := res.cache.Get(c); ok {
		return v.([]byte), nil
	}
	data, err := res.r.ReadBlock(c)
	if err != nil {
		return nil, err
	}
	res.cache.Add(c, data)
	return data, nil
}

func (res *Resolver) node(c cid.Cid) (unixfs.Node, error) {
	data, err := res.block(c)
	if err != nil {
		return nil, err
	}
	return unixfs.Parse(c, data)
}

// Entry is one line of an ls listing.
type Entry struct {
	Name string
	Type unixfs.Type
	Size uint64
}

// Ls lists root's immediate entries. A Directory yields one Entry per
// link; any other node yields a single Entry named "" describing the
// root itself. Ls does not recurse into child directories.
func (res *Resolver) Ls(root cid.Cid) ([]Entry, error) {
	n, err := res.node(root)
	if err != nil {
		return nil, err
	}

	d, ok := n.(unixfs.Directory)
	if !ok {
		return []Entry{{Name: "", Type: unixfs.TypeOf(n), Size: nodeSize(n)}}, nil
	}

	entries := make([]Entry, len(d.Childrens))
	for i, link := range d.Childrens {
		child, err := res.node(link.Cid)
		if err != nil {
			return nil, fmt.Errorf("ls: resolving %q: %w", link.Name, err)
		}
		entries[i] = Entry{Name: link.Name, Type: unixfs.TypeOf(child), Size: nodeSize(child)}
	}
	return entries, nil
}

func nodeSize(n unixfs.Node) uint64 {
	switch v := n.(type) {
	case unixfs.File:
		return v.FileSize
	case unixfs.Symlink:
		return uint64(len(v.Target))
	default:
		return 0
	}
}

// Cat writes c's content to w. A File with children has its leaves
// flattened in link order, recursively through any intermediate File
// nodes; a Directory fails with car.ErrNotAFile.
func (res *Resolver) Cat(c cid.Cid, w io.Writer) error {
	n, err := res.node(c)
	if err != nil {
		return err
	}
	return res.catNode(n, w)
}

func (res *Resolver) catNode(n unixfs.Node, w io.Writer) error {
	f, ok := n.(unixfs.File)
	if !ok {
		return fmt.Errorf("cat %s: %w", n.Untyped().Cid, car.ErrNotAFile)
	}
	if len(f.Childrens) == 0 {
		_, err := w.Write(f.Data)
		return err
	}
	for _, child := range f.Childrens {
		childNode, err := res.node(child.Cid)
		if err != nil {
			return err
		}
		if err := res.catNode(childNode, w); err != nil {
			return err
		}
	}
	return nil
}

// Unpack reconstructs root's subtree under targetDir, which must
// already exist. rootName supplies the file name to use when root is
// a bare File or Symlink with no directory wrapper (e.g. the CLI's
// --name argument); it is ignored when root is a Directory.
func (res *Resolver) Unpack(root cid.Cid, targetDir, rootName string) error {
	n, err := res.node(root)
	if err != nil {
		return err
	}

	switch v := n.(type) {
	case unixfs.Directory:
		return res.unpackDirectory(v, targetDir)

	case unixfs.File:
		path, err := safeJoin(targetDir, rootName)
		if err != nil {
			return err
		}
		return res.writeFile(v, path)

	case unixfs.Symlink:
		path, err := safeJoin(targetDir, rootName)
		if err != nil {
			return err
		}
		return writeSymlink(v, path)

	default:
		return car.ErrUnsupportedNodeType
	}
}

// unpackDirectory creates dirPath and recreates each of d's children
// inside it, recursing into sub-directories.
func (res *Resolver) unpackDirectory(d unixfs.Directory, dirPath string) error {
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return err
	}
	for _, link := range d.Childrens {
		childPath, err := safeJoin(dirPath, link.Name)
		if err != nil {
			return err
		}
		child, err := res.node(link.Cid)
		if err != nil {
			return fmt.Errorf("unpack %q: %w", link.Name, err)
		}

		switch v := child.(type) {
		case unixfs.Directory:
			if err := res.unpackDirectory(v, childPath); err != nil {
				return err
			}
		case unixfs.File:
			if err := res.writeFile(v, childPath); err != nil {
				return err
			}
		case unixfs.Symlink:
			if err := writeSymlink(v, childPath); err != nil {
				return err
			}
		default:
			return car.ErrUnsupportedNodeType
		}
	}
	return nil
}

func writeSymlink(s unixfs.Symlink, path string) error {
	if err := os.RemoveAll(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Symlink(string(s.Target), path)
}

func (res *Resolver) writeFile(f unixfs.File, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	return res.catNode(f, out)
}

// safeJoin joins target and name, refusing any result that escapes
// target after normalisation.
func safeJoin(target, name string) (string, error) {
	if name == "" {
		return target, nil
	}
	joined := filepath.Join(target, name)
	rel, err := filepath.Rel(target, joined)
	if err != nil {
		return "", car.ErrPathEscape
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(name) {
		logger.Warnf("refusing to unpack %q: escapes target", name)
		return "", car.ErrPathEscape
	}
	return joined, nil
}
