package car

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
)

// blockRecord is an entry in a Reader's index: the byte offset and
// length of a block's payload (the bytes after its CID), measured from
// the start of the underlying io.ReaderAt.
type blockRecord struct {
	offset int64
	length int64
}

// Reader provides random and sequential access to the blocks of a
// CAR v1 archive, mirroring the split between go-car v2's Reader
// (pragma/header) and index_gen.go's frame walk (per-block offsets).
type Reader struct {
	ra   io.ReaderAt
	opts ReadOptions

	roots []cid.Cid

	index    map[cid.Cid]blockRecord
	indexed  bool
	dataEnd  int64
}

// OpenReader parses the header of ra and returns a Reader positioned
// to iterate its blocks. The block index is built lazily on first use
// of ReadBlock or Index, not eagerly here.
func OpenReader(ra io.ReaderAt, opts ...ReadOption) (*Reader, error) {
	ro := applyReadOptions(opts...)
	r := &Reader{ra: ra, opts: ro}

	br := bufio.NewReader(io.NewSectionReader(ra, 0, 1<<62))
	hdrLen, err := readVarint(br)
	if err != nil {
		if err == io.EOF {
			return nil, ErrTruncatedCar
		}
		return nil, err
	}
	if hdrLen > ro.MaxHeaderLength {
		return nil, ErrResourceLimitExceeded
	}

	hdrBuf := make([]byte, hdrLen)
	if _, err := io.ReadFull(br, hdrBuf); err != nil {
		return nil, atOffset("read header", 0, ErrTruncatedCar)
	}

	hdr, err := decodeHeader(hdrBuf)
	if err != nil {
		return nil, atOffset("decode header", 0, err)
	}

	r.roots = hdr.Roots
	r.dataEnd = int64(uvarintSize(hdrLen)) + int64(hdrLen)
	return r, nil
}

// Roots returns the archive's root CIDs, as declared in its header.
func (r *Reader) Roots() []cid.Cid {
	return r.roots
}

// ensureIndex performs the one-pass scan building the offset index,
// the same frame walk GenerateIndex in the reference go-car v2 tooling
// uses: read a frame length, read the CID out of it, skip the rest.
// The first occurrence of a duplicate CID wins.
func (r *Reader) ensureIndex() error {
	if r.indexed {
		return nil
	}
	index := make(map[cid.Cid]blockRecord)

	offset := r.dataEnd
	sr := io.NewSectionReader(r.ra, offset, 1<<62)
	br := bufio.NewReader(sr)

	for {
		entryLen, err := readVarint(br)
		if err != nil {
			if err == io.EOF {
				break
			}
			return atOffset("read entry length", offset, err)
		}
		if entryLen == 0 {
			if r.opts.ZeroLengthSectionAsEOF {
				break
			}
			return atOffset("read entry", offset, ErrTruncatedCar)
		}
		if entryLen > r.opts.MaxEntryLength {
			return atOffset("read entry", offset, ErrResourceLimitExceeded)
		}

		entryStart := offset + int64(uvarintSize(entryLen))
		buf := make([]byte, entryLen)
		if _, err := io.ReadFull(br, buf); err != nil {
			return atOffset("read entry", entryStart, ErrTruncatedCar)
		}

		c, n, err := decodeCid(buf)
		if err != nil {
			return atOffset("decode cid", entryStart, err)
		}

		if _, dup := index[c]; !dup {
			index[c] = blockRecord{
				offset: entryStart + int64(n),
				length: int64(len(buf) - n),
			}
		}

		offset = entryStart + int64(entryLen)
	}

	r.index = index
	r.indexed = true
	return nil
}

// Index forces the lazy offset index to be built and returns the
// number of distinct blocks it found.
func (r *Reader) Index() (int, error) {
	if err := r.ensureIndex(); err != nil {
		return 0, err
	}
	return len(r.index), nil
}

// ReadBlock returns the payload bytes for c, or ErrBlockNotFound if
// the archive has no entry for it.
func (r *Reader) ReadBlock(c cid.Cid) ([]byte, error) {
	if err := r.ensureIndex(); err != nil {
		return nil, err
	}
	rec, ok := r.index[c]
	if !ok {
		return nil, ErrBlockNotFound
	}
	buf := make([]byte, rec.length)
	if _, err := r.ra.ReadAt(buf, rec.offset); err != nil {
		return nil, atOffset("read block", rec.offset, err)
	}
	return buf, nil
}

// IterBlocks walks every block in the archive, in file order, calling
// fn with each one. Returning an error from fn stops the walk early
// and that error is returned from IterBlocks. Re-calling IterBlocks
// re-scans the archive from the start; it does not depend on the
// lazily built index.
func (r *Reader) IterBlocks(fn func(Block) error) error {
	offset := r.dataEnd
	sr := io.NewSectionReader(r.ra, offset, 1<<62)
	br := bufio.NewReader(sr)

	for {
		entryLen, err := readVarint(br)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return atOffset("read entry length", offset, err)
		}
		if entryLen == 0 {
			if r.opts.ZeroLengthSectionAsEOF {
				return nil
			}
			return atOffset("read entry", offset, ErrTruncatedCar)
		}
		if entryLen > r.opts.MaxEntryLength {
			return atOffset("read entry", offset, ErrResourceLimitExceeded)
		}

		entryStart := offset + int64(uvarintSize(entryLen))
		buf := make([]byte, entryLen)
		if _, err := io.ReadFull(br, buf); err != nil {
			return atOffset("read entry", entryStart, ErrTruncatedCar)
		}

		c, n, err := decodeCid(buf)
		if err != nil {
			return atOffset("decode cid", entryStart, err)
		}

		if err := fn(NewBlockWithCid(c, buf[n:])); err != nil {
			return err
		}

		offset = entryStart + int64(entryLen)
	}
}

// Verify re-hashes every block's payload against its declared CID and
// returns a HashMismatchError for the first mismatch it finds, or nil
// if every block is consistent.
func (r *Reader) Verify() error {
	return r.IterBlocks(func(b Block) error {
		return verifyBlock(b.Cid(), b.RawData())
	})
}

// verifyBlock re-digests data using the hash function named in c's
// multihash code and compares it against c's digest.
func verifyBlock(c cid.Cid, data []byte) error {
	decoded, err := mh.Decode(c.Hash())
	if err != nil {
		return fmt.Errorf("car: decode multihash for %s: %w", c, err)
	}

	var got []byte
	switch decoded.Code {
	case mh.SHA2_256:
		sum := sha256.Sum256(data)
		got = sum[:]
	default:
		// Any multihash function supported by go-multihash, even one
		// this codec never writes itself, is still verifiable.
		sum, err := mh.Sum(data, decoded.Code, decoded.Length)
		if err != nil {
			return fmt.Errorf("car: unsupported multihash for %s: %w", c, err)
		}
		decodedSum, err := mh.Decode(sum)
		if err != nil {
			return err
		}
		got = decodedSum.Digest
	}

	if !bytes.Equal(got, decoded.Digest) {
		return &HashMismatchError{
			Cid:      c,
			Expected: fmt.Sprintf("%x", decoded.Digest),
			Got:      fmt.Sprintf("%x", got),
		}
	}
	return nil
}
