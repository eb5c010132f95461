package car

import (
	"bufio"
	"io"

	"github.com/ipfs/go-cid"
)

// Writer streams a CAR v1 archive to an underlying io.Writer: the
// header is written once, in front of the first block, and never
// rewritten after that, since the sink does not need to be seekable.
type Writer struct {
	bw   *bufio.Writer
	opts WriteOptions

	headerWritten bool
	seen          map[cid.Cid]struct{}
}

// Create starts a new CAR v1 archive on w with the given set of root
// CIDs, buffering the encoded header immediately. A caller that never
// writes a block still produces a valid (block-less) archive once
// Finish is called.
func Create(w io.Writer, roots []cid.Cid, opts ...WriteOption) (*Writer, error) {
	if len(roots) == 0 {
		return nil, ErrNoRoots
	}
	wr := &Writer{
		bw:   bufio.NewWriter(w),
		opts: applyWriteOptions(opts...),
		seen: make(map[cid.Cid]struct{}),
	}
	if err := wr.writeHeader(roots); err != nil {
		return nil, err
	}
	return wr, nil
}

func (w *Writer) writeHeader(roots []cid.Cid) error {
	hdrBytes, err := encodeHeader(Header{Version: 1, Roots: roots})
	if err != nil {
		return err
	}
	if _, err := putUvarint(w.bw, uint64(len(hdrBytes))); err != nil {
		return err
	}
	if _, err := w.bw.Write(hdrBytes); err != nil {
		return err
	}
	w.headerWritten = true
	return nil
}

// Put appends one block. By default, if c has already been written,
// Put is a silent no-op, matching the packer's own block-level dedup
// pass; pass AllowDuplicatePuts(true) to disable that.
func (w *Writer) Put(c cid.Cid, data []byte) error {
	if _, dup := w.seen[c]; dup && !w.opts.AllowDuplicatePuts {
		return nil
	}

	cidBytes := encodeCid(c)
	entryLen := uint64(len(cidBytes) + len(data))

	if _, err := putUvarint(w.bw, entryLen); err != nil {
		return err
	}
	if _, err := w.bw.Write(cidBytes); err != nil {
		return err
	}
	if _, err := w.bw.Write(data); err != nil {
		return err
	}

	w.seen[c] = struct{}{}
	return nil
}

// Finish flushes any buffered bytes to the underlying writer. It does
// not close the writer.
func (w *Writer) Finish() error {
	return w.bw.Flush()
}
