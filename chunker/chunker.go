// Package chunker splits a byte stream into the fixed-size windows the
// packer turns into UnixFS leaf blocks. The reference chunker package
// this is adapted from also ships content-defined splitters (rabin,
// buzhash); this module only ever produces fixed-size chunks, so those
// are not carried over.
package chunker

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	// DefaultBlockSize is the chunk size FromString and DefaultSplitter
	// produce when no explicit size is requested.
	DefaultBlockSize int64 = 1024 * 256

	// BlockSizeLimit is the largest on-wire block size a UnixFS leaf is
	// expected to fit in, copied from the same constant in the
	// reference go-unixfs importer/helpers package.
	BlockSizeLimit int = 1048576

	// BlockPayloadLimit is BlockSizeLimit minus room for the DAG-PB and
	// UnixFS wrapper fields (type, data length, filesize, and the outer
	// DAG-PB length-delimited framing) around a full 1 MiB leaf.
	BlockPayloadLimit int = BlockSizeLimit - (2 + 4 + 4 + 4)

	// maxOverAllocBytes bounds how much spare capacity NextBytes may
	// leave in the slice it returns for the final, short chunk of a
	// stream.
	maxOverAllocBytes = 4096
)

var (
	ErrSize    = errors.New("chunker size must be greater than 0")
	ErrSizeMax = fmt.Errorf("chunker parameters may not exceed the maximum block payload size of %d", BlockPayloadLimit)
)

// Splitter reads successive chunks from an underlying stream.
// NextBytes returns io.EOF once the stream is exhausted; a nil chunk
// with a nil error is never returned once the stream has sent its
// last nonempty chunk.
type Splitter interface {
	NextBytes() ([]byte, error)
}

// DefaultSplitter returns a Splitter producing DefaultBlockSize
// chunks.
func DefaultSplitter(r io.Reader) Splitter {
	return NewSizeSplitter(r, DefaultBlockSize)
}

// FromString returns a Splitter depending on the given string: it
// supports "default" (""), and "size-{size}". Any other value is
// rejected, since this module has no content-defined chunker.
func FromString(r io.Reader, chunker string) (Splitter, error) {
	switch {
	case chunker == "" || chunker == "default":
		return DefaultSplitter(r), nil

	case strings.HasPrefix(chunker, "size-"):
		sizeStr := strings.TrimPrefix(chunker, "size-")
		size, err := strconv.Atoi(sizeStr)
		if err != nil {
			return nil, err
		} else if size <= 0 {
			return nil, ErrSize
		} else if size > BlockPayloadLimit {
			return nil, ErrSizeMax
		}
		return NewSizeSplitter(r, int64(size)), nil

	default:
		return nil, fmt.Errorf("unrecognized chunker option: %s", chunker)
	}
}

// sizeSplitter implements Splitter by reading fixed-size windows from
// r until it is exhausted, the way sizeSplitterNoPool did in the
// reference chunker package's own benchmarks.
type sizeSplitter struct {
	r    io.Reader
	size uint32
	err  error
}

// NewSizeSplitter returns a new size-based Splitter that reads r in
// chunks of at most size bytes.
func NewSizeSplitter(r io.Reader, size int64) Splitter {
	return &sizeSplitter{r: r, size: uint32(size)}
}

func (ss *sizeSplitter) NextBytes() ([]byte, error) {
	if ss.err != nil {
		return nil, ss.err
	}

	full := make([]byte, ss.size)
	n, err := io.ReadFull(ss.r, full)
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			ss.err = io.EOF
			if n == 0 {
				return nil, io.EOF
			}
			if cap(full)-n > maxOverAllocBytes {
				small := make([]byte, n)
				copy(small, full)
				return small, nil
			}
			return full[:n], nil
		}
		return nil, err
	}
	return full, nil
}

// Chan returns a channel that yields s's chunks until it is exhausted
// or returns an error, which is sent on the returned error channel.
func Chan(s Splitter) (<-chan []byte, <-chan error) {
	out := make(chan []byte)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errs)
		for {
			b, err := s.NextBytes()
			if err != nil {
				if err != io.EOF {
					errs <- err
				}
				return
			}
			out <- b
		}
	}()

	return out, errs
}
