package car

import (
	"bufio"
	"io"

	"github.com/multiformats/go-varint"
)

// readVarint decodes an unsigned LEB128 varint from r, the way
// util.LdRead's length prefix is read in the reference go-car tooling,
// but routed through go-varint so overlong (>10 byte) and 64-bit
// overflowing encodings come back as ErrMalformedVarint instead of a
// silently wrapped value.
func readVarint(r *bufio.Reader) (uint64, error) {
	n, err := varint.ReadUvarint(r)
	if err != nil {
		if err == io.EOF {
			return 0, err
		}
		return 0, ErrMalformedVarint
	}
	return n, nil
}

// putUvarint writes v to w as a shortest-form uvarint.
func putUvarint(w io.Writer, v uint64) (int, error) {
	buf := varint.ToUvarint(v)
	return w.Write(buf)
}

// uvarintSize returns the number of bytes needed to encode v.
func uvarintSize(v uint64) int {
	return varint.UvarintSize(v)
}
