package car

import (
	"errors"
	"fmt"

	"github.com/ipfs/go-cid"
)

// Sentinel error kinds, matched with errors.Is against the errors this
// package and its callers return.
var (
	// ErrMalformedVarint is returned when a uvarint prefix cannot be
	// decoded: premature end of input, more than 10 continuation bytes,
	// or a decoded value that overflows 64 bits.
	ErrMalformedVarint = errors.New("malformed varint")

	// ErrInvalidCid is returned when a byte string claiming to be a CID
	// does not match either the CIDv0 or CIDv1 prefix shape.
	ErrInvalidCid = errors.New("invalid cid")

	// ErrInvalidProtobuf is returned when a DAG-PB or UnixFS protobuf
	// message cannot be parsed.
	ErrInvalidProtobuf = errors.New("invalid protobuf")

	// ErrTruncatedCar is returned when a CAR section header or payload
	// is cut off before it can be fully read.
	ErrTruncatedCar = errors.New("truncated car")

	// ErrUnsupportedCarVersion is returned when the header's version
	// field is not 1.
	ErrUnsupportedCarVersion = errors.New("unsupported car version")

	// ErrNoRoots is returned when a CAR header names zero roots.
	ErrNoRoots = errors.New("car has no roots")

	// ErrBlockNotFound is returned by Reader.ReadBlock when the CID is
	// absent from the index.
	ErrBlockNotFound = errors.New("block not found")

	// ErrNotAFile is returned by Cat when asked to read a Directory CID.
	ErrNotAFile = errors.New("not a file")

	// ErrPathEscape is returned when extracting a CAR would write outside
	// of the requested target directory.
	ErrPathEscape = errors.New("path escapes target directory")

	// ErrUnsupportedNodeType is returned when a UnixFS node decodes to a
	// type this package does not resolve (Metadata, HAMTShard).
	ErrUnsupportedNodeType = errors.New("unsupported unixfs node type")

	// ErrResourceLimitExceeded is returned when a header or entry length
	// exceeds the reader's configured maximum.
	ErrResourceLimitExceeded = errors.New("resource limit exceeded")
)

// HashMismatchError is returned by Reader.Verify when a block's payload
// does not hash to the digest carried by its CID.
type HashMismatchError struct {
	Cid      cid.Cid
	Expected string
	Got      string
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("hash mismatch for %s: expected digest %s, got %s", e.Cid, e.Expected, e.Got)
}

// Is lets errors.Is(err, ErrHashMismatch-shaped sentinels) work loosely;
// callers that need the CID should use errors.As.
func (e *HashMismatchError) Is(target error) bool {
	return target == errHashMismatchSentinel
}

var errHashMismatchSentinel = errors.New("hash mismatch")

// ErrHashMismatch is the sentinel to match against with errors.Is; use
// errors.As(&HashMismatchError{}) to recover the offending CID.
var ErrHashMismatch = errHashMismatchSentinel

// offsetError wraps a structural decoding error with the byte offset at
// which it was detected, so callers can report where a malformed CAR
// diverged without re-scanning the input.
type offsetError struct {
	op     string
	offset int64
	err    error
}

func (e *offsetError) Error() string {
	return fmt.Sprintf("%s at offset %d: %v", e.op, e.offset, e.err)
}

func (e *offsetError) Unwrap() error { return e.err }

func atOffset(op string, offset int64, err error) error {
	if err == nil {
		return nil
	}
	return &offsetError{op: op, offset: offset, err: err}
}
