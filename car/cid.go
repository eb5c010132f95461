package car

import (
	"bytes"
	"encoding/binary"

	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
)

// cidV0Prefix is the two leading bytes of every CIDv0: a raw SHA2-256
// multihash (code 0x12, length 0x20), as checked in the reference
// go-car util.ReadCid.
var cidV0Prefix = []byte{0x12, 0x20}

// decodeCid reads one CID from the front of buf (v0 or v1) and returns
// it along with the number of bytes consumed.
func decodeCid(buf []byte) (cid.Cid, int, error) {
	if len(buf) >= 2 && bytes.Equal(buf[:2], cidV0Prefix) {
		if len(buf) < 34 {
			return cid.Cid{}, 0, ErrInvalidCid
		}
		c, err := cid.Cast(buf[:34])
		if err != nil {
			return cid.Cid{}, 0, ErrInvalidCid
		}
		return c, 34, nil
	}

	br := bytes.NewReader(buf)
	version, err := binary.ReadUvarint(br)
	if err != nil {
		return cid.Cid{}, 0, ErrInvalidCid
	}
	if version != 1 {
		return cid.Cid{}, 0, ErrInvalidCid
	}

	codec, err := binary.ReadUvarint(br)
	if err != nil {
		return cid.Cid{}, 0, ErrInvalidCid
	}

	h, err := mh.NewReader(br).ReadMultihash()
	if err != nil {
		return cid.Cid{}, 0, ErrInvalidCid
	}

	return cid.NewCidV1(codec, h), len(buf) - br.Len(), nil
}

// encodeCid renders c to its binary form (no multibase prefix), the
// wire representation used inside CAR entries and DAG-PB link Hash
// fields alike.
func encodeCid(c cid.Cid) []byte {
	return c.Bytes()
}

// renderCid stringifies c: Base32-lower with a "b" prefix for v1,
// Base58btc for v0. cid.Cid.String already implements exactly this
// rule, so we expose it under our own name for call-site clarity in
// the CLI.
func renderCid(c cid.Cid) string {
	return c.String()
}
