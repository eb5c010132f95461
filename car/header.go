package car

import (
	"github.com/ipfs/go-cid"

	"github.com/blocklessnetwork/car-utils/ipldcbor"
)

// Header is the CAR v1 pragma: a DAG-CBOR map {version, roots}
// prefixed with its own uvarint length. This module only emits and
// accepts version 1.
type Header struct {
	Version uint64
	Roots   []cid.Cid
}

const expectedVersion = 1

// encodeHeader renders h as the canonical DAG-CBOR map util.LdWrite's
// callers expect to find at the front of a CAR file.
func encodeHeader(h Header) ([]byte, error) {
	roots := make([]ipldcbor.Value, len(h.Roots))
	for i, r := range h.Roots {
		roots[i] = ipldcbor.Link(r)
	}
	v := ipldcbor.Map(map[string]ipldcbor.Value{
		"version": ipldcbor.Int(int64(h.Version)),
		"roots":   ipldcbor.List(roots...),
	})
	return ipldcbor.Encode(v)
}

// decodeHeader parses a header payload (without its length prefix) and
// validates its shape: a map with "version" and "roots" keys (other
// keys are ignored), version must be 1, roots must be non-empty.
func decodeHeader(data []byte) (Header, error) {
	v, _, err := ipldcbor.Decode(data)
	if err != nil {
		return Header{}, err
	}
	m, ok := v.AsMap()
	if !ok {
		return Header{}, ErrInvalidCid
	}

	versionVal, ok := m["version"]
	if !ok {
		return Header{}, ErrUnsupportedCarVersion
	}
	version, ok := versionVal.AsInt()
	if !ok || version != expectedVersion {
		return Header{}, ErrUnsupportedCarVersion
	}

	rootsVal, ok := m["roots"]
	if !ok {
		return Header{}, ErrNoRoots
	}
	rootList, ok := rootsVal.AsList()
	if !ok || len(rootList) == 0 {
		return Header{}, ErrNoRoots
	}

	roots := make([]cid.Cid, len(rootList))
	for i, rv := range rootList {
		c, ok := rv.AsLink()
		if !ok {
			return Header{}, ErrNoRoots
		}
		roots[i] = c
	}

	return Header{Version: uint64(version), Roots: roots}, nil
}
