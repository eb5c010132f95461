package ipldcbor

import (
	"fmt"

	cbor "github.com/ipfs/go-ipld-cbor"
)

// Encode renders v as DAG-CBOR. The byte-level work — major-type heads,
// shortest-form integers, map key ordering, and tag(42) link framing —
// is done by go-ipld-cbor's DumpObject; this package only translates
// between Value and the plain Go values DumpObject understands.
func Encode(v Value) ([]byte, error) {
	native, err := toNative(v)
	if err != nil {
		return nil, err
	}
	return cbor.DumpObject(native)
}

// toNative lowers v into the map[string]interface{}/[]interface{}/
// cid.Cid shape DumpObject walks, the same shape go-ipld-cbor expects
// when asked to encode a CID as an IPLD link.
func toNative(v Value) (interface{}, error) {
	switch v.kind {
	case KindNull:
		return nil, nil
	case KindBool:
		return v.b, nil
	case KindInt:
		return v.i, nil
	case KindFloat:
		return v.f, nil
	case KindBytes:
		return v.bs, nil
	case KindText:
		return v.text, nil
	case KindList:
		out := make([]interface{}, len(v.list))
		for i, item := range v.list {
			n, err := toNative(item)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case KindMap:
		out := make(map[string]interface{}, len(v.m))
		for k, item := range v.m {
			n, err := toNative(item)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case KindLink:
		return v.link, nil
	default:
		return nil, fmt.Errorf("ipldcbor: cannot encode %s value", v.kind)
	}
}
