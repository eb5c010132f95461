package ipldcbor

import (
	"fmt"

	"github.com/ipfs/go-cid"
	cbor "github.com/ipfs/go-ipld-cbor"
)

// Decode parses the DAG-CBOR value in data, which must hold exactly
// one top-level value (the framing around it — the CAR header's
// uvarint length prefix — is the caller's job). The returned int is
// always len(data): go-ipld-cbor's decoder consumes the whole buffer
// rather than reporting a partial offset, which is fine here since
// every caller already isolates the header payload before decoding
// it.
func Decode(data []byte) (Value, int, error) {
	var native interface{}
	if err := cbor.DecodeInto(data, &native); err != nil {
		return Value{}, 0, err
	}
	v, err := fromNative(native)
	if err != nil {
		return Value{}, 0, err
	}
	return v, len(data), nil
}

// fromNative lifts a value decoded by go-ipld-cbor back into Value.
// Value's Map has no notion of key order — every caller looks a key
// up by name rather than walking the map in encoded order.
func fromNative(x interface{}) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case int64:
		return Int(t), nil
	case uint64:
		return Int(int64(t)), nil
	case int:
		return Int(int64(t)), nil
	case float64:
		return Float(t), nil
	case []byte:
		return Bytes(t), nil
	case string:
		return Text(t), nil
	case cid.Cid:
		return Link(t), nil
	case []interface{}:
		items := make([]Value, len(t))
		for i, e := range t {
			v, err := fromNative(e)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return List(items...), nil
	case map[string]interface{}:
		m := make(map[string]Value, len(t))
		for k, e := range t {
			v, err := fromNative(e)
			if err != nil {
				return Value{}, err
			}
			m[k] = v
		}
		return Map(m), nil
	case map[interface{}]interface{}:
		m := make(map[string]Value, len(t))
		for k, e := range t {
			ks, ok := k.(string)
			if !ok {
				return Value{}, fmt.Errorf("ipldcbor: map key %v is not text", k)
			}
			v, err := fromNative(e)
			if err != nil {
				return Value{}, err
			}
			m[ks] = v
		}
		return Map(m), nil
	default:
		return Value{}, fmt.Errorf("ipldcbor: unsupported decoded type %T", x)
	}
}
