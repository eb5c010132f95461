// Package ipldcbor implements a small, closed IPLD value model (null,
// bool, int, float, bytes, text, list, map, link) over go-ipld-cbor's
// DAG-CBOR encoder/decoder.
//
// This is deliberately narrower than github.com/ipld/go-ipld-prime's
// generic Node/NodeBuilder/selector machinery: that stack exists to let
// gateway- and traversal-shaped code walk an open schema, which this
// CAR-only core never does. The CAR header is the one place this module
// needs an IPLD value, and it is always exactly {version, roots}.
package ipldcbor

import (
	"fmt"

	"github.com/ipfs/go-cid"
)

// Kind identifies which variant of Value is populated.
type Kind int

const (
	KindInvalid Kind = iota
	KindNull
	KindBool
	KindInt
	KindFloat
	KindBytes
	KindText
	KindList
	KindMap
	KindLink
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBytes:
		return "bytes"
	case KindText:
		return "text"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindLink:
		return "link"
	default:
		return "invalid"
	}
}

// Value is a tagged union over the IPLD data model variants this codec
// supports. The zero Value is KindInvalid; use the constructors below.
type Value struct {
	kind Kind

	b    bool
	i    int64
	f    float64
	bs   []byte
	text string
	list []Value
	m    map[string]Value
	link cid.Cid
}

func Null() Value            { return Value{kind: KindNull} }
func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }
func Int(i int64) Value      { return Value{kind: KindInt, i: i} }
func Float(f float64) Value  { return Value{kind: KindFloat, f: f} }
func Bytes(b []byte) Value   { return Value{kind: KindBytes, bs: b} }
func Text(s string) Value    { return Value{kind: KindText, text: s} }
func List(items ...Value) Value {
	return Value{kind: KindList, list: items}
}
func Map(m map[string]Value) Value {
	return Value{kind: KindMap, m: m}
}
func Link(c cid.Cid) Value { return Value{kind: KindLink, link: c} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) AsBool() (bool, bool)            { return v.b, v.kind == KindBool }
func (v Value) AsInt() (int64, bool)            { return v.i, v.kind == KindInt }
func (v Value) AsFloat() (float64, bool)        { return v.f, v.kind == KindFloat }
func (v Value) AsBytes() ([]byte, bool)         { return v.bs, v.kind == KindBytes }
func (v Value) AsText() (string, bool)          { return v.text, v.kind == KindText }
func (v Value) AsList() ([]Value, bool)         { return v.list, v.kind == KindList }
func (v Value) AsMap() (map[string]Value, bool) { return v.m, v.kind == KindMap }
func (v Value) AsLink() (cid.Cid, bool)         { return v.link, v.kind == KindLink }

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%v", v.b)
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFloat:
		return fmt.Sprintf("%v", v.f)
	case KindBytes:
		return fmt.Sprintf("bytes(%d)", len(v.bs))
	case KindText:
		return v.text
	case KindList:
		return fmt.Sprintf("list(%d)", len(v.list))
	case KindMap:
		return fmt.Sprintf("map(%d)", len(v.m))
	case KindLink:
		return v.link.String()
	default:
		return "<invalid>"
	}
}
