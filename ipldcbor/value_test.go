package ipldcbor

import (
	"testing"

	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
	"github.com/stretchr/testify/require"
)

func testCid(t *testing.T) cid.Cid {
	t.Helper()
	h, err := mh.Sum([]byte("hello"), mh.SHA2_256, -1)
	require.NoError(t, err)
	return cid.NewCidV1(cid.DagCBOR, h)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	v := Map(map[string]Value{
		"version": Int(1),
		"roots":   List(Link(testCid(t))),
		"name":    Text("root"),
		"nested":  Map(map[string]Value{"a": Bool(true), "b": Null()}),
	})

	enc, err := Encode(v)
	require.NoError(t, err)

	dec, n, err := Decode(enc)
	require.NoError(t, err)
	require.Equal(t, len(enc), n)

	m, ok := dec.AsMap()
	require.True(t, ok)

	version, ok := m["version"].AsInt()
	require.True(t, ok)
	require.Equal(t, int64(1), version)

	roots, ok := m["roots"].AsList()
	require.True(t, ok)
	require.Len(t, roots, 1)
	link, ok := roots[0].AsLink()
	require.True(t, ok)
	require.Equal(t, testCid(t), link)

	nested, ok := m["nested"].AsMap()
	require.True(t, ok)
	a, ok := nested["a"].AsBool()
	require.True(t, ok)
	require.True(t, a)
	require.Equal(t, KindNull, nested["b"].Kind())
}

func TestFloatRoundTrip(t *testing.T) {
	v := Float(3.5)
	enc, err := Encode(v)
	require.NoError(t, err)

	dec, n, err := Decode(enc)
	require.NoError(t, err)
	require.Equal(t, len(enc), n)
	f, ok := dec.AsFloat()
	require.True(t, ok)
	require.Equal(t, 3.5, f)
}

func TestLinkRoundTrip(t *testing.T) {
	c := testCid(t)
	enc, err := Encode(Link(c))
	require.NoError(t, err)

	dec, _, err := Decode(enc)
	require.NoError(t, err)
	got, ok := dec.AsLink()
	require.True(t, ok)
	require.Equal(t, c, got)
}

func TestEncodeRejectsInvalidKind(t *testing.T) {
	_, err := Encode(Value{kind: KindInvalid})
	require.Error(t, err)
}
