package unixfs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypeJSONRoundTrip(t *testing.T) {
	for _, ty := range []Type{TError, TFile, TDirectory, TSymlink} {
		b, err := json.Marshal(ty)
		require.NoError(t, err)

		var got Type
		require.NoError(t, json.Unmarshal(b, &got))
		require.Equal(t, ty, got)
	}
}

func TestTypeUnmarshalTextRejectsUnknown(t *testing.T) {
	var ty Type
	err := ty.UnmarshalText([]byte("Bogus"))
	require.Error(t, err)
}
