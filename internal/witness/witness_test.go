package witness

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/zircon/lang/types"
)

func TestRoundTripStructure(t *testing.T) {
	st := types.NewStructure(types.NextUniqueID(), "Point", []types.StructField{
		{Name: "x", Type: types.IntegerSigned{Bits: 32}},
		{Name: "y", Type: types.IntegerUnsigned{Bits: 32}},
		{Name: "on", Type: types.Boolean{}},
	})

	doc := json.RawMessage(`{"x":"-5","y":"7","on":true}`)
	cells, err := Decode(st, doc)
	require.NoError(t, err)
	require.Len(t, cells, 3)

	out, err := Encode(st, cells)
	require.NoError(t, err)

	var got, want map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &got))
	require.NoError(t, json.Unmarshal(doc, &want))
	require.Equal(t, want, got)
}

func TestRoundTripArray(t *testing.T) {
	at := types.NewArray(types.IntegerUnsigned{Bits: 8}, 3)
	doc := json.RawMessage(`["1","2","3"]`)
	cells, err := Decode(at, doc)
	require.NoError(t, err)
	require.Len(t, cells, 3)

	out, err := Encode(at, cells)
	require.NoError(t, err)
	require.JSONEq(t, string(doc), string(out))
}

func TestDecodeEnumeration(t *testing.T) {
	en := types.NewEnumeration(types.NextUniqueID(), "Color", []types.EnumVariant{
		{Name: "Red", Value: big.NewInt(0)},
		{Name: "Green", Value: big.NewInt(1)},
	})
	cells, err := Decode(en, json.RawMessage(`"Green"`))
	require.NoError(t, err)
	require.Len(t, cells, 1)

	out, err := Encode(en, cells)
	require.NoError(t, err)
	require.JSONEq(t, `"Green"`, string(out))
}
