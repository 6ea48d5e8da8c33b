package timeexpr

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExprJSONRoundTrip(t *testing.T) {
	e := mustParse(t, "team.unlocked & (a | b) + 1d 2h")

	data, err := json.Marshal(e)
	require.NoError(t, err)
	require.Equal(t, `"team.unlocked & (a | b) + 1d 2h"`, string(data))

	var decoded Expr
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, e.src, decoded.src)
}

func TestExprJSONRoundTripProgrammatic(t *testing.T) {
	e := AddExpr(OrExpr(Field("a"), Field("b")), 0)
	data, err := json.Marshal(e)
	require.NoError(t, err)

	var decoded Expr
	require.NoError(t, json.Unmarshal(data, &decoded))

	v, err := decoded.Eval(stubResolver{"a": Always(), "b": Never()})
	require.NoError(t, err)
	require.Equal(t, Always(), v)
}
