package database

import (
	"math/big"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDecimal(t *testing.T) {
	n := fromDecimal(decimal.RequireFromString("199.80"))

	assert.True(t, n.Valid)
	assert.Equal(t, int32(-2), n.Exp)
	assert.Equal(t, "19980", n.Int.String())
}

func TestToDecimal(t *testing.T) {
	d, err := toDecimal(pgtype.Numeric{Int: big.NewInt(169800), Exp: -2, Valid: true})
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.NewFromInt(1698)))

	_, err = toDecimal(pgtype.Numeric{})
	assert.Error(t, err)

	_, err = toDecimal(pgtype.Numeric{NaN: true, Valid: true})
	assert.ErrorIs(t, err, errNonFiniteNumeric)

	_, err = toDecimal(pgtype.Numeric{InfinityModifier: pgtype.Infinity, Valid: true})
	assert.ErrorIs(t, err, errNonFiniteNumeric)
}

func TestToNullDecimal(t *testing.T) {
	nd, err := toNullDecimal(pgtype.Numeric{})
	require.NoError(t, err)
	assert.False(t, nd.Valid)

	nd, err = toNullDecimal(pgtype.Numeric{Int: big.NewInt(500), Exp: 0, Valid: true})
	require.NoError(t, err)
	assert.True(t, nd.Valid)
	assert.True(t, nd.Decimal.Equal(decimal.NewFromInt(500)))
}

func TestDecimalRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "10", "0.01", "1998", "300.5"} {
		in := decimal.RequireFromString(s)
		out, err := toDecimal(fromDecimal(in))
		require.NoError(t, err)
		assert.True(t, in.Equal(out), s)
	}
}
