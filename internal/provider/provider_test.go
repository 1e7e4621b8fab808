package provider

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSymbol(t *testing.T) {
	require.Equal(t, "BTC", NormalizeSymbol("  btc\t"))
	require.Equal(t, "", NormalizeSymbol("   "))
}

func TestQuote_Timestamp_TruncatesToSeconds(t *testing.T) {
	q := Quote{LastUpdated: "2024-07-30T05:43:00.000Z"}
	require.Equal(t, "2024-07-30T05:43:00", q.Timestamp())

	q.LastUpdated = "2024-07-30"
	require.Equal(t, "2024-07-30", q.Timestamp())
}

func TestQuote_PercentChange(t *testing.T) {
	q := Quote{PercentChange24h: decimal.NewNullDecimal(decimal.RequireFromString("2.5"))}
	require.True(t, q.PercentChange(Window24h).Valid)
	require.False(t, q.PercentChange(Window90d).Valid)
	require.False(t, q.PercentChange(Window("1y")).Valid)
}

func TestFetchError_Is(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := error(NetworkError(0, cause))

	require.ErrorIs(t, err, ErrNetwork)
	require.ErrorIs(t, err, cause)
	require.NotErrorIs(t, err, ErrParse)
	require.NotErrorIs(t, err, ErrSymbolNotFound)

	fe := &FetchError{Kind: ErrSymbolNotFound, Symbol: "NOPE", StatusCode: 400}
	require.Equal(t, "NOPE: symbol not found (status 400)", fe.Error())
	require.ErrorIs(t, ParseError(cause), ErrParse)
}
