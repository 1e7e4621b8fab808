package watchlist

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdd_NormalizesAndKeepsOrder(t *testing.T) {
	w := New("btc", " eth ", "", "BTC")
	require.Equal(t, []string{"BTC", "ETH"}, w.Symbols())

	added, err := w.Add("sol")
	require.NoError(t, err)
	require.True(t, added)

	added, err = w.Add("Eth")
	require.NoError(t, err)
	require.False(t, added)

	require.Equal(t, []string{"BTC", "ETH", "SOL"}, w.Symbols())
	require.Equal(t, 3, w.Len())
}

func TestAdd_EmptySymbol(t *testing.T) {
	var w Watchlist
	added, err := w.Add("   ")
	require.ErrorIs(t, err, ErrEmptySymbol)
	require.False(t, added)
	require.Equal(t, 0, w.Len())
}

func TestRemove_AbsentIsNoop(t *testing.T) {
	w := New("BTC", "ETH")
	require.False(t, w.Remove("DOGE"))
	require.Equal(t, []string{"BTC", "ETH"}, w.Symbols())

	var empty Watchlist
	require.False(t, empty.Remove("BTC"))
}

func TestRemove_Present(t *testing.T) {
	w := New("BTC", "ETH", "SOL")
	require.True(t, w.Remove("eth"))
	require.False(t, w.Contains("ETH"))
	require.Equal(t, []string{"BTC", "SOL"}, w.Symbols())

	// Re-adding appends at the end.
	_, err := w.Add("ETH")
	require.NoError(t, err)
	require.Equal(t, []string{"BTC", "SOL", "ETH"}, w.Symbols())
}

func TestSymbols_ReturnsCopy(t *testing.T) {
	w := New("BTC")
	s := w.Symbols()
	s[0] = "XXX"
	require.Equal(t, []string{"BTC"}, w.Symbols())
}
