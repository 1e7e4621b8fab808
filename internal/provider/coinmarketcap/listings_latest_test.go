package coinmarketcap_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"cryptoanalyzer/internal/provider"
	"cryptoanalyzer/internal/provider/coinmarketcap"
)

const listingsBody = `{
  "status": {"error_code": 0},
  "data": [
    {"id": 1, "name": "Bitcoin", "symbol": "BTC", "cmc_rank": 1, "circulating_supply": 19500000, "total_supply": 19500000, "max_supply": 21000000,
      "quote": {"USD": {"price": 50000, "volume_24h": 1000000000, "percent_change_24h": 2.5, "last_updated": "2024-07-30T05:43:00.000Z"}}},
    {"id": 1027, "name": "Ethereum", "symbol": "ETH", "cmc_rank": 2, "circulating_supply": 120000000, "total_supply": 120000000, "max_supply": null,
      "quote": {"USD": {"price": 3000, "volume_24h": 500000000, "percent_change_24h": -1.25, "last_updated": "2024-07-30T05:43:00.000Z"}}},
    {"id": 825, "name": "Tether USDt", "symbol": "USDT", "cmc_rank": 3, "circulating_supply": 110000000000, "total_supply": 112000000000, "max_supply": null,
      "quote": {"USD": {"price": 1, "volume_24h": 40000000000, "percent_change_24h": 0, "last_updated": "2024-07-30T05:43:00.000Z"}}}
  ]
}`

func TestListingsLatest(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock HTTP client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "/v1/cryptocurrency/listings/latest", req.URL.Path)
			require.Equal(t, "50", req.URL.Query().Get("limit"))
			require.Equal(t, "market_cap", req.URL.Query().Get("sort"))
			return jsonResponse(http.StatusOK, listingsBody), nil
		}).
		Times(1)

	client, err := coinmarketcap.NewClient("test-key", coinmarketcap.WithHTTPClient(httpClient))
	require.NoError(t, err)

	// Act
	coins, err := client.ListingsLatest(t.Context(), 50, "market_cap")
	require.NoError(t, err)

	// Assert: API order is preserved.
	require.Len(t, coins, 3)
	require.Equal(t, "BTC", coins[0].Symbol)
	require.Equal(t, "ETH", coins[1].Symbol)
	require.Equal(t, "USDT", coins[2].Symbol)
	require.Equal(t, "-1.25", coins[1].Quote["USD"].PercentChange24h.Decimal.String())
}

func TestListingsLatest_ErrUnexpectedStatusCode(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusTooManyRequests, `{"status":{"error_code":1008,"error_message":"You've exceeded your API Key's HTTP request rate limit."}}`), nil
		}).
		Times(1)

	client, err := coinmarketcap.NewClient("test-key", coinmarketcap.WithHTTPClient(httpClient))
	require.NoError(t, err)

	coins, err := client.ListingsLatest(t.Context(), 50, "market_cap")
	require.ErrorIs(t, err, provider.ErrNetwork)
	require.Contains(t, err.Error(), "rate limited")
	require.Nil(t, coins)
}
