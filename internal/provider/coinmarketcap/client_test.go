package coinmarketcap_test

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"cryptoanalyzer/internal/provider/coinmarketcap"
)

// jsonResponse builds a response carrying body with the given status.
func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	// Assert: a valid key should return a client.
	client, err := coinmarketcap.NewClient("test")
	require.NoErrorf(t, err, "unexpected error: %v", err)
	require.NotNilf(t, client, "unexpected nil client")
}

func TestNewClient_MissingKey(t *testing.T) {
	t.Parallel()

	client, err := coinmarketcap.NewClient("")
	require.ErrorIs(t, err, coinmarketcap.ErrMissingAPIKey)
	require.Nil(t, client)
}

func TestWithHTTPClient_SendsAPIKeyHeader(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: the key travels in the CoinMarketCap header, never in the query.
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "secret", req.Header.Get("X-CMC_PRO_API_KEY"))
			require.Empty(t, req.URL.Query().Get("api_key"))
			return jsonResponse(http.StatusOK, quotesBody), nil
		}).
		Times(1)

	// Arrange: create a new client with a custom HTTP client.
	client, err := coinmarketcap.NewClient("secret", coinmarketcap.WithHTTPClient(httpClient))
	require.NoError(t, err)

	// Act
	_, err = client.QuotesLatest(t.Context(), []string{"BTC"})
	require.NoError(t, err)
}

func TestWithBaseURL(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockHTTPClient(ctrl)

	// Arrange: define a base url
	baseURL := "http://localhost:8080"

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Truef(t, strings.HasPrefix(req.URL.String(), baseURL), "expected url to start with base url, received: %s", req.URL.String())
			return jsonResponse(http.StatusOK, listingsBody), nil
		}).
		Times(1)

	// Arrange: create a new client.
	client, err := coinmarketcap.NewClient("test", coinmarketcap.WithHTTPClient(httpClient), coinmarketcap.WithBaseURL(baseURL))
	require.NoError(t, err)

	// Act: call ListingsLatest with the overridden base URL.
	_, err = client.ListingsLatest(t.Context(), 50, "market_cap")
	require.NoError(t, err)
}

func TestWithHeader(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock http client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "bar", req.Header.Get("foo"))
			return jsonResponse(http.StatusOK, quotesBody), nil
		}).
		Times(1)

	// Arrange: create a new client with a custom header.
	client, err := coinmarketcap.NewClient("test", coinmarketcap.WithHTTPClient(httpClient), coinmarketcap.WithHeader(http.Header{
		"foo": []string{"bar"},
	}))
	require.NoError(t, err)

	// Act
	_, err = client.QuotesLatest(t.Context(), []string{"BTC"})
	require.NoError(t, err)
}
