package coinmarketcap

import (
	"errors"
	"net/http"
	"net/url"
)

const (
	baseURL = "https://pro-api.coinmarketcap.com"

	// apiKeyHeader authenticates every request.
	// https://coinmarketcap.com/api/documentation/v1/#section/Authentication
	apiKeyHeader = "X-CMC_PRO_API_KEY"
)

// ErrMissingAPIKey is returned by NewClient when no key is supplied.
var ErrMissingAPIKey = errors.New("coinmarketcap: missing API key")

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=coinmarketcap_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a client for the CoinMarketCap Pro API.
type Client struct {
	// baseURL is the base URL for the API.
	baseURL string
	// httpClient performs the requests.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// query contains additional query parameters to be sent with each request.
	query url.Values
	// convert is the quote currency requested from the API.
	convert string
}

// ClientOption is a configuration option for the CoinMarketCap client.
type ClientOption func(*Client)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) ClientOption {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// WithConvert sets the quote currency. Only USD is parsed into quotes.
func WithConvert(currency string) ClientOption {
	return func(c *Client) {
		if currency != "" {
			c.convert = currency
		}
	}
}

// NewClient creates a new CoinMarketCap client.
func NewClient(key string, options ...ClientOption) (*Client, error) {
	if key == "" {
		return nil, ErrMissingAPIKey
	}
	var client = &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		query:      url.Values{},
		convert:    "USD",
	}
	client.header.Set(apiKeyHeader, key)
	client.header.Set("Accept", "application/json")
	for _, option := range options {
		option(client)
	}
	return client, nil
}

func (c *Client) clone(opts []ClientOption) *Client {
	var override = &Client{
		baseURL:    c.baseURL,
		httpClient: c.httpClient,
		header:     c.header.Clone(),
		query:      c.query,
		convert:    c.convert,
	}
	for _, opt := range opts {
		opt(override)
	}
	return override
}
