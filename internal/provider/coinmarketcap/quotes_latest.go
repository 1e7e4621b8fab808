package coinmarketcap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strings"

	"cryptoanalyzer/internal/provider"
)

// QuotesLatest retrieves the latest market quote for each symbol.
// The result is keyed by upper-case symbol; symbols unknown to the API are
// absent from the map rather than failing the whole batch.
func (c *Client) QuotesLatest(ctx context.Context, symbols []string, opts ...ClientOption) (map[string]Coin, error) {
	override := c.clone(opts)

	wanted := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if s = provider.NormalizeSymbol(s); s != "" {
			wanted = append(wanted, s)
		}
	}
	if len(wanted) == 0 {
		return nil, provider.ErrEmptySymbol
	}

	query := maps.Clone(override.query)
	query.Set("symbol", strings.Join(wanted, ","))
	query.Set("convert", override.convert)
	if len(wanted) > 1 {
		query.Set("skip_invalid", "true")
	}

	url := fmt.Sprintf("%s/v1/cryptocurrency/quotes/latest?%s", override.baseURL, query.Encode())
	var body quotesResponse
	if err := override.get(ctx, url, &body); err != nil {
		var fe *provider.FetchError
		if errors.As(err, &fe) && len(wanted) == 1 {
			fe.Symbol = wanted[0]
		}
		return nil, err
	}

	out := make(map[string]Coin, len(body.Data))
	for key, coin := range body.Data {
		if coin.Symbol == "" {
			coin.Symbol = key
		}
		out[provider.NormalizeSymbol(key)] = coin
	}
	return out, nil
}

// get performs a GET request and decodes the JSON body into out.
// Failures are reported as *provider.FetchError.
func (c *Client) get(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return provider.NetworkError(0, fmt.Errorf("creating request: %w", err))
	}
	req.Header = c.header.Clone()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return provider.NetworkError(0, fmt.Errorf("performing request: %w", err))
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return statusError(res)
	}

	dec := json.NewDecoder(res.Body)
	if err := dec.Decode(out); err != nil {
		return provider.ParseError(fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

// statusError maps a non-2xx response to a FetchError. CoinMarketCap reports
// unknown symbols as 400 with `Invalid value for "symbol"`.
func statusError(res *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
	var body struct {
		Status Status `json:"status"`
	}
	msg := strings.TrimSpace(string(b))
	if err := json.Unmarshal(b, &body); err == nil && body.Status.ErrorMessage != "" {
		msg = body.Status.ErrorMessage
	}

	switch res.StatusCode {
	case http.StatusBadRequest:
		if strings.Contains(msg, `"symbol"`) {
			return &provider.FetchError{Kind: provider.ErrSymbolNotFound, StatusCode: res.StatusCode, Err: errors.New(msg)}
		}
	case http.StatusUnauthorized, http.StatusForbidden:
		msg = "unauthorized: " + msg
	case http.StatusTooManyRequests:
		msg = "rate limited: " + msg
	}
	return provider.NetworkError(res.StatusCode, errors.New(msg))
}
