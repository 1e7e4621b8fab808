package coinmarketcap

import (
	"context"
	"fmt"
	"maps"
	"strconv"
)

// ListingsLatest retrieves the top coins ordered by sort (e.g. "market_cap").
func (c *Client) ListingsLatest(ctx context.Context, limit int, sort string, opts ...ClientOption) ([]Coin, error) {
	override := c.clone(opts)

	query := maps.Clone(override.query)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if sort != "" {
		query.Set("sort", sort)
	}
	query.Set("convert", override.convert)

	url := fmt.Sprintf("%s/v1/cryptocurrency/listings/latest?%s", override.baseURL, query.Encode())
	var body listingsResponse
	if err := override.get(ctx, url, &body); err != nil {
		return nil, err
	}
	return body.Data, nil
}
