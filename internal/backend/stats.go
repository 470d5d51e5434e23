// ABOUTME: Dashboard statistic endpoints

package backend

import (
	"context"
	"net/http"
)

// TotalProducts returns the catalog size.
func (c *Client) TotalProducts(ctx context.Context) (int, error) {
	env, err := c.do(ctx, http.MethodGet, "/admin/stats/total-products", nil)
	if err != nil {
		return 0, err
	}
	return decodeCount(env, "totalProducts", "total", "count")
}

// NewEstimates returns how many estimates are still in the new state.
func (c *Client) NewEstimates(ctx context.Context) (int, error) {
	env, err := c.do(ctx, http.MethodGet, "/admin/stats/new-estimates", nil)
	if err != nil {
		return 0, err
	}
	return decodeCount(env, "newEstimates", "total", "count")
}
