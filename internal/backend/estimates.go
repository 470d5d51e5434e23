// ABOUTME: Estimate endpoints for the estimates panel

package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/2389/lot-admin/internal/model"
)

// ListEstimates returns every estimate with its line items.
func (c *Client) ListEstimates(ctx context.Context) ([]model.Estimate, error) {
	env, err := c.do(ctx, http.MethodGet, "/estimate/admin/all", nil)
	if err != nil {
		return nil, err
	}
	wire, err := decodeList[wireEstimate](env, "estimates", "items")
	if err != nil {
		return nil, err
	}
	estimates := make([]model.Estimate, len(wire))
	for i, w := range wire {
		estimates[i] = w.toModel()
	}
	return estimates, nil
}

// SetEstimateStatus moves an estimate to status.
func (c *Client) SetEstimateStatus(ctx context.Context, id string, status model.EstimateStatus) error {
	_, err := c.do(ctx, http.MethodPatch, "/estimate/admin/"+url.PathEscape(id)+"/status",
		map[string]string{"status": string(status)})
	return err
}
