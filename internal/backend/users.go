// ABOUTME: Customer account endpoints for the users panel

package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/2389/lot-admin/internal/model"
)

// ListUsers returns every customer account.
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	env, err := c.do(ctx, http.MethodGet, "/admin/users", nil)
	if err != nil {
		return nil, err
	}
	wire, err := decodeList[wireUser](env, "users", "items")
	if err != nil {
		return nil, err
	}
	users := make([]model.User, len(wire))
	for i, w := range wire {
		users[i] = w.toModel()
	}
	return users, nil
}

// SetUserStatus moves a customer account to status.
func (c *Client) SetUserStatus(ctx context.Context, id string, status model.UserStatus) error {
	_, err := c.do(ctx, http.MethodPatch, "/admin/users/"+url.PathEscape(id)+"/status",
		map[string]string{"status": string(status)})
	return err
}
