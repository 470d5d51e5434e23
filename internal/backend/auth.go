// ABOUTME: Authentication endpoints: sign-in, sign-out and current operator
// ABOUTME: The token may arrive at the envelope root or inside data

package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/2389/lot-admin/internal/model"
)

// Operator is the signed-in admin account.
type Operator struct {
	ID            string
	Username      string
	CompanyName   string
	ContactPerson string
	Email         string
	Role          string
	IsFirstLogin  bool
}

// LoginResult is a successful sign-in.
type LoginResult struct {
	Token    string
	Operator Operator
	Message  string
}

// Login exchanges credentials for a bearer token. A 401 here is a normal
// "invalid credentials" answer and never clears the session.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (*LoginResult, error) {
	env, err := c.do(ctx, http.MethodPost, loginPath, creds)
	if err != nil {
		return nil, err
	}

	result := &LoginResult{Token: env.Token, Message: env.Message}
	userRaw := env.User

	if len(env.Data) > 0 && env.Data[0] == '{' {
		var data struct {
			Token string          `json:"token"`
			User  json.RawMessage `json:"user"`
		}
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, fmt.Errorf("%w: login data: %v", ErrMalformedResponse, err)
		}
		if result.Token == "" {
			result.Token = data.Token
		}
		if len(userRaw) == 0 {
			userRaw = data.User
		}
	}

	if result.Token == "" {
		return nil, ErrMissingToken
	}

	if len(userRaw) > 0 && string(userRaw) != "null" {
		var u wireOperator
		if err := json.Unmarshal(userRaw, &u); err != nil {
			return nil, fmt.Errorf("%w: login user: %v", ErrMalformedResponse, err)
		}
		result.Operator = u.toOperator()
	}
	return result, nil
}

// Logout tells the backend to end the session. Callers clear local state regardless of the result.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/auth/logout", nil)
	return err
}

// Me returns the operator the current credential belongs to.
func (c *Client) Me(ctx context.Context) (*Operator, error) {
	env, err := c.do(ctx, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return nil, err
	}

	raw := env.User
	if len(raw) == 0 {
		raw = env.Data
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: missing operator", ErrMalformedResponse)
	}

	// data may be the account itself or {user: {...}}
	var nested struct {
		User *wireOperator `json:"user"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil && nested.User != nil {
		op := nested.User.toOperator()
		return &op, nil
	}
	var u wireOperator
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("%w: operator: %v", ErrMalformedResponse, err)
	}
	op := u.toOperator()
	return &op, nil
}
