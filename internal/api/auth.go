package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"taskdeck/internal/model"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Login exchanges credentials for a session token. It does not touch the session store.
func (c *Client) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	raw, err := c.do(ctx, request{method: http.MethodPost, path: "/auth/login", body: creds})
	if err != nil {
		return LoginResult{}, err
	}
	var res LoginResult
	if err := decode(raw, &res); err != nil {
		return LoginResult{}, err
	}
	res.Token = strings.TrimSpace(res.Token)
	if res.Token == "" {
		return LoginResult{}, errors.New("login response has no token")
	}
	return res, nil
}

// Register creates an account. The response shape is server-defined and returned as-is
// (nil when the body is empty).
func (c *Client) Register(ctx context.Context, reg Registration) (json.RawMessage, error) {
	raw, err := c.do(ctx, request{method: http.MethodPost, path: "/auth/register", body: reg})
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(raw))) == 0 || !json.Valid(raw) {
		return nil, nil
	}
	return json.RawMessage(raw), nil
}
