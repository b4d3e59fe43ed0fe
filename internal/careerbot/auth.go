package careerbot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

type Credentials struct {
	LoginID  string `json:"loginId"`
	Password string `json:"password"`
}

type SignupRequest struct {
	LoginID  string `json:"loginId"`
	Password string `json:"password"`
	UserName string `json:"userName"`
}

type User struct {
	ID      string `mapstructure:"id"`
	LoginID string `mapstructure:"loginId"`
	Name    string `mapstructure:"userName"`
}

// DisplayName returns the best name available for greetings.
func (u User) DisplayName() string {
	switch {
	case u.Name != "":
		return u.Name
	case u.LoginID != "":
		return u.LoginID
	default:
		return u.ID
	}
}

// LoginResult is what a successful login or auto-login hands to the session.
type LoginResult struct {
	Token string
	User  User
}

type loginPayload struct {
	AccessToken string `mapstructure:"accessToken"`
	Token       string `mapstructure:"token"`
	UserID      string `mapstructure:"userId"`
	UserName    string `mapstructure:"userName"`
	User        *User  `mapstructure:"user"`
}

func (p loginPayload) result() LoginResult {
	res := LoginResult{Token: p.AccessToken, User: User{ID: p.UserID, Name: p.UserName}}
	if res.Token == "" {
		res.Token = p.Token
	}

	if p.User != nil {
		if res.User.ID == "" {
			res.User.ID = p.User.ID
		}
		if res.User.Name == "" {
			res.User.Name = p.User.Name
		}
		res.User.LoginID = p.User.LoginID
	}

	return res
}

func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	data, err := c.sendJSON(ctx, http.MethodPost, "/api/auth/login", creds, false)
	if err != nil {
		return nil, err
	}

	payload, err := decodeLoginPayload(data)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	res := payload.result()
	if res.Token == "" {
		return nil, &Error{Kind: KindUnknown, Message: "login response did not include a token"}
	}
	if res.User.ID == "" {
		res.User.ID = creds.LoginID
	}

	c.logger.Debug("logged in", zap.String("user", res.User.DisplayName()))
	return &res, nil
}

// Signup registers a user. The result is nil unless the backend logged the
// new user in right away.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*LoginResult, error) {
	data, err := c.sendJSON(ctx, http.MethodPost, "/api/auth/signup", req, false)
	if err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	payload, err := decodeLoginPayload(data)
	if err != nil {
		// Plain text confirmations are fine.
		return nil, nil
	}

	res := payload.result()
	if res.Token == "" || payload.User == nil {
		return nil, nil
	}
	if res.User.LoginID == "" {
		res.User.LoginID = req.LoginID
	}

	return &res, nil
}

// Logout tells the backend the token is no longer used.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.sendJSON(ctx, http.MethodPost, "/api/auth/logout", nil, true)
	return err
}

func decodeLoginPayload(data []byte) (loginPayload, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return loginPayload{}, fmt.Errorf("decode response: %w", err)
	}

	var payload loginPayload
	if err := decodeLoose(raw, &payload); err != nil {
		return loginPayload{}, fmt.Errorf("decode response: %w", err)
	}

	return payload, nil
}
