package backendapi

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jobport/jobport/pkg/session"
)

// ExchangeResult is the parsed outcome of a successful code exchange.
type ExchangeResult struct {
	Tokens session.TokenPair
	User   session.User
}

// exchangeResponse mirrors the backend's callback payload. The user ID is
// decoded as any because deployments have returned both numbers and strings.
type exchangeResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         struct {
		ID             any    `json:"id"`
		Email          string `json:"email"`
		FirstName      string `json:"first_name"`
		LastName       string `json:"last_name"`
		Role           string `json:"role"`
		Status         string `json:"status"`
		ProfilePicture string `json:"profile_picture"`
	} `json:"user"`
}

// ParseExchange converts a successful exchange body into an ExchangeResult,
// applying the documented defaults for fields the backend may omit:
//
//	refresh token -> ""    role -> "user"    status -> "pending"    picture -> ""
//
// A missing access token is the one hard requirement and fails the parse.
func ParseExchange(body []byte) (*ExchangeResult, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var resp exchangeResponse
	if err := dec.Decode(&resp); err != nil {
		return nil, fmt.Errorf("backendapi: decode exchange response: %w", err)
	}

	if resp.AccessToken == "" {
		return nil, ErrMissingAccessToken
	}

	role := session.Role(resp.User.Role)
	if role == "" {
		role = session.RoleUser
	}
	status := session.Status(resp.User.Status)
	if status == "" {
		status = session.StatusPending
	}

	return &ExchangeResult{
		Tokens: session.TokenPair{
			Access:  resp.AccessToken,
			Refresh: resp.RefreshToken,
		},
		User: session.User{
			ID:        stringifyID(resp.User.ID),
			Email:     resp.User.Email,
			FirstName: resp.User.FirstName,
			LastName:  resp.User.LastName,
			Role:      role,
			Status:    status,
			Picture:   resp.User.ProfilePicture,
		},
	}, nil
}

// stringifyID normalizes the backend's user ID to its opaque string form.
func stringifyID(id any) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
