package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/legalaipro/lexauth/core"
)

// Exchange API paths, relative to the base URL.
const (
	pathRegister = "/api/auth/register"
	pathLogin    = "/api/auth/login"
	pathLogout   = "/api/auth/logout"
	pathRefresh  = "/api/auth/refresh"
	pathMe       = "/api/users/me"
)

// HTTPExchange talks to the credential-exchange API over HTTP. Failure
// payloads ({"error": ...} or {"message": ...}) become *core.ExchangeError
// so the session store can surface the message verbatim.
type HTTPExchange struct {
	baseURL string
	client  *http.Client
}

var _ core.Exchange = (*HTTPExchange)(nil)

// NewHTTPExchange creates a client for the exchange at baseURL. client may
// be nil; a 15s-timeout default is used.
func NewHTTPExchange(baseURL string, client *http.Client) *HTTPExchange {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPExchange{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (x *HTTPExchange) Login(ctx context.Context, creds core.Credentials) (*core.ExchangeResult, error) {
	var result core.ExchangeResult
	if err := x.do(ctx, http.MethodPost, pathLogin, "", creds, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (x *HTTPExchange) Register(ctx context.Context, reg core.Registration) (*core.ExchangeResult, error) {
	var result core.ExchangeResult
	if err := x.do(ctx, http.MethodPost, pathRegister, "", reg, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (x *HTTPExchange) Logout(ctx context.Context, token string) error {
	return x.do(ctx, http.MethodPost, pathLogout, token, nil, nil)
}

func (x *HTTPExchange) Refresh(ctx context.Context, token string) (string, error) {
	var result struct {
		Token string `json:"token"`
	}
	if err := x.do(ctx, http.MethodPost, pathRefresh, token, nil, &result); err != nil {
		return "", err
	}
	return result.Token, nil
}

func (x *HTTPExchange) Me(ctx context.Context, token string) (*core.User, error) {
	var user core.User
	if err := x.do(ctx, http.MethodGet, pathMe, token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (x *HTTPExchange) UpdateMe(ctx context.Context, token string, update core.ProfileUpdate) (*core.User, error) {
	var user core.User
	if err := x.do(ctx, http.MethodPatch, pathMe, token, update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (x *HTTPExchange) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, x.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := x.client.Do(req)
	if err != nil {
		return fmt.Errorf("exchange request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeExchangeError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeExchangeError extracts the collaborator's message, preferring the
// "error" field, then "message", then nothing (the caller falls back to a
// generic string).
func decodeExchangeError(resp *http.Response) error {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	message := payload.Error
	if message == "" {
		message = payload.Message
	}

	return &core.ExchangeError{
		Status:  resp.StatusCode,
		Message: message,
	}
}
