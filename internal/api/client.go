// Package api is the HTTP client for the energy backend: login, registration
// and the two record collections.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jgoulah/energyviz/internal/session"
	"github.com/jgoulah/energyviz/pkg/models"
)

// ErrPasswordMismatch is returned by Register before any request is made
var ErrPasswordMismatch = errors.New("passwords do not match")

// AuthError represents an authentication failure
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return e.Message
}

// StatusError is any other non-2xx answer
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API returned status %d: %s", e.StatusCode, e.Body)
}

// IsAuthError reports whether err is an *AuthError
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// TokenResponse is the login answer
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Client talks to the energy API
type Client struct {
	baseURL string
	http    *http.Client
	session *session.Store
}

// New creates a client. sess may be nil for unauthenticated use.
func New(baseURL string, timeout time.Duration, sess *session.Store) *Client {
	if sess == nil {
		sess = session.NewStore("")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		session: sess,
	}
}

// Session returns the store the client reads its token from
func (c *Client) Session() *session.Store {
	return c.session
}

// Login exchanges credentials for an access token and saves it in the session.
// On failure the existing session is left unchanged.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tok TokenResponse
	if err := c.do(req, &tok); err != nil {
		return nil, fmt.Errorf("logging in: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, errors.New("logging in: response has no access_token")
	}

	if err := c.session.Save(session.Session{
		Token:     tok.AccessToken,
		TokenType: tok.TokenType,
		Email:     email,
	}); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	return &tok, nil
}

// Register creates an account. Mismatched passwords fail with
// ErrPasswordMismatch without contacting the server.
func (c *Client) Register(ctx context.Context, email, password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}

	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/register", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("registering: %w", err)
	}
	return nil
}

// Records fetches one collection. The bearer token is sent when a session exists.
func (c *Client) Records(ctx context.Context, collection models.Collection) ([]models.EnergyRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/energy/"+string(collection), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	records := []models.EnergyRecord{}
	if err := c.do(req, &records); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", collection, err)
	}
	return records, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		body, _ := io.ReadAll(resp.Body)
		return &AuthError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("authentication failed (status %d): %s", resp.StatusCode, detail(body)),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, Body: detail(body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// detail extracts FastAPI-style {"detail": "..."} messages, falling back to the raw body
func detail(body []byte) string {
	var msg struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &msg); err == nil {
		if s, ok := msg.Detail.(string); ok && s != "" {
			return s
		}
	}
	return strings.TrimSpace(string(body))
}
