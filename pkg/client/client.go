// Package client is a Go client for the site's session endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

// User is the public part of a signed-in account.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// APIError is a non-2xx answer carrying the server's error message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client talks to the site. Session cookies live in its jar.
type Client struct {
	base *url.URL
	http *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the transport. The client's jar is kept when
// hc has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc.Jar == nil {
			hc.Jar = c.http.Jar
		}
		c.http = hc
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{base: u, http: &http.Client{Jar: jar}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userEnvelope struct {
	User User `json:"user"`
}

// Login signs in. Wrong username and wrong password both yield
// ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, username, password string) (*User, error) {
	var out userEnvelope
	err := c.do(ctx, http.MethodPost, "/api/auth/login", loginRequest{Username: username, Password: password}, &out)
	if isStatus(err, http.StatusUnauthorized) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Logout clears the session cookie.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// Session returns the signed-in user or ErrUnauthenticated.
func (c *Client) Session(ctx context.Context) (*User, error) {
	var out userEnvelope
	err := c.do(ctx, http.MethodGet, "/api/auth/session", nil, &out)
	if isStatus(err, http.StatusUnauthorized) {
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&e)
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func isStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
