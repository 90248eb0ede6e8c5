package auth

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

	"github.com/dmitrijs2005/lifetrack/internal/common"
)

// Client talks to a GoTrue-compatible auth endpoint (the hosted provider
// behind the primary store). Only the request/response contract is used.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	now        func() time.Time
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		now:        time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type tokenResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	ExpiresIn    int64         `json:"expires_in"`
	ExpiresAt    int64         `json:"expires_at"`
	User         *userResponse `json:"user"`

	// Sign-up without a session (email confirmation pending) returns the
	// bare user object.
	ID string `json:"id"`
}

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (e errorResponse) text() string {
	for _, s := range []string{e.ErrorDescription, e.Msg, e.Message, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// SignUp registers a new account. The returned session is nil when the
// provider requires email confirmation before the first sign-in.
func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	var resp tokenResponse
	if err := c.do(ctx, "sign_up", "/auth/v1/signup", "", credentials{email, password}, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, nil
	}
	return c.session(resp), nil
}

// SignIn exchanges email and password for a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var resp tokenResponse
	if err := c.do(ctx, "sign_in", "/auth/v1/token?grant_type=password", "", credentials{email, password}, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, common.NewRemoteError("sign_in", errors.New("no access token in response"))
	}
	return c.session(resp), nil
}

// Refresh trades the refresh token of sess for a new session.
func (c *Client) Refresh(ctx context.Context, sess *Session) (*Session, error) {
	if sess == nil || sess.RefreshToken == "" {
		return nil, common.ErrAuthenticationRequired
	}
	body := map[string]string{"refresh_token": sess.RefreshToken}
	var resp tokenResponse
	if err := c.do(ctx, "refresh", "/auth/v1/token?grant_type=refresh_token", "", body, &resp); err != nil {
		return nil, err
	}
	return c.session(resp), nil
}

// SignOut revokes the session on the provider side.
func (c *Client) SignOut(ctx context.Context, sess *Session) error {
	if err := Require(sess); err != nil {
		return err
	}
	return c.do(ctx, "sign_out", "/auth/v1/logout", sess.AccessToken, nil, nil)
}

// ResetPassword asks the provider to email a recovery link.
func (c *Client) ResetPassword(ctx context.Context, email string) error {
	return c.do(ctx, "reset_password", "/auth/v1/recover", "", map[string]string{"email": email}, nil)
}

func (c *Client) session(r tokenResponse) *Session {
	s := &Session{AccessToken: r.AccessToken, RefreshToken: r.RefreshToken}
	if r.User != nil {
		s.UserID = r.User.ID
		s.Email = r.User.Email
	}
	switch {
	case r.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(r.ExpiresAt, 0)
	case r.ExpiresIn > 0:
		s.ExpiresAt = c.now().Add(time.Duration(r.ExpiresIn) * time.Second)
	}
	return s
}

func (c *Client) do(ctx context.Context, op, path, bearer string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return common.NewRemoteError(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return common.NewRemoteError(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e errorResponse
		_ = json.Unmarshal(raw, &e)
		msg := e.text()
		if msg == "" {
			msg = resp.Status
		}
		return common.NewRemoteError(op, errors.New(msg))
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return common.NewRemoteError(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
