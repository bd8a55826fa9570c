// Package backend implements ports.Backend against the PayAssure HTTP API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/payassure/payassure-web/internal/domain/auth"
	"github.com/payassure/payassure-web/internal/ports"
)

// Operation names reported to the observer.
const (
	OpLogin          = "login"
	OpForgotPassword = "forgot_password"
	OpResetPassword  = "reset_password"
	OpFetchUser      = "fetch_user"
)

const (
	loginPath  = "/api/login"
	forgotPath = "/api/login/forgot-password"
	resetPath  = "/api/login/reset-password"
	userPath   = "/login"

	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 1 << 20
)

// Config captures the backend endpoint and transport settings.
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	Client   *http.Client
	Observer ports.BackendObserver
	Logger   *slog.Logger
}

// Client talks JSON over HTTP to the PayAssure backend. It never retries.
type Client struct {
	baseURL  string
	client   *http.Client
	observer ports.BackendObserver
	logger   *slog.Logger
}

// NewClient builds a backend client. BaseURL must be an absolute http(s) URL.
func NewClient(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("backend base url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse backend base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend base url must be http or https, got %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:  u.String(),
		client:   hc,
		observer: cfg.Observer,
		logger:   logger.With("component", "backend"),
	}, nil
}

// Login posts credentials and returns the normalised user.
func (c *Client) Login(ctx context.Context, in ports.LoginInput) (domainauth.User, error) {
	body, err := c.do(ctx, OpLogin, http.MethodPost, loginPath, map[string]string{
		"email":    in.Email,
		"password": in.Password,
	})
	if err != nil {
		return domainauth.User{}, err
	}
	u, ok := decodeUser(body)
	if !ok {
		return domainauth.User{}, &Error{Op: OpLogin, Status: http.StatusOK, Cause: errors.New("response is not a user object")}
	}
	return u, nil
}

// ForgotPassword asks the backend to send an OTP to email.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	body, err := c.do(ctx, OpForgotPassword, http.MethodPost, forgotPath, map[string]string{
		"email": email,
	})
	if err != nil {
		return "", err
	}
	return ExtractMessage(body), nil
}

// ResetPassword sets a new password using the emailed OTP.
func (c *Client) ResetPassword(ctx context.Context, in ports.ResetInput) (string, error) {
	body, err := c.do(ctx, OpResetPassword, http.MethodPost, resetPath, map[string]string{
		"email":       in.Email,
		"otp":         in.OTP,
		"newPassword": in.NewPassword,
	})
	if err != nil {
		return "", err
	}
	return ExtractMessage(body), nil
}

// FetchUser loads the full record for id from the role-specific endpoint.
func (c *Client) FetchUser(ctx context.Context, role domainauth.Role, id string) (domainauth.User, error) {
	if strings.TrimSpace(id) == "" {
		return domainauth.User{}, &Error{Op: OpFetchUser, Cause: errors.New("user id is required")}
	}
	p := userPath + "/" + role.Segment() + "/" + url.PathEscape(id)
	body, err := c.do(ctx, OpFetchUser, http.MethodGet, p, nil)
	if err != nil {
		return domainauth.User{}, err
	}
	u, ok := decodeUser(body)
	if !ok {
		return domainauth.User{}, &Error{Op: OpFetchUser, Status: http.StatusOK, Cause: errors.New("response is not a user object")}
	}
	return u, nil
}

// endpoint joins the base URL with an already escaped path.
func (c *Client) endpoint(p string) string {
	return c.baseURL + p
}

func (c *Client) do(ctx context.Context, op, method, p string, payload any) ([]byte, error) {
	start := time.Now()
	body, err := c.roundTrip(ctx, op, method, p, payload)
	took := time.Since(start)

	outcome := "success"
	if err != nil {
		outcome = "error"
		var be *Error
		if errors.As(err, &be) && be.Status == 0 {
			outcome = "transport_error"
		}
		// Payloads carry credentials; log only the operation and status.
		c.logger.DebugContext(ctx, "backend call failed", "op", op, "error", err, "took", took)
	}
	if c.observer != nil {
		c.observer.ObserveBackendCall(op, outcome, took)
	}
	return body, err
}

func (c *Client) roundTrip(ctx context.Context, op, method, p string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, &Error{Op: op, Cause: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(p), reader)
	if err != nil {
		return nil, &Error{Op: op, Cause: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json, text/plain;q=0.9")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &Error{Op: op, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{Op: op, Status: resp.StatusCode, Cause: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{Op: op, Status: resp.StatusCode, Message: ExtractMessage(body)}
	}
	return body, nil
}
