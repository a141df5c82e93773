// Package api is the typed HTTP client for the coinfeed service. Response shapes
// are normalised here once; callers only see the types in types.go.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jask/coinfeed/internal/prefs"
)

// Client talks to the coinfeed API.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// NewClient returns a Client for baseURL. A zero timeout means 10s.
func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log.Named("api"),
	}
}

type authWire struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

func (w authWire) result() (AuthResult, error) {
	if w.Token == "" {
		return AuthResult{}, fmt.Errorf("auth response carried no token")
	}
	res := AuthResult{Token: w.Token}
	if w.User != nil {
		res.User = *w.User
	}
	return res, nil
}

// Signup creates an account and returns its session.
func (c *Client) Signup(ctx context.Context, name, email, password string) (AuthResult, error) {
	var out authWire
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/signup", "", body, &out); err != nil {
		return AuthResult{}, err
	}
	return out.result()
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (AuthResult, error) {
	var out authWire
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", body, &out); err != nil {
		return AuthResult{}, err
	}
	return out.result()
}

// SavePreferences stores onboarding choices for userID.
func (c *Client) SavePreferences(ctx context.Context, token, userID string, p prefs.Preferences) error {
	var out struct {
		OK bool `json:"ok"`
	}
	path := "/onboarding/" + url.PathEscape(userID)
	if err := c.do(ctx, http.MethodPut, path, token, p.Normalize(), &out); err != nil {
		return err
	}
	if !out.OK {
		return ErrNotSaved
	}
	return nil
}

// Dashboard fetches the personalised feed.
func (c *Client) Dashboard(ctx context.Context, token string) (DashboardData, error) {
	var out dashboardWire
	if err := c.do(ctx, http.MethodGet, "/dashboard", token, nil, &out); err != nil {
		return DashboardData{}, err
	}
	return out.normalize(), nil
}

// SendFeedback records a vote.
func (c *Client) SendFeedback(ctx context.Context, token string, fb Feedback) error {
	return c.do(ctx, http.MethodPost, "/feedback", token, fb, nil)
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed", zap.String("method", method), zap.String("path", path),
			zap.String("request_id", reqID), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	c.log.Debug("request done", zap.String("method", method), zap.String("path", path),
		zap.String("request_id", reqID), zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// decodeError treats an undecodable body as {}.
func decodeError(status int, data []byte) error {
	var body struct {
		Error string `json:"error"`
		Msg   string `json:"msg"`
	}
	_ = json.Unmarshal(data, &body)
	msg := body.Error
	if msg == "" {
		msg = body.Msg
	}
	if msg == "" {
		msg = "request failed"
	}
	return &Error{Status: status, Message: msg}
}
