// Package auth exchanges a username and password for a Bedrock bearer
// token at a credential endpoint.
//
// The password never leaves the machine: only its SHA-256 hex digest is
// sent.
package auth

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// CredentialName is the store key under which the exchanged token is cached.
const CredentialName = "bedrock"

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrUserNotFound    = errors.New("user not found")
	ErrNoEndpoint      = errors.New("no credential endpoint configured (set auth.url or RUBRIX_AUTH_URL)")
)

// ServerError is any other non-200 reply. Message is the server's "error"
// field, or the status text when the body has none.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("credential server returned %d: %s", e.Status, e.Message)
}

type exchangeRequest struct {
	User         string `json:"user"`
	PasswordHash string `json:"password_hash"`
}

type exchangeResponse struct {
	Secret string `json:"secret"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Client talks to one credential endpoint.
type Client struct {
	url    string
	client *http.Client
	log    *zap.Logger
}

// NewClient creates a Client for url. A nil httpClient uses a client with
// a 30s timeout.
func NewClient(url string, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{url: url, client: httpClient, log: log}
}

// Exchange is a convenience for NewClient(url, nil, nil).Exchange.
func Exchange(ctx context.Context, url, user, password string) (string, error) {
	return NewClient(url, nil, nil).Exchange(ctx, user, password)
}

// Exchange posts the user and password hash and returns the issued secret.
func (c *Client) Exchange(ctx context.Context, user, password string) (string, error) {
	if strings.TrimSpace(c.url) == "" {
		return "", ErrNoEndpoint
	}

	body, err := json.Marshal(exchangeRequest{User: user, PasswordHash: HashPassword(password)})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build credential request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("connect to credential server: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read credential response: %w", err)
	}

	log := c.log.With(
		zap.String("user", user),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	switch resp.StatusCode {
	case http.StatusOK:
		var out exchangeResponse
		if err := json.Unmarshal(data, &out); err != nil {
			return "", fmt.Errorf("parse credential response: %w", err)
		}
		if out.Secret == "" {
			return "", fmt.Errorf("credential response has no secret")
		}
		log.Info("credential issued")
		return out.Secret, nil
	case http.StatusUnauthorized:
		log.Warn("credential exchange rejected")
		return "", ErrInvalidPassword
	case http.StatusNotFound:
		log.Warn("credential exchange rejected")
		return "", ErrUserNotFound
	default:
		msg := http.StatusText(resp.StatusCode)
		var er errorResponse
		if json.Unmarshal(data, &er) == nil && er.Error != "" {
			msg = er.Error
		}
		log.Warn("credential exchange failed", zap.String("error", msg))
		return "", &ServerError{Status: resp.StatusCode, Message: msg}
	}
}

// HashPassword returns the lowercase hex SHA-256 digest of password.
func HashPassword(password string) string {
	h := sha256.Sum256([]byte(password))
	return hex.EncodeToString(h[:])
}
