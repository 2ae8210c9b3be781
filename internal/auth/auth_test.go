package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestHashPassword(t *testing.T) {
	// sha256("password")
	assert.Equal(t, "5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8", HashPassword("password"))
}

func TestExchange_Success(t *testing.T) {
	var got map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"secret":"bedrock-token"}`))
	}))
	defer server.Close()

	secret, err := Exchange(context.Background(), server.URL, "alice", "password")
	require.NoError(t, err)
	assert.Equal(t, "bedrock-token", secret)
	assert.Equal(t, map[string]string{
		"user":          "alice",
		"password_hash": HashPassword("password"),
	}, got)
}

func TestExchange_Outcomes(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":"nope"}`, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrInvalidPassword)
		}},
		{"not found", http.StatusNotFound, ``, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, ErrUserNotFound)
		}},
		{"server error with message", http.StatusInternalServerError, `{"error":"secret store unavailable"}`, func(t *testing.T, err error) {
			var se *ServerError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, 500, se.Status)
			assert.Equal(t, "secret store unavailable", se.Message)
		}},
		{"server error without body", http.StatusBadGateway, `<html>`, func(t *testing.T, err error) {
			var se *ServerError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, "Bad Gateway", se.Message)
		}},
		{"ok without secret", http.StatusOK, `{}`, func(t *testing.T, err error) {
			assert.ErrorContains(t, err, "no secret")
		}},
		{"ok with garbage", http.StatusOK, `not json`, func(t *testing.T, err error) {
			assert.ErrorContains(t, err, "parse credential response")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := Exchange(context.Background(), server.URL, "alice", "pw")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestExchange_NoEndpoint(t *testing.T) {
	_, err := Exchange(context.Background(), " ", "alice", "pw")
	assert.ErrorIs(t, err, ErrNoEndpoint)
}

func TestExchange_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := Exchange(context.Background(), url, "alice", "pw")
	assert.ErrorContains(t, err, "connect to credential server")
}

func TestExchange_NeverLogsSecret(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"secret":"top-secret-token"}`))
	}))
	defer server.Close()

	core, logs := observer.New(zap.DebugLevel)
	c := NewClient(server.URL, server.Client(), zap.New(core))

	_, err := c.Exchange(context.Background(), "alice", "hunter2")
	require.NoError(t, err)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "credential issued", entry.Message)
	for k, v := range entry.ContextMap() {
		if s, ok := v.(string); ok {
			assert.NotContains(t, s, "top-secret-token", k)
			assert.NotContains(t, s, "hunter2", k)
		}
	}
}
