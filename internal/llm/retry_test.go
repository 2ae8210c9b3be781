package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const questionArray = `[{"text":"What is 2 + 3?","answers":[{"text":"5","is_correct":true},{"text":"6","is_correct":false}]}]`

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 1 * time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func ok() MockResponse {
	return MockResponse{Content: json.RawMessage(questionArray)}
}

func failWith(err error) MockResponse {
	return MockResponse{Err: err}
}

func TestRetry(t *testing.T) {
	down := &ErrProviderUnavailable{Err: errors.New("down")}
	invalid := &ErrInvalidResponse{Content: json.RawMessage(`bad`), Err: errors.New("bad")}

	tests := []struct {
		name      string
		responses []MockResponse
		wantErr   bool
		wantCalls int
	}{
		{"first attempt succeeds", []MockResponse{ok()}, false, 1},
		{"transient then success", []MockResponse{failWith(down), ok()}, false, 2},
		{"all attempts fail", []MockResponse{failWith(down), failWith(down), failWith(down)}, true, 3},
		{"max tokens not retried", []MockResponse{failWith(&ErrMaxTokensExceeded{}), ok()}, true, 1},
		{"auth not retried", []MockResponse{failWith(&ErrAuth{Err: errors.New("401")}), ok()}, true, 1},
		{"invalid response retried once", []MockResponse{failWith(invalid), failWith(invalid), ok()}, true, 2},
		{"rate limit honours retry-after", []MockResponse{failWith(&ErrRateLimit{RetryAfter: time.Millisecond}), ok()}, false, 2},
		{"plain error treated as transient", []MockResponse{failWith(errors.New("connection reset")), ok()}, false, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.responses...)
			p := WithRetry(mock, retryConfig(), nil)

			resp, err := p.Generate(context.Background(), Request{})
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, questionArray, resp.Text())
			}
			assert.Equal(t, tt.wantCalls, mock.CallCount())
		})
	}
}

func TestRetry_ContextCancellation(t *testing.T) {
	mock := NewMockProvider(
		failWith(&ErrProviderUnavailable{Err: errors.New("down")}),
		ok(),
	)
	p := WithRetry(mock, retryConfig(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetry_ZeroAttemptsStillCallsOnce(t *testing.T) {
	mock := NewMockProvider(ok())
	p := WithRetry(mock, RetryConfig{}, nil)

	_, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetry_LogsEachRetry(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	mock := NewMockProvider(
		failWith(&ErrProviderUnavailable{Err: errors.New("down")}),
		ok(),
	)
	p := WithRetry(mock, retryConfig(), zap.New(core))

	_, err := p.Generate(WithPurpose(context.Background(), "question-gen"), Request{})
	require.NoError(t, err)

	entries := logs.FilterMessage("llm request failed, retrying").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "question-gen", fields["purpose"])
	assert.Equal(t, int64(1), fields["attempt"])
}

func TestRetry_BackoffIsCapped(t *testing.T) {
	r := &RetryProvider{config: RetryConfig{InitialWait: time.Second, MaxWait: 2 * time.Second, Multiplier: 10}}
	for attempt := range 5 {
		assert.LessOrEqual(t, r.backoff(attempt, errors.New("x")), 2400*time.Millisecond)
	}
	assert.Equal(t, 3*time.Second, r.backoff(0, &ErrRateLimit{RetryAfter: 3 * time.Second}))
}

func TestRetry_ModelIDDelegates(t *testing.T) {
	p := WithRetry(NewMockProvider(), retryConfig(), nil)
	assert.Equal(t, "mock", p.ModelID())
}
