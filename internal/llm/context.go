package llm

import "context"

type contextKey string

const (
	purposeKey contextKey = "llm_purpose"
	streamKey  contextKey = "llm_stream"
)

// WithPurpose attaches a purpose label to the context for event logging.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey, purpose)
}

// PurposeFrom extracts the purpose label from the context.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey).(string); ok {
		return v
	}
	return "unknown"
}

// StreamFunc receives visible text as a streaming provider produces it.
type StreamFunc func(delta string)

// WithStream asks streaming providers to report partial output to fn.
// Providers that do not stream ignore it. The final Response is the same
// either way.
func WithStream(ctx context.Context, fn StreamFunc) context.Context {
	return context.WithValue(ctx, streamKey, fn)
}

func streamFrom(ctx context.Context) StreamFunc {
	fn, _ := ctx.Value(streamKey).(StreamFunc)
	return fn
}
