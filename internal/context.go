package internal

import (
	"context"
	"time"
)

type ctxKey string

const ContextCanonicalIDKey ctxKey = "canonicalID"

func CanonicalIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if canonicalID, ok := ctx.Value(ContextCanonicalIDKey).(string); ok {
		return canonicalID
	}
	return ""
}

func ContextWithCanonicalID(ctx context.Context, canonicalID string) context.Context {
	return context.WithValue(ctx, ContextCanonicalIDKey, canonicalID)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
