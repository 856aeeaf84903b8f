package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"

	"github.com/ctlabs/taskrouter/internal/domain"
)

// ContextKey is the type of context keys set by the API layer.
type ContextKey string

const (
	// TraceIDKey holds the request's trace ID.
	TraceIDKey ContextKey = "traceID"

	// IdentityKey holds the caller resolved by the auth middleware.
	IdentityKey ContextKey = "identity"

	// TraceIDLength is the number of random bytes in a trace ID.
	TraceIDLength = 16
)

// SetTraceID stores a freshly generated trace ID in ctx.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// GetTraceID returns the trace ID in ctx, or "" if there is none.
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}

// WithIdentity stores the resolved caller in ctx.
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

// GetIdentity returns the caller stored in ctx.
func GetIdentity(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(domain.Identity)
	return identity, ok
}

// generateTraceID returns 32 hex characters. If the system random source
// fails it falls back to a random UUID without dashes.
func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	if _, err := rand.Read(b); err != nil {
		u := uuid.New()
		return hex.EncodeToString(u[:])
	}
	return hex.EncodeToString(b)
}
