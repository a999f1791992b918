// Package trace provides delivery ID generation and context propagation so
// that every log line emitted while processing one webhook delivery can be
// correlated back to it.
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// traceKey is the unexported context key holding the delivery ID.
type traceKey struct{}

// NewID generates a unique delivery ID.
func NewID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is effectively fatal elsewhere; fall back to a
		// timestamp so correlation still works.
		return fmt.Sprintf("d_%d", time.Now().UnixNano())
	}
	return "d_" + hex.EncodeToString(buf)
}

// WithID returns a child context carrying the given delivery ID.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

// FromContext extracts the delivery ID from ctx, returning "" when absent.
func FromContext(ctx context.Context) string {
	if v, ok := ctx.Value(traceKey{}).(string); ok {
		return v
	}
	return ""
}
