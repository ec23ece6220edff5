// Package requestid carries a per-request correlation id across HTTP, gRPC
// and log lines.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

const (
	Header = "X-Request-Id"
	// MetadataKey is the gRPC metadata form of Header.
	MetadataKey = "x-request-id"
	maxLen      = 64
)

type ctxKey struct{}

func New() string {
	return uuid.NewString()
}

func FromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKey{}).(string)
	return v
}

func NewContext(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, id)
}

// Accept returns raw when it is safe to echo into headers and logs, or a
// fresh id otherwise.
func Accept(raw string) string {
	if raw == "" || len(raw) > maxLen {
		return New()
	}
	for _, c := range raw {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-' || c == '_' || c == '.':
		default:
			return New()
		}
	}
	return raw
}
