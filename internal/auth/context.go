package auth

import (
	"context"
)

type contextKey string

const claimsKey contextKey = "claims"

// NewContext returns a context carrying validated claims
func NewContext(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// FromContext extracts validated claims from the context
func FromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}
