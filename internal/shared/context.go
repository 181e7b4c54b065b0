package shared

import (
	"context"
	"time"
)

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID    int64
	Name      string
	Email     string
	Role      string
	TeamID    *int64
	TokenID   string
	ExpiresAt time.Time
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}

// ActorID returns the caller's user id or zero for anonymous/system callers.
func ActorID(ctx context.Context) int64 {
	if p := PrincipalFromContext(ctx); p != nil {
		return p.UserID
	}
	return 0
}

// ActorName returns the caller's display name or "system".
func ActorName(ctx context.Context) string {
	if p := PrincipalFromContext(ctx); p != nil && p.Name != "" {
		return p.Name
	}
	return "system"
}
