package auth

import (
	"context"
	"slices"

	"github.com/dmitrijs2005/rms/internal/server/models"
)

// Principal is the authenticated caller of one request: identity, role
// and vendor scope. It is built by the access guard and passed to services.
type Principal struct {
	UserID   string
	Role     models.Role
	VendorID string
}

// HasRole reports whether the principal holds any of roles.
func (p Principal) HasRole(roles ...models.Role) bool {
	return slices.Contains(roles, p.Role)
}

// Authenticated reports whether p was produced by a successful verification.
func (p Principal) Authenticated() bool {
	return p.UserID != ""
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by WithPrincipal.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok && p.Authenticated()
}
