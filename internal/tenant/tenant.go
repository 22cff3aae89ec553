// Package tenant carries the resolved tenant and the acting principal
// through context.Context so repositories can scope every query.
package tenant

import (
	"context"
	"errors"
	"slices"
)

// ErrNoTenant is returned when a tenant-scoped operation runs without a tenant in its context.
var ErrNoTenant = errors.New("tenant not resolved")

// ActorKind distinguishes tenant users from cross-tenant management users.
type ActorKind string

const (
	KindUser       ActorKind = "user"
	KindManagement ActorKind = "management"
)

// Actor is the authenticated principal of a request.
type Actor struct {
	UserID      string
	TenantID    string
	Kind        ActorKind
	Role        string
	Permissions []string
	SuperAdmin  bool
}

// IsManagement reports whether the actor is a management user.
func (a Actor) IsManagement() bool { return a.Kind == KindManagement }

// Can reports whether the actor holds the permission code.
// Management super admins hold every permission.
func (a Actor) Can(permission string) bool {
	if a.IsManagement() && a.SuperAdmin {
		return true
	}
	return slices.Contains(a.Permissions, permission)
}

type tenantKey struct{}
type actorKey struct{}

// WithTenant returns a copy of ctx scoped to the tenant.
func WithTenant(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, tenantKey{}, tenantID)
}

// FromContext returns the tenant id stored in ctx.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(tenantKey{}).(string)
	return id, ok && id != ""
}

// Require returns the tenant id stored in ctx or ErrNoTenant.
func Require(ctx context.Context) (string, error) {
	id, ok := FromContext(ctx)
	if !ok {
		return "", ErrNoTenant
	}
	return id, nil
}

// WithActor stores the authenticated principal in ctx.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext returns the principal stored in ctx.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}

// ActorID returns the acting user id for audit columns, or "system" when
// the call did not originate from an authenticated request.
func ActorID(ctx context.Context) string {
	if a, ok := ActorFromContext(ctx); ok && a.UserID != "" {
		return a.UserID
	}
	return "system"
}
