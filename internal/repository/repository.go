// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres) inside this directory.
// Repositories hold no business logic; tenant-scoped implementations take the
// tenant id from the request context and never from their arguments.
package repository

import (
	"context"
	"time"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
)

// Transactor runs fn in one database transaction. Repository calls made
// with the ctx passed to fn join that transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PageQuery holds limit/offset pagination parameters and an optional
// free-text search term.
type PageQuery struct {
	Limit  int
	Offset int
	Search string
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}

// RecordRepository is the tenant-scoped CRUD shared by every Wathq-mirrored
// record table.
type RecordRepository[T any] interface {
	Create(ctx context.Context, rec *T) (*T, error)
	FindByID(ctx context.Context, id string) (*T, error)
	// FindByKey looks a record up by its natural key (CR national number,
	// deed number, ...).
	FindByKey(ctx context.Context, key string) (*T, error)
	List(ctx context.Context, pq PageQuery) (*PageResult[T], error)
	Update(ctx context.Context, rec *T) (*T, error)
	Delete(ctx context.Context, id string) error
	// Upsert inserts or updates on the natural key.
	Upsert(ctx context.Context, rec *T) (*T, error)
}

// TenantRepository is not tenant-scoped; only management code reaches it.
type TenantRepository interface {
	Create(ctx context.Context, t *model.Tenant) (*model.Tenant, error)
	FindByID(ctx context.Context, id string) (*model.Tenant, error)
	FindBySlug(ctx context.Context, slug string) (*model.Tenant, error)
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Tenant], error)
	Update(ctx context.Context, t *model.Tenant) (*model.Tenant, error)
}

// UserRepository manages tenant users.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context, pq PageQuery) (*PageResult[model.User], error)
	Update(ctx context.Context, u *model.User) (*model.User, error)
	Delete(ctx context.Context, id string) error

	// FindForLogin is the one unscoped lookup: the tenant is not known until
	// the user has authenticated.
	FindForLogin(ctx context.Context, tenantSlug, email string) (*model.User, error)
	// FindByIDUnscoped loads a user for token refresh and MFA verification.
	FindByIDUnscoped(ctx context.Context, tenantID, id string) (*model.User, error)
	UpdatePassword(ctx context.Context, tenantID, id, hash string) error
	UpdateTOTP(ctx context.Context, tenantID, id, secret string, enabled bool) error
	TouchLogin(ctx context.Context, tenantID, id string, at time.Time) error
}

// ManagementUserRepository manages cross-tenant administrators.
type ManagementUserRepository interface {
	Create(ctx context.Context, u *model.ManagementUser) (*model.ManagementUser, error)
	FindByID(ctx context.Context, id string) (*model.ManagementUser, error)
	FindByEmail(ctx context.Context, email string) (*model.ManagementUser, error)
	UpdatePassword(ctx context.Context, id, hash string) error
	UpdateTOTP(ctx context.Context, id, secret string, enabled bool) error
	TouchLogin(ctx context.Context, id string, at time.Time) error
}

// RoleRepository manages tenant roles and their permission sets.
type RoleRepository interface {
	Create(ctx context.Context, r *model.Role) (*model.Role, error)
	FindByID(ctx context.Context, id string) (*model.Role, error)
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Role], error)
	Update(ctx context.Context, r *model.Role) (*model.Role, error)
	Delete(ctx context.Context, id string) error
	// SetPermissions replaces the permission set of a role atomically.
	SetPermissions(ctx context.Context, roleID string, codes []string) error
	// PermissionsFor returns the role name and permission codes of roleID in tenantID.
	PermissionsFor(ctx context.Context, tenantID, roleID string) (string, []string, error)
}

// CacheRepository stores cached Wathq responses.
type CacheRepository interface {
	// Get returns the entry for key when it has not expired at now.
	Get(ctx context.Context, key string, now time.Time) (*model.CacheEntry, error)
	Put(ctx context.Context, e *model.CacheEntry) error
	Delete(ctx context.Context, key string) error
	// PurgeExpired removes expired entries of every tenant.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// CallLogFilter narrows a call log listing.
type CallLogFilter struct {
	Service  string
	CacheHit *bool
	From     *time.Time
	To       *time.Time
}

// CallLogRepository stores the audit trail of Wathq lookups.
type CallLogRepository interface {
	Create(ctx context.Context, l *model.CallLog) (*model.CallLog, error)
	FindByID(ctx context.Context, id string) (*model.CallLog, error)
	List(ctx context.Context, f CallLogFilter, pq PageQuery) (*PageResult[model.CallLog], error)
	// PurgeBefore removes logs of every tenant created before cutoff.
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// NotificationRepository stores in-app notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) (*model.Notification, error)
	ListForUser(ctx context.Context, userID string, unreadOnly bool, pq PageQuery) (*PageResult[model.Notification], error)
	MarkRead(ctx context.Context, userID, id string, at time.Time) error
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
}

// ReportRepository stores metadata of generated PDF reports.
type ReportRepository interface {
	Create(ctx context.Context, r *model.Report) (*model.Report, error)
	FindByID(ctx context.Context, id string) (*model.Report, error)
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Report], error)
	Delete(ctx context.Context, id string) error
}
