package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/repository"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/tenant"
)

// CachePostgres is a PostgreSQL implementation of repository.CacheRepository.
type CachePostgres struct {
	db *sql.DB
}

// NewCachePostgres creates a new CachePostgres repository.
func NewCachePostgres(db *sql.DB) *CachePostgres {
	return &CachePostgres{db: db}
}

var _ repository.CacheRepository = (*CachePostgres)(nil)

// Get returns sql.ErrNoRows for missing and expired entries alike.
func (r *CachePostgres) Get(ctx context.Context, key string, now time.Time) (*model.CacheEntry, error) {
	tid, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	const q = `
		SELECT id, tenant_id, service, cache_key, status_code, body, expires_at, created_at
		FROM wathq_cache
		WHERE tenant_id = $1 AND cache_key = $2 AND expires_at > $3
	`
	var e model.CacheEntry
	if err := r.db.QueryRowContext(ctx, q, tid, key, now).Scan(
		&e.ID,
		&e.TenantID,
		&e.Service,
		&e.CacheKey,
		&e.StatusCode,
		payloadField(&e.Body),
		&e.ExpiresAt,
		&e.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &e, nil
}

// Put stores e, replacing any previous entry with the same key.
func (r *CachePostgres) Put(ctx context.Context, e *model.CacheEntry) error {
	tid, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.TenantID = tid
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	const q = `
		INSERT INTO wathq_cache (id, tenant_id, service, cache_key, status_code, body, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (tenant_id, cache_key) DO UPDATE
		SET status_code = EXCLUDED.status_code,
			body = EXCLUDED.body,
			expires_at = EXCLUDED.expires_at,
			created_at = EXCLUDED.created_at
	`
	_, err = r.db.ExecContext(ctx, q,
		e.ID, e.TenantID, e.Service, e.CacheKey, e.StatusCode, payloadField(&e.Body), e.ExpiresAt, e.CreatedAt,
	)
	return err
}

// Delete removes the entry for key. Missing entries are not an error.
func (r *CachePostgres) Delete(ctx context.Context, key string) error {
	tid, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM wathq_cache WHERE tenant_id = $1 AND cache_key = $2`, tid, key)
	return err
}

// PurgeExpired is a maintenance operation across all tenants.
func (r *CachePostgres) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM wathq_cache WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
