package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/repository"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/tenant"
)

const callLogColumns = `id, tenant_id, user_id, service, method, endpoint, cache_key, cache_hit, source,
	request_params, status_code, response_body, error_message, duration_ms, created_at`

// CallLogPostgres is a PostgreSQL implementation of repository.CallLogRepository.
type CallLogPostgres struct {
	db *sql.DB
}

// NewCallLogPostgres creates a new CallLogPostgres repository.
func NewCallLogPostgres(db *sql.DB) *CallLogPostgres {
	return &CallLogPostgres{db: db}
}

var _ repository.CallLogRepository = (*CallLogPostgres)(nil)

func scanCallLog(s scanner) (*model.CallLog, error) {
	var l model.CallLog
	if err := s.Scan(
		&l.ID,
		&l.TenantID,
		&l.UserID,
		&l.Service,
		&l.Method,
		&l.Endpoint,
		&l.CacheKey,
		&l.CacheHit,
		&l.Source,
		payloadField(&l.RequestParams),
		&l.StatusCode,
		nullableJSON(&l.ResponseBody),
		&l.ErrorMessage,
		&l.DurationMS,
		&l.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *CallLogPostgres) Create(ctx context.Context, l *model.CallLog) (*model.CallLog, error) {
	tid, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.TenantID = tid
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	const q = `
		INSERT INTO wathq_call_logs (` + callLogColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + callLogColumns
	return scanCallLog(r.db.QueryRowContext(ctx, q,
		l.ID, l.TenantID, l.UserID, l.Service, l.Method, l.Endpoint, l.CacheKey, l.CacheHit, l.Source,
		payloadField(&l.RequestParams), l.StatusCode, nullableJSON(&l.ResponseBody), l.ErrorMessage,
		l.DurationMS, l.CreatedAt,
	))
}

func (r *CallLogPostgres) FindByID(ctx context.Context, id string) (*model.CallLog, error) {
	tid, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	const q = `SELECT ` + callLogColumns + ` FROM wathq_call_logs WHERE tenant_id = $1 AND id = $2`
	return scanCallLog(r.db.QueryRowContext(ctx, q, tid, id))
}

// List returns the newest logs first.
func (r *CallLogPostgres) List(ctx context.Context, f repository.CallLogFilter, pq repository.PageQuery) (*repository.PageResult[model.CallLog], error) {
	tid, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}

	conds := []string{"tenant_id = $1"}
	args := []any{tid}
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Service != "" {
		add("service = $%d", f.Service)
	}
	if f.CacheHit != nil {
		add("cache_hit = $%d", *f.CacheHit)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at < $%d", *f.To)
	}
	where := strings.Join(conds, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM wathq_call_logs WHERE `+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	n := len(args)
	qList := fmt.Sprintf(`SELECT %s FROM wathq_call_logs WHERE %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		callLogColumns, where, n+1, n+2)
	rows, err := r.db.QueryContext(ctx, qList, append(args, pq.Limit, pq.Offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.CallLog, 0)
	for rows.Next() {
		l, err := scanCallLog(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.CallLog]{Items: items, Total: total}, nil
}

// PurgeBefore is a maintenance operation across all tenants.
func (r *CallLogPostgres) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM wathq_call_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
