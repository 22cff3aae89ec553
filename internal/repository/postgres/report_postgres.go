package postgres

import (
	"context"
	"database/sql"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/repository"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/tenant"
)

// ReportPostgres is a PostgreSQL implementation of repository.ReportRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type ReportPostgres struct {
	db *sql.DB
}

// NewReportPostgres creates a new ReportPostgres repository.
func NewReportPostgres(db *sql.DB) *ReportPostgres {
	return &ReportPostgres{db: db}
}

var _ repository.ReportRepository = (*ReportPostgres)(nil)

func scanReport(s scanner) (*model.Report, error) {
	var out model.Report
	if err := s.Scan(
		&out.ID,
		&out.TenantID,
		&out.RecordType,
		&out.RecordID,
		&out.Filename,
		&out.StoragePath,
		&out.Size,
		&out.ContentType,
		&out.CreatedAt,
		&out.CreatedBy,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create inserts a new report row and returns the stored record.
// The caller provides ID, StoragePath and CreatedAt.
func (r *ReportPostgres) Create(ctx context.Context, rep *model.Report) (*model.Report, error) {
	tid, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	rep.TenantID = tid
	const q = `
		INSERT INTO reports (id, tenant_id, record_type, record_id, filename, storage_path, size, content_type, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, tenant_id, record_type, record_id, filename, storage_path, size, content_type, created_at, created_by
	`
	return scanReport(r.db.QueryRowContext(ctx, q,
		rep.ID,
		rep.TenantID,
		rep.RecordType,
		rep.RecordID,
		rep.Filename,
		rep.StoragePath,
		rep.Size,
		rep.ContentType,
		rep.CreatedAt,
		rep.CreatedBy,
	))
}

// FindByID fetches a single report of the tenant by its ID.
func (r *ReportPostgres) FindByID(ctx context.Context, id string) (*model.Report, error) {
	tid, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	const q = `
		SELECT id, tenant_id, record_type, record_id, filename, storage_path, size, content_type, created_at, created_by
		FROM reports
		WHERE tenant_id = $1 AND id = $2
	`
	return scanReport(r.db.QueryRowContext(ctx, q, tid, id))
}

// List returns reports using LIMIT/OFFSET pagination and a total count.
func (r *ReportPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Report], error) {
	tid, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}

	// Count total rows
	const qCount = `SELECT COUNT(*) FROM reports WHERE tenant_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, tid).Scan(&total); err != nil {
		return nil, err
	}

	// Fetch page
	const qList = `
		SELECT id, tenant_id, record_type, record_id, filename, storage_path, size, content_type, created_at, created_by
		FROM reports
		WHERE tenant_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, tid, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Report, 0)
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rep)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Report]{
		Items: items,
		Total: total,
	}, nil
}

// Delete removes a report by ID. It returns sql.ErrNoRows when nothing was deleted.
func (r *ReportPostgres) Delete(ctx context.Context, id string) error {
	tid, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM reports WHERE tenant_id = $1 AND id = $2`, tid, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}
