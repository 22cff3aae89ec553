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

// Table describes how a record type maps onto a tenant-scoped table.
// Fields must return pointers in the same order as Columns; the slice is
// used both as query arguments and as Scan destinations. Defaults, when
// set, fills empty optional fields before every write.
type Table[T any] struct {
	Name          string
	Columns       []string
	KeyColumn     string
	SearchColumns []string
	Base          func(*T) *model.Base
	Fields        func(*T) []any
	Defaults      func(*T)
}

// Records is a PostgreSQL implementation of repository.RecordRepository.
// Every statement is filtered by the tenant id carried in the context.
type Records[T any] struct {
	db    *sql.DB
	table Table[T]
	now   func() time.Time

	selectList string
}

// NewRecords creates a tenant-scoped repository over table.
func NewRecords[T any](db *sql.DB, table Table[T]) *Records[T] {
	cols := append([]string{"id", "tenant_id"}, table.Columns...)
	cols = append(cols, "created_at", "created_by", "updated_at", "updated_by")
	return &Records[T]{
		db:         db,
		table:      table,
		now:        func() time.Time { return time.Now().UTC() },
		selectList: strings.Join(cols, ", "),
	}
}

func (r *Records[T]) targets(rec *T) []any {
	b := r.table.Base(rec)
	out := []any{&b.ID, &b.TenantID}
	out = append(out, r.table.Fields(rec)...)
	return append(out, &b.CreatedAt, &b.CreatedBy, &b.UpdatedAt, &b.UpdatedBy)
}

func (r *Records[T]) scanOne(row *sql.Row) (*T, error) {
	out := new(T)
	if err := row.Scan(r.targets(out)...); err != nil {
		return nil, err
	}
	return out, nil
}

// prepare stamps tenant and audit columns on rec before a write.
func (r *Records[T]) prepare(ctx context.Context, rec *T) (*model.Base, error) {
	tid, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	if r.table.Defaults != nil {
		r.table.Defaults(rec)
	}
	b := r.table.Base(rec)
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.TenantID = tid
	b.Stamp(tenant.ActorID(ctx), r.now())
	return b, nil
}

// Create inserts rec and returns the stored row.
func (r *Records[T]) Create(ctx context.Context, rec *T) (*T, error) {
	if _, err := r.prepare(ctx, rec); err != nil {
		return nil, err
	}
	args := r.targets(rec)
	q := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING %s`,
		r.table.Name, r.selectList, placeholders(1, len(args)), r.selectList)
	return r.scanOne(r.db.QueryRowContext(ctx, q, args...))
}

// Upsert inserts rec or, when a row with the same natural key exists in the
// tenant, overwrites its columns. The existing id and creation audit are kept.
func (r *Records[T]) Upsert(ctx context.Context, rec *T) (*T, error) {
	if _, err := r.prepare(ctx, rec); err != nil {
		return nil, err
	}
	args := r.targets(rec)
	sets := make([]string, 0, len(r.table.Columns)+2)
	for _, c := range r.table.Columns {
		if c == r.table.KeyColumn {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}
	sets = append(sets, "updated_at = EXCLUDED.updated_at", "updated_by = EXCLUDED.updated_by")
	q := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)
		ON CONFLICT (tenant_id, %s) DO UPDATE SET %s
		RETURNING %s`,
		r.table.Name, r.selectList, placeholders(1, len(args)),
		r.table.KeyColumn, strings.Join(sets, ", "), r.selectList)
	return r.scanOne(r.db.QueryRowContext(ctx, q, args...))
}

// FindByID returns sql.ErrNoRows when the record does not exist in the tenant.
func (r *Records[T]) FindByID(ctx context.Context, id string) (*T, error) {
	return r.findBy(ctx, "id", id)
}

// FindByKey looks a record up by its natural key.
func (r *Records[T]) FindByKey(ctx context.Context, key string) (*T, error) {
	return r.findBy(ctx, r.table.KeyColumn, key)
}

func (r *Records[T]) findBy(ctx context.Context, column, value string) (*T, error) {
	tid, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE tenant_id = $1 AND %s = $2`, r.selectList, r.table.Name, column)
	return r.scanOne(r.db.QueryRowContext(ctx, q, tid, value))
}

// List returns records of the tenant using LIMIT/OFFSET pagination and a
// total count. A non-empty pq.Search matches any search column with ILIKE.
func (r *Records[T]) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[T], error) {
	tid, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}

	where := "tenant_id = $1"
	args := []any{tid}
	if pq.Search != "" && len(r.table.SearchColumns) > 0 {
		likes := make([]string, len(r.table.SearchColumns))
		for i, c := range r.table.SearchColumns {
			likes[i] = c + " ILIKE $2"
		}
		where += " AND (" + strings.Join(likes, " OR ") + ")"
		args = append(args, "%"+escapeLike(pq.Search)+"%")
	}

	var total int
	qCount := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s`, r.table.Name, where)
	if err := r.db.QueryRowContext(ctx, qCount, args...).Scan(&total); err != nil {
		return nil, err
	}

	n := len(args)
	qList := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		r.selectList, r.table.Name, where, n+1, n+2)
	rows, err := r.db.QueryContext(ctx, qList, append(args, pq.Limit, pq.Offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		var rec T
		if err := rows.Scan(r.targets(&rec)...); err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[T]{Items: items, Total: total}, nil
}

// Update overwrites the columns of an existing record. It returns
// sql.ErrNoRows when the record does not exist in the tenant.
func (r *Records[T]) Update(ctx context.Context, rec *T) (*T, error) {
	b, err := r.prepare(ctx, rec)
	if err != nil {
		return nil, err
	}
	fields := r.table.Fields(rec)
	sets := make([]string, len(r.table.Columns))
	for i, c := range r.table.Columns {
		sets[i] = fmt.Sprintf("%s = $%d", c, i+3)
	}
	n := len(fields) + 2
	q := fmt.Sprintf(`UPDATE %s SET %s, updated_at = $%d, updated_by = $%d
		WHERE tenant_id = $1 AND id = $2
		RETURNING %s`,
		r.table.Name, strings.Join(sets, ", "), n+1, n+2, r.selectList)

	args := append([]any{b.TenantID, b.ID}, fields...)
	args = append(args, b.UpdatedAt, b.UpdatedBy)
	return r.scanOne(r.db.QueryRowContext(ctx, q, args...))
}

// Delete removes a record. It returns sql.ErrNoRows when nothing was deleted.
func (r *Records[T]) Delete(ctx context.Context, id string) error {
	tid, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(`DELETE FROM %s WHERE tenant_id = $1 AND id = $2`, r.table.Name)
	res, err := r.db.ExecContext(ctx, q, tid, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func placeholders(from, n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(ps, ", ")
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
