package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultCode(t *testing.T) {
	e := New(http.StatusBadRequest, "", "nope")
	assert.Equal(t, "BAD_REQUEST", e.Code)
	assert.Equal(t, "nope", e.Error())

	assert.Equal(t, "NOT_FOUND", NotFound("x").Code)
	assert.Equal(t, http.StatusForbidden, Forbidden("x").Status)
}

func TestFromPostgres(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "unique violation",
			err:        &pgconn.PgError{Code: "23505", TableName: "users"},
			wantStatus: http.StatusConflict,
			wantCode:   "USER_ALREADY_EXISTS",
		},
		{
			name:       "wrapped foreign key violation",
			err:        fmt.Errorf("insert contract: %w", &pgconn.PgError{Code: "23503", TableName: "contracts"}),
			wantStatus: http.StatusBadRequest,
			wantCode:   "CONTRACT_REFERENCE_NOT_FOUND",
		},
		{
			name:       "not null violation",
			err:        &pgconn.PgError{Code: "23502", TableName: "employees", ColumnName: "national_id"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "EMPLOYEE_REQUIRED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromPostgres(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantCode, got.Code)
		})
	}

	assert.Nil(t, FromPostgres(errors.New("plain")))
	assert.Nil(t, FromPostgres(&pgconn.PgError{Code: "40001"}))
}
