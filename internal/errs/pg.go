package errs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the API translates into client errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
	pgInvalidTextRep      = "22P02"
)

// FromPostgres translates constraint violations into client errors.
// It returns nil when err is not a PostgreSQL error worth exposing.
func FromPostgres(err error) *HTTPError {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}

	entity := entityName(pgErr.TableName)
	switch pgErr.Code {
	case pgUniqueViolation:
		return Conflict(domainCode(pgErr.TableName, "ALREADY_EXISTS"),
			fmt.Sprintf("a %s with this identifier already exists", entity))
	case pgForeignKeyViolation:
		return BadRequest(domainCode(pgErr.TableName, "REFERENCE_NOT_FOUND"),
			fmt.Sprintf("a record referenced by this %s does not exist", entity))
	case pgNotNullViolation:
		e := BadRequest(domainCode(pgErr.TableName, "REQUIRED"), fmt.Sprintf("%s is required", pgErr.ColumnName))
		e.Fields = []FieldError{{Field: pgErr.ColumnName, Error: "is required"}}
		return e
	case pgCheckViolation:
		return BadRequest(domainCode(pgErr.TableName, "INVALID"),
			fmt.Sprintf("one or more %s values do not meet required conditions", entity))
	case pgInvalidTextRep:
		return BadRequest("INVALID_INPUT", "malformed identifier or value")
	}
	return nil
}

// "real_estate_deeds" -> "real estate deed"
func entityName(table string) string {
	if table == "" {
		return "record"
	}
	return strings.ReplaceAll(strings.TrimSuffix(table, "s"), "_", " ")
}

// ("users", "ALREADY_EXISTS") -> "USER_ALREADY_EXISTS"
func domainCode(table, action string) string {
	if table == "" {
		return "RECORD_" + action
	}
	return strings.ToUpper(strings.TrimSuffix(table, "s")) + "_" + action
}
