// Package service implements the use cases behind the HTTP handlers.
// Services translate repository results into the sentinel errors below;
// the handler layer maps those onto HTTP statuses.
package service

import (
	"database/sql"
	"errors"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/repository"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("resource not found")
	ErrForbidden  = errors.New("forbidden")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrInvalidMFACode     = errors.New("invalid two-factor code")
	ErrTOTPAlreadyEnabled = errors.New("two-factor authentication is already enabled")
	ErrTOTPNotEnabled     = errors.New("two-factor authentication is not enabled")
	ErrTOTPNotSetUp       = errors.New("two-factor authentication has not been set up")

	ErrUnknownPermission = errors.New("unknown permission")
	ErrUnknownService    = errors.New("unknown wathq service")
	ErrUpstream          = errors.New("wathq is unavailable")
	ErrUnknownRecordType = errors.New("unknown record type")
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// ListResult is the service-level DTO for paginated listings.
type ListResult[T any] struct {
	Items []T `json:"data"`
	Total int `json:"total"`
}

// pageQuery clamps client supplied pagination.
func pageQuery(limit, offset int, search string) repository.PageQuery {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return repository.PageQuery{Limit: limit, Offset: offset, Search: search}
}

func listResult[T any](res *repository.PageResult[T]) *ListResult[T] {
	return &ListResult[T]{Items: res.Items, Total: res.Total}
}

// notFound maps sql.ErrNoRows onto ErrNotFound and passes anything else through.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
