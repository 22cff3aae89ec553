package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/auth"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/errs"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/http/middleware"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/service"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/tenant"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/wathq"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  []errs.FieldError `json:"fields,omitempty"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return writeHTTPError(c, errs.New(status, code, message))
}

func writeHTTPError(c *fiber.Ctx, e *errs.HTTPError) error {
	res := errorPayload{
		RequestID: middleware.RequestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    e.Code,
			Message: e.Message,
			Fields:  e.Fields,
		},
	}
	return c.Status(e.Status).JSON(res)
}

// sentinels maps service and package errors onto client errors.
var sentinels = []struct {
	err  error
	http *errs.HTTPError
}{
	{service.ErrNotFound, errs.NotFound("resource not found")},
	{service.ErrIDRequired, errs.BadRequest("INVALID_ID", "id is required")},
	{service.ErrForbidden, errs.Forbidden("forbidden")},
	{service.ErrInvalidCredentials, errs.New(fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials")},
	{service.ErrAccountInactive, errs.New(fiber.StatusUnauthorized, "ACCOUNT_INACTIVE", "account is inactive")},
	{service.ErrInvalidMFACode, errs.New(fiber.StatusUnauthorized, "INVALID_MFA_CODE", "invalid two-factor code")},
	{service.ErrTOTPAlreadyEnabled, errs.Conflict("TOTP_ALREADY_ENABLED", "two-factor authentication is already enabled")},
	{service.ErrTOTPNotEnabled, errs.BadRequest("TOTP_NOT_ENABLED", "two-factor authentication is not enabled")},
	{service.ErrTOTPNotSetUp, errs.BadRequest("TOTP_NOT_SET_UP", "two-factor authentication has not been set up")},
	{service.ErrUnknownPermission, errs.BadRequest("UNKNOWN_PERMISSION", "unknown permission code")},
	{service.ErrUnknownService, errs.NotFound("unknown wathq service")},
	{service.ErrUnknownRecordType, errs.BadRequest("UNKNOWN_RECORD_TYPE", "unknown record type")},
	{service.ErrUpstream, errs.New(fiber.StatusBadGateway, "WATHQ_UNAVAILABLE", "wathq is unavailable and no offline copy exists")},
	{auth.ErrInvalidToken, errs.Unauthorized("invalid or expired token")},
	{auth.ErrWeakPassword, errs.BadRequest("WEAK_PASSWORD", auth.ErrWeakPassword.Error())},
	{tenant.ErrNoTenant, errs.Forbidden("tenant context required")},
}

// toHTTPError resolves err into the response to send. The bool reports
// whether err was unexpected and should be logged.
func toHTTPError(err error) (*errs.HTTPError, bool) {
	var herr *errs.HTTPError
	if errors.As(err, &herr) {
		return herr, false
	}
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return errs.New(ferr.Code, "", ferr.Message), false
	}
	var perr *wathq.ParamError
	if errors.As(err, &perr) {
		fields := make([]errs.FieldError, 0, len(perr.Missing)+len(perr.Invalid))
		for _, p := range perr.Missing {
			fields = append(fields, errs.FieldError{Field: p, Error: "is required"})
		}
		for _, p := range perr.Invalid {
			fields = append(fields, errs.FieldError{Field: p, Error: "is invalid"})
		}
		return errs.Validation(fields), false
	}
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return s.http, false
		}
	}
	if pg := errs.FromPostgres(err); pg != nil {
		return pg, false
	}
	return errs.Internal(), true
}

// respondError is used by handlers for every error they return to the client.
func respondError(c *fiber.Ctx, err error) error {
	herr, unexpected := toHTTPError(err)
	if unexpected {
		zerolog.Ctx(c.UserContext()).Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("request failed")
	}
	return writeHTTPError(c, herr)
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return respondError(c, err)
	}
}
