package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/http/middleware"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/service"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/validation"
)

type loginRequest struct {
	Tenant   string `json:"tenant" validate:"required,max=63"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=128"`
}

type managementLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,max=128"`
}

type verifyMFARequest struct {
	MFAToken string `json:"mfa_token" validate:"required"`
	Code     string `json:"code" validate:"required,numeric,len=6"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

type totpCodeRequest struct {
	Code string `json:"code" validate:"required,numeric,len=6"`
}

// Login authenticates a tenant user.
//
// @Summary Tenant user login
// @Description Returns a token pair, or an MFA token when two-factor authentication is enabled.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body loginRequest true "Credentials"
// @Success 200 {object} service.LoginResult
// @Failure 401 {object} errorPayload
// @Failure 429 {object} errorPayload
// @Router /api/v1/auth/login [post]
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := validation.BindAndValidate(c, &req); err != nil {
			return respondError(c, err)
		}
		res, err := svc.Login(c.UserContext(), req.Tenant, req.Email, req.Password)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	}
}

// ManagementLogin authenticates a management user.
//
// @Summary Management login
// @Tags management
// @Accept json
// @Produce json
// @Param body body managementLoginRequest true "Credentials"
// @Success 200 {object} service.LoginResult
// @Failure 401 {object} errorPayload
// @Router /api/v1/management/login [post]
func ManagementLogin(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req managementLoginRequest
		if err := validation.BindAndValidate(c, &req); err != nil {
			return respondError(c, err)
		}
		res, err := svc.ManagementLogin(c.UserContext(), req.Email, req.Password)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	}
}

// VerifyMFA completes a two-factor login.
//
// @Summary Complete two-factor login
// @Tags auth
// @Accept json
// @Produce json
// @Param body body verifyMFARequest true "MFA token and TOTP code"
// @Success 200 {object} service.TokenPair
// @Failure 401 {object} errorPayload
// @Router /api/v1/auth/login/verify [post]
func VerifyMFA(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req verifyMFARequest
		if err := validation.BindAndValidate(c, &req); err != nil {
			return respondError(c, err)
		}
		tokens, err := svc.VerifyMFA(c.UserContext(), req.MFAToken, req.Code)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(tokens)
	}
}

// @Summary Rotate refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body refreshRequest true "Refresh token"
// @Success 200 {object} service.TokenPair
// @Failure 401 {object} errorPayload
// @Router /api/v1/auth/refresh [post]
func Refresh(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req refreshRequest
		if err := validation.BindAndValidate(c, &req); err != nil {
			return respondError(c, err)
		}
		tokens, err := svc.Refresh(c.UserContext(), req.RefreshToken)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(tokens)
	}
}

// Logout revokes the caller's access token and, when sent, its refresh token.
func Logout(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req logoutRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON")
			}
		}
		if err := svc.Logout(c.UserContext(), middleware.ClaimsFromCtx(c), req.RefreshToken); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// @Summary Current principal
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Profile
// @Router /api/v1/auth/me [get]
func Me(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := svc.Me(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(p)
	}
}

func ChangePassword(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req changePasswordRequest
		if err := validation.BindAndValidate(c, &req); err != nil {
			return respondError(c, err)
		}
		if err := svc.ChangePassword(c.UserContext(), req.CurrentPassword, req.NewPassword); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SetupTOTP starts enrolment; the secret is active only after EnableTOTP.
//
// @Summary Start two-factor enrolment
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} auth.TOTPEnrollment
// @Failure 409 {object} errorPayload
// @Router /api/v1/auth/totp/setup [post]
func SetupTOTP(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		enr, err := svc.SetupTOTP(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(enr)
	}
}

func EnableTOTP(svc service.AuthService) fiber.Handler {
	return totpCode(svc.EnableTOTP)
}

func DisableTOTP(svc service.AuthService) fiber.Handler {
	return totpCode(svc.DisableTOTP)
}

func totpCode(apply func(ctx context.Context, code string) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req totpCodeRequest
		if err := validation.BindAndValidate(c, &req); err != nil {
			return respondError(c, err)
		}
		if err := apply(c.UserContext(), req.Code); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
