package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/service"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/validation"
)

// @Summary List tenants
// @Tags management
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size" default(10)
// @Param offset query int false "Offset" default(0)
// @Param q query string false "Search by name or slug"
// @Success 200 {object} service.ListResult[model.Tenant]
// @Router /api/v1/management/tenants [get]
func ListTenants(svc service.TenantService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pagination(c)
		if err != nil {
			return respondError(c, err)
		}
		res, err := svc.List(c.UserContext(), limit, offset, c.Query("q"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	}
}

func GetTenant(svc service.TenantService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return respondError(c, err)
		}
		t, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(t)
	}
}

// CreateTenant provisions a tenant, optionally with its first admin user.
//
// @Summary Create tenant
// @Tags management
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.CreateTenantInput true "Tenant"
// @Success 201 {object} service.TenantProvisioning
// @Failure 409 {object} errorPayload
// @Router /api/v1/management/tenants [post]
func CreateTenant(svc service.TenantService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CreateTenantInput
		if err := validation.BindAndValidate(c, &in); err != nil {
			return respondError(c, err)
		}
		res, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

func UpdateTenant(svc service.TenantService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return respondError(c, err)
		}
		var in service.UpdateTenantInput
		if err := validation.BindAndValidate(c, &in); err != nil {
			return respondError(c, err)
		}
		t, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(t)
	}
}

func DeactivateTenant(svc service.TenantService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return respondError(c, err)
		}
		t, err := svc.Deactivate(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(t)
	}
}
