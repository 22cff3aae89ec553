package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/service"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/validation"
)

type setPermissionsRequest struct {
	Permissions []string `json:"permissions" validate:"required"`
}

// @Summary List users of the tenant
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size" default(10)
// @Param offset query int false "Offset" default(0)
// @Param q query string false "Search by email or name"
// @Success 200 {object} service.ListResult[model.User]
// @Router /api/v1/users [get]
func ListUsers(svc service.UserService) fiber.Handler {
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

func GetUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return respondError(c, err)
		}
		u, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(u)
	}
}

func CreateUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CreateUserInput
		if err := validation.BindAndValidate(c, &in); err != nil {
			return respondError(c, err)
		}
		u, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(u)
	}
}

func UpdateUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return respondError(c, err)
		}
		var in service.UpdateUserInput
		if err := validation.BindAndValidate(c, &in); err != nil {
			return respondError(c, err)
		}
		u, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(u)
	}
}

func DeleteUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return respondError(c, err)
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func ListRoles(svc service.RoleService) fiber.Handler {
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

func GetRole(svc service.RoleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return respondError(c, err)
		}
		r, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(r)
	}
}

func CreateRole(svc service.RoleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.RoleInput
		if err := validation.BindAndValidate(c, &in); err != nil {
			return respondError(c, err)
		}
		r, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(r)
	}
}

func UpdateRole(svc service.RoleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return respondError(c, err)
		}
		var in service.RoleInput
		if err := validation.BindAndValidate(c, &in); err != nil {
			return respondError(c, err)
		}
		r, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(r)
	}
}

func DeleteRole(svc service.RoleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return respondError(c, err)
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// SetRolePermissions replaces the permission set of a role.
//
// @Summary Replace role permissions
// @Tags roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Role ID"
// @Param body body setPermissionsRequest true "Permission codes"
// @Success 200 {object} model.Role
// @Failure 400 {object} errorPayload
// @Router /api/v1/roles/{id}/permissions [put]
func SetRolePermissions(svc service.RoleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return respondError(c, err)
		}
		var req setPermissionsRequest
		if err := validation.BindAndValidate(c, &req); err != nil {
			return respondError(c, err)
		}
		r, err := svc.SetPermissions(c.UserContext(), id, req.Permissions)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(r)
	}
}

// ListPermissions returns the permission catalogue.
func ListPermissions(svc service.RoleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"data": svc.Catalogue()})
	}
}
