package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/http/middleware"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/service"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/validation"
)

// mountRecords registers the CRUD routes of one record type on g.
func mountRecords[T any](g fiber.Router, readPerm, writePerm string, svc service.RecordService[T]) {
	g.Get("/", middleware.RequirePermission(readPerm), ListRecords(svc))
	g.Get("/:id", middleware.RequirePermission(readPerm), GetRecord(svc))
	g.Post("/", middleware.RequirePermission(writePerm), CreateRecord(svc))
	g.Put("/:id", middleware.RequirePermission(writePerm), UpdateRecord(svc))
	g.Delete("/:id", middleware.RequirePermission(writePerm), DeleteRecord(svc))
}

func ListRecords[T any](svc service.RecordService[T]) fiber.Handler {
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

func GetRecord[T any](svc service.RecordService[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return respondError(c, err)
		}
		rec, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(rec)
	}
}

func CreateRecord[T any](svc service.RecordService[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rec := new(T)
		if err := validation.BindAndValidate(c, rec); err != nil {
			return respondError(c, err)
		}
		created, err := svc.Create(c.UserContext(), rec)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

func UpdateRecord[T any](svc service.RecordService[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return respondError(c, err)
		}
		rec := new(T)
		if err := validation.BindAndValidate(c, rec); err != nil {
			return respondError(c, err)
		}
		updated, err := svc.Update(c.UserContext(), id, rec)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(updated)
	}
}

func DeleteRecord[T any](svc service.RecordService[T]) fiber.Handler {
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
