package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/service"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/validation"
)

type invalidateRequest struct {
	Service string            `json:"service" validate:"required"`
	Params  map[string]string `json:"params" validate:"required"`
}

// WathqLookup proxies one Wathq lookup through the tenant's cache. Query
// parameters are the service's lookup parameters.
//
// @Summary Wathq lookup
// @Description Answers from the cache, then Wathq, then stored records when Wathq is unavailable.
// @Tags wathq
// @Produce json
// @Security BearerAuth
// @Param service path string true "Service" Enums(commercial_registration, real_estate_deed, power_of_attorney, employee, national_address)
// @Success 200 {object} service.LookupResult
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /api/v1/wathq/{service} [get]
func WathqLookup(svc service.WathqService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Lookup(c.UserContext(), c.Params("service"), c.Queries())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	}
}

// InvalidateWathqCache drops one cached response.
func InvalidateWathqCache(svc service.WathqService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req invalidateRequest
		if err := validation.BindAndValidate(c, &req); err != nil {
			return respondError(c, err)
		}
		if err := svc.Invalidate(c.UserContext(), req.Service, req.Params); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// @Summary List Wathq call logs
// @Tags wathq
// @Produce json
// @Security BearerAuth
// @Param service query string false "Service"
// @Param cache_hit query bool false "Only cache hits or misses"
// @Param from query string false "From (RFC 3339 or YYYY-MM-DD)"
// @Param to query string false "To (RFC 3339 or YYYY-MM-DD)"
// @Param limit query int false "Page size" default(10)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} service.ListResult[model.CallLog]
// @Router /api/v1/call-logs [get]
func ListCallLogs(svc service.CallLogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pagination(c)
		if err != nil {
			return respondError(c, err)
		}
		cacheHit, err := queryBool(c, "cache_hit")
		if err != nil {
			return respondError(c, err)
		}
		from, err := queryTime(c, "from")
		if err != nil {
			return respondError(c, err)
		}
		to, err := queryTime(c, "to")
		if err != nil {
			return respondError(c, err)
		}

		res, err := svc.List(c.UserContext(), service.CallLogQuery{
			Service:  c.Query("service"),
			CacheHit: cacheHit,
			From:     from,
			To:       to,
			Limit:    limit,
			Offset:   offset,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	}
}

func GetCallLog(svc service.CallLogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathID(c)
		if err != nil {
			return respondError(c, err)
		}
		l, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(l)
	}
}
