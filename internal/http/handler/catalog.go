package handler

import (
	"github.com/gofiber/fiber/v2"

	"krushisetu/internal/http/middleware"
	"krushisetu/internal/service"
)

// GetProfile returns the applicant's prefill data with their documents.
//
//	@Summary	Get profile prefill
//	@Tags		profile
//	@Produce	json
//	@Param		X-Applicant-ID	header		string	true	"Applicant"
//	@Success	200				{object}	model.Profile
//	@Failure	404				{object}	errorPayload
//	@Router		/profile/ [get]
func GetProfile(svc service.ProfileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := svc.Get(c.UserContext(), middleware.ApplicantID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(p)
	}
}

// ListSubsidies lists the subsidy catalog.
//
//	@Summary	List subsidies
//	@Tags		subsidies
//	@Produce	json
//	@Param		limit	query		int	false	"Page size"
//	@Param		offset	query		int	false	"Offset"
//	@Success	200		{object}	service.SubsidyListResult
//	@Router		/subsidies/ [get]
func ListSubsidies(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok := parsePage(c)
		if !ok {
			return nil
		}
		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetSubsidy returns one subsidy with its raw documents_required list.
//
//	@Summary	Get subsidy
//	@Tags		subsidies
//	@Produce	json
//	@Param		id	path		string	true	"Subsidy ID"
//	@Success	200	{object}	model.Subsidy
//	@Failure	404	{object}	errorPayload
//	@Router		/subsidies/{id}/ [get]
func GetSubsidy(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sub, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(sub)
	}
}

// SubsidyRequirements returns the resolved required documents of a subsidy.
//
//	@Summary	Get required documents
//	@Tags		subsidies
//	@Produce	json
//	@Param		id	path		string	true	"Subsidy ID"
//	@Success	200	{object}	map[string]any
//	@Failure	404	{object}	errorPayload
//	@Router		/subsidies/{id}/requirements/ [get]
func SubsidyRequirements(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		set, err := svc.Requirements(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": set})
	}
}
