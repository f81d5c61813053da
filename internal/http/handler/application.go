package handler

import (
	"github.com/gofiber/fiber/v2"

	"krushisetu/internal/http/middleware"
	"krushisetu/internal/service"
)

// SubmitApplication accepts {subsidy_id, form, document_ids}.
//
//	@Summary	Submit application
//	@Tags		applications
//	@Accept		json
//	@Produce	json
//	@Param		X-Applicant-ID	header		string				true	"Applicant"
//	@Param		body			body		service.SubmitInput	true	"Application"
//	@Success	201				{object}	model.Application
//	@Failure	400				{object}	errorPayload
//	@Failure	404				{object}	errorPayload
//	@Router		/apply/ [post]
func SubmitApplication(svc service.ApplicationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.SubmitInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		}
		app, err := svc.Submit(c.UserContext(), middleware.ApplicantID(c), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(app)
	}
}

// ListApplications lists the applicant's submitted applications.
//
//	@Summary	List applications
//	@Tags		applications
//	@Produce	json
//	@Param		X-Applicant-ID	header		string	true	"Applicant"
//	@Success	200				{object}	map[string]any
//	@Router		/applications/ [get]
func ListApplications(svc service.ApplicationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		apps, err := svc.List(c.UserContext(), middleware.ApplicantID(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"data": apps, "total": len(apps)})
	}
}
