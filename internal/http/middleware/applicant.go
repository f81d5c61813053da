package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	// ApplicantHeader is set by the upstream gateway to the authenticated applicant.
	ApplicantHeader = "X-Applicant-ID"
	// ApplicantLocalKey stores the applicant id in Fiber's context locals.
	ApplicantLocalKey = "applicant_id"
)

// Applicant requires the X-Applicant-ID header and stores it in context locals.
// Requests without it are rejected with 401.
func Applicant() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(ApplicantHeader))
		if id == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "applicant is not identified")
		}
		c.Locals(ApplicantLocalKey, id)
		return c.Next()
	}
}

// ApplicantID returns the applicant stored by Applicant, or "".
func ApplicantID(c *fiber.Ctx) string {
	id, _ := c.Locals(ApplicantLocalKey).(string)
	return id
}
