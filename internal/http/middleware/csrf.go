package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

const (
	CSRFCookieName = "csrftoken"
	CSRFHeader     = "X-CSRFToken"
)

// CSRF enforces the double-submit pattern: when a state-changing request carries the
// csrftoken cookie, the X-CSRFToken header must repeat it. Safe methods pass through.
func CSRF() fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}
		cookie := c.Cookies(CSRFCookieName)
		if cookie == "" {
			return c.Next()
		}
		if subtle.ConstantTimeCompare([]byte(cookie), []byte(c.Get(CSRFHeader))) != 1 {
			return fiber.NewError(fiber.StatusForbidden, "CSRF token missing or incorrect")
		}
		return c.Next()
	}
}
