package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"krushisetu/internal/http/middleware"
	"krushisetu/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Missing []string          `json:"missing,omitempty"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return writeEnvelope(c, status, errorEnvelope{Code: code, Message: message})
}

func writeEnvelope(c *fiber.Ctx, status int, env errorEnvelope) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: middleware.RequestIDFrom(c),
		Error:     env,
	})
}

// writeServiceError maps service errors onto the envelope. Unknown errors become a 500.
func writeServiceError(c *fiber.Ctx, err error) error {
	var verr *service.ValidationError
	var missing *service.MissingDocumentsError
	switch {
	case errors.As(err, &verr):
		return writeEnvelope(c, fiber.StatusBadRequest, errorEnvelope{
			Code:    "VALIDATION_ERROR",
			Message: verr.Error(),
			Fields:  verr.Fields,
		})
	case errors.As(err, &missing):
		return writeEnvelope(c, fiber.StatusBadRequest, errorEnvelope{
			Code:    "MISSING_DOCUMENTS",
			Message: "please upload the required documents: " + strings.Join(missing.Labels, ", "),
			Missing: missing.Types,
		})
	case errors.Is(err, service.ErrDuplicateType):
		return writeError(c, fiber.StatusConflict, "DUPLICATE_TYPE", "a document of this type is already uploaded")
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
	case errors.Is(err, service.ErrSubsidyNotFound):
		return writeError(c, fiber.StatusNotFound, "SUBSIDY_NOT_FOUND", "subsidy not found")
	case errors.Is(err, service.ErrProfileNotFound):
		return writeError(c, fiber.StatusNotFound, "PROFILE_NOT_FOUND", "profile not found")
	case errors.Is(err, service.ErrUnknownDocuments):
		return writeError(c, fiber.StatusBadRequest, "UNKNOWN_DOCUMENTS", "one or more documents do not exist")
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "id is required")
	case errors.Is(err, service.ErrApplicantRequired):
		return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "applicant is not identified")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "applicant is not identified")
		case fiber.StatusForbidden:
			return writeError(c, status, "CSRF_FAILED", "CSRF token missing or incorrect")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "FILE_TOO_LARGE", "file must be 5 MB or smaller")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
