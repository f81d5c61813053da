package handler

import (
	"mime/multipart"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"krushisetu/internal/http/middleware"
	"krushisetu/internal/service"
)

// parsePage reads limit and offset. ok is false once an error response is written.
func parsePage(c *fiber.Ctx) (limit, offset int, ok bool) {
	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(service.MaxListLimit)))
	if err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		return 0, 0, false
	}
	offset, err = strconv.Atoi(c.Query("offset", "0"))
	if err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		return 0, 0, false
	}
	return limit, offset, true
}

// documentID validates the :id path parameter. ok is false once an error response is written.
func documentID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		return "", false
	}
	return id, true
}

// documentForm reads type, number and the optional file part of a multipart document request.
// The returned file, when not nil, must be closed once the service is done with it.
func documentForm(c *fiber.Ctx) (service.DocumentInput, multipart.File, error) {
	in := service.DocumentInput{
		Type:   c.FormValue("type"),
		Number: c.FormValue("number"),
	}
	fh, err := c.FormFile("file")
	if err != nil {
		// no file part; the service decides whether one is required
		return in, nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return in, nil, err
	}
	in.Filename = fh.Filename
	in.ContentType = contentType(fh)
	in.Size = fh.Size
	in.Reader = f
	return in, f, nil
}

func contentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// ListDocuments lists the applicant's documents.
//
//	@Summary	List documents
//	@Tags		documents
//	@Produce	json
//	@Param		X-Applicant-ID	header		string	true	"Applicant"
//	@Param		limit			query		int		false	"Page size"
//	@Param		offset			query		int		false	"Offset"
//	@Success	200				{object}	service.DocumentListResult
//	@Failure	400				{object}	errorPayload
//	@Router		/documents/ [get]
func ListDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, ok := parsePage(c)
		if !ok {
			return nil
		}

		res, err := svc.List(c.UserContext(), middleware.ApplicantID(c), limit, offset)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// UploadDocument stores a new document (multipart/form-data: file, type, number).
//
//	@Summary	Upload document
//	@Tags		documents
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		X-Applicant-ID	header		string	true	"Applicant"
//	@Param		type			formData	string	true	"Document type"
//	@Param		number			formData	string	true	"Document number"
//	@Param		file			formData	file	true	"Document file"
//	@Success	201				{object}	model.Document
//	@Failure	400				{object}	errorPayload
//	@Failure	409				{object}	errorPayload
//	@Failure	413				{object}	errorPayload
//	@Router		/documents/ [post]
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in, f, err := documentForm(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		if f != nil {
			defer f.Close()
		}

		doc, err := svc.Upload(c.UserContext(), middleware.ApplicantID(c), in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// UpdateDocument changes type and number and optionally replaces the file.
//
//	@Summary	Update document
//	@Tags		documents
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		X-Applicant-ID	header		string	true	"Applicant"
//	@Param		id				path		string	true	"Document ID"
//	@Param		type			formData	string	true	"Document type"
//	@Param		number			formData	string	true	"Document number"
//	@Param		file			formData	file	false	"Replacement file"
//	@Success	200				{object}	model.Document
//	@Failure	400				{object}	errorPayload
//	@Failure	404				{object}	errorPayload
//	@Router		/documents/{id}/ [put]
func UpdateDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return nil
		}
		in, f, err := documentForm(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		if f != nil {
			defer f.Close()
		}

		doc, err := svc.Update(c.UserContext(), middleware.ApplicantID(c), id, in)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// GetDocument returns one document's metadata.
//
//	@Summary	Get document
//	@Tags		documents
//	@Produce	json
//	@Param		X-Applicant-ID	header		string	true	"Applicant"
//	@Param		id				path		string	true	"Document ID"
//	@Success	200				{object}	model.Document
//	@Failure	404				{object}	errorPayload
//	@Router		/documents/{id}/ [get]
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return nil
		}
		doc, err := svc.Get(c.UserContext(), middleware.ApplicantID(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DeleteDocument removes a document and its file.
//
//	@Summary	Delete document
//	@Tags		documents
//	@Param		X-Applicant-ID	header	string	true	"Applicant"
//	@Param		id				path	string	true	"Document ID"
//	@Success	204
//	@Failure	404	{object}	errorPayload
//	@Router		/documents/{id}/ [delete]
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return nil
		}
		if err := svc.Delete(c.UserContext(), middleware.ApplicantID(c), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DocumentFile streams the stored file.
//
//	@Summary	Download document file
//	@Tags		documents
//	@Produce	octet-stream
//	@Param		X-Applicant-ID	header	string	true	"Applicant"
//	@Param		id				path	string	true	"Document ID"
//	@Success	200
//	@Failure	404	{object}	errorPayload
//	@Router		/documents/{id}/file/ [get]
func DocumentFile(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return nil
		}
		rc, doc, err := svc.Open(c.UserContext(), middleware.ApplicantID(c), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Attachment(doc.Filename)
		if doc.ContentType != "" {
			c.Set(fiber.HeaderContentType, doc.ContentType)
		}
		// fasthttp closes rc once the body is written
		return c.SendStream(rc, int(doc.Size))
	}
}

// DocumentLink returns a pre-signed download URL valid for expiry.
//
//	@Summary	Get document download link
//	@Tags		documents
//	@Produce	json
//	@Param		X-Applicant-ID	header		string	true	"Applicant"
//	@Param		id				path		string	true	"Document ID"
//	@Success	200				{object}	map[string]any
//	@Failure	404				{object}	errorPayload
//	@Router		/documents/{id}/link/ [get]
func DocumentLink(svc service.DocumentService, expiry time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return nil
		}
		u, err := svc.Link(c.UserContext(), middleware.ApplicantID(c), id, expiry)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{
			"url":        u,
			"expires_in": int(expiry.Seconds()),
		})
	}
}
