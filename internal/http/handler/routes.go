package handler

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"krushisetu/internal/http/middleware"
	"krushisetu/internal/service"
)

// Services bundles what the routes need.
type Services struct {
	Documents    service.DocumentService
	Catalog      service.CatalogService
	Profiles     service.ProfileService
	Applications service.ApplicationService
	// LinkExpiry is the lifetime of pre-signed download links.
	LinkExpiry time.Duration
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers behind the applicant guard see the caller in middleware.ApplicantID.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc Services) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	// catalog is public
	app.Get("/subsidies/", ListSubsidies(svc.Catalog))
	app.Get("/subsidies/:id/", GetSubsidy(svc.Catalog))
	app.Get("/subsidies/:id/requirements/", SubsidyRequirements(svc.Catalog))

	guard := []fiber.Handler{middleware.Applicant(), middleware.CSRF()}

	docs := app.Group("/documents", guard...)
	docs.Get("/", ListDocuments(svc.Documents))
	docs.Post("/", UploadDocument(svc.Documents))
	docs.Get("/:id/", GetDocument(svc.Documents))
	docs.Put("/:id/", UpdateDocument(svc.Documents))
	docs.Delete("/:id/", DeleteDocument(svc.Documents))
	docs.Get("/:id/file/", DocumentFile(svc.Documents))
	docs.Get("/:id/link/", DocumentLink(svc.Documents, svc.LinkExpiry))

	profile := GetProfile(svc.Profiles)
	for _, p := range []string{"/profile/", "/farmer/profile/", "/users/me/"} {
		app.Get(p, append(guard, profile)...)
	}

	app.Post("/apply/", append(guard, SubmitApplication(svc.Applications))...)
	app.Get("/applications/", append(guard, ListApplications(svc.Applications))...)
}
