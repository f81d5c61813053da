package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"krushisetu/docs"
	"krushisetu/internal/config"
	"krushisetu/internal/database"
	"krushisetu/internal/database/migration"
	handlers "krushisetu/internal/http/handler"
	"krushisetu/internal/http/middleware"
	"krushisetu/internal/logging"
	"krushisetu/internal/otel"
	"krushisetu/internal/repository/postgres"
	"krushisetu/internal/service"
	"krushisetu/internal/storage"
)

// @title KrushiSetu API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logging.New(os.Stdout, cfg.LogLevel, cfg.Location())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, otel.DefaultServiceName, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize tracing")
	}

	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}

	objStore, err := storage.NewMinIO(ctx, cfg.MinIO, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize object storage")
	}

	docRepo := postgres.NewDocumentPostgres(db)
	catalogSvc := service.NewCatalogService(postgres.NewSubsidyPostgres(db))
	services := handlers.Services{
		Documents:    service.NewDocumentService(objStore, docRepo, cfg.Upload.MaxDocumentBytes, log),
		Catalog:      catalogSvc,
		Profiles:     service.NewProfileService(postgres.NewProfilePostgres(db), docRepo),
		Applications: service.NewApplicationService(catalogSvc, docRepo, postgres.NewApplicationPostgres(db), log),
		LinkExpiry:   cfg.MinIO.PresignExpiry,
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.WithError(err).Fatal("failed to register metrics")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             cfg.Upload.BodyLimit,
		DisableStartupMessage: true,
	})

	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(metrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, db, services)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.WithError(err).Error("server shutdown failed")
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.WithError(err).Error("tracing shutdown failed")
		}
	}()

	addr := ":" + cfg.Port
	log.WithField("addr", addr).Info("server starting")
	if err := app.Listen(addr); err != nil {
		log.WithError(err).Fatal("failed to start server")
	}
}
