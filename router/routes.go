package router

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	handler "github.com/spad0x/smartcloset-server/handlers"
	"github.com/spad0x/smartcloset-server/logging"
	"github.com/spad0x/smartcloset-server/metrics"
	"github.com/spad0x/smartcloset-server/middleware"
	"github.com/spad0x/smartcloset-server/storage"
)

type Options struct {
	Clothes *handler.ClothesHandler
	Metrics *metrics.Metrics

	// UploadDir is served under storage.URLPath when set.
	UploadDir string
	// ExposeMetrics mounts the Prometheus endpoint at /metrics.
	ExposeMetrics bool
	BodyLimit     int
	// AccessLog writes one structured log entry per request.
	AccessLog bool
}

// New builds the Fiber app with every route mounted.
func New(opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "smartcloset",
		BodyLimit:             opts.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(logging.For("router")),
	})

	SetupRoutes(app, opts)
	return app
}

func SetupRoutes(app *fiber.App, opts Options) {
	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(middleware.AccessLog(logging.For("http")))
	}
	app.Use(middleware.Metrics(opts.Metrics))

	app.Get("/", handler.Home)

	app.Post("/clothes", opts.Clothes.Create)
	app.Get("/clothes", opts.Clothes.List)
	app.Delete("/clothes", opts.Clothes.Delete)

	if opts.UploadDir != "" {
		app.Static(storage.URLPath, opts.UploadDir, fiber.Static{
			Browse: false,
		})
	}

	if opts.ExposeMetrics {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(
			opts.Metrics.Registry,
			promhttp.HandlerOpts{ErrorHandling: promhttp.ContinueOnError},
		)))
	}
}

// errorHandler renders framework errors with the same {error} body the
// handlers use.
func errorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		}

		return c.Status(code).JSON(fiber.Map{"error": err.Error()})
	}
}
