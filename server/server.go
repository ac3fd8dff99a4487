// Package server exposes projects, schedules and critical path analysis over HTTP.
package server

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/meikuraledutech/cpm"
	"github.com/meikuraledutech/cpm/internal/events"
	"github.com/meikuraledutech/cpm/internal/logging"
	"github.com/meikuraledutech/cpm/internal/observability"
)

// Config wires a Server to its collaborators. Store is required.
type Config struct {
	Store     cpm.Store
	Options   cpm.Options
	Publisher events.Publisher
	Logger    *logging.Logger
	Now       func() time.Time
}

// Server is the HTTP API.
type Server struct {
	store     cpm.Store
	opts      cpm.Options
	publisher events.Publisher
	log       *logging.Logger
	now       func() time.Time
	app       *fiber.App
}

// New builds the fiber app and registers all routes.
func New(cfg Config) *Server {
	s := &Server{
		store:     cfg.Store,
		opts:      cfg.Options,
		publisher: cfg.Publisher,
		log:       cfg.Logger,
		now:       cfg.Now,
	}
	if s.publisher == nil {
		s.publisher = events.Nop{}
	}
	if s.log == nil {
		s.log = logging.NopLogger()
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.app = fiber.New(fiber.Config{AppName: "cpm"})
	s.app.Use(recoverer.New())
	s.app.Use(s.requestLogger())
	s.routes()
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until Shutdown is called or the listener fails.
func (s *Server) Listen(addr string) error { return s.app.Listen(addr) }

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error { return s.app.ShutdownWithContext(ctx) }

func (s *Server) routes() {
	app := s.app

	app.Get("/healthz", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// ── Schema ────────────────────────────────────────────────────────
	app.Post("/schema", s.createSchema)
	app.Delete("/schema", s.dropSchema)

	// ── Stateless ─────────────────────────────────────────────────────
	app.Post("/analyze", s.analyze)

	// ── Projects ──────────────────────────────────────────────────────
	app.Post("/projects", s.createProject)
	app.Get("/projects", s.listProjects)
	app.Get("/projects/:id", s.getProject)
	app.Delete("/projects/:id", s.deleteProject)

	// ── Activities & derived views ────────────────────────────────────
	app.Post("/projects/:id/activities", s.addActivity)
	app.Get("/projects/:id/activities", s.listActivities)
	app.Get("/projects/:id/schedule", s.schedule)
	app.Get("/projects/:id/critical-path", s.criticalPath)
}

func (s *Server) requestLogger() fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		s.log.Debug("request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return err
	}
}

// fail maps domain errors onto status codes with a JSON error body.
func (s *Server) fail(c fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, cpm.ErrProjectNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, cpm.ErrDuplicateActivity):
		status = fiber.StatusConflict
	case errors.Is(err, cpm.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, cpm.ErrCycleDetected), errors.Is(err, cpm.ErrUnresolvedPredecessor):
		status = fiber.StatusUnprocessableEntity
	case errors.Is(err, cpm.ErrPathLimit):
		status = fiber.StatusRequestEntityTooLarge
	}

	body := fiber.Map{"error": err.Error()}
	var verr *cpm.ValidationError
	if errors.As(err, &verr) {
		body["field"] = verr.Field
	}
	var gerr *cpm.GraphError
	if errors.As(err, &gerr) && len(gerr.Path) > 0 {
		body["path"] = gerr.Path
	}

	if status == fiber.StatusInternalServerError {
		s.log.Error("request failed", "path", c.Path(), "error", err.Error())
	}
	return c.Status(status).JSON(body)
}

// record counts the computation and logs surfaced warnings.
func (s *Server) record(log *logging.Logger, r *cpm.Result, err error) {
	observability.RecordAnalysis(r, err)
	if err != nil {
		log.Info("analysis rejected", "outcome", observability.Outcome(err), "error", err.Error())
		return
	}
	for _, u := range r.Unresolved {
		log.Warn("unresolved predecessor", "activity", u.Activity, "predecessor", u.Predecessor)
	}
}

func (s *Server) publish(ctx context.Context, log *logging.Logger, projectID string, r *cpm.Result) {
	ev := events.NewProjectAnalyzed(projectID, r, s.now())
	if err := s.publisher.PublishProjectAnalyzed(ctx, ev); err != nil {
		log.Warn("publish failed", "error", err.Error())
	}
}
