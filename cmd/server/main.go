// cmd/server/main.go
// This is the entry point for the Cup Trip API server.
// The cmd/ folder holds executable binaries; internal/ holds the packages they are built from,
// which other modules cannot import.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	// fiber is a fast HTTP web framework inspired by Express.js
	"github.com/gofiber/fiber/v2"
	// adaptor mounts net/http handlers (the Prometheus exporter) on Fiber
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	// cors lets the mobile app and scoreboard pages call the API from other origins
	"github.com/gofiber/fiber/v2/middleware/cors"
	// recover turns a panicking handler into a 500 instead of killing the process
	"github.com/gofiber/fiber/v2/middleware/recover"
	// requestid tags every request with an X-Request-ID, reused in log lines
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	// Internal packages, imported by module path
	"github.com/trentd187/cup-trip/internal/config"
	"github.com/trentd187/cup-trip/internal/database"
	"github.com/trentd187/cup-trip/internal/handlers"
	"github.com/trentd187/cup-trip/internal/logging"
	"github.com/trentd187/cup-trip/internal/metrics"
	"github.com/trentd187/cup-trip/internal/middleware"
	"github.com/trentd187/cup-trip/internal/models"
	"github.com/trentd187/cup-trip/internal/scoring"
	"github.com/trentd187/cup-trip/internal/store"
	"github.com/trentd187/cup-trip/internal/websocket"
)

func main() {
	// Load configuration from environment variables (and optionally a .env file).
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	logger := logging.New(cfg)

	// ctx is cancelled on SIGINT/SIGTERM; everything long-running watches it.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	// Run any pending SQL migrations before the app touches the schema.
	if cfg.RunMigrations {
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			return err
		}
		logger.Info().Msg("migrations applied")
	}

	db, err := database.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	// Our own registry keeps /metrics to the collectors we register, plus the runtime ones.
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// The Hub fans match summaries out to live watchers. It runs until ctx is cancelled.
	hub := websocket.NewHub()
	go hub.Run(ctx)

	st := store.New(db)
	svc := scoring.New(st, hub, metrics.New(reg), logger)

	auth, err := middleware.Auth(cfg, st)
	if err != nil {
		return err
	}
	if cfg.IsDevelopment() && cfg.ClerkJWTKey == "" {
		logger.Warn().Msg("CLERK_JWT_KEY not set: accepting unverified tokens (development only)")
	}

	app := fiber.New(fiber.Config{
		AppName:      "Cup Trip API",
		ErrorHandler: jsonErrorHandler,
	})

	// --- Global middleware ---
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(logger))
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))

	// --- Public routes (no auth required) ---
	app.Get("/health", handlers.HealthCheck)
	app.Get("/ready", handlers.Readiness(sqlDB))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	// Scoreboards follow matches without signing in; the stream is read-only.
	app.Get("/ws/matches/:matchID", handlers.LiveMatchUpgrade(svc), handlers.LiveMatch(hub, svc))

	// --- Authenticated API routes ---
	// Everything under /api/v1 needs a valid Clerk JWT; Auth also syncs the user to our database.
	api := app.Group("/api/v1", auth)
	organizers := middleware.RequireRole(models.UserRoleAdmin, models.UserRoleCaptain)

	api.Get("/trips", handlers.ListTrips(st))
	api.Post("/trips", organizers, handlers.CreateTrip(st))
	api.Get("/trips/:tripID/standings", handlers.TripStandings(svc))
	api.Post("/trips/:tripID/sessions", organizers, handlers.CreateSession(st))

	api.Get("/sessions/:sessionID/standings", handlers.SessionStandings(svc))
	api.Post("/sessions/:sessionID/matches", organizers, handlers.CreateMatch(st))

	api.Get("/matches/:matchID", handlers.GetMatch(svc))
	api.Post("/matches/:matchID/holes", handlers.RecordHole(svc))
	api.Delete("/matches/:matchID/holes/last", handlers.UndoLastHole(svc))

	// Listen in the background so we can shut down cleanly when ctx is cancelled.
	errc := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Msg("starting server")
		errc <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	return app.ShutdownWithTimeout(10 * time.Second)
}

// jsonErrorHandler renders errors that escape the handlers (unknown routes, fiber.ErrXxx) in the
// same {"error": "..."} shape the handlers use.
func jsonErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
