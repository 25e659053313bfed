// Package server contains the HTTP handlers for the SocialSphere API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"socialsphere/internal/config"
	"socialsphere/internal/middleware"
	"socialsphere/internal/models"
	"socialsphere/internal/observability"
	"socialsphere/internal/repository"
	"socialsphere/internal/service"
	"socialsphere/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
)

const serviceName = "socialsphere-api"

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	store          storage.Store
	db             repository.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus

	auth        *service.AuthService
	feed        *service.FeedService
	marketplace *service.MarketplaceService
	messenger   *service.MessengerService
	profile     *service.ProfileService
	groups      *service.GroupService
}

// NewServer wires the API on top of an opened store. redisClient is optional;
// when set, AI routes are rate limited in Redis so the limit holds across
// instances.
func NewServer(cfg *config.Config, store storage.Store, assistant service.ContentAssistant, redisClient *redis.Client) *Server {
	db := repository.NewDB(store)
	services := service.New(db, assistant)

	s := &Server{
		config:         cfg,
		store:          store,
		db:             db,
		redis:          redisClient,
		promMiddleware: observability.HTTPMetrics(serviceName),
		auth:           services.Auth,
		feed:           services.Feed,
		marketplace:    services.Marketplace,
		messenger:      services.Messenger,
		profile:        services.Profile,
		groups:         services.Groups,
	}

	app := fiber.New(fiber.Config{
		AppName:      "SocialSphere API",
		ErrorHandler: errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return s
}

// App returns the configured fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
	}
	observability.GlobalLogger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Server span, then copy request and trace IDs into the request context
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, X-Request-ID",
		ExposeHeaders:    "X-Request-ID, X-Trace-ID",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	if s.config.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        s.config.RateLimit,
			Expiration: 1 * time.Minute,
			// Never rate-limit preflight requests; they should be handled by CORS.
			Next: func(c *fiber.Ctx) bool {
				return c.Method() == fiber.MethodOptions
			},
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
					Error: "Too many requests, please try again later.",
					Code:  middleware.CodeRateLimited,
				})
			},
		}))
	}
}

// aiRateLimit guards the routes that call the AI backend. Redis is used when
// available, otherwise a per-process limiter.
func (s *Server) aiRateLimit() fiber.Handler {
	if s.redis != nil {
		return middleware.RateLimit(s.redis, s.config.AIRateLimit, time.Minute, "ai")
	}
	if s.config.AIRateLimit <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:          s.config.AIRateLimit,
		Expiration:   1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string { return "ai:" + c.IP() },
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "rate limit exceeded",
				Code:  middleware.CodeRateLimited,
			})
		},
	})
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "SocialSphere API Metrics",
	}))

	api.Get("/session", s.GetSession)
	api.Post("/session", s.LoginOrSignup)
	api.Delete("/session", s.Logout)

	api.Get("/users", s.ListUsers)

	api.Get("/posts", s.GetPosts)
	api.Post("/posts", s.CreatePost)
	api.Post("/posts/:id/like", s.ToggleLike)
	api.Post("/posts/:id/comments", s.AddComment)

	api.Get("/products", s.GetProducts)
	api.Post("/products", s.SellProduct)

	ai := api.Group("/ai", s.aiRateLimit())
	ai.Post("/caption", s.AssistCaption)
	ai.Post("/ad-copy", s.GenerateAdCopy)

	api.Get("/messages/contacts", s.GetContacts)
	api.Get("/messages/:userId", s.GetConversation)
	api.Post("/messages/:userId", s.SendMessage)

	api.Get("/profile", s.GetProfile)
	api.Put("/profile", s.UpdateProfile)

	api.Get("/groups", s.GetGroups)
	api.Post("/groups", s.CreateGroup)
	api.Post("/groups/:id/join", s.JoinGroup)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports whether the backing store answers.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	storeStatus := "healthy"
	if err := s.store.Ping(ctx); err != nil {
		storeStatus = "unhealthy"
		observability.GlobalLogger.WarnContext(ctx, "readiness check failed", slog.String("error", err.Error()))
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if storeStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"store": storeStatus,
		},
		"driver": s.config.StoreDriver,
		"time":   time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	observability.GlobalLogger.Info("server starting",
		slog.String("port", s.config.Port),
		slog.String("store_driver", s.config.StoreDriver),
	)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown drains the HTTP server, then closes the store and Redis.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, err)
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	observability.GlobalLogger.Info("server shutdown complete")
	return errors.Join(errs...)
}
