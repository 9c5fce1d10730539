// Package rest exposes the JSON HTTP API on top of the services package.
package rest

import (
	"context"
	"sync"
	"time"

	"github.com/Luisrodriguezm11/identificador-plantas/internal/logging"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/auth"
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 10 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps are the collaborators the HTTP layer dispatches to.
type Deps struct {
	DB       Pinger
	Redis    *redis.Client
	Users    UserService
	Analyses AnalysisService
	Catalog  CatalogService
	Storage  StorageService
}

type Server struct {
	address        string
	allowedOrigins string
	logger         logging.Logger
	verifier       *auth.Verifier
	db             Pinger
	redis          *redis.Client
	users          UserService
	analyses       AnalysisService
	catalog        CatalogService
	storage        StorageService
}

func NewServer(address, allowedOrigins string, l logging.Logger, v *auth.Verifier, d Deps) *Server {
	return &Server{
		address:        address,
		allowedOrigins: allowedOrigins,
		logger:         l.With("module", "http_server"),
		verifier:       v,
		db:             d.DB,
		redis:          d.Redis,
		users:          d.Users,
		analyses:       d.Analyses,
		catalog:        d.Catalog,
		storage:        d.Storage,
	}
}

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// metrics returns the process-wide HTTP collector set. Collectors register
// with the default registry, so they are created once.
func metrics() *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New("identificador-plantas")
	})
	return prom
}

// App builds the fiber application with every middleware and route.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "identificador-plantas",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return respondWithError(c, err)
		},
	})

	s.setupMiddleware(app)
	s.setupRoutes(app)

	return app
}

func (s *Server) setupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(contextMiddleware())

	p := metrics()
	p.RegisterAt(app, "/metrics")
	app.Use(p.Middleware)

	app.Use(helmet.New())
	app.Use(s.structuredLogger())

	origins := s.allowedOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, x-access-token",
		MaxAge:       86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
				Error: "Demasiadas peticiones, inténtalo más tarde",
				Code:  "RATE_LIMITED",
			})
		},
	}))

	app.Use(tracingMiddleware())
}

func (s *Server) setupRoutes(app *fiber.App) {
	app.Get("/health", s.health)

	app.Post("/register", s.rateLimit("register", 5, 10*time.Minute), s.register)
	app.Post("/login", s.rateLimit("login", 10, 5*time.Minute), s.login)

	authed := s.authRequired()

	app.Get("/profile", authed, s.getProfile)
	app.Put("/profile/update", authed, s.updateProfile)
	app.Post("/profile/change-password", authed, s.changePassword)
	app.Post("/profile/delete", authed, s.deleteAccount)

	app.Post("/analyze", authed, s.analyze)
	app.Post("/uploads", authed, s.presignUpload)

	history := app.Group("/history", authed)
	history.Get("/", s.listHistory)
	history.Post("/save", s.saveAnalysis)
	history.Get("/trash", s.listTrash)
	history.Delete("/trash/empty", s.emptyTrash)
	history.Put("/trash/restore-all", s.restoreAll)
	history.Delete("/:id/permanent", s.purgeAnalysis)
	history.Put("/:id/restore", s.restoreAnalysis)
	history.Delete("/:id", s.softDeleteAnalysis)

	app.Get("/disease/:roboflow_class", authed, s.diseaseInfo)
	app.Get("/api/enfermedades", authed, s.listDiseases)
	app.Get("/api/tratamientos/:id", authed, s.listTreatments)
	app.Post("/calculate_dose", authed, s.calculateDose)

	admin := app.Group("/admin", s.adminRequired())
	admin.Get("/analyses", s.adminListAnalyses)
	admin.Get("/analyses/user/:id", s.adminListUserAnalyses)
	admin.Get("/trash", s.adminListTrash)
	admin.Put("/analysis/restore/:id", s.adminRestoreAnalysis)
	admin.Delete("/analysis/:id", s.adminSoftDeleteAnalysis)
	admin.Get("/users_with_analyses", s.adminListUsers)
	admin.Put("/user/:id/reset-password", s.adminResetPassword)
	admin.Delete("/user/:id", s.adminDeleteUser)
	admin.Post("/storage/delete", s.adminDeleteObject)
	admin.Get("/diseases", s.listDiseases)
	admin.Put("/disease/:id", s.adminUpdateDisease)
	admin.Post("/treatments", s.adminCreateTreatment)
	admin.Put("/treatments/:id", s.adminUpdateTreatment)
	admin.Delete("/treatments/:id", s.adminDeleteTreatment)
}

func (s *Server) health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if s.db == nil || s.db.PingContext(ctx) != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"status": dbStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	app := s.App()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	return app.Listen(s.address)
}
