package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"

	"github.com/calcforge/calcdb/internal/config"
	"github.com/calcforge/calcdb/internal/database"
	"github.com/calcforge/calcdb/internal/handlers"
	"github.com/calcforge/calcdb/internal/middleware"
	"github.com/calcforge/calcdb/internal/schemas"
	"github.com/calcforge/calcdb/internal/types"
	"github.com/calcforge/calcdb/internal/utils"

	_ "github.com/calcforge/calcdb/docs/api" // Swagger docs
)

// @title CalcDB API
// @version 1.0.0
// @description Go Fiber calculation service with multi-database support
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/calcforge/calcdb
// @contact.email dev@calcforge.io

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		// Disable startup message for cleaner logs
		DisableStartupMessage: false,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("calcdb")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Create handlers
	commonHandler := &handlers.CommonHandler{DB: db, Config: cfg}
	authHandler := &handlers.AuthHandler{DB: db, Config: cfg}
	userHandler := &handlers.UserHandler{DB: db}
	calcHandler := &handlers.CalculationHandler{DB: db}

	// Service banner
	app.Get("/", commonHandler.Root)

	// API routes under /api
	api := app.Group("/api")

	// Version middleware
	api.Use(middleware.VersionMiddleware())

	// Health
	api.Get("/health", commonHandler.GetHealth)

	// Authentication routes (public)
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Account routes (all require user authentication)
	users := api.Group("/users")
	users.Get("/me", middleware.AuthUser(cfg), userHandler.GetMe)
	users.Delete("/me", middleware.AuthUser(cfg), userHandler.DeleteMe)

	// Calculation routes (all require user authentication).
	// The stats route registers before :id so fiber matches it first.
	calcs := api.Group("/calculations")
	calcs.Post("/", middleware.AuthUser(cfg), calcHandler.CreateCalculation)
	calcs.Get("/", middleware.AuthUser(cfg), calcHandler.ListCalculations)
	calcs.Get("/stats", middleware.AuthUser(cfg), calcHandler.GetCalculationStats)
	calcs.Get("/:id", middleware.AuthUser(cfg), calcHandler.GetCalculation)
	calcs.Put("/:id", middleware.AuthUser(cfg), calcHandler.UpdateCalculation)
	calcs.Delete("/:id", middleware.AuthUser(cfg), calcHandler.DeleteCalculation)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Auth middleware and services surface typed errors
	var customErr *types.CustomError
	if errors.As(err, &customErr) {
		code = customErr.Code
		message = customErr.Message
		errorType = customErr.Type
	}

	// Validation errors escaping a handler still carry every violation
	var verr *schemas.ValidationError
	if errors.As(err, &verr) {
		return utils.ValidationErrorResponse(c, verr)
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
