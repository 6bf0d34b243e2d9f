package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	log "github.com/sirupsen/logrus"

	"recruitment-audit-agent/internal/config"
	"recruitment-audit-agent/internal/handlers"
	"recruitment-audit-agent/internal/models"
	"recruitment-audit-agent/internal/services"
)

const (
	serviceName    = "recruitment-audit-agent"
	serviceVersion = "1.0.0"
)

func main() {
	// Load configuration
	cfg := config.Load()

	if cfg.Server.Env == "development" {
		log.SetLevel(log.DebugLevel)
	}
	log.Info("✅ Config loaded successfully")

	// Initialize services
	majorService := services.NewMajorService(
		cfg.Majors.WorkbookPath,
		cfg.Majors.Sheet,
		cfg.Majors.LookupMode,
	)

	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	pdfParser := services.NewPDFParserService()
	log.Info("✅ Services initialized successfully")

	// Initialize Gemini AI
	completionService, err := services.NewGeminiService(
		cfg.Gemini.APIKey,
		cfg.Gemini.Model,
		cfg.Gemini.Temperature,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	log.Info("✅ Gemini AI initialized successfully")

	// Initialize evaluator
	evaluatorService := services.NewEvaluatorService(completionService, majorService)
	log.Info("✅ Evaluator service initialized")

	// Initialize handlers
	auditHandler := handlers.NewAuditHandler(
		evaluatorService,
		pdfParser,
		storageService,
		cfg.Storage.MaxFileSize,
	)
	majorHandler := handlers.NewMajorHandler(majorService)
	log.Info("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Recruitment Audit Agent API",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(models.HealthResponse{
			Status:  "healthy",
			Service: serviceName,
			Version: serviceVersion,
		})
	})

	app.Post("/audit", auditHandler.HandleAudit)
	app.Post("/audit/resume", auditHandler.HandleAuditResume)
	app.Post("/major/match", majorHandler.HandleMajorMatch)

	// Unmatched routes
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"error":   "Endpoint not found",
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Errorf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Infof("🚀 Server starting on %s", addr)
	log.Infof("📖 Health check: http://localhost%s/health", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error: " + err.Error()

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}
