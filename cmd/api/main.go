package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"deepwork/report-generator/internal/config"
	"deepwork/report-generator/internal/handlers"
	"deepwork/report-generator/internal/repositories"
	"deepwork/report-generator/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	reportRepo := repositories.NewReportRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize services
	assetService := services.NewAssetService(
		cfg.Storage.AssetPath,
		cfg.Storage.LogoFile,
		cfg.Storage.OutputPath,
		cfg.Storage.DebugHTML,
	)
	if err := assetService.EnsureOutputDir(); err != nil {
		log.Fatalf("❌ Failed to create output directory: %v", err)
	}

	parserService := services.NewSessionParserService()
	rendererService := services.NewPDFRenderService(
		cfg.Renderer.WkhtmltopdfPath,
		cfg.Renderer.BasePath,
	)
	log.Println("✅ Services initialized successfully")

	// Initialize text generation
	generator, embedder, err := services.NewTextGenerator(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize text generator: %v", err)
	}
	log.Printf("✅ Text generator initialized (%s)", cfg.LLM.Provider)

	// Initialize narrative index
	narrativeIdx, err := services.NewNarrativeIndexService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := narrativeIdx.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
	}
	log.Println("✅ Qdrant initialized successfully")

	// Optional rendered-report cache
	var pdfCache *services.PDFCache
	if cfg.Redis.Addr != "" {
		pdfCache, err = services.NewPDFCache(
			context.Background(),
			cfg.Redis.Addr,
			cfg.Redis.Password,
			cfg.Redis.DB,
		)
		if err != nil {
			log.Fatalf("❌ Failed to initialize Redis cache: %v", err)
		}
		log.Println("✅ Redis cache initialized successfully")
	} else {
		log.Println("ℹ️  Redis cache disabled (REDIS_ADDR not set)")
	}

	// Initialize report pipeline
	reportService := services.NewReportService(
		reportRepo,
		generator,
		embedder,
		narrativeIdx,
		rendererService,
		assetService,
		pdfCache,
		float32(cfg.LLM.Temperature),
		cfg.Worker.RetryMaxAttempts,
	)
	log.Println("✅ Report pipeline initialized")

	// Initialize worker
	worker := services.NewWorker(
		reportRepo,
		reportService,
		cfg.Worker.Concurrency,
	)
	log.Println("✅ Worker initialized successfully")

	// Start worker
	ctx := context.Background()
	worker.Start(ctx)
	log.Println("✅ Worker started successfully")

	// Initialize Handlers
	reportHandler := handlers.NewReportHandler(
		parserService,
		reportService,
		cfg.Storage.MaxFileSize,
	)
	jobHandler := handlers.NewJobHandler(
		parserService,
		reportRepo,
		worker,
		cfg.Storage.MaxFileSize,
	)
	searchHandler := handlers.NewSearchHandler(reportService)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Interview Report Generator API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
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
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// API endpoints
	api.Post("/reports", reportHandler.HandleGenerateReport)
	api.Get("/reports/similar", searchHandler.HandleSearchSimilar)
	api.Post("/jobs", jobHandler.HandleCreateJob)
	api.Get("/jobs/:id", jobHandler.HandleGetJob)
	api.Get("/jobs/:id/download", jobHandler.HandleDownload)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Interview Report Generator API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/reports",
				"GET /api/v1/reports/similar",
				"POST /api/v1/jobs",
				"GET /api/v1/jobs/:id",
				"GET /api/v1/jobs/:id/download",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		worker.Stop()
		if err := pdfCache.Close(); err != nil {
			log.Printf("⚠️  Failed to close Redis cache: %v", err)
		}
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
