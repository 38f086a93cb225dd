package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/MangousteEnFeu/TaxProjectV2/client"
	"github.com/MangousteEnFeu/TaxProjectV2/config"
	"github.com/MangousteEnFeu/TaxProjectV2/handler"
	"github.com/MangousteEnFeu/TaxProjectV2/metrics"
	"github.com/MangousteEnFeu/TaxProjectV2/repository"
	"github.com/MangousteEnFeu/TaxProjectV2/service"
)

func main() {
	// Tesseract v5 reads its language data from TESSDATA_PREFIX.
	cfg := config.LoadConfig()
	os.Setenv("TESSDATA_PREFIX", cfg.TesseractDataPath)
	log.Println("TESSDATA_PREFIX set to:", os.Getenv("TESSDATA_PREFIX"))

	// Persistence
	db, err := repository.OpenDB(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	repo := repository.NewDeclarationRepository(db)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	// Decoders
	tesseractClient := client.NewTesseractClient(cfg.TesseractDataPath, cfg.OCRLanguage)
	defer tesseractClient.Close()

	decoder := service.NewDocumentDecoder(
		service.NewPDFProcessor(),
		service.NewSpreadsheetProcessor(),
		tesseractClient,
	)

	// Engine
	extractionMetrics := metrics.NewExtractionMetrics()
	extractionService := service.NewExtractionService(decoder, extractionMetrics)
	taxCalculator := service.NewTaxCalculator()

	declarationHandler := handler.NewDeclarationHandler(repo, extractionService, taxCalculator, cfg.MaxFileSize)

	// Setup Gin router
	router := gin.Default()

	// Configure max multipart memory (32 MB)
	router.MaxMultipartMemory = 32 << 20

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "Tax Declaration Extraction",
		})
	})
	router.GET("/metrics", gin.WrapH(extractionMetrics.Handler()))

	// API routes
	api := router.Group("/api/v1")
	{
		declarations := api.Group("/declarations")
		{
			declarations.POST("", declarationHandler.CreateDeclaration)
			declarations.GET("", declarationHandler.ListDeclarations)
			declarations.GET("/:id", declarationHandler.GetDeclaration)
			declarations.DELETE("/:id", declarationHandler.DeleteDeclaration)
			declarations.POST("/:id/extract", declarationHandler.ExtractDocuments)
		}
	}

	// Start server
	log.Printf("Starting Tax Declaration Extraction Service on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
