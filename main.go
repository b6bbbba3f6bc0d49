package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/JuanParadigma/factura-extractor/client"
	"github.com/JuanParadigma/factura-extractor/config"
	"github.com/JuanParadigma/factura-extractor/handler"
	"github.com/JuanParadigma/factura-extractor/service"
	"github.com/JuanParadigma/factura-extractor/vendors"
)

func main() {
	// Initialize configuration
	cfg := config.LoadConfig()

	// Initialize Tesseract client
	tesseractClient := client.NewTesseractClient(cfg.TesseractDataPath)
	defer tesseractClient.Close()

	// Initialize PDF line reader
	reader := service.NewPDFLineReader(tesseractClient, cfg.PreferOCR)

	// Vendor handler registry, built once and shared read-only
	registry := vendors.NewRegistry()

	// Initialize service layer
	invoiceService := service.NewInvoiceService(reader, registry, cfg.VendorConfigPath)
	batchService := service.NewBatchService(invoiceService)

	// Initialize handler layer
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, batchService)

	// Setup Gin router
	router := gin.Default()

	// Configure max multipart memory (32 MB)
	router.MaxMultipartMemory = 32 << 20

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "Factura Extractor",
		})
	})

	// API routes
	api := router.Group("/api/v1")
	{
		invoice := api.Group("/invoice")
		{
			invoice.POST("/extract", invoiceHandler.Extract)
			invoice.POST("/batch", invoiceHandler.Batch)
		}
	}

	// Start server
	log.Printf("Starting Factura Extractor Service on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
