package handler

import (
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JuanParadigma/factura-extractor/dto"
	"github.com/JuanParadigma/factura-extractor/service"
	"github.com/JuanParadigma/factura-extractor/utils"
)

type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	batchService   *service.BatchService
}

func NewInvoiceHandler(invoiceService *service.InvoiceService, batchService *service.BatchService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		batchService:   batchService,
	}
}

// Extract handles the POST /invoice/extract endpoint
func (h *InvoiceHandler) Extract(c *gin.Context) {
	log.Println("Received invoice extraction request")

	var request dto.ExtractRequest
	if err := c.ShouldBind(&request); err != nil {
		h.sendError(c, http.StatusBadRequest, "Failed to parse multipart form", err)
		return
	}
	if err := request.Validate(); err != nil {
		h.sendError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	tmpPath, err := saveTempPDF(request.File)
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Failed to store uploaded file", err)
		return
	}
	defer os.Remove(tmpPath)

	if info, err := os.Stat(tmpPath); err != nil || info.Size() == 0 {
		h.sendError(c, http.StatusBadRequest, dto.ErrEmptyFile.Error(), dto.ErrEmptyFile)
		return
	}

	payload := h.invoiceService.ExtractFromPDF(tmpPath, request.Vendor, request.UseOCR)
	payload.CUIT = utils.CleanCUIT(payload.CUIT)

	switch dto.OutputFormat(c.DefaultQuery("format", string(dto.FormatJSON))) {
	case dto.FormatKV:
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(utils.ToKV(&payload)))
	case dto.FormatINI:
		c.Data(http.StatusOK, "text/ini; charset=utf-8", []byte(utils.ToINI(&payload)))
	default:
		c.JSON(http.StatusOK, payload)
	}
}

// Batch handles the POST /invoice/batch endpoint
func (h *InvoiceHandler) Batch(c *gin.Context) {
	var request dto.BatchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid batch request", err)
		return
	}

	log.Printf("Processing batch folder %s", request.Folder)

	results, err := h.batchService.ProcessFolder(&request)
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Failed to process folder", err)
		return
	}

	if request.OutputFile != "" {
		if err := service.SaveResults(results, request.OutputFile); err != nil {
			log.Printf("failed to persist batch results: %v", err)
		}
	}

	c.JSON(http.StatusOK, dto.BatchResponse{
		Results:     results,
		ProcessedAt: time.Now().Format(time.RFC3339),
	})
}

// saveTempPDF copies the uploaded document to a temp file the pipeline can
// reopen by path.
func saveTempPDF(fileHeader *multipart.FileHeader) (string, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "factura-*.pdf")
	if err != nil {
		return "", err
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, src); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

// sendError sends a structured error response
func (h *InvoiceHandler) sendError(c *gin.Context, statusCode int, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		log.Printf("Error: %s - %v", message, err)
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   "EXTRACTION_FAILED",
		Message: errorMsg,
		Code:    statusCode,
	})
}
