package service

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/JuanParadigma/factura-extractor/dto"
)

// BatchService fans the extraction pipeline out over a folder of PDFs. Each
// document runs in its own goroutine with no shared mutable state, so one
// garbled document can never poison another's result.
type BatchService struct {
	invoices *InvoiceService
}

func NewBatchService(invoices *InvoiceService) *BatchService {
	return &BatchService{invoices: invoices}
}

// ProcessFolder extracts every .pdf in the folder and returns per-file
// results in directory listing order.
func (s *BatchService) ProcessFolder(req *dto.BatchRequest) ([]dto.BatchResult, error) {
	entries, err := os.ReadDir(req.Folder)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder %s: %w", req.Folder, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(entry.Name()), ".pdf") {
			files = append(files, filepath.Join(req.Folder, entry.Name()))
		}
	}
	if len(files) == 0 {
		return []dto.BatchResult{}, nil
	}

	workers := req.MaxWorkers
	if workers <= 0 {
		workers = runtime.NumCPU() - 1
		if workers < 1 {
			workers = 1
		}
	}
	if !req.Parallel {
		workers = 1
	}

	results := make([]dto.BatchResult, len(files))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, path := range files {
		wg.Add(1)
		go func(idx int, pdfPath string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[idx] = s.processOne(pdfPath, req.Vendor, req.UseOCR)
		}(i, path)
	}
	wg.Wait()

	return results, nil
}

func (s *BatchService) processOne(pdfPath, vendorHint string, useOCRHint *bool) (result dto.BatchResult) {
	result.File = filepath.Base(pdfPath)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("extraction panic for %s: %v", pdfPath, r)
			result.Status = "error"
			result.Data = nil
			result.Error = fmt.Sprintf("%v", r)
		}
	}()

	payload := s.invoices.ExtractFromPDF(pdfPath, vendorHint, useOCRHint)
	result.Status = "ok"
	result.Data = &payload
	return result
}

// SaveResults writes a batch run to a JSON file.
func SaveResults(results []dto.BatchResult, outputPath string) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputPath, err)
	}
	return nil
}
