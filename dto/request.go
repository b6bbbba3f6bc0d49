package dto

import (
	"errors"
	"mime/multipart"
	"strings"
)

// OutputFormat selects the response rendering of the minimal payload.
type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
	FormatKV   OutputFormat = "kv"
	FormatINI  OutputFormat = "ini"
)

// ExtractRequest represents the incoming extraction request.
type ExtractRequest struct {
	File   *multipart.FileHeader `form:"file" binding:"required"`
	Vendor string                `form:"vendor"`
	UseOCR *bool                 `form:"use_ocr"`
}

// Validate performs basic validation on the request.
func (r *ExtractRequest) Validate() error {
	if r.File == nil {
		return errors.New("file is required")
	}
	if !strings.HasSuffix(strings.ToLower(r.File.Filename), ".pdf") {
		return ErrNotAPDF
	}
	return nil
}

// BatchRequest asks for extraction of every PDF in a local folder.
type BatchRequest struct {
	Folder     string `json:"folder" binding:"required"`
	Vendor     string `json:"vendor"`
	UseOCR     *bool  `json:"use_ocr"`
	Parallel   bool   `json:"parallel"`
	MaxWorkers int    `json:"max_workers"`
	OutputFile string `json:"output_file"`
}
