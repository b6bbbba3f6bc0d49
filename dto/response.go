package dto

import "errors"

// Custom errors
var (
	ErrNotAPDF   = errors.New("only PDF files are accepted")
	ErrEmptyFile = errors.New("uploaded file is empty")
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// BatchResult is the outcome of one file inside a batch run.
type BatchResult struct {
	File   string          `json:"file"`
	Status string          `json:"status"`
	Data   *MinimalPayload `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// BatchResponse wraps a whole batch run.
type BatchResponse struct {
	Results     []BatchResult `json:"results"`
	ProcessedAt string        `json:"processed_at"`
}
