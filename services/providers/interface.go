package providers

import (
	"context"
	"errors"
	"time"
)

// Embedder turns text into a fixed-length vector
type Embedder interface {
	// Name returns the provider name (e.g., "gemini", "openai")
	Name() string

	// Embed returns the embedding of text. Callers must check the vector length
	// against the configured dimensionality; adapters do not.
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator produces a free-text answer for an instruction and an input
type Generator interface {
	// Name returns the provider name
	Name() string

	// Generate sends the instruction and the input (context plus question)
	// and returns the model's plain-text reply
	Generate(ctx context.Context, instruction, input string) (string, error)
}

// ProviderConfig holds common configuration for providers
type ProviderConfig struct {
	// APIKey for authentication
	APIKey string

	// BaseURL for the API (optional override)
	BaseURL string

	// EmbeddingModel used by Embed
	EmbeddingModel string

	// ChatModel used by Generate
	ChatModel string

	// Timeout for requests
	Timeout time.Duration

	// Additional headers
	Headers map[string]string
}

// ProviderError represents an error from a provider.
// Calls are never retried; Retryable only classifies the failure for logs and metrics.
type ProviderError struct {
	Provider   string
	Code       string
	Message    string
	StatusCode int
	Retryable  bool
	Cause      error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return e.Provider + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Provider + ": " + e.Message
}

// Unwrap implements error unwrapping
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// NewProviderError creates a new provider error
func NewProviderError(provider, code, message string, statusCode int, retryable bool, cause error) *ProviderError {
	return &ProviderError{
		Provider:   provider,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  retryable,
		Cause:      cause,
	}
}

// IsRetryable checks if an error is a transient provider failure
func IsRetryable(err error) bool {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Retryable
	}
	return false
}

// ErrorCode returns the provider error code, or "unknown"
func ErrorCode(err error) string {
	var provErr *ProviderError
	if errors.As(err, &provErr) && provErr.Code != "" {
		return provErr.Code
	}
	return "unknown"
}

// RetryableStatus reports whether an HTTP status denotes a transient failure
func RetryableStatus(status int) bool {
	return status == 429 || status >= 500
}
