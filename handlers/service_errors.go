package handlers

import (
	"net/http"

	"github.com/upb/placement-rag/services"
	"github.com/upb/placement-rag/utils"
	"go.uber.org/zap"
)

// HandleServiceError maps domain errors to HTTP responses.
// Responses carry the fixed public message of the error, never its cause.
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	var writeErr error
	switch {
	case services.IsValidationError(err):
		logger.Warn("request rejected", zap.Error(err))
		writeErr = utils.WriteBadRequest(w, services.PublicMessage(err, "Invalid request"), services.GetErrorDetails(err))

	case services.IsNotFoundError(err):
		writeErr = utils.WriteNotFound(w, services.PublicMessage(err, ""))

	case services.IsExternalError(err):
		logger.Error("upstream provider error", zap.Error(err))
		writeErr = utils.WriteBadGateway(w, services.PublicMessage(err, ""))

	case services.IsUnavailableError(err):
		logger.Error("dependency unavailable", zap.Error(err))
		writeErr = utils.WriteServiceUnavailable(w, services.PublicMessage(err, ""))

	case services.IsInternalError(err):
		logger.Error("internal server error", zap.Error(err))
		writeErr = utils.WriteInternalServerError(w, "An internal error occurred")

	default:
		logger.Error("unhandled error type", zap.Error(err))
		writeErr = utils.WriteInternalServerError(w, "An unexpected error occurred")
	}

	if writeErr != nil {
		logger.Error("failed to write error response", zap.Error(writeErr))
	}
}

// HandleValidationError handles validation errors from request parsing
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	message := err.Error()
	var details map[string]interface{}
	if utils.IsValidationError(err) {
		message = "Validation failed"
		details = utils.FieldDetails(utils.GetValidationFields(err))
	}

	if err := utils.WriteBadRequest(w, message, details); err != nil {
		logger.Error("failed to write validation error response", zap.Error(err))
	}
}

// NotFound returns a JSON 404 for unknown routes
func NotFound(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteNotFound(w, "Route not found")
}

// MethodNotAllowed returns a JSON 405
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
}
