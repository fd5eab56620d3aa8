package handlers

import (
	"context"
	"net/http"

	"github.com/upb/placement-rag/middleware"
	"github.com/upb/placement-rag/services/answer"
	"github.com/upb/placement-rag/utils"
	"go.uber.org/zap"
)

// AnswerRequest is the body of POST /api/v1/placements/answer
type AnswerRequest struct {
	UserInput string `json:"userInput" validate:"required,notblank,max=4000"`
	TopK      *int   `json:"topK,omitempty" validate:"omitempty,gte=1,lte=50"`
}

// AnswerService defines the interface for answering placement questions
type AnswerService interface {
	Answer(ctx context.Context, req answer.Request) (*answer.Response, error)
}

// AnswerHandler handles question answering over placement offers
type AnswerHandler struct {
	service AnswerService
	logger  *zap.Logger
}

// NewAnswerHandler creates a new AnswerHandler
func NewAnswerHandler(service AnswerService, logger *zap.Logger) *AnswerHandler {
	return &AnswerHandler{
		service: service,
		logger:  logger,
	}
}

// HandleAnswer handles POST /api/v1/placements/answer
func (h *AnswerHandler) HandleAnswer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req AnswerRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		h.logger.Warn("failed to parse request body",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		h.logger.Warn("request validation failed",
			zap.String("request_id", requestID),
			zap.Error(err))
		HandleValidationError(w, err, h.logger)
		return
	}

	serviceReq := answer.Request{
		RequestID: requestID,
		Query:     req.UserInput,
	}
	if req.TopK != nil {
		serviceReq.TopK = *req.TopK
	}

	resp, err := h.service.Answer(ctx, serviceReq)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if err := utils.WriteOK(w, resp); err != nil {
		h.logger.Error("failed to write answer response",
			zap.String("request_id", requestID),
			zap.Error(err))
	}
}
