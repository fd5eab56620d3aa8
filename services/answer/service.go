package answer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/upb/placement-rag/internal/observability"
	"github.com/upb/placement-rag/internal/rag"
	"github.com/upb/placement-rag/services"
	"github.com/upb/placement-rag/services/providers"
	"github.com/upb/placement-rag/services/retrieval"
	"go.uber.org/zap"
)

// NoDocumentsAnswer is returned when no offer has been embedded yet
const NoDocumentsAnswer = "No documents found."

const statusError = "error"

// Retriever ranks offers for a query. *retrieval.Service satisfies it.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) (*retrieval.Result, error)
}

// Request is one question from a user
type Request struct {
	RequestID string
	Query     string
	// TopK overrides the configured number of context entries when positive
	TopK int
}

// Response carries the generated answer and the context it was grounded on
type Response struct {
	RequestID  string             `json:"request_id"`
	Status     string             `json:"status"`
	Confidence float64            `json:"confidence"`
	Answer     string             `json:"answer"`
	Context    []rag.ContextEntry `json:"context"`
}

// Service answers questions about placement offers
type Service struct {
	retriever       Retriever
	generator       providers.Generator
	metrics         observability.Metrics
	contextMaxChars int
	logger          *zap.Logger
}

// NewService creates a new answer service
func NewService(
	retriever Retriever,
	generator providers.Generator,
	metrics observability.Metrics,
	contextMaxChars int,
	logger *zap.Logger,
) *Service {
	if metrics == nil {
		metrics = observability.NopMetrics{}
	}
	return &Service{
		retriever:       retriever,
		generator:       generator,
		metrics:         metrics,
		contextMaxChars: contextMaxChars,
		logger:          logger,
	}
}

// Answer retrieves the most relevant offers and asks the generator to answer
// from them. When nothing has been embedded the generator is not called.
func (s *Service) Answer(ctx context.Context, req Request) (*Response, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.New().String()
	}
	logger := s.logger.With(zap.String("request_id", req.RequestID))

	result, err := s.retriever.Retrieve(ctx, req.Query, req.TopK)
	if err != nil {
		s.metrics.RecordAnswer(statusError)
		logger.Warn("retrieval failed",
			zap.String("error_type", string(services.GetErrorType(err))),
			zap.Error(err))
		return nil, err
	}

	if result.Status == retrieval.StatusNoDocuments {
		s.metrics.RecordAnswer(retrieval.StatusNoDocuments)
		logger.Info("no documents available for answer")
		return &Response{
			RequestID: req.RequestID,
			Status:    retrieval.StatusNoDocuments,
			Answer:    NoDocumentsAnswer,
			Context:   []rag.ContextEntry{},
		}, nil
	}

	prompt := rag.AssemblePrompt(result.Results, req.Query, s.contextMaxChars)
	if prompt.Entries < len(result.Results) {
		logger.Debug("context truncated",
			zap.Int("included", prompt.Entries),
			zap.Int("ranked", len(result.Results)))
	}

	start := time.Now()
	text, err := s.generator.Generate(ctx, prompt.Instruction, prompt.Input)
	s.metrics.RecordStage(observability.StageGenerate, time.Since(start))
	if err != nil {
		s.metrics.RecordAnswer(statusError)
		logger.Error("generation failed",
			zap.String("provider", s.generator.Name()),
			zap.String("code", providers.ErrorCode(err)),
			zap.Error(err))
		return nil, services.NewDomainError(services.ErrorTypeExternal, services.ErrGeneration.Message, err)
	}

	s.metrics.RecordAnswer(retrieval.StatusSuccess)
	logger.Info("answer generated",
		zap.Float64("confidence", result.Confidence),
		zap.Int("context_entries", prompt.Entries),
		zap.Duration("generation", time.Since(start)))

	return &Response{
		RequestID:  req.RequestID,
		Status:     retrieval.StatusSuccess,
		Confidence: result.Confidence,
		Answer:     text,
		Context:    rag.NewContextEntries(result.Results[:prompt.Entries]),
	}, nil
}
