package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/upb/placement-rag/internal/observability"
	"github.com/upb/placement-rag/internal/rag"
	"github.com/upb/placement-rag/models"
	"github.com/upb/placement-rag/repositories"
	"github.com/upb/placement-rag/services"
	"github.com/upb/placement-rag/services/providers"
	"go.uber.org/zap"
)

// Result statuses
const (
	StatusSuccess     = "success"
	StatusNoDocuments = "no_documents"
)

// Options configures ranking
type Options struct {
	Dimensions int
	TopK       int
	MaxTopK    int
}

// Result is the ranked output of one query
type Result struct {
	Results    []models.RankedResult
	Confidence float64
	Status     string
	// Candidates is the number of embedded offers that were scored
	Candidates int
}

// Service ranks embedded offers against a free-text query
type Service struct {
	repos    *repositories.Repositories
	embedder providers.Embedder
	metrics  observability.Metrics
	opts     Options
	logger   *zap.Logger
}

// NewService creates a new retrieval service
func NewService(
	repos *repositories.Repositories,
	embedder providers.Embedder,
	metrics observability.Metrics,
	opts Options,
	logger *zap.Logger,
) *Service {
	if metrics == nil {
		metrics = observability.NopMetrics{}
	}
	return &Service{
		repos:    repos,
		embedder: embedder,
		metrics:  metrics,
		opts:     opts,
		logger:   logger,
	}
}

// Retrieve embeds the query, scores every embedded offer by cosine similarity
// and returns the top K in descending score order. Ties keep store order.
// topK <= 0 selects the configured default.
func (s *Service) Retrieve(ctx context.Context, query string, topK int) (*Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, services.ErrEmptyQuery
	}
	k := s.effectiveTopK(topK)

	start := time.Now()
	queryVec, err := s.embedder.Embed(ctx, query)
	s.metrics.RecordStage(observability.StageEmbedQuery, time.Since(start))
	if err != nil {
		s.logger.Error("failed to embed query",
			zap.String("provider", s.embedder.Name()),
			zap.String("code", providers.ErrorCode(err)),
			zap.Error(err))
		return nil, services.NewDomainError(services.ErrorTypeExternal, services.ErrQueryEmbedding.Message, err)
	}
	if len(queryVec) != s.opts.Dimensions {
		return nil, services.NewDomainError(services.ErrorTypeExternal, services.ErrQueryEmbedding.Message,
			fmt.Errorf("query embedding has %d dimensions, want %d", len(queryVec), s.opts.Dimensions))
	}

	start = time.Now()
	offers, err := s.repos.Offers.ListEmbedded(ctx)
	if err != nil {
		return nil, services.NewDomainError(services.ErrorTypeInternal, services.ErrStore.Message, err)
	}

	ranked := s.rank(queryVec, offers)
	s.metrics.RecordStage(observability.StageRank, time.Since(start))
	s.metrics.RecordCandidates(len(ranked))

	if len(ranked) == 0 {
		s.logger.Info("no embedded offers to rank")
		return &Result{Status: StatusNoDocuments}, nil
	}

	candidates := len(ranked)
	if len(ranked) > k {
		ranked = ranked[:k]
	}

	if err := s.resolveParents(ctx, ranked); err != nil {
		return nil, err
	}

	s.logger.Debug("offers ranked",
		zap.Int("candidates", candidates),
		zap.Int("top_k", k),
		zap.Float64("top_score", ranked[0].Score))

	return &Result{
		Results:    ranked,
		Confidence: ranked[0].Score,
		Status:     StatusSuccess,
		Candidates: candidates,
	}, nil
}

// rank scores offers and sorts them by descending similarity.
// Offers whose vector length differs from the configured dimensionality are dropped.
func (s *Service) rank(queryVec []float32, offers []models.Offer) []models.RankedResult {
	ranked := make([]models.RankedResult, 0, len(offers))
	for _, offer := range offers {
		if !offer.HasEmbedding() {
			continue
		}
		vec := offer.Embedding.Slice()
		if len(vec) != s.opts.Dimensions {
			s.logger.Warn("ignoring offer with unexpected embedding dimensions",
				zap.String("offer_id", offer.ID.String()),
				zap.Int("dimensions", len(vec)))
			continue
		}
		ranked = append(ranked, models.RankedResult{
			Offer: offer,
			Score: rag.CosineSimilarity(queryVec, vec),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// resolveParents fills in student and company by point lookup.
// A parent that no longer exists is left nil.
func (s *Service) resolveParents(ctx context.Context, ranked []models.RankedResult) error {
	for i := range ranked {
		offer := &ranked[i].Offer

		student, err := s.repos.Students.GetByID(ctx, offer.StudentID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return services.NewDomainError(services.ErrorTypeInternal, services.ErrStore.Message, err)
		}
		ranked[i].Student = student

		company, err := s.repos.Companies.GetByCompanyID(ctx, offer.CompanyID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return services.NewDomainError(services.ErrorTypeInternal, services.ErrStore.Message, err)
		}
		ranked[i].Company = company

		if student == nil || company == nil {
			s.logger.Warn("ranked offer has unresolved parents",
				zap.String("offer_id", offer.ID.String()),
				zap.Bool("student_found", student != nil),
				zap.Bool("company_found", company != nil))
		}
	}
	return nil
}

func (s *Service) effectiveTopK(requested int) int {
	k := requested
	if k <= 0 {
		k = s.opts.TopK
	}
	if s.opts.MaxTopK > 0 && k > s.opts.MaxTopK {
		k = s.opts.MaxTopK
	}
	if k <= 0 {
		k = 1
	}
	return k
}
