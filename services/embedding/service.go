package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/upb/placement-rag/internal/observability"
	"github.com/upb/placement-rag/internal/rag"
	"github.com/upb/placement-rag/models"
	"github.com/upb/placement-rag/repositories"
	"github.com/upb/placement-rag/services/providers"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Outcome labels reported to metrics
const (
	OutcomeEmbedded          = "embedded"
	OutcomeFailed            = "failed"
	OutcomeDimensionMismatch = "dimension_mismatch"
	OutcomeJoinMissing       = "join_missing"
)

// Limiter paces outbound embedding calls. *rate.Limiter satisfies it.
type Limiter interface {
	Wait(ctx context.Context) error
}

// NewLimiter returns a limiter allowing one request per interval.
// A zero interval disables pacing.
func NewLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

// Options configures a Service
type Options struct {
	Dimensions     int
	CountJoinSkips bool
}

// Summary reports what one batch run did
type Summary struct {
	Pending           int
	Embedded          int
	Failed            int
	DimensionMismatch int
	JoinMissing       int
	Duration          time.Duration

	countJoinSkips bool
}

// Skipped returns the number of offers left without an embedding because of
// a provider failure or a wrong vector length. Offers with a dangling student
// or company are included only when join skips are counted.
func (s *Summary) Skipped() int {
	skipped := s.Failed + s.DimensionMismatch
	if s.countJoinSkips {
		skipped += s.JoinMissing
	}
	return skipped
}

// Service is the batch job that attaches embeddings to offers lacking one
type Service struct {
	offers   repositories.OfferRepository
	embedder providers.Embedder
	limiter  Limiter
	metrics  observability.Metrics
	opts     Options
	logger   *zap.Logger
}

// NewService creates a new embedding service
func NewService(
	offers repositories.OfferRepository,
	embedder providers.Embedder,
	limiter Limiter,
	metrics observability.Metrics,
	opts Options,
	logger *zap.Logger,
) *Service {
	if metrics == nil {
		metrics = observability.NopMetrics{}
	}
	return &Service{
		offers:   offers,
		embedder: embedder,
		limiter:  limiter,
		metrics:  metrics,
		opts:     opts,
		logger:   logger,
	}
}

// Run embeds every pending offer once, sequentially.
// Per-offer failures are logged and counted; only a failure to list pending
// offers or a cancelled context aborts the run.
func (s *Service) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()

	pending, err := s.offers.ListPendingWithRelations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending offers: %w", err)
	}

	summary := &Summary{Pending: len(pending), countJoinSkips: s.opts.CountJoinSkips}
	s.logger.Info("embedding run started",
		zap.Int("pending", summary.Pending),
		zap.String("provider", s.embedder.Name()))

	for i := range pending {
		if err := ctx.Err(); err != nil {
			summary.Duration = time.Since(start)
			return summary, err
		}
		if err := s.embedOne(ctx, &pending[i], summary); err != nil {
			summary.Duration = time.Since(start)
			return summary, err
		}
	}

	summary.Duration = time.Since(start)
	if summary.Pending == 0 {
		s.logger.Info("all offers already have embeddings")
	} else {
		s.logger.Info(fmt.Sprintf("created embeddings for %d new offers", summary.Embedded),
			zap.Int("failed", summary.Failed),
			zap.Int("dimension_mismatch", summary.DimensionMismatch),
			zap.Int("join_missing", summary.JoinMissing),
			zap.Int("skipped", summary.Skipped()),
			zap.Duration("duration", summary.Duration))
	}
	return summary, nil
}

// embedOne returns an error only when the run must stop
func (s *Service) embedOne(ctx context.Context, p *models.PendingOffer, summary *Summary) error {
	offerID := p.Offer.ID.String()

	text, err := rag.RenderOfferText(&p.Offer, p.Student, p.Company)
	if err != nil {
		s.logger.Warn("skipping offer with unresolved student or company",
			zap.String("offer_id", offerID),
			zap.String("student_id", p.Offer.StudentID),
			zap.String("company_id", p.Offer.CompanyID))
		summary.JoinMissing++
		s.metrics.RecordEmbedOutcome(OutcomeJoinMissing)
		return nil
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	callStart := time.Now()
	vector, err := s.embedder.Embed(ctx, text)
	s.metrics.RecordStage(observability.StageEmbedDoc, time.Since(callStart))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		s.logger.Error("failed to embed offer",
			zap.String("offer_id", offerID),
			zap.String("code", providers.ErrorCode(err)),
			zap.Bool("retryable", providers.IsRetryable(err)),
			zap.Error(err))
		summary.Failed++
		s.metrics.RecordEmbedOutcome(OutcomeFailed)
		return nil
	}

	if len(vector) != s.opts.Dimensions {
		s.logger.Error("embedding has unexpected dimensions",
			zap.String("offer_id", offerID),
			zap.Int("got", len(vector)),
			zap.Int("want", s.opts.Dimensions))
		summary.DimensionMismatch++
		s.metrics.RecordEmbedOutcome(OutcomeDimensionMismatch)
		return nil
	}

	if err := s.offers.UpdateEmbedding(ctx, p.Offer.ID, vector); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			s.logger.Warn("offer was embedded or removed concurrently", zap.String("offer_id", offerID))
		} else {
			s.logger.Error("failed to store embedding", zap.String("offer_id", offerID), zap.Error(err))
		}
		summary.Failed++
		s.metrics.RecordEmbedOutcome(OutcomeFailed)
		return nil
	}

	summary.Embedded++
	s.metrics.RecordEmbedOutcome(OutcomeEmbedded)
	return nil
}
