package embedding

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/placement-rag/internal/observability"
	"github.com/upb/placement-rag/internal/rag"
	"github.com/upb/placement-rag/models"
	"github.com/upb/placement-rag/repositories"
	"go.uber.org/zap"
)

const testDims = 4

// memoryOffers is an in-memory OfferRepository keyed by offer ID
type memoryOffers struct {
	mu        sync.Mutex
	offers    []*models.Offer
	students  map[string]*models.Student
	companies map[string]*models.Company
	listErr   error
	updateErr error
}

func newMemoryOffers() *memoryOffers {
	return &memoryOffers{
		students:  make(map[string]*models.Student),
		companies: make(map[string]*models.Company),
	}
}

func (m *memoryOffers) ListPendingWithRelations(ctx context.Context) ([]models.PendingOffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.PendingOffer
	for _, o := range m.offers {
		if o.HasEmbedding() {
			continue
		}
		out = append(out, models.PendingOffer{
			Offer:   *o,
			Student: m.students[o.StudentID],
			Company: m.companies[o.CompanyID],
		})
	}
	return out, nil
}

func (m *memoryOffers) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	for _, o := range m.offers {
		if o.ID == id && !o.HasEmbedding() {
			v := pgvector.NewVector(embedding)
			o.Embedding = &v
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (m *memoryOffers) ListEmbedded(ctx context.Context) ([]models.Offer, error) {
	return nil, errors.New("not used")
}

func (m *memoryOffers) embeddedCount() int {
	n := 0
	for _, o := range m.offers {
		if o.HasEmbedding() {
			n++
		}
	}
	return n
}

// countingEmbedder returns a fixed vector and records every input
type countingEmbedder struct {
	vector []float32
	err    error
	failOn map[string]bool
	inputs []string
}

func (e *countingEmbedder) Name() string { return "fake" }

func (e *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.inputs = append(e.inputs, text)
	if e.err != nil || e.failOn[text] {
		return nil, errors.New("provider unavailable")
	}
	return e.vector, nil
}

type countingLimiter struct{ waits int }

func (l *countingLimiter) Wait(ctx context.Context) error {
	l.waits++
	return ctx.Err()
}

func seedAcme(repo *memoryOffers) *models.Offer {
	repo.students["S1"] = models.NewStudent("S1", "Asha Rao", "CSE", 8.7)
	repo.companies["C1"] = models.NewCompany("C1", "Acme", "Software", "Pune")
	offer := models.NewOffer("S1", "C1", "SDE")
	ctc := 12.0
	offer.CTCLPA = &ctc
	offer.Duration = "Full-time"
	repo.offers = append(repo.offers, offer)
	return offer
}

func newTestService(repo *memoryOffers, embedder *countingEmbedder, limiter Limiter, countJoinSkips bool) *Service {
	return NewService(repo, embedder, limiter, observability.NopMetrics{},
		Options{Dimensions: testDims, CountJoinSkips: countJoinSkips}, zap.NewNop())
}

func TestService_Run_EmbedsPendingOffer(t *testing.T) {
	repo := newMemoryOffers()
	offer := seedAcme(repo)
	embedder := &countingEmbedder{vector: []float32{0.1, 0.2, 0.3, 0.4}}
	limiter := &countingLimiter{}

	summary, err := newTestService(repo, embedder, limiter, false).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Pending)
	assert.Equal(t, 1, summary.Embedded)
	assert.Equal(t, 0, summary.Skipped())
	assert.Equal(t, 1, limiter.waits)

	require.Len(t, embedder.inputs, 1)
	assert.Contains(t, embedder.inputs[0], "Name: Asha Rao, Roll No: S1, Company: Acme.")
	assert.Contains(t, embedder.inputs[0], "Offer Role: SDE")
	assert.Contains(t, embedder.inputs[0], "CTC (LPA): 12,")

	require.True(t, offer.HasEmbedding())
	assert.Equal(t, []float32{0.1, 0.2, 0.3, 0.4}, offer.Embedding.Slice())
}

func TestService_Run_Idempotent(t *testing.T) {
	repo := newMemoryOffers()
	seedAcme(repo)
	embedder := &countingEmbedder{vector: []float32{1, 0, 0, 0}}
	svc := newTestService(repo, embedder, nil, false)

	_, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, embedder.inputs, 1)

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Pending)
	assert.Equal(t, 0, summary.Embedded)
	assert.Len(t, embedder.inputs, 1, "second run must not call the provider")
}

func TestService_Run_ProviderFailureSkipsRecord(t *testing.T) {
	repo := newMemoryOffers()
	seedAcme(repo)
	second := models.NewOffer("S1", "C1", "Analyst")
	repo.offers = append(repo.offers, second)

	embedder := &countingEmbedder{vector: []float32{1, 1, 1, 1}, failOn: map[string]bool{}}
	svc := newTestService(repo, embedder, nil, false)

	// fail only the first rendered text
	pending, _ := repo.ListPendingWithRelations(context.Background())
	first, err := rag.RenderOfferText(&pending[0].Offer, pending[0].Student, pending[0].Company)
	require.NoError(t, err)
	embedder.failOn[first] = true

	summary, err := svc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Pending)
	assert.Equal(t, 1, summary.Embedded)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.Skipped())
	assert.True(t, second.HasEmbedding())
	assert.Equal(t, 1, repo.embeddedCount())
}

func TestService_Run_DimensionMismatch(t *testing.T) {
	repo := newMemoryOffers()
	offer := seedAcme(repo)
	embedder := &countingEmbedder{vector: []float32{1, 2, 3}}

	summary, err := newTestService(repo, embedder, nil, false).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.DimensionMismatch)
	assert.Equal(t, 0, summary.Embedded)
	assert.False(t, offer.HasEmbedding(), "a wrong-length vector must never be persisted")
}

func TestService_Run_JoinMissing(t *testing.T) {
	tests := []struct {
		name           string
		countJoinSkips bool
		wantSkipped    int
	}{
		{"join misses not counted as skips", false, 0},
		{"join misses counted as skips", true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemoryOffers()
			seedAcme(repo)
			orphan := models.NewOffer("S404", "C1", "Intern")
			repo.offers = append(repo.offers, orphan)
			embedder := &countingEmbedder{vector: []float32{1, 0, 1, 0}}

			summary, err := newTestService(repo, embedder, nil, tt.countJoinSkips).Run(context.Background())
			require.NoError(t, err)

			assert.Equal(t, 1, summary.JoinMissing)
			assert.Equal(t, 1, summary.Embedded)
			assert.Equal(t, tt.wantSkipped, summary.Skipped())
			assert.Len(t, embedder.inputs, 1, "orphan offers are never sent to the provider")
			assert.False(t, orphan.HasEmbedding())
		})
	}
}

func TestService_Run_UpdateFailureCounted(t *testing.T) {
	repo := newMemoryOffers()
	seedAcme(repo)
	repo.updateErr = errors.New("connection reset")
	embedder := &countingEmbedder{vector: []float32{1, 0, 0, 0}}

	summary, err := newTestService(repo, embedder, nil, false).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 0, summary.Embedded)
}

func TestService_Run_ListFailureAborts(t *testing.T) {
	repo := newMemoryOffers()
	repo.listErr = errors.New("relation \"offers\" does not exist")

	summary, err := newTestService(repo, &countingEmbedder{}, nil, false).Run(context.Background())
	assert.Error(t, err)
	assert.Nil(t, summary)
}

func TestService_Run_CancelledContext(t *testing.T) {
	repo := newMemoryOffers()
	seedAcme(repo)
	embedder := &countingEmbedder{vector: []float32{1, 0, 0, 0}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := newTestService(repo, embedder, nil, false).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, summary)
	assert.Equal(t, 0, summary.Embedded)
	assert.Empty(t, embedder.inputs)
}

func TestNewLimiter(t *testing.T) {
	assert.NoError(t, NewLimiter(0).Wait(context.Background()))
	assert.NoError(t, NewLimiter(time.Hour).Wait(context.Background()), "first request is not delayed")
}
