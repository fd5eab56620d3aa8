package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/upb/placement-rag/models"
)

// ErrNotFound is returned when a lookup or targeted update matches no row
var ErrNotFound = errors.New("record not found")

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction.
	// Commits if fn succeeds, rolls back on error.
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	Commit() error
	Rollback() error
	Context() context.Context
}

// OfferRepository handles offer data operations used by the RAG pipeline
type OfferRepository interface {
	// ListPendingWithRelations returns every offer without an embedding,
	// joined with its student and company. Parents that do not resolve are nil.
	ListPendingWithRelations(ctx context.Context) ([]models.PendingOffer, error)

	// UpdateEmbedding attaches a vector to an offer that has none yet.
	// Returns ErrNotFound when the offer is gone or was embedded concurrently.
	UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error

	// ListEmbedded returns every offer carrying an embedding, in insertion order,
	// with only the columns needed for ranking and context assembly.
	ListEmbedded(ctx context.Context) ([]models.Offer, error)
}

// StudentRepository handles student lookups
type StudentRepository interface {
	// GetByID retrieves a student by roll number. Returns ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*models.Student, error)
}

// CompanyRepository handles company lookups
type CompanyRepository interface {
	// GetByCompanyID retrieves a company by its business key. Returns ErrNotFound when absent.
	GetByCompanyID(ctx context.Context, companyID string) (*models.Company, error)
}

// Repositories holds all repository instances
type Repositories struct {
	Offers    OfferRepository
	Students  StudentRepository
	Companies CompanyRepository
}
