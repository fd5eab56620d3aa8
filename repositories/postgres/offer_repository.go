package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/upb/placement-rag/models"
	"github.com/upb/placement-rag/repositories"
	"go.uber.org/zap"
)

// OfferRepository implements repositories.OfferRepository on Postgres + pgvector
type OfferRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewOfferRepository creates a new offer repository
func NewOfferRepository(db *DB, logger *zap.Logger) *OfferRepository {
	return &OfferRepository{
		db:     db,
		logger: logger,
	}
}

// ListPendingWithRelations selects offers lacking an embedding in a single
// LEFT JOIN so that offers with a dangling student or company are reported
// instead of silently disappearing.
func (r *OfferRepository) ListPendingWithRelations(ctx context.Context) ([]models.PendingOffer, error) {
	query := `
		SELECT o.id, o.student_id, o.company_id, o.role, o.ctc_lpa, o.stipend_kpm,
			o.duration, o.details, o.created_at, o.updated_at,
			s.id, s.name, s.branch, s.cgpa,
			c.company_id, c.name, c.sector, c.hq_city
		FROM offers o
		LEFT JOIN students s ON s.id = o.student_id
		LEFT JOIN companies c ON c.company_id = o.company_id
		WHERE o.doc_embedding IS NULL
		ORDER BY o.created_at, o.id
	`

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending offers: %w", err)
	}
	defer rows.Close()

	var pending []models.PendingOffer
	for rows.Next() {
		var (
			p                                      models.PendingOffer
			ctc, stipend                           sql.NullFloat64
			studentID, studentName, studentBranch  sql.NullString
			studentCGPA                            sql.NullFloat64
			companyID, companyName, sector, hqCity sql.NullString
		)

		if err := rows.Scan(
			&p.Offer.ID,
			&p.Offer.StudentID,
			&p.Offer.CompanyID,
			&p.Offer.Role,
			&ctc,
			&stipend,
			&p.Offer.Duration,
			&p.Offer.Details,
			&p.Offer.CreatedAt,
			&p.Offer.UpdatedAt,
			&studentID,
			&studentName,
			&studentBranch,
			&studentCGPA,
			&companyID,
			&companyName,
			&sector,
			&hqCity,
		); err != nil {
			return nil, fmt.Errorf("failed to scan pending offer: %w", err)
		}

		p.Offer.CTCLPA = nullableFloat(ctc)
		p.Offer.StipendKPM = nullableFloat(stipend)

		if studentID.Valid {
			p.Student = &models.Student{
				ID:     studentID.String,
				Name:   studentName.String,
				Branch: studentBranch.String,
				CGPA:   studentCGPA.Float64,
			}
		}
		if companyID.Valid {
			p.Company = &models.Company{
				CompanyID: companyID.String,
				Name:      companyName.String,
				Sector:    sector.String,
				HQCity:    hqCity.String,
			}
		}

		pending = append(pending, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending offers: %w", err)
	}

	r.logger.Debug("pending offers listed", zap.Int("count", len(pending)))
	return pending, nil
}

// UpdateEmbedding stores the vector only if the offer has none yet, so a
// concurrent or repeated run can never overwrite an existing embedding.
func (r *OfferRepository) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	query := `
		UPDATE offers SET doc_embedding = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2 AND doc_embedding IS NULL
	`

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, pgvector.NewVector(embedding), id)
	if err != nil {
		return fmt.Errorf("failed to update offer embedding: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("offer %s without embedding: %w", id, repositories.ErrNotFound)
	}

	r.logger.Debug("offer embedding stored",
		zap.String("offer_id", id.String()),
		zap.Int("dimensions", len(embedding)))
	return nil
}

// ListEmbedded returns embedded offers in insertion order
func (r *OfferRepository) ListEmbedded(ctx context.Context) ([]models.Offer, error) {
	query := `
		SELECT id, student_id, company_id, role, ctc_lpa, stipend_kpm, duration, details, doc_embedding
		FROM offers
		WHERE doc_embedding IS NOT NULL
		ORDER BY created_at, id
	`

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list embedded offers: %w", err)
	}
	defer rows.Close()

	var offers []models.Offer
	for rows.Next() {
		var (
			offer        models.Offer
			ctc, stipend sql.NullFloat64
			embedding    pgvector.Vector
		)

		if err := rows.Scan(
			&offer.ID,
			&offer.StudentID,
			&offer.CompanyID,
			&offer.Role,
			&ctc,
			&stipend,
			&offer.Duration,
			&offer.Details,
			&embedding,
		); err != nil {
			return nil, fmt.Errorf("failed to scan embedded offer: %w", err)
		}

		offer.CTCLPA = nullableFloat(ctc)
		offer.StipendKPM = nullableFloat(stipend)
		offer.Embedding = &embedding
		offers = append(offers, offer)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating embedded offers: %w", err)
	}

	return offers, nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
