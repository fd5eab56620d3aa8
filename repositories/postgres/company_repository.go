package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/upb/placement-rag/models"
	"github.com/upb/placement-rag/repositories"
	"go.uber.org/zap"
)

// CompanyRepository implements repositories.CompanyRepository
type CompanyRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *DB, logger *zap.Logger) *CompanyRepository {
	return &CompanyRepository{
		db:     db,
		logger: logger,
	}
}

// GetByCompanyID retrieves a company by its business key
func (r *CompanyRepository) GetByCompanyID(ctx context.Context, companyID string) (*models.Company, error) {
	query := `
		SELECT company_id, name, sector, hq_city, created_at, updated_at
		FROM companies
		WHERE company_id = $1
	`

	company := &models.Company{}
	err := GetExecutor(ctx, r.db).QueryRowContext(ctx, query, companyID).Scan(
		&company.CompanyID,
		&company.Name,
		&company.Sector,
		&company.HQCity,
		&company.CreatedAt,
		&company.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("company %s: %w", companyID, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	return company, nil
}
