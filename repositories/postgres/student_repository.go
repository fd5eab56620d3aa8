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

// StudentRepository implements repositories.StudentRepository
type StudentRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *DB, logger *zap.Logger) *StudentRepository {
	return &StudentRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves a student by roll number
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*models.Student, error) {
	query := `
		SELECT id, name, branch, cgpa, created_at, updated_at
		FROM students
		WHERE id = $1
	`

	student := &models.Student{}
	err := GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&student.ID,
		&student.Name,
		&student.Branch,
		&student.CGPA,
		&student.CreatedAt,
		&student.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("student %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	return student, nil
}
