package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Offer is a placement offer made by a company to a student.
// Embedding stays nil until the batch embedder has processed the offer.
type Offer struct {
	ID         uuid.UUID        `json:"id" db:"id"`
	StudentID  string           `json:"student_id" db:"student_id"`
	CompanyID  string           `json:"company_id" db:"company_id"`
	Role       string           `json:"role" db:"role"`
	CTCLPA     *float64         `json:"ctc_lpa,omitempty" db:"ctc_lpa"`         // annual CTC in lakhs
	StipendKPM *float64         `json:"stipend_kpm,omitempty" db:"stipend_kpm"` // monthly stipend in thousands
	Duration   string           `json:"duration" db:"duration"`
	Details    string           `json:"details" db:"details"`
	Embedding  *pgvector.Vector `json:"-" db:"doc_embedding"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Offer model
func (Offer) TableName() string {
	return "offers"
}

// NewOffer creates a new Offer instance without an embedding
func NewOffer(studentID, companyID, role string) *Offer {
	now := time.Now()
	return &Offer{
		ID:        uuid.New(),
		StudentID: studentID,
		CompanyID: companyID,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasEmbedding reports whether a vector has been attached to the offer
func (o *Offer) HasEmbedding() bool {
	return o.Embedding != nil && len(o.Embedding.Slice()) > 0
}

// PendingOffer is an offer lacking an embedding together with its joined parents.
// Student or Company is nil when the referenced row no longer exists.
type PendingOffer struct {
	Offer   Offer
	Student *Student
	Company *Company
}

// Resolved reports whether both parents were found
func (p PendingOffer) Resolved() bool {
	return p.Student != nil && p.Company != nil
}

// RankedResult is a scored offer with its parents resolved at query time.
// It only lives for the duration of one request.
type RankedResult struct {
	Offer   Offer
	Student *Student
	Company *Company
	Score   float64
}
