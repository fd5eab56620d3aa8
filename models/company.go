package models

import "time"

// Company is the recruiting organization. CompanyID is its business key,
// independent of offer identifiers.
type Company struct {
	CompanyID string    `json:"company_id" db:"company_id"`
	Name      string    `json:"name" db:"name"`
	Sector    string    `json:"sector" db:"sector"`
	HQCity    string    `json:"hq_city" db:"hq_city"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Company model
func (Company) TableName() string {
	return "companies"
}

// NewCompany creates a new Company instance
func NewCompany(companyID, name, sector, hqCity string) *Company {
	now := time.Now()
	return &Company{
		CompanyID: companyID,
		Name:      name,
		Sector:    sector,
		HQCity:    hqCity,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
