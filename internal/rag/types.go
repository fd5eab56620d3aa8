package rag

import "github.com/upb/placement-rag/models"

// ContextEntry is the compact, flattened view of one ranked offer.
// It is serialized into the generation context and returned to API clients.
// Student and company fields are nil when the join did not resolve.
type ContextEntry struct {
	Similarity    float64  `json:"similarity"`
	Role          string   `json:"role"`
	CTCLPA        *float64 `json:"ctc_lpa"`
	StipendKPM    *float64 `json:"stipend_kpm"`
	Duration      string   `json:"duration"`
	Details       string   `json:"details"`
	StudentName   *string  `json:"student_name"`
	StudentBranch *string  `json:"student_branch"`
	StudentCGPA   *float64 `json:"student_cgpa"`
	CompanyName   *string  `json:"company_name"`
	CompanySector *string  `json:"company_sector"`
}

// NewContextEntry flattens a ranked result
func NewContextEntry(r models.RankedResult) ContextEntry {
	entry := ContextEntry{
		Similarity: r.Score,
		Role:       r.Offer.Role,
		CTCLPA:     r.Offer.CTCLPA,
		StipendKPM: r.Offer.StipendKPM,
		Duration:   r.Offer.Duration,
		Details:    r.Offer.Details,
	}
	if s := r.Student; s != nil {
		entry.StudentName = &s.Name
		entry.StudentBranch = &s.Branch
		entry.StudentCGPA = &s.CGPA
	}
	if c := r.Company; c != nil {
		entry.CompanyName = &c.Name
		entry.CompanySector = &c.Sector
	}
	return entry
}

// NewContextEntries flattens results preserving rank order
func NewContextEntries(results []models.RankedResult) []ContextEntry {
	entries := make([]ContextEntry, 0, len(results))
	for _, r := range results {
		entries = append(entries, NewContextEntry(r))
	}
	return entries
}

// Prompt is the complete input handed to a generator
type Prompt struct {
	Instruction string
	Context     string
	Input       string
	// Entries is the number of ranked results that fit into Context
	Entries int
}
