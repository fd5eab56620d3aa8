package rag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/placement-rag/models"
)

func float(v float64) *float64 { return &v }

func sampleTriple() (*models.Offer, *models.Student, *models.Company) {
	offer := models.NewOffer("21CS042", "C-17", "SDE")
	offer.CTCLPA = float(12)
	student := models.NewStudent("21CS042", "A", "CS", 8.5)
	company := models.NewCompany("C-17", "Acme", "Tech", "")
	return offer, student, company
}

func TestRenderOfferText(t *testing.T) {
	offer, student, company := sampleTriple()

	text, err := RenderOfferText(offer, student, company)
	require.NoError(t, err)

	for _, want := range []string{"SDE", "12", "A", "CS", "8.5", "Acme", "Tech"} {
		assert.Contains(t, text, want)
	}
	assert.Equal(t,
		"Student Offer Details: Name: A, Roll No: 21CS042, Company: Acme. "+
			"Branch: CS, Sector: Tech, HQ: , Offer Role: SDE, Duration: , Offer Details: . "+
			"CGPA: 8.5, CTC (LPA): 12, Stipend (KPM): .",
		text)
}

func TestRenderOfferText_Deterministic(t *testing.T) {
	offer, student, company := sampleTriple()
	offer.Details = "Backend   platform\nteam,\twork from office"

	first, err := RenderOfferText(offer, student, company)
	require.NoError(t, err)
	second, err := RenderOfferText(offer, student, company)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotContains(t, first, "\n")
	assert.NotContains(t, first, "\t")
	assert.NotContains(t, first, "  ")
	assert.Contains(t, first, "Backend platform team, work from office")
}

func TestRenderOfferText_FieldOrder(t *testing.T) {
	offer, student, company := sampleTriple()
	text, err := RenderOfferText(offer, student, company)
	require.NoError(t, err)

	name := strings.Index(text, "Name:")
	branch := strings.Index(text, "Branch:")
	cgpa := strings.Index(text, "CGPA:")
	assert.Less(t, name, branch)
	assert.Less(t, branch, cgpa)
}

func TestRenderOfferText_IncompleteJoin(t *testing.T) {
	offer, student, company := sampleTriple()

	_, err := RenderOfferText(offer, nil, company)
	assert.ErrorIs(t, err, ErrIncompleteJoin)

	_, err = RenderOfferText(offer, student, nil)
	assert.ErrorIs(t, err, ErrIncompleteJoin)

	_, err = RenderOfferText(nil, student, company)
	assert.ErrorIs(t, err, ErrIncompleteJoin)
}
