package rag

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/upb/placement-rag/models"
)

// ErrIncompleteJoin is returned when an offer is rendered without its student or company
var ErrIncompleteJoin = errors.New("offer is missing its student or company")

// RenderOfferText renders an offer and its parents as the single line of text
// that gets embedded. Field order is fixed: identity, descriptive, measurement.
// Identical inputs always produce identical output.
func RenderOfferText(offer *models.Offer, student *models.Student, company *models.Company) (string, error) {
	if offer == nil || student == nil || company == nil {
		return "", ErrIncompleteJoin
	}

	text := fmt.Sprintf(
		"Student Offer Details: Name: %s, Roll No: %s, Company: %s. "+
			"Branch: %s, Sector: %s, HQ: %s, Offer Role: %s, Duration: %s, Offer Details: %s. "+
			"CGPA: %s, CTC (LPA): %s, Stipend (KPM): %s.",
		student.Name, student.ID, company.Name,
		student.Branch, company.Sector, company.HQCity, offer.Role, offer.Duration, offer.Details,
		formatNumber(&student.CGPA), formatNumber(offer.CTCLPA), formatNumber(offer.StipendKPM),
	)

	return collapseWhitespace(text), nil
}

func formatNumber(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
