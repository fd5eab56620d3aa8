package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOffer(t *testing.T) {
	offer := NewOffer("21CS042", "C-17", "SDE")

	assert.NotEqual(t, uuid.Nil, offer.ID)
	assert.Equal(t, "21CS042", offer.StudentID)
	assert.Equal(t, "C-17", offer.CompanyID)
	assert.Equal(t, "SDE", offer.Role)
	assert.Nil(t, offer.CTCLPA)
	assert.False(t, offer.HasEmbedding())
	assert.False(t, offer.CreatedAt.IsZero())
	assert.Equal(t, offer.CreatedAt, offer.UpdatedAt)
}

func TestOffer_HasEmbedding(t *testing.T) {
	offer := NewOffer("s", "c", "r")

	empty := pgvector.NewVector(nil)
	offer.Embedding = &empty
	assert.False(t, offer.HasEmbedding())

	vec := pgvector.NewVector([]float32{0.1, 0.2})
	offer.Embedding = &vec
	assert.True(t, offer.HasEmbedding())
}

func TestOffer_JSONOmitsEmbedding(t *testing.T) {
	offer := NewOffer("s", "c", "Analyst")
	vec := pgvector.NewVector([]float32{1, 2, 3})
	offer.Embedding = &vec
	ctc := 12.0
	offer.CTCLPA = &ctc

	data, err := json.Marshal(offer)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.NotContains(t, decoded, "doc_embedding")
	assert.NotContains(t, decoded, "Embedding")
	assert.NotContains(t, decoded, "stipend_kpm")
	assert.Equal(t, 12.0, decoded["ctc_lpa"])
}

func TestPendingOffer_Resolved(t *testing.T) {
	student := NewStudent("21CS042", "A", "CS", 8.5)
	company := NewCompany("C-17", "Acme", "Tech", "Pune")

	assert.True(t, PendingOffer{Student: student, Company: company}.Resolved())
	assert.False(t, PendingOffer{Student: student}.Resolved())
	assert.False(t, PendingOffer{Company: company}.Resolved())
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "offers", Offer{}.TableName())
	assert.Equal(t, "students", Student{}.TableName())
	assert.Equal(t, "companies", Company{}.TableName())
}

func TestNewStudentAndCompany(t *testing.T) {
	student := NewStudent("21CS042", "A", "CS", 8.5)
	assert.Equal(t, "21CS042", student.ID)
	assert.Equal(t, 8.5, student.CGPA)

	company := NewCompany("C-17", "Acme", "Tech", "Pune")
	assert.Equal(t, "C-17", company.CompanyID)
	assert.Equal(t, "Pune", company.HQCity)
}
