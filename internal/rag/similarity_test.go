package rag

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"scaled", []float32{1, 2, 3}, []float32{2, 4, 6}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, -1}, []float32{-1, 1}, -1},
		{"nil a", nil, []float32{1}, SimilaritySentinel},
		{"both nil", nil, nil, SimilaritySentinel},
		{"empty", []float32{}, []float32{}, SimilaritySentinel},
		{"unequal length", []float32{1, 2}, []float32{1, 2, 3}, SimilaritySentinel},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, SimilaritySentinel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, CosineSimilarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestCosineSimilarity_Symmetric(t *testing.T) {
	pairs := [][2][]float32{
		{{0.1, 0.7, -0.3}, {0.5, -0.2, 0.9}},
		{{3, 1, 4, 1, 5}, {9, 2, 6, 5, 3}},
		{{-1, -2}, {2, 1}},
	}

	for _, p := range pairs {
		assert.Equal(t, CosineSimilarity(p[0], p[1]), CosineSimilarity(p[1], p[0]))
	}
}

func TestCosineSimilarity_SelfSimilarity(t *testing.T) {
	vec := make([]float32, 768)
	for i := range vec {
		vec[i] = float32(math.Sin(float64(i)))
	}
	assert.InDelta(t, 1.0, CosineSimilarity(vec, vec), 1e-9)
}

func TestCosineSimilarity_Bounded(t *testing.T) {
	vecs := [][]float32{
		{1e-20, 1e-20},
		{3.4e38, 3.4e38},
		{0.3333333, 0.6666667},
	}
	for _, v := range vecs {
		got := CosineSimilarity(v, v)
		assert.LessOrEqual(t, got, 1.0)
		assert.GreaterOrEqual(t, got, -1.0)
	}
}
