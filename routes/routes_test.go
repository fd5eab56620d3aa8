package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/placement-rag/app"
	"github.com/upb/placement-rag/config"
	"github.com/upb/placement-rag/middleware"
	"github.com/upb/placement-rag/models"
	"github.com/upb/placement-rag/services/answer"
	"github.com/upb/placement-rag/services/retrieval"
	"go.uber.org/zap"
)

type stubRetriever struct {
	result *retrieval.Result
}

func (s *stubRetriever) Retrieve(ctx context.Context, query string, topK int) (*retrieval.Result, error) {
	return s.result, nil
}

type stubGenerator struct {
	calls int
}

func (g *stubGenerator) Name() string { return "stub" }

func (g *stubGenerator) Generate(ctx context.Context, instruction, input string) (string, error) {
	g.calls++
	return "Asha Rao received an SDE offer from Acme.", nil
}

func newTestRouter(result *retrieval.Result) (http.Handler, *stubGenerator) {
	gen := &stubGenerator{}
	deps := &app.Dependencies{
		Config: &config.Config{Server: config.ServerConfig{AllowedOrigins: []string{"*"}}},
		Logger: zap.NewNop(),
		Answer: answer.NewService(&stubRetriever{result: result}, gen, nil, 0, zap.NewNop()),
	}
	return SetupRoutes(deps), gen
}

func acmeResult() *retrieval.Result {
	return &retrieval.Result{
		Status:     retrieval.StatusSuccess,
		Confidence: 0.87,
		Results: []models.RankedResult{{
			Offer:   models.Offer{Role: "SDE", StudentID: "S1", CompanyID: "C1"},
			Student: models.NewStudent("S1", "Asha Rao", "CSE", 8.7),
			Company: models.NewCompany("C1", "Acme", "Software", "Pune"),
			Score:   0.87,
		}},
	}
}

func TestRoutes_Answer(t *testing.T) {
	for _, path := range []string{"/api/v1/placements/answer", "/api/rag-placements-answer"} {
		t.Run(path, func(t *testing.T) {
			router, gen := newTestRouter(acmeResult())

			req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"userInput":"Who got an SDE offer?"}`))
			req.Header.Set(middleware.RequestIDHeader, "req-7")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "req-7", w.Header().Get(middleware.RequestIDHeader))
			assert.Equal(t, 1, gen.calls)

			var body map[string]map[string]interface{}
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			data := body["data"]
			assert.Equal(t, "req-7", data["request_id"])
			assert.Equal(t, 0.87, data["confidence"])
			assert.Equal(t, "Asha Rao received an SDE offer from Acme.", data["answer"])
			assert.Len(t, data["context"], 1)
		})
	}
}

func TestRoutes_AnswerNoDocuments(t *testing.T) {
	router, gen := newTestRouter(&retrieval.Result{Status: retrieval.StatusNoDocuments})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/placements/answer", strings.NewReader(`{"userInput":"anything"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, gen.calls)

	var body map[string]map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "No documents found.", body["data"]["answer"])
	assert.Equal(t, 0.0, body["data"]["confidence"])
	assert.Equal(t, []interface{}{}, body["data"]["context"])
}

func TestRoutes_EmptyInput(t *testing.T) {
	router, gen := newTestRouter(acmeResult())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/placements/answer", strings.NewReader(`{"userInput":"  "}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, gen.calls)
}

func TestRoutes_Health(t *testing.T) {
	router, _ := newTestRouter(acmeResult())

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/", http.StatusOK},
		{"/healthz", http.StatusOK},
		{"/readyz", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRoutes_NotFoundAndMethod(t *testing.T) {
	router, _ := newTestRouter(acmeResult())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/placements/answer", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRoutes_CORSPreflight(t *testing.T) {
	router, _ := newTestRouter(acmeResult())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/placements/answer", nil)
	req.Header.Set("Origin", "https://placements.example.edu")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
