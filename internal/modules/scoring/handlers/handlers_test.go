package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jomolabs/jomo/internal/modules/scoring/domain"
	"github.com/jomolabs/jomo/internal/modules/scoring/rubric"
	"github.com/jomolabs/jomo/internal/modules/scoring/scorers"
)

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	engine := scorers.NewScoreEngine(rubric.Default())
	h := NewHandlers(engine, nil, zerolog.Nop())

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func postScore(t *testing.T, router chi.Router, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/scoring/score", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func fptr(v float64) *float64 { return &v }

func TestHandleScore_GoldenInput(t *testing.T) {
	router := newTestRouter(t)

	rec := postScore(t, router, map[string]interface{}{
		"manual_metrics": map[string]float64{
			"industry_growth":   15,
			"net_profit_growth": 10,
			"mos":               30,
			"dividend_yield":    3,
			"competitiveness":   7,
			"beta":              1.2,
		},
		"target_return": 8,
		"weights": map[string]float64{
			"industry_growth":   20,
			"net_profit_growth": 20,
			"mos":               20,
			"dividend_yield":    20,
			"competitiveness":   20,
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ScoreResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Score)
	require.NotNil(t, resp.Metrics)
	assert.Nil(t, resp.Error)

	assert.InDelta(t, 80.0, resp.Score.WeightedSum, 1e-9)
	assert.InDelta(t, 1.0, resp.Score.RiskMultiplier, 1e-9)
	assert.InDelta(t, 80.0, resp.Score.FinalScore, 1e-9)
	assert.Equal(t, "A", resp.Score.Grade)

	// The response echoes the resolved metrics with provenance, so the UI can
	// mark which cells are manual, AI or default
	assert.Equal(t, domain.ProvenanceManual, resp.Metrics.MOS.Provenance)
	assert.Equal(t, domain.ProvenanceManual, resp.Metrics.TargetReturn.Provenance)
}

func TestHandleScore_DefaultsWhenSparse(t *testing.T) {
	router := newTestRouter(t)

	// No metrics, no weights: rubric defaults plus recommended weights still
	// produce a score
	rec := postScore(t, router, map[string]interface{}{})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ScoreResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Score)
	assert.Equal(t, domain.ProvenanceDefault, resp.Metrics.Beta.Provenance)
	assert.GreaterOrEqual(t, resp.Score.FinalScore, 0.0)
	assert.LessOrEqual(t, resp.Score.FinalScore, 100.0)
}

func TestHandleScore_ManualBeatsAI(t *testing.T) {
	router := newTestRouter(t)

	rec := postScore(t, router, ScoreRequest{
		AI:     domain.MetricOverlay{MOS: fptr(10)},
		Manual: domain.MetricOverlay{MOS: fptr(40)},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ScoreResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 40.0, resp.Metrics.MOS.Value)
	assert.Equal(t, domain.ProvenanceManual, resp.Metrics.MOS.Provenance)
}

func TestHandleScore_ValidationErrors(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name        string
		body        interface{}
		wantInError string
	}{
		{
			name: "zero target return",
			body: map[string]interface{}{
				"target_return": 0,
				"manual_metrics": map[string]float64{
					"target_return": 0,
				},
			},
			wantInError: "target_return",
		},
		{
			name: "negative dividend yield",
			body: map[string]interface{}{
				"manual_metrics": map[string]float64{"dividend_yield": -1},
			},
			wantInError: "dividend_yield",
		},
		{
			name: "negative weight",
			body: map[string]interface{}{
				"weights": map[string]float64{"mos": -10, "dividend_yield": 20},
			},
			wantInError: "weight",
		},
		{
			name: "explicit all-zero weights",
			body: map[string]interface{}{
				"weights": map[string]float64{"mos": 0},
			},
			wantInError: "weight",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postScore(t, router, tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

			var resp ScoreResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Contains(t, *resp.Error, tt.wantInError)
			assert.Nil(t, resp.Score)
		})
	}
}

func TestHandleScore_BadBody(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/scoring/score", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetRubric(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/scoring/rubric", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var r rubric.Rubric
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	assert.Equal(t, "v1", r.Version)
	assert.NotEmpty(t, r.Factors[domain.FactorMOS])
}

func TestHandleGetDefaultWeights(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/scoring/weights/default", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Weights domain.WeightProfile `json:"weights"`
		Total   float64              `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.DefaultWeightProfile(), resp.Weights)
	assert.Equal(t, 100.0, resp.Total)
}
