package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jomolabs/jomo/internal/modules/scoring/domain"
)

// fakeGemini serves canned generateContent replies and records the last
// request body for assertions.
type fakeGemini struct {
	replyText string
	status    int
	lastBody  genRequest
}

func (f *fakeGemini) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&f.lastBody)

		if f.status != 0 && f.status != http.StatusOK {
			w.WriteHeader(f.status)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]interface{}{"code": f.status, "message": "quota exceeded"},
			})
			return
		}

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"role":  "model",
					"parts": []map[string]string{{"text": f.replyText}},
				}},
			},
		})
	}
}

func newTestService(t *testing.T, fake *fakeGemini) *Service {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	client := NewClient("test-key", "gemini-1.5-flash", zerolog.Nop(),
		WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	return NewService(client, zerolog.Nop())
}

func TestChat(t *testing.T) {
	fake := &fakeGemini{replyText: "Buy low, sell high. Look at ACME."}
	svc := newTestService(t, fake)

	reply := svc.Chat(context.Background(), "Any picks?", []Turn{
		{Role: "user", Text: "Hello"},
		{Role: "model", Text: "Hi, I'm Jomo."},
	})

	assert.Equal(t, "Buy low, sell high. Look at ACME.", reply)

	// History precedes the new message, persona rides in system_instruction
	require.NotNil(t, fake.lastBody.SystemInstruction)
	assert.Contains(t, fake.lastBody.SystemInstruction.Parts[0].Text, "Jomo")
	require.Len(t, fake.lastBody.Contents, 3)
	assert.Equal(t, "Hello", fake.lastBody.Contents[0].Parts[0].Text)
	assert.Equal(t, "Any picks?", fake.lastBody.Contents[2].Parts[0].Text)
}

func TestChat_FallsBackOnAPIError(t *testing.T) {
	fake := &fakeGemini{status: http.StatusTooManyRequests}
	svc := newTestService(t, fake)

	reply := svc.Chat(context.Background(), "Any picks?", nil)
	assert.Equal(t, chatFallback, reply)
}

func TestChat_FallsBackWhenUnconfigured(t *testing.T) {
	client := NewClient("", "gemini-1.5-flash", zerolog.Nop())
	svc := NewService(client, zerolog.Nop())

	assert.False(t, client.Configured())
	reply := svc.Chat(context.Background(), "Any picks?", nil)
	assert.Equal(t, chatFallback, reply)
}

func TestAnalyzeStock(t *testing.T) {
	fake := &fakeGemini{replyText: `{
		"industry_growth": 12.5,
		"net_profit_growth": 8.0,
		"mos": -5.0,
		"dividend_yield": 3.2,
		"competitiveness": 7,
		"beta": 1.4
	}`}
	svc := newTestService(t, fake)

	overlay, err := svc.AnalyzeStock(context.Background(), "ACME")
	require.NoError(t, err)

	require.NotNil(t, overlay.IndustryGrowth)
	assert.Equal(t, 12.5, *overlay.IndustryGrowth)
	require.NotNil(t, overlay.MOS)
	assert.Equal(t, -5.0, *overlay.MOS)
	require.NotNil(t, overlay.Beta)
	assert.Equal(t, 1.4, *overlay.Beta)
	assert.Nil(t, overlay.TargetReturn, "target return is never AI-extracted")

	// JSON mode is requested for extraction
	assert.Equal(t, "application/json", fake.lastBody.GenerationConfig.ResponseMimeType)
	assert.Contains(t, fake.lastBody.Contents[0].Parts[0].Text, "ACME")
}

func TestAnalyzeStock_UnavailableOnFailure(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeGemini
	}{
		{"api error", &fakeGemini{status: http.StatusInternalServerError}},
		{"non-json reply", &fakeGemini{replyText: "I cannot help with that."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, tt.fake)

			overlay, err := svc.AnalyzeStock(context.Background(), "ACME")
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrExtractionUnavailable))
			assert.Equal(t, domain.MetricOverlay{}, overlay, "failure must not leak partial metrics")
		})
	}
}

func TestSuggestWeights(t *testing.T) {
	fake := &fakeGemini{replyText: `{
		"industry_growth": 10,
		"net_profit_growth": 20,
		"mos": 20,
		"dividend_yield": 40,
		"competitiveness": 10
	}`}
	svc := newTestService(t, fake)

	weights := svc.SuggestWeights(context.Background(), "Dividend income", 6)
	assert.Equal(t, 40.0, weights[domain.FactorDividendYield])

	// The suggestion must be usable by the engine as-is
	_, err := weights.Normalize()
	assert.NoError(t, err)
}

func TestSuggestWeights_FallsBackToDefaults(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeGemini
	}{
		{"api error", &fakeGemini{status: http.StatusServiceUnavailable}},
		{"negative weights", &fakeGemini{replyText: `{"industry_growth": -10, "mos": 50}`}},
		{"all-zero weights", &fakeGemini{replyText: `{}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, tt.fake)

			weights := svc.SuggestWeights(context.Background(), "Growth", 15)
			assert.Equal(t, domain.DefaultWeightProfile(), weights)
		})
	}
}

func TestVerdict(t *testing.T) {
	fake := &fakeGemini{replyText: "  Solid value pick. The wide margin of safety offsets the beta.  "}
	svc := newTestService(t, fake)

	m := domain.MetricSet{
		MOS:           domain.Metric{Value: 30},
		DividendYield: domain.Metric{Value: 3},
		Beta:          domain.Metric{Value: 1.2},
	}
	score := &domain.Score{FinalScore: 80, Grade: "A", RiskMultiplier: 1.0}

	verdict, err := svc.Verdict(context.Background(), "ACME", m, score)
	require.NoError(t, err)
	assert.Equal(t, "Solid value pick. The wide margin of safety offsets the beta.", verdict)
	assert.Contains(t, fake.lastBody.Contents[0].Parts[0].Text, "Grade A")
}

func TestVerdict_ErrorsOnFailure(t *testing.T) {
	fake := &fakeGemini{status: http.StatusInternalServerError}
	svc := newTestService(t, fake)

	_, err := svc.Verdict(context.Background(), "ACME", domain.MetricSet{}, &domain.Score{})
	assert.Error(t, err)
}

func TestStrategy(t *testing.T) {
	fake := &fakeGemini{replyText: "Diversify beyond tech.\n- Trim ACME\n- Add a dividend payer\n- Rebalance quarterly"}
	svc := newTestService(t, fake)

	strategy, err := svc.Strategy(context.Background(), "ACME (A, 80), OTHER (C, 40)", 8)
	require.NoError(t, err)
	assert.Contains(t, strategy, "Diversify")
	assert.Contains(t, fake.lastBody.Contents[0].Parts[0].Text, "8.0%")
}

func TestStrategy_ErrorsOnFailure(t *testing.T) {
	fake := &fakeGemini{status: http.StatusBadGateway}
	svc := newTestService(t, fake)

	_, err := svc.Strategy(context.Background(), "ACME", 8)
	assert.Error(t, err)
}
