package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jomolabs/jomo/internal/modules/scoring/domain"
)

// Persona system prompts.
const (
	chatPersona = "You are Jomo, a witty investment consultant. " +
		"Keep answers short, helpful, and suggest specific stock tickers."

	extractorPersona = "You are a financial data extractor. Output ONLY valid JSON."

	strategistPersona = "You are Jomo, an investment strategist. Output ONLY valid JSON."
)

// chatFallback is returned when the model is unreachable, so the dashboard
// always has something to show in the chat panel.
const chatFallback = "I'm having trouble connecting to my brain right now. Please check the API key."

// Service exposes the Jomo persona operations to the HTTP layer.
type Service struct {
	client *Client
	log    zerolog.Logger
}

// NewService creates the advisor service.
func NewService(client *Client, log zerolog.Logger) *Service {
	return &Service{
		client: client,
		log:    log.With().Str("module", "advisor").Logger(),
	}
}

// Chat sends a user message (with prior turns) to the Jomo persona.
// Model failures degrade to a canned reply rather than an error; chat is a
// convenience surface and must never look broken next to a working scorer.
func (s *Service) Chat(ctx context.Context, message string, history []Turn) string {
	reply, err := s.client.Generate(ctx, chatPersona, message, history)
	if err != nil {
		s.log.Warn().Err(err).Msg("Chat generation failed")
		return chatFallback
	}
	return reply
}

// AnalyzeStock asks the model to extract the six extractable metrics for a
// symbol (target return is always user-supplied). On any failure it returns
// an empty overlay and ErrExtractionUnavailable; the override resolver then
// falls back to manual values and rubric defaults, so scoring keeps working.
func (s *Service) AnalyzeStock(ctx context.Context, symbol string) (domain.MetricOverlay, error) {
	prompt := fmt.Sprintf(`Analyze stock %s. Extract these EXACT metrics (estimate if needed for Thai/Global context):
1. industry_growth (Float %%) - 3yr industry CAGR
2. net_profit_growth (Float %%) - 5yr net profit CAGR
3. mos (Float %%) - margin of safety vs sector valuation, negative if expensive
4. dividend_yield (Float %%)
5. competitiveness (Float 0-10) - competitive position vs peers
6. beta (Float)

Return JSON only:
{"industry_growth": float, "net_profit_growth": float, "mos": float, "dividend_yield": float, "competitiveness": float, "beta": float}`, symbol)

	var overlay domain.MetricOverlay
	if err := s.client.GenerateJSON(ctx, extractorPersona, prompt, &overlay); err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("Metric extraction failed")
		return domain.MetricOverlay{}, fmt.Errorf("%w: %s", domain.ErrExtractionUnavailable, symbol)
	}

	// The overlay's target_return field is never AI-extracted
	overlay.TargetReturn = nil

	return overlay, nil
}

// SuggestWeights asks the persona for factor weights (total 100) tuned to the
// project's intent. Invalid or unreachable responses fall back to the
// recommended defaults.
func (s *Service) SuggestWeights(ctx context.Context, projectName string, targetReturn float64) domain.WeightProfile {
	prompt := fmt.Sprintf(`Acting as Jomo (Investment Strategist), suggest the optimal weighting (Total 100%%) for:
1. industry_growth (Industry Growth)
2. net_profit_growth (Net Profit Growth)
3. mos (Valuation/MOS)
4. dividend_yield (Dividend Yield)
5. competitiveness (Competitiveness)

Context: Project Name "%s", Target Return %.1f%%.
If the project implies dividends, boost yield. If growth, boost industry/profit.

Return JSON only: {"industry_growth": number, "net_profit_growth": number, "mos": number, "dividend_yield": number, "competitiveness": number}`,
		projectName, targetReturn)

	var weights domain.WeightProfile
	if err := s.client.GenerateJSON(ctx, strategistPersona, prompt, &weights); err != nil {
		s.log.Warn().Err(err).Str("project", projectName).Msg("Weight suggestion failed, using defaults")
		return domain.DefaultWeightProfile()
	}

	// Reject profiles the engine would refuse
	if _, err := weights.Normalize(); err != nil {
		s.log.Warn().Err(err).Str("project", projectName).Msg("Suggested weights invalid, using defaults")
		return domain.DefaultWeightProfile()
	}

	return weights
}

// Verdict writes a two-sentence verdict for a scored stock.
func (s *Service) Verdict(ctx context.Context, symbol string, m domain.MetricSet, score *domain.Score) (string, error) {
	prompt := fmt.Sprintf(`Acting as a senior investment analyst, write a concise 2-sentence verdict for %s.
Key Data: MOS %.1f%%, Dividend Yield %.1f%%, Beta %.2f.
The model scored it %.0f/100 (Grade %s, risk multiplier %.2f).
Explain why it got this score based on the Master Scoring Model rules.`,
		symbol, m.MOS.Value, m.DividendYield.Value, m.Beta.Value,
		score.FinalScore, score.Grade, score.RiskMultiplier)

	verdict, err := s.client.Generate(ctx, "", prompt, nil)
	if err != nil {
		return "", fmt.Errorf("verdict generation failed: %w", err)
	}
	return strings.TrimSpace(verdict), nil
}

// Strategy writes a portfolio-level strategy summary.
func (s *Service) Strategy(ctx context.Context, portfolioSummary string, targetReturn float64) (string, error) {
	prompt := fmt.Sprintf(`Analyze this stock portfolio: [%s].
Target Return is %.1f%%.
Provide a summary of the portfolio's overall quality and 3 concise bullet points for optimization strategy.`,
		portfolioSummary, targetReturn)

	strategy, err := s.client.Generate(ctx, "", prompt, nil)
	if err != nil {
		return "", fmt.Errorf("strategy generation failed: %w", err)
	}
	return strings.TrimSpace(strategy), nil
}
