package analyzer

import "strings"

const promptBase = `
You are a professional technical market analyst.
Study the candlestick chart carefully and form a clear market view.
`

const focusGeneric = `
Focus on price structure, trend direction, momentum,
and important support or resistance zones.
`

const focusEquity = `
Focus on trend strength, swing structure, volume behavior,
and positional continuation or reversal zones.
`

const focusCommodity = `
Focus on volatility behavior, momentum expansion,
and supply-demand zones.
`

const focusOptions = `
Focus on directional bias, volatility conditions,
risk awareness, and potential time decay impact.
`

const focusDerivatives = `
Focus on momentum strength, leverage impact,
and clear invalidation levels.
`

const focusFallback = `
Focus on price structure and risk-aware trade assessment.
`

const outputRules = `
IMPORTANT OUTPUT RULES:
- Write analysis as short, clear points
- Do NOT use markdown, symbols, or headings
- Keep it concise and human-like
`

const analysisGuidelines = `
You are a professional technical analyst writing a real market note for traders.

Carefully study the candlestick chart and the provided trade details.
Treat the chart as the primary source of truth and the trade details as the intended setup.

HOW TO ANALYZE:
- First understand the overall market structure (trend, range, compression, breakout, reversal)
- Observe recent price behavior and momentum
- If any indicators are visible on the chart (EMA, SMA, RSI, MACD, VWAP, volume, Fibonacci, etc.),
  explain what they are indicating at the current stage
- Identify important support and resistance zones from price action

DECISION LOGIC:
- If the trade details suggest BUY, check whether the chart genuinely supports a bullish view
- If the trade details suggest SELL, check whether the chart supports a bearish view
- If chart and trade details align, highlight confirmation
- If there is partial mismatch, clearly mention caution without flipping the trade direction
- Do not force a trade; think like a human analyst

OUTPUT REQUIREMENTS (VERY IMPORTANT):
- Write the analysis as clear, point-wise insights
- Each point should be a complete analytical thought, written in sentence form
- Points should flow logically, like a professional market note broken into insights
- Do NOT use bullets, numbering, headings, or markdown symbols
- Keep language natural, confident, and trader-focused
`

const imageOnlyPrompt = `
You are a professional technical analyst.

Analyze the candlestick chart and provide a clear market view.
Write only short, human-style points.
Avoid formatting or symbols.
`

// SelectPrompt builds the analysis prompt for a plan type and trade context.
// Plan matching is case-insensitive; empty or unrecognized values fall back
// to a generic focus so the function is total over its inputs. The trade
// context is embedded literally, never interpreted.
func SelectPrompt(planType, tradeContext string) string {
	var focus string
	switch strings.ToLower(planType) {
	case "":
		focus = focusGeneric
	case "equity":
		focus = focusEquity
	case "commodity":
		focus = focusCommodity
	case "options":
		focus = focusOptions
	case "derivatives":
		focus = focusDerivatives
	default:
		focus = focusFallback
	}

	var b strings.Builder
	b.WriteString(promptBase)
	b.WriteString(focus)
	b.WriteString("\nTrade Details:\n")
	b.WriteString(tradeContext)
	b.WriteString("\n")
	b.WriteString(outputRules)
	return b.String()
}

// buildAnalysisPrompt wraps the selected prompt with the full analyst
// guidelines used for the text+image endpoint
func buildAnalysisPrompt(planType, tradeContext string) string {
	var b strings.Builder
	b.WriteString(SelectPrompt(planType, tradeContext))
	b.WriteString(analysisGuidelines)
	return b.String()
}

// endpointTag names the upstream call for usage records
func endpointTag(planType string) string {
	if planType == "" {
		return "analyze_with_rationale_generic"
	}
	return "analyze_with_rationale_" + strings.ToLower(planType)
}
