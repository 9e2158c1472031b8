package services

import (
	"context"
	"strings"

	"contentengine/completion"
	"contentengine/utils"
)

const (
	AnalyzeTemperature = 0.6
	AnalyzeMaxTokens   = 600

	analystRole = "You are a precise SEO and tone analyst."
)

// Analyzer reviews copy for SEO and tone
type Analyzer struct {
	completer completion.Completer
}

// NewAnalyzer creates an analyzer
func NewAnalyzer(completer completion.Completer) *Analyzer {
	return &Analyzer{completer: completer}
}

// AnalysisPrompt wraps text in the review instructions
func AnalysisPrompt(text string) string {
	return "\nAnalyze the following marketing copy for SEO and tone.\n" +
		"Return concise, structured feedback including:\n" +
		"- Strengths & weaknesses (bulleted)\n" +
		"- Recommended keywords (comma-separated)\n" +
		"- Suggested title (<= 60 chars)\n" +
		"- Meta description (<= 160 chars)\n" +
		"- 3 specific improvement tips\n" +
		"\n" +
		"Content:\n" +
		"\"\"\"" + text + "\"\"\"\n"
}

// Analyze returns the provider's feedback on text. Blank text is rejected before any call.
func (a *Analyzer) Analyze(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", utils.BadRequestError(`Missing or invalid "text"`, nil).Localized("error_text_required")
	}

	analysis, err := a.completer.Complete(ctx, completion.Request{
		System:      analystRole,
		User:        AnalysisPrompt(text),
		Temperature: AnalyzeTemperature,
		MaxTokens:   AnalyzeMaxTokens,
	})
	if err != nil {
		utils.Log.Warn("Analysis failed: %v", err)
		return "", upstreamError(err)
	}
	if analysis == "" {
		return "", utils.UpstreamEmptyError("No analysis produced").Localized("error_no_analysis")
	}
	return analysis, nil
}
