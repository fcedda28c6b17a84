package smartbot

import (
	"strings"
)

// FallbackResponse is returned when no template clears the confidence threshold.
const FallbackResponse = "I'm not sure how to respond to that."

type keywordMatcher struct {
	scorer TemplateScorer
	logger Logger
}

// NewMatcher creates a new Matcher instance with the default scorer
func NewMatcher() Matcher {
	return &keywordMatcher{
		scorer: NewTemplateScorer(),
		logger: DiscardLogger{},
	}
}

// NewMatcherWithLogger creates a new Matcher instance with custom logger
func NewMatcherWithLogger(scorer TemplateScorer, logger Logger) Matcher {
	return &keywordMatcher{
		scorer: scorer,
		logger: logger,
	}
}

// Match scores every template in the corpus against the normalized input
// and selects the highest-scoring one. Ties are broken by the lowest
// template ID so results stay deterministic across runs.
//
// When the best score stays below params.ConfidenceThreshold the fallback
// response is returned with a nil template ID; Confidence still carries
// the best score so callers can learn from near misses.
func (km *keywordMatcher) Match(
	normalized string,
	corpus TemplateCorpus,
	params Parameters,
) MatchResult {
	tokens := strings.Fields(normalized)

	templates := corpus.Templates()
	km.logger.Debugf("Match called, tokens_count: %d, templates_count: %d",
		len(tokens), len(templates))

	if len(templates) == 0 {
		km.logger.Warnf("Empty template corpus, returning fallback response")
		return MatchResult{
			TemplateID: nil,
			Response:   FallbackResponse,
			Confidence: 0.0,
		}
	}

	var (
		bestScore     = -1.0
		bestID        int
		bestResponse  string
		bestBreakdown ScoreBreakdown
	)

	for _, tpl := range templates {
		breakdown := km.scorer.Score(tokens, tpl, params)
		km.logger.Debugf(
			"Template scored, template_id: %d, overlap: %.4f, length_term: %.4f, score: %.4f",
			tpl.ID, breakdown.Overlap, breakdown.LengthTerm, breakdown.Score)

		if breakdown.Score > bestScore ||
			(breakdown.Score == bestScore && tpl.ID < bestID) {
			bestScore = breakdown.Score
			bestID = tpl.ID
			bestResponse = tpl.Response
			bestBreakdown = breakdown
		}
	}

	if bestScore < params.ConfidenceThreshold {
		km.logger.Debugf(
			"Best score below threshold, best_template_id: %d, best_score: %.4f, threshold: %.4f",
			bestID, bestScore, params.ConfidenceThreshold)
		return MatchResult{
			TemplateID: nil,
			Response:   FallbackResponse,
			Confidence: bestScore,
		}
	}

	km.logger.Debugf(
		"Template matched, template_id: %d, confidence: %.4f, matched_keywords: %v",
		bestID, bestScore, bestBreakdown.MatchedKeywords)

	id := bestID
	return MatchResult{
		TemplateID:      &id,
		Response:        bestResponse,
		Confidence:      bestScore,
		MatchedKeywords: bestBreakdown.MatchedKeywords,
	}
}
