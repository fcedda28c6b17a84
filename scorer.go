package smartbot

import (
	"math"
	"sort"
)

// templateScorer implements the TemplateScorer interface
type templateScorer struct{}

// NewTemplateScorer creates a new TemplateScorer instance
func NewTemplateScorer() TemplateScorer {
	return &templateScorer{}
}

// clamp bounds v to [lo, hi]
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

// Score computes the weighted match score between input tokens and one template.
// Both sides are treated as sets; duplicates are ignored.
// Formulas:
//
//	overlap    = |keywords ∩ tokens| / max(1, |keywords|)
//	lengthTerm = 1 - min(1, abs(|tokens| - |keywords|) / max(1, |keywords|))
//	score      = (keywordWeight*overlap + lengthPenaltyWeight*lengthTerm) / (keywordWeight + lengthPenaltyWeight)
//
// The score is 0 when the weight sum is not positive, and is clamped to [0,1]
// to absorb floating point drift
func (*templateScorer) Score(tokens []string, tpl Template, params Parameters) ScoreBreakdown {
	tokenSet := make(map[string]Empty, len(tokens))
	for _, token := range tokens {
		if token != "" {
			tokenSet[token] = Empty{}
		}
	}

	keywordSet := make(map[string]Empty, len(tpl.Keywords))
	for _, keyword := range tpl.Keywords {
		if keyword != "" {
			keywordSet[keyword] = Empty{}
		}
	}

	matched := make([]string, 0, len(keywordSet))
	for keyword := range keywordSet {
		if _, ok := tokenSet[keyword]; ok {
			matched = append(matched, keyword)
		}
	}
	sort.Strings(matched)

	keywordCount := len(keywordSet)
	overlap := float64(len(matched)) / math.Max(1, float64(keywordCount))

	lengthGap := math.Abs(float64(len(tokenSet) - keywordCount))
	lengthTerm := 1 - math.Min(1, lengthGap/math.Max(1, float64(keywordCount)))

	weightSum := params.KeywordWeight + params.LengthPenaltyWeight

	score := 0.0
	if weightSum > 0 {
		score = (params.KeywordWeight*overlap + params.LengthPenaltyWeight*lengthTerm) / weightSum
	}

	return ScoreBreakdown{
		Overlap:         overlap,
		LengthTerm:      lengthTerm,
		Score:           clamp(score, 0, 1),
		MatchedKeywords: matched,
	}
}
