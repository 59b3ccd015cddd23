// internal/classifier/classifier.go
// Package classifier routes a question to the structured backend, the
// semantic backend, or both. Classification is a pure function of the
// question text and the configured keyword lists: no network calls, no
// state, same text in means same decision out.
package classifier

import (
	"strings"

	"migration-assistant/internal/common/config"
	"migration-assistant/internal/models"
)

// Scores is the per-class signal strength behind a decision, kept for
// logging and tuning.
type Scores struct {
	Structured float64 `json:"structured"`
	Semantic   float64 `json:"semantic"`
}

type Classifier struct {
	structuredKeywords []string
	semanticKeywords   []string
	combinedThreshold  float64
}

func New(cfg config.RoutingConfig) *Classifier {
	return &Classifier{
		structuredKeywords: lowercaseAll(cfg.StructuredKeywords),
		semanticKeywords:   lowercaseAll(cfg.SemanticKeywords),
		combinedThreshold:  cfg.CombinedDecisionThreshold,
	}
}

// Classify scores the question text against both keyword classes.
// Both classes at or above the combined threshold means the question is
// genuinely hybrid; a tie (including no signal at all) is treated the same
// way — calling both backends is cheaper than mis-routing.
func (c *Classifier) Classify(question models.Question) (models.RoutingDecision, Scores) {
	text := strings.ToLower(question.Text)

	scores := Scores{
		Structured: countHits(text, c.structuredKeywords),
		Semantic:   countHits(text, c.semanticKeywords),
	}

	switch {
	case scores.Structured >= c.combinedThreshold && scores.Semantic >= c.combinedThreshold:
		return models.DecisionCombined, scores
	case scores.Structured > scores.Semantic:
		return models.DecisionStructured, scores
	case scores.Semantic > scores.Structured:
		return models.DecisionSemantic, scores
	default:
		return models.DecisionCombined, scores
	}
}

func countHits(text string, keywords []string) float64 {
	var hits float64
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			hits++
		}
	}
	return hits
}

func lowercaseAll(keywords []string) []string {
	out := make([]string, len(keywords))
	for i, keyword := range keywords {
		out[i] = strings.ToLower(keyword)
	}
	return out
}
