// internal/synthesizer/synthesizer.go
// Package synthesizer merges one or two backend results into a single
// answer with provenance. Synthesis is a pure function of the result
// sequence: the same results always produce the identical answer.
package synthesizer

import (
	"fmt"
	"strings"

	"migration-assistant/internal/common/logger"
	"migration-assistant/internal/models"
)

const (
	structuredHeading = "Structured analysis"
	semanticHeading   = "Knowledge base insights"

	totalFailureText = "I'm sorry, I couldn't reach the migration knowledge systems to answer that. Please try again shortly."
)

type Synthesizer struct {
	logger logger.Logger
}

func New(log logger.Logger) *Synthesizer {
	return &Synthesizer{logger: log}
}

// Synthesize merges the result sequence into one Answer. Structured content
// is ordered before semantic content (it answers "what"; the semantic side
// answers "why" and "how"), and citations keep each source's own order.
// Degraded is true exactly when at least one expected result is not OK.
func (s *Synthesizer) Synthesize(results []models.BackendResult) models.Answer {
	ordered := orderResults(results)

	var ok, failed []models.BackendResult
	for _, result := range ordered {
		if result.OK() {
			ok = append(ok, result)
		} else {
			failed = append(failed, result)
		}
	}

	answer := buildAnswer(ok, failed, len(ordered))

	s.logger.Info("answer synthesized", map[string]interface{}{
		"expected": len(ordered),
		"ok":       len(ok),
		"degraded": answer.Degraded,
	})

	return answer
}

func buildAnswer(ok, failed []models.BackendResult, expected int) models.Answer {
	answer := models.Answer{
		ContributingSources: []models.BackendKind{},
		Citations:           []models.Citation{},
		Degraded:            len(failed) > 0 || expected == 0,
	}

	if len(ok) == 0 {
		if expected == 1 && len(failed) == 1 {
			answer.Text = unavailableText(failed[0].Source)
		} else {
			answer.Text = totalFailureText
		}
		return answer
	}

	var sections []string
	for _, result := range ok {
		if expected > 1 {
			sections = append(sections, fmt.Sprintf("%s:\n%s", heading(result.Source), result.Content))
		} else {
			sections = append(sections, result.Content)
		}
		answer.ContributingSources = append(answer.ContributingSources, result.Source)
		answer.Citations = append(answer.Citations, result.Citations...)
	}

	for _, result := range failed {
		sections = append(sections, degradedNote(result.Source))
	}

	answer.Text = strings.Join(sections, "\n\n")
	return answer
}

// orderResults puts the structured result first regardless of which
// goroutine finished first, keeping synthesis deterministic.
func orderResults(results []models.BackendResult) []models.BackendResult {
	ordered := make([]models.BackendResult, 0, len(results))
	for _, result := range results {
		if result.Source == models.BackendStructured {
			ordered = append(ordered, result)
		}
	}
	for _, result := range results {
		if result.Source != models.BackendStructured {
			ordered = append(ordered, result)
		}
	}
	return ordered
}

func heading(kind models.BackendKind) string {
	if kind == models.BackendStructured {
		return structuredHeading
	}
	return semanticHeading
}

func capability(kind models.BackendKind) string {
	if kind == models.BackendStructured {
		return "structured data analysis"
	}
	return "knowledge base insight"
}

func unavailableText(kind models.BackendKind) string {
	return fmt.Sprintf("I'm sorry, the %s service is currently unavailable, so I can't answer that right now. Please try again shortly.", capability(kind))
}

func degradedNote(kind models.BackendKind) string {
	return fmt.Sprintf("Note: %s was unavailable for this answer.", capability(kind))
}
