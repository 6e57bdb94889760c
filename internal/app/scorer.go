package app

import (
	"study-companion/internal/domain"
)

// ComputeSummary grades selections against the question set's answer key.
// Unanswered questions count as wrong. A selection whose cached CorrectAnswer disagrees with the
// question set is still graded against the set and reported as a warning.
func ComputeSummary(set domain.QuestionSet, selections []domain.Selection) domain.ScoreSummary {
	total := set.Len()
	summary := domain.ScoreSummary{Total: total}

	// Later selections for the same question replace earlier ones.
	latest := NewSelectionTrackerFrom(selections).Snapshot()
	for _, sel := range latest {
		question, ok := set.Question(sel.QuestionNumber)
		if !ok {
			continue
		}
		if sel.CorrectAnswer != "" && !domain.LabelsEqual(sel.CorrectAnswer, question.CorrectLabel) {
			summary.Warnings = append(summary.Warnings, domain.IntegrityWarning{
				QuestionNumber: sel.QuestionNumber,
				Cached:         sel.CorrectAnswer,
				Authoritative:  question.CorrectLabel,
			})
		}
		if question.IsCorrect(sel.SelectedOption) {
			summary.Correct++
		}
	}

	summary.Wrong = total - summary.Correct
	if total > 0 {
		summary.Ratio = float64(summary.Correct) / float64(total)
	}
	summary.Tier = TierFor(summary.Ratio)
	return summary
}

// TierFor bands a score ratio; lower bounds are inclusive.
func TierFor(ratio float64) domain.Tier {
	switch {
	case ratio >= 0.8:
		return domain.TierHigh
	case ratio >= 0.5:
		return domain.TierMiddle
	default:
		return domain.TierLow
	}
}
