package app

import (
	"sort"

	"study-companion/internal/domain"
)

// SelectionTracker keeps at most one selection per question number.
// The caller guarantees numbers are in range.
type SelectionTracker struct {
	byNumber map[int]domain.Selection
}

func NewSelectionTracker() *SelectionTracker {
	return &SelectionTracker{byNumber: make(map[int]domain.Selection)}
}

// NewSelectionTrackerFrom rebuilds a tracker from a snapshot; later entries win.
func NewSelectionTrackerFrom(selections []domain.Selection) *SelectionTracker {
	t := NewSelectionTracker()
	for _, s := range selections {
		t.Record(s.QuestionNumber, s.SelectedOption, s.CorrectAnswer)
	}
	return t
}

// Record inserts or replaces the selection for questionNumber.
func (t *SelectionTracker) Record(questionNumber int, selectedOption, correctAnswer string) {
	t.byNumber[questionNumber] = domain.Selection{
		QuestionNumber: questionNumber,
		SelectedOption: selectedOption,
		CorrectAnswer:  correctAnswer,
	}
}

// Get returns the selected label for questionNumber, if any.
func (t *SelectionTracker) Get(questionNumber int) (string, bool) {
	s, ok := t.byNumber[questionNumber]
	if !ok {
		return "", false
	}
	return s.SelectedOption, true
}

func (t *SelectionTracker) Len() int {
	return len(t.byNumber)
}

// Snapshot copies the selections ordered by question number.
func (t *SelectionTracker) Snapshot() []domain.Selection {
	out := make([]domain.Selection, 0, len(t.byNumber))
	for _, s := range t.byNumber {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].QuestionNumber < out[j].QuestionNumber
	})
	return out
}
