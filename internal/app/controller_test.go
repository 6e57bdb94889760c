package app

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"study-companion/internal/domain"
)

// newSet builds n questions with options A..C; the correct label cycles A, B, C.
func newSet(n int) domain.QuestionSet {
	labels := []string{"A", "B", "C"}
	set := domain.QuestionSet{ID: "set-1"}
	for i := 0; i < n; i++ {
		set.Questions = append(set.Questions, domain.Question{
			Text: fmt.Sprintf("Question %d", i+1),
			Options: []domain.Option{
				{Label: "A", Value: "first"},
				{Label: "B", Value: "second"},
				{Label: "C", Value: "third"},
			},
			CorrectLabel: labels[i%len(labels)],
		})
	}
	return set
}

func TestNavigationStaysInBounds(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for n := 1; n <= 6; n++ {
		c := NewController(newSet(n), NewTimer(nil, nil))
		for step := 0; step < 200; step++ {
			switch rnd.Intn(4) {
			case 0:
				c.GoToNext()
			case 1:
				c.GoToPrevious()
			case 2:
				c.GoToFirst()
			default:
				c.GoToLast()
			}
			if c.CurrentIndex() < 0 || c.CurrentIndex() > n-1 {
				t.Fatalf("n=%d: index %d out of range", n, c.CurrentIndex())
			}
		}
	}
}

func TestNavigationDoesNotWrap(t *testing.T) {
	c := NewController(newSet(2), nil)

	c.GoToPrevious()
	if c.CurrentIndex() != 0 {
		t.Fatalf("expected to stay on first question, got %d", c.CurrentIndex())
	}
	c.GoToNext()
	c.GoToNext()
	if c.CurrentIndex() != 1 || !c.IsLastQuestion() {
		t.Fatalf("expected to stay on last question, got %d", c.CurrentIndex())
	}
}

func TestAnswerAndSubmitScoresAttempt(t *testing.T) {
	tickers := &fakeTickers{}
	c := NewController(newSet(3), NewTimer(tickers.factory, nil))
	c.Start()

	if err := c.SelectOption("a"); err != nil { // Q1 correct, lower-case
		t.Fatalf("select q1: %v", err)
	}
	c.GoToNext()
	if err := c.SelectOption("C"); err != nil { // Q2 wrong
		t.Fatalf("select q2: %v", err)
	}
	c.GoToNext()
	tickers.last().advance(42)

	submission, ok, err := c.Submit()
	if err != nil || !ok {
		t.Fatalf("submit: ok=%v err=%v", ok, err)
	}
	if submission.TimeTaken != "0:42" || submission.ElapsedSeconds != 42 {
		t.Fatalf("unexpected time taken %q (%d)", submission.TimeTaken, submission.ElapsedSeconds)
	}
	if len(submission.Selections) != 2 || submission.Selections[0].SelectedOption != "A" {
		t.Fatalf("unexpected selections %+v", submission.Selections)
	}

	summary := ComputeSummary(submission.Questions, submission.Selections)
	if summary.Correct != 1 || summary.Wrong != 2 || summary.Total != 3 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if math.Abs(summary.Ratio-1.0/3.0) > 1e-9 {
		t.Fatalf("expected ratio 1/3, got %f", summary.Ratio)
	}
}

func TestSubmitIsTerminal(t *testing.T) {
	tickers := &fakeTickers{}
	c := NewController(newSet(2), NewTimer(tickers.factory, nil))
	c.Start()

	if _, _, err := c.Submit(); !errors.Is(err, domain.ErrNotLastQuestion) {
		t.Fatalf("expected not-last error, got %v", err)
	}

	c.GoToLast()
	tickers.last().advance(5)
	if _, ok, err := c.Submit(); err != nil || !ok {
		t.Fatalf("submit: ok=%v err=%v", ok, err)
	}
	if c.timer.Running() {
		t.Fatalf("expected timer stopped after submit")
	}
	if !c.Submitted() {
		t.Fatalf("expected controller to be submitted")
	}

	if err := c.SelectOption("A"); !errors.Is(err, domain.ErrSessionSubmitted) {
		t.Fatalf("expected submitted error on select, got %v", err)
	}
	c.GoToFirst()
	if c.CurrentIndex() != 1 {
		t.Fatalf("expected navigation frozen after submit, got index %d", c.CurrentIndex())
	}
	if _, _, err := c.Submit(); !errors.Is(err, domain.ErrSessionSubmitted) {
		t.Fatalf("expected second submit rejected, got %v", err)
	}
	c.Start()
	if c.timer.Running() || c.ElapsedSeconds() != 5 {
		t.Fatalf("expected frozen elapsed 5, got %d (running=%v)", c.ElapsedSeconds(), c.timer.Running())
	}
}

func TestEmptyQuestionSet(t *testing.T) {
	tickers := &fakeTickers{}
	c := NewController(domain.QuestionSet{}, NewTimer(tickers.factory, nil))
	c.Start()

	if tickers.count() != 0 {
		t.Fatalf("expected no timer for an empty set")
	}
	if _, ok := c.Current(); ok {
		t.Fatalf("expected no current question")
	}
	c.GoToNext()
	c.GoToPrevious()
	c.GoToLast()
	if c.CurrentIndex() != 0 || c.IsLastQuestion() {
		t.Fatalf("expected no navigation, got index %d", c.CurrentIndex())
	}
	if c.ProgressPercent() != 0 {
		t.Fatalf("expected 0 progress, got %f", c.ProgressPercent())
	}
	if err := c.SelectOption("A"); err != nil {
		t.Fatalf("expected select to be ignored, got %v", err)
	}
	if _, _, err := c.Submit(); !errors.Is(err, domain.ErrEmptyQuestionSet) {
		t.Fatalf("expected empty set error, got %v", err)
	}

	summary := ComputeSummary(domain.QuestionSet{}, nil)
	if summary.Correct != 0 || summary.Wrong != 0 || summary.Total != 0 || summary.Ratio != 0 || summary.Tier != domain.TierLow {
		t.Fatalf("expected zero summary, got %+v", summary)
	}

	view := c.View()
	if view.QuestionNumber != 0 || len(view.Options) != 0 {
		t.Fatalf("expected empty view, got %+v", view)
	}
}

func TestReviewModeIgnoresMutation(t *testing.T) {
	prior := NewSelectionTracker()
	prior.Record(1, "A", "A")
	c := NewReviewController(newSet(2), prior, 75)

	if c.Mode() != domain.ModeReviewing {
		t.Fatalf("expected reviewing mode, got %s", c.Mode())
	}
	if err := c.SelectOption("B"); err != nil {
		t.Fatalf("expected silent ignore, got %v", err)
	}
	if got, _ := prior.Get(1); got != "A" {
		t.Fatalf("expected tracker unchanged, got %q", got)
	}
	c.GoToLast()
	if submission, ok, err := c.Submit(); err != nil || ok || submission.Selections != nil {
		t.Fatalf("expected submit ignored in review, got ok=%v err=%v %+v", ok, err, submission)
	}
	if c.Submitted() || c.Mode() != domain.ModeReviewing {
		t.Fatalf("expected review controller unchanged")
	}
	if got, _ := prior.Get(1); got != "A" || prior.Len() != 1 {
		t.Fatalf("expected selections unchanged after submit, got %q", got)
	}
	c.GoToFirst()

	c.GoToNext()
	if c.CurrentIndex() != 1 {
		t.Fatalf("expected review navigation, got %d", c.CurrentIndex())
	}
	if c.Elapsed() != "1:15" {
		t.Fatalf("expected frozen 1:15, got %s", c.Elapsed())
	}
}

func TestReviewOverlays(t *testing.T) {
	prior := NewSelectionTracker()
	prior.Record(1, "A", "A") // right
	prior.Record(2, "a", "B") // wrong, recorded lower-case
	c := NewReviewController(newSet(2), prior, 0)

	views := c.OptionViews()
	if !views[0].Selected || !views[0].Correct || views[0].Wrong {
		t.Fatalf("expected A selected and correct, got %+v", views[0])
	}

	c.GoToNext()
	views = c.OptionViews()
	if !views[0].Selected || !views[0].Wrong {
		t.Fatalf("expected A selected and wrong, got %+v", views[0])
	}
	if !views[1].Correct || views[1].Selected {
		t.Fatalf("expected B marked correct, got %+v", views[1])
	}
}

func TestAnsweringHasNoOverlays(t *testing.T) {
	c := NewController(newSet(1), nil)
	if err := c.SelectOption("B"); err != nil {
		t.Fatalf("select: %v", err)
	}
	for _, v := range c.OptionViews() {
		if v.Correct || v.Wrong {
			t.Fatalf("answers must not leak while answering: %+v", v)
		}
	}
}

func TestForwardThenBackLeavesNoSelections(t *testing.T) {
	c := NewController(newSet(4), nil)
	for i := 0; i < 4; i++ {
		c.GoToNext()
	}
	for i := 0; i < 4; i++ {
		c.GoToPrevious()
	}
	if c.CurrentIndex() != 0 {
		t.Fatalf("expected index 0, got %d", c.CurrentIndex())
	}
	for n := 1; n <= 4; n++ {
		if _, ok := c.selections.Get(n); ok {
			t.Fatalf("expected no selection for question %d", n)
		}
	}
}

func TestSelectionsSurviveNavigation(t *testing.T) {
	c := NewController(newSet(3), nil)
	_ = c.SelectOption("B")
	c.GoToNext()
	_ = c.SelectOption("C")
	c.GoToPrevious()

	if got, ok := c.CurrentSelection(); !ok || got != "B" {
		t.Fatalf("expected B kept on question 1, got %q", got)
	}
	c.GoToNext()
	if got, ok := c.CurrentSelection(); !ok || got != "C" {
		t.Fatalf("expected C kept on question 2, got %q", got)
	}
}

func TestSelectUnknownOption(t *testing.T) {
	c := NewController(newSet(1), nil)
	if err := c.SelectOption("E"); !errors.Is(err, domain.ErrOptionNotFound) {
		t.Fatalf("expected option not found, got %v", err)
	}
	if _, ok := c.CurrentSelection(); ok {
		t.Fatalf("expected nothing recorded")
	}
}

func TestProgressPercent(t *testing.T) {
	c := NewController(newSet(4), nil)
	if c.ProgressPercent() != 25 {
		t.Fatalf("expected 25, got %f", c.ProgressPercent())
	}
	c.GoToLast()
	if c.ProgressPercent() != 100 {
		t.Fatalf("expected 100, got %f", c.ProgressPercent())
	}
}
