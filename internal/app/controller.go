package app

import (
	"study-companion/internal/domain"
)

// Controller drives one pass through a question set.
//
// A controller built with NewController starts in ModeAnswering and becomes terminal after Submit.
// A controller built with NewReviewController starts in ModeReviewing over a finished attempt;
// it can be navigated but never mutated. Controllers are not safe for concurrent use; the
// timer is the only part that runs on its own goroutine.
type Controller struct {
	set        domain.QuestionSet
	mode       domain.Mode
	index      int
	submitted  bool
	selections *SelectionTracker
	timer      *Timer
}

// NewController returns an answering controller. The timer is started by Start.
func NewController(set domain.QuestionSet, timer *Timer) *Controller {
	if timer == nil {
		timer = NewTimer(nil, nil)
	}
	return &Controller{
		set:        set,
		mode:       domain.ModeAnswering,
		selections: NewSelectionTracker(),
		timer:      timer,
	}
}

// NewReviewController returns a read-only controller over a prior attempt.
func NewReviewController(set domain.QuestionSet, selections *SelectionTracker, elapsedSeconds int) *Controller {
	if selections == nil {
		selections = NewSelectionTracker()
	}
	return &Controller{
		set:        set,
		mode:       domain.ModeReviewing,
		selections: selections,
		timer:      NewStoppedTimer(elapsedSeconds),
	}
}

// Start starts the session timer. Empty sets and review controllers have nothing to time.
func (c *Controller) Start() {
	if c.mode != domain.ModeAnswering || c.submitted || c.set.Len() == 0 {
		return
	}
	c.timer.Start()
}

// Close stops the timer; call it when the session is discarded.
func (c *Controller) Close() {
	c.timer.Stop()
}

func (c *Controller) Mode() domain.Mode { return c.mode }

func (c *Controller) Total() int { return c.set.Len() }

func (c *Controller) Submitted() bool { return c.submitted }

func (c *Controller) QuestionSet() domain.QuestionSet { return c.set }

// CurrentIndex is 0-based; it is 0 for an empty set.
func (c *Controller) CurrentIndex() int { return c.index }

// Current returns the question on screen, or false for an empty set.
func (c *Controller) Current() (domain.Question, bool) {
	return c.set.Question(c.index + 1)
}

// IsLastQuestion reports whether the current question is the last one.
func (c *Controller) IsLastQuestion() bool {
	n := c.set.Len()
	return n > 0 && c.index == n-1
}

// ProgressPercent is (index+1)/N*100, or 0 for an empty set.
func (c *Controller) ProgressPercent() float64 {
	n := c.set.Len()
	if n == 0 {
		return 0
	}
	return float64(c.index+1) / float64(n) * 100
}

// ElapsedSeconds returns the timer's count; it is frozen after submit and in review.
func (c *Controller) ElapsedSeconds() int {
	return c.timer.Elapsed()
}

// Elapsed returns the elapsed time formatted as m:ss.
func (c *Controller) Elapsed() string {
	return domain.FormatElapsed(c.timer.Elapsed())
}

// CurrentSelection returns the label picked for the current question.
func (c *Controller) CurrentSelection() (string, bool) {
	if c.set.Len() == 0 {
		return "", false
	}
	return c.selections.Get(c.index + 1)
}

func (c *Controller) canNavigate() bool {
	return !c.submitted && c.set.Len() > 0
}

func (c *Controller) GoToNext() {
	if c.canNavigate() && c.index < c.set.Len()-1 {
		c.index++
	}
}

func (c *Controller) GoToPrevious() {
	if c.canNavigate() && c.index > 0 {
		c.index--
	}
}

func (c *Controller) GoToFirst() {
	if c.canNavigate() {
		c.index = 0
	}
}

func (c *Controller) GoToLast() {
	if c.canNavigate() {
		c.index = c.set.Len() - 1
	}
}

// Navigate applies a named move; unknown moves are ignored.
func (c *Controller) Navigate(move domain.Move) {
	switch move {
	case domain.MoveNext:
		c.GoToNext()
	case domain.MovePrevious:
		c.GoToPrevious()
	case domain.MoveFirst:
		c.GoToFirst()
	case domain.MoveLast:
		c.GoToLast()
	}
}

// SelectOption records label for the current question.
// In review mode and on an empty set the call is ignored.
func (c *Controller) SelectOption(label string) error {
	if c.mode == domain.ModeReviewing {
		return nil
	}
	if c.submitted {
		return domain.ErrSessionSubmitted
	}
	question, ok := c.Current()
	if !ok {
		return nil
	}
	opt, ok := question.Option(label)
	if !ok {
		return domain.ErrOptionNotFound
	}
	c.selections.Record(c.index+1, opt.Label, question.CorrectLabel)
	return nil
}

// Submit stops the timer and hands out the attempt. It is only allowed on the last question.
// Review controllers ignore it and report ok=false.
func (c *Controller) Submit() (submission domain.Submission, ok bool, err error) {
	switch {
	case c.mode == domain.ModeReviewing:
		return domain.Submission{}, false, nil
	case c.submitted:
		return domain.Submission{}, false, domain.ErrSessionSubmitted
	case c.set.Len() == 0:
		return domain.Submission{}, false, domain.ErrEmptyQuestionSet
	case !c.IsLastQuestion():
		return domain.Submission{}, false, domain.ErrNotLastQuestion
	}

	c.timer.Stop()
	c.submitted = true
	elapsed := c.timer.Elapsed()
	return domain.Submission{
		Questions:      c.set,
		Selections:     c.selections.Snapshot(),
		ElapsedSeconds: elapsed,
		TimeTaken:      domain.FormatElapsed(elapsed),
	}, true, nil
}

// OptionViews renders the current question's options. Correct and wrong overlays are only set
// in review mode.
func (c *Controller) OptionViews() []domain.OptionView {
	question, ok := c.Current()
	if !ok {
		return nil
	}
	selected, hasSelection := c.CurrentSelection()
	reviewing := c.mode == domain.ModeReviewing

	views := make([]domain.OptionView, 0, len(question.Options))
	for _, opt := range question.Options {
		isSelected := hasSelection && domain.LabelsEqual(selected, opt.Label)
		isCorrect := question.IsCorrect(opt.Label)
		views = append(views, domain.OptionView{
			Label:    opt.Label,
			Value:    opt.Value,
			Selected: isSelected,
			Correct:  reviewing && isCorrect,
			Wrong:    reviewing && isSelected && !isCorrect,
		})
	}
	return views
}

// View snapshots the controller for rendering.
func (c *Controller) View() domain.SessionView {
	view := domain.SessionView{
		Mode:      c.mode,
		Total:     c.set.Len(),
		Options:   c.OptionViews(),
		Progress:  c.ProgressPercent(),
		IsLast:    c.IsLastQuestion(),
		Submitted: c.submitted,
		Elapsed:   c.Elapsed(),
		SetID:     c.set.ID,
	}
	if question, ok := c.Current(); ok {
		view.QuestionNumber = c.index + 1
		view.Question = question.Text
		view.ImageURL = question.ImageURL
	}
	if selected, ok := c.CurrentSelection(); ok {
		view.Selected = selected
	}
	return view
}
