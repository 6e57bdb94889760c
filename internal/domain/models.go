package domain

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Option is one labelled answer of a question, e.g. {"A", "Mitochondria"}.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Question models an MCQ flashcard with exactly one correct option.
type Question struct {
	Text         string   `json:"question"`
	Options      []Option `json:"options"`
	CorrectLabel string   `json:"correctAnswer"`
	ImageURL     string   `json:"imageUrl,omitempty"`
}

// Option returns the option whose label matches label, ignoring case.
func (q Question) Option(label string) (Option, bool) {
	for _, opt := range q.Options {
		if LabelsEqual(opt.Label, label) {
			return opt, true
		}
	}
	return Option{}, false
}

// IsCorrect reports whether label is the correct answer of q.
func (q Question) IsCorrect(label string) bool {
	return LabelsEqual(q.CorrectLabel, label)
}

// QuestionSet is the ordered list of flashcards produced from one document.
// Index i holds question number i+1.
type QuestionSet struct {
	ID        string     `json:"id"`
	Name      string     `json:"name,omitempty"`
	Questions []Question `json:"questions"`
}

// Len returns the number of questions.
func (s QuestionSet) Len() int {
	return len(s.Questions)
}

// Question returns the question with the given 1-based number.
func (s QuestionSet) Question(number int) (Question, bool) {
	if number < 1 || number > len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[number-1], true
}

// Selection is the option a user picked for one question.
// CorrectAnswer is copied from the question when recorded; grading uses the QuestionSet.
type Selection struct {
	QuestionNumber int    `json:"questionNumber"`
	SelectedOption string `json:"selectedOption"`
	CorrectAnswer  string `json:"correctAnswer"`
}

// Mode is the state of a session controller.
type Mode int

const (
	// ModeAnswering is the initial mode of a fresh session.
	ModeAnswering Mode = iota
	// ModeReviewing is a read-only pass over a finished session.
	ModeReviewing
)

func (m Mode) String() string {
	switch m {
	case ModeAnswering:
		return "answering"
	case ModeReviewing:
		return "reviewing"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// MarshalText encodes the mode as its name for JSON payloads.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Move names a navigation step.
type Move string

const (
	MoveNext     Move = "next"
	MovePrevious Move = "previous"
	MoveFirst    Move = "first"
	MoveLast     Move = "last"
)

// Submission is what a controller hands to result presentation when an attempt is submitted.
type Submission struct {
	Questions      QuestionSet `json:"questions"`
	Selections     []Selection `json:"userSelection"`
	ElapsedSeconds int         `json:"elapsedSeconds"`
	TimeTaken      string      `json:"timeTaken"`
}

// Result pairs a submission with its score.
type Result struct {
	Submission Submission   `json:"submission"`
	Summary    ScoreSummary `json:"summary"`
}

// Tier is the qualitative band of a score.
type Tier int

const (
	TierLow Tier = iota
	TierMiddle
	TierHigh
)

func (t Tier) String() string {
	switch t {
	case TierHigh:
		return "high"
	case TierMiddle:
		return "middle"
	default:
		return "low"
	}
}

// MarshalText encodes the tier as its name for JSON payloads.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Message is the headline shown on the result screen.
func (t Tier) Message() string {
	switch t {
	case TierHigh:
		return "Incredible job!"
	case TierMiddle:
		return "Good effort!"
	default:
		return "Keep practicing!"
	}
}

// IntegrityWarning flags a selection whose cached correct answer disagrees with the question set.
type IntegrityWarning struct {
	QuestionNumber int    `json:"questionNumber"`
	Cached         string `json:"cached"`
	Authoritative  string `json:"authoritative"`
}

// ScoreSummary is derived from a question set and its selections; it is never stored.
type ScoreSummary struct {
	Correct  int                `json:"correct"`
	Wrong    int                `json:"wrong"`
	Total    int                `json:"total"`
	Ratio    float64            `json:"score"`
	Tier     Tier               `json:"tier"`
	Warnings []IntegrityWarning `json:"warnings,omitempty"`
}

// MasteryPercent returns the ratio as a rounded percentage.
func (s ScoreSummary) MasteryPercent() int {
	return int(s.Ratio*100 + 0.5)
}

// OptionView is one option as rendered on a flashcard, with review overlays.
type OptionView struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
	Correct  bool   `json:"correct,omitempty"`
	Wrong    bool   `json:"wrong,omitempty"`
}

// SessionView is a render-ready snapshot of a session.
type SessionView struct {
	SessionID      string       `json:"sessionId"`
	SetID          string       `json:"setId"`
	Mode           Mode         `json:"mode"`
	QuestionNumber int          `json:"questionNumber"`
	Total          int          `json:"total"`
	Question       string       `json:"question,omitempty"`
	ImageURL       string       `json:"imageUrl,omitempty"`
	Options        []OptionView `json:"options"`
	Selected       string       `json:"selected,omitempty"`
	Progress       float64      `json:"progress"`
	IsLast         bool         `json:"isLast"`
	Submitted      bool         `json:"submitted"`
	Elapsed        string       `json:"elapsed"`
}

// TimerTick is pushed to subscribers whenever a session timer advances.
type TimerTick struct {
	SessionID      string `json:"sessionId"`
	ElapsedSeconds int    `json:"elapsedSeconds"`
	Elapsed        string `json:"elapsed"`
}

// Document is an uploaded file waiting to be turned into flashcards.
type Document struct {
	Name     string
	MimeType string
	Size     int64
	Content  io.Reader
}

// UploadResult is returned after a document was turned into a question set.
type UploadResult struct {
	SetID     string      `json:"setId"`
	Questions QuestionSet `json:"questions"`
}

// HistoryEntry is one recently uploaded document.
type HistoryEntry struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       string    `json:"size"`
	Type       string    `json:"type"`
	MimeType   string    `json:"mimeType"`
	SetID      string    `json:"setId"`
	UploadedAt time.Time `json:"date"`
}

// LabelsEqual compares option labels the way users see them: trimmed and case-insensitive.
func LabelsEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// FormatElapsed renders seconds as m:ss; minutes are not wrapped.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// ParseElapsed reads an m:ss string produced by FormatElapsed.
func ParseElapsed(raw string) (int, error) {
	var minutes, seconds int
	if _, err := fmt.Sscanf(strings.TrimSpace(raw), "%d:%d", &minutes, &seconds); err != nil {
		return 0, fmt.Errorf("parse elapsed %q: %w", raw, err)
	}
	if minutes < 0 || seconds < 0 || seconds > 59 {
		return 0, fmt.Errorf("parse elapsed %q: out of range", raw)
	}
	return minutes*60 + seconds, nil
}
