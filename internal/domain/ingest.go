package domain

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/hashicorp/go-multierror"
)

// rawQuestion mirrors the loosely shaped objects emitted by the generation endpoint.
type rawQuestion struct {
	Question      string   `json:"question"`
	Text          string   `json:"text"`
	Options       []Option `json:"options"`
	Answer        string   `json:"answer"`
	CorrectAnswer string   `json:"correctAnswer"`
	ImageURL      string   `json:"imageUrl"`
}

type rawGeneration struct {
	Output []rawQuestion `json:"output"`
}

// ParseQuestionSet decodes a JSON array of questions and normalises it into a QuestionSet.
// Either "answer" or "correctAnswer" may carry the correct label.
func ParseQuestionSet(data []byte) (QuestionSet, error) {
	var raw []rawQuestion
	if err := json.Unmarshal(data, &raw); err != nil {
		return QuestionSet{}, fmt.Errorf("%w: %v", ErrMalformedQuestionSet, err)
	}
	return normalizeQuestions(raw)
}

// ParseGenerationResponse decodes the generation endpoint's reply: [{"output": [...]}].
func ParseGenerationResponse(data []byte) (QuestionSet, error) {
	var raw []rawGeneration
	if err := json.Unmarshal(data, &raw); err != nil {
		return QuestionSet{}, fmt.Errorf("%w: %v", ErrMalformedQuestionSet, err)
	}
	if len(raw) == 0 || len(raw[0].Output) == 0 {
		return QuestionSet{}, ErrNoFlashcards
	}
	return normalizeQuestions(raw[0].Output)
}

func normalizeQuestions(raw []rawQuestion) (QuestionSet, error) {
	var errs *multierror.Error
	questions := make([]Question, 0, len(raw))
	for i, rq := range raw {
		q, err := normalizeQuestion(i+1, rq)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		questions = append(questions, q)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return QuestionSet{}, fmt.Errorf("%w: %v", ErrMalformedQuestionSet, err)
	}
	return QuestionSet{Questions: questions}, nil
}

func normalizeQuestion(number int, rq rawQuestion) (Question, error) {
	var errs *multierror.Error

	text := strings.TrimSpace(rq.Question)
	if text == "" {
		text = strings.TrimSpace(rq.Text)
	}
	if text == "" {
		errs = multierror.Append(errs, fmt.Errorf("question %d: missing text", number))
	}

	if len(rq.Options) == 0 {
		errs = multierror.Append(errs, fmt.Errorf("question %d: no options", number))
	}
	options := make([]Option, 0, len(rq.Options))
	for _, opt := range rq.Options {
		label := strings.TrimSpace(opt.Label)
		if label == "" {
			errs = multierror.Append(errs, fmt.Errorf("question %d: option with empty label", number))
			continue
		}
		for _, seen := range options {
			if LabelsEqual(seen.Label, label) {
				errs = multierror.Append(errs, fmt.Errorf("question %d: duplicate label %q", number, label))
				break
			}
		}
		options = append(options, Option{Label: label, Value: opt.Value})
	}

	answer := rq.CorrectAnswer
	if strings.TrimSpace(answer) == "" {
		answer = rq.Answer
	}
	correct := ""
	for _, opt := range options {
		if LabelsEqual(opt.Label, answer) {
			correct = opt.Label
			break
		}
	}
	if correct == "" {
		errs = multierror.Append(errs, fmt.Errorf("question %d: answer %q matches no option", number, answer))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return Question{}, err
	}
	return Question{
		Text:         text,
		Options:      options,
		CorrectLabel: correct,
		ImageURL:     strings.TrimSpace(rq.ImageURL),
	}, nil
}
