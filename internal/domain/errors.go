package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a study session is not live (never started, ended, or expired).
	ErrSessionNotFound = errors.New("study session not found")
	// ErrQuestionSetNotFound indicates the question set could not be loaded.
	ErrQuestionSetNotFound = errors.New("question set not found")
	// ErrEmptyQuestionSet is returned when submitting a session that has no questions.
	ErrEmptyQuestionSet = errors.New("question set is empty")
	// ErrNotLastQuestion is returned when submit is attempted before reaching the last question.
	ErrNotLastQuestion = errors.New("submit is only allowed on the last question")
	// ErrSessionSubmitted is returned when a submitted session is mutated again.
	ErrSessionSubmitted = errors.New("session already submitted")
	// ErrOptionNotFound indicates a selected label is not one of the current question's options.
	ErrOptionNotFound = errors.New("option not found")
	// ErrMalformedQuestionSet wraps every validation problem found while ingesting a question set.
	ErrMalformedQuestionSet = errors.New("malformed question set")
	// ErrUnsupportedDocument is returned for uploads that are not PDFs.
	ErrUnsupportedDocument = errors.New("unsupported document type")
	// ErrDocumentTooLarge is returned for uploads above the configured size limit.
	ErrDocumentTooLarge = errors.New("document too large")
	// ErrGenerationFailed indicates the flashcard generation endpoint rejected the document.
	ErrGenerationFailed = errors.New("flashcard generation failed")
	// ErrNoFlashcards indicates the generation endpoint answered without any questions.
	ErrNoFlashcards = errors.New("no flashcards generated")
	// ErrHistoryEntryNotFound is returned when deleting an unknown upload history entry.
	ErrHistoryEntryNotFound = errors.New("upload history entry not found")
)
