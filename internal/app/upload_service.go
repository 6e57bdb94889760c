package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"study-companion/internal/domain"
)

const (
	DefaultMaxDocumentBytes = 2 * 1024 * 1024
	DefaultHistoryLimit     = 5
	pdfMimeType             = "application/pdf"
)

// Generator turns a document into flashcards (remote generation endpoint).
type Generator interface {
	Generate(ctx context.Context, doc domain.Document) (domain.QuestionSet, error)
}

// QuestionSetStore persists generated question sets.
type QuestionSetStore interface {
	SaveQuestionSet(ctx context.Context, set domain.QuestionSet) error
}

// HistoryStore persists the recent uploads list as a whole, newest first.
type HistoryStore interface {
	LoadHistory(ctx context.Context) ([]domain.HistoryEntry, error)
	SaveHistory(ctx context.Context, entries []domain.HistoryEntry) error
}

// UploadLimits bounds accepted documents and the recent uploads list.
type UploadLimits struct {
	MaxDocumentBytes int64
	HistoryLimit     int
}

// UploadService turns uploaded documents into stored question sets and tracks recent uploads.
type UploadService struct {
	generator Generator
	sets      QuestionSetStore
	history   HistoryStore
	limits    UploadLimits
	now       func() time.Time
	logger    logrus.FieldLogger
}

func NewUploadService(generator Generator, sets QuestionSetStore, history HistoryStore, limits UploadLimits, logger logrus.FieldLogger) *UploadService {
	if limits.MaxDocumentBytes <= 0 {
		limits.MaxDocumentBytes = DefaultMaxDocumentBytes
	}
	if limits.HistoryLimit <= 0 {
		limits.HistoryLimit = DefaultHistoryLimit
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &UploadService{
		generator: generator,
		sets:      sets,
		history:   history,
		limits:    limits,
		now:       time.Now,
		logger:    logger,
	}
}

// Generate validates the document, asks the generator for flashcards and stores them.
// History is only updated after the set was stored.
func (s *UploadService) Generate(ctx context.Context, doc domain.Document) (domain.UploadResult, error) {
	if err := s.validate(doc); err != nil {
		return domain.UploadResult{}, err
	}

	set, err := s.generator.Generate(ctx, doc)
	if err != nil {
		return domain.UploadResult{}, err
	}
	if set.Len() == 0 {
		return domain.UploadResult{}, domain.ErrNoFlashcards
	}
	set.ID = uuid.NewString()
	set.Name = doc.Name

	if err := s.sets.SaveQuestionSet(ctx, set); err != nil {
		return domain.UploadResult{}, fmt.Errorf("save question set: %w", err)
	}

	log := s.logger.WithFields(logrus.Fields{"setId": set.ID, "document": doc.Name})
	if err := s.record(ctx, doc, set.ID); err != nil {
		// the flashcards are usable even when history is not
		log.WithError(err).Warn("failed to record upload history")
	}
	log.WithField("questions", set.Len()).Info("flashcards generated")

	return domain.UploadResult{SetID: set.ID, Questions: set}, nil
}

// History returns recent uploads, newest first.
func (s *UploadService) History(ctx context.Context) ([]domain.HistoryEntry, error) {
	entries, err := s.history.LoadHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return entries, nil
}

// DeleteHistory removes one recent upload.
func (s *UploadService) DeleteHistory(ctx context.Context, id string) error {
	entries, err := s.history.LoadHistory(ctx)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	kept := make([]domain.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return domain.ErrHistoryEntryNotFound
	}
	if err := s.history.SaveHistory(ctx, kept); err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	return nil
}

func (s *UploadService) validate(doc domain.Document) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(doc.Name), "."))
	if ext != "pdf" && !strings.EqualFold(doc.MimeType, pdfMimeType) {
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedDocument, doc.Name)
	}
	if doc.Size > s.limits.MaxDocumentBytes {
		return fmt.Errorf("%w: %d bytes (limit %d)", domain.ErrDocumentTooLarge, doc.Size, s.limits.MaxDocumentBytes)
	}
	return nil
}

// record prepends the upload, replacing an older entry with the same name, and trims the list.
func (s *UploadService) record(ctx context.Context, doc domain.Document, setID string) error {
	entries, err := s.history.LoadHistory(ctx)
	if err != nil {
		return err
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(doc.Name), "."))
	if ext == "" {
		ext = "pdf"
	}
	mime := doc.MimeType
	if mime == "" {
		mime = pdfMimeType
	}
	updated := []domain.HistoryEntry{{
		ID:         uuid.NewString(),
		Name:       doc.Name,
		Size:       fmt.Sprintf("%.2f MB", float64(doc.Size)/(1024*1024)),
		Type:       ext,
		MimeType:   mime,
		SetID:      setID,
		UploadedAt: s.now(),
	}}
	for _, e := range entries {
		if e.Name != doc.Name {
			updated = append(updated, e)
		}
	}
	if len(updated) > s.limits.HistoryLimit {
		updated = updated[:s.limits.HistoryLimit]
	}
	return s.history.SaveHistory(ctx, updated)
}
