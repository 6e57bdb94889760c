package app_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"study-companion/internal/app"
	"study-companion/internal/domain"
	"study-companion/internal/infra/memory"
)

type stubGenerator struct {
	set   domain.QuestionSet
	err   error
	calls int
}

func (g *stubGenerator) Generate(_ context.Context, doc domain.Document) (domain.QuestionSet, error) {
	g.calls++
	if doc.Content != nil {
		if _, err := io.ReadAll(doc.Content); err != nil {
			return domain.QuestionSet{}, err
		}
	}
	return g.set, g.err
}

type failingHistory struct{}

func (failingHistory) LoadHistory(context.Context) ([]domain.HistoryEntry, error) {
	return nil, errors.New("history unavailable")
}

func (failingHistory) SaveHistory(context.Context, []domain.HistoryEntry) error {
	return errors.New("history unavailable")
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func pdf(name string, size int64) domain.Document {
	return domain.Document{Name: name, MimeType: "application/pdf", Size: size, Content: strings.NewReader("%PDF-1.4")}
}

func TestUploadServiceGenerateStoresSet(t *testing.T) {
	gen := &stubGenerator{set: biologySet()}
	sets := memory.NewQuestionSetStore(nil)
	history := memory.NewHistoryStore()
	svc := app.NewUploadService(gen, sets, history, app.UploadLimits{}, quietLogger())
	ctx := context.Background()

	result, err := svc.Generate(ctx, pdf("biology.pdf", 1024*1024))
	require.NoError(t, err)
	require.NotEmpty(t, result.SetID)
	require.Equal(t, 2, result.Questions.Len())

	stored, err := sets.LoadQuestionSet(ctx, result.SetID)
	require.NoError(t, err)
	require.Equal(t, "biology.pdf", stored.Name)

	entries, err := svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "biology.pdf", entries[0].Name)
	require.Equal(t, "1.00 MB", entries[0].Size)
	require.Equal(t, "pdf", entries[0].Type)
	require.Equal(t, result.SetID, entries[0].SetID)
}

func TestUploadServiceRejectsDocuments(t *testing.T) {
	gen := &stubGenerator{set: biologySet()}
	svc := app.NewUploadService(gen, memory.NewQuestionSetStore(nil), memory.NewHistoryStore(), app.UploadLimits{}, quietLogger())
	ctx := context.Background()

	_, err := svc.Generate(ctx, domain.Document{Name: "notes.docx", MimeType: "application/msword", Size: 10})
	require.ErrorIs(t, err, domain.ErrUnsupportedDocument)

	_, err = svc.Generate(ctx, pdf("huge.pdf", app.DefaultMaxDocumentBytes+1))
	require.ErrorIs(t, err, domain.ErrDocumentTooLarge)

	require.Zero(t, gen.calls)
}

func TestUploadServiceGeneratorFailures(t *testing.T) {
	ctx := context.Background()
	history := memory.NewHistoryStore()

	failing := &stubGenerator{err: fmt.Errorf("%w: status 500", domain.ErrGenerationFailed)}
	svc := app.NewUploadService(failing, memory.NewQuestionSetStore(nil), history, app.UploadLimits{}, quietLogger())
	_, err := svc.Generate(ctx, pdf("a.pdf", 10))
	require.ErrorIs(t, err, domain.ErrGenerationFailed)

	empty := &stubGenerator{}
	svc = app.NewUploadService(empty, memory.NewQuestionSetStore(nil), history, app.UploadLimits{}, quietLogger())
	_, err = svc.Generate(ctx, pdf("a.pdf", 10))
	require.ErrorIs(t, err, domain.ErrNoFlashcards)

	entries, err := history.LoadHistory(ctx)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestUploadServiceHistoryDedupesAndCaps(t *testing.T) {
	gen := &stubGenerator{set: biologySet()}
	svc := app.NewUploadService(gen, memory.NewQuestionSetStore(nil), memory.NewHistoryStore(), app.UploadLimits{HistoryLimit: 3}, quietLogger())
	ctx := context.Background()

	for _, name := range []string{"a.pdf", "b.pdf", "c.pdf", "a.pdf", "d.pdf"} {
		_, err := svc.Generate(ctx, pdf(name, 10))
		require.NoError(t, err)
	}

	entries, err := svc.History(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	require.Equal(t, []string{"d.pdf", "a.pdf", "c.pdf"}, names)

	require.NoError(t, svc.DeleteHistory(ctx, entries[1].ID))
	require.ErrorIs(t, svc.DeleteHistory(ctx, entries[1].ID), domain.ErrHistoryEntryNotFound)

	entries, err = svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestUploadServiceSurvivesHistoryFailure(t *testing.T) {
	gen := &stubGenerator{set: biologySet()}
	svc := app.NewUploadService(gen, memory.NewQuestionSetStore(nil), failingHistory{}, app.UploadLimits{}, quietLogger())

	result, err := svc.Generate(context.Background(), pdf("a.pdf", 10))
	require.NoError(t, err)
	require.NotEmpty(t, result.SetID)

	_, err = svc.History(context.Background())
	require.Error(t, err)
}
