package memory

import (
	"context"
	"testing"

	"study-companion/internal/domain"
)

func TestHistoryStoreReturnsCopies(t *testing.T) {
	store := NewHistoryStore()
	ctx := context.Background()

	entries := []domain.HistoryEntry{{ID: "h1", Name: "biology.pdf"}}
	if err := store.SaveHistory(ctx, entries); err != nil {
		t.Fatalf("save: %v", err)
	}
	entries[0].Name = "mutated.pdf"

	got, err := store.LoadHistory(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 || got[0].Name != "biology.pdf" {
		t.Fatalf("unexpected history %+v", got)
	}
}
