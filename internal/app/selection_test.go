package app

import "testing"

func TestSelectionTrackerOverwrites(t *testing.T) {
	tracker := NewSelectionTracker()

	if _, ok := tracker.Get(1); ok {
		t.Fatalf("expected no selection before recording")
	}

	tracker.Record(1, "A", "B")
	tracker.Record(1, "A", "B")
	if tracker.Len() != 1 {
		t.Fatalf("expected one selection after identical calls, got %d", tracker.Len())
	}

	tracker.Record(1, "C", "B")
	if got, ok := tracker.Get(1); !ok || got != "C" {
		t.Fatalf("expected latest selection C, got %q (%v)", got, ok)
	}
}

func TestSelectionTrackerSnapshotIsOrderedCopy(t *testing.T) {
	tracker := NewSelectionTracker()
	tracker.Record(3, "B", "B")
	tracker.Record(1, "A", "A")
	tracker.Record(2, "D", "C")

	snapshot := tracker.Snapshot()
	if len(snapshot) != 3 {
		t.Fatalf("expected 3 selections, got %d", len(snapshot))
	}
	for i, s := range snapshot {
		if s.QuestionNumber != i+1 {
			t.Fatalf("expected ordered snapshot, got %+v", snapshot)
		}
	}

	snapshot[0].SelectedOption = "Z"
	if got, _ := tracker.Get(1); got != "A" {
		t.Fatalf("snapshot must not alias tracker state, got %q", got)
	}

	rebuilt := NewSelectionTrackerFrom(snapshot)
	if got, _ := rebuilt.Get(2); got != "D" {
		t.Fatalf("expected rebuilt tracker to carry selections, got %q", got)
	}
}
