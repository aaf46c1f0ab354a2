package answer

import (
	"testing"

	"github.com/ppiankov/sibyl/internal/model"
)

func TestAccumulator_Empty(t *testing.T) {
	acc := NewAccumulator()

	if acc.Len() != 0 {
		t.Errorf("expected empty accumulator, got %d documents", acc.Len())
	}
	if got := acc.Join(); got != "" {
		t.Errorf("expected empty join, got %q", got)
	}
	if snap := acc.Snapshot(); len(snap) != 0 {
		t.Errorf("expected empty snapshot, got %d documents", len(snap))
	}
}

func TestAccumulator_JoinPreservesOrder(t *testing.T) {
	acc := NewAccumulator()
	acc.Append(model.EvidenceDocument{Content: "D1"})
	acc.Append(model.EvidenceDocument{Content: "D2"})
	acc.Append(model.EvidenceDocument{Content: "D3"})

	want := "D1\n\nD2\n\nD3"
	if got := acc.Join(); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestAccumulator_NeverDeduplicates(t *testing.T) {
	acc := NewAccumulator()
	acc.Append(model.EvidenceDocument{Content: "same"})
	acc.Append(model.EvidenceDocument{Content: "same"})

	if acc.Len() != 2 {
		t.Errorf("expected 2 documents, got %d", acc.Len())
	}
	if got := acc.Join(); got != "same\n\nsame" {
		t.Errorf("unexpected join: %q", got)
	}
}

func TestAccumulator_SnapshotIsCopy(t *testing.T) {
	acc := NewAccumulator()
	acc.Append(model.EvidenceDocument{Content: "original"})

	snap := acc.Snapshot()
	snap[0].Content = "mutated"

	if acc.Snapshot()[0].Content != "original" {
		t.Error("mutating a snapshot must not affect the accumulator")
	}
}
