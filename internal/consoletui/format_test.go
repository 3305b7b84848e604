package consoletui

import (
	"strings"
	"testing"

	"github.com/amonks/blueprint/analysis"
	"github.com/amonks/blueprint/studio"
)

func TestFormatSlotItemShowsStatusMarker(t *testing.T) {
	item := slotItem{slot: studio.SlotStatus{
		Kind:   analysis.KindArchitecture,
		Title:  "Architecture",
		Status: analysis.StatusCompleted,
	}}
	line := formatSlotItem(item, 80)
	if !strings.Contains(line, "Architecture") {
		t.Fatalf("expected title in line, got %q", line)
	}
	if !strings.Contains(line, "completed") {
		t.Fatalf("expected status in line, got %q", line)
	}
}

func TestTruncateText(t *testing.T) {
	if got := truncateText("short", 80); got != "short" {
		t.Fatalf("expected unchanged text, got %q", got)
	}
	got := truncateText("a long line of console text", 10)
	if len([]rune(got)) > 10 {
		t.Fatalf("expected truncation to 10 runes, got %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis, got %q", got)
	}
}

func TestSlotDetailRendersErrorOverResult(t *testing.T) {
	detail := newSlotDetailModel()
	detail.SetSize(80, 24)
	detail.SetSlot(studio.SlotStatus{
		Kind:   analysis.KindDiagram,
		Title:  "Diagram",
		Status: analysis.StatusFailed,
		Err:    "agent timed out after 45s",
	})
	content := detail.renderContent()
	if !strings.Contains(content, "agent timed out") {
		t.Fatalf("expected error in detail, got %q", content)
	}
}
