package main

import (
	"strconv"
	"time"

	"github.com/amonks/blueprint/analysis"
	internalage "github.com/amonks/blueprint/internal/age"
	"github.com/amonks/blueprint/internal/ui"
	"github.com/amonks/blueprint/studio"
	"github.com/amonks/blueprint/toolhost"
)

// SlotTableOptions configures slot table rendering.
type SlotTableOptions struct {
	Slots         []studio.SlotStatus
	Highlight     func(id string, prefixLen int) string
	Now           time.Time
	PrefixLengths map[string]int
}

// formatSlotTable renders one row per analysis slot. The unique typable
// prefix of each kind name is highlighted.
func formatSlotTable(opts SlotTableOptions) string {
	builder := ui.NewTableBuilder([]string{"ANALYSIS", "KIND", "STATUS", "STARTED", "TOOK", "RESULT"}, len(opts.Slots))
	for _, slot := range opts.Slots {
		builder.AddRow([]string{
			slot.Title,
			formatKindCell(string(slot.Kind), opts.Highlight, opts.PrefixLengths),
			string(slot.Status),
			formatSlotStarted(slot, opts.Now),
			formatSlotDuration(slot, opts.Now),
			formatSlotResult(slot),
		})
	}
	return builder.String()
}

// formatToolTable renders one row per tool server.
func formatToolTable(statuses []toolhost.ServerStatus) string {
	builder := ui.NewTableBuilder([]string{"SERVER", "STATE", "TOOLS", "ERROR"}, len(statuses))
	for _, status := range statuses {
		builder.AddRow([]string{
			status.Name,
			formatToolState(status),
			formatToolCount(status),
			ui.TruncateTableCell(formatToolError(status)),
		})
	}
	return builder.String()
}

func formatKindCell(kind string, highlight func(string, int) string, prefixLengths map[string]int) string {
	if highlight == nil || prefixLengths == nil {
		return kind
	}
	return highlight(kind, prefixLengths[kind])
}

func formatSlotStarted(slot studio.SlotStatus, now time.Time) string {
	if slot.StartedAt == nil {
		return "-"
	}
	return ui.FormatTimeAgo(*slot.StartedAt, now)
}

func formatSlotDuration(slot studio.SlotStatus, now time.Time) string {
	running := slot.Status == analysis.StatusRunning
	duration, ok := internalage.DurationData(slot.StartedAt, slot.FinishedAt, running, now)
	if !ok {
		return "-"
	}
	return ui.FormatDurationShort(duration)
}

func formatSlotResult(slot studio.SlotStatus) string {
	if slot.Err != "" {
		return ui.TruncateTableCell(slot.Err)
	}
	if slot.HasResult {
		return "yes"
	}
	return "-"
}

func formatToolState(status toolhost.ServerStatus) string {
	switch {
	case status.Disabled:
		return "disabled"
	case status.Connected:
		return "connected"
	default:
		return "down"
	}
}

func formatToolCount(status toolhost.ServerStatus) string {
	if !status.Connected {
		return "-"
	}
	return strconv.Itoa(status.ToolCount)
}

func formatToolError(status toolhost.ServerStatus) string {
	if status.Err == "" {
		return "-"
	}
	return status.Err
}

// slotKindPrefixLengths computes the shortest unique prefix of each kind
// name, so status output shows what a user can type.
func slotKindPrefixLengths(slots []studio.SlotStatus) map[string]int {
	names := make([]string, 0, len(slots))
	for _, slot := range slots {
		names = append(names, string(slot.Kind))
	}
	return ui.UniqueIDPrefixLengths(names)
}
