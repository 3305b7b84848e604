package consoletui

import (
	"fmt"
	"io"
	"strings"

	"github.com/amonks/blueprint/analysis"
	"github.com/amonks/blueprint/internal/markdown"
	internalstrings "github.com/amonks/blueprint/internal/strings"
	"github.com/amonks/blueprint/studio"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type slotItem struct {
	slot studio.SlotStatus
}

func (item slotItem) FilterValue() string {
	return string(item.slot.Kind)
}

type slotItemDelegate struct {
	normalStyle   lipgloss.Style
	selectedStyle lipgloss.Style
}

func newSlotItemDelegate() slotItemDelegate {
	return slotItemDelegate{
		normalStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		selectedStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("24")),
	}
}

func (d slotItemDelegate) Height() int                             { return 1 }
func (d slotItemDelegate) Spacing() int                            { return 0 }
func (d slotItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d slotItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(slotItem)
	if !ok {
		return
	}

	line := formatSlotItem(item, m.Width())
	style := d.normalStyle
	if index == m.Index() {
		style = d.selectedStyle
	}
	fmt.Fprint(w, style.Render(line))
}

func formatSlotItem(item slotItem, width int) string {
	marker := " "
	switch item.slot.Status {
	case analysis.StatusRunning:
		marker = slotRunningStyle.Render("~")
	case analysis.StatusCompleted:
		marker = slotCompletedStyle.Render("*")
	case analysis.StatusFailed:
		marker = slotFailedStyle.Render("!")
	}
	line := fmt.Sprintf("%s %-20s %s", marker, item.slot.Title, item.slot.Status)
	return truncateText(line, width)
}

type slotDetailModel struct {
	slot     studio.SlotStatus
	result   string
	loaded   bool
	viewport viewport.Model
	active   bool
}

func newSlotDetailModel() slotDetailModel {
	return slotDetailModel{viewport: viewport.New(0, 0)}
}

func (model *slotDetailModel) SetSize(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	model.viewport.Width = width
	model.viewport.Height = height
	model.viewport.SetContent(model.renderContent())
}

func (model *slotDetailModel) SetSlot(slot studio.SlotStatus) {
	model.slot = slot
	model.result = ""
	model.loaded = false
	model.active = slot.Kind != ""
	model.viewport.SetContent(model.renderContent())
	model.viewport.GotoTop()
}

// UpdateSlot refreshes slot metadata without dropping a loaded result.
func (model *slotDetailModel) UpdateSlot(slot studio.SlotStatus) {
	model.slot = slot
	if !slot.HasResult {
		model.result = ""
		model.loaded = false
	}
	model.viewport.SetContent(model.renderContent())
}

func (model *slotDetailModel) SetResult(result string) {
	model.result = result
	model.loaded = true
	model.viewport.SetContent(model.renderContent())
	model.viewport.GotoTop()
}

func (model slotDetailModel) Update(msg tea.Msg) (slotDetailModel, tea.Cmd) {
	model.viewport, _ = model.viewport.Update(msg)
	return model, nil
}

func (model slotDetailModel) View() string {
	if !model.active {
		return valueMuted.Render("No analysis selected")
	}
	return model.viewport.View()
}

func (model slotDetailModel) renderContent() string {
	if model.slot.Kind == "" {
		return ""
	}
	header := labelStyle.Render(model.slot.Title)
	meta := fmt.Sprintf("Status: %s", model.slot.Status)
	if model.slot.StartedAt != nil {
		meta += fmt.Sprintf("  Started: %s", model.slot.StartedAt.Format("15:04:05"))
	}
	if model.slot.FinishedAt != nil {
		meta += fmt.Sprintf("  Finished: %s", model.slot.FinishedAt.Format("15:04:05"))
	}

	body := ""
	switch {
	case model.slot.Err != "":
		body = statusErrorStyle.Render(model.slot.Err)
	case model.loaded:
		body = model.renderResult()
	case model.slot.HasResult:
		body = valueMuted.Render("Loading result...")
	default:
		body = valueMuted.Render("No result yet. Press s to start.")
	}
	return strings.Join([]string{header, meta, "", body}, "\n")
}

func (model slotDetailModel) renderResult() string {
	result := internalstrings.TrimTrailingNewlines(model.result)
	if result == "" {
		return "-"
	}
	if model.slot.Kind.Format() != analysis.FormatMarkdown {
		return result
	}
	width := model.viewport.Width
	if width < 1 {
		width = 80
	}
	rendered := markdown.SafeRender(width, 0, []byte(result))
	if len(rendered) == 0 {
		return result
	}
	return string(rendered)
}

func truncateText(value string, width int) string {
	if width <= 0 {
		return value
	}
	if lipgloss.Width(value) <= width {
		return value
	}
	runes := []rune(value)
	if len(runes) <= width {
		return value
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
