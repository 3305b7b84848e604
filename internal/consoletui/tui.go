// Package consoletui provides the interactive studio console.
package consoletui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/amonks/blueprint/analysis"
	internalstrings "github.com/amonks/blueprint/internal/strings"
	"github.com/amonks/blueprint/studio"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const pollInterval = 2 * time.Second

type focusPane int

const (
	focusList focusPane = iota
	focusDetail
)

type statusLevel int

const (
	statusNone statusLevel = iota
	statusInfo
	statusError
)

type modalKind int

const (
	modalNone modalKind = iota
	modalHelp
	modalClear
)

type model struct {
	ctx          context.Context
	client       *studio.Client
	width        int
	height       int
	focus        focusPane
	slotList     list.Model
	detail       slotDetailModel
	spin         spinner.Model
	modal        confirmModal
	status       string
	statusLevel  statusLevel
	projectName  string
	initialized  bool
	anyRunning   bool
	selectedKind string
}

type confirmModal struct {
	kind        modalKind
	message     string
	confirmText string
	cancelText  string
	selected    int
}

// Run starts the console against a running studio server.
func Run(ctx context.Context, client *studio.Client) error {
	if client == nil {
		return fmt.Errorf("studio client is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	program := tea.NewProgram(newModel(ctx, client), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

func newModel(ctx context.Context, client *studio.Client) model {
	slotList := list.New(nil, newSlotItemDelegate(), 0, 0)
	slotList.Title = "Analyses"
	slotList.SetShowStatusBar(false)
	slotList.SetFilteringEnabled(false)
	slotList.SetShowHelp(false)
	slotList.SetShowPagination(false)

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = slotRunningStyle

	return model{
		ctx:      ctx,
		client:   client,
		focus:    focusList,
		slotList: slotList,
		detail:   newSlotDetailModel(),
		spin:     spin,
		modal:    confirmModal{kind: modalNone},
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.loadStatusCmd(), m.pollCmd())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.modal.kind != modalNone {
		return m.updateModal(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case statusLoadedMsg:
		return m.handleStatusLoaded(msg)
	case resultLoadedMsg:
		return m.handleResultLoaded(msg)
	case startedMsg:
		return m.handleStarted(msg)
	case clearedMsg:
		return m.handleCleared(msg)
	case exportedMsg:
		return m.handleExported(msg)
	case pollMsg:
		return m, tea.Batch(m.loadStatusCmd(), m.pollCmd())
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	if m.focus == focusList {
		m.slotList, cmd = m.slotList.Update(msg)
		if selectCmd := m.updateSelection(); selectCmd != nil {
			return m, tea.Batch(cmd, selectCmd)
		}
		return m, cmd
	}
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading blueprint console..."
	}
	helpLine := m.renderHelpLine()
	statusLine := m.renderStatusLine()
	contentHeight := m.height - 3
	if contentHeight < 1 {
		contentHeight = 1
	}
	leftWidth, rightWidth := splitWidths(m.width)

	listPane := m.renderPane(m.slotList.View(), leftWidth, contentHeight, m.focus == focusList)
	detailPane := m.renderPane(m.detail.View(), rightWidth, contentHeight, m.focus == focusDetail)
	content := lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)

	view := strings.Join([]string{m.renderTitleBar(), helpLine, content, statusLine}, "\n")
	if m.modal.kind != modalNone {
		view = m.renderModalOverlay(view)
	}
	return view
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "?":
		m.modal = confirmModal{kind: modalHelp}
		return m, nil
	case "enter":
		if m.focus == focusList {
			m.focus = focusDetail
		}
		return m, nil
	case "esc":
		if m.focus == focusDetail {
			m.focus = focusList
		}
		return m, nil
	case "r":
		return m, m.loadStatusCmd()
	case "s":
		return m.startSelected()
	case "e":
		m.setStatus("Exporting completed analyses...", statusInfo)
		return m, m.exportCmd()
	case "c":
		if !m.initialized {
			m.setStatus("No session to clear", statusError)
			return m, nil
		}
		m.modal = confirmModal{
			kind:        modalClear,
			message:     "Reset every analysis slot?",
			confirmText: "Clear",
			cancelText:  "Cancel",
			selected:    1,
		}
		return m, nil
	case "up", "k", "down", "j", "home", "end":
		if m.focus == focusList {
			var cmd tea.Cmd
			m.slotList, cmd = m.slotList.Update(msg)
			if selectCmd := m.updateSelection(); selectCmd != nil {
				return m, tea.Batch(cmd, selectCmd)
			}
			return m, cmd
		}
	}

	var cmd tea.Cmd
	if m.focus == focusDetail {
		m.detail, cmd = m.detail.Update(msg)
	}
	return m, cmd
}

func (m model) startSelected() (tea.Model, tea.Cmd) {
	item, ok := m.currentSlotItem()
	if !ok {
		m.setStatus("No analysis selected", statusError)
		return m, nil
	}
	kind := item.slot.Kind
	m.setStatus(fmt.Sprintf("Starting %s...", kind), statusInfo)
	return m, tea.Batch(m.startCmd(string(kind)), m.spin.Tick)
}

func (m model) updateModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	if m.modal.kind == modalHelp {
		switch key.String() {
		case "?", "esc":
			m.modal = confirmModal{kind: modalNone}
			return m, nil
		case "ctrl+c", "q":
			return m, tea.Quit
		}
		return m, nil
	}
	switch key.String() {
	case "left", "right", "tab", "shift+tab", "backtab":
		if m.modal.selected == 0 {
			m.modal.selected = 1
		} else {
			m.modal.selected = 0
		}
		return m, nil
	case "enter":
		confirm := m.modal.selected == 0
		kind := m.modal.kind
		m.modal = confirmModal{kind: modalNone}
		if confirm && kind == modalClear {
			return m, m.clearCmd()
		}
		return m, nil
	case "esc":
		m.modal = confirmModal{kind: modalNone}
		return m, nil
	}
	return m, nil
}

func (m model) handleStatusLoaded(msg statusLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setStatus(fmt.Sprintf("Status load failed: %v", msg.err), statusError)
		return m, nil
	}
	m.initialized = msg.status.Initialized
	m.projectName = msg.status.ProjectName

	wasRunning := m.anyRunning
	m.anyRunning = false
	items := make([]list.Item, 0, len(msg.status.Slots))
	for _, slot := range msg.status.Slots {
		items = append(items, slotItem{slot: slot})
		if slot.Status == analysis.StatusRunning {
			m.anyRunning = true
		}
	}
	m.slotList.SetItems(items)
	if m.selectedKind != "" {
		m.selectSlotByKind(m.selectedKind)
	}
	if len(items) > 0 && m.slotList.Index() < 0 {
		m.slotList.Select(0)
	}

	var cmds []tea.Cmd
	if selectCmd := m.updateSelection(); selectCmd != nil {
		cmds = append(cmds, selectCmd)
	} else if item, ok := m.currentSlotItem(); ok {
		// Selection unchanged, but the slot may have finished since the
		// last poll.
		m.detail.UpdateSlot(item.slot)
		if item.slot.HasResult && !m.detail.loaded {
			cmds = append(cmds, m.loadResultCmd(string(item.slot.Kind)))
		}
	}
	if m.anyRunning && !wasRunning {
		cmds = append(cmds, m.spin.Tick)
	}
	return m, tea.Batch(cmds...)
}

func (m model) handleResultLoaded(msg resultLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setStatus(fmt.Sprintf("Result load failed: %v", msg.err), statusError)
		return m, nil
	}
	if msg.kind != m.selectedKind {
		return m, nil
	}
	m.detail.SetResult(msg.result.Result)
	return m, nil
}

func (m model) handleStarted(msg startedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setStatus(fmt.Sprintf("Start failed: %v", msg.err), statusError)
		return m, nil
	}
	m.setStatus(fmt.Sprintf("Started %s", msg.kind), statusInfo)
	return m, m.loadStatusCmd()
}

func (m model) handleCleared(msg clearedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setStatus(fmt.Sprintf("Clear failed: %v", msg.err), statusError)
		return m, nil
	}
	m.detail.SetSlot(studio.SlotStatus{})
	m.selectedKind = ""
	m.setStatus("Cleared all analyses", statusInfo)
	return m, m.loadStatusCmd()
}

func (m model) handleExported(msg exportedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.setStatus(fmt.Sprintf("Export failed: %v", msg.err), statusError)
		return m, nil
	}
	if len(msg.files) == 0 {
		m.setStatus("Nothing to export yet", statusError)
		return m, nil
	}
	m.setStatus(fmt.Sprintf("Exported %d files", len(msg.files)), statusInfo)
	return m, nil
}

func (m *model) updateSelection() tea.Cmd {
	item, ok := m.currentSlotItem()
	if !ok {
		if m.selectedKind != "" {
			m.detail.SetSlot(studio.SlotStatus{})
			m.selectedKind = ""
		}
		return nil
	}
	kind := string(item.slot.Kind)
	if kind == m.selectedKind {
		return nil
	}
	m.selectedKind = kind
	m.detail.SetSlot(item.slot)
	if item.slot.HasResult {
		return m.loadResultCmd(kind)
	}
	return nil
}

func (m *model) selectSlotByKind(kind string) {
	for i, item := range m.slotList.Items() {
		slot, ok := item.(slotItem)
		if ok && string(slot.slot.Kind) == kind {
			m.slotList.Select(i)
			return
		}
	}
}

func (m model) currentSlotItem() (slotItem, bool) {
	item := m.slotList.SelectedItem()
	if item == nil {
		return slotItem{}, false
	}
	current, ok := item.(slotItem)
	return current, ok
}

func (m *model) resize() {
	contentHeight := m.height - 3
	if contentHeight < 1 {
		contentHeight = 1
	}
	leftWidth, rightWidth := splitWidths(m.width)
	listHeight := contentHeight - 2
	if listHeight < 1 {
		listHeight = 1
	}
	listWidth := leftWidth - 4
	if listWidth < 1 {
		listWidth = 1
	}
	innerDetailWidth := rightWidth - 4
	if innerDetailWidth < 1 {
		innerDetailWidth = 1
	}
	innerDetailHeight := contentHeight - 2
	if innerDetailHeight < 1 {
		innerDetailHeight = 1
	}
	m.slotList.SetSize(listWidth, listHeight)
	m.detail.SetSize(innerDetailWidth, innerDetailHeight)
}

func splitWidths(width int) (int, int) {
	left := width / 3
	if left < 30 {
		left = 30
	}
	if left > width-20 {
		left = width / 2
	}
	right := width - left
	if right < 20 {
		right = 20
		left = width - right
	}
	return left, right
}

func (m model) renderTitleBar() string {
	title := titleStyle.Render("Blueprint Console")
	project := ""
	if m.initialized {
		project = " " + m.projectName
		if m.anyRunning {
			project += " " + m.spin.View()
		}
	} else {
		project = valueMuted.Render(" no session; initialize via bp init or the web client")
	}
	helpHint := valueMuted.Render("Press ? for help")
	content := title + project
	spacerWidth := m.width - lipgloss.Width(content) - lipgloss.Width(helpHint)
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	spacer := strings.Repeat(" ", spacerWidth)
	return titleBarStyle.Width(m.width).Render(content + spacer + helpHint)
}

func (m model) renderPane(content string, width, height int, focused bool) string {
	style := paneStyle
	if focused {
		style = paneActiveStyle
	}
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return style.Width(width).Height(height).Render(content)
}

func (m model) renderStatusLine() string {
	text := m.status
	if internalstrings.IsBlank(text) {
		return ""
	}
	style := valueMuted
	if m.statusLevel == statusError {
		style = statusErrorStyle
	} else if m.statusLevel == statusInfo {
		style = statusSuccessStyle
	}
	return style.Render(text)
}

func (m model) renderHelpLine() string {
	text := "Keys: up/down move | enter detail | s start | e export | c clear | r refresh | ? help | q quit"
	if m.focus == focusDetail {
		text = "Keys: up/down/pgup/pgdown scroll | esc back | ? help | q quit"
	}
	return helpBarStyle.Width(m.width).Render(truncateText(text, m.width))
}

func (m *model) setStatus(text string, level statusLevel) {
	m.status = text
	m.statusLevel = level
}

func (m model) renderModalOverlay(content string) string {
	modal := m.modalView()
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}

func (m model) modalView() string {
	modalStyle := lipgloss.NewStyle().Border(borderASCII).Padding(1, 2)
	if m.modal.kind == modalHelp {
		return modalStyle.Render(m.helpContent())
	}
	buttons := make([]string, 0, 2)
	for i, option := range []string{m.modal.confirmText, m.modal.cancelText} {
		style := valueMuted
		if i == m.modal.selected {
			style = selectedBorder
		}
		buttons = append(buttons, style.Render("["+option+"]"))
	}
	content := strings.Join([]string{m.modal.message, "", strings.Join(buttons, " ")}, "\n")
	return modalStyle.Render(content)
}

func (m model) helpContent() string {
	sections := []string{
		labelStyle.Render("Global"),
		"q or ctrl+c: quit",
		"?: toggle help",
		"r: refresh status",
		"",
		labelStyle.Render("Navigation"),
		"up/down or j/k: move selection",
		"enter: focus detail pane",
		"esc: return to list",
		"",
		labelStyle.Render("Analyses"),
		"s: start (or re-run) selected analysis",
		"e: export completed results",
		"c: clear all slots",
		"",
		labelStyle.Render("Help"),
		"press ? or esc to close",
	}
	return strings.Join(sections, "\n")
}

func (m model) loadStatusCmd() tea.Cmd {
	return func() tea.Msg {
		status, err := m.client.Status(m.ctx)
		return statusLoadedMsg{status: status, err: err}
	}
}

func (m model) loadResultCmd(kind string) tea.Cmd {
	return func() tea.Msg {
		result, err := m.client.Result(m.ctx, kind)
		return resultLoadedMsg{kind: kind, result: result, err: err}
	}
}

func (m model) startCmd(kind string) tea.Cmd {
	return func() tea.Msg {
		resolved, err := m.client.Start(m.ctx, kind)
		return startedMsg{kind: string(resolved), err: err}
	}
}

func (m model) clearCmd() tea.Cmd {
	return func() tea.Msg {
		return clearedMsg{err: m.client.Clear(m.ctx)}
	}
}

func (m model) exportCmd() tea.Cmd {
	return func() tea.Msg {
		files, err := m.client.Export(m.ctx, "")
		return exportedMsg{files: files, err: err}
	}
}

func (m model) pollCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		return pollMsg{}
	})
}

type statusLoadedMsg struct {
	status studio.SessionStatus
	err    error
}

type resultLoadedMsg struct {
	kind   string
	result studio.SlotResult
	err    error
}

type startedMsg struct {
	kind string
	err  error
}

type clearedMsg struct {
	err error
}

type exportedMsg struct {
	files []string
	err   error
}

type pollMsg struct{}
