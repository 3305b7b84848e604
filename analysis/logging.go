package analysis

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Logger captures structured analysis log entries.
type Logger interface {
	Prompt(PromptLog)
	Result(ResultLog)
	Failure(FailureLog)
}

// PromptLog captures the rendered prompt sent to the agent.
type PromptLog struct {
	Kind   Kind
	Prompt string
}

// ResultLog captures a completed analysis.
type ResultLog struct {
	Kind     Kind
	Text     string
	Duration time.Duration
}

// FailureLog captures a failed analysis.
type FailureLog struct {
	Kind    Kind
	Message string
}

type noopLogger struct{}

func (noopLogger) Prompt(PromptLog)   {}
func (noopLogger) Result(ResultLog)   {}
func (noopLogger) Failure(FailureLog) {}

// NoopLogger returns a logger that discards all entries.
func NoopLogger() Logger {
	return noopLogger{}
}

// ConsoleLogger writes formatted log output. One logger may be shared by
// concurrent slot goroutines; blocks are serialized on the writer.
type ConsoleLogger struct {
	writer       io.Writer
	headerStyle  lipgloss.Style
	failureStyle lipgloss.Style
	showPrompts  bool

	mu      sync.Mutex
	started bool
}

// ConsoleLoggerOptions configures a console logger.
type ConsoleLoggerOptions struct {
	// ShowPrompts includes the full rendered prompt in the output.
	ShowPrompts bool
}

// NewConsoleLogger builds a styled logger for interactive output.
func NewConsoleLogger(writer io.Writer, opts ConsoleLoggerOptions) *ConsoleLogger {
	if writer == nil {
		writer = io.Discard
	}
	return &ConsoleLogger{
		writer:       writer,
		headerStyle:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33")),
		failureStyle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("160")),
		showPrompts:  opts.ShowPrompts,
	}
}

// Prompt logs the prompt dispatched for a kind.
func (logger *ConsoleLogger) Prompt(entry PromptLog) {
	if logger == nil {
		return
	}
	label := fmt.Sprintf("Running %s analysis:", entry.Kind.Title())
	lines := []string{formatLogLabel(logger.headerStyle.Render(label), documentIndent)}
	if logger.showPrompts && strings.TrimSpace(entry.Prompt) != "" {
		lines = append(lines, formatLogBody(ReflowParagraphs(entry.Prompt, lineWidth), subdocumentIndent))
	}
	logger.writeBlock(lines...)
}

// Result logs a completed analysis.
func (logger *ConsoleLogger) Result(entry ResultLog) {
	if logger == nil {
		return
	}
	label := fmt.Sprintf("%s completed in %s:", entry.Kind.Title(), entry.Duration.Truncate(time.Second))
	body := entry.Text
	if entry.Kind.Format() == FormatMarkdown {
		body = RenderMarkdown(body, lineWidth)
	}
	logger.writeBlock(
		formatLogLabel(logger.headerStyle.Render(label), documentIndent),
		formatLogBody(body, subdocumentIndent),
	)
}

// Failure logs a failed analysis.
func (logger *ConsoleLogger) Failure(entry FailureLog) {
	if logger == nil {
		return
	}
	label := fmt.Sprintf("%s failed:", entry.Kind.Title())
	logger.writeBlock(
		formatLogLabel(logger.failureStyle.Render(label), documentIndent),
		formatLogBody(entry.Message, subdocumentIndent),
	)
}

func (logger *ConsoleLogger) writeBlock(lines ...string) {
	if len(lines) == 0 {
		return
	}
	logger.mu.Lock()
	defer logger.mu.Unlock()
	if logger.started {
		fmt.Fprintln(logger.writer)
	}
	logger.started = true
	for _, line := range lines {
		fmt.Fprintln(logger.writer, line)
	}
}

func formatLogLabel(label string, indent int) string {
	if strings.TrimSpace(label) == "" {
		return ""
	}
	return IndentBlock(label, indent)
}

func formatLogBody(body string, indent int) string {
	body = strings.TrimRight(body, "\r\n")
	if strings.TrimSpace(body) == "" {
		body = "-"
	}
	return IndentBlock(body, indent)
}
