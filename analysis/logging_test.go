package analysis

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestConsoleLoggerPrompt(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(&buf, ConsoleLoggerOptions{})

	logger.Prompt(PromptLog{Kind: KindArchitecture, Prompt: "full prompt text"})
	output := buf.String()
	if !strings.Contains(output, "Running Architecture analysis:") {
		t.Errorf("expected header, got %q", output)
	}
	if strings.Contains(output, "full prompt text") {
		t.Errorf("prompt text should be hidden by default, got %q", output)
	}
}

func TestConsoleLoggerShowPrompts(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(&buf, ConsoleLoggerOptions{ShowPrompts: true})

	logger.Prompt(PromptLog{Kind: KindDiagram, Prompt: "full prompt text"})
	if !strings.Contains(buf.String(), "full prompt text") {
		t.Errorf("expected prompt text, got %q", buf.String())
	}
}

func TestConsoleLoggerShowPromptsWrapsLongLines(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(&buf, ConsoleLoggerOptions{ShowPrompts: true})

	prompt := strings.Repeat("analyze the requirements ", 10)
	logger.Prompt(PromptLog{Kind: KindRequirements, Prompt: prompt})

	for _, line := range strings.Split(buf.String(), "\n") {
		if len(line) > lineWidth+subdocumentIndent {
			t.Fatalf("prompt line exceeds wrap width: %q", line)
		}
	}
}

func TestConsoleLoggerSharedAcrossGoroutines(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(&buf, ConsoleLoggerOptions{})

	var wg sync.WaitGroup
	for _, kind := range Kinds() {
		wg.Add(1)
		go func(kind Kind) {
			defer wg.Done()
			logger.Failure(FailureLog{Kind: kind, Message: "boom"})
		}(kind)
	}
	wg.Wait()

	output := buf.String()
	for _, kind := range Kinds() {
		if !strings.Contains(output, kind.Title()+" failed:") {
			t.Errorf("missing block for %s in %q", kind, output)
		}
	}
}

func TestConsoleLoggerFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(&buf, ConsoleLoggerOptions{})

	logger.Failure(FailureLog{Kind: KindCostAnalysis, Message: "agent timed out after 45s"})
	output := buf.String()
	if !strings.Contains(output, "Cost Analysis failed:") {
		t.Errorf("expected failure header, got %q", output)
	}
	if !strings.Contains(output, "agent timed out") {
		t.Errorf("expected failure message, got %q", output)
	}
}

func TestConsoleLoggerResult(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(&buf, ConsoleLoggerOptions{})

	logger.Result(ResultLog{Kind: KindCDKTypeScript, Text: "const app = new cdk.App();", Duration: 3 * time.Second})
	output := buf.String()
	if !strings.Contains(output, "TypeScript CDK completed in 3s:") {
		t.Errorf("expected completion header, got %q", output)
	}
	if !strings.Contains(output, "const app") {
		t.Errorf("expected result body, got %q", output)
	}
}
