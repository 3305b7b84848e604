package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amonks/blueprint/agent"
)

// Agent is the remote reasoning service boundary. The implementation may
// consult tool servers before returning its final text; that is opaque to
// the runner.
type Agent interface {
	Complete(ctx context.Context, systemPrompt, prompt string) (string, error)
}

// RunnerOptions configures a task runner.
// Nil/zero fields use defaults.
type RunnerOptions struct {
	// ProjectName parameterizes the prompt templates.
	ProjectName string
	// TemplatesDir overrides the embedded prompt templates per file.
	TemplatesDir string
	// SystemPrompt replaces the default standing system prompt.
	SystemPrompt string
	// Timeouts overrides the per-kind wall-clock budget.
	Timeouts map[Kind]time.Duration
	// Logger receives the rendered prompt for each run.
	Logger Logger
}

// Runner executes exactly one analysis kind against the remote agent. It
// performs no retries; retry policy belongs to the caller.
type Runner struct {
	agent        Agent
	projectName  string
	templatesDir string
	systemPrompt string
	timeouts     map[Kind]time.Duration
	logger       Logger
}

// NewRunner creates a runner for the given agent.
func NewRunner(remote Agent, opts RunnerOptions) (*Runner, error) {
	if remote == nil {
		return nil, fmt.Errorf("agent is required")
	}
	systemPrompt := opts.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = SystemPrompt()
	}
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	timeouts := make(map[Kind]time.Duration, len(Kinds()))
	for _, kind := range Kinds() {
		timeouts[kind] = kind.DefaultTimeout()
	}
	for kind, budget := range opts.Timeouts {
		if !kind.IsValid() {
			return nil, formatUnknownKindError(kind)
		}
		if budget <= 0 {
			return nil, fmt.Errorf("timeout for %s must be positive", kind)
		}
		timeouts[kind] = budget
	}
	return &Runner{
		agent:        remote,
		projectName:  opts.ProjectName,
		templatesDir: opts.TemplatesDir,
		systemPrompt: systemPrompt,
		timeouts:     timeouts,
		logger:       logger,
	}, nil
}

// Timeout returns the configured budget for the kind.
func (r *Runner) Timeout(kind Kind) time.Duration {
	if budget, ok := r.timeouts[kind]; ok {
		return budget
	}
	return kind.DefaultTimeout()
}

// Prompt renders the kind's instruction template with the context text.
func (r *Runner) Prompt(kind Kind, contextText string) (string, error) {
	return RenderPrompt(kind, PromptData{
		ProjectName: r.projectName,
		Context:     contextText,
	}, r.templatesDir)
}

// Run renders the kind's prompt and dispatches it to the agent, bounded by
// the kind's wall-clock budget. Failures map onto the agent error taxonomy:
// a deadline becomes *agent.TimeoutError, everything else surfaces as the
// agent reported it.
func (r *Runner) Run(ctx context.Context, kind Kind, contextText string) (string, error) {
	if !kind.IsValid() {
		return "", formatUnknownKindError(kind)
	}
	prompt, err := r.Prompt(kind, contextText)
	if err != nil {
		return "", fmt.Errorf("render %s prompt: %w", kind, err)
	}
	r.logger.Prompt(PromptLog{Kind: kind, Prompt: prompt})

	budget := r.Timeout(kind)
	runCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	text, err := r.agent.Complete(runCtx, r.systemPrompt, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return "", &agent.TimeoutError{Budget: budget}
		}
		return "", err
	}
	return text, nil
}
