// Package agent speaks the OpenAI-compatible chat-completions API and
// bridges tool calls to the toolhost's MCP servers.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/amonks/blueprint/toolhost"
	"github.com/sashabaranov/go-openai"
)

const (
	defaultModel         = "gpt-4o"
	defaultMaxTokens     = 4096
	defaultMaxToolRounds = 12
)

// ToolCaller supplies callable tools to the agent. *toolhost.Host satisfies
// it; tests substitute fakes.
type ToolCaller interface {
	Tools() []toolhost.Tool
	Call(ctx context.Context, name string, args map[string]any) (string, error)
}

// Options configures an agent client.
// Zero fields use defaults.
type Options struct {
	// APIKey authenticates against the completions API.
	APIKey string
	// BaseURL overrides the API endpoint, for OpenAI-compatible services.
	BaseURL string
	// Model selects the completion model.
	Model string
	// MaxTokens bounds the completion length.
	MaxTokens int
	// Tools supplies callable tools; nil runs the agent without tools.
	Tools ToolCaller
	// MaxToolRounds bounds tool-call round trips per completion.
	MaxToolRounds int
}

// Client is the production Agent implementation.
type Client struct {
	api       *openai.Client
	model     string
	maxTokens int
	tools     ToolCaller
	maxRounds int
}

// New creates an agent client.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	config := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		config.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	model := opts.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	maxRounds := opts.MaxToolRounds
	if maxRounds <= 0 {
		maxRounds = defaultMaxToolRounds
	}
	return &Client{
		api:       openai.NewClientWithConfig(config),
		model:     model,
		maxTokens: maxTokens,
		tools:     opts.Tools,
		maxRounds: maxRounds,
	}, nil
}

// Complete sends the prompt to the model and runs tool-call rounds against
// the toolhost until the model returns plain text.
func (c *Client) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	tools := c.toolDefinitions()
	for round := 0; round <= c.maxRounds; round++ {
		req := openai.ChatCompletionRequest{
			Model:    c.model,
			Messages: messages,
			Tools:    tools,
		}
		// Reasoning models reject MaxTokens.
		if isReasoningModel(c.model) {
			req.MaxCompletionTokens = c.maxTokens
		} else {
			req.MaxTokens = c.maxTokens
		}

		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", mapCompletionError(ctx, err)
		}
		if len(resp.Choices) == 0 {
			return "", &Error{Message: "completion returned no choices"}
		}
		message := resp.Choices[0].Message
		if len(message.ToolCalls) == 0 {
			return message.Content, nil
		}

		messages = append(messages, message)
		for _, call := range message.ToolCalls {
			output, err := c.invokeTool(ctx, call)
			if err != nil {
				return "", err
			}
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    output,
				ToolCallID: call.ID,
			})
		}
	}
	return "", &Error{Message: fmt.Sprintf("tool call rounds exceeded %d", c.maxRounds)}
}

func (c *Client) invokeTool(ctx context.Context, call openai.ToolCall) (string, error) {
	if c.tools == nil {
		return "", &ToolUnavailableError{Err: fmt.Errorf("no tool servers connected")}
	}
	args := map[string]any{}
	if strings.TrimSpace(call.Function.Arguments) != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			// Give the model its malformed arguments back instead of
			// failing the whole analysis.
			return fmt.Sprintf("invalid tool arguments: %v", err), nil
		}
	}
	output, err := c.tools.Call(ctx, call.Function.Name, args)
	if err != nil {
		var unavailable *toolhost.ServerUnavailableError
		if errors.As(err, &unavailable) {
			return "", &ToolUnavailableError{Server: unavailable.Server, Err: err}
		}
		if errors.Is(err, toolhost.ErrToolNotFound) {
			return fmt.Sprintf("unknown tool %s", call.Function.Name), nil
		}
		return "", err
	}
	return output, nil
}

func (c *Client) toolDefinitions() []openai.Tool {
	if c.tools == nil {
		return nil
	}
	available := c.tools.Tools()
	if len(available) == 0 {
		return nil
	}
	defs := make([]openai.Tool, 0, len(available))
	for _, tool := range available {
		defs = append(defs, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.InputSchema,
			},
		})
	}
	return defs
}

func mapCompletionError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return context.DeadlineExceeded
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &Error{Message: apiErr.Message}
	}
	return fmt.Errorf("create chat completion: %w", err)
}

func isReasoningModel(model string) bool {
	for _, prefix := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}
