package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amonks/blueprint/toolhost"
)

// completionRequest is the subset of the chat-completions request the tests
// inspect.
type completionRequest struct {
	Model               string           `json:"model"`
	Messages            []requestMessage `json:"messages"`
	MaxTokens           int              `json:"max_tokens"`
	MaxCompletionTokens int              `json:"max_completion_tokens"`
	Tools               []json.RawMessage `json:"tools"`
}

type requestMessage struct {
	Role       string `json:"role"`
	Content    string `json:"content"`
	ToolCallID string `json:"tool_call_id"`
}

// fakeCompletions serves scripted chat-completion responses and records the
// requests it saw.
type fakeCompletions struct {
	responses []string
	requests  []completionRequest
}

func (f *fakeCompletions) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req completionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.requests = append(f.requests, req)
		index := len(f.requests) - 1
		if index >= len(f.responses) {
			index = len(f.responses) - 1
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, f.responses[index])
	}
}

func contentResponse(text string) string {
	return fmt.Sprintf(`{"id":"cmpl","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":"stop"}]}`, text)
}

func toolCallResponse(id, name, args string) string {
	return fmt.Sprintf(`{"id":"cmpl","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","tool_calls":[{"id":%q,"type":"function","function":{"name":%q,"arguments":%q}}]},"finish_reason":"tool_calls"}]}`, id, name, args)
}

func newTestClient(t *testing.T, baseURL string, opts Options) *Client {
	t.Helper()
	opts.APIKey = "sk-test"
	opts.BaseURL = baseURL
	client, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return client
}

type fakeToolCaller struct {
	tools []toolhost.Tool
	call  func(ctx context.Context, name string, args map[string]any) (string, error)
	calls []string
}

func (f *fakeToolCaller) Tools() []toolhost.Tool {
	return f.tools
}

func (f *fakeToolCaller) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	f.calls = append(f.calls, name)
	return f.call(ctx, name, args)
}

func searchTool() toolhost.Tool {
	return toolhost.Tool{
		Server:      "github",
		Name:        "search_repositories",
		Description: "Search repositories",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"q":{"type":"string"}}}`),
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestCompletePlainResponse(t *testing.T) {
	fake := &fakeCompletions{responses: []string{contentResponse("the answer")}}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client := newTestClient(t, server.URL, Options{})
	got, err := client.Complete(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "the answer" {
		t.Errorf("unexpected completion %q", got)
	}

	if len(fake.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(fake.requests))
	}
	req := fake.requests[0]
	if req.Model != "gpt-4o" {
		t.Errorf("expected default model, got %q", req.Model)
	}
	if req.MaxTokens != 4096 {
		t.Errorf("expected default max tokens, got %d", req.MaxTokens)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
		t.Errorf("unexpected messages %+v", req.Messages)
	}
}

func TestCompleteOmitsBlankSystemPrompt(t *testing.T) {
	fake := &fakeCompletions{responses: []string{contentResponse("ok")}}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client := newTestClient(t, server.URL, Options{})
	if _, err := client.Complete(context.Background(), "   ", "user prompt"); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if len(fake.requests[0].Messages) != 1 {
		t.Errorf("expected only the user message, got %+v", fake.requests[0].Messages)
	}
}

func TestCompleteReasoningModelUsesCompletionTokenCap(t *testing.T) {
	fake := &fakeCompletions{responses: []string{contentResponse("ok")}}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	client := newTestClient(t, server.URL, Options{Model: "o3-mini", MaxTokens: 2048})
	if _, err := client.Complete(context.Background(), "", "prompt"); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	req := fake.requests[0]
	if req.MaxCompletionTokens != 2048 {
		t.Errorf("expected max_completion_tokens, got %d", req.MaxCompletionTokens)
	}
	if req.MaxTokens != 0 {
		t.Errorf("reasoning models must not send max_tokens, got %d", req.MaxTokens)
	}
}

func TestCompleteRunsToolCallRounds(t *testing.T) {
	fake := &fakeCompletions{responses: []string{
		toolCallResponse("call1", "search_repositories", `{"q":"photo sharing"}`),
		contentResponse("found three projects"),
	}}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	tools := &fakeToolCaller{
		tools: []toolhost.Tool{searchTool()},
		call: func(_ context.Context, name string, args map[string]any) (string, error) {
			if args["q"] != "photo sharing" {
				return "", fmt.Errorf("unexpected args %v", args)
			}
			return "repo list", nil
		},
	}
	client := newTestClient(t, server.URL, Options{Tools: tools})

	got, err := client.Complete(context.Background(), "system", "prompt")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "found three projects" {
		t.Errorf("unexpected completion %q", got)
	}
	if len(tools.calls) != 1 || tools.calls[0] != "search_repositories" {
		t.Errorf("expected one tool call, got %v", tools.calls)
	}

	if len(fake.requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(fake.requests))
	}
	second := fake.requests[1]
	var toolMessage *requestMessage
	for i := range second.Messages {
		if second.Messages[i].Role == "tool" {
			toolMessage = &second.Messages[i]
		}
	}
	if toolMessage == nil {
		t.Fatalf("expected a tool message in the second request, got %+v", second.Messages)
	}
	if toolMessage.Content != "repo list" || toolMessage.ToolCallID != "call1" {
		t.Errorf("unexpected tool message %+v", toolMessage)
	}
	if len(fake.requests[0].Tools) != 1 {
		t.Errorf("expected tool definitions in request, got %d", len(fake.requests[0].Tools))
	}
}

func TestCompleteReturnsUnknownToolToModel(t *testing.T) {
	fake := &fakeCompletions{responses: []string{
		toolCallResponse("call1", "nonesuch", `{}`),
		contentResponse("recovered"),
	}}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	tools := &fakeToolCaller{
		tools: []toolhost.Tool{searchTool()},
		call: func(context.Context, string, map[string]any) (string, error) {
			return "", fmt.Errorf("%w: nonesuch", toolhost.ErrToolNotFound)
		},
	}
	client := newTestClient(t, server.URL, Options{Tools: tools})

	got, err := client.Complete(context.Background(), "", "prompt")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "recovered" {
		t.Errorf("unexpected completion %q", got)
	}

	second := fake.requests[1]
	found := false
	for _, message := range second.Messages {
		if message.Role == "tool" && strings.Contains(message.Content, "unknown tool") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected unknown-tool message fed back to the model, got %+v", second.Messages)
	}
}

func TestCompleteMalformedToolArgumentsFedBack(t *testing.T) {
	fake := &fakeCompletions{responses: []string{
		toolCallResponse("call1", "search_repositories", `{not json`),
		contentResponse("recovered"),
	}}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	tools := &fakeToolCaller{
		tools: []toolhost.Tool{searchTool()},
		call: func(context.Context, string, map[string]any) (string, error) {
			t.Fatal("tool must not be called with malformed arguments")
			return "", nil
		},
	}
	client := newTestClient(t, server.URL, Options{Tools: tools})

	got, err := client.Complete(context.Background(), "", "prompt")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "recovered" {
		t.Errorf("unexpected completion %q", got)
	}
}

func TestCompleteToolServerUnavailableFailsRun(t *testing.T) {
	fake := &fakeCompletions{responses: []string{
		toolCallResponse("call1", "search_repositories", `{}`),
	}}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	tools := &fakeToolCaller{
		tools: []toolhost.Tool{searchTool()},
		call: func(context.Context, string, map[string]any) (string, error) {
			return "", &toolhost.ServerUnavailableError{Server: "github", Err: fmt.Errorf("not connected")}
		},
	}
	client := newTestClient(t, server.URL, Options{Tools: tools})

	_, err := client.Complete(context.Background(), "", "prompt")
	var unavailable *ToolUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected ToolUnavailableError, got %v", err)
	}
	if unavailable.Server != "github" {
		t.Errorf("expected server name in error, got %q", unavailable.Server)
	}
}

func TestCompleteMaxToolRoundsExceeded(t *testing.T) {
	fake := &fakeCompletions{responses: []string{
		toolCallResponse("call1", "search_repositories", `{}`),
	}}
	server := httptest.NewServer(fake.handler())
	defer server.Close()

	tools := &fakeToolCaller{
		tools: []toolhost.Tool{searchTool()},
		call: func(context.Context, string, map[string]any) (string, error) {
			return "more", nil
		},
	}
	client := newTestClient(t, server.URL, Options{Tools: tools, MaxToolRounds: 2})

	_, err := client.Complete(context.Background(), "", "prompt")
	var agentErr *Error
	if !errors.As(err, &agentErr) {
		t.Fatalf("expected agent error, got %v", err)
	}
	if !strings.Contains(agentErr.Message, "rounds") {
		t.Errorf("expected round-limit message, got %q", agentErr.Message)
	}
}

func TestCompleteMapsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"message":"overloaded","type":"server_error"}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, Options{})
	_, err := client.Complete(context.Background(), "", "prompt")
	var agentErr *Error
	if !errors.As(err, &agentErr) {
		t.Fatalf("expected agent error, got %v", err)
	}
	if agentErr.Message != "overloaded" {
		t.Errorf("expected API message, got %q", agentErr.Message)
	}
}

func TestIsReasoningModel(t *testing.T) {
	cases := map[string]bool{
		"o1":          true,
		"o3-mini":     true,
		"o4-mini":     true,
		"gpt-5":       true,
		"gpt-5-mini":  true,
		"gpt-4o":      false,
		"gpt-4o-mini": false,
		"llama-3":     false,
	}
	for model, want := range cases {
		if got := isReasoningModel(model); got != want {
			t.Errorf("isReasoningModel(%q): expected %v, got %v", model, want, got)
		}
	}
}
