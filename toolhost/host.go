package toolhost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool describes one callable tool advertised by a connected server.
type Tool struct {
	Server      string
	Name        string
	Description string
	InputSchema json.RawMessage
}

// ServerStatus reports one server's connect outcome.
type ServerStatus struct {
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
	ToolCount int    `json:"tool_count"`
	Disabled  bool   `json:"disabled,omitempty"`
	Err       string `json:"error,omitempty"`
}

// Options configures a host.
// Zero fields use defaults.
type Options struct {
	// LogsDir receives per-server stderr log files. Empty disables capture.
	LogsDir string
	// Logger reports connect progress. Nil discards.
	Logger *log.Logger
	// ClientName and ClientVersion identify this host to the servers.
	ClientName    string
	ClientVersion string
}

// Host owns the child tool-server processes and routes tool calls to the
// server that advertises each tool.
type Host struct {
	mu      sync.Mutex
	servers []*server
	byTool  map[string]*server
	tools   []Tool
}

type server struct {
	spec   ServerSpec
	client *client.Client
	tools  []mcp.Tool
	err    error
}

// Connect starts every enabled server in the registry and lists its tools.
// Connect is tolerant: a server that fails to start is recorded as down and
// skipped, never fatal. The returned host may have zero connected servers.
func Connect(ctx context.Context, specs []ServerSpec, opts Options) *Host {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	clientName := opts.ClientName
	if clientName == "" {
		clientName = "blueprint"
	}
	clientVersion := opts.ClientVersion
	if clientVersion == "" {
		clientVersion = "dev"
	}

	host := &Host{byTool: make(map[string]*server)}
	for _, spec := range specs {
		entry := &server{spec: spec}
		host.servers = append(host.servers, entry)
		if spec.Disabled {
			continue
		}
		if err := entry.connect(ctx, opts.LogsDir, clientName, clientVersion); err != nil {
			entry.err = err
			logger.Printf("tool server %s failed: %v", spec.Name, err)
			continue
		}
		logger.Printf("tool server %s connected with %d tools", spec.Name, len(entry.tools))
		for _, tool := range entry.tools {
			if _, taken := host.byTool[tool.Name]; taken {
				continue
			}
			host.byTool[tool.Name] = entry
			schema, err := json.Marshal(tool.InputSchema)
			if err != nil {
				schema = json.RawMessage(`{"type":"object"}`)
			}
			host.tools = append(host.tools, Tool{
				Server:      spec.Name,
				Name:        tool.Name,
				Description: tool.Description,
				InputSchema: schema,
			})
		}
	}
	return host
}

func (s *server) connect(ctx context.Context, logsDir, clientName, clientVersion string) error {
	stdio := transport.NewStdio(s.spec.Command, s.spec.Env, s.spec.Args...)
	mcpClient := client.NewClient(stdio)
	if err := mcpClient.Start(ctx); err != nil {
		return fmt.Errorf("start %s: %w", s.spec.Command, err)
	}
	if logsDir != "" {
		captureStderr(stdio.Stderr(), logsDir, s.spec.Name)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: clientName, Version: clientVersion}
	if _, err := mcpClient.Initialize(ctx, initReq); err != nil {
		_ = mcpClient.Close()
		return fmt.Errorf("initialize: %w", err)
	}

	toolsRes, err := mcpClient.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		_ = mcpClient.Close()
		return fmt.Errorf("list tools: %w", err)
	}

	s.client = mcpClient
	s.tools = toolsRes.Tools
	return nil
}

func captureStderr(stderr io.Reader, logsDir, name string) {
	if stderr == nil {
		return
	}
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return
	}
	logPath := filepath.Join(logsDir, name+".log")
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	go func() {
		defer file.Close()
		_, _ = io.Copy(file, stderr)
	}()
}

// Tools returns every tool advertised by connected servers. Tool names are
// unique; when two servers advertise the same name the first connected
// server wins.
func (h *Host) Tools() []Tool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Tool(nil), h.tools...)
}

// Call invokes the named tool on the server that advertises it.
func (h *Host) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	h.mu.Lock()
	entry, ok := h.byTool[name]
	h.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	result, err := entry.client.CallTool(ctx, req)
	if err != nil {
		return "", &ServerUnavailableError{Server: entry.spec.Name, Err: err}
	}
	text := contentText(result.Content)
	if result.IsError {
		// In-band tool errors go back to the model as output so it can
		// adjust; only transport failures mark the server unavailable.
		return fmt.Sprintf("tool error: %s", text), nil
	}
	return text, nil
}

func contentText(contents []mcp.Content) string {
	var parts []string
	for _, content := range contents {
		if text, ok := content.(mcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// Statuses reports every registry entry's connect outcome in registry order.
func (h *Host) Statuses() []ServerStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	statuses := make([]ServerStatus, 0, len(h.servers))
	for _, entry := range h.servers {
		status := ServerStatus{
			Name:      entry.spec.Name,
			Connected: entry.client != nil,
			ToolCount: len(entry.tools),
			Disabled:  entry.spec.Disabled,
		}
		if entry.err != nil {
			status.Err = entry.err.Error()
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// Close shuts down every connected server process.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	var errs []error
	for _, entry := range h.servers {
		if entry.client == nil {
			continue
		}
		if err := entry.client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", entry.spec.Name, err))
		}
		entry.client = nil
	}
	return errors.Join(errs...)
}
