package studio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/amonks/blueprint/analysis"
	"github.com/amonks/blueprint/toolhost"
)

// Client calls studio RPCs.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for the given address or URL.
func NewClient(addr string) *Client {
	baseURL := strings.TrimRight(addr, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	return &Client{baseURL: baseURL, client: &http.Client{}}
}

// Initialize creates a new project session and returns its ID.
func (c *Client) Initialize(ctx context.Context, projectName, requirements string) (string, error) {
	var response initializeResponse
	err := c.post(ctx, "/initialize", initializeRequest{
		ProjectName:  projectName,
		Requirements: requirements,
	}, &response)
	if err != nil {
		return "", err
	}
	return response.SessionID, nil
}

// Start launches an analysis. The kind resolves by unambiguous prefix.
func (c *Client) Start(ctx context.Context, kind string) (analysis.Kind, error) {
	var response startResponse
	if err := c.post(ctx, "/start", startRequest{Kind: kind}, &response); err != nil {
		return "", err
	}
	return response.Kind, nil
}

// Status reports the session and every slot's state.
func (c *Client) Status(ctx context.Context) (SessionStatus, error) {
	var response statusResponse
	if err := c.post(ctx, "/status", statusRequest{}, &response); err != nil {
		return SessionStatus{}, err
	}
	status := SessionStatus{
		Initialized: response.Initialized,
		SessionID:   response.SessionID,
		Tools:       response.Tools,
	}
	if response.Project != nil {
		status.ProjectName = response.Project.Name
		status.CreatedAt = response.Project.CreatedAt
	}
	for _, slot := range response.Slots {
		status.Slots = append(status.Slots, SlotStatus(slot))
	}
	return status, nil
}

// Result fetches one slot's stored result.
func (c *Client) Result(ctx context.Context, kind string) (SlotResult, error) {
	var response resultResponse
	if err := c.post(ctx, "/result", resultRequest{Kind: kind}, &response); err != nil {
		return SlotResult{}, err
	}
	return SlotResult(response), nil
}

// Export writes completed results on the server and returns the paths.
// An empty kind exports every completed slot.
func (c *Client) Export(ctx context.Context, kind string) ([]string, error) {
	var response exportResponse
	if err := c.post(ctx, "/export", exportRequest{Kind: kind}, &response); err != nil {
		return nil, err
	}
	return response.Files, nil
}

// Clear resets every slot without changing the project.
func (c *Client) Clear(ctx context.Context) error {
	return c.post(ctx, "/clear", clearRequest{}, &emptyResponse{})
}

// SessionStatus is the client-side view of the studio session.
type SessionStatus struct {
	Initialized bool
	SessionID   string
	ProjectName string
	CreatedAt   time.Time
	Slots       []SlotStatus
	Tools       []toolhost.ServerStatus
}

// SlotStatus is the client-side view of one slot.
type SlotStatus struct {
	Kind       analysis.Kind
	Title      string
	Status     analysis.Status
	Err        string
	StartedAt  *time.Time
	FinishedAt *time.Time
	HasResult  bool
}

// SlotResult is the client-side view of one slot's result.
type SlotResult struct {
	Kind     analysis.Kind
	Status   analysis.Status
	Result   string
	Err      string
	Filename string
}

func (c *Client) post(ctx context.Context, path string, payload any, dest any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return readErrorResponse(resp)
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return nil
}

func readErrorResponse(resp *http.Response) error {
	var payload map[string]string
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(&payload); err == nil {
		if message, ok := payload["error"]; ok {
			return fmt.Errorf("studio error: %s", message)
		}
	}
	return fmt.Errorf("studio error: %s", resp.Status)
}
