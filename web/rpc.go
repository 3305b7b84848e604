package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/amonks/blueprint/analysis"
	"github.com/amonks/blueprint/toolhost"
)

func postJSON(ctx context.Context, client *http.Client, baseURL, path string, payload any, dest any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
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

type initializeRequest struct {
	ProjectName  string `json:"project_name"`
	Requirements string `json:"requirements"`
}

type initializeResponse struct {
	SessionID string `json:"session_id"`
}

type startRequest struct {
	Kind string `json:"kind"`
}

type startResponse struct {
	Kind analysis.Kind `json:"kind"`
}

type statusRequest struct{}

type projectStatus struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type slotStatus struct {
	Kind       analysis.Kind   `json:"kind"`
	Title      string          `json:"title"`
	Status     analysis.Status `json:"status"`
	Err        string          `json:"error,omitempty"`
	StartedAt  *time.Time      `json:"started_at,omitempty"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
	HasResult  bool            `json:"has_result"`
}

type statusResponse struct {
	Initialized bool                    `json:"initialized"`
	SessionID   string                  `json:"session_id,omitempty"`
	Project     *projectStatus          `json:"project,omitempty"`
	Slots       []slotStatus            `json:"slots,omitempty"`
	Tools       []toolhost.ServerStatus `json:"tools,omitempty"`
}

type resultRequest struct {
	Kind string `json:"kind"`
}

type resultResponse struct {
	Kind     analysis.Kind   `json:"kind"`
	Status   analysis.Status `json:"status"`
	Result   string          `json:"result,omitempty"`
	Err      string          `json:"error,omitempty"`
	Filename string          `json:"filename"`
}

type clearRequest struct{}

type emptyResponse struct{}
