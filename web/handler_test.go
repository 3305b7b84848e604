package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/amonks/blueprint/analysis"
)

func TestDashboardShowsProjectFormWhenUninitialized(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		_ = json.NewEncoder(w).Encode(statusResponse{Initialized: false})
	})

	webHandler := NewHandler(Options{})
	mux.Handle("/web/", webHandler)
	server := httptest.NewServer(mux)
	defer server.Close()

	resp, err := http.Get(server.URL + "/web/")
	if err != nil {
		t.Fatalf("get dashboard: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	output := string(body)
	if !strings.Contains(output, "New Project") {
		t.Fatalf("expected project form, got %s", output)
	}
	if !strings.Contains(output, "name=\"requirements\"") {
		t.Fatalf("expected requirements field, got %s", output)
	}
}

func TestDashboardListsSlotsAndRefreshesWhileRunning(t *testing.T) {
	now := time.Now()
	mux := http.NewServeMux()
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		response := statusResponse{
			Initialized: true,
			SessionID:   "session-1",
			Project:     &projectStatus{Name: "payments", CreatedAt: now},
			Slots: []slotStatus{
				{Kind: analysis.KindRequirements, Title: "Requirements", Status: analysis.StatusRunning, StartedAt: &now},
				{Kind: analysis.KindArchitecture, Title: "Architecture", Status: analysis.StatusNotStarted},
			},
		}
		_ = json.NewEncoder(w).Encode(response)
	})

	webHandler := NewHandler(Options{})
	mux.Handle("/web/", webHandler)
	server := httptest.NewServer(mux)
	defer server.Close()

	resp, err := http.Get(server.URL + "/web/")
	if err != nil {
		t.Fatalf("get dashboard: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	output := string(body)
	if !strings.Contains(output, "Requirements") {
		t.Fatalf("expected slot title, got %s", output)
	}
	if !strings.Contains(output, `http-equiv="refresh"`) {
		t.Fatalf("expected auto-refresh while a slot is running, got %s", output)
	}
}

func TestInitializeRedirectsToDashboard(t *testing.T) {
	var gotRequest initializeRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/initialize", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(initializeResponse{SessionID: "session-1"})
	})

	webHandler := NewHandler(Options{})
	mux.Handle("/web/", webHandler)
	server := httptest.NewServer(mux)
	defer server.Close()

	form := url.Values{}
	form.Set("project_name", "payments")
	form.Set("requirements", "Process card payments.")

	client := &http.Client{CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.PostForm(server.URL+"/web/initialize", form)
	if err != nil {
		t.Fatalf("post initialize: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", resp.StatusCode)
	}
	if location := resp.Header.Get("Location"); location != "/web/" {
		t.Fatalf("expected redirect to dashboard, got %q", location)
	}
	if gotRequest.ProjectName != "payments" {
		t.Fatalf("expected project name to reach the studio, got %q", gotRequest.ProjectName)
	}
}

func TestStartRedirectsToResolvedKind(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		var request startRequest
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(startResponse{Kind: analysis.KindArchitecture})
	})

	webHandler := NewHandler(Options{})
	mux.Handle("/web/", webHandler)
	server := httptest.NewServer(mux)
	defer server.Close()

	client := &http.Client{CheckRedirect: func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}}
	resp, err := client.Post(server.URL+"/web/start?kind=arch", "application/x-www-form-urlencoded", nil)
	if err != nil {
		t.Fatalf("post start: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", resp.StatusCode)
	}
	if location := resp.Header.Get("Location"); location != "/web/?kind=architecture" {
		t.Fatalf("expected redirect to resolved kind, got %q", location)
	}
}

func TestDownloadServesCompletedResult(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/result", func(w http.ResponseWriter, r *http.Request) {
		response := resultResponse{
			Kind:     analysis.KindDiagram,
			Status:   analysis.StatusCompleted,
			Result:   "<mxfile></mxfile>",
			Filename: "payments_diagram.xml",
		}
		_ = json.NewEncoder(w).Encode(response)
	})

	webHandler := NewHandler(Options{})
	mux.Handle("/web/", webHandler)
	server := httptest.NewServer(mux)
	defer server.Close()

	resp, err := http.Get(server.URL + "/web/download?kind=diagram")
	if err != nil {
		t.Fatalf("get download: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if disposition := resp.Header.Get("Content-Disposition"); !strings.Contains(disposition, "payments_diagram.xml") {
		t.Fatalf("expected attachment filename, got %q", disposition)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	if string(body) != "<mxfile></mxfile>" {
		t.Fatalf("expected verbatim result, got %q", string(body))
	}
}

func TestDownloadRejectsIncompleteResult(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/result", func(w http.ResponseWriter, r *http.Request) {
		response := resultResponse{
			Kind:     analysis.KindRequirements,
			Status:   analysis.StatusRunning,
			Filename: "payments_requirements.md",
		}
		_ = json.NewEncoder(w).Encode(response)
	})

	webHandler := NewHandler(Options{})
	mux.Handle("/web/", webHandler)
	server := httptest.NewServer(mux)
	defer server.Close()

	resp, err := http.Get(server.URL + "/web/download?kind=requirements")
	if err != nil {
		t.Fatalf("get download: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.StatusCode)
	}
}

func TestRenderResultHTMLSanitizesMarkdown(t *testing.T) {
	html := string(renderResultHTML(analysis.KindRequirements, "# Title\n\n<script>alert(1)</script>\n\nBody."))
	if !strings.Contains(html, "<h1>") {
		t.Fatalf("expected rendered heading, got %s", html)
	}
	if strings.Contains(html, "<script>") {
		t.Fatalf("expected script tags to be stripped, got %s", html)
	}
}
