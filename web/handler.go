package web

import (
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/amonks/blueprint/analysis"
	internalstrings "github.com/amonks/blueprint/internal/strings"
)

// Options configures the studio web handler.
type Options struct {
	BaseURL string
}

// Handler serves the studio web client.
type Handler struct {
	baseURL   string
	client    *http.Client
	mux       *http.ServeMux
	templates *templateWrapper

	mu    sync.Mutex
	draft *formDraft
}

// NewHandler creates a new web handler.
func NewHandler(opts Options) *Handler {
	handler := &Handler{
		baseURL:   internalstrings.TrimTrailingSlash(opts.BaseURL),
		client:    &http.Client{},
		templates: newTemplateWrapper(),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/web/", handler.handleDashboard)
	mux.HandleFunc("/web/initialize", handler.handleInitialize)
	mux.HandleFunc("/web/start", handler.handleStart)
	mux.HandleFunc("/web/clear", handler.handleClear)
	mux.HandleFunc("/web/download", handler.handleDownload)
	handler.mux = mux
	return handler
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

type templateWrapper struct {
	tmpl *template.Template
}

func newTemplateWrapper() *templateWrapper {
	return &templateWrapper{tmpl: newTemplates()}
}

func (tw *templateWrapper) Render(w http.ResponseWriter, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = tw.tmpl.ExecuteTemplate(w, "page", data)
}

type formDraft struct {
	err          string
	projectName  string
	requirements string
}

type slotView struct {
	Kind       string
	Title      string
	Status     string
	Err        string
	StartedAt  *time.Time
	FinishedAt *time.Time
	HasResult  bool
	Running    bool
}

type toolView struct {
	Name      string
	Connected bool
	ToolCount int
	Disabled  bool
	Err       string
}

type pageData struct {
	Initialized  bool
	ProjectName  string
	Requirements string
	Slots        []slotView
	Tools        []toolView
	SelectedKind string
	ResultTitle  string
	ResultHTML   template.HTML
	ResultErr    string
	FormError    string
	AnyRunning   bool
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/web/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	baseURL := h.requestBaseURL(r)

	var status statusResponse
	fetchError := ""
	if err := postJSON(r.Context(), h.client, baseURL, "/status", statusRequest{}, &status); err != nil {
		fetchError = err.Error()
	}

	data := pageData{
		Initialized: status.Initialized,
		FormError:   fetchError,
	}
	if status.Project != nil {
		data.ProjectName = status.Project.Name
	}
	for _, slot := range status.Slots {
		running := slot.Status == analysis.StatusRunning
		data.Slots = append(data.Slots, slotView{
			Kind:       string(slot.Kind),
			Title:      slot.Title,
			Status:     string(slot.Status),
			Err:        slot.Err,
			StartedAt:  slot.StartedAt,
			FinishedAt: slot.FinishedAt,
			HasResult:  slot.HasResult,
			Running:    running,
		})
		if running {
			data.AnyRunning = true
		}
	}
	for _, tool := range status.Tools {
		data.Tools = append(data.Tools, toolView{
			Name:      tool.Name,
			Connected: tool.Connected,
			ToolCount: tool.ToolCount,
			Disabled:  tool.Disabled,
			Err:       tool.Err,
		})
	}

	if draft := h.consumeDraft(); draft != nil {
		if draft.err != "" {
			data.FormError = draft.err
		}
		data.ProjectName = draft.projectName
		data.Requirements = draft.requirements
	}

	selectedKind := trimmedQueryValue(r, "kind")
	if selectedKind != "" && status.Initialized {
		var result resultResponse
		if err := postJSON(r.Context(), h.client, baseURL, "/result", resultRequest{Kind: selectedKind}, &result); err != nil {
			data.ResultErr = err.Error()
		} else {
			data.SelectedKind = string(result.Kind)
			data.ResultTitle = result.Kind.Title()
			switch {
			case result.Status == analysis.StatusCompleted:
				data.ResultHTML = renderResultHTML(result.Kind, result.Result)
			case result.Err != "":
				data.ResultErr = result.Err
			}
		}
	}

	h.templates.Render(w, data)
}

func (h *Handler) handleInitialize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.setDraft(formDraft{err: "invalid form input"})
		http.Redirect(w, r, "/web/", http.StatusSeeOther)
		return
	}
	projectName := trimmedFormValue(r, "project_name")
	requirements := r.FormValue("requirements")

	var response initializeResponse
	request := initializeRequest{ProjectName: projectName, Requirements: requirements}
	if err := postJSON(r.Context(), h.client, h.requestBaseURL(r), "/initialize", request, &response); err != nil {
		h.setDraft(formDraft{err: err.Error(), projectName: projectName, requirements: requirements})
	}
	http.Redirect(w, r, "/web/", http.StatusSeeOther)
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	kind := trimmedQueryValue(r, "kind")
	if kind == "" {
		h.setDraft(formDraft{err: "analysis kind is required"})
		http.Redirect(w, r, "/web/", http.StatusSeeOther)
		return
	}
	var response startResponse
	if err := postJSON(r.Context(), h.client, h.requestBaseURL(r), "/start", startRequest{Kind: kind}, &response); err != nil {
		h.setDraft(formDraft{err: err.Error()})
		http.Redirect(w, r, "/web/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/web/?kind="+string(response.Kind), http.StatusSeeOther)
}

func (h *Handler) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	if err := postJSON(r.Context(), h.client, h.requestBaseURL(r), "/clear", clearRequest{}, &emptyResponse{}); err != nil {
		h.setDraft(formDraft{err: err.Error()})
	}
	http.Redirect(w, r, "/web/", http.StatusSeeOther)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}
	kind := trimmedQueryValue(r, "kind")
	if kind == "" {
		http.Error(w, "analysis kind is required", http.StatusBadRequest)
		return
	}
	var result resultResponse
	if err := postJSON(r.Context(), h.client, h.requestBaseURL(r), "/result", resultRequest{Kind: kind}, &result); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	if result.Status != analysis.StatusCompleted {
		http.Error(w, fmt.Sprintf("analysis %s is %s", result.Kind, result.Status), http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", downloadContentType(result.Kind))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	_, _ = w.Write([]byte(result.Result))
}

func downloadContentType(kind analysis.Kind) string {
	switch kind.Format() {
	case analysis.FormatDiagramMarkup:
		return "application/xml; charset=utf-8"
	case analysis.FormatSourceText:
		return "text/plain; charset=utf-8"
	default:
		return "text/markdown; charset=utf-8"
	}
}

func (h *Handler) requestBaseURL(r *http.Request) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func (h *Handler) setDraft(draft formDraft) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.draft = &draft
}

func (h *Handler) consumeDraft() *formDraft {
	h.mu.Lock()
	defer h.mu.Unlock()
	draft := h.draft
	h.draft = nil
	return draft
}

func trimmedQueryValue(r *http.Request, key string) string {
	return internalstrings.TrimSpace(r.URL.Query().Get(key))
}

func trimmedFormValue(r *http.Request, key string) string {
	return internalstrings.TrimSpace(r.FormValue(key))
}

func writeMethodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}
