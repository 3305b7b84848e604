// Package studio exposes the live analysis session over a JSON HTTP API.
package studio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/amonks/blueprint/analysis"
	"github.com/amonks/blueprint/toolhost"
	"github.com/amonks/blueprint/web"
)

// ToolReporter reports tool-server health. *toolhost.Host satisfies it.
type ToolReporter interface {
	Statuses() []toolhost.ServerStatus
}

// ServerOptions configures a studio server.
type ServerOptions struct {
	// Agent is the remote agent every analysis runs against.
	Agent analysis.Agent
	// Tools reports tool-server health in status responses. Optional.
	Tools ToolReporter
	// ExportDir is the base directory for exported reports.
	// Defaults to "projects" under the working directory.
	ExportDir string
	// TemplatesDir overrides the embedded prompt templates.
	TemplatesDir string
	// Timeouts overrides per-kind analysis budgets.
	Timeouts map[analysis.Kind]time.Duration
	// Context overrides the analysis dependency graph.
	Context map[analysis.Kind][]analysis.Kind
	// Logger receives server logs. Defaults to stderr with "studio: ".
	Logger *log.Logger
}

// Server owns the single live session/manager pair.
type Server struct {
	agent        analysis.Agent
	tools        ToolReporter
	exportDir    string
	templatesDir string
	timeouts     map[analysis.Kind]time.Duration
	context      map[analysis.Kind][]analysis.Kind
	logger       *log.Logger

	mu      sync.Mutex
	manager *analysis.Manager
}

const shutdownTimeout = 5 * time.Second

// NewServer creates a studio server.
func NewServer(opts ServerOptions) (*Server, error) {
	if opts.Agent == nil {
		return nil, fmt.Errorf("agent is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "studio: ", log.LstdFlags)
	}
	exportDir := opts.ExportDir
	if exportDir == "" {
		exportDir = "projects"
	}
	return &Server{
		agent:        opts.Agent,
		tools:        opts.Tools,
		exportDir:    exportDir,
		templatesDir: opts.TemplatesDir,
		timeouts:     opts.Timeouts,
		context:      opts.Context,
		logger:       logger,
	}, nil
}

// Handler returns the HTTP handler for studio RPCs, with the web dashboard
// mounted under /web/.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/initialize", s.handleInitialize)
	mux.HandleFunc("/start", s.handleStart)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/result", s.handleResult)
	mux.HandleFunc("/export", s.handleExport)
	mux.HandleFunc("/clear", s.handleClear)
	webHandler := web.NewHandler(web.Options{})
	mux.Handle("/web/", webHandler)
	mux.Handle("/web", http.RedirectHandler("/web/", http.StatusFound))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/web/", http.StatusFound)
	})
	return s.recoverHandler(mux)
}

// Serve runs the server on the given address until an interrupt arrives.
func (s *Server) Serve(addr string) error {
	server := &http.Server{
		Addr:     addr,
		Handler:  s.Handler(),
		ErrorLog: s.logger,
	}

	listenErrs := make(chan error, 1)
	go func() {
		listenErrs <- server.ListenAndServe()
	}()

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	select {
	case err := <-listenErrs:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logf("server stopped: %v", err)
			return err
		}
		return nil
	case <-interrupts:
		s.logf("interrupt received, shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		shutdownErr := server.Shutdown(shutdownCtx)
		cancel()
		listenErr := <-listenErrs
		if errors.Is(listenErr, http.ErrServerClosed) {
			listenErr = nil
		}
		if errors.Is(shutdownErr, http.ErrServerClosed) {
			shutdownErr = nil
		}
		return errors.Join(shutdownErr, listenErr)
	}
}

func (s *Server) currentManager() *analysis.Manager {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.manager
}

func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodPost) {
		return
	}
	var payload initializeRequest
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	session, err := analysis.NewSession(payload.ProjectName, payload.Requirements, analysis.SessionOptions{
		Context: s.context,
	})
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	runner, err := analysis.NewRunner(s.agent, analysis.RunnerOptions{
		ProjectName:  session.Project().Name,
		TemplatesDir: s.templatesDir,
		Timeouts:     s.timeouts,
	})
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	manager, err := analysis.NewManager(session, runner, analysis.ManagerOptions{})
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	s.mu.Lock()
	s.manager = manager
	s.mu.Unlock()
	s.logf("initialized project %s (session %s)", session.Project().Name, session.ID())
	writeJSON(w, http.StatusOK, initializeResponse{SessionID: session.ID()})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodPost) {
		return
	}
	var payload startRequest
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	manager := s.currentManager()
	if manager == nil {
		s.writeError(w, r, http.StatusConflict, errNoSession)
		return
	}
	kind, err := analysis.ResolveKind(payload.Kind)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if err := manager.Start(kind); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, analysis.ErrInvalidState) {
			status = http.StatusConflict
		}
		s.writeError(w, r, status, err)
		return
	}
	s.logf("started %s analysis", kind)
	writeJSON(w, http.StatusOK, startResponse{Kind: kind})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodPost) {
		return
	}
	var payload statusRequest
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	response := statusResponse{}
	if s.tools != nil {
		response.Tools = s.tools.Statuses()
	}
	manager := s.currentManager()
	if manager != nil {
		session := manager.Session()
		project := session.Project()
		response.Initialized = true
		response.SessionID = session.ID()
		response.Project = &projectStatus{
			Name:      project.Name,
			CreatedAt: project.CreatedAt,
		}
		for _, slot := range session.Slots() {
			response.Slots = append(response.Slots, slotStatus{
				Kind:       slot.Kind,
				Title:      slot.Kind.Title(),
				Status:     slot.Status,
				Err:        slot.Err,
				StartedAt:  slot.StartedAt,
				FinishedAt: slot.FinishedAt,
				HasResult:  slot.Status == analysis.StatusCompleted,
			})
		}
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodPost) {
		return
	}
	var payload resultRequest
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	manager := s.currentManager()
	if manager == nil {
		s.writeError(w, r, http.StatusConflict, errNoSession)
		return
	}
	kind, err := analysis.ResolveKind(payload.Kind)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	slot, err := manager.Session().Slot(kind)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, resultResponse{
		Kind:     slot.Kind,
		Status:   slot.Status,
		Result:   slot.Result,
		Err:      slot.Err,
		Filename: analysis.ExportFilename(manager.Session().Project().Name, kind),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodPost) {
		return
	}
	var payload exportRequest
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	manager := s.currentManager()
	if manager == nil {
		s.writeError(w, r, http.StatusConflict, errNoSession)
		return
	}
	session := manager.Session()
	project := session.Project()
	dir := projectExportDir(s.exportDir, project.Name)

	if payload.Kind != "" {
		kind, err := analysis.ResolveKind(payload.Kind)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, err)
			return
		}
		slot, err := session.Slot(kind)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, err)
			return
		}
		path, err := analysis.Export(dir, project.Name, slot)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, analysis.ErrNotCompleted) {
				status = http.StatusConflict
			}
			s.writeError(w, r, status, err)
			return
		}
		writeJSON(w, http.StatusOK, exportResponse{Files: []string{path}})
		return
	}

	paths, err := analysis.ExportAll(dir, project.Name, session.Slots())
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, exportResponse{Files: paths})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if !s.requireMethod(w, r, http.MethodPost) {
		return
	}
	var payload clearRequest
	if err := decodeJSON(r, &payload); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}
	manager := s.currentManager()
	if manager == nil {
		s.writeError(w, r, http.StatusConflict, errNoSession)
		return
	}
	manager.Clear()
	s.logf("cleared all analyses")
	writeJSON(w, http.StatusOK, emptyResponse{})
}

var errNoSession = errors.New("no project initialized")

func projectExportDir(base, projectName string) string {
	return filepath.Join(base, analysis.ExportDirName(projectName))
}

func (s *Server) recoverHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writer := &responseTracker{ResponseWriter: w}
		defer func() {
			if recovered := recover(); recovered != nil {
				s.logf("panic handling request %s %s: %v\n%s", r.Method, r.URL.Path, recovered, debug.Stack())
				if writer.wroteHeader {
					return
				}
				writeJSON(writer, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			}
		}()
		next.ServeHTTP(writer, r)
	})
}

func (s *Server) requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	s.writeError(w, r, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
	return false
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	if decoder.More() {
		return fmt.Errorf("unexpected extra JSON data")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.logRequestError(r, status, err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) logRequestError(r *http.Request, status int, err error) {
	if s == nil || s.logger == nil {
		return
	}
	s.logger.Printf("request %s %s failed (%d): %v", r.Method, r.URL.Path, status, err)
}

func (s *Server) logf(format string, args ...any) {
	if s == nil || s.logger == nil {
		return
	}
	s.logger.Printf(format, args...)
}

type responseTracker struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *responseTracker) WriteHeader(status int) {
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseTracker) Write(data []byte) (int, error) {
	if !w.wroteHeader {
		w.wroteHeader = true
	}
	return w.ResponseWriter.Write(data)
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

type exportRequest struct {
	Kind string `json:"kind,omitempty"`
}

type exportResponse struct {
	Files []string `json:"files"`
}

type clearRequest struct{}

type emptyResponse struct{}
