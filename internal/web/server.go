// Package web serves the JSON API and the single-page studio UI.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"marketing-studio/internal/export"
	"marketing-studio/internal/marketing"
	"marketing-studio/internal/session"
)

//go:embed static/*
var staticFS embed.FS

const maxBodyBytes = 1 << 20

type Options struct {
	Sessions       *session.Store
	Templates      *marketing.Library
	Logger         *slog.Logger
	RequestTimeout time.Duration
	AllowedOrigins []string
}

type Server struct {
	sessions       *session.Store
	templates      *marketing.Library
	logger         *slog.Logger
	requestTimeout time.Duration
	allowedOrigins []string
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 180 * time.Second
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return &Server{
		sessions:       opts.Sessions,
		templates:      opts.Templates,
		logger:         logger,
		requestTimeout: timeout,
		allowedOrigins: origins,
	}
}

// Handler returns the routed API wrapped in recovery, access logging and CORS.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.sessions.Len()})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/content-types", s.handleContentTypes).Methods(http.MethodGet)
	api.HandleFunc("/templates", s.handleTemplates).Methods(http.MethodGet)
	api.HandleFunc("/sessions", s.handleCreateSession).Methods(http.MethodPost)

	api.HandleFunc("/sessions/{id}", s.withSession(s.handleGetSession)).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods(http.MethodDelete)

	sess := api.PathPrefix("/sessions/{id}").Subrouter()
	sess.HandleFunc("/type", s.withSession(s.handleSelectType)).Methods(http.MethodPut)
	sess.HandleFunc("/template", s.withSession(s.handleApplyTemplate)).Methods(http.MethodPost)
	sess.HandleFunc("/inputs", s.withSession(s.handleSetInputs)).Methods(http.MethodPut)
	sess.HandleFunc("/inputs", s.withSession(s.handlePatchInputs)).Methods(http.MethodPatch)
	sess.HandleFunc("/generate", s.withSession(s.handleGenerate)).Methods(http.MethodPost)
	sess.HandleFunc("/refine", s.withSession(s.handleRefine)).Methods(http.MethodPost)
	sess.HandleFunc("/revert", s.withSession(s.handleRevert)).Methods(http.MethodPost)
	sess.HandleFunc("/clear", s.withSession(s.handleClear)).Methods(http.MethodPost)
	sess.HandleFunc("/comparison/toggle", s.withSession(s.handleToggleComparison)).Methods(http.MethodPost)
	sess.HandleFunc("/compare", s.withSession(s.handleCompare)).Methods(http.MethodPost)
	sess.HandleFunc("/compare", s.withSession(s.handleCloseMatrix)).Methods(http.MethodDelete)
	sess.HandleFunc("/export/{kind}", s.withSession(s.handleExport)).Methods(http.MethodGet)

	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	r.PathPrefix("/").Handler(http.FileServer(http.FS(staticSub))).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedOrigins(s.allowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)

	var h http.Handler = r
	h = handlers.CustomLoggingHandler(io.Discard, h, s.logRequest)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{s.logger}), handlers.PrintRecoveryStack(false))(h)
	return cors(h)
}

func (s *Server) logRequest(_ io.Writer, p handlers.LogFormatterParams) {
	s.logger.Info("http",
		"method", p.Request.Method,
		"path", p.URL.Path,
		"status", p.StatusCode,
		"bytes", p.Size,
		"dur_ms", time.Since(p.TimeStamp).Milliseconds(),
	)
}

type recoveryLogger struct {
	logger *slog.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error("panic recovered", "err", fmt.Sprint(v...))
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, id string, ctrl *session.Controller)

func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		if _, err := uuid.Parse(id); err != nil {
			s.writeError(w, session.ErrNotFound)
			return
		}
		ctrl, err := s.sessions.Get(id)
		if err != nil {
			s.writeError(w, err)
			return
		}
		next(w, r, id, ctrl)
	}
}

func (s *Server) handleContentTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"types": catalogView()})
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"templates": s.templates.All()})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id, ctrl := s.sessions.Create()
	s.logger.Info("session created", "session", id)
	writeJSON(w, http.StatusCreated, stateViewOf(id, ctrl.Snapshot()))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, id string, ctrl *session.Controller) {
	writeJSON(w, http.StatusOK, stateViewOf(id, ctrl.Snapshot()))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.sessions.Delete(mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSelectType(w http.ResponseWriter, r *http.Request, id string, ctrl *session.Controller) {
	var req struct {
		ContentType string `json:"contentType"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	ct, ok := marketing.ParseContentType(req.ContentType)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorView{Error: fmt.Sprintf("unknown content type %q", req.ContentType), Kind: "bad_request"})
		return
	}
	if err := ctrl.SelectType(ct); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateViewOf(id, ctrl.Snapshot()))
}

func (s *Server) handleApplyTemplate(w http.ResponseWriter, r *http.Request, id string, ctrl *session.Controller) {
	var req struct {
		Name string `json:"name"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	tpl, ok := s.templates.Lookup(req.Name)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorView{Error: fmt.Sprintf("template %q not found", req.Name), Kind: "not_found"})
		return
	}
	if err := ctrl.ApplyTemplate(tpl); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateViewOf(id, ctrl.Snapshot()))
}

func (s *Server) handleSetInputs(w http.ResponseWriter, r *http.Request, id string, ctrl *session.Controller) {
	var in marketing.Inputs
	if !s.decode(w, r, &in) {
		return
	}
	ctrl.SetInputs(in)
	writeJSON(w, http.StatusOK, stateViewOf(id, ctrl.Snapshot()))
}

func (s *Server) handlePatchInputs(w http.ResponseWriter, r *http.Request, id string, ctrl *session.Controller) {
	var fields map[marketing.Field]string
	if !s.decode(w, r, &fields) {
		return
	}
	if err := ctrl.SetFields(fields); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateViewOf(id, ctrl.Snapshot()))
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request, id string, ctrl *session.Controller) {
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	if _, err := ctrl.Generate(ctx); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateViewOf(id, ctrl.Snapshot()))
}

func (s *Server) handleRefine(w http.ResponseWriter, r *http.Request, id string, ctrl *session.Controller) {
	var req struct {
		Instruction string `json:"instruction"`
	}
	if !s.decode(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	_, applied, err := ctrl.Refine(ctx, req.Instruction)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, refineView{Applied: applied, stateView: stateViewOf(id, ctrl.Snapshot())})
}

func (s *Server) handleRevert(w http.ResponseWriter, r *http.Request, id string, ctrl *session.Controller) {
	var req struct {
		Index *int `json:"index"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	if req.Index == nil {
		writeJSON(w, http.StatusBadRequest, errorView{Error: "index is required", Kind: "bad_request"})
		return
	}
	if _, err := ctrl.Revert(*req.Index); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateViewOf(id, ctrl.Snapshot()))
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request, id string, ctrl *session.Controller) {
	if err := ctrl.Clear(); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateViewOf(id, ctrl.Snapshot()))
}

func (s *Server) handleToggleComparison(w http.ResponseWriter, r *http.Request, id string, ctrl *session.Controller) {
	ctrl.ToggleComparison()
	writeJSON(w, http.StatusOK, stateViewOf(id, ctrl.Snapshot()))
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request, id string, ctrl *session.Controller) {
	var req struct {
		Types []string `json:"types"`
	}
	if r.ContentLength != 0 && !s.decode(w, r, &req) {
		return
	}
	types := make([]marketing.ContentType, 0, len(req.Types))
	for _, raw := range req.Types {
		ct, ok := marketing.ParseContentType(raw)
		if !ok {
			writeJSON(w, http.StatusBadRequest, errorView{Error: fmt.Sprintf("unknown content type %q", raw), Kind: "bad_request"})
			return
		}
		types = append(types, ct)
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	if _, err := ctrl.Compare(ctx, types); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stateViewOf(id, ctrl.Snapshot()))
}

func (s *Server) handleCloseMatrix(w http.ResponseWriter, r *http.Request, id string, ctrl *session.Controller) {
	ctrl.CloseMatrix()
	writeJSON(w, http.StatusOK, stateViewOf(id, ctrl.Snapshot()))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, id string, ctrl *session.Controller) {
	current, _ := ctrl.Snapshot().Current()

	var (
		file export.File
		err  error
	)
	switch kind := mux.Vars(r)["kind"]; kind {
	case "text":
		file, err = export.PlainText(current)
	case "document":
		file, err = export.Document(current)
	case "poster":
		file, err = export.PosterImage(current)
	case "summary-image":
		file, err = export.SummaryImage(current)
	default:
		writeJSON(w, http.StatusNotFound, errorView{Error: fmt.Sprintf("unknown export %q", kind), Kind: "not_found"})
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("content-type", file.ContentType)
	w.Header().Set("content-disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("content-length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorView{Error: "invalid JSON body: " + err.Error(), Kind: "bad_request"})
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, view := classifyError(err)
	if status >= http.StatusInternalServerError && !errors.Is(err, context.Canceled) {
		s.logger.Error("request failed", "status", status, "kind", view.Kind, "err", err)
	}
	writeJSON(w, status, view)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
