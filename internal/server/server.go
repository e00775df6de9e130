package server

import (
	_ "embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yourorg/scaffold/internal/config"
	"github.com/yourorg/scaffold/internal/generator"
	"github.com/yourorg/scaffold/internal/odata"
	"github.com/yourorg/scaffold/internal/soap"
	"github.com/yourorg/scaffold/internal/store"
	"github.com/yourorg/scaffold/pkg/types"
)

var (
	//go:embed ui.html
	uiHTML string

	uiTemplate = template.Must(template.New("ui").Parse(uiHTML))
)

// Server wraps the preview UI and API handlers.
type Server struct {
	cfg      *config.Config
	store    store.Store
	renderer *generator.Renderer
	log      *slog.Logger
	mux      *http.ServeMux
}

type uiData struct {
	SessionID string
}

// New constructs a new Server with routes registered.
func New(cfg *config.Config, st store.Store, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if st == nil {
		return nil, errors.New("store is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	renderer, err := generator.New(cfg.Generator.Namespace)
	if err != nil {
		return nil, err
	}

	srv := &Server{
		cfg:      cfg,
		store:    st,
		renderer: renderer,
		log:      logger,
		mux:      http.NewServeMux(),
	}
	srv.registerRoutes()
	return srv, nil
}

// Handler returns the http handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe starts the server on addr.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) registerRoutes() {
	// UI routes.
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.HandleFunc("/session/", s.handleSessionPage)

	// API routes.
	s.mux.HandleFunc("/api/generate-full", s.handleGenerateFull)
	s.mux.HandleFunc("/api/generate-lines", s.handleGenerateLines)
	s.mux.HandleFunc("/api/generate-function", s.handleGenerateFunction)
	s.mux.HandleFunc("/api/sessions", s.handleSessions)
	s.mux.HandleFunc("/api/sessions/", s.handleSessionRoutes)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.renderUI(w, "")
}

func (s *Server) handleSessionPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, tail, ok := splitPath(r.URL.Path, "/session/")
	if !ok || id == "" || tail != "" {
		http.NotFound(w, r)
		return
	}
	s.renderUI(w, id)
}

type generateFullRequest struct {
	OData      json.RawMessage `json:"odata"`
	PageName   string          `json:"page_name"`
	EntityName string          `json:"entity_name"`
}

func (s *Server) handleGenerateFull(w http.ResponseWriter, r *http.Request) {
	if !s.allowPost(w, r) {
		return
	}
	var req generateFullRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	if strings.TrimSpace(req.PageName) == "" {
		writeError(w, http.StatusBadRequest, "page_name required")
		return
	}

	model, err := odata.Parse(req.OData)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entityName := req.EntityName
	if entityName == "" {
		entityName = req.PageName + "Voucher"
	}
	code := s.renderer.FullCode(model.Fields, model.Info, req.PageName, entityName)

	sess, err := s.persist("api", req.PageName, entityName, "full", len(model.Fields), []types.Fragment{
		{Name: "model", Content: code.Model},
		{Name: "controller", Content: code.Controller},
		{Name: "main_view", Content: code.MainView},
		{Name: "list_view", Content: code.ListView},
		{Name: "document_view", Content: code.DocumentView},
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.log.Info("generated full module", "session", sess.ID, "page", req.PageName, "fields", len(model.Fields))

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"session_id": sess.ID,
		"code":       code,
		"metadata":   buildMetadata(model.Info),
	})
}

type generateLinesRequest struct {
	OData        json.RawMessage `json:"odata"`
	PageName     string          `json:"page_name"`
	EntityName   string          `json:"entity_name"`
	ParentEntity string          `json:"parent_entity"`
}

func (s *Server) handleGenerateLines(w http.ResponseWriter, r *http.Request) {
	if !s.allowPost(w, r) {
		return
	}
	var req generateLinesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	if strings.TrimSpace(req.PageName) == "" {
		writeError(w, http.StatusBadRequest, "page_name required")
		return
	}

	model, err := odata.Parse(req.OData)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entityName := req.EntityName
	if entityName == "" {
		entityName = req.PageName + "Lines"
	}
	code := s.renderer.LinesCode(model.Fields, model.Info, req.PageName, entityName, req.ParentEntity)

	sess, err := s.persist("api", req.PageName, entityName, "lines", len(model.Fields), []types.Fragment{
		{Name: "model", Content: code.Model},
		{Name: "partial_view", Content: code.PartialView},
		{Name: "controller_method", Content: code.ControllerMethod},
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.log.Info("generated lines module", "session", sess.ID, "page", req.PageName, "fields", len(model.Fields))

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"session_id": sess.ID,
		"code":       code,
	})
}

type generateFunctionRequest struct {
	FunctionXML  string `json:"function_xml"`
	PageName     string `json:"page_name"`
	FunctionName string `json:"function_name"`
}

func (s *Server) handleGenerateFunction(w http.ResponseWriter, r *http.Request) {
	if !s.allowPost(w, r) {
		return
	}
	var req generateFunctionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	if strings.TrimSpace(req.PageName) == "" {
		writeError(w, http.StatusBadRequest, "page_name required")
		return
	}

	elements, err := soap.ParseFunctionXML(req.FunctionXML)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	params := soap.Build(elements)
	isLine := soap.IsLineFunction(params)

	functionName := req.FunctionName
	if functionName == "" {
		functionName = "Post" + req.PageName
	}
	code := s.renderer.FunctionCode(params, req.PageName, functionName, isLine)

	sess, err := s.persist("api", req.PageName, functionName, "function", len(params), []types.Fragment{
		{Name: "request_model", Content: code.RequestModel},
		{Name: "controller_method", Content: code.ControllerMethod},
		{Name: "form_view", Content: code.FormView},
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.log.Info("generated function module", "session", sess.ID, "page", req.PageName, "params", len(params))

	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"session_id":       sess.ID,
		"parameters":       params,
		"is_line_function": isLine,
		"code":             code,
	})
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sessions, err := s.store.ListSessions()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleSessionRoutes(w http.ResponseWriter, r *http.Request) {
	id, tail, ok := splitPath(r.URL.Path, "/api/sessions/")
	if !ok || id == "" || tail != "" {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		s.handleSessionDetail(w, r, id)
	case http.MethodDelete:
		s.handleSessionDelete(w, r, id)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSessionDetail(w http.ResponseWriter, _ *http.Request, id string) {
	sess, err := s.store.GetSession(id)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	fragments, err := s.store.GetFragments(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	resp := struct {
		Session   *types.Session   `json:"session"`
		Fragments []types.Fragment `json:"fragments"`
	}{
		Session:   sess,
		Fragments: fragments,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSessionDelete(w http.ResponseWriter, _ *http.Request, id string) {
	if _, err := s.store.GetSession(id); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err := s.store.DeleteSession(id); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"session_id": id, "status": "deleted"})
}

func (s *Server) persist(source, pageName, entityName, kind string, fieldCount int, fragments []types.Fragment) (*types.Session, error) {
	sess, err := s.store.CreateSession(source, pageName, entityName, kind, fieldCount)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveFragments(sess.ID, fragments); err != nil {
		return nil, err
	}
	if err := s.store.UpdateSessionStatus(sess.ID, "complete"); err != nil {
		return nil, err
	}
	sess.Status = "complete"
	return sess, nil
}

// buildMetadata surfaces the inference result as plain name lists so
// callers can inspect the decision without walking the code.
func buildMetadata(info types.DocumentInfo) map[string]any {
	var pk any
	if info.PrimaryKey != nil {
		pk = info.PrimaryKey.Name
	}
	userFields := make([]string, 0, len(info.UserFilterFields))
	for _, f := range info.UserFilterFields {
		userFields = append(userFields, f.Name)
	}
	tableFields := make([]string, 0, len(info.DatatableFields))
	for _, f := range info.DatatableFields {
		tableFields = append(tableFields, f.Name)
	}
	return map[string]any{
		"primary_key":        pk,
		"user_filter_fields": userFields,
		"datatable_fields":   tableFields,
	}
}

func (s *Server) allowPost(w http.ResponseWriter, r *http.Request) bool {
	s.setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return false
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func (s *Server) renderUI(w http.ResponseWriter, sessionID string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_ = uiTemplate.Execute(w, uiData{SessionID: sessionID})
}

func (s *Server) setCORS(w http.ResponseWriter) {
	origin := s.cfg.Server.CORSAllowOrigin
	if origin == "" {
		origin = "*"
	}
	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func splitPath(fullPath, prefix string) (string, string, bool) {
	if !strings.HasPrefix(fullPath, prefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(fullPath, prefix)
	rest = strings.Trim(rest, "/")
	if rest == "" {
		return "", "", false
	}
	parts := strings.Split(rest, "/")
	id := parts[0]
	tail := ""
	if len(parts) > 1 {
		tail = strings.Join(parts[1:], "/")
	}
	return id, tail, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}
