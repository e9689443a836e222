// Package server exposes the form page and JSON API for the two-stage
// prompt pipeline.
package server

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"

	"promptforge/internal/app"
	"promptforge/internal/provider"
	"promptforge/internal/session"
	"promptforge/internal/sessiontoken"
	"promptforge/internal/util"
)

//go:embed index.html.tmpl
var templateFS embed.FS

const sessionCookieName = "promptforge_session"

// Config wires required dependencies for the HTTP server.
type Config struct {
	App      *app.App
	Sessions session.Store
	Tokens   *sessiontoken.Codec
}

// Server exposes HTTP endpoints for the prompt pipeline.
type Server struct {
	app      *app.App
	sessions session.Store
	tokens   *sessiontoken.Codec
	mux      *http.ServeMux
	page     *template.Template
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	page, err := template.ParseFS(templateFS, "index.html.tmpl")
	if err != nil {
		return nil, err
	}
	s := &Server{
		app:      cfg.App,
		sessions: cfg.Sessions,
		tokens:   cfg.Tokens,
		mux:      http.NewServeMux(),
		page:     page,
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler with the middleware stack applied.
func (s *Server) Router() http.Handler {
	var h http.Handler = s.mux
	h = util.WithRequestLog(h)
	h = util.WithRequestID(h)
	h = util.WithCORS(h)
	h = util.WithSecurityHeaders(h)
	return h
}

func (s *Server) routes() {
	s.mux.HandleFunc("/", s.handlePage)
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.HandleFunc("/api/providers", s.handleProviders)
	s.mux.HandleFunc("/api/session", s.handleSession)
	s.mux.HandleFunc("/api/enhance", s.handleEnhance)
	s.mux.HandleFunc("/api/generate", s.handleGenerate)
	s.mux.HandleFunc("/api/reset", s.handleReset)
	s.mux.HandleFunc("/api/history", s.handleHistory)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type providerView struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Available bool   `json:"available"`
}

func (s *Server) providerViews() []providerView {
	infos := provider.All()
	views := make([]providerView, 0, len(infos))
	for _, info := range infos {
		views = append(views, providerView{
			ID:        string(info.ID),
			Label:     info.Label,
			Available: s.app.Available(info.ID),
		})
	}
	return views
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	sess := s.currentSession(w, r)
	data := struct {
		Providers []providerView
		Session   session.Session
	}{
		Providers: s.providerViews(),
		Session:   sess,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, data); err != nil {
		util.LoggerFromContext(r.Context()).Error("render page", "err", err)
	}
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"providers": s.providerViews()})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	sess := s.currentSession(w, r)
	writeJSON(w, http.StatusOK, sessionResponse(sess))
}

type enhanceRequest struct {
	Provider string `json:"provider"`
	Prompt   string `json:"prompt"`
}

func (s *Server) handleEnhance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req enhanceRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "")
		return
	}
	sess := s.currentSession(w, r)
	updated, err := s.app.Enhance(r.Context(), sess, req.Provider, req.Prompt)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if err := s.sessions.Save(updated); err != nil {
		util.LoggerFromContext(r.Context()).Error("save session", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to store session", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"enhancedPrompt": updated.EnhancedPrompt})
}

type generateRequest struct {
	Provider    string   `json:"provider"`
	Temperature *float64 `json:"temperature"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req generateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", "")
		return
	}
	temperature := app.DefaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	sess := s.currentSession(w, r)
	result, err := s.app.Generate(r.Context(), sess, req.Provider, temperature)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": result})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	sess := s.currentSession(w, r)
	cleared := s.app.Reset(sess)
	if err := s.sessions.Save(cleared); err != nil {
		util.LoggerFromContext(r.Context()).Error("save session", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to store session", "")
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(cleared))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	sess := s.currentSession(w, r)
	records, err := s.app.History(sess.ID, 50)
	if err != nil {
		util.LoggerFromContext(r.Context()).Error("list history", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to load history", "")
		return
	}
	type recordView struct {
		Stage       string  `json:"stage"`
		Provider    string  `json:"provider"`
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		Response    string  `json:"response,omitempty"`
		ErrorDetail string  `json:"error,omitempty"`
	}
	views := make([]recordView, 0, len(records))
	for _, rec := range records {
		views = append(views, recordView{
			Stage:       rec.Stage,
			Provider:    rec.Provider,
			Model:       rec.Model,
			Temperature: rec.Temperature,
			Response:    rec.Response,
			ErrorDetail: rec.ErrorDetail,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": views})
}

// currentSession resolves the browser's session from the signed cookie,
// creating a fresh one (and setting the cookie) when absent or invalid.
func (s *Server) currentSession(w http.ResponseWriter, r *http.Request) session.Session {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if id, err := s.tokens.Verify(cookie.Value); err == nil {
			if sess, ok, err := s.sessions.Get(id); err == nil && ok {
				return sess
			}
		}
	}

	sess := session.New()
	if err := s.sessions.Save(sess); err != nil {
		util.LoggerFromContext(r.Context()).Error("save new session", "err", err)
		return sess
	}
	token, err := s.tokens.Sign(sess.ID)
	if err != nil {
		util.LoggerFromContext(r.Context()).Error("sign session token", "err", err)
		return sess
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

func sessionResponse(sess session.Session) map[string]string {
	return map[string]string{
		"userPrompt":     sess.UserPrompt,
		"enhancedPrompt": sess.EnhancedPrompt,
	}
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg, hint string) {
	body := map[string]string{"error": msg}
	if hint != "" {
		body["hint"] = hint
	}
	writeJSON(w, status, body)
}

// writeAppError maps the app error kinds onto HTTP statuses and attaches the
// remediation hints shown to the user.
func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrEmptyPrompt),
		errors.Is(err, app.ErrUnknownProvider),
		errors.Is(err, app.ErrInvalidTemperature):
		writeError(w, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, app.ErrNoEnhancedPrompt):
		writeError(w, http.StatusConflict, err.Error(), "Enhance your prompt first, then generate.")
	case errors.Is(err, app.ErrMissingCredential):
		writeError(w, http.StatusConflict, err.Error(), "")
	case errors.Is(err, app.ErrCompletionFailed):
		writeError(w, http.StatusBadGateway, err.Error(), "Check your API key, model access, and network connection, then try again.")
	default:
		writeError(w, http.StatusInternalServerError, "internal error", "")
	}
}
