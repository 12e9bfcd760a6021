// Package http exposes a template store and its executor sessions over a JSON API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/cookie-jar-solutions/honey/internal/logging"
	"github.com/cookie-jar-solutions/honey/pkg/domain"
	"github.com/cookie-jar-solutions/honey/pkg/jar"
	"github.com/cookie-jar-solutions/honey/pkg/ports"
	"github.com/cookie-jar-solutions/honey/pkg/prompt"
	"github.com/cookie-jar-solutions/honey/pkg/render"
	"github.com/cookie-jar-solutions/honey/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	Store    ports.TemplateStore
	Sessions *session.Manager
	Streams  *StreamManager

	metrics http.Handler
	version string
	logger  *slog.Logger
}

// Option configures the handler built by NewHandler.
type Option func(*Server)

// WithMetrics mounts h at GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithVersion sets the version reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// WithLogger configures request logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates the HTTP handler for store and sessions.
func NewHandler(store ports.TemplateStore, sessions *session.Manager, opts ...Option) (http.Handler, error) {
	s := &Server{
		Store:    store,
		Sessions: sessions,
		Streams:  NewStreamManager(),
		version:  "dev",
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	doc, err := GetSwagger()
	if err != nil {
		return nil, err
	}
	validate, err := validateRequests(doc)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(enableCORS)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.Get("/events", s.SubscribeEvents)

	r.Group(func(r chi.Router) {
		r.Use(validate)

		r.Get("/health", s.GetHealth)
		r.Get("/info", s.GetInfo)

		r.Get("/prompts", s.ListPrompts)
		r.Get("/prompts/{name}", s.GetPrompt)
		r.Post("/prompts/{name}/render", s.RenderPrompt)
		r.Post("/prompts/{name}/invoke", s.InvokePrompt)

		r.Get("/sessions", s.ListSessions)
		r.Get("/sessions/{id}/history", s.GetSessionHistory)
		r.Delete("/sessions/{id}", s.DeleteSession)
	})

	return r, nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Honey API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// RenderRequest is the body of POST /prompts/{name}/render.
type RenderRequest struct {
	Vars domain.Vars `json:"vars,omitempty"`
}

// RenderResponse is the reply of POST /prompts/{name}/render.
type RenderResponse struct {
	Text string `json:"text"`
}

// InvokeRequest is the body of POST /prompts/{name}/invoke.
// Without a session ID a new session is started and its ID returned.
type InvokeRequest struct {
	Vars      domain.Vars `json:"vars,omitempty"`
	SessionID string      `json:"session_id,omitempty"`
}

// InvokeResponse is the reply of POST /prompts/{name}/invoke.
type InvokeResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
	Messages  int    `json:"messages"`
	Tokens    int    `json:"tokens"`
}

// PromptDetail is a prompt description plus its raw template.
type PromptDetail struct {
	domain.PromptInfo
	Template string `json:"template"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "honey-http",
		"version":     s.version,
		"api_version": apiVersion,
	})
}

// ListPrompts handles the GET /prompts request.
func (s *Server) ListPrompts(w http.ResponseWriter, r *http.Request) {
	infos, err := prompt.Catalog(r.Context(), s.Store)
	if err != nil {
		s.fail(w, "ListPrompts", err)
		return
	}
	writeJSON(w, http.StatusOK, infos)
}

// GetPrompt handles the GET /prompts/{name} request.
func (s *Server) GetPrompt(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	text, err := s.Store.Resolve(r.Context(), name)
	if err != nil {
		s.fail(w, "GetPrompt", err)
		return
	}
	info, err := prompt.Describe(r.Context(), s.Store, name)
	if err != nil {
		s.fail(w, "GetPrompt", err)
		return
	}
	writeJSON(w, http.StatusOK, PromptDetail{PromptInfo: info, Template: text})
}

// RenderPrompt handles the POST /prompts/{name}/render request.
// It never consults an executor.
func (s *Server) RenderPrompt(w http.ResponseWriter, r *http.Request) {
	var body RenderRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	text, err := prompt.Bind(s.Store, chi.URLParam(r, "name")).Render(r.Context(), body.Vars)
	if err != nil {
		s.fail(w, "RenderPrompt", err)
		return
	}
	writeJSON(w, http.StatusOK, RenderResponse{Text: text})
}

// InvokePrompt handles the POST /prompts/{name}/invoke request.
// The session's executor is active for the call, so the prompt becomes a turn
// of that session's conversation.
func (s *Server) InvokePrompt(w http.ResponseWriter, r *http.Request) {
	var body InvokeRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if body.SessionID == "" {
		body.SessionID = uuid.NewString()
	}

	p := prompt.Bind(s.Store, chi.URLParam(r, "name"))
	// an unknown or broken template must not open a session
	if _, err := p.Template(r.Context()); err != nil {
		s.fail(w, "InvokePrompt", err)
		return
	}

	var resp InvokeResponse
	err := s.Sessions.Run(r.Context(), body.SessionID, func(ctx context.Context, ex jar.Executor) error {
		reply, err := p.Call(ctx, body.Vars)
		if err != nil {
			return err
		}
		resp = InvokeResponse{
			SessionID: body.SessionID,
			Reply:     reply,
			Messages:  ex.MessageCount(),
			Tokens:    ex.TotalTokens(),
		}
		return nil
	})
	if err != nil {
		s.fail(w, "InvokePrompt", err)
		return
	}

	if payload, err := json.Marshal(resp); err == nil {
		s.Streams.Broadcast(body.SessionID, string(payload))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListSessions handles the GET /sessions request.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sessions.List())
}

// GetSessionHistory handles the GET /sessions/{id}/history request.
func (s *Server) GetSessionHistory(w http.ResponseWriter, r *http.Request) {
	ex, err := s.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "GetSessionHistory", err)
		return
	}
	writeJSON(w, http.StatusOK, ex.History())
}

// DeleteSession handles the DELETE /sessions/{id} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, "DeleteSession", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // SessionID -> Set of Channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

func (sm *StreamManager) Subscribe(sessionID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[sessionID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, sessionID)
			}
		}
	}
}

func (sm *StreamManager) Broadcast(sessionID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
		}
	}
}

// SubscribeEvents handles the GET /events request (SSE).
// With a session_id query parameter it streams that session's turns;
// without one it streams template reloads, when the store can watch.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		watcher, ok := s.Store.(ports.Watchable)
		if !ok {
			writeError(w, http.StatusNotImplemented, errors.New("template store does not support watching"))
			return
		}
		changes, err := watcher.Watch(r.Context())
		if err != nil {
			s.fail(w, "SubscribeEvents", err)
			return
		}

		startStream(w, flusher)
		for {
			select {
			case <-r.Context().Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				fmt.Fprintf(w, "data: reload\n\n")
				flusher.Flush()
			}
		}
	}

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	startStream(w, flusher)
	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func startStream(w http.ResponseWriter, flusher http.Flusher) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
}

// -- Helpers --

func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var syntax *render.SyntaxError
	switch {
	case errors.Is(err, domain.ErrTemplateNotFound), errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.As(err, &syntax):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrBackendUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrBackendCallFailed):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Warn(op+" rejected", "err", err)
	}
	writeError(w, status, err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}
