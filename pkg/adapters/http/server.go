// Package http exposes the interview engine over a JSON API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/candidhq/candid/pkg/domain"
	"github.com/candidhq/candid/pkg/engine"
)

// Engine is the interview surface the server drives.
type Engine interface {
	Start(ctx context.Context, in engine.StartInput) (*engine.Outcome, error)
	Resume(ctx context.Context, sessionID, answer string) (*engine.Outcome, error)
	Snapshot(ctx context.Context, sessionID string) (*domain.Session, error)
	Records(ctx context.Context, user string) ([]domain.InterviewRecord, error)
}

// Consultant answers free-form career questions outside any session.
type Consultant interface {
	Advise(ctx context.Context, query string) (string, error)
}

// Server holds the handler dependencies.
type Server struct {
	engine     Engine
	consultant Consultant
	logger     *slog.Logger
	metrics    *Metrics
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithConsultant enables the consultant endpoint.
func WithConsultant(c Consultant) ServerOption {
	return func(s *Server) {
		s.consultant = c
	}
}

// NewHandler builds the HTTP handler for the engine.
func NewHandler(eng Engine, opts ...ServerOption) http.Handler {
	s := &Server{
		engine:  eng,
		logger:  slog.Default(),
		metrics: NewMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(s.metrics.Middleware)

	r.Route("/api", func(r chi.Router) {
		r.Post("/interview/start", s.StartInterview)
		r.Post("/interview/submit", s.SubmitAnswer)
		r.Get("/interview/records", s.ListRecords)
		r.Get("/interview/{sessionID}", s.GetInterview)
		r.Post("/consultant/ask", s.AskConsultant)
	})
	r.Get("/healthz", s.GetHealth)
	r.Handle("/metrics", s.metrics.Handler())

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type startRequest struct {
	Material  string `json:"material"`
	User      string `json:"user,omitempty"`
	MaxRounds int    `json:"max_rounds,omitempty"`
}

type startResponse struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
	MaxRounds int    `json:"max_rounds"`
}

// StartInterview handles POST /api/interview/start.
func (s *Server) StartInterview(w http.ResponseWriter, r *http.Request) {
	var body startRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	out, err := s.engine.Start(r.Context(), engine.StartInput{
		Material:  body.Material,
		User:      body.User,
		MaxRounds: body.MaxRounds,
	})
	if err != nil {
		s.writeEngineError(w, err, "start interview")
		return
	}

	s.writeJSON(w, http.StatusCreated, startResponse{
		SessionID: out.Session.ID,
		Question:  out.Question,
		MaxRounds: out.Session.MaxRounds,
	})
}

type submitRequest struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

type submitResponse struct {
	Finished bool   `json:"finished"`
	Round    int    `json:"round"`
	Feedback string `json:"feedback,omitempty"`
	Question string `json:"question,omitempty"`
	Report   string `json:"report,omitempty"`
}

// SubmitAnswer handles POST /api/interview/submit.
func (s *Server) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var body submitRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.SessionID == "" {
		s.writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	out, err := s.engine.Resume(r.Context(), body.SessionID, body.Answer)
	if err != nil {
		s.writeEngineError(w, err, "submit answer")
		return
	}

	resp := submitResponse{
		Finished: out.Finished,
		Round:    out.Session.Round,
		Question: out.Question,
		Report:   out.Report,
	}
	// Feedback for the answer just given lives on the last completed turn.
	if n := out.Session.Round; n > 0 && n <= len(out.Session.Turns) {
		resp.Feedback = out.Session.Turns[n-1].Feedback
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// GetInterview handles GET /api/interview/{sessionID}.
func (s *Server) GetInterview(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	snapshot, err := s.engine.Snapshot(r.Context(), sessionID)
	if err != nil {
		s.writeEngineError(w, err, "get interview")
		return
	}
	s.writeJSON(w, http.StatusOK, snapshot)
}

// ListRecords handles GET /api/interview/records.
func (s *Server) ListRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.engine.Records(r.Context(), r.URL.Query().Get("user"))
	if err != nil {
		s.writeEngineError(w, err, "list records")
		return
	}
	if records == nil {
		records = []domain.InterviewRecord{}
	}
	s.writeJSON(w, http.StatusOK, records)
}

type consultantRequest struct {
	Question string `json:"question"`
}

type consultantResponse struct {
	Answer string `json:"answer"`
}

// AskConsultant handles POST /api/consultant/ask.
func (s *Server) AskConsultant(w http.ResponseWriter, r *http.Request) {
	if s.consultant == nil {
		s.writeError(w, http.StatusNotFound, "consultant is not configured")
		return
	}

	var body consultantRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Question == "" {
		s.writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	answer, err := s.consultant.Advise(r.Context(), body.Question)
	if err != nil {
		s.logger.Error("consultant failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, "failed to answer question")
		return
	}
	s.writeJSON(w, http.StatusOK, consultantResponse{Answer: answer})
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeEngineError maps engine failures to status codes. A missing session
// gets an actionable message rather than an opaque failure.
func (s *Server) writeEngineError(w http.ResponseWriter, err error, op string) {
	var ie *domain.InvariantError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		s.writeError(w, http.StatusNotFound,
			"this interview session does not exist or has expired; please start a new interview")
	case errors.Is(err, domain.ErrSessionBusy):
		s.writeError(w, http.StatusConflict,
			"another answer for this session is still being processed; please retry in a moment")
	case errors.As(err, &ie):
		s.writeError(w, http.StatusBadRequest, ie.Reason)
	default:
		s.logger.Error(op+" failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}
