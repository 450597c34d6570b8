package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mimohealth/triage/internal/session"
	"github.com/mimohealth/triage/internal/transcript"
	"github.com/mimohealth/triage/internal/triage"
	"go.uber.org/zap"
)

// HealthReporter reports per-backend generation health. *provider.Chain
// satisfies it.
type HealthReporter interface {
	Health(ctx context.Context) map[string]string
}

// Handler exposes the triage engine over REST. Authentication, roles and
// the rest of the CRUD surface live in the surrounding application; this
// handler only needs a session key per request.
type Handler struct {
	engine      *triage.Engine
	transcripts *transcript.Store
	health      HealthReporter
	logger      *zap.Logger
}

// NewHandler creates a new API handler. transcripts and health may be nil
// when PostgreSQL or the provider chain is not configured.
func NewHandler(engine *triage.Engine, transcripts *transcript.Store, health HealthReporter, logger *zap.Logger) *Handler {
	return &Handler{engine: engine, transcripts: transcripts, health: health, logger: logger}
}

// Router builds the chi router with all routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.healthCheck)
		r.Post("/chat", h.chat)
		r.Get("/chat/history", h.chatHistory)
	})

	return r
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{"status": "ok"}
	if h.health != nil {
		body["providers"] = h.health.Health(r.Context())
	}
	writeJSON(w, http.StatusOK, body)
}

type chatRequest struct {
	SessionKey string `json:"session_key"`
	Message    string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.SessionKey == "" || req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session_key and message are required"})
		return
	}

	reply, err := h.engine.HandleTurn(r.Context(), req.SessionKey, req.Message)
	if err != nil {
		h.logger.Error("turn failed", zap.String("key", req.SessionKey), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to process message"})
		return
	}

	// Transcript rows are best-effort: the reply goes out regardless.
	if h.transcripts != nil {
		if err := h.transcripts.Append(r.Context(), req.SessionKey, session.SpeakerUser, req.Message); err != nil {
			h.logger.Error("transcript append failed", zap.Error(err))
		}
		if err := h.transcripts.Append(r.Context(), req.SessionKey, session.SpeakerAssistant, reply); err != nil {
			h.logger.Error("transcript append failed", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

func (h *Handler) chatHistory(w http.ResponseWriter, r *http.Request) {
	if h.transcripts == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "transcript store not configured"})
		return
	}
	key := r.URL.Query().Get("session_key")
	if key == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session_key is required"})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	msgs, err := h.transcripts.History(r.Context(), key, limit)
	if err != nil {
		h.logger.Error("history fetch failed", zap.String("key", key), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch history"})
		return
	}
	if msgs == nil {
		msgs = []transcript.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
