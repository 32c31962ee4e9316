// Package server exposes the pipeline over HTTP: starting runs with
// progressive SSE snapshots, the answer fan-out, the background-removal
// transform, and the recorded interaction log.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"albert/internal/domain"
	"albert/internal/pipeline"
	"albert/internal/recorder"
)

// Remover is the background-removal boundary.
type Remover interface {
	RemoveBackground(ctx context.Context, imageURL string) (string, error)
}

// Handler serves the content-generation API.
type Handler struct {
	orchestrator *pipeline.Orchestrator
	answers      *pipeline.AnswerGenerator
	remover      Remover
	rec          *recorder.Recorder
	logger       *slog.Logger
}

// NewHandler creates the API handler.
func NewHandler(orchestrator *pipeline.Orchestrator, answers *pipeline.AnswerGenerator, remover Remover, rec *recorder.Recorder, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		orchestrator: orchestrator,
		answers:      answers,
		remover:      remover,
		rec:          rec,
		logger:       logger,
	}
}

// Register mounts the API routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/runs", h.HandleStartRun)
	r.Post("/api/answers", h.HandleAnswers)
	r.Post("/api/remove-background", h.HandleRemoveBackground)
	r.Get("/api/runs/{runID}/interactions", h.HandleListInteractions)
}

// HandleStartRun starts a pipeline run and streams result snapshots as SSE
// events, one per completed stage plus a terminal event.
func (h *Handler) HandleStartRun(w http.ResponseWriter, r *http.Request) {
	var req domain.TopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	// The run outlives the request: a departed observer must not cancel
	// in-flight upstream calls or leave the interaction log half-written.
	snapshots, err := h.orchestrator.Start(context.WithoutCancel(r.Context()), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errStreamingUnsupported)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for snapshot := range snapshots {
		data, err := json.Marshal(snapshot)
		if err != nil {
			h.logger.Error("failed to marshal snapshot", slog.String("error", err.Error()))
			return
		}
		if _, err := w.Write(append(append([]byte("data: "), data...), '\n', '\n')); err != nil {
			// Observer went away; the run itself keeps going to completion.
			AddError(r.Context(), err)
			return
		}
		flusher.Flush()
	}
}

type answersRequest struct {
	Topic     string   `json:"topic"`
	Questions []string `json:"questions"`
}

type answersResponse struct {
	RunID   string          `json:"runId"`
	Answers []domain.Answer `json:"answers"`
}

// HandleAnswers answers a set of questions with one research call each.
func (h *Handler) HandleAnswers(w http.ResponseWriter, r *http.Request) {
	var req answersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Topic == "" || len(req.Questions) == 0 {
		writeError(w, http.StatusBadRequest, errMissingFields)
		return
	}

	// Answer calls are not part of a pipeline run; mint an ID so their
	// interactions are still retrievable from the log.
	runID := uuid.New().String()
	answers, err := h.answers.Answers(r.Context(), runID, req.Topic, req.Questions)
	if err != nil {
		AddError(r.Context(), err)
		writeError(w, http.StatusBadGateway, err)
		return
	}

	writeJSON(w, http.StatusOK, answersResponse{RunID: runID, Answers: answers})
}

type removeBackgroundRequest struct {
	ImageURL string `json:"imageUrl"`
}

type removeBackgroundResponse struct {
	ImageWithoutBackground string `json:"imageWithoutBackground"`
}

// HandleRemoveBackground runs the stateless background-removal transform.
func (h *Handler) HandleRemoveBackground(w http.ResponseWriter, r *http.Request) {
	var req removeBackgroundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.ImageURL == "" {
		writeError(w, http.StatusBadRequest, errMissingFields)
		return
	}

	image, err := h.remover.RemoveBackground(r.Context(), req.ImageURL)
	if err != nil {
		AddError(r.Context(), err)
		writeError(w, http.StatusBadGateway, err)
		return
	}

	writeJSON(w, http.StatusOK, removeBackgroundResponse{ImageWithoutBackground: image})
}

// HandleListInteractions returns the recorded model interactions for a run.
func (h *Handler) HandleListInteractions(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	interactions, err := h.rec.List(r.Context(), runID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"interactions": interactions})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
