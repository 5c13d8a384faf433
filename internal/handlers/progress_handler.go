package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"emotionquest/internal/models"
	"emotionquest/internal/service"
)

// ProgressHandler serves learner progress and records non-quiz practice
// activities.
type ProgressHandler struct {
	progression *service.ProgressionService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progression *service.ProgressionService) *ProgressHandler {
	return &ProgressHandler{progression: progression}
}

// GetProgress returns the learner's full progress record.
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	learnerID := LearnerFromContext(r.Context())

	progress, err := h.progression.Progress(learnerID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load progress", "loading progress", err)
		return
	}

	respondWithJSON(w, http.StatusOK, newProgressView(progress))
}

type activityRequest struct {
	DurationSeconds int `json:"duration_seconds"`
	Score           int `json:"score"`
}

func (req activityRequest) validate(w http.ResponseWriter) bool {
	if req.DurationSeconds < 0 {
		respondWithError(w, http.StatusBadRequest, "Duration must not be negative", "", nil)
		return false
	}
	return true
}

func (req activityRequest) record() models.ActivityRecord {
	return models.ActivityRecord{
		ID:          uuid.NewString(),
		CompletedAt: time.Now(),
		Duration:    req.DurationSeconds,
		Score:       req.Score,
	}
}

// RecordSpeech folds one completed speech practice activity into the
// learner's history.
func (h *ProgressHandler) RecordSpeech(w http.ResponseWriter, r *http.Request) {
	learnerID := LearnerFromContext(r.Context())

	var req activityRequest
	if !decodeJSONBody(w, r, &req) || !req.validate(w) {
		return
	}

	progress, err := h.progression.CompleteSpeechSession(learnerID, req.record())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to save progress", "saving speech activity", err)
		return
	}

	respondWithJSON(w, http.StatusOK, newProgressView(progress))
}

// RecordConversation folds one completed conversation scenario into the
// learner's history.
func (h *ProgressHandler) RecordConversation(w http.ResponseWriter, r *http.Request) {
	learnerID := LearnerFromContext(r.Context())

	var req activityRequest
	if !decodeJSONBody(w, r, &req) || !req.validate(w) {
		return
	}

	progress, err := h.progression.CompleteConversationSession(learnerID, req.record())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to save progress", "saving conversation activity", err)
		return
	}

	respondWithJSON(w, http.StatusOK, newProgressView(progress))
}
