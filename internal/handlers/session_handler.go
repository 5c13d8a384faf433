package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"emotionquest/internal/config"
	"emotionquest/internal/models"
	"emotionquest/internal/service"
)

// SessionHandler drives the quiz game round lifecycle.
type SessionHandler struct {
	registry    *Registry
	curriculum  *service.CurriculumService
	progression *service.ProgressionService
	report      *service.ReportService
	policy      config.Policy
	cfg         *config.Config
}

// NewSessionHandler creates a new session handler. report may be nil
// when caregiver email is not configured.
func NewSessionHandler(registry *Registry, curriculum *service.CurriculumService, progression *service.ProgressionService, report *service.ReportService, policy config.Policy, cfg *config.Config) *SessionHandler {
	return &SessionHandler{
		registry:    registry,
		curriculum:  curriculum,
		progression: progression,
		report:      report,
		policy:      policy,
		cfg:         cfg,
	}
}

// StartSession begins a new quiz round: a fresh recorder, reset
// monitoring, and a question queue built from the learner's unlocked
// emotions. Any round already in progress is discarded.
func (h *SessionHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	learnerID := LearnerFromContext(r.Context())

	progress, err := h.progression.Progress(learnerID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load progress", "loading progress", err)
		return
	}

	device := h.registry.Session(learnerID)
	recorder := service.NewRecorder(h.policy)
	device.setRecorder(recorder)
	device.monitor.ResetSession()

	questions := h.curriculum.GenerateQueue(progress.UnlockedEmotions)

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"session":   newSessionView(recorder.Session()),
		"questions": newQuestionViews(questions),
	})
}

// GetQueue returns a fresh question queue without starting a round,
// for practice browsing.
func (h *SessionHandler) GetQueue(w http.ResponseWriter, r *http.Request) {
	learnerID := LearnerFromContext(r.Context())

	progress, err := h.progression.Progress(learnerID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load progress", "loading progress", err)
		return
	}

	questions := h.curriculum.GenerateQueue(progress.UnlockedEmotions)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"questions": newQuestionViews(questions),
	})
}

// SubmitAnswer records one answered question on the active round.
func (h *SessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	learnerID := LearnerFromContext(r.Context())

	var req struct {
		Correct             bool    `json:"correct"`
		ResponseTimeSeconds float64 `json:"response_time_seconds"`
	}
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if req.ResponseTimeSeconds < 0 {
		respondWithError(w, http.StatusBadRequest, "Response time must not be negative", "", nil)
		return
	}

	recorder := h.registry.Session(learnerID).activeRecorder()
	if recorder == nil {
		respondWithError(w, http.StatusConflict, "No active session", "", nil)
		return
	}

	responseTime := time.Duration(req.ResponseTimeSeconds * float64(time.Second))
	if err := recorder.RecordAnswer(req.Correct, responseTime); err != nil {
		if errors.Is(err, service.ErrSessionFinalized) {
			respondWithError(w, http.StatusConflict, "Session already completed", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to record answer", "recording answer", err)
		return
	}

	respondWithJSON(w, http.StatusOK, newSessionView(recorder.Session()))
}

// CompleteSession finalizes the active round, folds it into the
// learner's progress, and reports the updated progress.
func (h *SessionHandler) CompleteSession(w http.ResponseWriter, r *http.Request) {
	learnerID := LearnerFromContext(r.Context())

	device := h.registry.Session(learnerID)
	recorder := device.activeRecorder()
	if recorder == nil {
		respondWithError(w, http.StatusConflict, "No active session", "", nil)
		return
	}

	before, err := h.progression.Progress(learnerID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load progress", "loading progress", err)
		return
	}

	session, err := recorder.EndSession()
	if err != nil {
		respondWithError(w, http.StatusConflict, "Session already completed", "", err)
		return
	}
	device.setRecorder(nil)

	progress, err := h.progression.CompleteGameSession(learnerID, session)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to save progress", "saving progress", err)
		return
	}

	if progress.CurrentLevel > before.CurrentLevel {
		h.notifyLevelUp(learnerID, progress)
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"session":  newSessionView(session),
		"progress": newProgressView(progress),
	})
}

// notifyLevelUp emails the caregiver off the request path. Failures are
// logged only; the learner's round result never depends on email.
func (h *SessionHandler) notifyLevelUp(learnerID string, progress *models.PlayerProgress) {
	if h.report == nil || !h.report.IsEnabled() || h.cfg.CaregiverEmail == "" {
		return
	}
	snapshot := *progress
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := h.report.SendLevelUpReport(ctx, h.cfg.CaregiverEmail, learnerID, &snapshot); err != nil {
			log.Printf("Failed to send level-up report: %v", err)
		}
	}()
}
