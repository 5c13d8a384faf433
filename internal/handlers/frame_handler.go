package handlers

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image/jpeg"
	"net/http"
	"time"

	"emotionquest/internal/inference"
	"emotionquest/internal/models"
	"emotionquest/internal/security"
	"emotionquest/internal/service"
)

// FrameHandler ingests camera frames into the learner's inference
// pipeline and serves the resulting emotion signal.
type FrameHandler struct {
	registry    *Registry
	progression *service.ProgressionService
	throttle    *security.FrameThrottle
}

// NewFrameHandler creates a new frame handler
func NewFrameHandler(registry *Registry, progression *service.ProgressionService, throttle *security.FrameThrottle) *FrameHandler {
	return &FrameHandler{registry: registry, progression: progression, throttle: throttle}
}

// IngestFrame accepts one captured frame. The image rides as base64
// JPEG; the face box, when the device ran detection, rides alongside in
// normalized coordinates.
func (h *FrameHandler) IngestFrame(w http.ResponseWriter, r *http.Request) {
	learnerID := LearnerFromContext(r.Context())

	if !h.throttle.Allow(learnerID) {
		respondWithError(w, http.StatusTooManyRequests, "Frame rate too high", "", nil)
		return
	}

	var req struct {
		ImageBase64 string                 `json:"image_base64"`
		Orientation int                    `json:"orientation"`
		Face        *inference.BoundingBox `json:"face"`
	}
	if !decodeJSONBody(w, r, &req) {
		return
	}

	raw, err := base64.StdEncoding.DecodeString(req.ImageBase64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid image encoding", "", err)
		return
	}
	img, err := jpeg.Decode(bytes.NewReader(raw))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid JPEG image", "", err)
		return
	}

	device := h.registry.Session(learnerID)
	frame := inference.Frame{
		Image:       img,
		Orientation: req.Orientation,
		CapturedAt:  time.Now(),
		Face:        req.Face,
	}
	if err := device.pipeline.HandleFrame(frame); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to process frame", "processing frame", err)
		return
	}

	respondWithJSON(w, http.StatusAccepted, newEmotionView(device.pipeline.Current()))
}

// CurrentEmotion returns the latest published observation.
func (h *FrameHandler) CurrentEmotion(w http.ResponseWriter, r *http.Request) {
	learnerID := LearnerFromContext(r.Context())

	device := h.registry.Session(learnerID)
	respondWithJSON(w, http.StatusOK, newEmotionView(device.pipeline.Current()))
}

// BeginMimicry starts a mimicry round for a target emotion. The target
// must already be unlocked for the learner.
func (h *FrameHandler) BeginMimicry(w http.ResponseWriter, r *http.Request) {
	learnerID := LearnerFromContext(r.Context())

	var req struct {
		Target string `json:"target_emotion"`
	}
	if !decodeJSONBody(w, r, &req) {
		return
	}
	target, ok := models.ParseEmotion(req.Target)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Unknown emotion", "", nil)
		return
	}

	progress, err := h.progression.Progress(learnerID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load progress", "loading progress", err)
		return
	}
	if !progress.HasEmotion(target) {
		respondWithError(w, http.StatusForbidden, "Emotion not yet unlocked", "", nil)
		return
	}

	h.registry.Session(learnerID).mimicry.Begin(target)
	respondWithJSON(w, http.StatusCreated, map[string]string{"target_emotion": string(target)})
}

// FinishMimicry closes the running mimicry round, folds its record into
// the learner's history, and returns the updated progress.
func (h *FrameHandler) FinishMimicry(w http.ResponseWriter, r *http.Request) {
	learnerID := LearnerFromContext(r.Context())

	record, err := h.registry.Session(learnerID).mimicry.Finish()
	if err != nil {
		if errors.Is(err, service.ErrNoMimicryRound) {
			respondWithError(w, http.StatusConflict, "No mimicry round in progress", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to score round", "scoring mimicry round", err)
		return
	}

	progress, err := h.progression.CompleteMimicrySession(learnerID, record)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to save progress", "saving mimicry round", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"record":   record,
		"progress": newProgressView(progress),
	})
}

// CloseDevice tears down the learner's device session, stopping its
// pipeline. Called when the app goes to background or disconnects.
func (h *FrameHandler) CloseDevice(w http.ResponseWriter, r *http.Request) {
	learnerID := LearnerFromContext(r.Context())
	h.registry.Close(learnerID)
	w.WriteHeader(http.StatusNoContent)
}
