package handlers

import "net/http"

// NewRouter wires every API route onto a mux. All routes require a
// learner bearer token.
func NewRouter(mw *Middleware, session *SessionHandler, progress *ProgressHandler, monitoring *MonitoringHandler, frame *FrameHandler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/session/start", mw.RequireLearner(session.StartSession))
	mux.HandleFunc("POST /api/session/answer", mw.RequireLearner(session.SubmitAnswer))
	mux.HandleFunc("POST /api/session/complete", mw.RequireLearner(session.CompleteSession))
	mux.HandleFunc("GET /api/curriculum/queue", mw.RequireLearner(session.GetQueue))

	mux.HandleFunc("GET /api/progress", mw.RequireLearner(progress.GetProgress))
	mux.HandleFunc("POST /api/progress/speech", mw.RequireLearner(progress.RecordSpeech))
	mux.HandleFunc("POST /api/progress/conversation", mw.RequireLearner(progress.RecordConversation))

	mux.HandleFunc("POST /api/monitoring/reset", mw.RequireLearner(monitoring.ResetMonitoring))
	mux.HandleFunc("GET /api/monitoring", mw.RequireLearner(monitoring.GetMonitoring))

	mux.HandleFunc("POST /api/frames", mw.RequireLearner(frame.IngestFrame))
	mux.HandleFunc("GET /api/emotion/current", mw.RequireLearner(frame.CurrentEmotion))
	mux.HandleFunc("POST /api/mimicry/start", mw.RequireLearner(frame.BeginMimicry))
	mux.HandleFunc("POST /api/mimicry/complete", mw.RequireLearner(frame.FinishMimicry))
	mux.HandleFunc("DELETE /api/device", mw.RequireLearner(frame.CloseDevice))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return mux
}
