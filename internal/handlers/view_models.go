package handlers

import (
	"time"

	"emotionquest/internal/models"
	"emotionquest/internal/service"
)

// Wire shapes for API responses. Kept separate from the domain models
// so the persistence layout can move without breaking clients.

type questionView struct {
	ID          string `json:"id"`
	Emotion     string `json:"emotion"`
	Image       string `json:"image,omitempty"`
	Placeholder bool   `json:"placeholder"`
}

func newQuestionViews(questions []models.GameQuestion) []questionView {
	views := make([]questionView, len(questions))
	for i, q := range questions {
		views[i] = questionView{
			ID:          q.ID,
			Emotion:     string(q.CorrectEmotion),
			Image:       q.ImageHandle,
			Placeholder: q.IsPlaceholder(),
		}
	}
	return views
}

type sessionView struct {
	ID                string  `json:"id"`
	StartedAt         string  `json:"started_at"`
	Completed         bool    `json:"completed"`
	Score             int     `json:"score"`
	TimeBonus         int     `json:"time_bonus"`
	QuestionsAnswered int     `json:"questions_answered"`
	CorrectAnswers    int     `json:"correct_answers"`
	CurrentStreak     int     `json:"current_streak"`
	MaxStreak         int     `json:"max_streak"`
	Accuracy          float64 `json:"accuracy"`
}

func newSessionView(s models.GameSession) sessionView {
	return sessionView{
		ID:                s.ID,
		StartedAt:         s.StartedAt.Format(time.RFC3339),
		Completed:         s.Completed(),
		Score:             s.Score,
		TimeBonus:         s.TimeBonus,
		QuestionsAnswered: s.QuestionsAnswered,
		CorrectAnswers:    s.CorrectAnswers,
		CurrentStreak:     s.CurrentStreak,
		MaxStreak:         s.MaxStreak,
		Accuracy:          s.Accuracy(),
	}
}

type progressView struct {
	LearnerID           string                  `json:"learner_id"`
	TotalScore          int                     `json:"total_score"`
	TotalSessions       int                     `json:"total_sessions"`
	TotalCorrectAnswers int                     `json:"total_correct_answers"`
	TotalQuestions      int                     `json:"total_questions"`
	BestStreak          int                     `json:"best_streak"`
	CurrentLevel        int                     `json:"current_level"`
	UnlockedEmotions    []models.Emotion        `json:"unlocked_emotions"`
	SessionHistory      []models.SessionRecord  `json:"session_history"`
	SpeechHistory       []models.ActivityRecord `json:"speech_history"`
	ConversationHistory []models.ActivityRecord `json:"conversation_history"`
	MimicryHistory      []models.MimicryRecord  `json:"mimicry_history"`
	Achievements        []string                `json:"achievements"`
}

func newProgressView(p *models.PlayerProgress) progressView {
	return progressView{
		LearnerID:           p.LearnerID,
		TotalScore:          p.TotalScore,
		TotalSessions:       p.TotalSessions,
		TotalCorrectAnswers: p.TotalCorrectAnswers,
		TotalQuestions:      p.TotalQuestions,
		BestStreak:          p.BestStreak,
		CurrentLevel:        p.CurrentLevel,
		UnlockedEmotions:    p.UnlockedEmotions,
		SessionHistory:      p.SessionHistory,
		SpeechHistory:       p.SpeechHistory,
		ConversationHistory: p.ConversationHistory,
		MimicryHistory:      p.MimicryHistory,
		Achievements:        p.Achievements,
	}
}

type monitoringView struct {
	EngagementLevel  string                 `json:"engagement_level"`
	FrustrationLevel string                 `json:"frustration_level"`
	EngagementScore  float64                `json:"engagement_score"`
	TotalReadings    int                    `json:"total_readings"`
	Distribution     map[models.Emotion]int `json:"emotion_distribution"`
}

func newMonitoringView(m *service.MonitoringService) monitoringView {
	stats := m.Stats()
	return monitoringView{
		EngagementLevel:  string(m.EngagementLevel()),
		FrustrationLevel: string(m.FrustrationLevel()),
		EngagementScore:  stats.EngagementScore,
		TotalReadings:    stats.TotalReadings,
		Distribution:     stats.EmotionDistribution,
	}
}

type emotionView struct {
	Label       string  `json:"label"`
	Confidence  float64 `json:"confidence"`
	Timestamp   string  `json:"timestamp"`
	FacePresent bool    `json:"face_present"`
}

func newEmotionView(obs models.EmotionObservation) emotionView {
	return emotionView{
		Label:       string(obs.Label),
		Confidence:  obs.Confidence,
		Timestamp:   obs.Timestamp.Format(time.RFC3339),
		FacePresent: obs.FacePresent,
	}
}
