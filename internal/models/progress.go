package models

import "time"

// SessionRecord is the per-session entry kept in a learner's history.
type SessionRecord struct {
	SessionID   string    `json:"session_id"`
	CompletedAt time.Time `json:"completed_at"`
	Score       int       `json:"score"`
	Questions   int       `json:"questions"`
	Correct     int       `json:"correct"`
	MaxStreak   int       `json:"max_streak"`
}

// ActivityRecord is the history entry for speech and conversation
// practice activities.
type ActivityRecord struct {
	ID          string    `json:"id"`
	CompletedAt time.Time `json:"completed_at"`
	Duration    int       `json:"duration_seconds"`
	Score       int       `json:"score"`
}

// MimicryRecord is the history entry for one camera mimicry round.
type MimicryRecord struct {
	ID            string    `json:"id"`
	CompletedAt   time.Time `json:"completed_at"`
	TargetEmotion Emotion   `json:"target_emotion"`
	MatchRatio    float64   `json:"match_ratio"`
	Observations  int       `json:"observations"`
}

// PlayerProgress is the long-lived learner model. It is updated only by
// the progression service via whole-record replace, so readers always see
// a consistent snapshot.
type PlayerProgress struct {
	LearnerID           string
	TotalScore          int
	TotalSessions       int
	TotalCorrectAnswers int
	TotalQuestions      int
	BestStreak          int
	CurrentLevel        int
	UnlockedEmotions    []Emotion
	SessionHistory      []SessionRecord
	SpeechHistory       []ActivityRecord
	ConversationHistory []ActivityRecord
	MimicryHistory      []MimicryRecord
	Achievements        []string
	UpdatedAt           time.Time
}

// NewPlayerProgress returns a fresh progress record with the base
// emotions unlocked and level 1.
func NewPlayerProgress(learnerID string) *PlayerProgress {
	unlocked := make([]Emotion, len(BaseEmotions))
	copy(unlocked, BaseEmotions)
	return &PlayerProgress{
		LearnerID:        learnerID,
		CurrentLevel:     1,
		UnlockedEmotions: unlocked,
	}
}

// HasEmotion reports whether the emotion is in the unlocked set.
func (p *PlayerProgress) HasEmotion(e Emotion) bool {
	for _, u := range p.UnlockedEmotions {
		if u == e {
			return true
		}
	}
	return false
}

// HasAchievement reports whether the achievement has been earned.
func (p *PlayerProgress) HasAchievement(id string) bool {
	for _, a := range p.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

// Accuracy returns the learner's lifetime answer accuracy, or 0 before
// any questions have been answered.
func (p *PlayerProgress) Accuracy() float64 {
	if p.TotalQuestions == 0 {
		return 0
	}
	return float64(p.TotalCorrectAnswers) / float64(p.TotalQuestions)
}
