package models

import "time"

// GameQuestion is one quiz item: a photo the learner must match to an
// emotion. Immutable once created.
type GameQuestion struct {
	ID             string
	CorrectEmotion Emotion
	ImageHandle    string
}

// IsPlaceholder reports whether the question carries no visual payload.
// Placeholders are generated when an unlocked emotion has no assets so a
// round is never blocked.
func (q GameQuestion) IsPlaceholder() bool {
	return q.ImageHandle == ""
}

// GameSession accumulates one timed round of quiz answers. It is mutated
// only by the session recorder and becomes immutable once completed.
type GameSession struct {
	ID                string
	StartedAt         time.Time
	CompletedAt       *time.Time
	Score             int
	TimeBonus         int
	QuestionsAnswered int
	CorrectAnswers    int
	CurrentStreak     int
	MaxStreak         int
	ResponseTimes     []time.Duration
}

// Completed reports whether the session has been finalized.
func (s GameSession) Completed() bool {
	return s.CompletedAt != nil
}

// Accuracy returns the fraction of answered questions that were correct,
// or 0 when nothing has been answered yet.
func (s GameSession) Accuracy() float64 {
	if s.QuestionsAnswered == 0 {
		return 0
	}
	return float64(s.CorrectAnswers) / float64(s.QuestionsAnswered)
}
