package service

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"emotionquest/internal/config"
	"emotionquest/internal/models"
)

// ErrSessionFinalized is returned when a recorder is used after EndSession.
var ErrSessionFinalized = errors.New("session already finalized")

// Recorder accumulates one game session's answer events. It exclusively
// owns its GameSession until EndSession, after which the session is
// immutable and the recorder rejects further use.
type Recorder struct {
	policy config.Policy

	mu        sync.Mutex
	session   models.GameSession
	finalized bool
}

// NewRecorder starts a new session.
func NewRecorder(policy config.Policy) *Recorder {
	return &Recorder{
		policy: policy,
		session: models.GameSession{
			ID:        uuid.NewString(),
			StartedAt: time.Now(),
		},
	}
}

// RecordAnswer folds one answer event into the session. Correct answers
// score base points plus a time bonus: responses inside the fast window
// earn the larger bonus, inside the quick window the smaller one, slower
// none. Bonuses accrue separately in TimeBonus; the streak resets on any
// incorrect answer.
func (r *Recorder) RecordAnswer(isCorrect bool, responseTime time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return ErrSessionFinalized
	}

	r.session.QuestionsAnswered++
	r.session.ResponseTimes = append(r.session.ResponseTimes, responseTime)

	if !isCorrect {
		r.session.CurrentStreak = 0
		return nil
	}

	r.session.CorrectAnswers++
	r.session.Score += r.policy.PointsPerCorrect
	r.session.CurrentStreak++
	if r.session.CurrentStreak > r.session.MaxStreak {
		r.session.MaxStreak = r.session.CurrentStreak
	}

	switch {
	case responseTime < r.policy.FastAnswerWindow():
		r.session.TimeBonus += r.policy.FastBonusPoints
	case responseTime < r.policy.QuickAnswerWindow():
		r.session.TimeBonus += r.policy.QuickBonusPoints
	}

	return nil
}

// EndSession finalizes the session and returns it. The session must be
// handed to the progression service exactly once; calling EndSession a
// second time is a usage error.
func (r *Recorder) EndSession() (models.GameSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return models.GameSession{}, ErrSessionFinalized
	}

	now := time.Now()
	r.session.CompletedAt = &now
	r.session.Score += r.session.TimeBonus
	r.finalized = true

	return r.snapshotLocked(), nil
}

// Session returns a snapshot of the session's current statistics.
func (r *Recorder) Session() models.GameSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Recorder) snapshotLocked() models.GameSession {
	snapshot := r.session
	snapshot.ResponseTimes = make([]time.Duration, len(r.session.ResponseTimes))
	copy(snapshot.ResponseTimes, r.session.ResponseTimes)
	return snapshot
}
