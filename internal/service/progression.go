package service

import (
	"errors"
	"fmt"
	"time"

	"emotionquest/internal/config"
	"emotionquest/internal/models"
	"emotionquest/internal/repository"
)

// ErrSessionNotFinalized is returned when an incomplete session is
// handed to the progression service.
var ErrSessionNotFinalized = errors.New("session not finalized")

// ProgressStore persists learner progress at session boundaries.
type ProgressStore interface {
	Load(learnerID string) (*models.PlayerProgress, error)
	Save(progress *models.PlayerProgress) error
}

// ProgressionService folds finalized activity results into the learner's
// cumulative progress. It is the only writer of PlayerProgress; every
// update builds a new record and replaces the old one wholesale.
type ProgressionService struct {
	store  ProgressStore
	policy config.Policy
}

// NewProgressionService creates a new progression service
func NewProgressionService(store ProgressStore, policy config.Policy) *ProgressionService {
	return &ProgressionService{store: store, policy: policy}
}

// emotionUnlockLevels gates each late emotion behind a level.
var emotionUnlockLevels = map[models.Emotion]int{
	models.EmotionSurprised: 2,
	models.EmotionAngry:     3,
	models.EmotionFear:      4,
}

// LevelForScore is the single canonical leveling function: level is
// always derived from the total score and never incremented on its own.
func (s *ProgressionService) LevelForScore(totalScore int) int {
	level := totalScore/s.policy.PointsPerLevel + 1
	if level > s.policy.MaxLevel {
		level = s.policy.MaxLevel
	}
	return level
}

// FoldGameSession returns a new progress record with the finalized
// session's results applied: totals, recomputed level, newly unlocked
// emotions, achievements, and the capped session history.
func (s *ProgressionService) FoldGameSession(progress models.PlayerProgress, session models.GameSession) (models.PlayerProgress, error) {
	if !session.Completed() {
		return progress, ErrSessionNotFinalized
	}

	next := cloneProgress(progress)
	next.TotalScore += session.Score
	next.TotalSessions++
	next.TotalCorrectAnswers += session.CorrectAnswers
	next.TotalQuestions += session.QuestionsAnswered
	if session.MaxStreak > next.BestStreak {
		next.BestStreak = session.MaxStreak
	}

	next.CurrentLevel = s.LevelForScore(next.TotalScore)
	s.applyUnlocks(&next)

	next.SessionHistory = appendCapped(next.SessionHistory, models.SessionRecord{
		SessionID:   session.ID,
		CompletedAt: *session.CompletedAt,
		Score:       session.Score,
		Questions:   session.QuestionsAnswered,
		Correct:     session.CorrectAnswers,
		MaxStreak:   session.MaxStreak,
	}, s.policy.HistoryLimit)

	s.applyAchievements(&next)
	next.UpdatedAt = time.Now()
	return next, nil
}

// FoldSpeechSession records a completed speech practice activity.
func (s *ProgressionService) FoldSpeechSession(progress models.PlayerProgress, record models.ActivityRecord) models.PlayerProgress {
	next := cloneProgress(progress)
	next.SpeechHistory = appendCapped(next.SpeechHistory, record, s.policy.HistoryLimit)
	s.applyAchievements(&next)
	next.UpdatedAt = time.Now()
	return next
}

// FoldConversationSession records a completed conversation practice activity.
func (s *ProgressionService) FoldConversationSession(progress models.PlayerProgress, record models.ActivityRecord) models.PlayerProgress {
	next := cloneProgress(progress)
	next.ConversationHistory = appendCapped(next.ConversationHistory, record, s.policy.HistoryLimit)
	s.applyAchievements(&next)
	next.UpdatedAt = time.Now()
	return next
}

// FoldMimicrySession records a completed camera mimicry round.
func (s *ProgressionService) FoldMimicrySession(progress models.PlayerProgress, record models.MimicryRecord) models.PlayerProgress {
	next := cloneProgress(progress)
	next.MimicryHistory = appendCapped(next.MimicryHistory, record, s.policy.HistoryLimit)
	s.applyAchievements(&next)
	next.UpdatedAt = time.Now()
	return next
}

// CompleteGameSession loads the learner's progress, folds the session in,
// and saves the result. A persistence failure is surfaced to the caller;
// the update is never silently dropped.
func (s *ProgressionService) CompleteGameSession(learnerID string, session models.GameSession) (*models.PlayerProgress, error) {
	progress, err := s.loadOrCreate(learnerID)
	if err != nil {
		return nil, err
	}

	next, err := s.FoldGameSession(*progress, session)
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(&next); err != nil {
		return nil, fmt.Errorf("persist progress for %s: %w", learnerID, err)
	}
	return &next, nil
}

// CompleteMimicrySession folds and persists one mimicry round.
func (s *ProgressionService) CompleteMimicrySession(learnerID string, record models.MimicryRecord) (*models.PlayerProgress, error) {
	progress, err := s.loadOrCreate(learnerID)
	if err != nil {
		return nil, err
	}

	next := s.FoldMimicrySession(*progress, record)
	if err := s.store.Save(&next); err != nil {
		return nil, fmt.Errorf("persist progress for %s: %w", learnerID, err)
	}
	return &next, nil
}

// CompleteSpeechSession folds and persists one speech practice activity.
func (s *ProgressionService) CompleteSpeechSession(learnerID string, record models.ActivityRecord) (*models.PlayerProgress, error) {
	progress, err := s.loadOrCreate(learnerID)
	if err != nil {
		return nil, err
	}

	next := s.FoldSpeechSession(*progress, record)
	if err := s.store.Save(&next); err != nil {
		return nil, fmt.Errorf("persist progress for %s: %w", learnerID, err)
	}
	return &next, nil
}

// CompleteConversationSession folds and persists one conversation activity.
func (s *ProgressionService) CompleteConversationSession(learnerID string, record models.ActivityRecord) (*models.PlayerProgress, error) {
	progress, err := s.loadOrCreate(learnerID)
	if err != nil {
		return nil, err
	}

	next := s.FoldConversationSession(*progress, record)
	if err := s.store.Save(&next); err != nil {
		return nil, fmt.Errorf("persist progress for %s: %w", learnerID, err)
	}
	return &next, nil
}

// Progress returns the learner's current progress, creating a fresh
// record for first-time learners.
func (s *ProgressionService) Progress(learnerID string) (*models.PlayerProgress, error) {
	return s.loadOrCreate(learnerID)
}

func (s *ProgressionService) loadOrCreate(learnerID string) (*models.PlayerProgress, error) {
	progress, err := s.store.Load(learnerID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.NewPlayerProgress(learnerID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load progress for %s: %w", learnerID, err)
	}
	return progress, nil
}

// applyUnlocks adds every emotion gated at or below the current level.
// Unlocks are monotonic: nothing is ever removed, even if the score were
// later reinterpreted.
func (s *ProgressionService) applyUnlocks(p *models.PlayerProgress) {
	for _, emotion := range models.AllEmotions {
		gate, gated := emotionUnlockLevels[emotion]
		if gated && p.CurrentLevel < gate {
			continue
		}
		if !p.HasEmotion(emotion) {
			p.UnlockedEmotions = append(p.UnlockedEmotions, emotion)
		}
	}
}

// cloneProgress deep-copies a progress record so folds never alias the
// caller's slices.
func cloneProgress(p models.PlayerProgress) models.PlayerProgress {
	next := p
	next.UnlockedEmotions = append([]models.Emotion(nil), p.UnlockedEmotions...)
	next.SessionHistory = append([]models.SessionRecord(nil), p.SessionHistory...)
	next.SpeechHistory = append([]models.ActivityRecord(nil), p.SpeechHistory...)
	next.ConversationHistory = append([]models.ActivityRecord(nil), p.ConversationHistory...)
	next.MimicryHistory = append([]models.MimicryRecord(nil), p.MimicryHistory...)
	next.Achievements = append([]string(nil), p.Achievements...)
	return next
}

// appendCapped appends an entry and drops the oldest entries beyond the
// retention limit.
func appendCapped[T any](history []T, entry T, limit int) []T {
	history = append(history, entry)
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history
}
