package service

import (
	"sync"

	"emotionquest/internal/config"
	"emotionquest/internal/models"
)

// Level buckets a running score for display.
type Level string

const (
	LevelLow      Level = "low"
	LevelModerate Level = "moderate"
	LevelHigh     Level = "high"
)

// MonitoringService keeps a live read on learner affect during one
// monitored activity, fed by the inference pipeline's observation
// stream. Reset at the start of every activity.
type MonitoringService struct {
	policy config.Policy

	mu                     sync.Mutex
	totalReadings          int
	highConfidenceReadings int
	negativeReadings       int
	engagementScore        float64
	distribution           map[models.Emotion]int
}

// NewMonitoringService creates a monitoring service ready for its first
// activity.
func NewMonitoringService(policy config.Policy) *MonitoringService {
	m := &MonitoringService{policy: policy}
	m.ResetSession()
	return m
}

// ResetSession zeroes all counters. Must be called at the start of every
// monitored activity to avoid cross-session bleed.
func (m *MonitoringService) ResetSession() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalReadings = 0
	m.highConfidenceReadings = 0
	m.negativeReadings = 0
	m.engagementScore = m.policy.EngagementBaseline
	m.distribution = make(map[models.Emotion]int)
}

// RecordEmotion folds one observation into the running stats. Positive
// emotions nudge the engagement score up by the configured step,
// negative ones down, clamped to [0,1].
func (m *MonitoringService) RecordEmotion(label models.Emotion, confidence float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalReadings++
	if confidence > m.policy.HighConfidenceThreshold {
		m.highConfidenceReadings++
	}
	m.distribution[label]++

	if label.IsPositive() {
		m.engagementScore += m.policy.EngagementStep
	} else if label.IsNegative() {
		m.negativeReadings++
		m.engagementScore -= m.policy.EngagementStep
	}
	if m.engagementScore > 1 {
		m.engagementScore = 1
	}
	if m.engagementScore < 0 {
		m.engagementScore = 0
	}
}

// EngagementLevel thresholds the running engagement score.
func (m *MonitoringService) EngagementLevel() Level {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case m.engagementScore <= m.policy.EngagementLowMax:
		return LevelLow
	case m.engagementScore <= m.policy.EngagementModerateMax:
		return LevelModerate
	default:
		return LevelHigh
	}
}

// FrustrationLevel thresholds the ratio of negative observations. With
// no observations yet it reports low rather than dividing by zero.
func (m *MonitoringService) FrustrationLevel() Level {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.totalReadings == 0 {
		return LevelLow
	}

	ratio := float64(m.negativeReadings) / float64(m.totalReadings)
	switch {
	case ratio <= m.policy.FrustrationLowMax:
		return LevelLow
	case ratio <= m.policy.FrustrationModerateMax:
		return LevelModerate
	default:
		return LevelHigh
	}
}

// Stats returns a snapshot of the current monitoring counters.
func (m *MonitoringService) Stats() models.MonitoringStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	distribution := make(map[models.Emotion]int, len(m.distribution))
	for emotion, count := range m.distribution {
		distribution[emotion] = count
	}

	return models.MonitoringStats{
		TotalReadings:          m.totalReadings,
		HighConfidenceReadings: m.highConfidenceReadings,
		EngagementScore:        m.engagementScore,
		EmotionDistribution:    distribution,
	}
}
