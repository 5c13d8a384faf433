package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Policy collects the tunable gameplay and inference constants. Values
// here are policy, not mechanism: components read them by name instead
// of hardcoding magic numbers.
type Policy struct {
	// Curriculum
	QueueLength          int `toml:"queue_length"`
	CandidatesPerEmotion int `toml:"candidates_per_emotion"`

	// Scoring
	PointsPerCorrect   int     `toml:"points_per_correct"`
	FastBonusPoints    int     `toml:"fast_bonus_points"`
	QuickBonusPoints   int     `toml:"quick_bonus_points"`
	FastAnswerSeconds  float64 `toml:"fast_answer_seconds"`
	QuickAnswerSeconds float64 `toml:"quick_answer_seconds"`

	// Leveling
	MaxLevel       int `toml:"max_level"`
	PointsPerLevel int `toml:"points_per_level"`
	HistoryLimit   int `toml:"history_limit"`

	// Inference
	InferenceIntervalMillis int `toml:"inference_interval_millis"`

	// Monitoring
	HighConfidenceThreshold float64 `toml:"high_confidence_threshold"`
	EngagementBaseline      float64 `toml:"engagement_baseline"`
	EngagementStep          float64 `toml:"engagement_step"`
	EngagementLowMax        float64 `toml:"engagement_low_max"`
	EngagementModerateMax   float64 `toml:"engagement_moderate_max"`
	FrustrationLowMax       float64 `toml:"frustration_low_max"`
	FrustrationModerateMax  float64 `toml:"frustration_moderate_max"`

	// Mimicry
	MimicryMatchConfidence float64 `toml:"mimicry_match_confidence"`
}

// DefaultPolicy returns the shipped policy values.
func DefaultPolicy() Policy {
	return Policy{
		QueueLength:             8,
		CandidatesPerEmotion:    3,
		PointsPerCorrect:        100,
		FastBonusPoints:         50,
		QuickBonusPoints:        20,
		FastAnswerSeconds:       2.0,
		QuickAnswerSeconds:      5.0,
		MaxLevel:                5,
		PointsPerLevel:          1000,
		HistoryLimit:            20,
		InferenceIntervalMillis: 1500,
		HighConfidenceThreshold: 0.8,
		EngagementBaseline:      0.3,
		EngagementStep:          0.05,
		EngagementLowMax:        0.4,
		EngagementModerateMax:   0.7,
		FrustrationLowMax:       0.3,
		FrustrationModerateMax:  0.6,
		MimicryMatchConfidence:  0.5,
	}
}

// LoadPolicy reads policy overrides from a TOML file, falling back to
// defaults when path is empty or the file does not exist.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()
	if path == "" {
		return policy, nil
	}

	if _, err := os.Stat(path); err != nil {
		return policy, nil
	}
	if _, err := toml.DecodeFile(path, &policy); err != nil {
		return policy, fmt.Errorf("parse policy %s: %w", path, err)
	}
	return policy, nil
}

// InferenceInterval returns the minimum spacing between classifier
// dispatches.
func (p Policy) InferenceInterval() time.Duration {
	return time.Duration(p.InferenceIntervalMillis) * time.Millisecond
}

// FastAnswerWindow returns the response time under which the larger
// time bonus is awarded.
func (p Policy) FastAnswerWindow() time.Duration {
	return time.Duration(p.FastAnswerSeconds * float64(time.Second))
}

// QuickAnswerWindow returns the response time under which the smaller
// time bonus is awarded.
func (p Policy) QuickAnswerWindow() time.Duration {
	return time.Duration(p.QuickAnswerSeconds * float64(time.Second))
}
