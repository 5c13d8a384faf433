package models

import "time"

// EmotionObservation is one confidence-scored reading published by the
// frame inference pipeline. Transient; folded into monitoring stats and
// mimicry records, never persisted directly.
type EmotionObservation struct {
	Label       Emotion
	Confidence  float64
	Timestamp   time.Time
	FacePresent bool
}

// NeutralObservation is the fallback published when no face is found or
// classification fails.
func NeutralObservation(now time.Time, facePresent bool) EmotionObservation {
	return EmotionObservation{
		Label:       EmotionNeutral,
		Confidence:  1.0,
		Timestamp:   now,
		FacePresent: facePresent,
	}
}

// MonitoringStats is the running affect read for one monitored activity.
// Reset at activity start; mutated only by the monitoring service.
type MonitoringStats struct {
	TotalReadings          int
	HighConfidenceReadings int
	EngagementScore        float64
	EmotionDistribution    map[Emotion]int
}
