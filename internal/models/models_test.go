package models

import (
	"testing"
	"time"
)

func TestParseEmotion(t *testing.T) {
	tests := []struct {
		label string
		want  Emotion
		ok    bool
	}{
		{"happy", EmotionHappy, true},
		{"fear", EmotionFear, true},
		{"neutral", EmotionNeutral, true},
		{"joyful", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := ParseEmotion(tt.label)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseEmotion(%q) = (%v, %v), want (%v, %v)", tt.label, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestEmotionPolarity(t *testing.T) {
	for _, e := range AllEmotions {
		if e.IsPositive() == e.IsNegative() {
			t.Errorf("emotion %s must be exactly one of positive or negative", e)
		}
	}
}

func TestSessionAccuracy(t *testing.T) {
	tests := []struct {
		name     string
		session  GameSession
		expected float64
	}{
		{
			name:     "no answers",
			session:  GameSession{},
			expected: 0,
		},
		{
			name:     "six of eight",
			session:  GameSession{QuestionsAnswered: 8, CorrectAnswers: 6},
			expected: 0.75,
		},
		{
			name:     "perfect",
			session:  GameSession{QuestionsAnswered: 5, CorrectAnswers: 5},
			expected: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.Accuracy(); got != tt.expected {
				t.Errorf("Accuracy() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestQuestionPlaceholder(t *testing.T) {
	q := GameQuestion{ID: "q1", CorrectEmotion: EmotionFear}
	if !q.IsPlaceholder() {
		t.Error("question with no image handle should be a placeholder")
	}

	q.ImageHandle = "fear/photo_01.jpg"
	if q.IsPlaceholder() {
		t.Error("question with an image handle should not be a placeholder")
	}
}

func TestNewPlayerProgress(t *testing.T) {
	p := NewPlayerProgress("learner-1")

	if p.CurrentLevel != 1 {
		t.Errorf("new progress level = %d, want 1", p.CurrentLevel)
	}
	for _, e := range BaseEmotions {
		if !p.HasEmotion(e) {
			t.Errorf("base emotion %s should be unlocked", e)
		}
	}
	if p.HasEmotion(EmotionFear) {
		t.Error("fear should not be unlocked at level 1")
	}
	if p.Accuracy() != 0 {
		t.Errorf("fresh progress accuracy = %v, want 0", p.Accuracy())
	}
}

func TestNeutralObservation(t *testing.T) {
	now := time.Now()
	obs := NeutralObservation(now, false)
	if obs.Label != EmotionNeutral || obs.Confidence != 1.0 {
		t.Errorf("neutral fallback = (%s, %v), want (neutral, 1.0)", obs.Label, obs.Confidence)
	}
	if !obs.Timestamp.Equal(now) {
		t.Error("neutral fallback should carry the supplied timestamp")
	}
}
