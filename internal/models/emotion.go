package models

// Emotion is a recognisable emotion label.
type Emotion string

const (
	EmotionHappy     Emotion = "happy"
	EmotionSad       Emotion = "sad"
	EmotionNeutral   Emotion = "neutral"
	EmotionSurprised Emotion = "surprised"
	EmotionAngry     Emotion = "angry"
	EmotionFear      Emotion = "fear"
)

// AllEmotions lists every emotion the system can teach, in unlock order.
var AllEmotions = []Emotion{
	EmotionHappy,
	EmotionSad,
	EmotionNeutral,
	EmotionSurprised,
	EmotionAngry,
	EmotionFear,
}

// BaseEmotions are unlocked for every learner from the start.
var BaseEmotions = []Emotion{EmotionHappy, EmotionSad, EmotionNeutral}

// ParseEmotion returns the emotion for a label, or false if unknown.
func ParseEmotion(label string) (Emotion, bool) {
	for _, e := range AllEmotions {
		if string(e) == label {
			return e, true
		}
	}
	return "", false
}

// IsPositive reports whether the emotion counts toward engagement.
func (e Emotion) IsPositive() bool {
	return e == EmotionHappy || e == EmotionSurprised || e == EmotionNeutral
}

// IsNegative reports whether the emotion counts toward frustration.
func (e Emotion) IsNegative() bool {
	return e == EmotionSad || e == EmotionAngry || e == EmotionFear
}
