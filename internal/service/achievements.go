package service

import "emotionquest/internal/models"

// Achievement pairs an identifier with its earning condition. Conditions
// read only the progress snapshot, so evaluation is idempotent.
type Achievement struct {
	ID     string
	Name   string
	Earned func(p *models.PlayerProgress) bool
}

// achievements holds the fixed achievement thresholds, in display order.
var achievements = []Achievement{
	{
		ID:     "first_steps",
		Name:   "First Steps",
		Earned: func(p *models.PlayerProgress) bool { return p.TotalSessions >= 1 },
	},
	{
		ID:     "dedicated_learner",
		Name:   "Dedicated Learner",
		Earned: func(p *models.PlayerProgress) bool { return p.TotalSessions >= 10 },
	},
	{
		ID:     "marathon_player",
		Name:   "Marathon Player",
		Earned: func(p *models.PlayerProgress) bool { return p.TotalSessions >= 50 },
	},
	{
		ID:     "on_a_roll",
		Name:   "On a Roll",
		Earned: func(p *models.PlayerProgress) bool { return p.BestStreak >= 5 },
	},
	{
		ID:     "unstoppable",
		Name:   "Unstoppable",
		Earned: func(p *models.PlayerProgress) bool { return p.BestStreak >= 10 },
	},
	{
		ID:   "sharp_eye",
		Name: "Sharp Eye",
		Earned: func(p *models.PlayerProgress) bool {
			return p.TotalQuestions >= 50 && p.Accuracy() >= 0.9
		},
	},
	{
		ID:   "emotion_explorer",
		Name: "Emotion Explorer",
		Earned: func(p *models.PlayerProgress) bool {
			return len(p.UnlockedEmotions) >= 5
		},
	},
	{
		ID:   "emotion_master",
		Name: "Emotion Master",
		Earned: func(p *models.PlayerProgress) bool {
			return len(p.UnlockedEmotions) >= len(models.AllEmotions)
		},
	},
	{
		ID:     "clear_speaker",
		Name:   "Clear Speaker",
		Earned: func(p *models.PlayerProgress) bool { return len(p.SpeechHistory) >= 10 },
	},
	{
		ID:     "conversationalist",
		Name:   "Conversationalist",
		Earned: func(p *models.PlayerProgress) bool { return len(p.ConversationHistory) >= 10 },
	},
	{
		ID:     "mirror_master",
		Name:   "Mirror Master",
		Earned: func(p *models.PlayerProgress) bool { return len(p.MimicryHistory) >= 10 },
	},
}

// AchievementName returns the display name for an achievement ID.
func AchievementName(id string) string {
	for _, a := range achievements {
		if a.ID == id {
			return a.Name
		}
	}
	return id
}

// applyAchievements recomputes the full achievement set from the current
// snapshot and merges it into the record. Recomputing from scratch on
// every update means a partially-applied earlier fold can never leave an
// achievement permanently missed; already-earned achievements are never
// removed.
func (s *ProgressionService) applyAchievements(p *models.PlayerProgress) {
	for _, a := range achievements {
		if a.Earned(p) && !p.HasAchievement(a.ID) {
			p.Achievements = append(p.Achievements, a.ID)
		}
	}
}
