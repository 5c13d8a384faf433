package service

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"emotionquest/internal/config"
	"emotionquest/internal/models"
)

// ErrNoMimicryRound is returned when a round is finished or fed before
// one has been started.
var ErrNoMimicryRound = errors.New("no mimicry round in progress")

// MimicryScorer accumulates emotion observations for one expression
// mimicry round and scores how often the learner matched the target.
// One scorer per learner device session; safe for concurrent use so the
// pipeline callback and the round lifecycle can run on different
// goroutines.
type MimicryScorer struct {
	policy config.Policy

	mu      sync.Mutex
	active  bool
	target  models.Emotion
	started time.Time
	total   int
	matched int
}

func NewMimicryScorer(policy config.Policy) *MimicryScorer {
	return &MimicryScorer{policy: policy}
}

// Begin starts a round for a target emotion, discarding any round in
// progress.
func (s *MimicryScorer) Begin(target models.Emotion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = true
	s.target = target
	s.started = time.Now()
	s.total = 0
	s.matched = 0
}

// Observe feeds one pipeline observation into the running round.
// Observations without a face are not counted; the learner may simply
// have moved off camera. A match requires the target label at or above
// the match confidence floor.
func (s *MimicryScorer) Observe(obs models.EmotionObservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active || !obs.FacePresent {
		return
	}
	s.total++
	if obs.Label == s.target && obs.Confidence >= s.policy.MimicryMatchConfidence {
		s.matched++
	}
}

// Finish closes the round and returns its history record. A round with
// no counted observations scores zero.
func (s *MimicryScorer) Finish() (models.MimicryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return models.MimicryRecord{}, ErrNoMimicryRound
	}
	s.active = false

	ratio := 0.0
	if s.total > 0 {
		ratio = float64(s.matched) / float64(s.total)
	}
	return models.MimicryRecord{
		ID:            uuid.NewString(),
		CompletedAt:   time.Now(),
		TargetEmotion: s.target,
		MatchRatio:    ratio,
		Observations:  s.total,
	}, nil
}
