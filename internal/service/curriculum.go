package service

import (
	"fmt"
	"log"
	"math/rand"
	"sync"

	"emotionquest/internal/config"
	"emotionquest/internal/models"
)

// QuestionSource supplies candidate questions for an emotion. May return
// an empty list when no assets exist for that emotion. The returned
// slice stays owned by the source; callers must not modify it.
type QuestionSource interface {
	QuestionsFor(emotion models.Emotion) []models.GameQuestion
}

// CurriculumService builds shuffled question queues from the emotions a
// learner has unlocked.
type CurriculumService struct {
	source QuestionSource
	policy config.Policy
}

// NewCurriculumService creates a new curriculum service
func NewCurriculumService(source QuestionSource, policy config.Policy) *CurriculumService {
	return &CurriculumService{source: source, policy: policy}
}

// GenerateQueue builds a question queue of the configured length from
// the unlocked emotions. Each emotion contributes up to
// CandidatesPerEmotion questions; an emotion with no available assets
// contributes a single placeholder so the learner is never blocked. The
// pool is shuffled and then truncated or padded to the target length.
func (s *CurriculumService) GenerateQueue(unlocked []models.Emotion) []models.GameQuestion {
	var pool []models.GameQuestion

	for _, emotion := range unlocked {
		// Shuffle a copy; the source keeps ownership of its slice.
		candidates := append([]models.GameQuestion(nil), s.source.QuestionsFor(emotion)...)
		if len(candidates) == 0 {
			log.Printf("no questions available for emotion %s, using placeholder", emotion)
			pool = append(pool, placeholderQuestion(emotion))
			continue
		}
		if len(candidates) > s.policy.CandidatesPerEmotion {
			rand.Shuffle(len(candidates), func(i, j int) {
				candidates[i], candidates[j] = candidates[j], candidates[i]
			})
			candidates = candidates[:s.policy.CandidatesPerEmotion]
		}
		pool = append(pool, candidates...)
	}

	if len(pool) == 0 {
		return nil
	}

	rand.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	queue := make([]models.GameQuestion, 0, s.policy.QueueLength)
	for i := 0; len(queue) < s.policy.QueueLength; i++ {
		queue = append(queue, pool[i%len(pool)])
	}
	return queue
}

// QuestionQueue hands out questions one at a time and regenerates itself
// when it runs dry, so a round can always continue.
type QuestionQueue struct {
	service  *CurriculumService
	unlocked []models.Emotion

	mu      sync.Mutex
	pending []models.GameQuestion
}

// NewQueue creates a self-refilling queue for the given unlocked set.
func (s *CurriculumService) NewQueue(unlocked []models.Emotion) *QuestionQueue {
	return &QuestionQueue{
		service:  s,
		unlocked: unlocked,
		pending:  s.GenerateQueue(unlocked),
	}
}

// Next returns the next question, regenerating the queue if it emptied.
func (q *QuestionQueue) Next() (models.GameQuestion, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		q.pending = q.service.GenerateQueue(q.unlocked)
	}
	if len(q.pending) == 0 {
		return models.GameQuestion{}, fmt.Errorf("no unlocked emotions to generate questions from")
	}

	question := q.pending[0]
	q.pending = q.pending[1:]
	return question, nil
}

func placeholderQuestion(emotion models.Emotion) models.GameQuestion {
	return models.GameQuestion{
		ID:             "placeholder-" + string(emotion),
		CorrectEmotion: emotion,
	}
}
