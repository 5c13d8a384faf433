package service

import (
	"fmt"
	"testing"

	"emotionquest/internal/config"
	"emotionquest/internal/models"
)

// fakeSource serves a fixed number of questions per emotion.
type fakeSource struct {
	counts map[models.Emotion]int
}

func (f *fakeSource) QuestionsFor(emotion models.Emotion) []models.GameQuestion {
	n := f.counts[emotion]
	questions := make([]models.GameQuestion, 0, n)
	for i := 0; i < n; i++ {
		handle := fmt.Sprintf("%s/photo_%02d.jpg", emotion, i)
		questions = append(questions, models.GameQuestion{
			ID:             handle,
			CorrectEmotion: emotion,
			ImageHandle:    handle,
		})
	}
	return questions
}

func TestGenerateQueueLength(t *testing.T) {
	policy := config.DefaultPolicy()
	source := &fakeSource{counts: map[models.Emotion]int{
		models.EmotionHappy:   5,
		models.EmotionSad:     5,
		models.EmotionNeutral: 5,
	}}
	service := NewCurriculumService(source, policy)

	queue := service.GenerateQueue(models.BaseEmotions)
	if len(queue) != policy.QueueLength {
		t.Fatalf("queue length = %d, want %d", len(queue), policy.QueueLength)
	}

	// No emotion contributes more than the candidate cap to the pool.
	perEmotion := make(map[models.Emotion]map[string]bool)
	for _, q := range queue {
		if perEmotion[q.CorrectEmotion] == nil {
			perEmotion[q.CorrectEmotion] = make(map[string]bool)
		}
		perEmotion[q.CorrectEmotion][q.ID] = true
	}
	for emotion, distinct := range perEmotion {
		if len(distinct) > policy.CandidatesPerEmotion {
			t.Errorf("emotion %s contributed %d distinct questions, cap is %d",
				emotion, len(distinct), policy.CandidatesPerEmotion)
		}
	}
}

func TestGenerateQueuePlaceholder(t *testing.T) {
	policy := config.DefaultPolicy()
	// Fear is unlocked but has no assets.
	source := &fakeSource{counts: map[models.Emotion]int{
		models.EmotionHappy:   3,
		models.EmotionSad:     3,
		models.EmotionNeutral: 3,
	}}
	service := NewCurriculumService(source, policy)

	unlocked := []models.Emotion{
		models.EmotionHappy, models.EmotionSad, models.EmotionNeutral, models.EmotionFear,
	}
	queue := service.GenerateQueue(unlocked)

	if len(queue) != policy.QueueLength {
		t.Fatalf("queue length = %d, want %d", len(queue), policy.QueueLength)
	}

	placeholders := 0
	for _, q := range queue {
		if q.CorrectEmotion == models.EmotionFear {
			if !q.IsPlaceholder() {
				t.Errorf("fear question %s should be a placeholder", q.ID)
			}
			placeholders++
		}
	}
	if placeholders == 0 {
		t.Error("queue should contain at least one fear placeholder")
	}
}

func TestGenerateQueuePadsSmallPool(t *testing.T) {
	policy := config.DefaultPolicy()
	source := &fakeSource{counts: map[models.Emotion]int{
		models.EmotionHappy: 2,
	}}
	service := NewCurriculumService(source, policy)

	queue := service.GenerateQueue([]models.Emotion{models.EmotionHappy})
	if len(queue) != policy.QueueLength {
		t.Fatalf("queue length = %d, want %d (padded)", len(queue), policy.QueueLength)
	}
}

// sharedSource hands out the same backing slice on every call, like a
// catalog serving its internal index directly.
type sharedSource struct {
	questions []models.GameQuestion
}

func (s *sharedSource) QuestionsFor(emotion models.Emotion) []models.GameQuestion {
	return s.questions
}

func TestGenerateQueueLeavesSourceSliceIntact(t *testing.T) {
	policy := config.DefaultPolicy()
	questions := make([]models.GameQuestion, 10)
	for i := range questions {
		questions[i] = models.GameQuestion{
			ID:             fmt.Sprintf("happy/photo_%02d.jpg", i),
			CorrectEmotion: models.EmotionHappy,
			ImageHandle:    fmt.Sprintf("happy/photo_%02d.jpg", i),
		}
	}
	source := &sharedSource{questions: questions}
	service := NewCurriculumService(source, policy)

	for i := 0; i < 20; i++ {
		service.GenerateQueue([]models.Emotion{models.EmotionHappy})
	}

	for i, q := range source.questions {
		if want := fmt.Sprintf("happy/photo_%02d.jpg", i); q.ID != want {
			t.Fatalf("source slice reordered at %d: got %s, want %s", i, q.ID, want)
		}
	}
}

func TestGenerateQueueNoEmotions(t *testing.T) {
	service := NewCurriculumService(&fakeSource{}, config.DefaultPolicy())
	if queue := service.GenerateQueue(nil); queue != nil {
		t.Errorf("queue for empty unlocked set = %v, want nil", queue)
	}
}

func TestQueueRegenerates(t *testing.T) {
	policy := config.DefaultPolicy()
	source := &fakeSource{counts: map[models.Emotion]int{
		models.EmotionHappy: 3,
		models.EmotionSad:   3,
	}}
	service := NewCurriculumService(source, policy)

	queue := service.NewQueue([]models.Emotion{models.EmotionHappy, models.EmotionSad})

	// Drain well past one generation; the queue must keep producing.
	for i := 0; i < policy.QueueLength*3; i++ {
		q, err := queue.Next()
		if err != nil {
			t.Fatalf("Next() on draw %d: %v", i, err)
		}
		if q.CorrectEmotion != models.EmotionHappy && q.CorrectEmotion != models.EmotionSad {
			t.Fatalf("draw %d produced unexpected emotion %s", i, q.CorrectEmotion)
		}
	}
}
