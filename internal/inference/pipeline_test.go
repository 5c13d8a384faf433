package inference

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"emotionquest/internal/config"
	"emotionquest/internal/models"
)

func testFrame(withFace bool) Frame {
	frame := Frame{
		Image:      image.NewRGBA(image.Rect(0, 0, 64, 64)),
		CapturedAt: time.Now(),
	}
	if withFace {
		frame.Face = &BoundingBox{X: 0.25, Y: 0.25, W: 0.5, H: 0.5}
	}
	return frame
}

func testPolicy(interval time.Duration) config.Policy {
	policy := config.DefaultPolicy()
	policy.InferenceIntervalMillis = int(interval / time.Millisecond)
	return policy
}

// stubClassifier delegates each call, numbered from zero, to fn.
type stubClassifier struct {
	mu sync.Mutex
	n  int
	fn func(ctx context.Context, call int) (models.Emotion, float64, error)
}

func (c *stubClassifier) Classify(ctx context.Context, imageJPEG []byte) (models.Emotion, float64, error) {
	c.mu.Lock()
	call := c.n
	c.n++
	c.mu.Unlock()
	return c.fn(ctx, call)
}

func (c *stubClassifier) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// waitFor polls until the condition holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestNoFacePublishesNeutral(t *testing.T) {
	classifier := &stubClassifier{fn: func(ctx context.Context, call int) (models.Emotion, float64, error) {
		t.Error("classifier must not be called without a face")
		return models.EmotionNeutral, 1, nil
	}}
	p := NewPipeline(ClientLocalizer{}, classifier, testPolicy(time.Millisecond), nil)
	if err := p.Start(nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop()

	if err := p.HandleFrame(testFrame(false)); err != nil {
		t.Fatalf("HandleFrame: %v", err)
	}

	obs := p.Current()
	if obs.Label != models.EmotionNeutral || obs.Confidence != 1.0 {
		t.Errorf("no-face observation = (%s, %v), want (neutral, 1.0)", obs.Label, obs.Confidence)
	}
	if obs.FacePresent {
		t.Error("no-face observation should report no face")
	}
	if classifier.calls() != 0 {
		t.Errorf("classifier called %d times, want 0", classifier.calls())
	}
}

func TestIntervalGateBoundsDispatches(t *testing.T) {
	classifier := &stubClassifier{fn: func(ctx context.Context, call int) (models.Emotion, float64, error) {
		return models.EmotionHappy, 0.9, nil
	}}
	// Interval far longer than the test: only the first frame dispatches.
	p := NewPipeline(ClientLocalizer{}, classifier, testPolicy(time.Hour), nil)
	if err := p.Start(nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop()

	for i := 0; i < 10; i++ {
		if err := p.HandleFrame(testFrame(true)); err != nil {
			t.Fatalf("HandleFrame %d: %v", i, err)
		}
	}

	waitFor(t, "first classification", func() bool {
		return p.Current().Label == models.EmotionHappy
	})
	if classifier.calls() != 1 {
		t.Errorf("classifier called %d times for 10 frames, want 1", classifier.calls())
	}
}

func TestClassifierFailurePublishesNeutral(t *testing.T) {
	classifier := &stubClassifier{fn: func(ctx context.Context, call int) (models.Emotion, float64, error) {
		if call == 0 {
			return "", 0, errors.New("connection timed out")
		}
		return models.EmotionSurprised, 0.85, nil
	}}
	p := NewPipeline(ClientLocalizer{}, classifier, testPolicy(time.Millisecond), nil)
	if err := p.Start(nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop()

	// Failed call degrades to the neutral fallback.
	if err := p.HandleFrame(testFrame(true)); err != nil {
		t.Fatalf("HandleFrame: %v", err)
	}
	waitFor(t, "neutral fallback", func() bool {
		obs := p.Current()
		return obs.Label == models.EmotionNeutral && obs.FacePresent
	})

	// A later successful call overwrites it.
	time.Sleep(2 * time.Millisecond)
	if err := p.HandleFrame(testFrame(true)); err != nil {
		t.Fatalf("HandleFrame: %v", err)
	}
	waitFor(t, "successful classification", func() bool {
		return p.Current().Label == models.EmotionSurprised
	})
}

func TestStaleCompletionDiscarded(t *testing.T) {
	release := make(chan struct{})
	classifier := &stubClassifier{fn: func(ctx context.Context, call int) (models.Emotion, float64, error) {
		if call == 0 {
			// First dispatch stalls until released.
			<-release
			return models.EmotionSad, 0.95, nil
		}
		return models.EmotionHappy, 0.9, nil
	}}
	p := NewPipeline(ClientLocalizer{}, classifier, testPolicy(time.Millisecond), nil)
	if err := p.Start(nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop()

	if err := p.HandleFrame(testFrame(true)); err != nil {
		t.Fatalf("HandleFrame: %v", err)
	}
	waitFor(t, "first dispatch", func() bool { return classifier.calls() == 1 })

	time.Sleep(2 * time.Millisecond)
	if err := p.HandleFrame(testFrame(true)); err != nil {
		t.Fatalf("HandleFrame: %v", err)
	}
	waitFor(t, "second completion", func() bool {
		return p.Current().Label == models.EmotionHappy
	})

	// The first dispatch now completes out of order; its result is stale
	// and must not replace the newer one.
	close(release)
	time.Sleep(50 * time.Millisecond)
	if got := p.Current().Label; got != models.EmotionHappy {
		t.Errorf("stale completion replaced current state: got %s, want happy", got)
	}
}

func TestStopSuppressesInFlightResult(t *testing.T) {
	release := make(chan struct{})
	classifier := &stubClassifier{fn: func(ctx context.Context, call int) (models.Emotion, float64, error) {
		<-release
		return models.EmotionAngry, 0.99, nil
	}}
	p := NewPipeline(ClientLocalizer{}, classifier, testPolicy(time.Millisecond), nil)
	if err := p.Start(nil); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := p.HandleFrame(testFrame(true)); err != nil {
		t.Fatalf("HandleFrame: %v", err)
	}
	waitFor(t, "dispatch", func() bool { return classifier.calls() == 1 })

	before := p.Current()
	go func() {
		time.Sleep(10 * time.Millisecond)
		close(release)
	}()
	p.Stop()

	if got := p.Current(); got != before {
		t.Errorf("in-flight result was published after Stop: %+v", got)
	}
	if err := p.HandleFrame(testFrame(true)); !errors.Is(err, ErrNotRunning) {
		t.Errorf("HandleFrame after Stop = %v, want ErrNotRunning", err)
	}
}

func TestSlowClassificationCompletesAfterHandleFrameReturns(t *testing.T) {
	// The classifier honors cancellation, as a real network client does.
	classifier := &stubClassifier{fn: func(ctx context.Context, call int) (models.Emotion, float64, error) {
		select {
		case <-ctx.Done():
			return "", 0, ctx.Err()
		case <-time.After(50 * time.Millisecond):
			return models.EmotionHappy, 0.9, nil
		}
	}}
	p := NewPipeline(ClientLocalizer{}, classifier, testPolicy(time.Millisecond), nil)
	if err := p.Start(nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop()

	// HandleFrame returns before classification finishes; the dispatch
	// must keep running on the pipeline's lifecycle, not the caller's.
	if err := p.HandleFrame(testFrame(true)); err != nil {
		t.Fatalf("HandleFrame: %v", err)
	}

	waitFor(t, "slow classification", func() bool {
		return p.Current().Label == models.EmotionHappy
	})
	obs := p.Current()
	if obs.Confidence != 0.9 || !obs.FacePresent {
		t.Errorf("observation = %+v, want (happy, 0.9) with face", obs)
	}
}

func TestStopCancelsInFlightClassification(t *testing.T) {
	sawCancel := make(chan struct{})
	classifier := &stubClassifier{fn: func(ctx context.Context, call int) (models.Emotion, float64, error) {
		<-ctx.Done()
		close(sawCancel)
		return "", 0, ctx.Err()
	}}
	p := NewPipeline(ClientLocalizer{}, classifier, testPolicy(time.Millisecond), nil)
	if err := p.Start(nil); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := p.HandleFrame(testFrame(true)); err != nil {
		t.Fatalf("HandleFrame: %v", err)
	}
	waitFor(t, "dispatch", func() bool { return classifier.calls() == 1 })

	p.Stop()
	select {
	case <-sawCancel:
	default:
		t.Error("Stop returned without cancelling the in-flight classification")
	}
}

func TestFrameChannelSource(t *testing.T) {
	classifier := &stubClassifier{fn: func(ctx context.Context, call int) (models.Emotion, float64, error) {
		return models.EmotionHappy, 0.9, nil
	}}

	var mu sync.Mutex
	var notified []models.EmotionObservation
	p := NewPipeline(ClientLocalizer{}, classifier, testPolicy(time.Millisecond), func(obs models.EmotionObservation) {
		mu.Lock()
		notified = append(notified, obs)
		mu.Unlock()
	})

	frames := make(chan Frame)
	if err := p.Start(frames); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop()

	frames <- testFrame(true)
	waitFor(t, "classification via channel", func() bool {
		return p.Current().Label == models.EmotionHappy
	})
	close(frames)

	mu.Lock()
	defer mu.Unlock()
	if len(notified) == 0 {
		t.Error("result callback was never invoked")
	}
}

func TestStartTwice(t *testing.T) {
	p := NewPipeline(ClientLocalizer{}, &stubClassifier{fn: func(ctx context.Context, call int) (models.Emotion, float64, error) {
		return models.EmotionNeutral, 1, nil
	}}, testPolicy(time.Millisecond), nil)

	if err := p.Start(nil); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Stop()

	if err := p.Start(nil); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start = %v, want ErrAlreadyRunning", err)
	}
}

func TestPixelRect(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 80)

	tests := []struct {
		name string
		box  BoundingBox
		want image.Rectangle
	}{
		{
			name: "centered box",
			box:  BoundingBox{X: 0.25, Y: 0.25, W: 0.5, H: 0.5},
			want: image.Rect(25, 20, 75, 60),
		},
		{
			name: "fractional box expands outward",
			box:  BoundingBox{X: 0.333, Y: 0.333, W: 0.333, H: 0.333},
			want: image.Rect(33, 26, 67, 54),
		},
		{
			name: "full frame",
			box:  BoundingBox{X: 0, Y: 0, W: 1, H: 1},
			want: bounds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.box.PixelRect(bounds); got != tt.want {
				t.Errorf("PixelRect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClientLocalizer(t *testing.T) {
	localizer := ClientLocalizer{}

	if _, found := localizer.Locate(testFrame(false)); found {
		t.Error("frame without a client box should report no face")
	}
	if _, found := localizer.Locate(testFrame(true)); !found {
		t.Error("frame with a valid client box should report a face")
	}

	bad := testFrame(true)
	bad.Face = &BoundingBox{X: 0.8, Y: 0.8, W: 0.5, H: 0.5} // extends past the frame
	if _, found := localizer.Locate(bad); found {
		t.Error("out-of-bounds box should be rejected")
	}
}
