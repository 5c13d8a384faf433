// Package inference turns a live camera frame stream into a low-rate,
// confidence-scored emotion signal. Face localization runs on every
// frame; classification is rate-limited and dispatched off the frame
// path so capture never blocks on the network.
package inference

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"emotionquest/internal/config"
	"emotionquest/internal/models"
)

// ErrNotRunning is returned when a frame is handed to a stopped pipeline.
var ErrNotRunning = errors.New("pipeline not running")

// ErrAlreadyRunning is returned when Start is called twice.
var ErrAlreadyRunning = errors.New("pipeline already running")

// Frame is one captured camera frame with its metadata.
type Frame struct {
	Image       image.Image
	Orientation int // clockwise degrees the frame is rotated
	CapturedAt  time.Time

	// Face is the client-side detector's normalized bounding box, when
	// the capture device ran detection itself. Nil means not provided.
	Face *BoundingBox
}

// Classifier is the external classification primitive: given a face
// crop, return an emotion label and a confidence in [0,1]. Asynchronous
// and network-bound; may fail with a transport error.
type Classifier interface {
	Classify(ctx context.Context, imageJPEG []byte) (models.Emotion, float64, error)
}

// FaceLocalizer finds a face in a frame. Must be synchronous and cheap
// enough to run on every frame.
type FaceLocalizer interface {
	Locate(frame Frame) (BoundingBox, bool)
}

// Pipeline consumes frames and publishes the latest classified emotion.
// The published observation is single-writer (the pipeline) and
// multi-reader; readers treat it as a snapshot. One pipeline per active
// camera session.
type Pipeline struct {
	localizer  FaceLocalizer
	classifier Classifier
	limiter    *rate.Limiter
	onResult   func(models.EmotionObservation)

	mu              sync.Mutex
	running         bool
	ctx             context.Context
	cancel          context.CancelFunc
	current         models.EmotionObservation
	currentDispatch time.Time
	inflight        sync.WaitGroup
}

// NewPipeline creates a pipeline. onResult, if non-nil, is invoked after
// every published observation; it must not block.
func NewPipeline(localizer FaceLocalizer, classifier Classifier, policy config.Policy, onResult func(models.EmotionObservation)) *Pipeline {
	return &Pipeline{
		localizer:  localizer,
		classifier: classifier,
		limiter:    rate.NewLimiter(rate.Every(policy.InferenceInterval()), 1),
		onResult:   onResult,
		current:    models.NeutralObservation(time.Now(), false),
	}
}

// Start attaches the pipeline to a frame source and consumes it until
// the channel closes or Stop is called. frames may be nil when the
// caller delivers frames directly via HandleFrame.
func (p *Pipeline) Start(frames <-chan Frame) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.running = true
	p.ctx = ctx
	p.cancel = cancel
	p.mu.Unlock()

	if frames != nil {
		go p.consume(ctx, frames)
	}
	return nil
}

// Stop detaches the pipeline. It takes effect immediately for future
// frames; an in-flight classification may still complete but its result
// is not published.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	cancel := p.cancel
	p.ctx = nil
	p.cancel = nil
	p.mu.Unlock()

	cancel()
	p.inflight.Wait()
}

// Current returns the latest published observation.
func (p *Pipeline) Current() models.EmotionObservation {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *Pipeline) consume(ctx context.Context, frames <-chan Frame) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			if err := p.HandleFrame(frame); err != nil && !errors.Is(err, ErrNotRunning) {
				log.Printf("frame processing failed: %v", err)
			}
		}
	}
}

// HandleFrame processes one frame: localize synchronously, and when the
// inference interval has elapsed, crop the face and dispatch
// classification asynchronously. A faced frame inside the interval is a
// no-op beyond localization. The dispatched classification runs on the
// pipeline's own lifecycle context, so it outlives the caller and is
// only interrupted by Stop.
func (p *Pipeline) HandleFrame(frame Frame) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return ErrNotRunning
	}
	ctx := p.ctx
	p.mu.Unlock()

	now := time.Now()

	box, found := p.localizer.Locate(frame)
	if !found {
		// Local fast path: no face means the neutral fallback, no
		// network call.
		p.publish(models.NeutralObservation(now, false), now)
		return nil
	}

	if !p.limiter.Allow() {
		return nil
	}

	crop, err := cropFace(frame.Image, box)
	if err != nil {
		return err
	}

	p.inflight.Add(1)
	go p.classify(ctx, crop, now)
	return nil
}

// classify runs off the frame path; it may suspend on network I/O.
func (p *Pipeline) classify(ctx context.Context, imageJPEG []byte, dispatchedAt time.Time) {
	defer p.inflight.Done()

	label, confidence, err := p.classifier.Classify(ctx, imageJPEG)
	if err != nil {
		// Degrade to neutral rather than freezing the displayed label.
		log.Printf("classification failed, publishing neutral: %v", err)
		p.publish(models.NeutralObservation(time.Now(), true), dispatchedAt)
		return
	}

	p.publish(models.EmotionObservation{
		Label:       label,
		Confidence:  confidence,
		Timestamp:   time.Now(),
		FacePresent: true,
	}, dispatchedAt)
}

// publish installs an observation as current state unless the pipeline
// has stopped or a result from a newer dispatch already landed
// (last-completed-writer-wins, stale completions discarded).
func (p *Pipeline) publish(obs models.EmotionObservation, dispatchedAt time.Time) {
	p.mu.Lock()
	if !p.running || dispatchedAt.Before(p.currentDispatch) {
		p.mu.Unlock()
		return
	}
	p.current = obs
	p.currentDispatch = dispatchedAt
	callback := p.onResult
	p.mu.Unlock()

	if callback != nil {
		callback(obs)
	}
}

// cropFace maps the normalized bounding box into pixel space, expands it
// to an integral rectangle, and JPEG-encodes the face region.
func cropFace(img image.Image, box BoundingBox) ([]byte, error) {
	if img == nil {
		return nil, errors.New("frame has no image data")
	}

	rect := box.PixelRect(img.Bounds())
	if rect.Empty() {
		return nil, errors.New("face bounding box is empty")
	}

	cropped := img
	if sub, ok := img.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		cropped = sub.SubImage(rect)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, cropped, &jpeg.Options{Quality: 85}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
