package handlers

import (
	"log"
	"sync"

	"emotionquest/internal/config"
	"emotionquest/internal/inference"
	"emotionquest/internal/models"
	"emotionquest/internal/service"
)

// deviceSession is the per-learner live state: one inference pipeline,
// the monitoring aggregate it feeds, a mimicry scorer, and at most one
// active game round.
type deviceSession struct {
	pipeline *inference.Pipeline
	monitor  *service.MonitoringService
	mimicry  *service.MimicryScorer

	mu       sync.Mutex
	recorder *service.Recorder
}

func (d *deviceSession) setRecorder(r *service.Recorder) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recorder = r
}

func (d *deviceSession) activeRecorder() *service.Recorder {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.recorder
}

// Registry tracks one device session per connected learner. Sessions
// are created lazily on first use and torn down when a learner
// disconnects.
type Registry struct {
	policy     config.Policy
	classifier inference.Classifier

	mu       sync.Mutex
	sessions map[string]*deviceSession
}

func NewRegistry(policy config.Policy, classifier inference.Classifier) *Registry {
	return &Registry{
		policy:     policy,
		classifier: classifier,
		sessions:   make(map[string]*deviceSession),
	}
}

// Session returns the learner's device session, creating and starting
// it on first use.
func (reg *Registry) Session(learnerID string) *deviceSession {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if existing, ok := reg.sessions[learnerID]; ok {
		return existing
	}

	d := &deviceSession{
		monitor: service.NewMonitoringService(reg.policy),
		mimicry: service.NewMimicryScorer(reg.policy),
	}
	// Faceless fallback readings say nothing about the learner's
	// affect, so only faced observations reach the aggregates.
	d.pipeline = inference.NewPipeline(inference.ClientLocalizer{}, reg.classifier, reg.policy, func(obs models.EmotionObservation) {
		if !obs.FacePresent {
			return
		}
		d.monitor.RecordEmotion(obs.Label, obs.Confidence)
		d.mimicry.Observe(obs)
	})
	if err := d.pipeline.Start(nil); err != nil {
		log.Printf("starting pipeline for learner %s: %v", learnerID, err)
	}

	reg.sessions[learnerID] = d
	return d
}

// Close stops and forgets the learner's device session, if any.
func (reg *Registry) Close(learnerID string) {
	reg.mu.Lock()
	d, ok := reg.sessions[learnerID]
	delete(reg.sessions, learnerID)
	reg.mu.Unlock()

	if ok {
		d.pipeline.Stop()
	}
}
