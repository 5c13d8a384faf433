// Package security holds request admission controls for the API.
package security

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// FrameThrottle caps how fast each learner may submit camera frames.
// The inference pipeline already gates classification dispatches; this
// sits in front of it so a runaway client cannot flood the decode path
// either.
type FrameThrottle struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	learners map[string]*learnerBucket
}

type learnerBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewFrameThrottle allows up to perSecond frames per learner with the
// given burst.
func NewFrameThrottle(perSecond float64, burst int) *FrameThrottle {
	t := &FrameThrottle{
		limit:    rate.Limit(perSecond),
		burst:    burst,
		learners: make(map[string]*learnerBucket),
	}
	go t.evictIdle()
	return t
}

// Allow reports whether the learner may submit a frame now.
func (t *FrameThrottle) Allow(learnerID string) bool {
	t.mu.Lock()
	bucket, ok := t.learners[learnerID]
	if !ok {
		bucket = &learnerBucket{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.learners[learnerID] = bucket
	}
	bucket.lastSeen = time.Now()
	t.mu.Unlock()

	return bucket.limiter.Allow()
}

// evictIdle drops buckets for learners that have gone quiet so the map
// does not grow unbounded.
func (t *FrameThrottle) evictIdle() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-30 * time.Minute)
		t.mu.Lock()
		for learnerID, bucket := range t.learners {
			if bucket.lastSeen.Before(cutoff) {
				delete(t.learners, learnerID)
			}
		}
		t.mu.Unlock()
	}
}
