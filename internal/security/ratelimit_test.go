package security

import "testing"

func TestFrameThrottle(t *testing.T) {
	throttle := NewFrameThrottle(1, 2)

	if !throttle.Allow("kid-1") {
		t.Error("first frame should be allowed")
	}
	if !throttle.Allow("kid-1") {
		t.Error("second frame within burst should be allowed")
	}
	if throttle.Allow("kid-1") {
		t.Error("third frame should exceed the burst")
	}

	// Limits are per learner.
	if !throttle.Allow("kid-2") {
		t.Error("a different learner should have a fresh budget")
	}
}
