package classify

import (
	"errors"
	"testing"
)

func TestClassificationSchema(t *testing.T) {
	schema := classificationSchema

	if got := schema["additionalProperties"]; got != false {
		t.Errorf("additionalProperties = %v, want false", got)
	}

	required, ok := schema["required"].([]string)
	if !ok {
		t.Fatalf("required is %T, want []string", schema["required"])
	}
	found := map[string]bool{}
	for _, name := range required {
		found[name] = true
	}
	if !found["label"] || !found["confidence"] {
		t.Errorf("required = %v, want label and confidence", required)
	}

	properties, ok := schema["properties"].(map[string]interface{})
	if !ok {
		t.Fatalf("properties is %T, want map", schema["properties"])
	}
	label, ok := properties["label"].(map[string]interface{})
	if !ok {
		t.Fatalf("label property is %T, want map", properties["label"])
	}
	enum, ok := label["enum"].([]interface{})
	if !ok {
		t.Fatalf("label enum is %T, want list", label["enum"])
	}
	if len(enum) != 6 {
		t.Errorf("label enum has %d values, want 6", len(enum))
	}
}

func TestTransientErrorDetection(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		rateLimit bool
		server    bool
	}{
		{"nil", nil, false, false},
		{"429 status", errors.New("POST 429 Too Many Requests"), true, false},
		{"rate limit text", errors.New("rate limit exceeded"), true, false},
		{"500 status", errors.New("500 Internal Server Error"), false, true},
		{"server_error code", errors.New(`{"error": {"type": "server_error"}}`), false, true},
		{"bad request", errors.New("400 invalid image"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRateLimitError(tt.err); got != tt.rateLimit {
				t.Errorf("isRateLimitError = %v, want %v", got, tt.rateLimit)
			}
			if got := isServerError(tt.err); got != tt.server {
				t.Errorf("isServerError = %v, want %v", got, tt.server)
			}
		})
	}
}
