// Package classify implements emotion classification of face crops
// against the OpenAI Responses API with a strict JSON schema output.
package classify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"emotionquest/internal/config"
	"emotionquest/internal/models"
)

const classifierInstructions = `You are an emotion classifier for a children's learning game.
Look at the face in the image and classify the expressed emotion as exactly one of:
happy, sad, neutral, surprised, angry, fear.
Report a confidence between 0 and 1 for your classification.
If the expression is ambiguous, prefer neutral with a lower confidence.`

// classification is the schema the model must fill in.
type classification struct {
	Label      string  `json:"label" jsonschema:"enum=happy,enum=sad,enum=neutral,enum=surprised,enum=angry,enum=fear"`
	Confidence float64 `json:"confidence" jsonschema:"minimum=0,maximum=1"`
}

var classificationSchema = generateSchema[classification]()

// OpenAIClassifier classifies JPEG face crops via the Responses API.
type OpenAIClassifier struct {
	client *openai.Client
	model  string
}

// NewOpenAIClassifier builds a classifier from the service configuration.
func NewOpenAIClassifier(cfg *config.Config) *OpenAIClassifier {
	client := openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey))
	return &OpenAIClassifier{
		client: &client,
		model:  cfg.OpenAIModel,
	}
}

// Classify sends one face crop and returns the model's label and
// confidence. Callers treat any error as a transient failure and fall
// back to neutral.
func (c *OpenAIClassifier) Classify(ctx context.Context, imageJPEG []byte) (models.Emotion, float64, error) {
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(imageJPEG)

	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:        "EmotionClassification",
			Schema:      classificationSchema,
			Strict:      openai.Bool(true),
			Description: openai.String("Emotion label and confidence JSON"),
			Type:        "json_schema",
		},
	}

	params := responses.ResponseNewParams{
		Model:           c.model,
		MaxOutputTokens: openai.Int(100),
		Instructions:    openai.String(classifierInstructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				{
					OfMessage: &responses.EasyInputMessageParam{
						Role: responses.EasyInputMessageRoleUser,
						Content: responses.EasyInputMessageContentUnionParam{
							OfInputItemContentList: responses.ResponseInputMessageContentListParam{
								{
									OfInputText: &responses.ResponseInputTextParam{
										Text: "Classify the emotion on this face.",
									},
								},
								{
									OfInputImage: &responses.ResponseInputImageParam{
										Detail:   responses.ResponseInputImageDetailLow,
										ImageURL: openai.String(dataURL),
									},
								},
							},
						},
					},
				},
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: format,
		},
	}

	resp, err := c.callWithRetry(ctx, params)
	if err != nil {
		return "", 0, err
	}

	var out classification
	if err := json.Unmarshal([]byte(resp.OutputText()), &out); err != nil {
		return "", 0, fmt.Errorf("unmarshal classification: %w", err)
	}

	label, ok := models.ParseEmotion(out.Label)
	if !ok {
		return "", 0, fmt.Errorf("unknown emotion label %q", out.Label)
	}
	if out.Confidence < 0 || out.Confidence > 1 {
		return "", 0, fmt.Errorf("confidence %v out of range", out.Confidence)
	}
	return label, out.Confidence, nil
}

// callWithRetry retries transient API failures. The budget is short:
// results feed a live display, and a stale retry is worth less than the
// neutral fallback the caller degrades to.
func (c *OpenAIClassifier) callWithRetry(ctx context.Context, params responses.ResponseNewParams) (*responses.Response, error) {
	const maxAttempts = 2

	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := c.client.Responses.New(ctx, params)
		if err == nil {
			return resp, nil
		}
		if attempt == maxAttempts-1 || !(isRateLimitError(err) || isServerError(err)) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
	return nil, fmt.Errorf("failed after %d attempts", maxAttempts)
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

func isServerError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "server_error")
}

func generateSchema[T any]() map[string]interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)
	b, err := schema.MarshalJSON()
	if err != nil {
		panic(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}
	ensureStrictSchema(m)
	return m
}

// ensureStrictSchema marks every object closed and all properties
// required, which strict structured output demands.
func ensureStrictSchema(schema map[string]interface{}) {
	if schemaType, ok := schema["type"].(string); ok && schemaType == "object" {
		schema["additionalProperties"] = false
		if properties, ok := schema["properties"].(map[string]interface{}); ok {
			var required []string
			for name := range properties {
				required = append(required, name)
			}
			if len(required) > 0 {
				schema["required"] = required
			}
		}
	}
	if properties, ok := schema["properties"].(map[string]interface{}); ok {
		for _, prop := range properties {
			if propMap, ok := prop.(map[string]interface{}); ok {
				ensureStrictSchema(propMap)
			}
		}
	}
	if items, ok := schema["items"].(map[string]interface{}); ok {
		ensureStrictSchema(items)
	}
}
