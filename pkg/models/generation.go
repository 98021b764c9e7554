// Package models defines the shared data types for the kaizen AI core.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Model identifies a text-generation model from the fixed supported set.
type Model string

const (
	// ModelPrimary is the high-capability model used for structured work.
	ModelPrimary Model = "claude-sonnet-4-20250514"
	// ModelBalanced is the mid-tier model used as the parse fallback.
	ModelBalanced Model = "claude-haiku-4-5-20251001"
	// ModelLight is the cheapest model, used for health checks and simple prompts.
	ModelLight Model = "claude-3-5-haiku-20241022"
)

// Valid returns true if the model is a known value.
func (m Model) Valid() bool {
	switch m {
	case ModelPrimary, ModelBalanced, ModelLight:
		return true
	default:
		return false
	}
}

// Complexity classifies how demanding a prompt is, for model selection.
type Complexity string

const (
	ComplexitySimple  Complexity = "simple"
	ComplexityMedium  Complexity = "medium"
	ComplexityComplex Complexity = "complex"
)

// SelectModel picks a model appropriate for the given prompt complexity.
func SelectModel(c Complexity) Model {
	switch c {
	case ComplexitySimple:
		return ModelLight
	case ComplexityComplex:
		return ModelPrimary
	default:
		return ModelBalanced
	}
}

// Plan identifies a user's subscription tier for token quota purposes.
type Plan string

const (
	// PlanFree is the default tier with the lower monthly token caps.
	PlanFree Plan = "free"
	// PlanPro is the elevated tier with the higher monthly token caps.
	PlanPro Plan = "pro"
)

// Valid returns true if the plan is a known value.
func (p Plan) Valid() bool {
	return p == PlanFree || p == PlanPro
}

// Generation request defaults.
const (
	DefaultMaxTokens   = 500
	DefaultTemperature = 0.7
)

// GenerationRequest describes a single text-generation call.
// Construct with NewGenerationRequest so defaults are applied; the request
// is treated as immutable afterwards.
type GenerationRequest struct {
	// Prompt is the text sent to the model. Required.
	Prompt string `json:"prompt"`
	// Model is the model identifier. Required, must be a known model.
	Model Model `json:"model"`
	// MaxTokens caps the generated output length.
	MaxTokens int `json:"max_tokens"`
	// Temperature controls sampling randomness, in [0, 2].
	Temperature float64 `json:"temperature"`
	// UserID identifies the requesting user for rate and quota accounting. Required.
	UserID string `json:"user_id"`
}

// NewGenerationRequest builds a request with defaults applied.
func NewGenerationRequest(prompt string, model Model, userID string) GenerationRequest {
	return GenerationRequest{
		Prompt:      prompt,
		Model:       model,
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		UserID:      userID,
	}
}

// Validate checks the request against the field constraints.
func (r GenerationRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return errors.New("prompt is required")
	}
	if !r.Model.Valid() {
		return fmt.Errorf("unknown model %q", r.Model)
	}
	if r.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", r.MaxTokens)
	}
	if r.Temperature < 0 || r.Temperature > 2 {
		return fmt.Errorf("temperature must be in [0, 2], got %g", r.Temperature)
	}
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("user id is required")
	}
	return nil
}

// Usage holds provider-reported token counts for one generation.
type Usage struct {
	// PromptTokens is the number of input tokens consumed.
	PromptTokens int64 `json:"prompt_tokens"`
	// CompletionTokens is the number of output tokens generated.
	CompletionTokens int64 `json:"completion_tokens"`
	// TotalTokens is the sum of prompt and completion tokens.
	TotalTokens int64 `json:"total_tokens"`
}

// GenerationResult is the outcome of a successful generation call.
// Results are produced once and never mutated.
type GenerationResult struct {
	// Content is the generated text.
	Content string `json:"content"`
	// Model is the model that produced the content.
	Model Model `json:"model"`
	// Usage holds the token counts reported by the provider.
	Usage Usage `json:"usage"`
	// Cached is true when the result was served from the response cache.
	Cached bool `json:"cached"`
	// ProcessingTime is the wall-clock duration of the call.
	ProcessingTime time.Duration `json:"processing_time"`
}

// ResponseTimeClass bands a processing time for display and metrics.
type ResponseTimeClass string

const (
	ResponseFast   ResponseTimeClass = "fast"
	ResponseNormal ResponseTimeClass = "normal"
	ResponseSlow   ResponseTimeClass = "slow"
)

// TimeClass classifies the result's processing time.
func (r GenerationResult) TimeClass() ResponseTimeClass {
	switch {
	case r.ProcessingTime < time.Second:
		return ResponseFast
	case r.ProcessingTime < 5*time.Second:
		return ResponseNormal
	default:
		return ResponseSlow
	}
}
