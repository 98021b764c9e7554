// Package chunk decomposes goals into ordered task chunks using the AI
// orchestrator, with strict JSON parsing and a single-model fallback.
package chunk

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kaizenapp/kaizen/pkg/models"
)

// Decomposition call parameters. A low temperature favors deterministic
// splits; the output cap bounds the cost of a runaway response.
const (
	decompositionMaxTokens   = 1000
	decompositionTemperature = 0.3
)

// MinChunkHours is the floor applied to every chunk's effort estimate.
const MinChunkHours = 0.5

// defaultChunkHours is used when the model omits an estimate.
const defaultChunkHours = 1

// TextGenerator is the orchestrator surface the decomposer depends on.
type TextGenerator interface {
	Generate(ctx context.Context, req models.GenerationRequest) (models.GenerationResult, error)
}

// decomposedChunk is the JSON structure returned by the model for one chunk.
type decomposedChunk struct {
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	EstimatedHours float64 `json:"estimatedHours"`
	Dependencies   []int   `json:"dependencies"`
}

// decomposedGoal is the JSON envelope returned by the model.
type decomposedGoal struct {
	Chunks              []decomposedChunk `json:"chunks"`
	TotalEstimatedHours float64           `json:"totalEstimatedHours"`
	Reasoning           string            `json:"reasoning"`
}

// Decomposer breaks goals into ordered chunks via the orchestrator.
type Decomposer struct {
	gen           TextGenerator
	primaryModel  models.Model
	fallbackModel models.Model
}

// New creates a Decomposer using the primary model first and the cheaper
// fallback when the primary's output cannot be parsed.
func New(gen TextGenerator) *Decomposer {
	return &Decomposer{
		gen:           gen,
		primaryModel:  models.ModelPrimary,
		fallbackModel: models.ModelBalanced,
	}
}

// Decompose turns a goal into a normalized chunk batch. Parse failures on
// the primary model trigger exactly one retry on the fallback model; a
// second failure returns an invalid-request failure. Orchestrator failures
// (rate limit, budget, provider) pass through unchanged.
func (d *Decomposer) Decompose(ctx context.Context, goal models.GoalRequest) (models.ChunkBatch, error) {
	if strings.TrimSpace(goal.Title) == "" {
		return models.ChunkBatch{}, models.NewFailure(models.FailureInvalidRequest, "goal title is required")
	}
	if strings.TrimSpace(goal.UserID) == "" {
		return models.ChunkBatch{}, models.NewFailure(models.FailureInvalidRequest, "user id is required")
	}

	batch, err := d.attempt(ctx, goal, d.primaryModel)
	if err == nil {
		return batch, nil
	}
	if _, isParse := err.(*parseError); !isParse {
		return models.ChunkBatch{}, err
	}

	// Bounded fallback: one retry on the cheaper model, then give up.
	batch, err = d.attempt(ctx, goal, d.fallbackModel)
	if err == nil {
		return batch, nil
	}
	if _, isParse := err.(*parseError); !isParse {
		return models.ChunkBatch{}, err
	}
	return models.ChunkBatch{}, models.NewFailure(
		models.FailureInvalidRequest, "could not parse decomposition output")
}

// parseError marks a structured-output parse failure, distinguishing it
// from orchestrator failures that must not trigger the fallback.
type parseError struct {
	err error
}

func (e *parseError) Error() string { return e.err.Error() }

func (e *parseError) Unwrap() error { return e.err }

// attempt runs one decomposition call against the given model.
func (d *Decomposer) attempt(ctx context.Context, goal models.GoalRequest, model models.Model) (models.ChunkBatch, error) {
	req := models.GenerationRequest{
		Prompt:      BuildPrompt(goal),
		Model:       model,
		MaxTokens:   decompositionMaxTokens,
		Temperature: decompositionTemperature,
		UserID:      goal.UserID,
	}

	result, err := d.gen.Generate(ctx, req)
	if err != nil {
		return models.ChunkBatch{}, err
	}

	parsed, err := ParseResponse(result.Content)
	if err != nil {
		return models.ChunkBatch{}, &parseError{err: err}
	}

	batch := normalize(parsed)
	batch.ID = uuid.New().String()
	batch.Model = model
	batch.Warnings = DependencyWarnings(batch.Chunks)
	return batch, nil
}

// ParseResponse parses the model's reply strictly as the decomposition JSON
// object. Surrounding prose is tolerated; the JSON itself is not repaired.
func ParseResponse(response string) (decomposedGoal, error) {
	jsonStart := strings.Index(response, "{")
	jsonEnd := strings.LastIndex(response, "}")
	if jsonStart == -1 || jsonEnd <= jsonStart {
		return decomposedGoal{}, fmt.Errorf("no JSON object found in response (%d chars)", len(response))
	}

	var parsed decomposedGoal
	if err := json.Unmarshal([]byte(response[jsonStart:jsonEnd+1]), &parsed); err != nil {
		return decomposedGoal{}, fmt.Errorf("unmarshal decomposition JSON: %w", err)
	}
	if len(parsed.Chunks) == 0 {
		return decomposedGoal{}, fmt.Errorf("empty chunk list returned")
	}
	return parsed, nil
}

// normalize applies the defaulting rules to a parsed payload: ordinal
// placeholder titles, empty descriptions, effort floored at MinChunkHours,
// order assigned by list position, dependencies defaulted to empty.
func normalize(parsed decomposedGoal) models.ChunkBatch {
	chunks := make([]models.Chunk, len(parsed.Chunks))
	for i, c := range parsed.Chunks {
		title := c.Title
		if title == "" {
			title = fmt.Sprintf("Task %d", i+1)
		}

		hours := c.EstimatedHours
		if hours == 0 {
			hours = defaultChunkHours
		}
		if hours < MinChunkHours {
			hours = MinChunkHours
		}

		deps := c.Dependencies
		if deps == nil {
			deps = []int{}
		}

		chunks[i] = models.Chunk{
			Title:          title,
			Description:    c.Description,
			EstimatedHours: hours,
			Order:          i,
			Dependencies:   deps,
		}
	}

	return models.ChunkBatch{
		Chunks:              chunks,
		TotalEstimatedHours: parsed.TotalEstimatedHours,
		Reasoning:           parsed.Reasoning,
	}
}
