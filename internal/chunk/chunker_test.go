package chunk

import (
	"context"
	"strings"
	"testing"

	"github.com/kaizenapp/kaizen/pkg/models"
)

// scriptedGenerator returns canned responses in order, recording the model
// used for each call.
type scriptedGenerator struct {
	responses []string
	err       error
	models    []models.Model
}

func (s *scriptedGenerator) Generate(_ context.Context, req models.GenerationRequest) (models.GenerationResult, error) {
	s.models = append(s.models, req.Model)
	if s.err != nil {
		return models.GenerationResult{}, s.err
	}
	idx := len(s.models) - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return models.GenerationResult{
		Content: s.responses[idx],
		Model:   req.Model,
	}, nil
}

const validResponse = `{
	"chunks": [
		{"title": "Research", "description": "Gather requirements", "estimatedHours": 2, "dependencies": []},
		{"title": "Build", "description": "Implement the core", "estimatedHours": 6, "dependencies": [0]},
		{"title": "Ship", "description": "Deploy and announce", "estimatedHours": 1.5, "dependencies": [1]}
	],
	"totalEstimatedHours": 9.5,
	"reasoning": "Sequential build with a research spike first."
}`

func testGoal() models.GoalRequest {
	return models.GoalRequest{
		Title:    "Launch the newsletter",
		Priority: "high",
		UserID:   "user-1",
	}
}

func TestDecompose_Valid(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{validResponse}}
	d := New(gen)

	batch, err := d.Decompose(context.Background(), testGoal())
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}

	if len(batch.Chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(batch.Chunks))
	}
	if batch.ID == "" {
		t.Error("batch should carry an ID")
	}
	if batch.Model != models.ModelPrimary {
		t.Errorf("Model = %q, want the primary model", batch.Model)
	}
	if batch.TotalEstimatedHours != 9.5 {
		t.Errorf("TotalEstimatedHours = %g, want 9.5", batch.TotalEstimatedHours)
	}
	if len(batch.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", batch.Warnings)
	}

	for i, c := range batch.Chunks {
		if c.Order != i {
			t.Errorf("chunk %d Order = %d, want %d", i, c.Order, i)
		}
	}
	if batch.Chunks[1].Dependencies[0] != 0 {
		t.Errorf("chunk 1 deps = %v, want [0]", batch.Chunks[1].Dependencies)
	}
}

func TestDecompose_ToleratesSurroundingProse(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		"Here is the breakdown:\n" + validResponse + "\nGood luck!",
	}}
	d := New(gen)

	batch, err := d.Decompose(context.Background(), testGoal())
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}
	if len(batch.Chunks) != 3 {
		t.Errorf("chunks = %d, want 3", len(batch.Chunks))
	}
}

func TestDecompose_NormalizesSparseChunks(t *testing.T) {
	response := `{
		"chunks": [
			{},
			{"title": "Named", "estimatedHours": 0.1},
			{"description": "only a description"}
		]
	}`
	gen := &scriptedGenerator{responses: []string{response}}
	d := New(gen)

	batch, err := d.Decompose(context.Background(), testGoal())
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}

	first := batch.Chunks[0]
	if first.Title != "Task 1" {
		t.Errorf("missing title should default to ordinal, got %q", first.Title)
	}
	if first.Description != "" {
		t.Errorf("missing description should default to empty, got %q", first.Description)
	}
	if first.EstimatedHours != 1 {
		t.Errorf("missing hours should default to 1, got %g", first.EstimatedHours)
	}
	if first.Dependencies == nil || len(first.Dependencies) != 0 {
		t.Errorf("missing dependencies should default to empty, got %v", first.Dependencies)
	}

	if batch.Chunks[1].EstimatedHours != MinChunkHours {
		t.Errorf("0.1 hours should floor to %g, got %g", MinChunkHours, batch.Chunks[1].EstimatedHours)
	}
	if batch.Chunks[2].Title != "Task 3" {
		t.Errorf("chunk 3 title = %q, want Task 3", batch.Chunks[2].Title)
	}
}

func TestDecompose_FallbackOnParseFailure(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		"I could not produce JSON, sorry.",
		validResponse,
	}}
	d := New(gen)

	batch, err := d.Decompose(context.Background(), testGoal())
	if err != nil {
		t.Fatalf("Decompose failed: %v", err)
	}

	if len(gen.models) != 2 {
		t.Fatalf("generation calls = %d, want 2", len(gen.models))
	}
	if gen.models[0] != models.ModelPrimary {
		t.Errorf("first call model = %q, want primary", gen.models[0])
	}
	if gen.models[1] != models.ModelBalanced {
		t.Errorf("fallback call model = %q, want balanced", gen.models[1])
	}
	if batch.Model != models.ModelBalanced {
		t.Errorf("batch Model = %q, want the fallback model", batch.Model)
	}
}

func TestDecompose_FailsAfterFallbackParseFailure(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		"not json",
		"{broken json",
	}}
	d := New(gen)

	_, err := d.Decompose(context.Background(), testGoal())
	f, ok := models.AsFailure(err)
	if !ok || f.Kind != models.FailureInvalidRequest {
		t.Fatalf("err = %v, want invalid_request failure", err)
	}
	if len(gen.models) != 2 {
		t.Errorf("generation calls = %d, want exactly 2 (no endless retries)", len(gen.models))
	}
}

func TestDecompose_OrchestratorFailurePassesThrough(t *testing.T) {
	rateErr := models.NewFailure(models.FailureRateLimited, "slow down")
	gen := &scriptedGenerator{err: rateErr}
	d := New(gen)

	_, err := d.Decompose(context.Background(), testGoal())
	f, ok := models.AsFailure(err)
	if !ok || f.Kind != models.FailureRateLimited {
		t.Fatalf("err = %v, want the rate-limit failure passed through", err)
	}
	if len(gen.models) != 1 {
		t.Errorf("generation calls = %d, want 1 (no fallback on orchestrator failure)", len(gen.models))
	}
}

func TestDecompose_RejectsMissingFields(t *testing.T) {
	d := New(&scriptedGenerator{responses: []string{validResponse}})

	goal := testGoal()
	goal.Title = "  "
	if _, err := d.Decompose(context.Background(), goal); err == nil {
		t.Error("expected failure for a blank title")
	}

	goal = testGoal()
	goal.UserID = ""
	if _, err := d.Decompose(context.Background(), goal); err == nil {
		t.Error("expected failure for a missing user id")
	}
}

func TestParseResponse_EmptyChunkList(t *testing.T) {
	_, err := ParseResponse(`{"chunks": [], "reasoning": "nothing to do"}`)
	if err == nil || !strings.Contains(err.Error(), "empty chunk list") {
		t.Errorf("err = %v, want empty chunk list error", err)
	}
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	goal := testGoal()
	if BuildPrompt(goal) != BuildPrompt(goal) {
		t.Error("prompt must be deterministic for identical goals")
	}
}

func TestBuildPrompt_DefaultsOptionalFields(t *testing.T) {
	prompt := BuildPrompt(models.GoalRequest{Title: "Goal", UserID: "u"})
	if !strings.Contains(prompt, "Description: none") {
		t.Error("missing description should render as none")
	}
	if !strings.Contains(prompt, "Deadline: not set") {
		t.Error("missing deadline should render as not set")
	}
	if !strings.Contains(prompt, "Priority: medium") {
		t.Error("missing priority should default to medium")
	}
}
