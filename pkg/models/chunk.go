package models

// Chunk is one atomic sub-unit of work produced by decomposing a goal.
type Chunk struct {
	// Title is the short name of the chunk.
	Title string `json:"title"`
	// Description is the concrete work to perform.
	Description string `json:"description"`
	// EstimatedHours is the effort estimate, floored at 0.5.
	EstimatedHours float64 `json:"estimated_hours"`
	// Order is the 0-based position of the chunk in the batch.
	Order int `json:"order"`
	// Dependencies lists the order indices of chunks this one depends on.
	Dependencies []int `json:"dependencies"`
}

// ChunkBatch is the normalized result of one goal decomposition.
type ChunkBatch struct {
	// ID uniquely identifies this batch.
	ID string `json:"id"`
	// Chunks are the decomposed work items, in execution order.
	Chunks []Chunk `json:"chunks"`
	// TotalEstimatedHours is the model's estimate for the whole goal.
	TotalEstimatedHours float64 `json:"total_estimated_hours"`
	// Reasoning is the model's explanation of the split.
	Reasoning string `json:"reasoning"`
	// Model is the model that produced the accepted batch.
	Model Model `json:"model"`
	// Warnings lists dependency defects found during validation
	// (out-of-range or cyclic references). The batch is still returned.
	Warnings []string `json:"warnings,omitempty"`
}

// GoalRequest describes a goal to decompose into chunks.
type GoalRequest struct {
	// Title is the goal title. Required.
	Title string `json:"title"`
	// Description provides additional context for the goal.
	Description string `json:"description,omitempty"`
	// Deadline is a free-form deadline hint shown to the model.
	Deadline string `json:"deadline,omitempty"`
	// Priority is one of high, medium, low.
	Priority string `json:"priority,omitempty"`
	// UserID identifies the requesting user. Required.
	UserID string `json:"user_id"`
}
