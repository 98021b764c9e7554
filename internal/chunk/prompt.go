package chunk

import (
	"fmt"

	"github.com/kaizenapp/kaizen/pkg/models"
)

// decompositionPrompt is the prompt template for goal decomposition.
// The model must answer with a single JSON object in the documented shape.
const decompositionPrompt = `You are an experienced project manager. Break the following goal into concrete tasks that can be executed efficiently.

## Goal
- Title: %s
- Description: %s
- Deadline: %s
- Priority: %s

## Requirements
1. Split the goal into 5-10 concrete tasks
2. Each task should be completable in 1-8 hours
3. Make dependencies between tasks explicit
4. Consider execution order

## Output format (JSON)
{
  "chunks": [
    {
      "title": "Task title",
      "description": "Concrete work to perform",
      "estimatedHours": 2,
      "dependencies": [0, 1]
    }
  ],
  "totalEstimatedHours": 10,
  "reasoning": "Why the goal was split this way and the execution strategy"
}

Dependencies reference other chunks by their 0-based position in the list.
Output ONLY the JSON object, no other text.`

// BuildPrompt renders the deterministic decomposition prompt for a goal.
func BuildPrompt(goal models.GoalRequest) string {
	description := goal.Description
	if description == "" {
		description = "none"
	}
	deadline := goal.Deadline
	if deadline == "" {
		deadline = "not set"
	}
	priority := goal.Priority
	if priority == "" {
		priority = "medium"
	}
	return fmt.Sprintf(decompositionPrompt, goal.Title, description, deadline, priority)
}
