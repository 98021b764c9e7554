package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kaizenapp/kaizen/internal/chunk"
	"github.com/kaizenapp/kaizen/internal/config"
	"github.com/kaizenapp/kaizen/pkg/models"
)

var (
	decomposeDescription string
	decomposeDeadline    string
	decomposePriority    string
	decomposeUser        string
	decomposePlan        string
)

var decomposeCmd = &cobra.Command{
	Use:   "decompose <goal>",
	Short: "Decompose a goal into ordered work chunks",
	Long: `Decompose a goal into 1-8 hour work chunks with dependencies.

The goal is sent to the strongest model; if its response cannot be
parsed, one retry on the balanced model is made before giving up.
Dependency problems (out-of-range or cyclic references) are reported
as warnings but do not reject the batch.`,
	Args: cobra.ExactArgs(1),
	RunE: runDecompose,
}

func init() {
	decomposeCmd.Flags().StringVar(&decomposeDescription, "description", "", "Additional goal context")
	decomposeCmd.Flags().StringVar(&decomposeDeadline, "deadline", "", "Deadline hint shown to the model")
	decomposeCmd.Flags().StringVar(&decomposePriority, "priority", "", "Goal priority: high, medium, low")
	decomposeCmd.Flags().StringVar(&decomposeUser, "user", "cli", "User ID for rate and quota accounting")
	decomposeCmd.Flags().StringVar(&decomposePlan, "plan", "free", "Subscription plan: free or pro")
}

func runDecompose(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	c, err := newCore(cfg, decomposePlan)
	if err != nil {
		return err
	}
	defer c.Close()

	goal := models.GoalRequest{
		Title:       args[0],
		Description: decomposeDescription,
		Deadline:    decomposeDeadline,
		Priority:    decomposePriority,
		UserID:      decomposeUser,
	}

	batch, err := chunk.New(c.Orchestrator).Decompose(context.Background(), goal)
	if err != nil {
		printFailure(err)
		c.Close() // os.Exit skips the deferred close
		os.Exit(1)
	}

	displayBatch(batch)
	return nil
}

func displayBatch(batch models.ChunkBatch) {
	fmt.Printf("Batch %s (%s, %.1fh total)\n\n", batch.ID, batch.Model, batch.TotalEstimatedHours)

	for _, ch := range batch.Chunks {
		color.New(color.Bold).Printf("%d. %s (%.1fh)\n", ch.Order+1, ch.Title, ch.EstimatedHours)
		if ch.Description != "" {
			fmt.Printf("   %s\n", ch.Description)
		}
		if len(ch.Dependencies) > 0 {
			fmt.Printf("   depends on: %s\n", formatDeps(ch.Dependencies))
		}
	}

	if batch.Reasoning != "" {
		fmt.Printf("\nReasoning: %s\n", batch.Reasoning)
	}

	for _, w := range batch.Warnings {
		color.New(color.FgYellow).Printf("⚠ %s\n", w)
	}
}

func formatDeps(deps []int) string {
	parts := make([]string, len(deps))
	for i, d := range deps {
		parts[i] = fmt.Sprintf("#%d", d+1)
	}
	return strings.Join(parts, ", ")
}
