package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kaizenapp/kaizen/internal/config"
	"github.com/kaizenapp/kaizen/pkg/models"
)

var (
	generateComplexity string
	generateMaxTokens  int
	generateTemp       float64
	generateUser       string
	generatePlan       string
)

var generateCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Run a single text generation",
	Long: `Run one text generation through the orchestration pipeline.

The request passes rate limiting, monthly token quota checks, and the
response cache before a provider call is made. Identical prompts within
the cache TTL are answered from cache without consuming quota.

Model selection (--complexity):
  - simple:  cheapest model, short factual prompts
  - medium:  balanced model (default)
  - complex: strongest model, structured or multi-step work`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateComplexity, "complexity", "medium", "Prompt complexity: simple, medium, complex")
	generateCmd.Flags().IntVar(&generateMaxTokens, "max-tokens", models.DefaultMaxTokens, "Maximum output tokens")
	generateCmd.Flags().Float64Var(&generateTemp, "temperature", models.DefaultTemperature, "Sampling temperature in [0, 2]")
	generateCmd.Flags().StringVar(&generateUser, "user", "cli", "User ID for rate and quota accounting")
	generateCmd.Flags().StringVar(&generatePlan, "plan", "free", "Subscription plan: free or pro")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	c, err := newCore(cfg, generatePlan)
	if err != nil {
		return err
	}
	defer c.Close()

	req := models.NewGenerationRequest(args[0], models.SelectModel(models.Complexity(generateComplexity)), generateUser)
	req.MaxTokens = generateMaxTokens
	req.Temperature = generateTemp

	result, err := c.Orchestrator.Generate(context.Background(), req)
	if err != nil {
		printFailure(err)
		c.Close() // os.Exit skips the deferred close
		os.Exit(1)
	}

	fmt.Println(result.Content)
	fmt.Println()
	source := "provider"
	if result.Cached {
		source = "cache"
	}
	color.New(color.Faint).Printf("model=%s tokens=%d source=%s time=%s (%s)\n",
		result.Model, result.Usage.TotalTokens, source, result.ProcessingTime.Round(time.Millisecond), result.TimeClass())
	return nil
}

// printFailure renders an orchestration failure with its category, and a
// retry hint when the limiter set one.
func printFailure(err error) {
	if f, ok := models.AsFailure(err); ok {
		color.New(color.FgRed).Fprintf(os.Stderr, "%s: %s\n", f.Kind, f.Message)
		if f.RetryAfter > 0 {
			fmt.Fprintf(os.Stderr, "Retry in %ds.\n", int(f.RetryAfter.Seconds()))
		}
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
