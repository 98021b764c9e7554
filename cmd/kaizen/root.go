package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kaizen",
	Short: "AI request orchestration core",
	Long: `Kaizen orchestrates AI text generation with rate limiting, monthly
token quotas, and response caching in front of a single provider call.

Core capabilities:
- Per-user sliding-window rate limiting
- Tiered monthly token quotas (free / pro)
- Deduplicating response cache (in-memory or SQLite)
- Goal decomposition into ordered, dependency-aware chunks`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(decomposeCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
