package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kaizenapp/kaizen/internal/config"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show orchestrator counters",
	Long: `Display the rate limiter, token tracker, and response cache counters
for this process.

Counters are process-local: a fresh process starts from zero. With the
SQLite cache backend, cached entries persist across processes but hit
and miss counts do not.`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	c, err := newCore(cfg, "")
	if err != nil {
		return err
	}
	defer c.Close()

	stats := c.Orchestrator.Stats()

	fmt.Println("Rate limiter:")
	fmt.Printf("  Users in window: %d\n", stats.RateLimit.TotalUsers)
	fmt.Printf("  Requests in window: %d\n", stats.RateLimit.TotalRequests)

	fmt.Println("Token usage:")
	fmt.Printf("  Users tracked: %d\n", stats.TokenUsage.TotalUsers)
	fmt.Printf("  Current month: %s\n", stats.TokenUsage.CurrentMonth)

	fmt.Println("Response cache:")
	fmt.Printf("  Entries: %s\n", formatNumber(stats.Cache.Entries))
	fmt.Printf("  Hits: %s\n", formatNumber(stats.Cache.Hits))
	fmt.Printf("  Misses: %s\n", formatNumber(stats.Cache.Misses))
	return nil
}

// formatNumber formats a number with commas.
func formatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	out := ""
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out += ","
		}
		out += string(c)
	}
	return out
}
