package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kaizenapp/kaizen/internal/config"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check provider connectivity",
	Long: `Run a minimal generation against the cheapest model to verify the
credential and provider connectivity end to end.`,
	RunE: runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	c, err := newCore(cfg, "")
	if err != nil {
		return err
	}
	defer c.Close()

	status := c.Orchestrator.HealthCheck(context.Background())
	if !status.OK {
		color.New(color.FgRed).Printf("✗ unhealthy: %s\n", status.Details)
		c.Close() // os.Exit skips the deferred close
		os.Exit(1)
	}

	color.New(color.FgGreen).Printf("✓ healthy (%s)\n", status.Model)
	if status.Cached {
		fmt.Println("  probe answered from cache")
	}
	return nil
}
