package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kaizenapp/kaizen/internal/config"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View the effective configuration.

Configuration is stored at ~/.config/kaizen/config.yaml
Project-specific overrides can be placed in .kaizen.yaml`,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE:  runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing config file")
	configCmd.AddCommand(configInitCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	key, _ := config.GetAPIKey(cfg)
	fmt.Printf("anthropic.api_key: %s (%s)\n", config.MaskAPIKey(key), config.GetAPIKeySource(cfg))
	if key != "" && !cfg.Anthropic.UseBedrock {
		if err := config.ValidateAPIKey(key); err != nil {
			color.New(color.FgYellow).Printf("⚠ configured key looks invalid: %v\n", err)
		}
	}
	fmt.Printf("anthropic.use_bedrock: %t\n", cfg.Anthropic.UseBedrock)
	fmt.Printf("rate_limit.requests_per_minute: %d\n", cfg.RateLimit.RequestsPerMinute)
	fmt.Printf("cache.backend: %s\n", cfg.Cache.Backend)
	fmt.Printf("cache.ttl_hours: %d\n", cfg.Cache.TTLHours)
	fmt.Printf("cache.max_entries: %d\n", cfg.Cache.MaxEntries)
	fmt.Printf("cache.path: %s\n", cfg.Cache.Path)
	fmt.Printf("retries.max: %d\n", cfg.Retries.Max)
	fmt.Printf("logging.debug_log: %s\n", cfg.Logging.DebugLog)

	if project := config.GetProjectConfigPath(); project != "" {
		fmt.Printf("\nProject overrides: %s\n", project)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.GetUserConfigPath()

	if _, err := os.Stat(path); err == nil && !configInitForce {
		fmt.Printf("Config already exists at %s. Use --force to overwrite.\n", path)
		return nil
	}

	data, err := config.DefaultYAML()
	if err != nil {
		return fmt.Errorf("render default config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	color.New(color.FgGreen).Printf("✓ Wrote %s\n", path)
	return nil
}
