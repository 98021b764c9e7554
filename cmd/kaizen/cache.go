package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kaizenapp/kaizen/internal/cache"
	"github.com/kaizenapp/kaizen/internal/config"
)

var cacheClearExpired bool

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the response cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached responses",
	Long: `Remove entries from the response cache.

By default all entries are removed. With --expired, only entries past
their TTL are removed. Only meaningful for the SQLite backend; the
in-memory cache does not outlive the process.`,
	RunE: runCacheClear,
}

func init() {
	cacheClearCmd.Flags().BoolVar(&cacheClearExpired, "expired", false, "Remove only expired entries")
	cacheCmd.AddCommand(cacheClearCmd)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.Cache.Backend != "sqlite" {
		fmt.Println("Cache backend is in-memory; nothing to clear.")
		return nil
	}

	store, err := cache.OpenSQLite(cfg.Cache.Path)
	if err != nil {
		return fmt.Errorf("open cache database: %w", err)
	}
	defer store.Close()

	before, err := store.Len()
	if err != nil {
		return fmt.Errorf("count cache entries: %w", err)
	}

	if err := store.Clear(cacheClearExpired); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}

	after, err := store.Len()
	if err != nil {
		return fmt.Errorf("count cache entries: %w", err)
	}

	color.New(color.FgGreen).Printf("✓ Removed %d entries (%d remaining)\n", before-after, after)
	return nil
}
