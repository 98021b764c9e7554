package main

import (
	"fmt"

	"github.com/kaizenapp/kaizen/internal/ai"
	"github.com/kaizenapp/kaizen/internal/cache"
	"github.com/kaizenapp/kaizen/internal/config"
	"github.com/kaizenapp/kaizen/internal/ratelimit"
	"github.com/kaizenapp/kaizen/internal/tokens"
	"github.com/kaizenapp/kaizen/pkg/models"
)

// core bundles the orchestrator with the resources it owns, so commands
// can tear everything down with one Close call.
type core struct {
	Orchestrator *ai.Orchestrator
	logger       *ai.DebugLogger
	responses    *cache.ResponseCache
}

// Close releases the cache store and the debug log file.
func (c *core) Close() {
	if c.responses != nil {
		c.responses.Close()
	}
	if c.logger != nil {
		c.logger.Close()
	}
}

// newCore builds the orchestrator stack from configuration. The plan
// argument assigns a subscription tier to every user of this process;
// an empty plan means free.
func newCore(cfg *config.Config, plan string) (*core, error) {
	logger := ai.NopLogger()
	if cfg.Logging.DebugLog != "" {
		l, err := ai.NewDebugLogger(cfg.Logging.DebugLog)
		if err != nil {
			return nil, fmt.Errorf("open debug log: %w", err)
		}
		logger = l
	}

	client, err := ai.NewClient(ai.ClientConfig{
		APIKey:        cfg.Anthropic.APIKey,
		UseAWSBedrock: cfg.Anthropic.UseBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("create API client: %w", err)
	}

	var store cache.Store
	switch cfg.Cache.Backend {
	case "sqlite":
		store, err = cache.OpenSQLite(cfg.Cache.Path)
		if err != nil {
			logger.Close()
			return nil, fmt.Errorf("open cache database: %w", err)
		}
	default:
		store = cache.NewMemory(cfg.Cache.MaxEntries)
	}
	responses := cache.New(store, cfg.Cache.TTL(), logger)

	var plans tokens.PlanLookup
	if p := models.Plan(plan); p.Valid() {
		plans = func(string) models.Plan { return p }
	}

	limiter := ratelimit.New(cfg.RateLimit.RequestsPerMinute)
	tracker := tokens.NewTracker(cfg.Tokens.Limits(tokens.DefaultLimits()), plans)

	return &core{
		Orchestrator: ai.NewOrchestrator(client, limiter, tracker, responses, logger),
		logger:       logger,
		responses:    responses,
	}, nil
}
