package ai

import (
	"context"
	"time"

	"github.com/kaizenapp/kaizen/internal/cache"
	"github.com/kaizenapp/kaizen/internal/ratelimit"
	"github.com/kaizenapp/kaizen/internal/tokens"
	"github.com/kaizenapp/kaizen/pkg/models"
)

// HealthCheckUserID is the reserved user identity for health probes.
const HealthCheckUserID = "health-check"

// Orchestrator composes the generation client with rate limiting, monthly
// token budgets, and response caching. All collaborators are injected so
// deployments and tests control their own instances.
type Orchestrator struct {
	client  Generator
	limiter *ratelimit.Limiter
	tracker *tokens.Tracker
	cache   *cache.ResponseCache
	logger  *DebugLogger
	now     func() time.Time
}

// NewOrchestrator wires the façade. A nil logger disables diagnostics.
func NewOrchestrator(client Generator, limiter *ratelimit.Limiter, tracker *tokens.Tracker, responses *cache.ResponseCache, logger *DebugLogger) *Orchestrator {
	return &Orchestrator{
		client:  client,
		limiter: limiter,
		tracker: tracker,
		cache:   responses,
		logger:  logger,
		now:     time.Now,
	}
}

// Generate runs one request through the full admission pipeline. Failures
// are returned as *models.Failure values; the error is never a raw provider
// exception.
//
// Order: validate, credential, rate check, budget check, cache lookup,
// provider call, accounting, cache fill. A cache hit short-circuits before
// any accounting happens.
func (o *Orchestrator) Generate(ctx context.Context, req models.GenerationRequest) (models.GenerationResult, error) {
	start := o.now()

	if err := req.Validate(); err != nil {
		return models.GenerationResult{}, models.NewFailure(models.FailureInvalidRequest, err.Error())
	}

	if err := o.client.Ready(); err != nil {
		return models.GenerationResult{}, models.NewFailure(models.FailureProviderError, err.Error())
	}

	decision := o.limiter.Check(req.UserID)
	if !decision.Allowed {
		f := models.NewFailure(models.FailureRateLimited, "request rate limit reached")
		f.RetryAfter = decision.RetryAfter
		return models.GenerationResult{}, f
	}

	// Conservative pre-call estimate: prompt upper bound plus the full
	// requested output budget. Reconciled with the actual count after.
	estimated := EstimateTokens(req.Prompt) + int64(req.MaxTokens)
	if !o.tracker.Check(req.UserID, req.Model, estimated) {
		return models.GenerationResult{}, models.NewFailure(
			models.FailureTokenLimitExceeded, "monthly token limit reached")
	}

	if cached, ok := o.cache.Get(req.Prompt, req.Model, req.Temperature); ok {
		cached.ProcessingTime = o.now().Sub(start)
		return cached, nil
	}

	content, usage, err := o.client.Generate(ctx, req.Model, req.Prompt, req.MaxTokens, req.Temperature)
	if err != nil {
		o.logger.Log("provider call failed for user %s: %v", req.UserID, err)
		msg := err.Error()
		if msg == "" {
			msg = "text generation failed"
		}
		return models.GenerationResult{}, models.NewFailure(models.FailureProviderError, msg)
	}

	result := models.GenerationResult{
		Content:        content,
		Model:          req.Model,
		Usage:          usage,
		Cached:         false,
		ProcessingTime: o.now().Sub(start),
	}

	o.limiter.Record(req.UserID)
	o.tracker.Record(req.UserID, usage.TotalTokens)
	o.cache.Set(req.Prompt, req.Model, req.Temperature, result)

	return result, nil
}

// HealthCheck issues a minimal generation call on the cheapest model and
// reports whether it succeeded.
func (o *Orchestrator) HealthCheck(ctx context.Context) models.HealthStatus {
	req := models.GenerationRequest{
		Prompt:      "Hello",
		Model:       models.ModelLight,
		MaxTokens:   10,
		Temperature: 0,
		UserID:      HealthCheckUserID,
	}

	result, err := o.Generate(ctx, req)
	if err != nil {
		return models.HealthStatus{OK: false, Details: err.Error()}
	}

	return models.HealthStatus{
		OK:      true,
		Details: "generation responded in " + result.ProcessingTime.Round(time.Millisecond).String(),
		Model:   result.Model,
		Cached:  result.Cached,
	}
}

// ApplyConfig adjusts the runtime-tunable knobs: limiter ceiling, token
// caps, cache TTL. Intended as the callback target of a config watcher in
// long-running deployments; requests already admitted are unaffected.
func (o *Orchestrator) ApplyConfig(requestsPerMinute int, limits tokens.Limits, ttl time.Duration) {
	o.limiter.SetCeiling(requestsPerMinute)
	o.tracker.SetLimits(limits)
	o.cache.SetTTL(ttl)
}

// Stats exposes aggregate counters for observability. Read-only.
func (o *Orchestrator) Stats() models.OrchestratorStats {
	return models.OrchestratorStats{
		RateLimit:  o.limiter.Stats(),
		TokenUsage: o.tracker.Stats(),
		Cache:      o.cache.Stats(),
	}
}
