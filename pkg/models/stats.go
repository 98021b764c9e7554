package models

// RateLimitStats summarizes rate-limiter state across all tracked users.
type RateLimitStats struct {
	// TotalUsers is the number of users with requests in their window.
	TotalUsers int `json:"total_users"`
	// TotalRequests is the number of in-window requests across all users.
	TotalRequests int `json:"total_requests"`
}

// TokenUsageStats summarizes token-tracker state.
type TokenUsageStats struct {
	// TotalUsers is the number of users with any recorded usage.
	TotalUsers int `json:"total_users"`
	// CurrentMonth is the active "YYYY-MM" bucket key.
	CurrentMonth string `json:"current_month"`
}

// CacheStats summarizes response-cache state.
type CacheStats struct {
	// Entries is the number of entries in the backing store.
	Entries int64 `json:"entries"`
	// Hits is the number of cache hits since startup.
	Hits int64 `json:"hits"`
	// Misses is the number of cache misses since startup.
	Misses int64 `json:"misses"`
}

// OrchestratorStats aggregates the read-only stats of the AI core.
type OrchestratorStats struct {
	RateLimit  RateLimitStats  `json:"rate_limit"`
	TokenUsage TokenUsageStats `json:"token_usage"`
	Cache      CacheStats      `json:"cache"`
}

// HealthStatus is the outcome of an orchestrator health check.
type HealthStatus struct {
	// OK is true when a minimal generation call succeeded.
	OK bool `json:"ok"`
	// Details describes the check outcome; on failure it carries the error.
	Details string `json:"details"`
	// Model is the model used for the probe, when it ran.
	Model Model `json:"model,omitempty"`
	// Cached reports whether the probe was answered from cache.
	Cached bool `json:"cached,omitempty"`
}
