// Package tokens tracks per-user monthly token consumption against
// tiered per-model quotas.
package tokens

import (
	"sync"
	"time"

	"github.com/kaizenapp/kaizen/pkg/models"
)

// Limits maps plan -> model -> monthly token cap.
type Limits map[models.Plan]map[models.Model]int64

// DefaultLimits returns the built-in monthly caps. Higher-capability models
// get the lower cap within each plan.
func DefaultLimits() Limits {
	return Limits{
		models.PlanFree: {
			models.ModelPrimary:  20_000,
			models.ModelBalanced: 50_000,
			models.ModelLight:    100_000,
		},
		models.PlanPro: {
			models.ModelPrimary:  200_000,
			models.ModelBalanced: 300_000,
			models.ModelLight:    500_000,
		},
	}
}

// limitFor resolves the cap for a plan/model pair, falling back to the free
// tier for unknown plans and to the strictest free cap for unknown models.
func (l Limits) limitFor(plan models.Plan, model models.Model) int64 {
	perModel, ok := l[plan]
	if !ok {
		perModel = l[models.PlanFree]
	}
	if limit, ok := perModel[model]; ok {
		return limit
	}
	return l[models.PlanFree][models.ModelPrimary]
}

// PlanLookup resolves a user's subscription plan. Users not known to the
// lookup are treated as free-tier.
type PlanLookup func(userID string) models.Plan

// Tracker accumulates token usage per user per calendar month (UTC).
//
// Check and Record are separate, non-atomic calls: concurrent requests can
// both pass Check before either Records. Quota enforcement is best-effort.
// Buckets for past months are kept; usage is never decremented.
type Tracker struct {
	mu     sync.Mutex
	usage  map[string]map[string]int64 // userID -> "YYYY-MM" -> tokens
	limits Limits
	plans  PlanLookup
	now    func() time.Time
}

// NewTracker creates a Tracker with the given limits and plan lookup.
// A nil lookup treats every user as free-tier.
func NewTracker(limits Limits, plans PlanLookup) *Tracker {
	if limits == nil {
		limits = DefaultLimits()
	}
	if plans == nil {
		plans = func(string) models.Plan { return models.PlanFree }
	}
	return &Tracker{
		usage:  make(map[string]map[string]int64),
		limits: limits,
		plans:  plans,
		now:    time.Now,
	}
}

// SetLimits replaces the quota table at runtime.
func (t *Tracker) SetLimits(limits Limits) {
	if limits == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.limits = limits
}

// monthKey formats a time as the UTC "YYYY-MM" bucket key.
func monthKey(ts time.Time) string {
	return ts.UTC().Format("2006-01")
}

// Check reports whether the user may consume the requested tokens this
// month under their plan's cap for the model.
func (t *Tracker) Check(userID string, model models.Model, requested int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	limit := t.limits.limitFor(t.plans(userID), model)
	used := t.usage[userID][monthKey(t.now())]
	return used+requested <= limit
}

// Record adds consumed tokens to the user's current month bucket.
// Call only after a successful generation, with the provider's actual total.
func (t *Tracker) Record(userID string, consumed int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	months, ok := t.usage[userID]
	if !ok {
		months = make(map[string]int64)
		t.usage[userID] = months
	}
	months[monthKey(t.now())] += consumed
}

// MonthlyUsage returns the user's consumption for the current month.
func (t *Tracker) MonthlyUsage(userID string) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.usage[userID][monthKey(t.now())]
}

// Stats returns aggregate tracker state.
func (t *Tracker) Stats() models.TokenUsageStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return models.TokenUsageStats{
		TotalUsers:   len(t.usage),
		CurrentMonth: monthKey(t.now()),
	}
}

// Sweep drops month buckets older than keepMonths, counting the current
// month as 1. Users left with no buckets are removed. Long-running
// processes should call this periodically; keepMonths < 1 is a no-op.
func (t *Tracker) Sweep(keepMonths int) {
	if keepMonths < 1 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	// Step back from the first of the current month, not from the current
	// day: subtracting months from a late day-of-month would normalize
	// through short months and land past the intended cutoff.
	now := t.now().UTC()
	cutoff := monthKey(time.Date(now.Year(), now.Month()-time.Month(keepMonths-1), 1, 0, 0, 0, 0, time.UTC))
	for userID, months := range t.usage {
		for month := range months {
			if month < cutoff {
				delete(months, month)
			}
		}
		if len(months) == 0 {
			delete(t.usage, userID)
		}
	}
}

// Reset clears all recorded usage.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.usage = make(map[string]map[string]int64)
}
