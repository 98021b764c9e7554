package tokens

import (
	"testing"
	"time"

	"github.com/kaizenapp/kaizen/pkg/models"
)

func newTestTracker(plans PlanLookup) (*Tracker, *time.Time) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tr := NewTracker(DefaultLimits(), plans)
	tr.now = func() time.Time { return now }
	return tr, &now
}

func TestRecord_Accumulates(t *testing.T) {
	tr, _ := newTestTracker(nil)

	tr.Record("user-1", 100)
	tr.Record("user-1", 250)

	if got := tr.MonthlyUsage("user-1"); got != 350 {
		t.Errorf("MonthlyUsage = %d, want 350", got)
	}
}

func TestRecord_MonthRollover(t *testing.T) {
	tr, now := newTestTracker(nil)

	tr.Record("user-1", 5000)
	if got := tr.MonthlyUsage("user-1"); got != 5000 {
		t.Fatalf("MonthlyUsage = %d, want 5000", got)
	}

	// Roll to April: March usage must not count against the new month.
	*now = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	if got := tr.MonthlyUsage("user-1"); got != 0 {
		t.Errorf("MonthlyUsage after rollover = %d, want 0", got)
	}

	tr.Record("user-1", 700)
	if got := tr.MonthlyUsage("user-1"); got != 700 {
		t.Errorf("MonthlyUsage in new month = %d, want 700", got)
	}
}

func TestCheck_FreeTierCaps(t *testing.T) {
	tr, _ := newTestTracker(nil)

	if !tr.Check("user-1", models.ModelPrimary, 20_000) {
		t.Error("request exactly at the cap should pass")
	}
	if tr.Check("user-1", models.ModelPrimary, 20_001) {
		t.Error("request above the cap should fail")
	}

	tr.Record("user-1", 19_500)
	if tr.Check("user-1", models.ModelPrimary, 1000) {
		t.Error("usage plus request above the cap should fail")
	}
	if !tr.Check("user-1", models.ModelPrimary, 500) {
		t.Error("usage plus request within the cap should pass")
	}
}

func TestCheck_LighterModelsGetHigherCaps(t *testing.T) {
	tr, _ := newTestTracker(nil)
	tr.Record("user-1", 30_000)

	if tr.Check("user-1", models.ModelPrimary, 100) {
		t.Error("primary model cap (20k) should already be exhausted")
	}
	if !tr.Check("user-1", models.ModelBalanced, 100) {
		t.Error("balanced model cap (50k) should still have room")
	}
	if !tr.Check("user-1", models.ModelLight, 100) {
		t.Error("light model cap (100k) should still have room")
	}
}

func TestCheck_ProPlan(t *testing.T) {
	plans := func(userID string) models.Plan {
		if userID == "pro-user" {
			return models.PlanPro
		}
		return models.PlanFree
	}
	tr, _ := newTestTracker(plans)

	tr.Record("pro-user", 150_000)
	tr.Record("free-user", 150_000)

	if !tr.Check("pro-user", models.ModelPrimary, 1000) {
		t.Error("pro plan should allow up to 200k on the primary model")
	}
	if tr.Check("free-user", models.ModelPrimary, 1000) {
		t.Error("free plan should be exhausted at 20k")
	}
}

func TestCheck_UnknownModelUsesStrictestCap(t *testing.T) {
	tr, _ := newTestTracker(nil)
	tr.Record("user-1", 25_000)

	if tr.Check("user-1", models.Model("mystery"), 100) {
		t.Error("unknown model should fall back to the strictest free cap")
	}
}

func TestStats(t *testing.T) {
	tr, _ := newTestTracker(nil)
	tr.Record("user-1", 10)
	tr.Record("user-2", 20)

	stats := tr.Stats()
	if stats.TotalUsers != 2 {
		t.Errorf("TotalUsers = %d, want 2", stats.TotalUsers)
	}
	if stats.CurrentMonth != "2026-03" {
		t.Errorf("CurrentMonth = %q, want 2026-03", stats.CurrentMonth)
	}
}

func TestSetLimits(t *testing.T) {
	tr, _ := newTestTracker(nil)
	tr.Record("user-1", 50)

	tr.SetLimits(Limits{
		models.PlanFree: {models.ModelPrimary: 60},
	})

	if tr.Check("user-1", models.ModelPrimary, 20) {
		t.Error("check should use the updated cap")
	}
	if !tr.Check("user-1", models.ModelPrimary, 10) {
		t.Error("request within the updated cap should pass")
	}

	// Nil limits are ignored.
	tr.SetLimits(nil)
	if !tr.Check("user-1", models.ModelPrimary, 10) {
		t.Error("SetLimits(nil) should not clear the table")
	}
}

func TestSweep_DropsOldMonths(t *testing.T) {
	tr, now := newTestTracker(nil)

	// Usage in January, then advance to March.
	*now = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	tr.Record("user-1", 1000)
	*now = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	tr.Record("user-1", 200)
	tr.Record("user-2", 50)

	// Keep current and previous month: January goes, March stays.
	tr.Sweep(2)

	if got := tr.MonthlyUsage("user-1"); got != 200 {
		t.Errorf("MonthlyUsage after sweep = %d, want 200", got)
	}
	if stats := tr.Stats(); stats.TotalUsers != 2 {
		t.Errorf("TotalUsers after sweep = %d, want 2", stats.TotalUsers)
	}

	// Advance far enough that every bucket ages out.
	*now = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	tr.Sweep(1)
	if stats := tr.Stats(); stats.TotalUsers != 0 {
		t.Errorf("TotalUsers after full sweep = %d, want 0", stats.TotalUsers)
	}
}

func TestSweep_MonthEndKeepsPreviousMonth(t *testing.T) {
	tr, now := newTestTracker(nil)

	// February usage, swept on March 31. Keeping two months must retain
	// February even though March 31 has no same-day counterpart there.
	*now = time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	tr.Record("user-1", 400)
	*now = time.Date(2026, 3, 31, 23, 0, 0, 0, time.UTC)

	tr.Sweep(2)

	if stats := tr.Stats(); stats.TotalUsers != 1 {
		t.Errorf("TotalUsers after month-end sweep = %d, want 1 (February bucket must survive)", stats.TotalUsers)
	}

	*now = time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	if got := tr.MonthlyUsage("user-1"); got != 400 {
		t.Errorf("February usage after sweep = %d, want 400", got)
	}
}

func TestReset(t *testing.T) {
	tr, _ := newTestTracker(nil)
	tr.Record("user-1", 500)
	tr.Reset()

	if got := tr.MonthlyUsage("user-1"); got != 0 {
		t.Errorf("MonthlyUsage after Reset = %d, want 0", got)
	}
	if stats := tr.Stats(); stats.TotalUsers != 0 {
		t.Errorf("TotalUsers after Reset = %d, want 0", stats.TotalUsers)
	}
}
