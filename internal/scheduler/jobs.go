package scheduler

import (
	"context"
	"time"

	"dayguard/internal/core"
	"dayguard/internal/domain"
	"dayguard/internal/storage"
)

// RollupInterval is how often daily/weekly summaries are regenerated.
const RollupInterval = 10 * time.Second

// HealthCheckInterval is how often monitor heartbeats are checked for
// staleness.
const HealthCheckInterval = 60 * time.Second

// RollupJob regenerates the daily_summaries / weekly_summaries rows for
// every profile from first principles (open sessions, closed sessions,
// exceptions), the way a materialized view would, so a missed tick never
// drifts the aggregate permanently out of sync.
func RollupJob(store storage.Storage, accountant *core.Accountant, exceptions *core.ExceptionStore) Job {
	return Job{
		Name:     "rollup",
		Interval: RollupInterval,
		Run: func(ctx context.Context) error {
			profiles, err := store.ListProfiles(ctx)
			if err != nil {
				return err
			}
			now := time.Now()
			weekStart := mondayOf(now)

			for _, p := range profiles {
				used, err := accountant.UsedSeconds(ctx, p.ID, now)
				if err != nil {
					return err
				}
				sessions, err := store.ListActivities(ctx, p.ID, startOfDay(now), startOfDay(now).Add(24*time.Hour))
				if err != nil {
					return err
				}
				_, exceptionsUsed, _, err := exceptions.UsageStats(ctx, p.ID, startOfDay(now), now)
				if err != nil {
					return err
				}

				if err := store.UpsertDailySummary(ctx, &domain.DailySummary{
					ProfileID:      p.ID,
					Date:           now.Format("2006-01-02"),
					TotalSeconds:   used,
					SessionCount:   countSessions(sessions),
					ExceptionsUsed: int(exceptionsUsed),
				}); err != nil {
					return err
				}

				weeklyUsed, err := weeklyUsedSeconds(ctx, store, p.ID, weekStart, now)
				if err != nil {
					return err
				}
				_, weekExceptionsUsed, _, err := exceptions.UsageStats(ctx, p.ID, weekStart, now)
				if err != nil {
					return err
				}
				if err := store.UpsertWeeklySummary(ctx, &domain.WeeklySummary{
					ProfileID:      p.ID,
					WeekStart:      weekStart.Format("2006-01-02"),
					TotalSeconds:   weeklyUsed,
					SessionCount:   countSessions(sessions),
					ExceptionsUsed: int(weekExceptionsUsed),
				}); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// weeklyUsedSeconds sums each day's used seconds between weekStart and now,
// since the accountant's per-date function only reads one calendar day at
// a time.
func weeklyUsedSeconds(ctx context.Context, store storage.Storage, profileID string, weekStart, now time.Time) (int64, error) {
	sessions, err := store.ListActivities(ctx, profileID, weekStart, weekStart.Add(7*24*time.Hour))
	if err != nil {
		return 0, err
	}
	var total int64
	for _, a := range sessions {
		total += a.DurationSeconds
	}
	return total, nil
}

func countSessions(activities []*domain.Activity) int {
	seen := make(map[string]struct{})
	for _, a := range activities {
		seen[a.SessionID] = struct{}{}
	}
	return len(seen)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func mondayOf(t time.Time) time.Time {
	day := startOfDay(t)
	offset := int(day.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	return day.AddDate(0, 0, -offset)
}

// HealthCheckJob trips the supervisor's tamper flag when every monitor has
// gone silent.
func HealthCheckJob(supervisor *core.Supervisor) Job {
	return Job{
		Name:     "health_check",
		Interval: HealthCheckInterval,
		Run: func(ctx context.Context) error {
			supervisor.CheckMonitorHealth(time.Now())
			return nil
		},
	}
}

// ExceptionSweepJob clears expired exceptions so listings stay accurate even
// between policy decisions, which check IsLive directly and do not depend
// on this job having run.
func ExceptionSweepJob(exceptions *core.ExceptionStore) Job {
	return Job{
		Name:     "exception_sweep",
		Interval: RollupInterval,
		Run: func(ctx context.Context) error {
			_, err := exceptions.Sweep(ctx, time.Now())
			return err
		},
	}
}
