package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dayguard/internal/domain"
)

func setupTestDB(t *testing.T) *Store {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(context.Background(), dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func seedProfile(t *testing.T, store *Store, id string) *domain.Profile {
	now := time.Now()
	p := &domain.Profile{
		ID:        id,
		Name:      "Alice",
		AgeGroup:  domain.AgeGroupTween,
		Config:    domain.DefaultProfileConfig(),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, store.CreateProfile(context.Background(), p))
	return p
}

func insertActivity(t *testing.T, store *Store, profileID string, ts time.Time, durationSeconds int64) {
	err := store.InsertActivity(context.Background(), &domain.Activity{
		ID:              "act_" + ts.Format("150405.000000000"),
		ProfileID:       profileID,
		Timestamp:       ts,
		ActivityType:    domain.ActivityApplicationUsage,
		AppID:           "notepad.exe",
		AppName:         "Notepad",
		DurationSeconds: durationSeconds,
	})
	require.NoError(t, err)
}

func TestUsedSecondsOnDate_SumsDurationSecondsWithinTheDay(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()
	profile := seedProfile(t, store, "p1")

	day := time.Date(2026, time.August, 3, 0, 0, 0, 0, time.UTC)
	insertActivity(t, store, profile.ID, day.Add(9*time.Hour), 600)
	insertActivity(t, store, profile.ID, day.Add(18*time.Hour), 900)

	used, err := store.UsedSecondsOnDate(ctx, profile.ID, day.Add(12*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1500), used)
}

func TestUsedSecondsOnDate_ExcludesActivityAcrossDayBoundary(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()
	profile := seedProfile(t, store, "p1")

	day := time.Date(2026, time.August, 3, 0, 0, 0, 0, time.UTC)
	insertActivity(t, store, profile.ID, day.Add(-time.Second), 10000) // 2026-08-02 23:59:59, the day before
	insertActivity(t, store, profile.ID, day.Add(time.Second), 300)    // 2026-08-03 00:00:01, within the day
	insertActivity(t, store, profile.ID, day.Add(24*time.Hour), 10000) // 2026-08-04 00:00:00, the day after

	used, err := store.UsedSecondsOnDate(ctx, profile.ID, day.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(300), used, "only activities within [dayStart, dayEnd) count toward the day's total")
}

func TestUsedSecondsOnDate_NoActivitiesReturnsZero(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()
	profile := seedProfile(t, store, "p1")

	used, err := store.UsedSecondsOnDate(ctx, profile.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(0), used)
}

func TestUsedSecondsOnDate_IgnoresSessionPresenceAndOnlySumsActivities(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()
	profile := seedProfile(t, store, "p1")

	day := time.Date(2026, time.August, 3, 0, 0, 0, 0, time.UTC)
	// A long-running open session overlapping the day, with no reported
	// activity, must not contribute to used_seconds on its own.
	require.NoError(t, store.OpenSession(ctx, &domain.Session{
		ID:        "sess1",
		ProfileID: profile.ID,
		StartTime: day.Add(time.Hour),
	}))

	insertActivity(t, store, profile.ID, day.Add(10*time.Hour), 120)

	used, err := store.UsedSecondsOnDate(ctx, profile.ID, day.Add(12*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(120), used)
}

func TestUsedSecondsOnDate_ScopedToProfile(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()
	p1 := seedProfile(t, store, "p1")
	p2 := seedProfile(t, store, "p2")

	day := time.Date(2026, time.August, 3, 0, 0, 0, 0, time.UTC)
	insertActivity(t, store, p1.ID, day.Add(9*time.Hour), 600)
	insertActivity(t, store, p2.ID, day.Add(9*time.Hour), 900)

	used, err := store.UsedSecondsOnDate(ctx, p1.ID, day.Add(12*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(600), used)
}
