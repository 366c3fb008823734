package core

import (
	"context"
	"testing"
	"time"

	"dayguard/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountant_UsedSeconds(t *testing.T) {
	store := newFakeStorage()
	now := time.Now()
	store.usedSeconds["p1"+now.Format("2006-01-02")] = 1800

	a := NewAccountant(store)
	used, err := a.UsedSeconds(context.Background(), "p1", now)
	require.NoError(t, err)
	assert.Equal(t, int64(1800), used)
}

// The weekday/weekend/exception arithmetic itself is covered by
// domain.DailyLimitSeconds's own tests; these exercise only the
// Accountant's composition of it with a used-seconds read.

func TestAccountant_RemainingSeconds(t *testing.T) {
	store := newFakeStorage()
	now := time.Now()
	profile := &domain.Profile{
		Config: domain.ProfileConfig{ScreenTime: domain.ScreenTimeConfig{DailyLimitMinutes: 60}},
	}
	a := NewAccountant(store)

	remaining, err := a.RemainingSeconds(context.Background(), profile, nil, now)
	require.NoError(t, err)
	assert.Equal(t, int64(3600), remaining)
}

func TestAccountant_RemainingSeconds_FlooredAtZero(t *testing.T) {
	store := newFakeStorage()
	now := time.Now()
	profile := &domain.Profile{
		Config: domain.ProfileConfig{ScreenTime: domain.ScreenTimeConfig{DailyLimitMinutes: 60}},
	}
	a := NewAccountant(store)
	store.usedSeconds[profile.ID+now.Format("2006-01-02")] = 999999

	remaining, err := a.RemainingSeconds(context.Background(), profile, nil, now)
	require.NoError(t, err)
	assert.Equal(t, int64(0), remaining)
}
