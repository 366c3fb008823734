package core

import (
	"context"
	"testing"
	"time"

	"dayguard/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSupervisor(store *fakeStorage) *Supervisor {
	accountant := NewAccountant(store)
	exceptions := NewExceptionStore(store)
	return NewSupervisor(store, accountant, exceptions, &fakeNotifier{}, nil)
}

func TestSupervisor_SetActiveProfile(t *testing.T) {
	store := newFakeStorage()
	store.profiles["p1"] = &domain.Profile{ID: "p1", Name: "Alice"}
	sup := newTestSupervisor(store)
	now := time.Now()

	profile, err := sup.SetActiveProfile(context.Background(), "p1", now)
	require.NoError(t, err)
	assert.Equal(t, "p1", profile.ID)
	assert.Equal(t, "p1", sup.ActiveProfile().ID)

	id, ok := sup.ActiveProfileID()
	assert.True(t, ok)
	assert.Equal(t, "p1", id)
}

func TestSupervisor_SetActiveProfile_UnknownProfileIsNotFound(t *testing.T) {
	sup := newTestSupervisor(newFakeStorage())
	_, err := sup.SetActiveProfile(context.Background(), "ghost", time.Now())
	assert.Error(t, err)
}

func TestSupervisor_SetActiveProfile_ClosesPreviousSessionAsReplaced(t *testing.T) {
	store := newFakeStorage()
	store.profiles["p1"] = &domain.Profile{ID: "p1", Name: "Alice"}
	store.profiles["p2"] = &domain.Profile{ID: "p2", Name: "Bob"}
	sup := newTestSupervisor(store)
	now := time.Now()

	_, err := sup.SetActiveProfile(context.Background(), "p1", now)
	require.NoError(t, err)
	firstSession := sup.ActiveSession()
	require.NotNil(t, firstSession)

	_, err = sup.SetActiveProfile(context.Background(), "p2", now.Add(time.Minute))
	require.NoError(t, err)

	closed, err := store.GetSession(context.Background(), firstSession.ID)
	require.NoError(t, err)
	require.NotNil(t, closed.EndReason)
	assert.Equal(t, domain.SessionEndReplaced, *closed.EndReason)
	assert.Equal(t, "p2", sup.ActiveProfile().ID)
}

func TestSupervisor_Deactivate(t *testing.T) {
	store := newFakeStorage()
	store.profiles["p1"] = &domain.Profile{ID: "p1", Name: "Alice"}
	sup := newTestSupervisor(store)
	now := time.Now()

	_, err := sup.SetActiveProfile(context.Background(), "p1", now)
	require.NoError(t, err)
	session := sup.ActiveSession()

	err = sup.Deactivate(context.Background(), domain.SessionEndDeactivated, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Nil(t, sup.ActiveProfile())
	assert.Nil(t, sup.ActiveSession())

	closed, err := store.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	require.NotNil(t, closed.EndReason)
	assert.Equal(t, domain.SessionEndDeactivated, *closed.EndReason)
}

func TestSupervisor_Deactivate_NoActiveSessionIsNoop(t *testing.T) {
	sup := newTestSupervisor(newFakeStorage())
	assert.NoError(t, sup.Deactivate(context.Background(), domain.SessionEndDeactivated, time.Now()))
}

func TestSupervisor_Heartbeat_ClearsTamperFlag(t *testing.T) {
	sup := newTestSupervisor(newFakeStorage())
	now := time.Now()

	assert.False(t, sup.CheckMonitorHealth(now), "no monitor has ever reported in")
	assert.True(t, sup.TamperDetected())

	sup.SendHeartbeat("monitor-1", now)
	assert.False(t, sup.TamperDetected())
}

func TestSupervisor_CheckMonitorHealth_TripsWhenAllStale(t *testing.T) {
	sup := newTestSupervisor(newFakeStorage())
	now := time.Now()
	sup.SendHeartbeat("monitor-1", now)

	healthy := sup.CheckMonitorHealth(now.Add(31 * time.Second))
	assert.False(t, healthy)
	assert.True(t, sup.TamperDetected())
}

func TestSupervisor_CheckMonitorHealth_HealthyWithinTimeout(t *testing.T) {
	sup := newTestSupervisor(newFakeStorage())
	now := time.Now()
	sup.SendHeartbeat("monitor-1", now)

	healthy := sup.CheckMonitorHealth(now.Add(10 * time.Second))
	assert.True(t, healthy)
	assert.False(t, sup.TamperDetected())
}

func TestSupervisor_Decide_NoActiveProfileAllows(t *testing.T) {
	sup := newTestSupervisor(newFakeStorage())
	decision, err := sup.Decide(context.Background(), domain.ActivityEvent{Kind: domain.EventWindowFocused, AppID: "notepad.exe"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, domain.ActionAllow, decision.Action)
}

func TestSupervisor_Decide_UsesActiveProfilePolicy(t *testing.T) {
	store := newFakeStorage()
	store.profiles["p1"] = &domain.Profile{
		ID: "p1",
		Config: domain.ProfileConfig{
			ScreenTime: domain.ScreenTimeConfig{
				DailyLimitMinutes: 60,
				Windows: domain.WindowSet{
					Weekday: []domain.TimeWindow{{Start: "00:00", End: "23:59"}},
					Weekend: []domain.TimeWindow{{Start: "00:00", End: "23:59"}},
					Holiday: []domain.TimeWindow{{Start: "00:00", End: "23:59"}},
				},
			},
			Applications: domain.ApplicationsConfig{Mode: domain.AppModeBlocklist, Blocked: []string{"steam.exe"}},
		},
	}
	sup := newTestSupervisor(store)
	now := time.Now()

	_, err := sup.SetActiveProfile(context.Background(), "p1", now)
	require.NoError(t, err)

	decision, err := sup.Decide(context.Background(), domain.ActivityEvent{Kind: domain.EventWindowFocused, AppID: "steam.exe"}, now)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionBlock, decision.Action)
}
