package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func weekdayNoon(t *testing.T) time.Time {
	tm, err := time.Parse("2006-01-02 15:04", "2026-08-03 12:00") // a Monday
	if err != nil {
		t.Fatal(err)
	}
	return tm
}

func baseProfile() *Profile {
	return &Profile{
		ID:   "p1",
		Name: "Alice",
		Config: ProfileConfig{
			ScreenTime: ScreenTimeConfig{
				DailyLimitMinutes:   60,
				WeekendBonusMinutes: 30,
				Windows: WindowSet{
					Weekday: []TimeWindow{{Start: "08:00", End: "20:00"}},
					Weekend: []TimeWindow{{Start: "08:00", End: "20:00"}},
					Holiday: []TimeWindow{{Start: "08:00", End: "20:00"}},
				},
			},
			Applications: ApplicationsConfig{
				Mode:    AppModeBlocklist,
				Blocked: []string{"steam.exe"},
			},
		},
	}
}

func TestDecide_NilProfileAllows(t *testing.T) {
	d := Decide(nil, nil, 0, weekdayNoon(t), false, ActivityEvent{})
	assert.Equal(t, ActionAllow, d.Action)
}

func TestDecide_NetworkConnectionDefaultAllows(t *testing.T) {
	d := Decide(baseProfile(), nil, 1_000_000, weekdayNoon(t), false, ActivityEvent{Kind: EventNetworkConnection, Host: "example.com"})
	assert.Equal(t, ActionAllow, d.Action)
}

func TestDecide_OutsideWindowBlocksWithoutOverride(t *testing.T) {
	night, err := time.Parse("2006-01-02 15:04", "2026-08-03 23:00")
	assert.NoError(t, err)
	d := Decide(baseProfile(), nil, 0, night, false, ActivityEvent{Kind: EventWindowFocused, AppID: "notepad.exe"})
	assert.Equal(t, ActionBlock, d.Action)
}

func TestDecide_TimeWindowOverrideAllowsOutsideConfiguredWindow(t *testing.T) {
	night, err := time.Parse("2006-01-02 15:04", "2026-08-03 23:00")
	assert.NoError(t, err)
	exceptions := []*Exception{
		{
			Kind:      ExceptionTimeWindowOverride,
			Active:    true,
			ExpiresAt: night.Add(time.Hour),
			Detail:    ExceptionDetail{WindowStart: "22:00", WindowEnd: "23:30"},
		},
	}
	d := Decide(baseProfile(), exceptions, 0, night, false, ActivityEvent{Kind: EventWindowFocused, AppID: "notepad.exe"})
	assert.Equal(t, ActionAllow, d.Action)
}

func TestDecide_DailyLimitExceededBlocks(t *testing.T) {
	p := baseProfile()
	d := Decide(p, nil, 60*60, weekdayNoon(t), false, ActivityEvent{Kind: EventWindowFocused, AppID: "notepad.exe"})
	assert.Equal(t, ActionBlock, d.Action)
}

func TestDecide_DailyLimitNotYetExceeded(t *testing.T) {
	p := baseProfile()
	d := Decide(p, nil, 59*60, weekdayNoon(t), false, ActivityEvent{Kind: EventWindowFocused, AppID: "notepad.exe"})
	assert.Equal(t, ActionAllow, d.Action)
}

func TestDecide_WeekendBonusExtendsLimit(t *testing.T) {
	saturday, err := time.Parse("2006-01-02 15:04", "2026-08-01 12:00")
	assert.NoError(t, err)
	p := baseProfile()
	// 60 base + 30 weekend bonus = 90 minutes = 5400s; 70 minutes used is within budget
	// only on the weekend.
	d := Decide(p, nil, 70*60, saturday, false, ActivityEvent{Kind: EventWindowFocused, AppID: "notepad.exe"})
	assert.Equal(t, ActionAllow, d.Action)
}

func TestDecide_ScreenTimeExtensionExceptionAddsMinutes(t *testing.T) {
	p := baseProfile()
	now := weekdayNoon(t)
	exceptions := []*Exception{
		{
			Kind:      ExceptionScreenTimeExtension,
			Active:    true,
			ExpiresAt: now.Add(time.Hour),
			Detail:    ExceptionDetail{ExtraMinutes: 30},
		},
	}
	// 60 base + 30 extra = 90 minutes; 70 minutes used is within the extended budget.
	d := Decide(p, exceptions, 70*60, now, false, ActivityEvent{Kind: EventWindowFocused, AppID: "notepad.exe"})
	assert.Equal(t, ActionAllow, d.Action)
}

func TestDecide_BlocklistBlocksListedApp(t *testing.T) {
	p := baseProfile()
	d := Decide(p, nil, 0, weekdayNoon(t), false, ActivityEvent{Kind: EventWindowFocused, AppID: "steam.exe"})
	assert.Equal(t, ActionBlock, d.Action)
}

func TestDecide_BlocklistAllowsUnlistedApp(t *testing.T) {
	p := baseProfile()
	d := Decide(p, nil, 0, weekdayNoon(t), false, ActivityEvent{Kind: EventWindowFocused, AppID: "notepad.exe"})
	assert.Equal(t, ActionAllow, d.Action)
}

func TestDecide_ApplicationOverrideAllowsBlockedApp(t *testing.T) {
	p := baseProfile()
	now := weekdayNoon(t)
	exceptions := []*Exception{
		{
			Kind:      ExceptionApplicationOverride,
			Active:    true,
			ExpiresAt: now.Add(time.Hour),
			Detail:    ExceptionDetail{AppID: "steam.exe"},
		},
	}
	d := Decide(p, exceptions, 0, now, false, ActivityEvent{Kind: EventWindowFocused, AppID: "steam.exe"})
	assert.Equal(t, ActionAllow, d.Action)
}

func TestDecide_AllowlistBlocksUnlistedApp(t *testing.T) {
	p := baseProfile()
	p.Config.Applications = ApplicationsConfig{Mode: AppModeAllowlist, Allowed: []string{"scratch.exe"}}
	d := Decide(p, nil, 0, weekdayNoon(t), false, ActivityEvent{Kind: EventWindowFocused, AppID: "notepad.exe"})
	assert.Equal(t, ActionBlock, d.Action)
}

func TestDecide_AllowlistAllowsListedApp(t *testing.T) {
	p := baseProfile()
	p.Config.Applications = ApplicationsConfig{Mode: AppModeAllowlist, Allowed: []string{"scratch.exe"}}
	d := Decide(p, nil, 0, weekdayNoon(t), false, ActivityEvent{Kind: EventWindowFocused, AppID: "scratch.exe"})
	assert.Equal(t, ActionAllow, d.Action)
}

func TestDecide_AllowlistOverrideAllowsUnlistedApp(t *testing.T) {
	p := baseProfile()
	p.Config.Applications = ApplicationsConfig{Mode: AppModeAllowlist, Allowed: []string{"scratch.exe"}}
	now := weekdayNoon(t)
	exceptions := []*Exception{
		{
			Kind:      ExceptionApplicationOverride,
			Active:    true,
			ExpiresAt: now.Add(time.Hour),
			Detail:    ExceptionDetail{AppID: "notepad.exe"},
		},
	}
	d := Decide(p, exceptions, 0, now, false, ActivityEvent{Kind: EventWindowFocused, AppID: "notepad.exe"})
	assert.Equal(t, ActionAllow, d.Action)
}

func TestDecide_ProcessStartedUsesExecutableBasename(t *testing.T) {
	p := baseProfile()
	d := Decide(p, nil, 0, weekdayNoon(t), false, ActivityEvent{Kind: EventProcessStarted, Executable: "/usr/bin/steam.exe"})
	assert.Equal(t, ActionBlock, d.Action, "basename of the executable path must be matched against the blocklist")
}

func TestFindLiveException_MostRecentWins(t *testing.T) {
	now := weekdayNoon(t)
	older := &Exception{
		Kind:      ExceptionApplicationOverride,
		Active:    true,
		ExpiresAt: now.Add(time.Hour),
		GrantedAt: now.Add(-2 * time.Hour),
		Detail:    ExceptionDetail{AppID: "steam.exe"},
	}
	newer := &Exception{
		Kind:      ExceptionApplicationOverride,
		Active:    true,
		ExpiresAt: now.Add(time.Hour),
		GrantedAt: now.Add(-1 * time.Hour),
		Detail:    ExceptionDetail{AppID: "steam.exe"},
	}
	got := findLiveException([]*Exception{older, newer}, ExceptionApplicationOverride, "steam.exe", now)
	assert.Same(t, newer, got)
}

func TestFindLiveException_IgnoresExpired(t *testing.T) {
	now := weekdayNoon(t)
	expired := &Exception{
		Kind:      ExceptionApplicationOverride,
		Active:    true,
		ExpiresAt: now.Add(-time.Minute),
		Detail:    ExceptionDetail{AppID: "steam.exe"},
	}
	got := findLiveException([]*Exception{expired}, ExceptionApplicationOverride, "steam.exe", now)
	assert.Nil(t, got)
}

func TestFindLiveException_IgnoresRevoked(t *testing.T) {
	now := weekdayNoon(t)
	revoked := &Exception{
		Kind:      ExceptionApplicationOverride,
		Active:    false,
		ExpiresAt: now.Add(time.Hour),
		Detail:    ExceptionDetail{AppID: "steam.exe"},
	}
	got := findLiveException([]*Exception{revoked}, ExceptionApplicationOverride, "steam.exe", now)
	assert.Nil(t, got)
}

func TestEffectiveWindows_OverrideExtendsRatherThanReplaces(t *testing.T) {
	now := weekdayNoon(t)
	base := []TimeWindow{{Start: "08:00", End: "20:00"}}
	exceptions := []*Exception{
		{
			Kind:      ExceptionTimeWindowOverride,
			Active:    true,
			ExpiresAt: now.Add(time.Hour),
			Detail:    ExceptionDetail{WindowStart: "21:00", WindowEnd: "22:00"},
		},
	}
	out := effectiveWindows(base, exceptions, now)
	assert.Len(t, out, 2, "the base window must survive alongside the override's window")
	assert.Contains(t, out, TimeWindow{Start: "08:00", End: "20:00"})
	assert.Contains(t, out, TimeWindow{Start: "21:00", End: "22:00"})
}

func TestDailyLimitSeconds_WeekdayBase(t *testing.T) {
	weekday := weekdayNoon(t)
	cfg := ScreenTimeConfig{DailyLimitMinutes: 60, WeekendBonusMinutes: 30}
	assert.Equal(t, int64(3600), DailyLimitSeconds(cfg, nil, weekday))
}

func TestDailyLimitSeconds_ExpiredExceptionIgnored(t *testing.T) {
	now := weekdayNoon(t)
	cfg := ScreenTimeConfig{DailyLimitMinutes: 60}
	exceptions := []*Exception{
		{Kind: ExceptionScreenTimeExtension, Active: true, ExpiresAt: now.Add(-time.Minute), Detail: ExceptionDetail{ExtraMinutes: 20}},
	}
	assert.Equal(t, int64(3600), DailyLimitSeconds(cfg, exceptions, now))
}

func TestDailyLimitSeconds_StacksWeekendBonusAndException(t *testing.T) {
	saturday, err := time.Parse("2006-01-02 15:04", "2026-08-01 12:00")
	assert.NoError(t, err)
	cfg := ScreenTimeConfig{DailyLimitMinutes: 60, WeekendBonusMinutes: 30}
	exceptions := []*Exception{
		{
			Kind:      ExceptionScreenTimeExtension,
			Active:    true,
			ExpiresAt: saturday.Add(time.Hour),
			Detail:    ExceptionDetail{ExtraMinutes: 15},
		},
	}
	// 60 base + 30 weekend + 15 exception = 105 minutes = 6300s.
	assert.Equal(t, int64(6300), DailyLimitSeconds(cfg, exceptions, saturday))
}
