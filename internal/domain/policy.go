package domain

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"
)

// findLiveException returns the most recently granted live exception of kind
// matching resource (empty resource means "resource-less", e.g. ScreenTime/
// TimeWindow overrides), or nil. Ties are broken by GrantedAt descending,
// mirroring "most recent active matching exception".
func findLiveException(exceptions []*Exception, kind ExceptionKind, resource string, now time.Time) *Exception {
	var candidates []*Exception
	for _, e := range exceptions {
		if e.Kind != kind || !e.IsLive(now) {
			continue
		}
		if resource != "" && e.Detail.Resource(kind) != resource {
			continue
		}
		candidates = append(candidates, e)
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].GrantedAt.After(candidates[j].GrantedAt)
	})
	return candidates[0]
}

// effectiveWindows layers any active TimeWindowOverride exceptions as
// additional open intervals on top of the profile's configured windows for
// today's day-kind: an override extends the window set rather than
// replacing it.
func effectiveWindows(base []TimeWindow, exceptions []*Exception, now time.Time) []TimeWindow {
	out := append([]TimeWindow(nil), base...)
	for _, e := range exceptions {
		if e.Kind != ExceptionTimeWindowOverride || !e.IsLive(now) {
			continue
		}
		if e.Detail.WindowStart != "" && e.Detail.WindowEnd != "" {
			out = append(out, TimeWindow{Start: e.Detail.WindowStart, End: e.Detail.WindowEnd})
		} else {
			// No explicit interval: the override covers "now" through its
			// own expiry, extending admission until the exception lapses.
			out = append(out, TimeWindow{
				Start: "00:00",
				End:   minutesToHHMM(e.ExpiresAt.Hour()*60 + e.ExpiresAt.Minute()),
			})
		}
	}
	return out
}

func minutesToHHMM(m int) string {
	if m > 24*60-1 {
		m = 24*60 - 1
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// DailyLimitSeconds computes a profile's screen-time budget for now's local
// calendar day: the configured daily limit, plus the weekend bonus on
// Saturday/Sunday, plus any live ScreenTimeExtension exceptions. Shared by
// the policy engine's limit check and by every daily-usage report so the
// two never drift apart.
func DailyLimitSeconds(cfg ScreenTimeConfig, exceptions []*Exception, now time.Time) int64 {
	base := int64(cfg.DailyLimitMinutes) * 60
	wd := now.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		base += int64(cfg.WeekendBonusMinutes) * 60
	}
	for _, e := range exceptions {
		if e.Kind == ExceptionScreenTimeExtension && e.IsLive(now) {
			base += int64(e.Detail.ExtraMinutes) * 60
		}
	}
	return base
}

// Decide is the policy decision engine: a pure function over its inputs.
// The caller is responsible for fetching profile, exceptions, and
// used-seconds from storage; Decide itself touches no I/O, so the same
// tuple always yields the same decision and rule ordering is fixed.
func Decide(profile *Profile, exceptions []*Exception, usedSeconds int64, now time.Time, holiday bool, event ActivityEvent) PolicyDecision {
	if profile == nil {
		return Allow("no active profile")
	}

	var appID string
	switch event.Kind {
	case EventWindowFocused:
		appID = event.AppID
	case EventProcessStarted:
		appID = filepath.Base(event.Executable)
	case EventNetworkConnection:
		return Allow("network default-allow")
	default:
		appID = event.AppID
	}

	windows := effectiveWindows(nil, exceptions, now)
	cfg := profile.Config.ScreenTime
	kind := SelectDayKind(now, holiday)
	var configured []TimeWindow
	switch kind {
	case DayHoliday:
		configured = cfg.Windows.Holiday
	case DayWeekend:
		configured = cfg.Windows.Weekend
	default:
		configured = cfg.Windows.Weekday
	}
	windows = append(windows, configured...)

	wd := Evaluate(WindowSet{Weekday: windows, Weekend: windows, Holiday: windows}, now, holiday)
	if !wd.Allowed {
		if findLiveException(exceptions, ExceptionTimeWindowOverride, "", now) == nil {
			return Block("outside allowed time window")
		}
	}

	limit := DailyLimitSeconds(cfg, exceptions, now)
	if usedSeconds >= limit {
		return Block("daily screen time limit exceeded: used >= limit minutes")
	}

	switch cfg.Applications.Mode {
	case AppModeAllowlist:
		if contains(cfg.Applications.Allowed, appID) || findLiveException(exceptions, ExceptionApplicationOverride, appID, now) != nil {
			return Allow("app in allowlist")
		}
		return Block("app not in allowlist")
	case AppModeBlocklist:
		if contains(cfg.Applications.Blocked, appID) && findLiveException(exceptions, ExceptionApplicationOverride, appID, now) == nil {
			return Block("app blocked by policy")
		}
		return Allow("app not blocked")
	default:
		return Allow("app not blocked")
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
