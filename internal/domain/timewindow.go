package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultWarningMinutes = 5
	DefaultGraceMinutes   = 2
)

// minuteOfDay parses "HH:MM" into minutes since local midnight.
func minuteOfDay(hhmm string) (int, error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("bad time format %q, want HH:MM", hhmm)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("bad time format %q, want HH:MM", hhmm)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("bad time format %q, want HH:MM", hhmm)
	}
	return h*60 + m, nil
}

// ValidateWindow rejects malformed or empty (start==end) windows.
func ValidateWindow(w TimeWindow) error {
	start, err := minuteOfDay(w.Start)
	if err != nil {
		return err
	}
	end, err := minuteOfDay(w.End)
	if err != nil {
		return err
	}
	if start >= end {
		return fmt.Errorf("window start %q must be before end %q", w.Start, w.End)
	}
	return nil
}

// WindowsOverlap reports whether [a.Start,a.End) and [b.Start,b.End) overlap.
// Adjacent windows (a.End == b.Start) do not overlap.
func WindowsOverlap(a, b TimeWindow) bool {
	as, _ := minuteOfDay(a.Start)
	ae, _ := minuteOfDay(a.End)
	bs, _ := minuteOfDay(b.Start)
	be, _ := minuteOfDay(b.End)
	return as < be && bs < ae
}

// AddWindow inserts w into existing, rejecting it if it overlaps any window
// already present, and returns the list sorted by start.
func AddWindow(existing []TimeWindow, w TimeWindow) ([]TimeWindow, error) {
	if err := ValidateWindow(w); err != nil {
		return nil, err
	}
	for _, other := range existing {
		if WindowsOverlap(w, other) {
			return nil, fmt.Errorf("window %s-%s overlaps existing window %s-%s", w.Start, w.End, other.Start, other.End)
		}
	}
	out := make([]TimeWindow, 0, len(existing)+1)
	out = append(out, existing...)
	out = append(out, w)
	sort.Slice(out, func(i, j int) bool {
		si, _ := minuteOfDay(out[i].Start)
		sj, _ := minuteOfDay(out[j].Start)
		return si < sj
	})
	return out, nil
}

// RemoveWindow drops the window exactly matching w (by start and end).
func RemoveWindow(existing []TimeWindow, w TimeWindow) []TimeWindow {
	out := make([]TimeWindow, 0, len(existing))
	for _, e := range existing {
		if e.Start == w.Start && e.End == w.End {
			continue
		}
		out = append(out, e)
	}
	return out
}

// DayKind selects which of a WindowSet's three lists governs an instant.
type DayKind string

const (
	DayWeekday DayKind = "weekday"
	DayWeekend DayKind = "weekend"
	DayHoliday DayKind = "holiday"
)

// SelectDayKind implements window-set selection: holiday overrides
// weekend overrides weekday.
func SelectDayKind(t time.Time, holiday bool) DayKind {
	if holiday {
		return DayHoliday
	}
	wd := t.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return DayWeekend
	}
	return DayWeekday
}

func windowsFor(ws WindowSet, kind DayKind) []TimeWindow {
	switch kind {
	case DayHoliday:
		return ws.Holiday
	case DayWeekend:
		return ws.Weekend
	default:
		return ws.Weekday
	}
}

// WindowDecision is the result of evaluating an instant against a WindowSet.
type WindowDecision struct {
	Allowed  bool
	Reason   string
	NextOpen *time.Time
}

// Evaluate admits an instant t iff it falls in [start,end) of some window
// of the selected day-kind. On deny it computes next_open as the earliest
// later start today, falling back to tomorrow's first window of the same
// kind.
func Evaluate(ws WindowSet, t time.Time, holiday bool) WindowDecision {
	kind := SelectDayKind(t, holiday)
	windows := windowsFor(ws, kind)

	if len(windows) == 0 {
		return WindowDecision{Allowed: false, Reason: "No time windows configured"}
	}

	nowMinute := t.Hour()*60 + t.Minute()
	for _, w := range windows {
		start, errS := minuteOfDay(w.Start)
		end, errE := minuteOfDay(w.End)
		if errS != nil || errE != nil {
			continue
		}
		if nowMinute >= start && nowMinute < end {
			return WindowDecision{Allowed: true, Reason: "within configured time window"}
		}
	}

	// Denied: find earliest window start strictly after now, today.
	var best *TimeWindow
	var bestMinute int
	for i, w := range windows {
		start, err := minuteOfDay(w.Start)
		if err != nil {
			continue
		}
		if start > nowMinute && (best == nil || start < bestMinute) {
			best = &windows[i]
			bestMinute = start
		}
	}

	if best != nil {
		next := dateAt(t, bestMinute)
		return WindowDecision{Allowed: false, Reason: formatDenyReason(windows), NextOpen: &next}
	}

	// Nothing left today: fall back to tomorrow's first window of this kind.
	if len(windows) > 0 {
		sorted := append([]TimeWindow(nil), windows...)
		sort.Slice(sorted, func(i, j int) bool {
			si, _ := minuteOfDay(sorted[i].Start)
			sj, _ := minuteOfDay(sorted[j].Start)
			return si < sj
		})
		startMinute, err := minuteOfDay(sorted[0].Start)
		if err == nil {
			tomorrow := t.AddDate(0, 0, 1)
			next := dateAt(tomorrow, startMinute)
			return WindowDecision{Allowed: false, Reason: formatDenyReason(windows), NextOpen: &next}
		}
	}

	return WindowDecision{Allowed: false, Reason: formatDenyReason(windows)}
}

func dateAt(day time.Time, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), minute/60, minute%60, 0, 0, day.Location())
}

func formatDenyReason(windows []TimeWindow) string {
	var b strings.Builder
	b.WriteString("outside allowed time window, configured windows: ")
	for i, w := range windows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(w.Start)
		b.WriteString("-")
		b.WriteString(w.End)
	}
	return b.String()
}

// ShouldWarn reports whether t falls in the last warningMinutes of some
// window of the day's selected kind.
func ShouldWarn(ws WindowSet, t time.Time, holiday bool, warningMinutes int) bool {
	if warningMinutes <= 0 {
		warningMinutes = DefaultWarningMinutes
	}
	kind := SelectDayKind(t, holiday)
	windows := windowsFor(ws, kind)
	nowMinute := t.Hour()*60 + t.Minute()
	for _, w := range windows {
		end, err := minuteOfDay(w.End)
		if err != nil {
			continue
		}
		if nowMinute >= end-warningMinutes && nowMinute < end {
			return true
		}
	}
	return false
}
