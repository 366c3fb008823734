package core

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"dayguard/internal/apperr"
	"dayguard/internal/domain"
	"dayguard/internal/idgen"
	"dayguard/internal/storage"
)

const (
	activeProfileSettingKey = "active_profile_id"
	monitorHeartbeatTimeout = 30 * time.Second
)

// HolidayFunc reports whether t falls on a configured holiday, selecting
// the holiday window set in the time-window evaluator. Defaults to "never
// a holiday".
type HolidayFunc func(t time.Time) bool

// Supervisor owns the single "active profile / active session" cell, the
// in-memory monitor heartbeat map, and the tamper flag: a reader-preferring
// lock, no await across a held lock, and save-then-notify ordering.
type Supervisor struct {
	store      storage.Storage
	accountant *Accountant
	exceptions *ExceptionStore
	notify     Notifier
	holiday    HolidayFunc

	mu            sync.RWMutex
	activeProfile *domain.Profile
	activeSession *domain.Session

	hbMu            sync.RWMutex
	heartbeats      map[string]time.Time
	tamperDetected  bool
}

func NewSupervisor(store storage.Storage, accountant *Accountant, exceptions *ExceptionStore, notify Notifier, holiday HolidayFunc) *Supervisor {
	if holiday == nil {
		holiday = func(time.Time) bool { return false }
	}
	return &Supervisor{
		store:      store,
		accountant: accountant,
		exceptions: exceptions,
		notify:     notify,
		holiday:    holiday,
		heartbeats: make(map[string]time.Time),
	}
}

// Restore reloads the active-profile pointer from daemon_settings and opens
// its session cell from storage, called once at startup.
func (s *Supervisor) Restore(ctx context.Context) error {
	id, ok, err := s.store.GetSetting(ctx, activeProfileSettingKey)
	if err != nil {
		return apperr.Storage(err, "reading active_profile_id")
	}
	if !ok || id == "" {
		return nil
	}
	profile, err := s.store.GetProfile(ctx, id)
	if err != nil {
		return apperr.Storage(err, "loading active profile")
	}
	if profile == nil {
		return nil
	}
	session, err := s.store.GetOpenSession(ctx, id)
	if err != nil {
		return apperr.Storage(err, "loading open session")
	}

	s.mu.Lock()
	s.activeProfile = profile
	s.activeSession = session
	s.mu.Unlock()
	return nil
}

// SetActiveProfile loads the profile, opens a fresh session row, swaps the
// cells, and persists the pointer. Idempotent with respect to the same id:
// it always opens a fresh session.
func (s *Supervisor) SetActiveProfile(ctx context.Context, id string, now time.Time) (*domain.Profile, error) {
	profile, err := s.store.GetProfile(ctx, id)
	if err != nil {
		return nil, apperr.Storage(err, "loading profile %s", id)
	}
	if profile == nil {
		return nil, apperr.NotFound("profile %s not found", id)
	}

	s.mu.Lock()
	prevSession := s.activeSession
	s.mu.Unlock()
	if prevSession != nil && prevSession.IsOpen() {
		if err := s.closeSession(ctx, prevSession, now, domain.SessionEndReplaced); err != nil {
			return nil, err
		}
	}

	session := &domain.Session{
		ID:        idgen.NewSession(),
		ProfileID: id,
		StartTime: now,
	}
	if err := s.store.OpenSession(ctx, session); err != nil {
		return nil, apperr.Storage(err, "opening session for profile %s", id)
	}
	if err := s.store.SetSetting(ctx, activeProfileSettingKey, id); err != nil {
		return nil, apperr.Storage(err, "persisting active_profile_id")
	}

	s.mu.Lock()
	s.activeProfile = profile
	s.activeSession = session
	s.mu.Unlock()

	return profile, nil
}

// Deactivate closes the current session (end_time, end_reason, aggregate
// usage counters from the accountant) and clears the cells.
func (s *Supervisor) Deactivate(ctx context.Context, reason domain.SessionEndReason, now time.Time) error {
	s.mu.Lock()
	session := s.activeSession
	s.mu.Unlock()
	if session == nil || !session.IsOpen() {
		return nil
	}
	if err := s.closeSession(ctx, session, now, reason); err != nil {
		return err
	}
	s.mu.Lock()
	s.activeProfile = nil
	s.activeSession = nil
	s.mu.Unlock()
	return nil
}

func (s *Supervisor) closeSession(ctx context.Context, session *domain.Session, now time.Time, reason domain.SessionEndReason) error {
	used, err := s.accountant.UsedSeconds(ctx, session.ProfileID, now)
	if err != nil {
		used = 0
	}
	if err := s.store.CloseSession(ctx, session.ID, now, reason, used); err != nil {
		return apperr.Storage(err, "closing session %s", session.ID)
	}
	return nil
}

// ActiveProfile returns the current active profile, or nil.
func (s *Supervisor) ActiveProfile() *domain.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeProfile
}

// ActiveProfileID implements middleware.ActiveProfileChecker.
func (s *Supervisor) ActiveProfileID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.activeProfile == nil {
		return "", false
	}
	return s.activeProfile.ID, true
}

// ActiveSession returns the current active session, or nil.
func (s *Supervisor) ActiveSession() *domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeSession
}

// ActivityReport is the parsed envelope of report_activity's JSON input.
type ActivityReport struct {
	ID              string          `json:"id"`
	ProfileID       string          `json:"profile_id"`
	Timestamp       time.Time       `json:"timestamp"`
	ActivityType    string          `json:"activity_type"`
	DurationSeconds int64           `json:"duration_seconds"`
	Application     *AppDetail      `json:"application,omitempty"`
	WindowTitle     *string         `json:"window_title,omitempty"`
}

// AppDetail is the optional application sub-object of an activity report.
type AppDetail struct {
	AppID    string  `json:"app_id"`
	AppName  string  `json:"app_name"`
	Category *string `json:"category,omitempty"`
}

// ReportActivity parses json, binds it to the active session if present
// (else to the reported profile_id as session key), and writes the
// activity row. Unknown activity_type tags are rejected.
func (s *Supervisor) ReportActivity(ctx context.Context, raw []byte) error {
	var report ActivityReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return apperr.Input("malformed activity report: %v", err)
	}
	switch domain.ActivityCategory(report.ActivityType) {
	case domain.ActivityApplicationUsage, domain.ActivityWebBrowsing, domain.ActivityTerminalCommand:
	default:
		return apperr.Input("unknown activity_type %q", report.ActivityType)
	}
	if report.ProfileID == "" {
		return apperr.Input("activity report missing profile_id")
	}

	s.mu.RLock()
	session := s.activeSession
	s.mu.RUnlock()

	sessionID := report.ProfileID
	if session != nil && session.ProfileID == report.ProfileID {
		sessionID = session.ID
	}

	activity := &domain.Activity{
		ID:              idgen.NewActivity(),
		SessionID:       sessionID,
		ProfileID:       report.ProfileID,
		Timestamp:       report.Timestamp,
		ActivityType:    domain.ActivityCategory(report.ActivityType),
		DurationSeconds: report.DurationSeconds,
	}
	if report.Application != nil {
		activity.AppID = report.Application.AppID
		activity.AppName = report.Application.AppName
		activity.Category = report.Application.Category
	}
	if report.WindowTitle != nil {
		activity.WindowTitle = report.WindowTitle
	}

	if err := s.store.InsertActivity(ctx, &domain.Activity{
		ID: activity.ID, SessionID: activity.SessionID, ProfileID: activity.ProfileID,
		Timestamp: activity.Timestamp, ActivityType: activity.ActivityType,
		AppID: activity.AppID, AppName: activity.AppName, Category: activity.Category,
		WindowTitle: activity.WindowTitle, DurationSeconds: activity.DurationSeconds,
	}); err != nil {
		return apperr.Storage(err, "writing activity")
	}

	return nil
}

// SendHeartbeat upserts a monitor's last-seen timestamp and clears the
// tamper flag if it was set.
func (s *Supervisor) SendHeartbeat(monitorID string, now time.Time) {
	s.hbMu.Lock()
	s.heartbeats[monitorID] = now
	s.tamperDetected = false
	s.hbMu.Unlock()
}

// CheckMonitorHealth trips the tamper flag if every monitor has gone silent
// past the 30-second timeout, returning the post-check flag value.
func (s *Supervisor) CheckMonitorHealth(now time.Time) bool {
	s.hbMu.Lock()
	defer s.hbMu.Unlock()

	if len(s.heartbeats) == 0 {
		s.tamperDetected = true
		return false
	}
	allStale := true
	for _, last := range s.heartbeats {
		if now.Sub(last) <= monitorHeartbeatTimeout {
			allStale = false
			break
		}
	}
	if allStale {
		s.tamperDetected = true
		return false
	}
	return true
}

// TamperDetected reports the current value of the in-memory tamper flag.
func (s *Supervisor) TamperDetected() bool {
	s.hbMu.RLock()
	defer s.hbMu.RUnlock()
	return s.tamperDetected
}

// Decide composes the accountant, time-window evaluator, exception store,
// and active profile into one policy decision for event, fetching its own
// inputs so the caller need not know the assembly order. Storage errors
// surface as errors, never as Allow.
func (s *Supervisor) Decide(ctx context.Context, event domain.ActivityEvent, now time.Time) (domain.PolicyDecision, error) {
	profile := s.ActiveProfile()
	if profile == nil {
		return domain.Allow("no active profile"), nil
	}

	exceptions, err := s.exceptions.LiveExceptions(ctx, profile.ID, now)
	if err != nil {
		return domain.PolicyDecision{}, err
	}
	used, err := s.accountant.UsedSeconds(ctx, profile.ID, now)
	if err != nil {
		return domain.PolicyDecision{}, err
	}

	holiday := s.holiday(now)
	decision := domain.Decide(profile, exceptions, used, now, holiday, event)

	if domain.ShouldWarn(profile.Config.ScreenTime.Windows, now, holiday, domain.DefaultWarningMinutes) {
		s.notify.Notify(ctx, domain.Notification{
			Title:   "Screen time window ending soon",
			Body:    "the current time window closes shortly",
			Urgency: domain.SeverityToUrgency(domain.SeverityWarning),
		})
	}

	return decision, nil
}
