// Package domain holds dayguard's entity types and the pure policy/time
// logic that needs no storage dependency: the policy decision engine and
// the time-window evaluator. Storage-backed services built on top of
// these types live in internal/core.
package domain

import (
	"encoding/json"
	"time"
)

// AgeGroup is one of the three configured age bands for a Profile.
type AgeGroup string

const (
	AgeGroupChild AgeGroup = "child" // under 10
	AgeGroupTween AgeGroup = "tween" // 10-13
	AgeGroupTeen  AgeGroup = "teen"  // 14-17
)

// AppMode selects whether Applications.Allowed or Applications.Blocked governs.
type AppMode string

const (
	AppModeAllowlist AppMode = "allowlist"
	AppModeBlocklist AppMode = "blocklist"
)

// TimeWindow is a naive-local half-open interval [Start, End) in "HH:MM".
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// WindowSet holds the three day-kind window lists a profile can configure.
type WindowSet struct {
	Weekday []TimeWindow `json:"weekday"`
	Weekend []TimeWindow `json:"weekend"`
	Holiday []TimeWindow `json:"holiday"`
}

// ScreenTimeConfig is the accounting half of a profile's configuration.
type ScreenTimeConfig struct {
	DailyLimitMinutes   uint32    `json:"daily_limit_minutes"`
	WeekendBonusMinutes uint32    `json:"weekend_bonus_minutes"`
	ExemptCategories    []string  `json:"exempt_categories"`
	Windows             WindowSet `json:"windows"`
}

// ApplicationsConfig is the allow/block half of a profile's configuration.
type ApplicationsConfig struct {
	Mode             AppMode  `json:"mode"`
	Allowed          []string `json:"allowed"`
	Blocked          []string `json:"blocked"`
	BlockedCategories []string `json:"blocked_categories"`
}

// ProfileConfig is the opaque configuration blob for a profile, serialized
// as one JSON column and validated whenever it is read back from storage.
type ProfileConfig struct {
	ScreenTime        ScreenTimeConfig   `json:"screen_time"`
	Applications      ApplicationsConfig `json:"applications"`
	WebFiltering      json.RawMessage    `json:"web_filtering,omitempty"`
	TerminalFiltering json.RawMessage    `json:"terminal_filtering,omitempty"`
}

// DefaultProfileConfig returns a permissive-but-bounded starting configuration.
func DefaultProfileConfig() ProfileConfig {
	return ProfileConfig{
		ScreenTime: ScreenTimeConfig{
			DailyLimitMinutes:   120,
			WeekendBonusMinutes: 60,
			ExemptCategories:    []string{},
			Windows:             WindowSet{},
		},
		Applications: ApplicationsConfig{
			Mode:              AppModeBlocklist,
			Allowed:           []string{},
			Blocked:           []string{},
			BlockedCategories: []string{},
		},
	}
}

// Profile is a managed user.
type Profile struct {
	ID        string
	Name      string
	Username  *string
	AgeGroup  AgeGroup
	Birthday  *time.Time
	Config    ProfileConfig
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionEndReason enumerates why a Session was closed.
type SessionEndReason string

const (
	SessionEndDeactivated SessionEndReason = "deactivated"
	SessionEndShutdown    SessionEndReason = "shutdown"
	SessionEndReplaced    SessionEndReason = "replaced"
)

// Session is one continuous period of a profile being the active profile.
type Session struct {
	ID         string
	ProfileID  string
	StartTime  time.Time
	EndTime    *time.Time
	EndReason  *SessionEndReason
	UsedSeconds int64 // aggregate counter filled at close
}

func (s *Session) IsOpen() bool { return s.EndTime == nil }

// ActivityCategory is the tagged-union discriminator of an Activity report.
type ActivityCategory string

const (
	ActivityApplicationUsage ActivityCategory = "application_usage"
	ActivityWebBrowsing      ActivityCategory = "web_browsing"
	ActivityTerminalCommand  ActivityCategory = "terminal_command"
)

// Activity is one reported, append-only observation bound to a session.
type Activity struct {
	ID              string
	SessionID       string
	ProfileID       string
	Timestamp       time.Time
	ActivityType    ActivityCategory
	AppID           string
	AppName         string
	Category        *string
	WindowTitle     *string
	DurationSeconds int64
}

// ExceptionKind is the discriminator of the Exception type union.
type ExceptionKind string

const (
	ExceptionApplicationOverride   ExceptionKind = "application_override"
	ExceptionWebsiteOverride       ExceptionKind = "website_override"
	ExceptionScreenTimeExtension   ExceptionKind = "screen_time_extension"
	ExceptionTimeWindowOverride    ExceptionKind = "time_window_override"
	ExceptionTerminalCommandOverride ExceptionKind = "terminal_command_override"
	ExceptionCustomOverride        ExceptionKind = "custom_override"
)

// ExceptionDetail carries the per-kind payload of an Exception. Only the
// field matching Kind is meaningful; the others are zero.
type ExceptionDetail struct {
	AppID         string `json:"app_id,omitempty"`
	Domain        string `json:"domain,omitempty"`
	ExtraMinutes  int    `json:"extra_minutes,omitempty"`
	WindowKind    string `json:"window_kind,omitempty"` // weekday/weekend/holiday
	WindowStart   string `json:"window_start,omitempty"`
	WindowEnd     string `json:"window_end,omitempty"`
	Command       string `json:"command,omitempty"`
	Description   string `json:"description,omitempty"`
}

// Resource returns the lookup key used by check_active_exception's
// (profile, type, resource) dispatch; empty string means "resource-less".
func (d ExceptionDetail) Resource(kind ExceptionKind) string {
	switch kind {
	case ExceptionApplicationOverride:
		return d.AppID
	case ExceptionWebsiteOverride:
		return d.Domain
	default:
		return ""
	}
}

// Exception is a time-bounded, typed override attached to a profile.
type Exception struct {
	ID        string
	ProfileID string
	Kind      ExceptionKind
	Detail    ExceptionDetail
	GrantedBy string
	GrantedAt time.Time
	ExpiresAt time.Time
	Reason    string
	Active    bool
	Used      bool
}

// IsLive reports whether the exception is usable as of now: active and not
// yet expired. Policy decisions must use this predicate directly rather than
// rely on the background sweep having run.
func (e *Exception) IsLive(now time.Time) bool {
	return e.Active && e.ExpiresAt.After(now)
}

// RequestKind is the discriminator of the ApprovalRequest type union,
// parallel to ExceptionKind via the request-to-exception mapping table in
// ExceptionForRequest.
type RequestKind string

const (
	RequestApplicationAccess  RequestKind = "application_access"
	RequestWebsiteAccess      RequestKind = "website_access"
	RequestScreenTimeExtension RequestKind = "screen_time_extension"
	RequestTimeExtension      RequestKind = "time_extension"
	RequestTerminalCommand    RequestKind = "terminal_command"
	RequestCustom             RequestKind = "custom"
)

// RequestDetail carries the per-kind payload of an ApprovalRequest.
type RequestDetail struct {
	AppID             string `json:"app_id,omitempty"`
	URL               string `json:"url,omitempty"`
	Domain            string `json:"domain,omitempty"`
	RequestedMinutes  int    `json:"requested_minutes,omitempty"`
	RequestedEndTime  string `json:"requested_end_time,omitempty"` // RFC3339
	Command           string `json:"command,omitempty"`
	Risk              string `json:"risk,omitempty"`
	Reasons           []string `json:"reasons,omitempty"`
	Description       string `json:"description,omitempty"`
}

// RequestStatus is the ApprovalRequest state-machine position.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestDenied   RequestStatus = "denied"
	RequestExpired  RequestStatus = "expired"
)

// ApprovalRequest is a child-originated proposal for a future exception.
type ApprovalRequest struct {
	ID              string
	ProfileID       string
	RequestType     RequestKind
	Details         RequestDetail
	RequestedAt     time.Time
	Status          RequestStatus
	ReviewedBy      *string
	ReviewedAt      *time.Time
	ResponseMessage *string
}

// Actor identifies who performed an audited operation.
type Actor string

const (
	ActorParent Actor = "parent"
	ActorChild  Actor = "child"
	ActorSystem Actor = "system"
)

// AuditLogEntry is an append-only record of one authenticated operation.
type AuditLogEntry struct {
	ID         string
	Timestamp  time.Time
	Actor      Actor
	Action     string
	Resource   string
	ResourceID string
	Success    bool
	Details    string
}

// DailySummary is a derived, regenerable per-day aggregate.
type DailySummary struct {
	ProfileID      string
	Date           string // YYYY-MM-DD, local
	TotalSeconds   int64
	SessionCount   int
	ExceptionsUsed int
}

// WeeklySummary is a derived, regenerable per-week aggregate.
type WeeklySummary struct {
	ProfileID      string
	WeekStart      string // YYYY-MM-DD, Monday of the week, local
	TotalSeconds   int64
	SessionCount   int
	ExceptionsUsed int
}

// Action is the outcome of a policy decision.
type Action string

const (
	ActionAllow Action = "allow"
	ActionBlock Action = "block"
	ActionWarn  Action = "warn"
)

// PolicyDecision is the pure output of the policy engine's decide function.
type PolicyDecision struct {
	Action Action
	Reason string
}

func Allow(reason string) PolicyDecision { return PolicyDecision{Action: ActionAllow, Reason: reason} }
func Block(reason string) PolicyDecision { return PolicyDecision{Action: ActionBlock, Reason: reason} }
func Warn(reason string) PolicyDecision  { return PolicyDecision{Action: ActionWarn, Reason: reason} }

// ActivityEventKind discriminates the shapes decide() accepts.
type ActivityEventKind string

const (
	EventWindowFocused     ActivityEventKind = "window_focused"
	EventProcessStarted    ActivityEventKind = "process_started"
	EventNetworkConnection ActivityEventKind = "network_connection"
)

// ActivityEvent is the input to the policy decision engine.
type ActivityEvent struct {
	Kind       ActivityEventKind
	AppID      string // WindowFocused
	Executable string // ProcessStarted
	Host       string // NetworkConnection
}

// AlertSeverity classifies a condition the Notification Manager reports on.
type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityError    AlertSeverity = "error"
	SeverityCritical AlertSeverity = "critical"
)

// NotificationUrgency is the desktop-channel urgency level.
type NotificationUrgency string

const (
	UrgencyLow    NotificationUrgency = "low"
	UrgencyNormal NotificationUrgency = "normal"
	UrgencyHigh   NotificationUrgency = "high"
	UrgencyUrgent NotificationUrgency = "urgent"
)

// SeverityToUrgency maps an alert severity to a desktop notification
// urgency: Info->low, Warning->normal, Error->high, Critical->urgent.
func SeverityToUrgency(s AlertSeverity) NotificationUrgency {
	switch s {
	case SeverityWarning:
		return UrgencyNormal
	case SeverityError:
		return UrgencyHigh
	case SeverityCritical:
		return UrgencyUrgent
	default:
		return UrgencyLow
	}
}

// Notification is a one-shot message to a desktop channel.
type Notification struct {
	Title   string
	Body    string
	Urgency NotificationUrgency
	Icon    string
	Actions []string
}
