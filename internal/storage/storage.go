// Package storage defines the persistence contract that dayguard's core
// services program against; internal/storage/sqlite provides the one
// concrete implementation.
package storage

import (
	"context"
	"time"

	"dayguard/internal/domain"
)

// Storage is a transactional store for profiles, sessions, activities,
// exceptions, approval requests, audit log rows, and derived summaries.
// Implementations expose typed queries rather than raw SQL to callers and
// surface failures as apperr-kinded errors.
type Storage interface {
	CreateProfile(ctx context.Context, p *domain.Profile) error
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
	ListProfiles(ctx context.Context) ([]*domain.Profile, error)
	UpdateProfile(ctx context.Context, p *domain.Profile) error
	DeactivateProfile(ctx context.Context, id string) error

	OpenSession(ctx context.Context, s *domain.Session) error
	CloseSession(ctx context.Context, sessionID string, endTime time.Time, reason domain.SessionEndReason, usedSeconds int64) error
	GetOpenSession(ctx context.Context, profileID string) (*domain.Session, error)
	GetSession(ctx context.Context, id string) (*domain.Session, error)

	InsertActivity(ctx context.Context, a *domain.Activity) error
	UsedSecondsOnDate(ctx context.Context, profileID string, localDate time.Time) (int64, error)
	ListActivities(ctx context.Context, profileID string, from, to time.Time) ([]*domain.Activity, error)

	CreateException(ctx context.Context, e *domain.Exception) error
	GetLiveExceptions(ctx context.Context, profileID string, now time.Time) ([]*domain.Exception, error)
	CheckActiveException(ctx context.Context, profileID string, kind domain.ExceptionKind, resource string, now time.Time) (*domain.Exception, error)
	MarkExceptionUsed(ctx context.Context, id string) error
	RevokeException(ctx context.Context, id string) error
	SweepExpiredExceptions(ctx context.Context, now time.Time) (int64, error)
	ListExceptions(ctx context.Context, profileID string, limit int) ([]*domain.Exception, error)
	ExceptionUsageStats(ctx context.Context, profileID string, since time.Time, now time.Time) (total, used, active int64, err error)

	CreateApprovalRequest(ctx context.Context, r *domain.ApprovalRequest) error
	GetApprovalRequest(ctx context.Context, id string) (*domain.ApprovalRequest, error)
	ListPendingRequests(ctx context.Context, profileID string) ([]*domain.ApprovalRequest, error)
	// ApproveRequestTx transitions the request to Approved and inserts exc in
	// a single transaction: either both land, or neither.
	ApproveRequestTx(ctx context.Context, requestID, reviewedBy, message string, exc *domain.Exception) error
	DenyRequest(ctx context.Context, requestID, reviewedBy, message string) error

	InsertAudit(ctx context.Context, e *domain.AuditLogEntry) error
	ListAudit(ctx context.Context, since time.Time, limit int) ([]*domain.AuditLogEntry, error)

	UpsertDailySummary(ctx context.Context, s *domain.DailySummary) error
	UpsertWeeklySummary(ctx context.Context, s *domain.WeeklySummary) error
	GetDailySummary(ctx context.Context, profileID, date string) (*domain.DailySummary, error)
	GetWeeklySummary(ctx context.Context, profileID, weekStart string) (*domain.WeeklySummary, error)
	ListActiveSessionsForRollup(ctx context.Context) ([]*domain.Session, error)

	SetSetting(ctx context.Context, key, value string) error
	GetSetting(ctx context.Context, key string) (string, bool, error)

	Close() error
}
