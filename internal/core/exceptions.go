package core

import (
	"context"
	"time"

	"dayguard/internal/apperr"
	"dayguard/internal/domain"
	"dayguard/internal/idgen"
	"dayguard/internal/storage"
)

// ExceptionStore manages time-bounded, typed overrides attached to a
// profile, with lookup by (profile, type, resource).
type ExceptionStore struct {
	store storage.Storage
}

func NewExceptionStore(store storage.Storage) *ExceptionStore {
	return &ExceptionStore{store: store}
}

// Grant inserts a fresh exception with active=true, used=false.
func (s *ExceptionStore) Grant(ctx context.Context, profileID string, kind domain.ExceptionKind, detail domain.ExceptionDetail, grantedBy, reason string, now, expiresAt time.Time) (*domain.Exception, error) {
	if !expiresAt.After(now) {
		return nil, apperr.Input("exception expires_at must be after granted_at")
	}
	exc := &domain.Exception{
		ID:        idgen.NewException(),
		ProfileID: profileID,
		Kind:      kind,
		Detail:    detail,
		GrantedBy: grantedBy,
		GrantedAt: now,
		ExpiresAt: expiresAt,
		Reason:    reason,
		Active:    true,
		Used:      false,
	}
	if err := s.store.CreateException(ctx, exc); err != nil {
		return nil, apperr.Storage(err, "creating exception")
	}
	return exc, nil
}

// CheckActive returns the most recent row with active=true, expires_at>now,
// matching kind and resource (empty resource for resource-less kinds). If
// found and one-shot in nature, the caller is responsible for marking it
// used via MarkUsed after acting on it.
func (s *ExceptionStore) CheckActive(ctx context.Context, profileID string, kind domain.ExceptionKind, resource string, now time.Time) (*domain.Exception, error) {
	exc, err := s.store.CheckActiveException(ctx, profileID, kind, resource, now)
	if err != nil {
		return nil, apperr.Storage(err, "checking active exception")
	}
	return exc, nil
}

// LiveExceptions returns every currently-live exception for a profile, used
// by the policy engine's caller to assemble its decision input.
func (s *ExceptionStore) LiveExceptions(ctx context.Context, profileID string, now time.Time) ([]*domain.Exception, error) {
	excs, err := s.store.GetLiveExceptions(ctx, profileID, now)
	if err != nil {
		return nil, apperr.Storage(err, "listing live exceptions")
	}
	return excs, nil
}

// MarkUsed flips the one-shot "used" flag after a positive lookup.
func (s *ExceptionStore) MarkUsed(ctx context.Context, id string) error {
	if err := s.store.MarkExceptionUsed(ctx, id); err != nil {
		return apperr.Storage(err, "marking exception %s used", id)
	}
	return nil
}

// Revoke sets active=false; terminal.
func (s *ExceptionStore) Revoke(ctx context.Context, id string) error {
	if err := s.store.RevokeException(ctx, id); err != nil {
		return apperr.Storage(err, "revoking exception %s", id)
	}
	return nil
}

// Sweep clears active=true AND expires_at<=now to active=false. Runnable on
// demand; policy decisions never rely on it having run.
func (s *ExceptionStore) Sweep(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.store.SweepExpiredExceptions(ctx, now)
	if err != nil {
		return 0, apperr.Storage(err, "sweeping expired exceptions")
	}
	return n, nil
}

func (s *ExceptionStore) List(ctx context.Context, profileID string, limit int) ([]*domain.Exception, error) {
	excs, err := s.store.ListExceptions(ctx, profileID, limit)
	if err != nil {
		return nil, apperr.Storage(err, "listing exceptions")
	}
	return excs, nil
}

// UsageStats returns (total, used, active) exception counts since the given
// time, used by get_weekly_report to annotate exception activity. It isn't
// exposed as its own operation.
func (s *ExceptionStore) UsageStats(ctx context.Context, profileID string, since, now time.Time) (total, used, active int64, err error) {
	total, used, active, err = s.store.ExceptionUsageStats(ctx, profileID, since, now)
	if err != nil {
		return 0, 0, 0, apperr.Storage(err, "computing exception usage stats")
	}
	return total, used, active, nil
}

// ExceptionForRequest maps a RequestKind to the ExceptionKind, default
// duration, and ExceptionDetail it produces on approval. A missing or
// unparsable requested end time falls back to a one-year far-future
// sentinel rather than failing the approval.
func ExceptionForRequest(req *domain.ApprovalRequest, now time.Time) (domain.ExceptionKind, domain.ExceptionDetail, time.Time) {
	d := req.Details
	switch req.RequestType {
	case domain.RequestApplicationAccess:
		return domain.ExceptionApplicationOverride, domain.ExceptionDetail{AppID: d.AppID}, now.Add(24 * time.Hour)
	case domain.RequestWebsiteAccess:
		return domain.ExceptionWebsiteOverride, domain.ExceptionDetail{Domain: d.Domain}, now.Add(24 * time.Hour)
	case domain.RequestScreenTimeExtension:
		return domain.ExceptionScreenTimeExtension, domain.ExceptionDetail{ExtraMinutes: d.RequestedMinutes}, endOfLocalDay(now)
	case domain.RequestTimeExtension:
		expires := now.Add(365 * 24 * time.Hour)
		if t, err := time.ParseInLocation(time.RFC3339, d.RequestedEndTime, now.Location()); err == nil {
			expires = t
		}
		return domain.ExceptionTimeWindowOverride, domain.ExceptionDetail{WindowEnd: d.RequestedEndTime}, expires
	case domain.RequestTerminalCommand:
		return domain.ExceptionTerminalCommandOverride, domain.ExceptionDetail{Command: d.Command}, now.Add(time.Hour)
	default:
		return domain.ExceptionCustomOverride, domain.ExceptionDetail{Description: d.Description}, now.Add(time.Hour)
	}
}

func endOfLocalDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
}
