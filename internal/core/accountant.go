// Package core hosts the storage-backed services built on top of
// internal/domain's pure types: the screen-time accountant, the exception
// store, the approval workflow, and the profile/session supervisor, each a
// thin service layered over the storage interface.
package core

import (
	"context"
	"time"

	"dayguard/internal/apperr"
	"dayguard/internal/domain"
	"dayguard/internal/storage"
)

// Accountant aggregates per-profile wall-clock usage into "used today" /
// "remaining today", reading fresh from storage every call.
type Accountant struct {
	store storage.Storage
}

func NewAccountant(store storage.Storage) *Accountant {
	return &Accountant{store: store}
}

// UsedSeconds returns used_seconds(P, D) for the local calendar date of now.
func (a *Accountant) UsedSeconds(ctx context.Context, profileID string, now time.Time) (int64, error) {
	used, err := a.store.UsedSecondsOnDate(ctx, profileID, now)
	if err != nil {
		return 0, apperr.Storage(err, "reading used seconds for profile %s", profileID)
	}
	return used, nil
}

// RemainingSeconds computes remaining_seconds(P, now) = max(0, limit - used).
func (a *Accountant) RemainingSeconds(ctx context.Context, profile *domain.Profile, exceptions []*domain.Exception, now time.Time) (int64, error) {
	used, err := a.UsedSeconds(ctx, profile.ID, now)
	if err != nil {
		return 0, err
	}
	limit := domain.DailyLimitSeconds(profile.Config.ScreenTime, exceptions, now)
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
