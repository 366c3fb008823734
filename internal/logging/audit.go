package logging

import (
	"context"
	"log/slog"
	"time"

	"dayguard/internal/domain"
	"dayguard/internal/idgen"
)

// AuditStore is the narrow slice of storage.Storage the audit wrapper needs,
// kept local so internal/logging does not import internal/storage.
type AuditStore interface {
	InsertAudit(ctx context.Context, e *domain.AuditLogEntry) error
}

// Audited wraps every authenticated operation once: it runs fn, writes
// exactly one AuditLogEntry row regardless of outcome, and mirrors the
// outcome to the Audit log stream from a single generic call site instead
// of a decorator per wrapped service.
func Audited[T any](ctx context.Context, logger *slog.Logger, store AuditStore, actor domain.Actor, action, resource, resourceID string, now time.Time, fn func() (T, error)) (T, error) {
	result, err := fn()

	entry := &domain.AuditLogEntry{
		ID:         idgen.NewAudit(),
		Timestamp:  now,
		Actor:      actor,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Success:    err == nil,
	}
	if err != nil {
		entry.Details = err.Error()
	}

	if insertErr := store.InsertAudit(ctx, entry); insertErr != nil {
		logger.Error("audit log write failed", "action", action, "resource", resource, "resource_id", resourceID, "error", insertErr)
	}
	if err != nil {
		logger.Warn("operation failed", "action", action, "resource", resource, "resource_id", resourceID, "error", err)
	} else {
		logger.Info("operation succeeded", "action", action, "resource", resource, "resource_id", resourceID)
	}

	return result, err
}

// AuditedNoResult is Audited for operations with no return value beyond error.
func AuditedNoResult(ctx context.Context, logger *slog.Logger, store AuditStore, actor domain.Actor, action, resource, resourceID string, now time.Time, fn func() error) error {
	_, err := Audited[struct{}](ctx, logger, store, actor, action, resource, resourceID, now, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}
