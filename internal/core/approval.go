package core

import (
	"context"
	"encoding/json"
	"time"

	"dayguard/internal/apperr"
	"dayguard/internal/domain"
	"dayguard/internal/idgen"
	"dayguard/internal/storage"
)

// ApprovalWorkflow handles child-originated requests, parent review, and
// the atomic approve→exception transition: the status update and the
// exception insert happen inside a single transaction.
type ApprovalWorkflow struct {
	store   storage.Storage
	notify  Notifier
}

// Notifier is the subset of the Notification Manager the workflow needs;
// kept as a narrow interface so core does not import internal/notify.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}

func NewApprovalWorkflow(store storage.Storage, notify Notifier) *ApprovalWorkflow {
	return &ApprovalWorkflow{store: store, notify: notify}
}

// Submit writes a Pending request row; unauthenticated from the child side
// but requires an active profile, which the caller (the supervisor) has
// already resolved before calling here.
func (w *ApprovalWorkflow) Submit(ctx context.Context, profileID string, kind domain.RequestKind, detail domain.RequestDetail, now time.Time) (*domain.ApprovalRequest, error) {
	req := &domain.ApprovalRequest{
		ID:          idgen.NewRequest(),
		ProfileID:   profileID,
		RequestType: kind,
		Details:     detail,
		RequestedAt: now,
		Status:      domain.RequestPending,
	}
	if err := w.store.CreateApprovalRequest(ctx, req); err != nil {
		return nil, apperr.Storage(err, "submitting approval request")
	}
	w.notify.Notify(ctx, domain.Notification{
		Title:   "New approval request",
		Body:    requestSummary(req),
		Urgency: domain.SeverityToUrgency(domain.SeverityInfo),
		Actions: []string{"approve", "deny", "view"},
	})
	return req, nil
}

func requestSummary(req *domain.ApprovalRequest) string {
	b, _ := json.Marshal(req.Details)
	return string(req.RequestType) + " " + string(b)
}

func (w *ApprovalWorkflow) ListPending(ctx context.Context, profileID string) ([]*domain.ApprovalRequest, error) {
	reqs, err := w.store.ListPendingRequests(ctx, profileID)
	if err != nil {
		return nil, apperr.Storage(err, "listing pending requests")
	}
	return reqs, nil
}

// Approve mints exactly one Exception and transitions the request to
// Approved, atomically. Duplicate
// approve/deny on a non-Pending row is a descriptive no-op error.
func (w *ApprovalWorkflow) Approve(ctx context.Context, requestID, reviewedBy, message string, now time.Time) (*domain.Exception, error) {
	req, err := w.store.GetApprovalRequest(ctx, requestID)
	if err != nil {
		return nil, apperr.Storage(err, "loading approval request %s", requestID)
	}
	if req == nil {
		return nil, apperr.NotFound("approval request %s not found", requestID)
	}
	if req.Status != domain.RequestPending {
		return nil, apperr.Conflict("approval request %s is not pending (status=%s)", requestID, req.Status)
	}

	kind, detail, expiresAt := ExceptionForRequest(req, now)
	exc := &domain.Exception{
		ID:        idgen.NewException(),
		ProfileID: req.ProfileID,
		Kind:      kind,
		Detail:    detail,
		GrantedBy: reviewedBy,
		GrantedAt: now,
		ExpiresAt: expiresAt,
		Reason:    message,
		Active:    true,
		Used:      false,
	}

	if err := w.store.ApproveRequestTx(ctx, requestID, reviewedBy, message, exc); err != nil {
		return nil, apperr.Storage(err, "approving request %s", requestID)
	}

	w.notify.Notify(ctx, domain.Notification{
		Title:   "Request approved",
		Body:    message,
		Urgency: domain.SeverityToUrgency(domain.SeverityInfo),
	})

	return exc, nil
}

// Deny transitions the request to Denied; a no-op error on non-Pending rows.
func (w *ApprovalWorkflow) Deny(ctx context.Context, requestID, reviewedBy, message string) error {
	req, err := w.store.GetApprovalRequest(ctx, requestID)
	if err != nil {
		return apperr.Storage(err, "loading approval request %s", requestID)
	}
	if req == nil {
		return apperr.NotFound("approval request %s not found", requestID)
	}
	if req.Status != domain.RequestPending {
		return apperr.Conflict("approval request %s is not pending (status=%s)", requestID, req.Status)
	}
	if err := w.store.DenyRequest(ctx, requestID, reviewedBy, message); err != nil {
		return apperr.Storage(err, "denying request %s", requestID)
	}
	return nil
}
