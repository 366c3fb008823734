package core

import (
	"context"
	"testing"
	"time"

	"dayguard/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	notifications []domain.Notification
}

func (f *fakeNotifier) Notify(ctx context.Context, n domain.Notification) {
	f.notifications = append(f.notifications, n)
}

func TestApprovalWorkflow_SubmitAndListPending(t *testing.T) {
	store := newFakeStorage()
	notifier := &fakeNotifier{}
	w := NewApprovalWorkflow(store, notifier)
	now := time.Now()

	req, err := w.Submit(context.Background(), "p1", domain.RequestApplicationAccess, domain.RequestDetail{AppID: "steam.exe"}, now)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestPending, req.Status)
	assert.Len(t, notifier.notifications, 1)

	pending, err := w.ListPending(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, req.ID, pending[0].ID)
}

func TestApprovalWorkflow_ApproveGrantsExceptionAtomically(t *testing.T) {
	store := newFakeStorage()
	notifier := &fakeNotifier{}
	w := NewApprovalWorkflow(store, notifier)
	now := time.Now()

	req, err := w.Submit(context.Background(), "p1", domain.RequestApplicationAccess, domain.RequestDetail{AppID: "steam.exe"}, now)
	require.NoError(t, err)

	exc, err := w.Approve(context.Background(), req.ID, "parent", "sure, go ahead", now)
	require.NoError(t, err)
	assert.Equal(t, domain.ExceptionApplicationOverride, exc.Kind)
	assert.Equal(t, "steam.exe", exc.Detail.AppID)
	assert.Equal(t, 1, store.approveTxCalls)

	got, err := store.GetApprovalRequest(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestApproved, got.Status)
}

func TestApprovalWorkflow_ApproveNonPendingIsConflict(t *testing.T) {
	store := newFakeStorage()
	notifier := &fakeNotifier{}
	w := NewApprovalWorkflow(store, notifier)
	now := time.Now()

	req, err := w.Submit(context.Background(), "p1", domain.RequestApplicationAccess, domain.RequestDetail{AppID: "steam.exe"}, now)
	require.NoError(t, err)

	_, err = w.Approve(context.Background(), req.ID, "parent", "ok", now)
	require.NoError(t, err)

	_, err = w.Approve(context.Background(), req.ID, "parent", "ok again", now)
	assert.Error(t, err)
}

func TestApprovalWorkflow_ApproveUnknownRequestIsNotFound(t *testing.T) {
	store := newFakeStorage()
	w := NewApprovalWorkflow(store, &fakeNotifier{})

	_, err := w.Approve(context.Background(), "does-not-exist", "parent", "ok", time.Now())
	assert.Error(t, err)
}

func TestApprovalWorkflow_Deny(t *testing.T) {
	store := newFakeStorage()
	notifier := &fakeNotifier{}
	w := NewApprovalWorkflow(store, notifier)
	now := time.Now()

	req, err := w.Submit(context.Background(), "p1", domain.RequestWebsiteAccess, domain.RequestDetail{Domain: "example.com"}, now)
	require.NoError(t, err)

	err = w.Deny(context.Background(), req.ID, "parent", "not today")
	require.NoError(t, err)

	got, err := store.GetApprovalRequest(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestDenied, got.Status)
	assert.Contains(t, store.deniedCalls, req.ID)
}

func TestApprovalWorkflow_DenyNonPendingIsConflict(t *testing.T) {
	store := newFakeStorage()
	w := NewApprovalWorkflow(store, &fakeNotifier{})
	now := time.Now()

	req, err := w.Submit(context.Background(), "p1", domain.RequestWebsiteAccess, domain.RequestDetail{Domain: "example.com"}, now)
	require.NoError(t, err)
	require.NoError(t, w.Deny(context.Background(), req.ID, "parent", "not today"))

	err = w.Deny(context.Background(), req.ID, "parent", "still not today")
	assert.Error(t, err)
}
