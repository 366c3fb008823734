package core

import (
	"context"
	"time"

	"dayguard/internal/domain"
)

// fakeStorage is a minimal in-memory stand-in for storage.Storage, covering
// only the behavior each test file in this package actually exercises.
// Every other method returns a zero value so the fake satisfies the full
// interface without pretending to implement persistence it never tests.
type fakeStorage struct {
	usedSeconds      map[string]int64
	liveExceptions   map[string][]*domain.Exception
	exceptions       map[string]*domain.Exception
	requests         map[string]*domain.ApprovalRequest
	approveTxCalls   int
	approveTxErr     error
	deniedCalls      []string
	profiles         map[string]*domain.Profile
	openSessions     map[string]*domain.Session
	sessions         map[string]*domain.Session
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		usedSeconds:    make(map[string]int64),
		liveExceptions: make(map[string][]*domain.Exception),
		exceptions:     make(map[string]*domain.Exception),
		requests:       make(map[string]*domain.ApprovalRequest),
		profiles:       make(map[string]*domain.Profile),
		openSessions:   make(map[string]*domain.Session),
		sessions:       make(map[string]*domain.Session),
	}
}

func (f *fakeStorage) CreateProfile(ctx context.Context, p *domain.Profile) error {
	f.profiles[p.ID] = p
	return nil
}
func (f *fakeStorage) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	return f.profiles[id], nil
}
func (f *fakeStorage) ListProfiles(ctx context.Context) ([]*domain.Profile, error) {
	out := make([]*domain.Profile, 0, len(f.profiles))
	for _, p := range f.profiles {
		out = append(out, p)
	}
	return out, nil
}
func (f *fakeStorage) UpdateProfile(ctx context.Context, p *domain.Profile) error {
	f.profiles[p.ID] = p
	return nil
}
func (f *fakeStorage) DeactivateProfile(ctx context.Context, id string) error {
	if p, ok := f.profiles[id]; ok {
		p.Active = false
	}
	return nil
}

func (f *fakeStorage) OpenSession(ctx context.Context, s *domain.Session) error {
	f.openSessions[s.ProfileID] = s
	f.sessions[s.ID] = s
	return nil
}
func (f *fakeStorage) CloseSession(ctx context.Context, sessionID string, endTime time.Time, reason domain.SessionEndReason, usedSeconds int64) error {
	if s, ok := f.sessions[sessionID]; ok {
		s.EndTime = &endTime
		s.EndReason = &reason
		s.UsedSeconds = usedSeconds
		delete(f.openSessions, s.ProfileID)
	}
	return nil
}
func (f *fakeStorage) GetOpenSession(ctx context.Context, profileID string) (*domain.Session, error) {
	return f.openSessions[profileID], nil
}
func (f *fakeStorage) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	return f.sessions[id], nil
}

func (f *fakeStorage) InsertActivity(ctx context.Context, a *domain.Activity) error { return nil }
func (f *fakeStorage) UsedSecondsOnDate(ctx context.Context, profileID string, localDate time.Time) (int64, error) {
	return f.usedSeconds[profileID+localDate.Format("2006-01-02")], nil
}
func (f *fakeStorage) ListActivities(ctx context.Context, profileID string, from, to time.Time) ([]*domain.Activity, error) {
	return nil, nil
}

func (f *fakeStorage) CreateException(ctx context.Context, e *domain.Exception) error {
	f.exceptions[e.ID] = e
	f.liveExceptions[e.ProfileID] = append(f.liveExceptions[e.ProfileID], e)
	return nil
}
func (f *fakeStorage) GetLiveExceptions(ctx context.Context, profileID string, now time.Time) ([]*domain.Exception, error) {
	return f.liveExceptions[profileID], nil
}
func (f *fakeStorage) CheckActiveException(ctx context.Context, profileID string, kind domain.ExceptionKind, resource string, now time.Time) (*domain.Exception, error) {
	for _, e := range f.liveExceptions[profileID] {
		if e.Kind == kind && e.Detail.Resource(kind) == resource && e.IsLive(now) {
			return e, nil
		}
	}
	return nil, nil
}
func (f *fakeStorage) MarkExceptionUsed(ctx context.Context, id string) error {
	if e, ok := f.exceptions[id]; ok {
		e.Used = true
	}
	return nil
}
func (f *fakeStorage) RevokeException(ctx context.Context, id string) error {
	if e, ok := f.exceptions[id]; ok {
		e.Active = false
	}
	return nil
}
func (f *fakeStorage) SweepExpiredExceptions(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}
func (f *fakeStorage) ListExceptions(ctx context.Context, profileID string, limit int) ([]*domain.Exception, error) {
	return f.liveExceptions[profileID], nil
}
func (f *fakeStorage) ExceptionUsageStats(ctx context.Context, profileID string, since, now time.Time) (int64, int64, int64, error) {
	return 0, 0, 0, nil
}

func (f *fakeStorage) CreateApprovalRequest(ctx context.Context, r *domain.ApprovalRequest) error {
	f.requests[r.ID] = r
	return nil
}
func (f *fakeStorage) GetApprovalRequest(ctx context.Context, id string) (*domain.ApprovalRequest, error) {
	return f.requests[id], nil
}
func (f *fakeStorage) ListPendingRequests(ctx context.Context, profileID string) ([]*domain.ApprovalRequest, error) {
	var out []*domain.ApprovalRequest
	for _, r := range f.requests {
		if r.ProfileID == profileID && r.Status == domain.RequestPending {
			out = append(out, r)
		}
	}
	return out, nil
}
func (f *fakeStorage) ApproveRequestTx(ctx context.Context, requestID, reviewedBy, message string, exc *domain.Exception) error {
	f.approveTxCalls++
	if f.approveTxErr != nil {
		return f.approveTxErr
	}
	if r, ok := f.requests[requestID]; ok {
		r.Status = domain.RequestApproved
		r.ReviewedBy = &reviewedBy
		r.ResponseMessage = &message
	}
	f.exceptions[exc.ID] = exc
	f.liveExceptions[exc.ProfileID] = append(f.liveExceptions[exc.ProfileID], exc)
	return nil
}
func (f *fakeStorage) DenyRequest(ctx context.Context, requestID, reviewedBy, message string) error {
	f.deniedCalls = append(f.deniedCalls, requestID)
	if r, ok := f.requests[requestID]; ok {
		r.Status = domain.RequestDenied
		r.ReviewedBy = &reviewedBy
		r.ResponseMessage = &message
	}
	return nil
}

func (f *fakeStorage) InsertAudit(ctx context.Context, e *domain.AuditLogEntry) error { return nil }
func (f *fakeStorage) ListAudit(ctx context.Context, since time.Time, limit int) ([]*domain.AuditLogEntry, error) {
	return nil, nil
}

func (f *fakeStorage) UpsertDailySummary(ctx context.Context, s *domain.DailySummary) error {
	return nil
}
func (f *fakeStorage) UpsertWeeklySummary(ctx context.Context, s *domain.WeeklySummary) error {
	return nil
}
func (f *fakeStorage) GetDailySummary(ctx context.Context, profileID, date string) (*domain.DailySummary, error) {
	return nil, nil
}
func (f *fakeStorage) GetWeeklySummary(ctx context.Context, profileID, weekStart string) (*domain.WeeklySummary, error) {
	return nil, nil
}
func (f *fakeStorage) ListActiveSessionsForRollup(ctx context.Context) ([]*domain.Session, error) {
	return nil, nil
}

func (f *fakeStorage) SetSetting(ctx context.Context, key, value string) error { return nil }
func (f *fakeStorage) GetSetting(ctx context.Context, key string) (string, bool, error) {
	return "", false, nil
}

func (f *fakeStorage) Close() error { return nil }
