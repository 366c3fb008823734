// Package sqlite is dayguard's one concrete storage implementation, built
// on database/sql + mattn/go-sqlite3, with schema evolution handled by
// ordered, apply-once goose migrations rather than ad-hoc ALTER TABLE
// probing.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"dayguard/internal/apperr"
	"dayguard/internal/domain"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const timeLayout = time.RFC3339Nano

// Store is a database/sql-backed implementation of storage.Storage.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the sqlite database at path and applies
// any pending migrations, refusing to start if the on-disk schema version is
// newer than this binary knows about (goose's own guard).
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, apperr.Storage(err, "opening database %s", path)
	}
	db.SetMaxOpenConns(1) // sqlite3 driver is not safe for concurrent writers

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, apperr.Internal(err, "configuring migration dialect")
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		db.Close()
		return nil, apperr.Storage(err, "applying migrations")
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) (time.Time, error) { return time.Parse(timeLayout, s) }

func nullableTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// --- profiles --------------------------------------------------------------

func (s *Store) CreateProfile(ctx context.Context, p *domain.Profile) error {
	cfg, err := json.Marshal(p.Config)
	if err != nil {
		return apperr.Input("encoding profile config: %v", err)
	}
	var birthday sql.NullString
	if p.Birthday != nil {
		birthday = sql.NullString{String: p.Birthday.Format("2006-01-02"), Valid: true}
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, name, username, age_group, birthday, config_json, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, nullableString(p.Username), string(p.AgeGroup), birthday, string(cfg),
		boolToInt(p.Active), formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
	if err != nil {
		return apperr.Storage(err, "inserting profile")
	}
	return nil
}

func (s *Store) scanProfile(row interface{ Scan(...any) error }) (*domain.Profile, error) {
	var (
		p                      domain.Profile
		username, birthday     sql.NullString
		ageGroup               string
		configJSON             string
		active                 int
		createdAt, updatedAt   string
	)
	if err := row.Scan(&p.ID, &p.Name, &username, &ageGroup, &birthday, &configJSON, &active, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if username.Valid {
		p.Username = &username.String
	}
	if birthday.Valid {
		if t, err := time.Parse("2006-01-02", birthday.String); err == nil {
			p.Birthday = &t
		}
	}
	p.AgeGroup = domain.AgeGroup(ageGroup)
	if err := json.Unmarshal([]byte(configJSON), &p.Config); err != nil {
		return nil, fmt.Errorf("decoding profile config: %w", err)
	}
	p.Active = active != 0
	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, username, age_group, birthday, config_json, active, created_at, updated_at
		FROM profiles WHERE id = ?`, id)
	p, err := s.scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) ListProfiles(ctx context.Context) ([]*domain.Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, username, age_group, birthday, config_json, active, created_at, updated_at
		FROM profiles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Profile
	for rows.Next() {
		p, err := s.scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) UpdateProfile(ctx context.Context, p *domain.Profile) error {
	cfg, err := json.Marshal(p.Config)
	if err != nil {
		return apperr.Input("encoding profile config: %v", err)
	}
	var birthday sql.NullString
	if p.Birthday != nil {
		birthday = sql.NullString{String: p.Birthday.Format("2006-01-02"), Valid: true}
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE profiles SET name=?, username=?, age_group=?, birthday=?, config_json=?, active=?, updated_at=?
		WHERE id=?`,
		p.Name, nullableString(p.Username), string(p.AgeGroup), birthday, string(cfg), boolToInt(p.Active), formatTime(p.UpdatedAt), p.ID)
	if err != nil {
		return apperr.Storage(err, "updating profile %s", p.ID)
	}
	return nil
}

func (s *Store) DeactivateProfile(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE profiles SET active=0, updated_at=? WHERE id=?`, formatTime(time.Now()), id)
	if err != nil {
		return apperr.Storage(err, "deactivating profile %s", id)
	}
	return nil
}

// --- sessions ----------------------------------------------------------------

func (s *Store) OpenSession(ctx context.Context, sess *domain.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, profile_id, start_time, end_time, end_reason, used_seconds)
		VALUES (?, ?, ?, NULL, NULL, 0)`,
		sess.ID, sess.ProfileID, formatTime(sess.StartTime))
	if err != nil {
		return apperr.Storage(err, "opening session")
	}
	return nil
}

func (s *Store) CloseSession(ctx context.Context, sessionID string, endTime time.Time, reason domain.SessionEndReason, usedSeconds int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET end_time=?, end_reason=?, used_seconds=? WHERE id=? AND end_time IS NULL`,
		formatTime(endTime), string(reason), usedSeconds, sessionID)
	if err != nil {
		return apperr.Storage(err, "closing session %s", sessionID)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperr.Conflict("session %s already closed", sessionID)
	}
	return nil
}

func (s *Store) scanSession(row interface{ Scan(...any) error }) (*domain.Session, error) {
	var (
		sess               domain.Session
		startTime          string
		endTime, endReason sql.NullString
	)
	if err := row.Scan(&sess.ID, &sess.ProfileID, &startTime, &endTime, &endReason, &sess.UsedSeconds); err != nil {
		return nil, err
	}
	var err error
	if sess.StartTime, err = parseTime(startTime); err != nil {
		return nil, err
	}
	if endTime.Valid {
		t, err := parseTime(endTime.String)
		if err != nil {
			return nil, err
		}
		sess.EndTime = &t
	}
	if endReason.Valid {
		r := domain.SessionEndReason(endReason.String)
		sess.EndReason = &r
	}
	return &sess, nil
}

func (s *Store) GetOpenSession(ctx context.Context, profileID string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, profile_id, start_time, end_time, end_reason, used_seconds
		FROM sessions WHERE profile_id=? AND end_time IS NULL ORDER BY start_time DESC LIMIT 1`, profileID)
	sess, err := s.scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Store) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, profile_id, start_time, end_time, end_reason, used_seconds
		FROM sessions WHERE id=?`, id)
	sess, err := s.scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// --- activities / accounting -------------------------------------------------

func (s *Store) InsertActivity(ctx context.Context, a *domain.Activity) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activities (id, session_id, profile_id, timestamp, activity_type, app_id, app_name, category, window_title, duration_seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.SessionID, a.ProfileID, formatTime(a.Timestamp), string(a.ActivityType), a.AppID, a.AppName,
		nullableString(a.Category), nullableString(a.WindowTitle), a.DurationSeconds)
	if err != nil {
		return apperr.Storage(err, "inserting activity")
	}
	return nil
}

// UsedSecondsOnDate sums duration_seconds from activities reported for
// profileID on localDate's calendar day: used_seconds(P, D) = Σ
// duration_seconds over activities of P timestamped within [dayStart,
// dayEnd). Session rows track presence, not usage, so they play no part
// in this sum.
func (s *Store) UsedSecondsOnDate(ctx context.Context, profileID string, localDate time.Time) (int64, error) {
	dayStart := time.Date(localDate.Year(), localDate.Month(), localDate.Day(), 0, 0, 0, 0, localDate.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var total sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(duration_seconds),0) FROM activities
		WHERE profile_id=? AND timestamp >= ? AND timestamp < ?`,
		profileID, formatTime(dayStart), formatTime(dayEnd)).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Int64, nil
}

func (s *Store) ListActivities(ctx context.Context, profileID string, from, to time.Time) ([]*domain.Activity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, profile_id, timestamp, activity_type, app_id, app_name, category, window_title, duration_seconds
		FROM activities WHERE profile_id=? AND timestamp >= ? AND timestamp < ? ORDER BY timestamp`,
		profileID, formatTime(from), formatTime(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Activity
	for rows.Next() {
		var (
			a                         domain.Activity
			ts                        string
			activityType              string
			category, windowTitle     sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.SessionID, &a.ProfileID, &ts, &activityType, &a.AppID, &a.AppName, &category, &windowTitle, &a.DurationSeconds); err != nil {
			return nil, err
		}
		if a.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		a.ActivityType = domain.ActivityCategory(activityType)
		if category.Valid {
			a.Category = &category.String
		}
		if windowTitle.Valid {
			a.WindowTitle = &windowTitle.String
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// --- exceptions --------------------------------------------------------------

func (s *Store) CreateException(ctx context.Context, e *domain.Exception) error {
	detail, err := json.Marshal(e.Detail)
	if err != nil {
		return apperr.Input("encoding exception detail: %v", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO exceptions (id, profile_id, kind, detail_json, granted_by, granted_at, expires_at, reason, active, used)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ProfileID, string(e.Kind), string(detail), e.GrantedBy, formatTime(e.GrantedAt), formatTime(e.ExpiresAt), e.Reason,
		boolToInt(e.Active), boolToInt(e.Used))
	if err != nil {
		return apperr.Storage(err, "inserting exception")
	}
	return nil
}

func (s *Store) scanException(row interface{ Scan(...any) error }) (*domain.Exception, error) {
	var (
		e                           domain.Exception
		kind, detailJSON            string
		grantedAt, expiresAt        string
		active, used                int
	)
	if err := row.Scan(&e.ID, &e.ProfileID, &kind, &detailJSON, &e.GrantedBy, &grantedAt, &expiresAt, &e.Reason, &active, &used); err != nil {
		return nil, err
	}
	e.Kind = domain.ExceptionKind(kind)
	if err := json.Unmarshal([]byte(detailJSON), &e.Detail); err != nil {
		return nil, fmt.Errorf("decoding exception detail: %w", err)
	}
	var err error
	if e.GrantedAt, err = parseTime(grantedAt); err != nil {
		return nil, err
	}
	if e.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, err
	}
	e.Active = active != 0
	e.Used = used != 0
	return &e, nil
}

const exceptionColumns = `id, profile_id, kind, detail_json, granted_by, granted_at, expires_at, reason, active, used`

func (s *Store) GetLiveExceptions(ctx context.Context, profileID string, now time.Time) ([]*domain.Exception, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+exceptionColumns+` FROM exceptions WHERE profile_id=? AND active=1 AND expires_at > ? ORDER BY granted_at DESC`,
		profileID, formatTime(now))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Exception
	for rows.Next() {
		e, err := s.scanException(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CheckActiveException finds the most recent live exception of kind whose
// stored resource (app id / domain, extracted from detail_json) matches
// resource; resource-less kinds pass "" and match on kind alone.
func (s *Store) CheckActiveException(ctx context.Context, profileID string, kind domain.ExceptionKind, resource string, now time.Time) (*domain.Exception, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+exceptionColumns+` FROM exceptions
		WHERE profile_id=? AND kind=? AND active=1 AND expires_at > ? ORDER BY granted_at DESC`,
		profileID, string(kind), formatTime(now))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		e, err := s.scanException(rows)
		if err != nil {
			return nil, err
		}
		if e.Detail.Resource(kind) == resource {
			return e, nil
		}
	}
	return nil, rows.Err()
}

func (s *Store) MarkExceptionUsed(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE exceptions SET used=1 WHERE id=?`, id)
	if err != nil {
		return apperr.Storage(err, "marking exception %s used", id)
	}
	return nil
}

func (s *Store) RevokeException(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE exceptions SET active=0 WHERE id=?`, id)
	if err != nil {
		return apperr.Storage(err, "revoking exception %s", id)
	}
	return nil
}

func (s *Store) SweepExpiredExceptions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE exceptions SET active=0 WHERE active=1 AND expires_at <= ?`, formatTime(now))
	if err != nil {
		return 0, apperr.Storage(err, "sweeping expired exceptions")
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (s *Store) ListExceptions(ctx context.Context, profileID string, limit int) ([]*domain.Exception, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+exceptionColumns+` FROM exceptions WHERE profile_id=? ORDER BY granted_at DESC LIMIT ?`,
		profileID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Exception
	for rows.Next() {
		e, err := s.scanException(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) ExceptionUsageStats(ctx context.Context, profileID string, since, now time.Time) (total, used, active int64, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), SUM(used), SUM(CASE WHEN active=1 AND expires_at > ? THEN 1 ELSE 0 END)
		FROM exceptions WHERE profile_id=? AND granted_at >= ?`,
		formatTime(now), profileID, formatTime(since)).Scan(&total, &used, &active)
	return total, used, active, err
}

// --- approval requests ---------------------------------------------------

func (s *Store) CreateApprovalRequest(ctx context.Context, r *domain.ApprovalRequest) error {
	details, err := json.Marshal(r.Details)
	if err != nil {
		return apperr.Input("encoding request details: %v", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO approval_requests (id, profile_id, request_type, details_json, requested_at, status, reviewed_by, reviewed_at, response_message)
		VALUES (?, ?, ?, ?, ?, ?, NULL, NULL, NULL)`,
		r.ID, r.ProfileID, string(r.RequestType), string(details), formatTime(r.RequestedAt), string(r.Status))
	if err != nil {
		return apperr.Storage(err, "inserting approval request")
	}
	return nil
}

func (s *Store) scanApprovalRequest(row interface{ Scan(...any) error }) (*domain.ApprovalRequest, error) {
	var (
		r                                            domain.ApprovalRequest
		requestType, detailsJSON, status, requestedAt string
		reviewedBy, reviewedAt, responseMessage       sql.NullString
	)
	if err := row.Scan(&r.ID, &r.ProfileID, &requestType, &detailsJSON, &requestedAt, &status, &reviewedBy, &reviewedAt, &responseMessage); err != nil {
		return nil, err
	}
	r.RequestType = domain.RequestKind(requestType)
	if err := json.Unmarshal([]byte(detailsJSON), &r.Details); err != nil {
		return nil, fmt.Errorf("decoding request details: %w", err)
	}
	r.Status = domain.RequestStatus(status)
	var err error
	if r.RequestedAt, err = parseTime(requestedAt); err != nil {
		return nil, err
	}
	if reviewedBy.Valid {
		r.ReviewedBy = &reviewedBy.String
	}
	if reviewedAt.Valid {
		t, err := parseTime(reviewedAt.String)
		if err != nil {
			return nil, err
		}
		r.ReviewedAt = &t
	}
	if responseMessage.Valid {
		r.ResponseMessage = &responseMessage.String
	}
	return &r, nil
}

const approvalColumns = `id, profile_id, request_type, details_json, requested_at, status, reviewed_by, reviewed_at, response_message`

func (s *Store) GetApprovalRequest(ctx context.Context, id string) (*domain.ApprovalRequest, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+approvalColumns+` FROM approval_requests WHERE id=?`, id)
	r, err := s.scanApprovalRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) ListPendingRequests(ctx context.Context, profileID string) ([]*domain.ApprovalRequest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+approvalColumns+` FROM approval_requests WHERE profile_id=? AND status=? ORDER BY requested_at`,
		profileID, string(domain.RequestPending))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.ApprovalRequest
	for rows.Next() {
		r, err := s.scanApprovalRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ApproveRequestTx wraps the status transition and the exception insert in a
// single transaction: either both land, or neither does.
func (s *Store) ApproveRequestTx(ctx context.Context, requestID, reviewedBy, message string, exc *domain.Exception) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Storage(err, "beginning approval transaction")
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE approval_requests SET status=?, reviewed_by=?, reviewed_at=?, response_message=?
		WHERE id=? AND status=?`,
		string(domain.RequestApproved), reviewedBy, formatTime(time.Now()), message, requestID, string(domain.RequestPending))
	if err != nil {
		return apperr.Storage(err, "updating approval request %s", requestID)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperr.Conflict("approval request %s is not pending", requestID)
	}

	detail, err := json.Marshal(exc.Detail)
	if err != nil {
		return apperr.Input("encoding exception detail: %v", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO exceptions (id, profile_id, kind, detail_json, granted_by, granted_at, expires_at, reason, active, used)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		exc.ID, exc.ProfileID, string(exc.Kind), string(detail), exc.GrantedBy, formatTime(exc.GrantedAt), formatTime(exc.ExpiresAt),
		exc.Reason, boolToInt(exc.Active), boolToInt(exc.Used)); err != nil {
		return apperr.Storage(err, "inserting granted exception")
	}

	if err := tx.Commit(); err != nil {
		return apperr.Storage(err, "committing approval transaction")
	}
	return nil
}

func (s *Store) DenyRequest(ctx context.Context, requestID, reviewedBy, message string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE approval_requests SET status=?, reviewed_by=?, reviewed_at=?, response_message=?
		WHERE id=? AND status=?`,
		string(domain.RequestDenied), reviewedBy, formatTime(time.Now()), message, requestID, string(domain.RequestPending))
	if err != nil {
		return apperr.Storage(err, "denying approval request %s", requestID)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperr.Conflict("approval request %s is not pending", requestID)
	}
	return nil
}

// --- audit log / summaries / settings ----------------------------------

func (s *Store) InsertAudit(ctx context.Context, e *domain.AuditLogEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, timestamp, actor, action, resource, resource_id, success, details)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, formatTime(e.Timestamp), string(e.Actor), e.Action, e.Resource, e.ResourceID, boolToInt(e.Success), e.Details)
	if err != nil {
		return apperr.Storage(err, "inserting audit entry")
	}
	return nil
}

func (s *Store) ListAudit(ctx context.Context, since time.Time, limit int) ([]*domain.AuditLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, actor, action, resource, resource_id, success, details
		FROM audit_log WHERE timestamp >= ? ORDER BY timestamp DESC LIMIT ?`, formatTime(since), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.AuditLogEntry
	for rows.Next() {
		var (
			e         domain.AuditLogEntry
			ts        string
			actor     string
			success   int
		)
		if err := rows.Scan(&e.ID, &ts, &actor, &e.Action, &e.Resource, &e.ResourceID, &success, &e.Details); err != nil {
			return nil, err
		}
		if e.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		e.Actor = domain.Actor(actor)
		e.Success = success != 0
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (s *Store) UpsertDailySummary(ctx context.Context, sum *domain.DailySummary) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_summaries (profile_id, date, total_seconds, session_count, exceptions_used)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(profile_id, date) DO UPDATE SET
			total_seconds=excluded.total_seconds, session_count=excluded.session_count, exceptions_used=excluded.exceptions_used`,
		sum.ProfileID, sum.Date, sum.TotalSeconds, sum.SessionCount, sum.ExceptionsUsed)
	if err != nil {
		return apperr.Storage(err, "upserting daily summary")
	}
	return nil
}

func (s *Store) UpsertWeeklySummary(ctx context.Context, sum *domain.WeeklySummary) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO weekly_summaries (profile_id, week_start, total_seconds, session_count, exceptions_used)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(profile_id, week_start) DO UPDATE SET
			total_seconds=excluded.total_seconds, session_count=excluded.session_count, exceptions_used=excluded.exceptions_used`,
		sum.ProfileID, sum.WeekStart, sum.TotalSeconds, sum.SessionCount, sum.ExceptionsUsed)
	if err != nil {
		return apperr.Storage(err, "upserting weekly summary")
	}
	return nil
}

func (s *Store) GetDailySummary(ctx context.Context, profileID, date string) (*domain.DailySummary, error) {
	var sum domain.DailySummary
	err := s.db.QueryRowContext(ctx, `
		SELECT profile_id, date, total_seconds, session_count, exceptions_used
		FROM daily_summaries WHERE profile_id=? AND date=?`, profileID, date).
		Scan(&sum.ProfileID, &sum.Date, &sum.TotalSeconds, &sum.SessionCount, &sum.ExceptionsUsed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sum, nil
}

func (s *Store) GetWeeklySummary(ctx context.Context, profileID, weekStart string) (*domain.WeeklySummary, error) {
	var sum domain.WeeklySummary
	err := s.db.QueryRowContext(ctx, `
		SELECT profile_id, week_start, total_seconds, session_count, exceptions_used
		FROM weekly_summaries WHERE profile_id=? AND week_start=?`, profileID, weekStart).
		Scan(&sum.ProfileID, &sum.WeekStart, &sum.TotalSeconds, &sum.SessionCount, &sum.ExceptionsUsed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sum, nil
}

func (s *Store) ListActiveSessionsForRollup(ctx context.Context) ([]*domain.Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, profile_id, start_time, end_time, end_reason, used_seconds FROM sessions WHERE end_time IS NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Session
	for rows.Next() {
		sess, err := s.scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daemon_settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value`, key, value)
	if err != nil {
		return apperr.Storage(err, "setting %s", key)
	}
	return nil
}

func (s *Store) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM daemon_settings WHERE key=?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
