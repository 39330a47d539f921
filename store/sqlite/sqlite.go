/*
Package sqlite provides the SQLite-backed implementation of leave.Store.

PURPOSE:
  Persists users, leave requests, and notification rows. In production the
  same patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  users:          Identity records with the two balance columns
  leaves:         Leave requests with the denormalized submission snapshot
  notifications:  Write-only audit trail of submission events

DECISION TRANSITION:
  DecideLeave runs one database transaction holding two statements:
    1. UPDATE leaves SET status=... WHERE id=? AND status='pending'
    2. UPDATE users  SET <balance> = <balance> - ? WHERE id=?   (approve only)
  Zero rows affected by (1) aborts the transaction and reports false, so
  two concurrent decisions on the same leave cannot both land and a balance
  is never cut twice.

MIGRATIONS:
  Schema is managed by goose with embedded SQL migrations (see migrations/).
  New() runs them on open.

CONCURRENCY:
  Uses sync.RWMutex around the handle plus WAL mode, matching what the
  engine needs from a shared pool: safe concurrent use from multiple
  in-flight requests.

USAGE:
  store, err := sqlite.New(ctx, "./data/leaves.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - leave/store.go: Interface definition and DecideLeave contract
  - migrations/: Versioned schema
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/warp/leave-tracker/leave"
	"github.com/warp/leave-tracker/store/sqlite/migrations"
)

const (
	dateLayout = "2006-01-02"
)

// Store implements leave.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Compile-time check that Store satisfies the engine's interface.
var _ leave.Store = (*Store)(nil)

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for an in-memory database.
func New(ctx context.Context, dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single pooled connection: every pool connection to ":memory:" would
	// otherwise see its own empty database, and the store serializes access
	// through its mutex anyway.
	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// NewWithDB wraps an existing handle without running migrations. Used by
// tests that stub the database.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// USERS
// =============================================================================

// CreateUser inserts a user. A duplicate email maps to leave.ErrEmailTaken.
func (s *Store) CreateUser(ctx context.Context, u leave.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO users (id, name, email, password_hash, role, department,
			vacation_balance, sick_balance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), u.Department,
		u.VacationBalance, u.SickBalance,
		u.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return leave.ErrEmailTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

const userColumns = `id, name, email, password_hash, role, department,
	vacation_balance, sick_balance, created_at`

// GetUserByEmail returns the user with the given email, or (nil, nil).
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*leave.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return scanUser(row)
}

// GetUserByID returns the user with the given id, or (nil, nil).
func (s *Store) GetUserByID(ctx context.Context, id string) (*leave.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

// ListManagersByDepartment returns managers whose department matches exactly
// (case-sensitive, as the visibility scoping everywhere else).
func (s *Store) ListManagersByDepartment(ctx context.Context, department string) ([]leave.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE role = ? AND department = ? ORDER BY name",
		string(leave.RoleManager), department)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []leave.User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUserFields(sc rowScanner) (*leave.User, error) {
	var u leave.User
	var role, createdAt string
	err := sc.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role,
		&u.Department, &u.VacationBalance, &u.SickBalance, &createdAt)
	if err != nil {
		return nil, err
	}
	u.Role = leave.Role(role)
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &u, nil
}

func scanUser(row *sql.Row) (*leave.User, error) {
	u, err := scanUserFields(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return u, nil
}

func scanUserRow(rows *sql.Rows) (*leave.User, error) {
	u, err := scanUserFields(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return u, nil
}

// =============================================================================
// LEAVES
// =============================================================================

// CreateLeave inserts a leave request.
func (s *Store) CreateLeave(ctx context.Context, l leave.Leave) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO leaves (id, user_id, user_name, department, leave_type,
			start_date, end_date, reason, status, submitted_at,
			manager_comment, approved_by, approved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		l.ID, l.UserID, l.UserName, l.Department, l.LeaveType,
		l.StartDate.Format(dateLayout), l.EndDate.Format(dateLayout),
		l.Reason, string(l.Status),
		l.SubmittedAt.UTC().Format(time.RFC3339),
		nullString(l.ManagerComment), nullString(l.ApprovedBy), nullTime(l.ApprovedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create leave: %w", err)
	}
	return nil
}

const leaveColumns = `id, user_id, user_name, department, leave_type,
	start_date, end_date, reason, status, submitted_at,
	manager_comment, approved_by, approved_at`

// GetLeave returns the leave with the given id, or (nil, nil).
func (s *Store) GetLeave(ctx context.Context, id string) (*leave.Leave, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+leaveColumns+" FROM leaves WHERE id = ?", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	l, err := scanLeave(rows)
	if err != nil {
		return nil, err
	}
	return &l, rows.Err()
}

// DecideLeave performs the conditional transition and balance cut in one
// database transaction. Returns false when no pending row matched.
func (s *Store) DecideLeave(ctx context.Context, leaveID string, upd leave.DecisionUpdate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE leaves
		SET status = ?, manager_comment = ?, approved_by = ?, approved_at = ?
		WHERE id = ? AND status = ?
	`,
		string(upd.Status), upd.Comment, upd.DecidedBy,
		upd.DecidedAt.UTC().Format(time.RFC3339),
		leaveID, string(leave.StatusPending),
	)
	if err != nil {
		return false, fmt.Errorf("failed to update leave: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		// Not pending (or gone) - nothing to commit.
		return false, nil
	}

	if upd.Status == leave.StatusApproved && upd.Days != 0 {
		var column string
		switch upd.LeaveType {
		case leave.TypeVacation:
			column = "vacation_balance"
		case leave.TypeSick:
			column = "sick_balance"
		}
		if column != "" {
			_, err = tx.ExecContext(ctx,
				"UPDATE users SET "+column+" = "+column+" - ? WHERE id = ?",
				upd.Days, upd.UserID)
			if err != nil {
				return false, fmt.Errorf("failed to adjust balance: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit decision: %w", err)
	}
	return true, nil
}

// ListLeavesByUser returns a user's leaves, newest submitted_at first.
func (s *Store) ListLeavesByUser(ctx context.Context, userID string) ([]leave.Leave, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT " + leaveColumns + ` FROM leaves
		WHERE user_id = ?
		ORDER BY submitted_at DESC`

	return s.queryLeaves(ctx, query, userID)
}

// ListLeavesByDepartment returns a department's leaves, newest first,
// optionally filtered by status.
func (s *Store) ListLeavesByDepartment(ctx context.Context, department string, status leave.Status) ([]leave.Leave, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if status != "" {
		query := "SELECT " + leaveColumns + ` FROM leaves
			WHERE department = ? AND status = ?
			ORDER BY submitted_at DESC`
		return s.queryLeaves(ctx, query, department, string(status))
	}

	query := "SELECT " + leaveColumns + ` FROM leaves
		WHERE department = ?
		ORDER BY submitted_at DESC`
	return s.queryLeaves(ctx, query, department)
}

func (s *Store) queryLeaves(ctx context.Context, query string, args ...any) ([]leave.Leave, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaves: %w", err)
	}
	defer rows.Close()

	var leaves []leave.Leave
	for rows.Next() {
		l, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, l)
	}
	return leaves, rows.Err()
}

func scanLeave(rows *sql.Rows) (leave.Leave, error) {
	var (
		l              leave.Leave
		status         string
		startDate      string
		endDate        string
		submittedAt    string
		managerComment sql.NullString
		approvedBy     sql.NullString
		approvedAt     sql.NullString
	)

	err := rows.Scan(&l.ID, &l.UserID, &l.UserName, &l.Department, &l.LeaveType,
		&startDate, &endDate, &l.Reason, &status, &submittedAt,
		&managerComment, &approvedBy, &approvedAt)
	if err != nil {
		return l, fmt.Errorf("failed to scan leave: %w", err)
	}

	l.Status = leave.Status(status)
	l.StartDate, _ = time.Parse(dateLayout, startDate)
	l.EndDate, _ = time.Parse(dateLayout, endDate)
	l.SubmittedAt, _ = time.Parse(time.RFC3339, submittedAt)
	l.ManagerComment = managerComment.String
	l.ApprovedBy = approvedBy.String
	if approvedAt.Valid && approvedAt.String != "" {
		t, _ := time.Parse(time.RFC3339, approvedAt.String)
		l.ApprovedAt = &t
	}
	return l, nil
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

// CreateNotification inserts the durable submission trace.
func (s *Store) CreateNotification(ctx context.Context, n leave.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO notifications (id, type, message, leave_id, department, created_at, is_read)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		n.ID, n.Type, n.Message, n.LeaveID, n.Department,
		n.CreatedAt.UTC().Format(time.RFC3339), n.IsRead,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// CountNotificationsByLeave reports how many notification rows reference a
// leave. Used by tests asserting the exactly-once submission trace.
func (s *Store) CountNotificationsByLeave(ctx context.Context, leaveID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE leave_id = ?", leaveID).Scan(&count)
	return count, err
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
