/*
store.go - Persistence interface for users, leaves, and notifications

PURPOSE:
  Defines the interface between the lifecycle engine and the database.
  Different implementations can use SQLite, PostgreSQL, or mocks.

TRANSITION CONTRACT:
  DecideLeave is the only mutation of a leave row after submission. It must
  perform a CONDITIONAL update ("... WHERE id = ? AND status = 'pending'")
  and the balance adjustment inside a single database transaction, and
  report whether the transition actually fired. Two concurrent decisions on
  the same leave must not both win.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite store

SEE ALSO:
  - engine.go: Engine built on this interface
*/
package leave

import (
	"context"
	"time"
)

// DecisionUpdate carries the fields written by a decision transition.
// UserID, LeaveType, and Days drive the balance adjustment: on approval,
// vacation and sick cut the matching balance column by Days; any other
// leave type changes no balance.
type DecisionUpdate struct {
	Status    Status
	Comment   string
	DecidedBy string // manager name, stored as approved_by for both verdicts
	DecidedAt time.Time
	UserID    string
	LeaveType string
	Days      int
}

// Store handles persistence for the leave tracker.
// Lookup methods return (nil, nil) when the record does not exist.
type Store interface {
	// CreateUser persists a new user. Returns ErrEmailTaken if the email
	// is already registered.
	CreateUser(ctx context.Context, u User) error

	// GetUserByEmail returns the user with the given email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// GetUserByID returns the user with the given id.
	GetUserByID(ctx context.Context, id string) (*User, error)

	// ListManagersByDepartment returns all managers in a department.
	ListManagersByDepartment(ctx context.Context, department string) ([]User, error)

	// CreateLeave persists a new leave request.
	CreateLeave(ctx context.Context, l Leave) error

	// GetLeave returns the leave with the given id.
	GetLeave(ctx context.Context, id string) (*Leave, error)

	// DecideLeave applies a decision with a conditional status transition
	// and, on approval of a balance-bearing leave type, the balance
	// decrement, all in one database transaction. Returns false when the
	// leave was not in pending state (zero rows affected).
	DecideLeave(ctx context.Context, leaveID string, upd DecisionUpdate) (bool, error)

	// ListLeavesByUser returns a user's leaves, newest submitted_at first.
	ListLeavesByUser(ctx context.Context, userID string) ([]Leave, error)

	// ListLeavesByDepartment returns a department's leaves, newest first.
	// When status is non-empty only matching leaves are returned.
	ListLeavesByDepartment(ctx context.Context, department string, status Status) ([]Leave, error)

	// CreateNotification persists the durable trace of a submission.
	CreateNotification(ctx context.Context, n Notification) error
}
