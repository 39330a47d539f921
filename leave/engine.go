/*
engine.go - Leave lifecycle engine

PURPOSE:
  Implements the one real state machine in the system:

    submit -> pending -> approved | rejected

  plus the balance adjustment on approval and the fan-out triggers on both
  sides of the lifecycle. Handlers stay thin: they parse HTTP and call in.

TRANSITION GUARD:
  Decide relies on the store's conditional update, "set status where
  id = ? and status = 'pending'", and treats zero rows affected as
  ErrAlreadyDecided. Deciding twice is a 409, never a second balance cut,
  even under concurrent requests.

DEPARTMENT AUTHORIZATION:
  Decide requires the acting manager's department to match the leave's
  snapshotted department.

TIMEOUTS AND RETRIES:
  Every store call runs under a bounded timeout. Read-only listings retry
  transient store failures with a short fibonacci backoff; write paths
  never retry.

SEE ALSO:
  - store.go: Store interface and the DecideLeave contract
  - notify/hub.go: Fan-out target
*/
package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"github.com/warp/leave-tracker/notify"
)

// Publisher is the fan-out seam. Publish must not block; the engine calls
// it fire-and-forget after the durable write has committed.
type Publisher interface {
	Publish(room string, event notify.Event)
}

// DefaultStoreTimeout bounds a single datastore call when the engine is
// constructed without an explicit timeout.
const DefaultStoreTimeout = 5 * time.Second

// listRetries is the bounded retry budget for read-only listings.
const listRetries = 2

// Engine coordinates the leave lifecycle against a Store and a Publisher.
type Engine struct {
	store   Store
	pub     Publisher
	logger  *slog.Logger
	timeout time.Duration

	// Seams for tests.
	now   func() time.Time
	newID func() string
}

// NewEngine creates an engine. Publisher may be nil (events are skipped);
// a nil logger falls back to slog.Default; a zero timeout uses
// DefaultStoreTimeout.
func NewEngine(store Store, pub Publisher, logger *slog.Logger, timeout time.Duration) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &Engine{
		store:   store,
		pub:     pub,
		logger:  logger,
		timeout: timeout,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.timeout)
}

func (e *Engine) publish(room string, event notify.Event) {
	if e.pub == nil {
		return
	}
	e.pub.Publish(room, event)
}

// storeErr normalizes datastore failures so handlers can map them to a 503.
func storeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

// =============================================================================
// IDENTITY OPERATIONS
// =============================================================================

// RegisterInput is the data needed to create a user. PasswordHash is an
// opaque credential produced by the auth layer; the engine never sees
// plaintext passwords.
type RegisterInput struct {
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Department   string
}

// Register creates a user with the registration defaults applied: role
// employee, department General, vacation 20, sick 10.
func (e *Engine) Register(ctx context.Context, in RegisterInput) (*User, error) {
	role := in.Role
	if role == "" {
		role = RoleEmployee
	}
	department := in.Department
	if department == "" {
		department = DefaultDepartment
	}

	u := User{
		ID:              e.newID(),
		Name:            in.Name,
		Email:           in.Email,
		PasswordHash:    in.PasswordHash,
		Role:            role,
		Department:      department,
		VacationBalance: DefaultVacationBalance,
		SickBalance:     DefaultSickBalance,
		CreatedAt:       e.now(),
	}

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	if err := e.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, storeErr(err)
	}
	return &u, nil
}

// UserByEmail looks a user up for login. Returns ErrInvalidCredentials for
// an unknown email so callers cannot distinguish missing users from wrong
// passwords.
func (e *Engine) UserByEmail(ctx context.Context, email string) (*User, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	u, err := e.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, storeErr(err)
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Profile returns the caller's own user record.
func (e *Engine) Profile(ctx context.Context, userID string) (*User, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	u, err := e.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// DepartmentManagers returns the managers sharing the caller's department.
func (e *Engine) DepartmentManagers(ctx context.Context, userID string) ([]User, error) {
	u, err := e.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	var managers []User
	err = e.listWithRetry(ctx, func(ctx context.Context) error {
		var lerr error
		managers, lerr = e.store.ListManagersByDepartment(ctx, u.Department)
		return lerr
	})
	if err != nil {
		return nil, err
	}
	return managers, nil
}

// =============================================================================
// LIFECYCLE OPERATIONS
// =============================================================================

// SubmitInput is a leave submission. Dates are inclusive calendar dates;
// ordering is deliberately not validated.
type SubmitInput struct {
	LeaveType string
	StartDate time.Time
	EndDate   time.Time
	Reason    string
}

// Submit creates a pending leave with the caller's department snapshot,
// writes the durable notification row, and fans the event out to the
// department's managers room. Exactly one leave and one notification per
// call.
func (e *Engine) Submit(ctx context.Context, actor Actor, in SubmitInput) (*Leave, error) {
	tctx, cancel := e.withTimeout(ctx)
	defer cancel()

	// Snapshot name/department from the user row, not the session: the
	// denormalized copy must reflect the state at submission time.
	u, err := e.store.GetUserByID(tctx, actor.ID)
	if err != nil {
		return nil, storeErr(err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	l := Leave{
		ID:          e.newID(),
		UserID:      u.ID,
		UserName:    u.Name,
		Department:  u.Department,
		LeaveType:   in.LeaveType,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Reason:      in.Reason,
		Status:      StatusPending,
		SubmittedAt: e.now(),
	}

	if err := e.store.CreateLeave(tctx, l); err != nil {
		return nil, storeErr(err)
	}

	n := Notification{
		ID:         e.newID(),
		Type:       notify.EventNewLeaveRequest,
		Message:    fmt.Sprintf("%s (%s) submitted a new leave request", u.Name, u.Department),
		LeaveID:    l.ID,
		Department: u.Department,
		CreatedAt:  e.now(),
		IsRead:     false,
	}
	if err := e.store.CreateNotification(tctx, n); err != nil {
		return nil, storeErr(err)
	}

	e.publish(notify.DepartmentManagersRoom(u.Department), notify.Event{
		Name: notify.EventNewLeaveRequest,
		Data: map[string]string{
			"leave_id":   l.ID,
			"user_name":  u.Name,
			"department": u.Department,
			"leave_type": l.LeaveType,
			"start_date": l.StartDate.Format("2006-01-02"),
			"end_date":   l.EndDate.Format("2006-01-02"),
		},
	})

	e.logger.Info("leave submitted",
		"leave_id", l.ID, "user_id", u.ID, "department", u.Department,
		"leave_type", l.LeaveType)
	return &l, nil
}

// Decide applies a manager's verdict to a pending leave. Approval of a
// vacation or sick leave cuts the matching balance by the inclusive day
// count; any other leave type changes no balance. The submitter's live
// sessions receive a status-update event.
func (e *Engine) Decide(ctx context.Context, actor Actor, leaveID string, decision Decision, comment string) (*Leave, error) {
	if !actor.IsManager() {
		return nil, ErrNotManager
	}

	var status Status
	switch decision {
	case DecisionApprove:
		status = StatusApproved
	case DecisionReject:
		status = StatusRejected
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidDecision, decision)
	}

	tctx, cancel := e.withTimeout(ctx)
	defer cancel()

	l, err := e.store.GetLeave(tctx, leaveID)
	if err != nil {
		return nil, storeErr(err)
	}
	if l == nil {
		return nil, ErrLeaveNotFound
	}
	if l.Department != actor.Department {
		return nil, ErrWrongDepartment
	}

	upd := DecisionUpdate{
		Status:    status,
		Comment:   comment,
		DecidedBy: actor.Name,
		DecidedAt: e.now(),
		UserID:    l.UserID,
		LeaveType: l.LeaveType,
	}
	if status == StatusApproved {
		upd.Days = l.Days()
	}

	ok, err := e.store.DecideLeave(tctx, leaveID, upd)
	if err != nil {
		return nil, storeErr(err)
	}
	if !ok {
		// Row exists but is no longer pending: a concurrent or earlier
		// decision won.
		return nil, ErrAlreadyDecided
	}

	l.Status = status
	l.ManagerComment = comment
	l.ApprovedBy = upd.DecidedBy
	l.ApprovedAt = &upd.DecidedAt

	e.publish(notify.UserRoom(l.UserID), notify.Event{
		Name: notify.EventLeaveStatusUpdate,
		Data: map[string]string{
			"leave_id": l.ID,
			"status":   string(status),
			"comment":  comment,
		},
	})

	e.logger.Info("leave decided",
		"leave_id", l.ID, "status", status, "decided_by", actor.Name)
	return l, nil
}

// =============================================================================
// LISTINGS
// =============================================================================

// listWithRetry runs a read-only store call under the bounded timeout,
// retrying transient failures with a short fibonacci backoff.
func (e *Engine) listWithRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(listRetries, retry.NewFibonacci(50*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		tctx, cancel := e.withTimeout(ctx)
		defer cancel()
		if err := fn(tctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return storeErr(err)
	}
	return nil
}

// ListMine returns the caller's leaves, all statuses, newest first.
func (e *Engine) ListMine(ctx context.Context, userID string) ([]Leave, error) {
	var leaves []Leave
	err := e.listWithRetry(ctx, func(ctx context.Context) error {
		var lerr error
		leaves, lerr = e.store.ListLeavesByUser(ctx, userID)
		return lerr
	})
	return leaves, err
}

// ListPendingForDepartment returns a department's pending leaves, newest first.
func (e *Engine) ListPendingForDepartment(ctx context.Context, department string) ([]Leave, error) {
	var leaves []Leave
	err := e.listWithRetry(ctx, func(ctx context.Context) error {
		var lerr error
		leaves, lerr = e.store.ListLeavesByDepartment(ctx, department, StatusPending)
		return lerr
	})
	return leaves, err
}

// ListAllForDepartment returns a department's leaves of all statuses, newest first.
func (e *Engine) ListAllForDepartment(ctx context.Context, department string) ([]Leave, error) {
	var leaves []Leave
	err := e.listWithRetry(ctx, func(ctx context.Context) error {
		var lerr error
		leaves, lerr = e.store.ListLeavesByDepartment(ctx, department, "")
		return lerr
	})
	return leaves, err
}

// CalendarView renders a department's approved leaves as calendar entries.
// Pending and rejected leaves never appear.
func (e *Engine) CalendarView(ctx context.Context, department string) ([]CalendarEntry, error) {
	var leaves []Leave
	err := e.listWithRetry(ctx, func(ctx context.Context) error {
		var lerr error
		leaves, lerr = e.store.ListLeavesByDepartment(ctx, department, StatusApproved)
		return lerr
	})
	if err != nil {
		return nil, err
	}

	entries := make([]CalendarEntry, 0, len(leaves))
	for _, l := range leaves {
		entries = append(entries, CalendarEntry{
			ID:    l.ID,
			Title: calendarTitle(l),
			Start: l.StartDate.Format("2006-01-02"),
			End:   l.EndDate.Format("2006-01-02"),
			Type:  l.LeaveType,
		})
	}
	return entries, nil
}
