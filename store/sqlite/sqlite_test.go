package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-tracker/leave"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testUser(id, email string, role leave.Role, department string) leave.User {
	return leave.User{
		ID:              id,
		Name:            "Test " + id,
		Email:           email,
		PasswordHash:    "$argon2id$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		Role:            role,
		Department:      department,
		VacationBalance: 20,
		SickBalance:     10,
		CreatedAt:       time.Now().UTC(),
	}
}

func testLeave(id, userID, department string, status leave.Status, submittedAt time.Time) leave.Leave {
	return leave.Leave{
		ID:          id,
		UserID:      userID,
		UserName:    "Test " + userID,
		Department:  department,
		LeaveType:   leave.TypeVacation,
		StartDate:   time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC),
		Reason:      "testing",
		Status:      status,
		SubmittedAt: submittedAt,
	}
}

// =============================================================================
// USERS
// =============================================================================

func TestCreateUser_AndLookups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := testUser("u1", "u1@example.com", leave.RoleEmployee, "Engineering")
	require.NoError(t, store.CreateUser(ctx, u))

	byEmail, err := store.GetUserByEmail(ctx, "u1@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Equal(t, u.PasswordHash, byEmail.PasswordHash)
	assert.Equal(t, 20, byEmail.VacationBalance)

	byID, err := store.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "u1@example.com", byID.Email)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testUser("u1", "dup@example.com", leave.RoleEmployee, "General")))

	err := store.CreateUser(ctx, testUser("u2", "dup@example.com", leave.RoleEmployee, "General"))
	assert.ErrorIs(t, err, leave.ErrEmailTaken)
}

func TestGetUser_MissingReturnsNilNil(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u, err := store.GetUserByEmail(ctx, "ghost@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)

	u, err = store.GetUserByID(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestListManagersByDepartment(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testUser("m1", "m1@example.com", leave.RoleManager, "Engineering")))
	require.NoError(t, store.CreateUser(ctx, testUser("m2", "m2@example.com", leave.RoleManager, "Sales")))
	require.NoError(t, store.CreateUser(ctx, testUser("e1", "e1@example.com", leave.RoleEmployee, "Engineering")))

	managers, err := store.ListManagersByDepartment(ctx, "Engineering")
	require.NoError(t, err)
	require.Len(t, managers, 1)
	assert.Equal(t, "m1", managers[0].ID)
}

// =============================================================================
// LEAVES
// =============================================================================

func TestCreateAndGetLeave(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testUser("u1", "u1@example.com", leave.RoleEmployee, "Engineering")))

	l := testLeave("l1", "u1", "Engineering", leave.StatusPending, time.Now().UTC())
	require.NoError(t, store.CreateLeave(ctx, l))

	got, err := store.GetLeave(ctx, "l1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, leave.StatusPending, got.Status)
	assert.Equal(t, "Engineering", got.Department)
	assert.True(t, got.StartDate.Equal(l.StartDate))
	assert.True(t, got.EndDate.Equal(l.EndDate))
	assert.Empty(t, got.ManagerComment)
	assert.Nil(t, got.ApprovedAt)
}

func TestGetLeave_MissingReturnsNilNil(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetLeave(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDecideLeave_ApproveCutsVacationBalance(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testUser("u1", "u1@example.com", leave.RoleEmployee, "Engineering")))
	require.NoError(t, store.CreateLeave(ctx, testLeave("l1", "u1", "Engineering", leave.StatusPending, time.Now().UTC())))

	decidedAt := time.Now().UTC()
	ok, err := store.DecideLeave(ctx, "l1", leave.DecisionUpdate{
		Status:    leave.StatusApproved,
		Comment:   "enjoy",
		DecidedBy: "Manager",
		DecidedAt: decidedAt,
		UserID:    "u1",
		LeaveType: leave.TypeVacation,
		Days:      5,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := store.GetLeave(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, leave.StatusApproved, got.Status)
	assert.Equal(t, "enjoy", got.ManagerComment)
	assert.Equal(t, "Manager", got.ApprovedBy)
	require.NotNil(t, got.ApprovedAt)

	u, err := store.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 15, u.VacationBalance)
	assert.Equal(t, 10, u.SickBalance)
}

func TestDecideLeave_ApproveSickCutsSickBalance(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testUser("u1", "u1@example.com", leave.RoleEmployee, "Engineering")))
	l := testLeave("l1", "u1", "Engineering", leave.StatusPending, time.Now().UTC())
	l.LeaveType = leave.TypeSick
	require.NoError(t, store.CreateLeave(ctx, l))

	ok, err := store.DecideLeave(ctx, "l1", leave.DecisionUpdate{
		Status:    leave.StatusApproved,
		DecidedBy: "Manager",
		DecidedAt: time.Now().UTC(),
		UserID:    "u1",
		LeaveType: leave.TypeSick,
		Days:      2,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	u, _ := store.GetUserByID(ctx, "u1")
	assert.Equal(t, 20, u.VacationBalance)
	assert.Equal(t, 8, u.SickBalance)
}

func TestDecideLeave_RejectLeavesBalancesAlone(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testUser("u1", "u1@example.com", leave.RoleEmployee, "Engineering")))
	require.NoError(t, store.CreateLeave(ctx, testLeave("l1", "u1", "Engineering", leave.StatusPending, time.Now().UTC())))

	ok, err := store.DecideLeave(ctx, "l1", leave.DecisionUpdate{
		Status:    leave.StatusRejected,
		Comment:   "no coverage",
		DecidedBy: "Manager",
		DecidedAt: time.Now().UTC(),
		UserID:    "u1",
		LeaveType: leave.TypeVacation,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	u, _ := store.GetUserByID(ctx, "u1")
	assert.Equal(t, 20, u.VacationBalance)
}

func TestDecideLeave_SecondDecisionDoesNotFire(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testUser("u1", "u1@example.com", leave.RoleEmployee, "Engineering")))
	require.NoError(t, store.CreateLeave(ctx, testLeave("l1", "u1", "Engineering", leave.StatusPending, time.Now().UTC())))

	upd := leave.DecisionUpdate{
		Status:    leave.StatusApproved,
		DecidedBy: "Manager",
		DecidedAt: time.Now().UTC(),
		UserID:    "u1",
		LeaveType: leave.TypeVacation,
		Days:      5,
	}

	ok, err := store.DecideLeave(ctx, "l1", upd)
	require.NoError(t, err)
	require.True(t, ok)

	// Second attempt matches zero pending rows; the balance must not be
	// cut again.
	ok, err = store.DecideLeave(ctx, "l1", upd)
	require.NoError(t, err)
	assert.False(t, ok)

	u, _ := store.GetUserByID(ctx, "u1")
	assert.Equal(t, 15, u.VacationBalance)
}

func TestDecideLeave_MissingLeave(t *testing.T) {
	store := newTestStore(t)

	ok, err := store.DecideLeave(context.Background(), "ghost", leave.DecisionUpdate{
		Status:    leave.StatusApproved,
		DecidedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.False(t, ok)
}

// =============================================================================
// LISTINGS
// =============================================================================

func TestListLeavesByUser_NewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testUser("u1", "u1@example.com", leave.RoleEmployee, "Engineering")))

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateLeave(ctx, testLeave("older", "u1", "Engineering", leave.StatusPending, base)))
	require.NoError(t, store.CreateLeave(ctx, testLeave("newer", "u1", "Engineering", leave.StatusPending, base.Add(time.Hour))))

	leaves, err := store.ListLeavesByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, leaves, 2)
	assert.Equal(t, "newer", leaves[0].ID)
	assert.Equal(t, "older", leaves[1].ID)
}

func TestListLeavesByDepartment_StatusFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, testUser("u1", "u1@example.com", leave.RoleEmployee, "Engineering")))
	require.NoError(t, store.CreateUser(ctx, testUser("u2", "u2@example.com", leave.RoleEmployee, "Sales")))

	now := time.Now().UTC()
	require.NoError(t, store.CreateLeave(ctx, testLeave("p1", "u1", "Engineering", leave.StatusPending, now)))
	require.NoError(t, store.CreateLeave(ctx, testLeave("a1", "u1", "Engineering", leave.StatusApproved, now)))
	require.NoError(t, store.CreateLeave(ctx, testLeave("s1", "u2", "Sales", leave.StatusPending, now)))

	pending, err := store.ListLeavesByDepartment(ctx, "Engineering", leave.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "p1", pending[0].ID)

	all, err := store.ListLeavesByDepartment(ctx, "Engineering", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

func TestCreateNotification(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	n := leave.Notification{
		ID:         "n1",
		Type:       "new_leave_request",
		Message:    "Test u1 (Engineering) submitted a new leave request",
		LeaveID:    "l1",
		Department: "Engineering",
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, store.CreateNotification(ctx, n))

	count, err := store.CountNotificationsByLeave(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// =============================================================================
// SEED
// =============================================================================

func TestSeed_LoadsDemoDataOnce(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Seed(ctx))

	mgr, err := store.GetUserByEmail(ctx, "manager@company.com")
	require.NoError(t, err)
	require.NotNil(t, mgr)
	assert.Equal(t, leave.RoleManager, mgr.Role)
	assert.Equal(t, "Engineering", mgr.Department)

	managers, err := store.ListManagersByDepartment(ctx, "Marketing")
	require.NoError(t, err)
	assert.Len(t, managers, 1)

	// Second call is a no-op, not a duplicate-key failure.
	require.NoError(t, store.Seed(ctx))

	sarah, err := store.GetUserByEmail(ctx, "sarah@company.com")
	require.NoError(t, err)
	require.NotNil(t, sarah)

	leaves, err := store.ListLeavesByUser(ctx, sarah.ID)
	require.NoError(t, err)
	assert.Len(t, leaves, 1)
}
