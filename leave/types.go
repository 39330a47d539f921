// Package leave implements the leave-request lifecycle: submission,
// manager decision, balance adjustment, and the listings that back the
// employee and manager views.
package leave

import (
	"strings"
	"time"
)

// =============================================================================
// ROLES AND STATUSES
// =============================================================================

// Role classifies a user as employee or manager.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
)

// Status is the lifecycle state of a leave request.
// pending is the only non-terminal state; transitions happen only through
// Engine.Decide.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Decision is a manager's verdict on a pending leave.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Leave types are an open set; only these two affect balances.
const (
	TypeVacation = "vacation"
	TypeSick     = "sick"
)

// DefaultDepartment is assigned at registration when none is given.
const DefaultDepartment = "General"

// Registration defaults for leave balances, in days.
const (
	DefaultVacationBalance = 20
	DefaultSickBalance     = 10
)

// =============================================================================
// DOMAIN TYPES
// =============================================================================

// User is an identity record with its two leave balances.
// Balances are plain day counts and may go negative; only Engine.Decide
// mutates them.
type User struct {
	ID              string
	Name            string
	Email           string
	PasswordHash    string
	Role            Role
	Department      string
	VacationBalance int
	SickBalance     int
	CreatedAt       time.Time
}

// Actor identifies the authenticated caller of an engine operation.
type Actor struct {
	ID         string
	Name       string
	Role       Role
	Department string
}

// IsManager reports whether the actor holds the manager role.
func (a Actor) IsManager() bool { return a.Role == RoleManager }

// Leave is a single leave request. UserName and Department are snapshots
// taken at submission time; they are never re-derived from the user row.
type Leave struct {
	ID             string
	UserID         string
	UserName       string
	Department     string
	LeaveType      string
	StartDate      time.Time // inclusive calendar date
	EndDate        time.Time // inclusive calendar date
	Reason         string
	Status         Status
	SubmittedAt    time.Time
	ManagerComment string
	ApprovedBy     string
	ApprovedAt     *time.Time
}

// Days returns the inclusive day count of the leave:
// (end - start).days + 1. Ordering of the dates is not validated at
// submission, so this can be zero or negative for inverted ranges.
func (l Leave) Days() int {
	return int(l.EndDate.Sub(l.StartDate).Hours()/24) + 1
}

// Notification is the durable trace of a submission event. It is write-only
// in this core: IsRead is set at creation and never updated.
type Notification struct {
	ID         string
	Type       string
	Message    string
	LeaveID    string
	Department string
	CreatedAt  time.Time
	IsRead     bool
}

// CalendarEntry is one approved leave rendered for the department calendar.
type CalendarEntry struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Start string `json:"start"`
	End   string `json:"end"`
	Type  string `json:"type"`
}

// calendarTitle builds "Jane Doe - Vacation" from a leave snapshot.
func calendarTitle(l Leave) string {
	t := l.LeaveType
	if t != "" {
		t = strings.ToUpper(t[:1]) + t[1:]
	}
	return l.UserName + " - " + t
}
