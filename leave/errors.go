/*
errors.go - Centralized error types for the leave lifecycle

PURPOSE:
  All sentinel errors in one place for consistency and discoverability.
  The HTTP layer maps these to status codes; the engine never speaks HTTP.

ERROR CATEGORIES:
  1. Lookup errors   - missing leave or user records
  2. Authz errors    - caller not allowed to decide
  3. Conflict errors - state machine violations, duplicate registration
  4. Store errors    - datastore unreachable or timing out

USAGE:
  if errors.Is(err, leave.ErrAlreadyDecided) {
      // surface as 409
  }
*/
package leave

import "errors"

var (
	// ErrLeaveNotFound is returned when operating on a nonexistent leave id.
	ErrLeaveNotFound = errors.New("leave not found")

	// ErrUserNotFound is returned when the caller's user row is missing.
	ErrUserNotFound = errors.New("user not found")

	// ErrAlreadyDecided is returned when Decide targets a leave that is no
	// longer pending. The conditional update reports zero rows affected and
	// the transition is refused instead of re-applied.
	ErrAlreadyDecided = errors.New("leave already decided")

	// ErrNotManager is returned when a non-manager attempts a decision.
	ErrNotManager = errors.New("caller is not a manager")

	// ErrWrongDepartment is returned when a manager attempts to decide a
	// leave outside their own department.
	ErrWrongDepartment = errors.New("leave belongs to another department")

	// ErrEmailTaken is returned when registration reuses an existing email.
	ErrEmailTaken = errors.New("email already exists")

	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrStoreUnavailable wraps datastore failures that should surface as a
	// transient 503 rather than crash the request.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidDecision is returned for a decision other than approve/reject.
	ErrInvalidDecision = errors.New("invalid decision")
)

// IsNotFound reports whether err indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrLeaveNotFound) || errors.Is(err, ErrUserNotFound)
}

// IsConflict reports whether err indicates a state-machine or uniqueness conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyDecided) || errors.Is(err, ErrEmailTaken)
}

// IsAuthz reports whether err indicates an authorization failure.
func IsAuthz(err error) bool {
	return errors.Is(err, ErrNotManager) || errors.Is(err, ErrWrongDepartment)
}
