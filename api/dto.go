/*
dto.go - Request and response data structures

PURPOSE:
  JSON shapes exchanged with the browser frontend. Field names are part of
  the frontend contract; the underscore-prefixed `_id` on leave records is
  what the JS reads and must stay.

DATE FORMATS:
  Calendar dates travel as "YYYY-MM-DD"; timestamps as RFC 3339.

SEE ALSO:
  - handlers.go: Where these are read and written
*/
package api

import (
	"time"

	"github.com/warp/leave-tracker/leave"
)

// =============================================================================
// REQUESTS
// =============================================================================

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest creates an account. Role and Department are optional;
// registration defaults apply when absent.
type RegisterRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

// SubmitLeaveRequest is a leave submission.
type SubmitLeaveRequest struct {
	LeaveType string `json:"leave_type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

// DecisionRequest carries the optional manager comment for approve/reject.
type DecisionRequest struct {
	Comment string `json:"comment"`
}

// =============================================================================
// RESPONSES
// =============================================================================

// LoginResponse is returned on a successful login.
type LoginResponse struct {
	Success bool   `json:"success"`
	Role    string `json:"role"`
	Name    string `json:"name"`
}

// RegisterResponse is returned on successful registration.
type RegisterResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

// SubmitLeaveResponse acknowledges a submission.
type SubmitLeaveResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	LeaveID string `json:"leave_id"`
}

// MessageResponse is the generic {success, message} acknowledgement.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorResponse is the {error} shape used by the manager endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ProfileDTO is the caller's own account view.
type ProfileDTO struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Department      string `json:"department"`
	Role            string `json:"role"`
	VacationBalance int    `json:"vacation_balance"`
	SickBalance     int    `json:"sick_balance"`
}

// ManagerDTO is one entry in the department-managers listing.
type ManagerDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
}

// LeaveDTO is a leave record as the frontend consumes it.
type LeaveDTO struct {
	ID             string `json:"_id"`
	UserID         string `json:"user_id"`
	UserName       string `json:"user_name"`
	Department     string `json:"department"`
	LeaveType      string `json:"leave_type"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	Reason         string `json:"reason"`
	Status         string `json:"status"`
	SubmittedAt    string `json:"submitted_at"`
	ManagerComment string `json:"manager_comment,omitempty"`
	ApprovedBy     string `json:"approved_by,omitempty"`
	ApprovedAt     string `json:"approved_at,omitempty"`
}

func toLeaveDTO(l leave.Leave) LeaveDTO {
	dto := LeaveDTO{
		ID:             l.ID,
		UserID:         l.UserID,
		UserName:       l.UserName,
		Department:     l.Department,
		LeaveType:      l.LeaveType,
		StartDate:      l.StartDate.Format("2006-01-02"),
		EndDate:        l.EndDate.Format("2006-01-02"),
		Reason:         l.Reason,
		Status:         string(l.Status),
		SubmittedAt:    l.SubmittedAt.Format(time.RFC3339),
		ManagerComment: l.ManagerComment,
		ApprovedBy:     l.ApprovedBy,
	}
	if l.ApprovedAt != nil {
		dto.ApprovedAt = l.ApprovedAt.Format(time.RFC3339)
	}
	return dto
}

func toLeaveDTOs(leaves []leave.Leave) []LeaveDTO {
	dtos := make([]LeaveDTO, 0, len(leaves))
	for _, l := range leaves {
		dtos = append(dtos, toLeaveDTO(l))
	}
	return dtos
}
