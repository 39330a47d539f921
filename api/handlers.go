/*
handlers.go - HTTP API handlers for the leave tracker

PURPOSE:
  Exposes the leave lifecycle engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Auth:
    POST   /api/login                  Log in, sets session cookie
    POST   /api/register               Create account
    POST   /api/logout                 Clear session cookie

  Employee:
    GET    /api/user/profile           Caller's own account
    GET    /api/managers/department    Managers in caller's department
    POST   /api/leaves/submit          Submit a leave request
    GET    /api/leaves/my-requests     Caller's leave history
    GET    /api/calendar/leaves        Approved leaves, caller's department
    GET    /api/events                 SSE stream (stream.go)

  Manager:
    GET    /api/leaves/pending         Department's pending leaves
    GET    /api/leaves/all             Department's full history
    POST   /api/leaves/{id}/approve    Approve with optional comment
    POST   /api/leaves/{id}/reject     Reject with optional comment

ERROR HANDLING:
  Domain sentinels map to HTTP status and the frontend's payload shapes:
  - 400: Validation errors, duplicate email
  - 401: Invalid credentials, missing session
  - 403: Non-manager, cross-department decision
  - 404: Unknown leave or user
  - 409: Leave already decided
  - 503: Store unavailable

SEE ALSO:
  - dto.go: Request/response data structures
  - stream.go: SSE event stream
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/leave-tracker/auth"
	"github.com/warp/leave-tracker/leave"
	"github.com/warp/leave-tracker/notify"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine   *leave.Engine
	Sessions *auth.Sessions
	Hub      *notify.Hub
	Logger   *slog.Logger
}

// NewHandler wires the handler set. A nil logger falls back to slog.Default.
func NewHandler(engine *leave.Engine, sessions *auth.Sessions, hub *notify.Hub, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Engine: engine, Sessions: sessions, Hub: hub, Logger: logger}
}

// =============================================================================
// AUTH ENDPOINTS
// =============================================================================

// Login authenticates a user and sets the session cookie.
// POST /api/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	u, err := h.Engine.UserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, leave.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, MessageResponse{Success: false, Message: "Invalid credentials"})
			return
		}
		h.storeFailure(w, "login", err)
		return
	}

	if err := auth.VerifyPassword(u.PasswordHash, req.Password); err != nil {
		writeJSON(w, http.StatusUnauthorized, MessageResponse{Success: false, Message: "Invalid credentials"})
		return
	}

	token, err := h.Sessions.Issue(*u)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	h.setSessionCookie(w, token)

	writeJSON(w, http.StatusOK, LoginResponse{
		Success: true,
		Role:    string(u.Role),
		Name:    u.Name,
	})
}

// Register creates a user account with the registration defaults.
// POST /api/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, MessageResponse{Success: false, Message: "Name, email and password are required"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	u, err := h.Engine.Register(r.Context(), leave.RegisterInput{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         leave.Role(req.Role),
		Department:   req.Department,
	})
	if err != nil {
		if errors.Is(err, leave.ErrEmailTaken) {
			writeJSON(w, http.StatusBadRequest, MessageResponse{Success: false, Message: "Email already exists"})
			return
		}
		h.storeFailure(w, "register", err)
		return
	}

	writeJSON(w, http.StatusCreated, RegisterResponse{
		Success: true,
		Message: "Registration successful",
		UserID:  u.ID,
	})
}

// Logout clears the session cookie.
// POST /api/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "Logged out"})
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.Sessions.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// =============================================================================
// EMPLOYEE ENDPOINTS
// =============================================================================

// Profile returns the caller's own account view.
// GET /api/user/profile
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	u, err := h.Engine.Profile(r.Context(), actor.ID)
	if err != nil {
		if leave.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		h.storeFailure(w, "profile", err)
		return
	}

	writeJSON(w, http.StatusOK, ProfileDTO{
		Name:            u.Name,
		Email:           u.Email,
		Department:      u.Department,
		Role:            string(u.Role),
		VacationBalance: u.VacationBalance,
		SickBalance:     u.SickBalance,
	})
}

// DepartmentManagers lists the managers sharing the caller's department.
// GET /api/managers/department
func (h *Handler) DepartmentManagers(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	managers, err := h.Engine.DepartmentManagers(r.Context(), actor.ID)
	if err != nil {
		if leave.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		h.storeFailure(w, "managers", err)
		return
	}

	dtos := make([]ManagerDTO, 0, len(managers))
	for _, m := range managers {
		dtos = append(dtos, ManagerDTO{ID: m.ID, Name: m.Name, Department: m.Department})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SubmitLeave submits a leave request for the caller.
// POST /api/leaves/submit
func (h *Handler) SubmitLeave(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	var req SubmitLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date format (use YYYY-MM-DD)")
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date format (use YYYY-MM-DD)")
		return
	}
	if req.LeaveType == "" {
		writeError(w, http.StatusBadRequest, "leave_type is required")
		return
	}

	l, err := h.Engine.Submit(r.Context(), actor, leave.SubmitInput{
		LeaveType: req.LeaveType,
		StartDate: start,
		EndDate:   end,
		Reason:    req.Reason,
	})
	if err != nil {
		if leave.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		h.storeFailure(w, "submit", err)
		return
	}

	writeJSON(w, http.StatusCreated, SubmitLeaveResponse{
		Success: true,
		Message: "Leave request submitted successfully",
		LeaveID: l.ID,
	})
}

// MyRequests returns the caller's leave history, newest first.
// GET /api/leaves/my-requests
func (h *Handler) MyRequests(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	leaves, err := h.Engine.ListMine(r.Context(), actor.ID)
	if err != nil {
		h.storeFailure(w, "my-requests", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTOs(leaves))
}

// Calendar returns the caller's department's approved leaves as calendar
// entries.
// GET /api/calendar/leaves
func (h *Handler) Calendar(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	entries, err := h.Engine.CalendarView(r.Context(), actor.Department)
	if err != nil {
		h.storeFailure(w, "calendar", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// =============================================================================
// MANAGER ENDPOINTS
// =============================================================================

// PendingLeaves returns the manager's department's pending leaves.
// GET /api/leaves/pending
func (h *Handler) PendingLeaves(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	leaves, err := h.Engine.ListPendingForDepartment(r.Context(), actor.Department)
	if err != nil {
		h.storeFailure(w, "pending", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTOs(leaves))
}

// AllLeaves returns the manager's department's full leave history.
// GET /api/leaves/all
func (h *Handler) AllLeaves(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	leaves, err := h.Engine.ListAllForDepartment(r.Context(), actor.Department)
	if err != nil {
		h.storeFailure(w, "all", err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTOs(leaves))
}

// ApproveLeave approves a pending leave.
// POST /api/leaves/{id}/approve
func (h *Handler) ApproveLeave(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, leave.DecisionApprove, "Leave approved")
}

// RejectLeave rejects a pending leave.
// POST /api/leaves/{id}/reject
func (h *Handler) RejectLeave(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, leave.DecisionReject, "Leave rejected")
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, decision leave.Decision, okMessage string) {
	actor, _ := ActorFromContext(r.Context())
	leaveID := chi.URLParam(r, "id")

	var req DecisionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	_, err := h.Engine.Decide(r.Context(), actor, leaveID, decision, req.Comment)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: okMessage})
	case errors.Is(err, leave.ErrLeaveNotFound):
		writeError(w, http.StatusNotFound, "Leave not found")
	case leave.IsAuthz(err):
		writeError(w, http.StatusForbidden, "Unauthorized")
	case errors.Is(err, leave.ErrAlreadyDecided):
		writeError(w, http.StatusConflict, "Leave already decided")
	default:
		h.storeFailure(w, "decide", err)
	}
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func (h *Handler) storeFailure(w http.ResponseWriter, op string, err error) {
	h.Logger.Error("store failure", "op", op, "error", err)
	if errors.Is(err, leave.ErrStoreUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "Service temporarily unavailable")
		return
	}
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
