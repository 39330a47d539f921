/*
middleware.go - Session and role middleware

PURPOSE:
  Resolves the JWT session cookie into a leave.Actor and stores it in the
  request context. RequireSession gates the authenticated surface;
  RequireManager additionally gates the manager-only endpoints.

FAILURE SHAPES:
  Missing or invalid session: 401 {error: "Unauthorized"}
  Non-manager on a manager route: 403 {error: "Unauthorized"}

SEE ALSO:
  - auth/session.go: Token issuing and verification
  - server.go: Where the middleware is mounted
*/
package api

import (
	"context"
	"net/http"

	"github.com/warp/leave-tracker/auth"
	"github.com/warp/leave-tracker/leave"
)

type contextKey string

const actorKey contextKey = "actor"

// ActorFromContext returns the authenticated actor placed by RequireSession.
func ActorFromContext(ctx context.Context) (leave.Actor, bool) {
	a, ok := ctx.Value(actorKey).(leave.Actor)
	return a, ok
}

// RequireSession verifies the session cookie and injects the actor into the
// request context. Requests without a valid session get a 401.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(auth.SessionCookie)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
			return
		}

		actor, err := h.Sessions.Verify(cookie.Value)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
			return
		}

		ctx := context.WithValue(r.Context(), actorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireManager rejects non-manager actors. Mount inside RequireSession.
func (h *Handler) RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok || !actor.IsManager() {
			writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
