/*
middleware.go - Authentication, authorization, and request logging

PURPOSE:
  Per-request plumbing in front of the handlers:
  - Authenticate: bearer token -> verified user loaded into the context
  - RequireRole:  role allow-list guard for a route subtree
  - RequestLogger: structured access log via logrus

AUTH MODEL:
  The token only carries the user ID. The user record (and its role) is
  re-read from the store on every request, so deactivation and role
  changes take effect on the very next call.

SEE ALSO:
  - auth/token.go: Token verification
  - server.go: Where the middleware stack is assembled
*/
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/waqtek/hr-ledger/auth"
	"github.com/waqtek/hr-ledger/ledger"
)

type contextKey string

const userContextKey contextKey = "hr-ledger.user"

// currentUser returns the authenticated user from the request context,
// nil when the request did not pass Authenticate.
func currentUser(ctx context.Context) *ledger.User {
	u, _ := ctx.Value(userContextKey).(*ledger.User)
	return u
}

// Authenticate verifies the bearer token and loads the user into the
// request context. 401 on any failure.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "Missing or malformed Authorization header", nil)
			return
		}

		userID, err := h.Tokens.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token", nil)
			return
		}

		user, err := h.Store.GetUser(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to load user", err)
			return
		}
		if user == nil || !user.IsActive {
			writeError(w, http.StatusUnauthorized, "Account unknown or deactivated", nil)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole guards a route subtree with a role allow-list. Must run
// after Authenticate.
func RequireRole(roles ...ledger.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := currentUser(r.Context())
			if user == nil {
				writeError(w, http.StatusUnauthorized, "Authentication required", nil)
				return
			}
			if !auth.Allowed(user.Role, roles...) {
				writeError(w, http.StatusForbidden, "Insufficient permissions", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger emits one structured log line per request.
func RequestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
				"request_id": middleware.GetReqID(r.Context()),
			}).Info("request completed")
		})
	}
}
