package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sarthaksaklani/enakart/internal/user"
)

const HeaderUserID = "x-user-id"

type ctxKey int

const userKey ctxKey = iota

type UserLoader interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// Identify loads the caller named by the x-user-id header. Requests without
// the header continue anonymously; a malformed or unknown id is rejected.
func Identify(users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(HeaderUserID)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := uuid.FromString(raw)
			if err != nil {
				respondWithServiceError(w, r, errUnauthorized, "Invalid x-user-id header")
				return
			}

			u, err := users.GetUserByID(r.Context(), id)
			if err != nil {
				if errors.Is(err, user.ErrNotFound) {
					respondWithServiceError(w, r, errUnauthorized, "Unknown user")
					return
				}
				respondWithServiceError(w, r, err, "Failed to identify user")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
		})
	}
}

// RequireUser rejects anonymous requests.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if currentUser(r) == nil {
			respondWithServiceError(w, r, errUnauthorized, "Missing x-user-id header")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole admits only identified callers holding one of roles.
func RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := currentUser(r)
			if u == nil {
				respondWithServiceError(w, r, errUnauthorized, "Missing x-user-id header")
				return
			}
			for _, role := range roles {
				if u.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			respondWithServiceError(w, r, errForbidden, "Role not allowed")
		})
	}
}

func currentUser(r *http.Request) *user.User {
	u, _ := r.Context().Value(userKey).(*user.User)
	return u
}

// viewerRole is the pricing role of the caller; anonymous callers are customers.
func viewerRole(r *http.Request) user.Role {
	if u := currentUser(r); u != nil {
		return u.Role
	}
	return user.RoleCustomer
}

// RequestLogger writes one zerolog line per request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			event := log.Info()
			if ww.Status() >= http.StatusInternalServerError {
				event = log.Error()
			}
			event.
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Msg("http request")
		}()

		next.ServeHTTP(ww, r)
	})
}
