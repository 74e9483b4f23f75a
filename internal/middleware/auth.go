package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/justuscbyok/fitnesstracker/internal/auth"
	"github.com/justuscbyok/fitnesstracker/internal/fitness"
	"github.com/justuscbyok/fitnesstracker/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=$GOFILE -destination=auth_mocks_test.go -package=middleware_test

type userGetter interface {
	GetUserByUsername(ctx context.Context, username string) (*fitness.User, error)
}

// AuthMiddlewareHandler guards the API with bearer session tokens. The
// resolved user lands in the request context for the handlers.
type AuthMiddlewareHandler struct {
	loginChecker auth.Checker
	users        userGetter
	allowedPaths map[string]bool
}

func NewAuthMiddlewareHandler(
	loginChecker auth.Checker,
	users userGetter,
) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		loginChecker: loginChecker,
		users:        users,
		allowedPaths: map[string]bool{
			// misc handler:
			"/":        true,
			"/healthz": true,
			"/version": true,

			// register and login:
			"/users/register": true,
			"/users/token":    true,
		},
	}
}

// BearerToken pulls the token out of the Authorization header, with
// an empty string for missing or malformed values.
func BearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	token, found := strings.CutPrefix(authHeader, "Bearer ")
	if !found {
		return ""
	}
	return strings.TrimSpace(token)
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.allowedPaths[r.URL.Path] {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			authToken := BearerToken(r)
			if authToken == "" {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				respondUnauthorized(w)
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			username, err := h.loginChecker.LoggedInUser(ctx, authToken)
			if err != nil {
				if !errors.Is(err, auth.ErrNotLoggedIn) {
					log.Errorf("[failed login check] => %s: %s", r.URL.Path, err)
				}
				respondUnauthorized(w)
				span.SetStatus(codes.Error, "not-logged")
				return
			}

			user, err := h.users.GetUserByUsername(ctx, username)
			if err != nil {
				// the session outlived its user
				log.Tracef("[unknown session user %q] unauthorized => %s", username, r.URL.Path)
				respondUnauthorized(w)
				span.SetStatus(codes.Error, "unknown-session-user")
				return
			}
			if !user.IsActive {
				http.Error(w, "inactive user", http.StatusBadRequest)
				span.SetStatus(codes.Error, "inactive-user")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(auth.ContextWithUser(ctx, user)))
		})
	}
}

func respondUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	http.Error(w, "no can do", http.StatusUnauthorized)
}
