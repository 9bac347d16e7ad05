package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aegis-campus/aegis/internal/auth"
	"github.com/aegis-campus/aegis/pkg/logger/sl"
)

func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := getRequestID(r.Context())

		log := s.log.With(
			slog.String("request_id", requestID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("user_agent", r.UserAgent()),
		)
		log.Info("request started")

		t1 := time.Now()

		next.ServeHTTP(w, r)

		log.Info("request completed",
			slog.String("duration", time.Since(t1).String()),
		)
	})
}

// authenticate validates the bearer token and stores the typed principal in
// the request context. Handlers downstream never see an unauthenticated
// request.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const bearerPrefix = "Bearer "

		authHeader := r.Header.Get("Authorization")

		token, ok := strings.CutPrefix(authHeader, bearerPrefix)
		if !ok || token == "" {
			s.respondError(w, http.StatusUnauthorized, "missing or invalid Authorization header")
			return
		}

		principal, err := s.tokens.ValidateToken(token)
		if err != nil {
			s.log.Warn("token validation failed",
				slog.String("request_id", getRequestID(r.Context())),
				sl.Err(err),
			)
			s.respondError(w, http.StatusUnauthorized, "invalid or expired token")

			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
	})
}

// requireRole rejects authenticated callers whose role is not in the allowed
// set. It must run after authenticate.
func (s *Server) requireRole(roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := auth.PrincipalFromContext(r.Context())
			if err != nil {
				s.respondError(w, http.StatusUnauthorized, "caller is not authenticated")
				return
			}

			for _, role := range roles {
				if principal.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			s.respondError(w, http.StatusForbidden, "operation not permitted")
		})
	}
}
