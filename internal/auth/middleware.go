package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/odyssey-erp/odyssey-ats/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

// BearerToken extracts the token from an Authorization header.
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// Authenticator rejects requests without a valid bearer token and stores the
// principal on the request context.
func (s *Service) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			httpx.Fail(w, shared.ErrUnauthorized)
			return
		}
		principal, err := s.Verify(r.Context(), token)
		if err != nil {
			if httpx.StatusFor(err) >= http.StatusInternalServerError {
				s.logger.Error("verify token", slog.Any("error", err))
			}
			httpx.Fail(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), principal)))
	})
}
