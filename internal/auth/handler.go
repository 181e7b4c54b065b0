package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-ats/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers /api/auth. login and register are public; logout and
// me verify the bearer token themselves.
func (h *Handler) MountRoutes(r chi.Router) {
	actions := httpx.Actions{
		"login":    h.login,
		"register": h.register,
		"logout":   h.withPrincipal(h.logout),
		"me":       h.withPrincipal(h.me),
	}
	r.Route("/auth", func(r chi.Router) {
		r.Use(httpx.ActionMiddleware(64 << 10))
		r.Get("/", actions.ServeHTTP)
		r.Post("/", actions.ServeHTTP)
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.ActionFrom(r.Context()).Bind(&req); err != nil {
		httpx.Fail(w, err)
		return
	}
	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.FailRequest(w, r, h.logger, err)
		return
	}
	httpx.Message(w, "Login successful", session)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.ActionFrom(r.Context()).Bind(&req); err != nil {
		httpx.Fail(w, err)
		return
	}
	session, err := h.service.Register(r.Context(), req)
	if err != nil {
		httpx.FailRequest(w, r, h.logger, err)
		return
	}
	httpx.Created(w, session, "Registration successful")
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), shared.PrincipalFromContext(r.Context())); err != nil {
		httpx.FailRequest(w, r, h.logger, err)
		return
	}
	httpx.Message(w, "Logged out", nil)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Me(r.Context(), shared.PrincipalFromContext(r.Context()))
	if err != nil {
		httpx.FailRequest(w, r, h.logger, err)
		return
	}
	httpx.OK(w, session)
}

func (h *Handler) withPrincipal(next http.HandlerFunc) http.HandlerFunc {
	return h.service.Authenticator(next).ServeHTTP
}
