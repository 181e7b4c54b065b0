package resume

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-ats/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-ats/internal/rbac"
	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

// Handler serves /api/resumes.
type Handler struct {
	logger   *slog.Logger
	parser   *Parser
	maxBytes int64
	rbac     rbac.Middleware
}

// NewHandler builds a Handler accepting uploads up to maxBytes.
func NewHandler(logger *slog.Logger, parser *Parser, maxBytes int64, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, parser: parser, maxBytes: maxBytes, rbac: rbac}
}

// MountRoutes registers resume endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/resumes", func(r chi.Router) {
		r.With(h.rbac.Require(rbac.ResourceCandidates, rbac.ActionAdd)).Post("/parse", h.parse)
	})
}

func (h *Handler) parse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.Error(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		httpx.Fail(w, shared.Invalid("A resume file is required"))
		return
	}
	defer file.Close()

	res, err := h.parser.Parse(r.Context(), header.Filename, file)
	if err != nil {
		httpx.FailRequest(w, r, h.logger, err)
		return
	}
	httpx.OK(w, res)
}
