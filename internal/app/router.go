package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/odyssey-ats/internal/announcements"
	"github.com/odyssey-erp/odyssey-ats/internal/auth"
	"github.com/odyssey-erp/odyssey-ats/internal/candidates"
	"github.com/odyssey-erp/odyssey-ats/internal/emaillogs"
	"github.com/odyssey-erp/odyssey-ats/internal/feed"
	"github.com/odyssey-erp/odyssey-ats/internal/interviews"
	"github.com/odyssey-erp/odyssey-ats/internal/jobposts"
	"github.com/odyssey-erp/odyssey-ats/internal/observability"
	"github.com/odyssey-erp/odyssey-ats/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-ats/internal/rbac"
	"github.com/odyssey-erp/odyssey-ats/internal/reports"
	"github.com/odyssey-erp/odyssey-ats/internal/resume"
	"github.com/odyssey-erp/odyssey-ats/internal/roles"
	"github.com/odyssey-erp/odyssey-ats/internal/search"
	"github.com/odyssey-erp/odyssey-ats/internal/teams"
	"github.com/odyssey-erp/odyssey-ats/internal/timeentries"
	"github.com/odyssey-erp/odyssey-ats/internal/transfer"
	"github.com/odyssey-erp/odyssey-ats/internal/users"
	"github.com/odyssey-erp/odyssey-ats/jobs"
)

// RouterParams groups dependencies for building the HTTP router. Nil
// handlers are skipped.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Metrics        *observability.Metrics
	RBACMiddleware rbac.Middleware
	// Authenticate guards every /api route except /api/auth.
	Authenticate func(http.Handler) http.Handler

	AuthHandler          *auth.Handler
	UsersHandler         *users.Handler
	RolesHandler         *roles.Handler
	CandidatesHandler    *candidates.Handler
	JobPostsHandler      *jobposts.Handler
	InterviewsHandler    *interviews.Handler
	TeamsHandler         *teams.Handler
	TimeEntriesHandler   *timeentries.Handler
	AnnouncementsHandler *announcements.Handler
	EmailLogsHandler     *emaillogs.Handler
	FeedHandler          *feed.Handler
	TransferHandler      *transfer.Handler
	SearchHandler        *search.Handler
	ResumeHandler        *resume.Handler
	ReportsHandler       *reports.Handler
	QueueHandler         *jobs.Handler
}

// NewRouter constructs the chi.Router with the API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}
	if params.Config == nil || !params.Config.IsProduction() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		if params.AuthHandler != nil {
			params.AuthHandler.MountRoutes(r)
		}
		r.Group(func(r chi.Router) {
			if params.Authenticate != nil {
				r.Use(params.Authenticate)
			}
			mountAPI(r, params)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Error(w, http.StatusNotFound, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}

func mountAPI(r chi.Router, params RouterParams) {
	if params.CandidatesHandler != nil {
		var extra []func(chi.Router)
		if params.TransferHandler != nil {
			extra = append(extra, params.TransferHandler.CandidateRoutes)
		}
		if params.SearchHandler != nil {
			extra = append(extra, params.SearchHandler.MountRoutes)
		}
		params.CandidatesHandler.MountRoutes(r, extra...)
	}
	if params.JobPostsHandler != nil {
		var extra []func(chi.Router)
		if params.TransferHandler != nil {
			extra = append(extra, params.TransferHandler.JobRoutes)
		}
		params.JobPostsHandler.MountRoutes(r, extra...)
	}

	if params.UsersHandler != nil {
		params.UsersHandler.MountRoutes(r)
	}
	if params.RolesHandler != nil {
		params.RolesHandler.MountRoutes(r)
	}
	if params.InterviewsHandler != nil {
		params.InterviewsHandler.MountRoutes(r)
	}
	if params.TeamsHandler != nil {
		params.TeamsHandler.MountRoutes(r)
	}
	if params.TimeEntriesHandler != nil {
		params.TimeEntriesHandler.MountRoutes(r)
	}
	if params.AnnouncementsHandler != nil {
		params.AnnouncementsHandler.MountRoutes(r)
	}
	if params.EmailLogsHandler != nil {
		params.EmailLogsHandler.MountRoutes(r)
	}
	if params.FeedHandler != nil {
		params.FeedHandler.MountRoutes(r)
	}
	if params.ResumeHandler != nil {
		params.ResumeHandler.MountRoutes(r)
	}
	if params.ReportsHandler != nil {
		params.ReportsHandler.MountRoutes(r)
	}

	if params.QueueHandler != nil {
		r.With(params.RBACMiddleware.Require(rbac.ResourceDashboard, rbac.ActionView)).
			Route("/queue", params.QueueHandler.MountRoutes)
	}
}
