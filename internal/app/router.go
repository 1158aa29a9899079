package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/shelf-inventory/shelf/internal/auth"
	dashboardhttp "github.com/shelf-inventory/shelf/internal/dashboard/http"
	"github.com/shelf-inventory/shelf/internal/observability"
	"github.com/shelf-inventory/shelf/internal/platform/httpx"
	"github.com/shelf-inventory/shelf/internal/profile"
	"github.com/shelf-inventory/shelf/internal/shared"
	"github.com/shelf-inventory/shelf/internal/view"
	"github.com/shelf-inventory/shelf/jobs"
	"github.com/shelf-inventory/shelf/web"
)

// RouterParams collects the handlers mounted by NewRouter.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Templates        *view.Engine
	SessionManager   *shared.SessionManager
	CSRFManager      *shared.CSRFManager
	AuthHandler      *auth.Handler
	DashboardHandler *dashboardhttp.Handler
	ProfileHandler   *profile.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter builds the HTTP router.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok", "version": BuildVersion()})
	})

	if params.AuthHandler != nil {
		params.AuthHandler.MountRoutes(r)
		r.Group(func(pr chi.Router) {
			pr.Use(params.AuthHandler.RequireLogin)
			params.AuthHandler.MountProtectedRoutes(pr)
			if params.DashboardHandler != nil {
				params.DashboardHandler.MountRoutes(pr)
			}
			if params.ProfileHandler != nil {
				params.ProfileHandler.MountRoutes(pr)
			}
		})
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	r.NotFound(errorPage(params, http.StatusNotFound, "The page you are looking for does not exist."))
	r.MethodNotAllowed(errorPage(params, http.StatusMethodNotAllowed, "This action is not available here."))

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
// Static assets are cached for 1 hour in browser.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}

func errorPage(params RouterParams, status int, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if params.Templates == nil {
			http.Error(w, http.StatusText(status), status)
			return
		}
		data := view.NewTemplateData(r, params.CSRFManager, http.StatusText(status), map[string]any{
			"Status":  status,
			"Message": message,
		})
		if err := params.Templates.RenderStatus(w, status, "pages/error.html", data); err != nil {
			params.Logger.Error("render error page", slog.Any("error", err))
			http.Error(w, http.StatusText(status), status)
		}
	}
}
