package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jrsteele09/go-catalog-admin/internal/i18n"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	r := s.router
	r.Use(
		middleware.RequestID,
		s.LoggingMiddleware,
		middleware.Recoverer,
		s.FrameSecurityMiddleware,
		s.SameOriginMiddleware,
		i18n.Middleware,
	)

	r.Get(RouteHealth, s.HealthHandler())
	if s.deps.Gatherer != nil {
		r.Method(http.MethodGet, RouteMetrics, promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Get(RouteStaticCSS, s.serveFileHandler())

	r.Group(func(r chi.Router) {
		r.Use(s.CorsMiddleware)
		r.Get(RouteAPISession, s.SessionStatusHandler())
		r.Options(RouteAPISession, func(w http.ResponseWriter, r *http.Request) {})
	})

	// Public auth pages
	r.Get(RouteSignIn, s.SignInPageHandler())
	r.Post(RouteSignIn, s.SignInSubmissionHandler())
	r.Post(RouteSignOut, s.SignOutHandler())
	r.Get("/auth/*", redirectTo(RouteSignIn))

	// Private pages
	r.Group(func(r chi.Router) {
		r.Use(s.RequireAuthenticated)
		r.Get(RouteRoot, redirectTo(RouteProducts))
		r.Get(RouteProducts, s.ProductsPageHandler())
		r.Get(RouteProductCreate, s.ProductCreatePageHandler())
		r.Post(RouteProductCreate, s.ProductCreateSubmissionHandler())
		r.Get(RouteProduct, s.ProductPageHandler())
		r.Post(RouteProduct, s.ProductUpdateSubmissionHandler())
	})
}

func redirectTo(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := StreamAsset(w, "css", chi.URLParam(r, "file")); err != nil {
			s.logger.Warn().Err(err).Str("path", r.URL.Path).Msg("static file not served")
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
		}
	}
}
