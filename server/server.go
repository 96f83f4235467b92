package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/go-catalog-admin/auth"
	"github.com/jrsteele09/go-catalog-admin/internal/config"
	"github.com/jrsteele09/go-catalog-admin/products"
	"github.com/jrsteele09/go-catalog-admin/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Authenticator signs the administrator in and out.
type Authenticator interface {
	SignIn(ctx context.Context, creds auth.Credentials) (*sessions.Session, error)
	SignOut() error
}

// Catalog is the part of the catalog API the pages use.
type Catalog interface {
	ListProducts(ctx context.Context, page, size int) (*products.Page, error)
	GetProduct(ctx context.Context, category products.Category, id string) (*products.Item, error)
	UpdateProduct(ctx context.Context, category products.Category, id string, item products.Item) error
	CreateProduct(ctx context.Context, category products.Category, item products.Item) (*products.Item, error)
}

// RefreshTracker follows the expiry of the signed-in access token.
type RefreshTracker interface {
	Track(expiresAt int64)
	Forget()
	NextCheck() (time.Time, bool)
}

// Deps holds the collaborators of the console server.
type Deps struct {
	Sessions *sessions.Store
	Auth     Authenticator
	Catalog  Catalog
	Refresh  RefreshTracker      // optional
	Gatherer prometheus.Gatherer // optional, enables /metrics
}

type Server struct {
	env       string
	router    chi.Router
	routes    []string
	config    config.Config
	deps      Deps
	templates map[string]*template.Template
	logger    zerolog.Logger
}

type Option func(*Server)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

func New(cfg config.Config, deps Deps, options ...Option) (*Server, error) {
	if deps.Sessions == nil {
		return nil, errors.New("[Server New] session store is required")
	}
	if deps.Auth == nil {
		return nil, errors.New("[Server New] authenticator is required")
	}
	if deps.Catalog == nil {
		return nil, errors.New("[Server New] catalog client is required")
	}

	s := &Server{
		env:    cfg.GetEnv(),
		router: chi.NewRouter(),
		config: cfg,
		deps:   deps,
		logger: log.Logger,
	}
	for _, opt := range options {
		opt(s)
	}

	templates, err := parsePages()
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse templates: %w", err)
	}
	s.templates = templates

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	_ = chi.Walk(s.router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		s.routes = append(s.routes, method+" "+route)
		s.logger.Debug().Msg(colourMethod(method) + " " + route)
		return nil
	})
}
