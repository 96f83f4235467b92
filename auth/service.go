// Package auth signs the console in and out and keeps the persisted tokens and
// the session store in step.
package auth

import (
	"context"
	"errors"

	apperrors "github.com/jrsteele09/go-catalog-admin/internal/errors"
	"github.com/jrsteele09/go-catalog-admin/internal/metrics"
	"github.com/jrsteele09/go-catalog-admin/sessions"
	"github.com/jrsteele09/go-catalog-admin/token"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TokenDecoder extracts session claims from an access token.
type TokenDecoder interface {
	Decode(ctx context.Context, rawToken string) (*sessions.Session, error)
}

// SignInClient exchanges credentials for a token pair.
type SignInClient interface {
	SignIn(ctx context.Context, email, password string) (*token.Pair, error)
}

type Service struct {
	store        token.Store
	sessions     *sessions.Store
	decoder      TokenDecoder
	client       SignInClient
	requiredRole sessions.RoleType
	metrics      *metrics.Lifecycle
	logger       zerolog.Logger
}

type Option func(*Service)

// WithRequiredRole sets the role a token must carry to sign in.
func WithRequiredRole(role sessions.RoleType) Option {
	return func(s *Service) {
		if role != "" {
			s.requiredRole = role
		}
	}
}

func WithMetrics(m *metrics.Lifecycle) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService wires the service. client may be nil when only Authenticate and
// Logout are needed.
func NewService(store token.Store, sessionStore *sessions.Store, decoder TokenDecoder, client SignInClient, options ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("[NewService] token store is required")
	}
	if sessionStore == nil {
		return nil, errors.New("[NewService] session store is required")
	}
	if decoder == nil {
		return nil, errors.New("[NewService] token decoder is required")
	}

	s := &Service{
		store:        store,
		sessions:     sessionStore,
		decoder:      decoder,
		client:       client,
		requiredRole: sessions.RoleSuperAdmin,
		logger:       log.Logger,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// SignIn authenticates the administrator against the catalog API. Tokens
// whose role is not the required one are rejected and nothing is persisted.
func (s *Service) SignIn(ctx context.Context, creds Credentials) (*sessions.Session, error) {
	if s.client == nil {
		return nil, apperrors.Wrapf(apperrors.ErrUnsupported, "sign-in without an API client")
	}

	creds = creds.Normalize()
	if err := creds.Validate(); err != nil {
		s.metrics.SignIn(metrics.OutcomeFailure)
		return nil, apperrors.Join(apperrors.ErrInvalidCredentials, err)
	}

	pair, err := s.client.SignIn(ctx, creds.Email, creds.Password)
	if err != nil {
		s.metrics.SignIn(metrics.OutcomeFailure)
		return nil, apperrors.Wrapf(err, "signing in %s", creds.Email)
	}

	session, err := s.decoder.Decode(ctx, pair.AccessToken)
	if err != nil {
		s.metrics.SignIn(metrics.OutcomeFailure)
		return nil, err
	}
	if !session.HasRole(s.requiredRole) {
		s.metrics.SignIn(metrics.OutcomeFailure)
		s.logger.Warn().Str("email", creds.Email).Str("role", string(session.Role)).Msg("sign-in rejected, role not allowed")
		return nil, apperrors.ErrInsufficientPermissions
	}

	if err := s.establish(session, pair.AccessToken, pair.RefreshToken); err != nil {
		s.metrics.SignIn(metrics.OutcomeFailure)
		return nil, err
	}
	s.metrics.SignIn(metrics.OutcomeSuccess)
	s.logger.Info().Str("email", session.Email).Msg("signed in")
	return session, nil
}

// Authenticate validates accessToken, persists the pair and marks the session
// store authenticated. An empty refreshToken keeps the persisted one.
func (s *Service) Authenticate(ctx context.Context, accessToken, refreshToken string) (*sessions.Session, error) {
	session, err := s.decoder.Decode(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if err := s.establish(session, accessToken, refreshToken); err != nil {
		return nil, err
	}
	return session, nil
}

// Logout clears the persisted tokens and the session store. The session store
// is cleared even when persistence fails.
func (s *Service) Logout() error {
	s.sessions.Logout()
	return token.Clear(s.store)
}

// SignOut is an explicit sign-out by the administrator.
func (s *Service) SignOut() error {
	if current, ok := s.sessions.Current(); ok {
		s.logger.Info().Str("email", current.Email).Msg("signed out")
	}
	return s.Logout()
}

func (s *Service) establish(session *sessions.Session, accessToken, refreshToken string) error {
	if err := token.Persist(s.store, accessToken, refreshToken, session.ExpiresAt); err != nil {
		return err
	}
	s.sessions.Authenticate(*session)
	return nil
}
