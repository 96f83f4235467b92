// Package refresh keeps the persisted access token renewed before it expires.
package refresh

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jrsteele09/go-catalog-admin/internal/metrics"
	"github.com/jrsteele09/go-catalog-admin/sessions"
	"github.com/jrsteele09/go-catalog-admin/token"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultMargin      = 5 * time.Minute
	DefaultMinInterval = 30 * time.Second
)

var ErrAlreadyStarted = errors.New("refresh scheduler already started")

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Authenticator turns a token pair into a signed-in console, or signs it out.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken, refreshToken string) (*sessions.Session, error)
	Logout() error
}

// Refresher exchanges the current token pair for a new one.
type Refresher interface {
	RefreshTokens(ctx context.Context, accessToken, refreshToken string) (*token.Pair, error)
}

// Timer is a pending one-shot callback.
type Timer interface {
	Stop() bool
}

// AfterFunc arms a Timer that calls f after d.
type AfterFunc func(d time.Duration, f func()) Timer

func stdAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Scheduler owns the single pending refresh check of the console.
type Scheduler struct {
	store       token.Store
	auth        Authenticator
	refresher   Refresher
	margin      time.Duration
	minInterval time.Duration
	afterFunc   AfterFunc
	metrics     *metrics.Lifecycle
	logger      zerolog.Logger

	// authMu orders re-authentication after a refresh against Forget.
	authMu sync.Mutex

	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	inflight context.CancelFunc
	gen      uint64
	timer    Timer
	nextAt   time.Time
	checked  bool
	started  bool
	stopped  bool
}

type Option func(*Scheduler)

// WithMargin sets how long before expiry the token is renewed.
func WithMargin(margin time.Duration) Option {
	return func(s *Scheduler) {
		s.margin = margin
	}
}

// WithMinInterval sets the shortest delay armed after a successful refresh.
func WithMinInterval(interval time.Duration) Option {
	return func(s *Scheduler) {
		s.minInterval = interval
	}
}

func WithAfterFunc(fn AfterFunc) Option {
	return func(s *Scheduler) {
		s.afterFunc = fn
	}
}

func WithMetrics(m *metrics.Lifecycle) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

func NewScheduler(store token.Store, auth Authenticator, refresher Refresher, options ...Option) *Scheduler {
	s := &Scheduler{
		store:       store,
		auth:        auth,
		refresher:   refresher,
		margin:      DefaultMargin,
		minInterval: DefaultMinInterval,
		afterFunc:   stdAfterFunc,
		logger:      log.Logger,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Delay is the time to wait before refreshing a token expiring at expiresAt
// (epoch seconds), never negative.
func Delay(expiresAt int64, now time.Time, margin time.Duration) time.Duration {
	ms := expiresAt*1000 - now.UnixMilli() - margin.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	return time.Duration(ms) * time.Millisecond
}

// Start restores the session from persistence and arms the first refresh
// check. It runs once per scheduler; cancelling ctx has the same effect as Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	runCtx := s.ctx
	s.mu.Unlock()

	context.AfterFunc(runCtx, s.Stop)

	rec, err := token.Load(s.store)
	if err != nil {
		s.logger.Warn().Err(err).Msg("reading persisted tokens")
		if logoutErr := s.logout("token storage unreadable"); logoutErr != nil {
			return errors.Join(err, logoutErr)
		}
		return nil
	}

	if !rec.HasAccessToken() {
		s.logout("no persisted access token")
		return nil
	}
	if rec.RefreshToken == "" {
		s.logout("persisted access token has no refresh token")
		return nil
	}

	session, err := s.auth.Authenticate(runCtx, rec.AccessToken, rec.RefreshToken)
	if err != nil {
		s.logger.Warn().Err(err).Msg("persisted access token rejected")
		s.logout("persisted access token rejected")
		return nil
	}

	s.schedule(Delay(session.ExpiresAt, NowTimeFunc(), s.margin))
	return nil
}

// Track arms a check for a token expiring at expiresAt, replacing any pending
// one. Used after an interactive sign-in.
func (s *Scheduler) Track(expiresAt int64) {
	s.schedule(Delay(expiresAt, NowTimeFunc(), s.margin))
}

// Forget drops the pending check and abandons any refresh in flight, so a
// sign-out is not undone by a refresh that completes after it. The scheduler
// stays usable for the next Track.
func (s *Scheduler) Forget() {
	s.authMu.Lock()
	defer s.authMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.stopTimer()
	if s.inflight != nil {
		s.inflight()
		s.inflight = nil
	}
}

// Stop cancels the pending check and any refresh in flight. It is idempotent.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || s.stopped {
		return
	}
	s.stopped = true
	s.stopTimer()
	s.cancel()
	s.logger.Debug().Msg("refresh scheduler stopped")
}

// NextCheck returns when the pending check fires.
func (s *Scheduler) NextCheck() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer == nil {
		return time.Time{}, false
	}
	return s.nextAt, true
}

func (s *Scheduler) schedule(delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || s.stopped {
		return
	}
	s.stopTimer()
	s.nextAt = NowTimeFunc().Add(delay)
	s.timer = s.afterFunc(delay, s.check)
	s.metrics.Scheduled(delay)
	s.logger.Debug().Dur("delay", delay).Time("at", s.nextAt).Msg("token refresh scheduled")
}

// stopTimer must be called with mu held.
func (s *Scheduler) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Scheduler) check() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	first := !s.checked
	s.checked = true
	s.timer = nil
	gen := s.gen
	ctx, cancel := context.WithCancel(s.ctx)
	s.inflight = cancel
	s.mu.Unlock()
	defer cancel()

	rec, err := token.Load(s.store)
	if err != nil {
		s.metrics.Attempt(metrics.OutcomeFailure)
		s.logger.Error().Err(err).Msg("reading tokens for refresh")
		s.logout("token storage unreadable")
		return
	}
	if !rec.Complete() {
		s.metrics.Attempt(metrics.OutcomeSkipped)
		s.logger.Debug().Msg("refresh check skipped, no token pair")
		return
	}

	now := NowTimeFunc()
	due := now.UnixMilli() >= rec.ExpiresAt*1000-s.margin.Milliseconds()
	if !due && !first {
		s.metrics.Attempt(metrics.OutcomeSkipped)
		s.schedule(Delay(rec.ExpiresAt, now, s.margin))
		return
	}

	pair, err := s.refresher.RefreshTokens(ctx, rec.AccessToken, rec.RefreshToken)
	if err != nil {
		if ctx.Err() != nil {
			s.logger.Debug().Err(err).Msg("token refresh abandoned")
			return
		}
		s.metrics.Attempt(metrics.OutcomeFailure)
		s.logger.Warn().Err(err).Msg("token refresh failed")
		s.logout("token refresh failed")
		return
	}

	session, err := s.reauthenticate(ctx, gen, rec.AccessToken, pair)
	if errors.Is(err, errSignedOut) {
		s.metrics.Attempt(metrics.OutcomeSkipped)
		s.logger.Info().Msg("signed out during token refresh, discarding new tokens")
		return
	}
	if err != nil {
		s.metrics.Attempt(metrics.OutcomeFailure)
		s.logger.Warn().Err(err).Msg("refreshed access token rejected")
		s.logout("refreshed access token rejected")
		return
	}

	s.metrics.Attempt(metrics.OutcomeSuccess)
	s.logger.Info().Time("expires_at", session.Expiry()).Msg("access token refreshed")

	delay := Delay(session.ExpiresAt, NowTimeFunc(), s.margin)
	if delay < s.minInterval {
		delay = s.minInterval
	}
	s.schedule(delay)
}

var errSignedOut = errors.New("signed out during refresh")

// reauthenticate applies pair unless the console signed out after the refresh
// for previousAccess began.
func (s *Scheduler) reauthenticate(ctx context.Context, gen uint64, previousAccess string, pair *token.Pair) (*sessions.Session, error) {
	s.authMu.Lock()
	defer s.authMu.Unlock()

	s.mu.Lock()
	forgotten := s.gen != gen || s.stopped
	s.mu.Unlock()
	if forgotten {
		return nil, errSignedOut
	}

	current, err := token.Load(s.store)
	if err != nil {
		return nil, err
	}
	if current.AccessToken != previousAccess {
		return nil, errSignedOut
	}

	return s.auth.Authenticate(ctx, pair.AccessToken, pair.RefreshToken)
}

func (s *Scheduler) logout(reason string) error {
	s.logger.Info().Str("reason", reason).Msg("signing out")
	if err := s.auth.Logout(); err != nil {
		s.logger.Error().Err(err).Msg("clearing persisted tokens")
		return err
	}
	return nil
}
