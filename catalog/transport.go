package catalog

import (
	"net/http"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/go-catalog-admin/internal/errors"
	"github.com/jrsteele09/go-catalog-admin/internal/i18n"
	"github.com/jrsteele09/go-catalog-admin/token"
	"golang.org/x/oauth2"
)

const (
	LangHeader      = "X-Lang"
	RequestIDHeader = "X-Request-Id"
)

// headerTransport adds the console language and a request id to every call.
type headerTransport struct {
	base http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set(LangHeader, i18n.Code(req.Context()))
	if req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}
	return t.base.RoundTrip(req)
}

// storeTokenSource serves the persisted access token. Expiry is left to the
// API and the refresh scheduler.
type storeTokenSource struct {
	store token.Store
}

var _ oauth2.TokenSource = (*storeTokenSource)(nil)

func (s *storeTokenSource) Token() (*oauth2.Token, error) {
	rec, err := token.Load(s.store)
	if err != nil {
		return nil, err
	}
	if !rec.HasAccessToken() {
		return nil, apperrors.ErrNotAuthenticated
	}
	return &oauth2.Token{AccessToken: rec.AccessToken, TokenType: "Bearer"}, nil
}
