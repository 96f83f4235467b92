package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-catalog-admin/auth"
	"github.com/jrsteele09/go-catalog-admin/catalog"
	"github.com/jrsteele09/go-catalog-admin/internal/config"
	apperrors "github.com/jrsteele09/go-catalog-admin/internal/errors"
	"github.com/jrsteele09/go-catalog-admin/internal/metrics"
	"github.com/jrsteele09/go-catalog-admin/internal/utils"
	"github.com/jrsteele09/go-catalog-admin/products"
	"github.com/jrsteele09/go-catalog-admin/server"
	"github.com/jrsteele09/go-catalog-admin/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var testExpiry = time.Date(2026, 10, 15, 13, 0, 0, 0, time.UTC)

type fakeAuth struct {
	sessions *sessions.Store
	session  *sessions.Session
	err      error
	signIns  []auth.Credentials
	signOuts int
	tracker  *fakeTracker

	// forgottenAtSignOut is the tracker's Forget count when SignOut ran.
	forgottenAtSignOut int
}

func (f *fakeAuth) SignIn(_ context.Context, creds auth.Credentials) (*sessions.Session, error) {
	f.signIns = append(f.signIns, creds)
	if f.err != nil {
		return nil, f.err
	}
	f.sessions.Authenticate(*f.session)
	return f.session, nil
}

func (f *fakeAuth) SignOut() error {
	f.signOuts++
	if f.tracker != nil {
		f.forgottenAtSignOut = f.tracker.forgotten()
	}
	f.sessions.Logout()
	return nil
}

type updateCall struct {
	category products.Category
	id       string
	item     products.Item
}

type fakeCatalog struct {
	page      *products.Page
	item      *products.Item
	err       error
	listCalls []int
	updates   []updateCall
	creates   []updateCall
}

func (f *fakeCatalog) ListProducts(_ context.Context, page, size int) (*products.Page, error) {
	f.listCalls = append(f.listCalls, page, size)
	return f.page, f.err
}

func (f *fakeCatalog) GetProduct(_ context.Context, _ products.Category, _ string) (*products.Item, error) {
	return f.item, f.err
}

func (f *fakeCatalog) UpdateProduct(_ context.Context, category products.Category, id string, item products.Item) error {
	f.updates = append(f.updates, updateCall{category: category, id: id, item: item})
	return f.err
}

func (f *fakeCatalog) CreateProduct(_ context.Context, category products.Category, item products.Item) (*products.Item, error) {
	f.creates = append(f.creates, updateCall{category: category, item: item})
	return &item, f.err
}

type fakeTracker struct {
	mu      sync.Mutex
	tracked []int64
	forgets int
}

func (f *fakeTracker) Forget() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forgets++
	f.tracked = nil
}

func (f *fakeTracker) forgotten() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.forgets
}

func (f *fakeTracker) Track(expiresAt int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tracked = append(f.tracked, expiresAt)
}

func (f *fakeTracker) NextCheck() (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.tracked) == 0 {
		return time.Time{}, false
	}
	return time.Unix(f.tracked[len(f.tracked)-1], 0).Add(-5 * time.Minute), true
}

type fixture struct {
	sessions *sessions.Store
	auth     *fakeAuth
	catalog  *fakeCatalog
	tracker  *fakeTracker
	server   *server.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := sessions.NewStore()
	f := &fixture{
		sessions: store,
		auth: &fakeAuth{sessions: store, session: &sessions.Session{
			Subject: "admin-1", Email: "admin@example.com", Role: sessions.RoleSuperAdmin, ExpiresAt: testExpiry.Unix(),
		}},
		catalog: &fakeCatalog{},
		tracker: &fakeTracker{},
	}
	f.auth.tracker = f.tracker

	registry := prometheus.NewRegistry()
	metrics.NewLifecycle(registry).SignIn(metrics.OutcomeSuccess)

	cfg := config.Settings{
		AppName: "Catalog Admin",
		Env:     "test",
		Cors:    config.Cors{AllowedOrigins: []string{"http://localhost:5173"}},
	}
	srv, err := server.New(cfg, server.Deps{
		Sessions: store,
		Auth:     f.auth,
		Catalog:  f.catalog,
		Refresh:  f.tracker,
		Gatherer: registry,
	}, server.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	f.server = srv
	return f
}

func (f *fixture) signIn() {
	f.sessions.Authenticate(*f.auth.session)
}

func (f *fixture) do(method, target string, form url.Values, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func requireRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, location, rec.Header().Get("Location"))
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := server.New(config.Settings{}, server.Deps{})
	require.Error(t, err)
}

func TestRouteGuard(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/", "/products/get", "/products/beer/create", "/products/beer/7"} {
		t.Run("anonymous "+path, func(t *testing.T) {
			requireRedirect(t, f.do(http.MethodGet, path, nil), server.RouteSignIn)
		})
	}

	f.signIn()
	requireRedirect(t, f.do(http.MethodGet, "/", nil), server.RouteProducts)
}

func TestUnknownAuthPathsRedirectToSignIn(t *testing.T) {
	f := newFixture(t)
	requireRedirect(t, f.do(http.MethodGet, "/auth/whatever", nil), server.RouteSignIn)
}

func TestSignInPage(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, server.RouteSignIn, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `action="/auth/sign-in"`)
	require.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))

	f.signIn()
	requireRedirect(t, f.do(http.MethodGet, server.RouteSignIn, nil), server.RouteProducts)
}

func TestSignInSubmission(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, server.RouteSignIn, url.Values{"email": {"admin@example.com"}, "password": {"secret"}})
	requireRedirect(t, rec, server.RouteProducts)
	require.Equal(t, []auth.Credentials{{Email: "admin@example.com", Password: "secret"}}, f.auth.signIns)
	require.Equal(t, []int64{testExpiry.Unix()}, f.tracker.tracked)
	require.True(t, f.sessions.IsAuthenticated())
}

func TestSignInFailures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		lang       string
		wantStatus int
		wantText   string
	}{
		{
			name:       "not an admin",
			err:        apperrors.ErrInsufficientPermissions,
			wantStatus: http.StatusForbidden,
			wantText:   "You don&#39;t have necessary permissions",
		},
		{
			name:       "not an admin in russian",
			err:        apperrors.ErrInsufficientPermissions,
			lang:       "ru-RU,ru;q=0.9",
			wantStatus: http.StatusForbidden,
			wantText:   "У вас нет необходимых прав",
		},
		{
			name:       "api message",
			err:        errors.Join(apperrors.ErrInvalidCredentials, &catalog.APIError{StatusCode: 401, Messages: []string{"Wrong password"}}),
			wantStatus: http.StatusUnauthorized,
			wantText:   "Wrong password",
		},
		{
			name:       "invalid form",
			err:        apperrors.ErrInvalidCredentials,
			wantStatus: http.StatusUnauthorized,
			wantText:   "Invalid email or password",
		},
		{
			name:       "backend down",
			err:        errors.New("connection refused"),
			wantStatus: http.StatusBadGateway,
			wantText:   "Something went wrong",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.auth.err = tt.err

			rec := f.do(http.MethodPost, server.RouteSignIn, url.Values{"email": {"admin@example.com"}, "password": {"x"}},
				"Accept-Language", tt.lang)
			require.Equal(t, tt.wantStatus, rec.Code)
			require.Contains(t, rec.Body.String(), tt.wantText)
			require.Contains(t, rec.Body.String(), `value="admin@example.com"`)
			require.Empty(t, f.tracker.tracked)
			require.False(t, f.sessions.IsAuthenticated())
		})
	}
}

func TestSignOut(t *testing.T) {
	f := newFixture(t)
	f.signIn()

	requireRedirect(t, f.do(http.MethodPost, server.RouteSignOut, nil), server.RouteSignIn)
	require.Equal(t, 1, f.auth.signOuts)
	require.Equal(t, 1, f.auth.forgottenAtSignOut)
	require.False(t, f.sessions.IsAuthenticated())
	requireRedirect(t, f.do(http.MethodGet, server.RouteProducts, nil), server.RouteSignIn)
}

func TestProductsPage(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	page := &products.Page{Items: []products.Product{{ID: "7", Name: "Stout", Category: "beer", Quantity: 3, Price: 4.5}}}
	page.Info.Total = 45
	f.catalog.page = page

	rec := f.do(http.MethodGet, "/products/get?page=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `href="/products/beer/7"`)
	require.Contains(t, body, "2 / 3")
	require.Contains(t, body, `href="/products/get?page=3"`)
	require.Contains(t, body, `href="/products/accessories/create"`)
	require.Contains(t, body, "admin@example.com")
	require.Equal(t, []int{2, products.PageSize}, f.catalog.listCalls)
}

func TestProductsPageError(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	f.catalog.err = errors.New("boom")

	rec := f.do(http.MethodGet, "/products/get", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Contains(t, rec.Body.String(), "Error loading data")
}

func TestProductPage(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	f.catalog.item = &products.Item{Name: "Opener", Price: utils.Ptr(3.0), Quantity: utils.Ptr(7), Weight: utils.Ptr(0.1)}

	rec := f.do(http.MethodGet, "/products/accessories/42", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, `value="Opener"`)
	require.Contains(t, body, `name="weight"`)
	require.NotContains(t, body, `name="abv"`)

	require.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/products/wine/42", nil).Code)
}

func TestProductPageUnavailable(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	f.catalog.err = &catalog.APIError{StatusCode: http.StatusNotFound}

	rec := f.do(http.MethodGet, "/products/beer/404", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "Product information is not available.")
	require.NotContains(t, rec.Body.String(), "<form method=\"post\" action=\"/products/beer/404\"")
}

func beerForm() url.Values {
	return url.Values{
		"name":        {"Stout"},
		"description": {"Dark"},
		"image_url":   {"https://cdn.example.com/stout.png"},
		"price":       {"4"},
		"quantity":    {"12"},
		"abv":         {"6.5"},
		"country":     {"Ireland"},
		"volume":      {"0.5"},
		"ibu":         {"40"},
	}
}

func TestProductUpdate(t *testing.T) {
	f := newFixture(t)
	f.signIn()

	rec := f.do(http.MethodPost, "/products/beer/7", beerForm())
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Saved")
	require.Len(t, f.catalog.updates, 1)
	require.Equal(t, products.Beer, f.catalog.updates[0].category)
	require.Equal(t, "7", f.catalog.updates[0].id)
	require.Equal(t, 6.5, utils.Value(f.catalog.updates[0].item.ABV))
}

func TestProductUpdateValidation(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	form := beerForm()
	form.Set("price", "free")

	rec := f.do(http.MethodPost, "/products/beer/7", form)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "must be a number")
	require.Empty(t, f.catalog.updates)
}

func TestProductUpdateFailure(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	f.catalog.err = errors.New("boom")

	rec := f.do(http.MethodPost, "/products/beer/7", beerForm())
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Contains(t, rec.Body.String(), "Could not save the product")
}

func TestProductCreate(t *testing.T) {
	f := newFixture(t)
	f.signIn()

	rec := f.do(http.MethodGet, "/products/snacks/create", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Add snacks")

	rec = f.do(http.MethodPost, "/products/snacks/create", url.Values{
		"name":        {"Pretzels"},
		"description": {"Salty"},
		"image_url":   {"https://cdn.example.com/pretzels.png"},
		"price":       {"2"},
		"quantity":    {"5"},
		"weight":      {"0.2"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, f.catalog.creates, 1)
	require.Equal(t, products.Snacks, f.catalog.creates[0].category)
}

func snackForm() url.Values {
	return url.Values{
		"name":        {"Pretzels"},
		"description": {"Salty"},
		"image_url":   {"https://cdn.example.com/pretzels.png"},
		"price":       {"2"},
		"quantity":    {"5"},
		"weight":      {"0.2"},
	}
}

func TestCrossOriginSubmissionsAreRefused(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
	}{
		{"foreign origin", []string{"Origin", "https://evil.example"}},
		{"opaque origin", []string{"Origin", "null"}},
		{"foreign referer", []string{"Referer", "https://evil.example/form.html"}},
		{"cross-site fetch", []string{"Sec-Fetch-Site", "cross-site"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.signIn()

			rec := f.do(http.MethodPost, "/products/snacks/create", snackForm(), tt.headers...)
			require.Equal(t, http.StatusForbidden, rec.Code)
			require.Empty(t, f.catalog.creates)

			rec = f.do(http.MethodPost, server.RouteSignOut, nil, tt.headers...)
			require.Equal(t, http.StatusForbidden, rec.Code)
			require.Zero(t, f.auth.signOuts)
			require.True(t, f.sessions.IsAuthenticated())
		})
	}
}

func TestSameOriginSubmissionsAreServed(t *testing.T) {
	f := newFixture(t)
	f.signIn()

	rec := f.do(http.MethodPost, "/products/snacks/create", snackForm(),
		"Origin", "http://example.com", "Sec-Fetch-Site", "same-origin")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(http.MethodPost, "/products/snacks/create", snackForm(),
		"Referer", "http://example.com/products/snacks/create")
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, f.catalog.creates, 2)
}

func TestSessionStatusAPI(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, server.RouteAPISession, nil, "Origin", "http://localhost:5173")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	require.JSONEq(t, `{"authenticated":false}`, rec.Body.String())

	f.signIn()
	f.tracker.Track(testExpiry.Unix())
	rec = f.do(http.MethodGet, server.RouteAPISession, nil, "Origin", "http://evil.example.com")
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	var status map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.Equal(t, true, status["authenticated"])
	require.Equal(t, "admin@example.com", status["email"])
	require.Equal(t, "super-admin", status["role"])
	require.Equal(t, "2026-10-15T13:00:00Z", status["expires_at"])
	require.Equal(t, "2026-10-15T12:55:00Z", status["next_refresh_at"])
}

func TestSessionStatusPreflight(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodOptions, server.RouteAPISession, nil, "Origin", "http://localhost:5173")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, server.RouteHealth, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = f.do(http.MethodGet, server.RouteMetrics, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "catalog_admin_sign_in_total")
}

func TestStaticCSS(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/css/console.css", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/css; charset=utf-8", rec.Header().Get("Content-Type"))

	require.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/css/missing.css", nil).Code)
}
