package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-catalog-admin/catalog"
	apperrors "github.com/jrsteele09/go-catalog-admin/internal/errors"
	"github.com/jrsteele09/go-catalog-admin/internal/i18n"
	"github.com/jrsteele09/go-catalog-admin/internal/utils"
	"github.com/jrsteele09/go-catalog-admin/products"
	"github.com/jrsteele09/go-catalog-admin/token"
	"github.com/jrsteele09/go-catalog-admin/token/memstore"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

type recorded struct {
	method string
	path   string
	query  string
	header http.Header
	body   map[string]any
}

// fakeAPI is a scripted catalog backend.
type fakeAPI struct {
	t        *testing.T
	server   *httptest.Server
	mu       sync.Mutex
	requests []recorded
}

func newFakeAPI(t *testing.T, routes func(r chi.Router)) *fakeAPI {
	t.Helper()
	api := &fakeAPI{t: t}
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := recorded{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, header: r.Header.Clone()}
			if r.Body != nil && r.ContentLength != 0 {
				_ = json.NewDecoder(r.Body).Decode(&rec.body)
			}
			api.mu.Lock()
			api.requests = append(api.requests, rec)
			api.mu.Unlock()
			next.ServeHTTP(w, r)
		})
	})
	routes(router)
	api.server = httptest.NewServer(router)
	t.Cleanup(api.server.Close)
	return api
}

func (a *fakeAPI) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.requests)
}

func (a *fakeAPI) last() recorded {
	a.mu.Lock()
	defer a.mu.Unlock()
	require.NotEmpty(a.t, a.requests)
	return a.requests[len(a.requests)-1]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newClient(t *testing.T, api *fakeAPI, store token.Store) *catalog.Client {
	t.Helper()
	c, err := catalog.New(api.server.URL, store, catalog.WithTimeout(5*time.Second))
	require.NoError(t, err)
	return c
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := catalog.New("/api", memstore.New())
	require.Error(t, err)
	_, err = catalog.New("http://localhost:3000", nil)
	require.Error(t, err)
}

func TestClient_SignIn(t *testing.T) {
	api := newFakeAPI(t, func(r chi.Router) {
		r.Post("/api/auth/sign-in", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"access_token": "access-1", "refresh_token": "refresh-1"})
		})
	})
	client := newClient(t, api, memstore.New())

	ctx := i18n.WithLanguage(context.Background(), language.Russian)
	pair, err := client.SignIn(ctx, "admin@example.com", "secret")
	require.NoError(t, err)
	require.Equal(t, &token.Pair{AccessToken: "access-1", RefreshToken: "refresh-1"}, pair)

	req := api.last()
	require.Equal(t, map[string]any{"email": "admin@example.com", "password": "secret"}, req.body)
	require.Equal(t, "ru", req.header.Get(catalog.LangHeader))
	require.Empty(t, req.header.Get("Authorization"))
	_, err = uuid.Parse(req.header.Get(catalog.RequestIDHeader))
	require.NoError(t, err)
}

func TestClient_SignInRejected(t *testing.T) {
	api := newFakeAPI(t, func(r chi.Router) {
		r.Post("/api/auth/sign-in", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Wrong email or password"})
		})
	})
	client := newClient(t, api, memstore.New())

	_, err := client.SignIn(context.Background(), "admin@example.com", "wrong")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	var apiErr *catalog.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, "Wrong email or password", apiErr.Message())
}

func TestClient_RefreshTokens(t *testing.T) {
	api := newFakeAPI(t, func(r chi.Router) {
		r.Post("/api/auth/refresh-tokens", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"access_token": "access-2"})
		})
	})
	client := newClient(t, api, memstore.New())

	pair, err := client.RefreshTokens(context.Background(), "access-1", "refresh-1")
	require.NoError(t, err)
	require.Equal(t, &token.Pair{AccessToken: "access-2"}, pair)
	require.Equal(t, map[string]any{"access_token": "access-1", "refresh_token": "refresh-1"}, api.last().body)
}

func TestClient_RefreshTokensFailure(t *testing.T) {
	api := newFakeAPI(t, func(r chi.Router) {
		r.Post("/api/auth/refresh-tokens", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": []string{"refresh_token expired", "sign in again"}})
		})
	})
	client := newClient(t, api, memstore.New())

	_, err := client.RefreshTokens(context.Background(), "access-1", "refresh-1")
	require.ErrorIs(t, err, apperrors.ErrRefreshFailed)

	var apiErr *catalog.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, []string{"refresh_token expired", "sign in again"}, apiErr.Messages)
}

func TestClient_RefreshTokensWithoutAccessToken(t *testing.T) {
	api := newFakeAPI(t, func(r chi.Router) {
		r.Post("/api/auth/refresh-tokens", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{})
		})
	})
	client := newClient(t, api, memstore.New())

	_, err := client.RefreshTokens(context.Background(), "access-1", "refresh-1")
	require.ErrorIs(t, err, apperrors.ErrMissingAccessToken)
}

func TestClient_ListProductsSendsBearer(t *testing.T) {
	api := newFakeAPI(t, func(r chi.Router) {
		r.Get("/api/products", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"info":  map[string]int{"total": 41},
				"items": []map[string]any{{"id": "1", "name": "Stout", "category": "beer", "quantity": 3, "price": 4.5}},
			})
		})
	})
	store := memstore.New()
	require.NoError(t, token.Persist(store, "access-1", "refresh-1", 1767225600))
	client := newClient(t, api, store)

	page, err := client.ListProducts(context.Background(), 2, products.PageSize)
	require.NoError(t, err)
	require.Equal(t, 41, page.Info.Total)
	require.Equal(t, 3, page.Pages())
	require.Equal(t, []products.Product{{ID: "1", Name: "Stout", Category: "beer", Quantity: 3, Price: 4.5}}, page.Items)

	req := api.last()
	require.Equal(t, "Bearer access-1", req.header.Get("Authorization"))
	require.Equal(t, "includeArchived=true&page=2&size=20", req.query)
	require.Equal(t, "en", req.header.Get(catalog.LangHeader))
}

func TestClient_AuthorizedCallWithoutToken(t *testing.T) {
	api := newFakeAPI(t, func(r chi.Router) {})
	client := newClient(t, api, memstore.New())

	_, err := client.ListProducts(context.Background(), 1, products.PageSize)
	require.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
	require.Zero(t, api.count())
}

func TestClient_GetAndUpdateProduct(t *testing.T) {
	api := newFakeAPI(t, func(r chi.Router) {
		r.Get("/api/accessory/{id}", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"id": chi.URLParam(r, "id"), "name": "Opener", "description": "Steel",
				"image_url": "https://cdn.example.com/opener.png", "price": 3, "quantity": 7, "weight": 0.1,
			})
		})
		r.Put("/api/beer/{id}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})
	store := memstore.New()
	require.NoError(t, token.Persist(store, "access-1", "refresh-1", 1767225600))
	client := newClient(t, api, store)

	item, err := client.GetProduct(context.Background(), products.Accessories, "42")
	require.NoError(t, err)
	require.Equal(t, "42", item.ID)
	require.Equal(t, 7, utils.Value(item.Quantity))
	require.Equal(t, 0.1, utils.Value(item.Weight))

	err = client.UpdateProduct(context.Background(), products.Beer, "7", products.Item{
		ID: "7", Name: "Stout", Price: utils.Ptr(4.0), Quantity: utils.Ptr(1), ABV: utils.Ptr(6.5), Country: "Ireland",
	})
	require.NoError(t, err)
	req := api.last()
	require.Equal(t, http.MethodPut, req.method)
	require.Equal(t, "/api/beer/7", req.path)
	require.NotContains(t, req.body, "id")
	require.Equal(t, "Ireland", req.body["country"])
}

func TestClient_CreateProduct(t *testing.T) {
	api := newFakeAPI(t, func(r chi.Router) {
		r.Post("/api/snacks", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		})
	})
	store := memstore.New()
	require.NoError(t, token.Persist(store, "access-1", "refresh-1", 1767225600))
	client := newClient(t, api, store)

	_, err := client.CreateProduct(context.Background(), products.Snacks, products.Item{Name: "Pretzels", Weight: utils.Ptr(0.2)})
	require.NoError(t, err)
	req := api.last()
	require.Equal(t, "/api/snacks", req.path)
	require.Equal(t, "snacks", req.body["type"])
}

func TestClient_NotFound(t *testing.T) {
	api := newFakeAPI(t, func(r chi.Router) {})
	store := memstore.New()
	require.NoError(t, token.Persist(store, "access-1", "refresh-1", 1767225600))
	client := newClient(t, api, store)

	_, err := client.GetProduct(context.Background(), products.Snacks, "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	require.NotErrorIs(t, err, apperrors.ErrNotAuthenticated)
}
