package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

type stubCatalog struct {
	filter catalog.ProductFilter
	search catalog.SearchFilter
}

func (s *stubCatalog) ListCategories(context.Context) ([]catalog.CategoryDTO, error) {
	return []catalog.CategoryDTO{{ID: uuid.New(), Name: "Shoes", Slug: "shoes"}}, nil
}

func (s *stubCatalog) ListProducts(_ context.Context, filter catalog.ProductFilter) (*catalog.ProductPage, error) {
	s.filter = filter
	return &catalog.ProductPage{Items: []catalog.ProductDTO{}}, nil
}

func (s *stubCatalog) Search(_ context.Context, filter catalog.SearchFilter) (*catalog.ProductPage, error) {
	s.search = filter
	return &catalog.ProductPage{Items: []catalog.ProductDTO{}}, nil
}

func (s *stubCatalog) GetProduct(_ context.Context, id uuid.UUID) (*catalog.ProductDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}

func TestCatalogProductsParsesFilters(t *testing.T) {
	svc := &stubCatalog{}
	req := httptest.NewRequest(http.MethodGet, "/api/products?category=shoes&featured=true&limit=10&cursor=abc", nil)
	resp := httptest.NewRecorder()
	CatalogProducts(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, catalog.ProductFilter{Category: "shoes", FeaturedOnly: true, Limit: 10, Cursor: "abc"}, svc.filter)
}

func TestCatalogProductsRejectsBadLimit(t *testing.T) {
	resp := httptest.NewRecorder()
	CatalogProducts(&stubCatalog{}, nil).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/products?limit=0", nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestCatalogSearchPassesQuery(t *testing.T) {
	svc := &stubCatalog{}
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/products/search/boots?limit=5&cursor=abc", nil), "query", "boots")
	resp := httptest.NewRecorder()
	CatalogSearch(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, catalog.SearchFilter{Query: "boots", Limit: 5, Cursor: "abc"}, svc.search)
	assert.Contains(t, resp.Body.String(), `"items":[]`)
}

func TestCatalogSearchDefaultsLimit(t *testing.T) {
	svc := &stubCatalog{}
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/products/search/boots", nil), "query", "boots")
	resp := httptest.NewRecorder()
	CatalogSearch(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, pagination.DefaultLimit, svc.search.Limit)
}

func TestCatalogProductInvalidAndUnknownID(t *testing.T) {
	resp := httptest.NewRecorder()
	CatalogProduct(&stubCatalog{}, nil).ServeHTTP(resp, withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "not-a-uuid"))
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = httptest.NewRecorder()
	CatalogProduct(&stubCatalog{}, nil).ServeHTTP(resp, withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", uuid.NewString()))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	ok := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errors.New("down") })

	resp := httptest.NewRecorder()
	HealthReady(cfg, nil, map[string]Pinger{"db": ok}).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "test", resp.Header().Get("X-Storefront-Env"))

	resp = httptest.NewRecorder()
	HealthReady(cfg, nil, map[string]Pinger{"db": ok, "redis": down}).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}
