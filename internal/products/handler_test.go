package products

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/pos-pricing/internal/currency"
	"github.com/richxcame/pos-pricing/pkg/middleware"
	"github.com/richxcame/pos-pricing/test/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    int                    `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func setupRouter(svc *Service) *gin.Engine {
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, tenant uuid.UUID, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tenant != uuid.Nil {
		req.Header.Set(middleware.TenantIDHeader, tenant.String())
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

func TestHandler_CreateProduct(t *testing.T) {
	svc, repo, rates := newTestService()
	r := setupRouter(svc)
	owner := uuid.New()

	rates.On("GetRateStore", mock.Anything, owner).Return(helpers.CreateTestRateStore(owner), nil)
	repo.On("CreateProduct", mock.Anything, mock.Anything).Return(nil)

	w, resp := doRequest(t, r, http.MethodPost, "/api/v1/products", owner, map[string]interface{}{
		"name":              "Coffee 500g",
		"cost_price":        100,
		"cost_currency":     "usd",
		"sale_currency":     " VES",
		"profit_percentage": 20,
	})

	require.Equal(t, http.StatusCreated, w.Code, string(resp.Data))
	var product Product
	require.NoError(t, json.Unmarshal(resp.Data, &product))
	assert.Equal(t, currency.USD, product.CostCurrency)
	assert.Equal(t, 4800.0, product.Price)
}

func TestHandler_CreateProduct_ValidationDetails(t *testing.T) {
	svc, _, _ := newTestService()
	r := setupRouter(svc)

	w, resp := doRequest(t, r, http.MethodPost, "/api/v1/products", uuid.New(), map[string]interface{}{
		"cost_price":    -1,
		"cost_currency": "XXX",
		"sale_currency": "VES",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Details, "Name")
	assert.Contains(t, resp.Error.Details, "CostPrice")
	assert.Contains(t, resp.Error.Details, "CostCurrency")
}

func TestHandler_CreateProduct_MissingRateStore(t *testing.T) {
	svc, _, rates := newTestService()
	r := setupRouter(svc)
	owner := uuid.New()

	rates.On("GetRateStore", mock.Anything, owner).Return(nil, currency.ErrRateStoreNotFound)

	w, resp := doRequest(t, r, http.MethodPost, "/api/v1/products", owner, map[string]interface{}{
		"name": "Tea", "cost_price": 1, "cost_currency": "USD", "sale_currency": "USD",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Message, "missing rate configuration")
}

func TestHandler_RequiresTenant(t *testing.T) {
	svc, _, _ := newTestService()
	r := setupRouter(svc)

	w, _ := doRequest(t, r, http.MethodGet, "/api/v1/products", uuid.Nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_GetProduct(t *testing.T) {
	svc, repo, _ := newTestService()
	r := setupRouter(svc)
	owner := uuid.New()
	product := simpleProduct()
	missing := uuid.New()

	repo.On("GetProduct", mock.Anything, owner, product.ID).Return(product, nil)
	repo.On("GetProduct", mock.Anything, owner, missing).Return(nil, ErrProductNotFound)

	w, _ := doRequest(t, r, http.MethodGet, "/api/v1/products/"+product.ID.String(), owner, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doRequest(t, r, http.MethodGet, "/api/v1/products/"+missing.String(), owner, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doRequest(t, r, http.MethodGet, "/api/v1/products/not-a-uuid", owner, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_ListProducts(t *testing.T) {
	svc, repo, _ := newTestService()
	r := setupRouter(svc)
	owner := uuid.New()

	repo.On("ListProducts", mock.Anything, owner, 5, 10).Return([]*Product{}, 12, nil)
	repo.On("ListProducts", mock.Anything, owner, 100, 0).Return([]*Product{}, 12, nil)

	w, resp := doRequest(t, r, http.MethodGet, "/api/v1/products?limit=5&offset=10", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page ListResponse
	require.NoError(t, json.Unmarshal(resp.Data, &page))
	assert.Equal(t, int64(12), page.Pagination.Total)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.False(t, page.Pagination.HasMore)

	w, resp = doRequest(t, r, http.MethodGet, "/api/v1/products?limit=500", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &page))
	assert.Equal(t, 100, page.Pagination.Limit)
}

func TestHandler_UpdatePricing_UnresolvablePair(t *testing.T) {
	svc, repo, rates := newTestService()
	r := setupRouter(svc)
	owner := uuid.New()
	product := simpleProduct()

	repo.On("GetProduct", mock.Anything, owner, product.ID).Return(product, nil)
	rates.On("GetRateStore", mock.Anything, owner).Return(helpers.CreateTestRateStore(owner), nil)

	w, resp := doRequest(t, r, http.MethodPut, "/api/v1/products/"+product.ID.String()+"/pricing", owner,
		map[string]interface{}{"sale_currency": "COP"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Message, "USD to COP")
	repo.AssertNotCalled(t, "UpdateProduct", mock.Anything, mock.Anything)
}

func TestHandler_ReplaceVariants(t *testing.T) {
	svc, repo, rates := newTestService()
	r := setupRouter(svc)
	owner := uuid.New()
	product := simpleProduct()

	repo.On("GetProduct", mock.Anything, owner, product.ID).Return(product, nil)
	rates.On("GetRateStore", mock.Anything, owner).Return(helpers.CreateTestRateStore(owner), nil)
	repo.On("UpdateProduct", mock.Anything, product).Return(nil)

	w, resp := doRequest(t, r, http.MethodPut, "/api/v1/products/"+product.ID.String()+"/variants", owner,
		map[string]interface{}{"variants": []map[string]interface{}{
			{"name": "Red", "cost_price": 2, "stock": 4},
			{"name": "Blue", "cost_price": 3, "stock": 6},
		}})

	require.Equal(t, http.StatusOK, w.Code)
	var updated Product
	require.NoError(t, json.Unmarshal(resp.Data, &updated))
	assert.Len(t, updated.Variants, 2)
	assert.Equal(t, 10, updated.Stock)
}

func TestHandler_GetDisplayPrices(t *testing.T) {
	svc, repo, rates := newTestService()
	r := setupRouter(svc)
	owner := uuid.New()
	product := simpleProduct()

	repo.On("GetProduct", mock.Anything, owner, product.ID).Return(product, nil)
	rates.On("GetRateStore", mock.Anything, owner).Return(helpers.CreateTestRateStore(owner), nil)

	w, resp := doRequest(t, r, http.MethodGet, "/api/v1/products/"+product.ID.String()+"/display?currency=EUR", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(resp.Data), `"sale_price":108`)

	w, _ = doRequest(t, r, http.MethodGet, "/api/v1/products/"+product.ID.String()+"/display?currency=GBP", owner, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_InternalErrorHidesDetails(t *testing.T) {
	svc, repo, _ := newTestService()
	r := setupRouter(svc)
	owner := uuid.New()
	id := uuid.New()

	repo.On("GetProduct", mock.Anything, owner, id).Return(nil, errors.New("pq: password authentication failed"))

	w, resp := doRequest(t, r, http.MethodGet, "/api/v1/products/"+id.String(), owner, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotNil(t, resp.Error)
	assert.NotContains(t, resp.Error.Message, "password")
}
