//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/richxcame/pos-pricing/internal/currency"
	"github.com/richxcame/pos-pricing/internal/products"
	"github.com/richxcame/pos-pricing/pkg/config"
	"github.com/richxcame/pos-pricing/pkg/database"
	"github.com/richxcame/pos-pricing/pkg/httpclient"
	"github.com/richxcame/pos-pricing/pkg/middleware"
)

const feedAPIKey = "integration-key"

var (
	pool            *pgxpool.Pool
	apiServer       *httptest.Server
	feedServer      *httptest.Server
	productsService *products.Service
)

// feedQuotes is what the fake provider serves for USD
var feedQuotes = map[string]float64{
	"USD": 1, "EUR": 0.92, "VES": 36.5, "COP": 3950, "ARS": 870,
	"BRL": 4.95, "CLP": 930, "MXN": 17.1, "PEN": 3.72, "GBP": 0.79,
}

type apiResponse[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Setenv("RATES_REFRESH_ENABLED", "false")

	cfg, err := config.Load("pricing-integration")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := database.Migrate(&cfg.Database); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
	pool, err = database.NewPostgresPool(&cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		os.Exit(1)
	}

	feedServer = httptest.NewServer(http.HandlerFunc(serveQuotes))

	feed := currency.NewFeedClient(httpclient.NewClient(feedServer.URL), feedAPIKey)
	currencyService := currency.NewService(currency.NewRepository(pool), feed, nil, nil, currency.ServiceConfig{
		Anchor:                  currency.USD,
		OfficialCurrency:        currency.VES,
		DefaultProfitPercentage: 30,
	})
	productsService = products.NewService(products.NewRepository(pool), currencyService)

	router := gin.New()
	router.Use(middleware.CorrelationID())
	api := router.Group("/api/v1")
	currency.NewHandler(currencyService).RegisterRoutes(api)
	products.NewHandler(productsService).RegisterRoutes(api)
	apiServer = httptest.NewServer(router)

	code := m.Run()

	apiServer.Close()
	feedServer.Close()
	pool.Close()
	os.Exit(code)
}

func serveQuotes(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/"+feedAPIKey+"/latest/USD" {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(currency.FeedResponse{Result: "error", ErrorType: "unsupported-code"})
		return
	}
	_ = json.NewEncoder(w).Encode(currency.FeedResponse{
		Result:             "success",
		BaseCode:           "USD",
		TimeLastUpdateUnix: 1714564800,
		ConversionRates:    feedQuotes,
	})
}

func truncateTables(t *testing.T) {
	t.Helper()
	_, err := pool.Exec(context.Background(), "TRUNCATE product_variants, products, rate_conversions, rate_stores CASCADE")
	require.NoError(t, err)
}

func doRawRequest(t *testing.T, method, path string, tenant uuid.UUID, body interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, apiServer.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.TenantIDHeader, tenant.String())

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func doRequest[T any](t *testing.T, method, path string, tenant uuid.UUID, body interface{}, wantStatus int) apiResponse[T] {
	t.Helper()

	resp := doRawRequest(t, method, path, tenant, body)
	defer resp.Body.Close()

	var out apiResponse[T]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, wantStatus, resp.StatusCode, "%s %s: %+v", method, path, out.Error)
	return out
}
