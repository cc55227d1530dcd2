package currency

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/richxcame/pos-pricing/pkg/common"
	"github.com/richxcame/pos-pricing/pkg/logger"
	"github.com/richxcame/pos-pricing/pkg/middleware"
	"github.com/richxcame/pos-pricing/pkg/validation"
	"go.uber.org/zap"
)

func init() {
	validation.RegisterRule("currency", func(fl validator.FieldLevel) bool {
		_, err := ParseCode(fl.Field().String())
		return err == nil
	})
}

// Handler handles HTTP requests for rate configuration
type Handler struct {
	service      *Service
	refreshGuard []gin.HandlerFunc
}

// NewHandler creates a new currency handler
func NewHandler(service *Service) *Handler {
	validation.Validator()
	return &Handler{service: service}
}

// GuardRefresh runs mw before the feed refresh endpoint, which spends upstream quota
func (h *Handler) GuardRefresh(mw ...gin.HandlerFunc) *Handler {
	h.refreshGuard = append(h.refreshGuard, mw...)
	return h
}

// GetCurrencies returns the supported currency universe
func (h *Handler) GetCurrencies(c *gin.Context) {
	common.SuccessResponse(c, gin.H{
		"anchor":     h.service.Anchor(),
		"currencies": Supported,
	})
}

// GetRateStore returns the tenant's rate configuration
func (h *Handler) GetRateStore(c *gin.Context) {
	ownerID, ok := middleware.GetTenantID(c)
	if !ok {
		common.ErrorResponse(c, http.StatusBadRequest, "missing tenant")
		return
	}

	store, err := h.service.GetRateStore(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, err, "failed to get rate configuration")
		return
	}

	common.SuccessResponse(c, store)
}

// CreateRateStore bootstraps the tenant's rate configuration
func (h *Handler) CreateRateStore(c *gin.Context) {
	ownerID, ok := middleware.GetTenantID(c)
	if !ok {
		common.ErrorResponse(c, http.StatusBadRequest, "missing tenant")
		return
	}

	store, err := h.service.CreateRateStore(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, err, "failed to create rate configuration")
		return
	}

	common.CreatedResponse(c, store)
}

// UpdateRateStore replaces the tenant's rate configuration
func (h *Handler) UpdateRateStore(c *gin.Context) {
	ownerID, ok := middleware.GetTenantID(c)
	if !ok {
		common.ErrorResponse(c, http.StatusBadRequest, "missing tenant")
		return
	}

	var req UpdateConfigRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	store, err := h.service.UpdateConfiguration(c.Request.Context(), ownerID, &req)
	if err != nil {
		respondError(c, err, "failed to update rate configuration")
		return
	}

	common.SuccessResponse(c, store)
}

// RefreshRates pulls the external feed into the tenant's rate configuration
func (h *Handler) RefreshRates(c *gin.Context) {
	ownerID, ok := middleware.GetTenantID(c)
	if !ok {
		common.ErrorResponse(c, http.StatusBadRequest, "missing tenant")
		return
	}

	result, err := h.service.RefreshFromFeed(c.Request.Context(), ownerID)
	if err != nil {
		respondError(c, err, "failed to refresh exchange rates")
		return
	}

	common.SuccessResponse(c, result)
}

// ResolveRate returns the rate for a currency pair
func (h *Handler) ResolveRate(c *gin.Context) {
	ownerID, ok := middleware.GetTenantID(c)
	if !ok {
		common.ErrorResponse(c, http.StatusBadRequest, "missing tenant")
		return
	}

	var query ResolveQuery
	if !middleware.ValidateAndBindQuery(c, &query) {
		return
	}
	from, to, ok := parsePair(c, query.From, query.To)
	if !ok {
		return
	}

	rate, err := h.service.ResolveRate(c.Request.Context(), ownerID, from, to)
	if err != nil {
		respondError(c, err, "failed to resolve exchange rate")
		return
	}

	common.SuccessResponse(c, ResolveResponse{From: from, To: to, Rate: rate})
}

// Convert converts an amount between currencies
func (h *Handler) Convert(c *gin.Context) {
	ownerID, ok := middleware.GetTenantID(c)
	if !ok {
		common.ErrorResponse(c, http.StatusBadRequest, "missing tenant")
		return
	}

	var req ConvertRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	from, to, ok := parsePair(c, req.From, req.To)
	if !ok {
		return
	}

	result, err := h.service.Convert(c.Request.Context(), ownerID, *req.Amount, from, to)
	if err != nil {
		respondError(c, err, "failed to convert amount")
		return
	}

	common.SuccessResponse(c, result)
}

// RegisterRoutes registers rate routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/currencies", h.GetCurrencies)

	rates := rg.Group("/rates")
	rates.Use(middleware.RequireTenant())
	{
		rates.GET("", h.GetRateStore)
		rates.POST("", h.CreateRateStore)
		rates.PUT("", h.UpdateRateStore)
		rates.POST("/refresh", append(h.refreshGuard, h.RefreshRates)...)
		rates.GET("/resolve", h.ResolveRate)
		rates.POST("/convert", h.Convert)
	}
}

func parsePair(c *gin.Context, rawFrom, rawTo string) (Code, Code, bool) {
	from, err := ParseCode(rawFrom)
	if err == nil {
		var to Code
		if to, err = ParseCode(rawTo); err == nil {
			return from, to, true
		}
	}
	common.ErrorResponse(c, http.StatusBadRequest, err.Error())
	return "", "", false
}

// StatusFor maps rate errors onto HTTP status codes
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrRateStoreNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRateStoreExists):
		return http.StatusConflict
	case errors.Is(err, ErrFeedUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, ErrConversionFailed),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrUnsupportedCurrency),
		errors.Is(err, ErrInvalidRate),
		errors.Is(err, ErrDuplicatePair),
		errors.Is(err, ErrInvalidConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, ErrRateNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error, fallback string) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		logger.WithContext(c.Request.Context()).Error(fallback, zap.Error(err))
		common.ErrorResponse(c, status, fallback)
		return
	}
	common.ErrorResponse(c, status, err.Error())
}
