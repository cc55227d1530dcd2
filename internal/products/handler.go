package products

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/richxcame/pos-pricing/internal/currency"
	"github.com/richxcame/pos-pricing/internal/pricing"
	"github.com/richxcame/pos-pricing/pkg/common"
	"github.com/richxcame/pos-pricing/pkg/logger"
	"github.com/richxcame/pos-pricing/pkg/middleware"
	"github.com/richxcame/pos-pricing/pkg/pagination"
	"github.com/richxcame/pos-pricing/pkg/validation"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for products
type Handler struct {
	service *Service
}

// NewHandler creates a new products handler
func NewHandler(service *Service) *Handler {
	validation.Validator()
	return &Handler{service: service}
}

// CreateProduct creates a priced product
func (h *Handler) CreateProduct(c *gin.Context) {
	ownerID, ok := middleware.GetTenantID(c)
	if !ok {
		common.ErrorResponse(c, http.StatusBadRequest, "missing tenant")
		return
	}

	var req CreateProductRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	product, err := h.service.CreateProduct(c.Request.Context(), ownerID, &req)
	if err != nil {
		respondError(c, err, "failed to create product")
		return
	}

	common.CreatedResponse(c, product)
}

// GetProduct returns a product
func (h *Handler) GetProduct(c *gin.Context) {
	ownerID, productID, ok := ids(c)
	if !ok {
		return
	}

	product, err := h.service.GetProduct(c.Request.Context(), ownerID, productID)
	if err != nil {
		respondError(c, err, "failed to get product")
		return
	}

	common.SuccessResponse(c, product)
}

// ListProducts returns a page of products
func (h *Handler) ListProducts(c *gin.Context) {
	ownerID, ok := middleware.GetTenantID(c)
	if !ok {
		common.ErrorResponse(c, http.StatusBadRequest, "missing tenant")
		return
	}

	params := pagination.ParseParams(c)

	resp, err := h.service.ListProducts(c.Request.Context(), ownerID, params.Limit, params.Offset)
	if err != nil {
		respondError(c, err, "failed to list products")
		return
	}

	common.SuccessResponse(c, resp)
}

// UpdatePricing changes pricing inputs and reprices the product
func (h *Handler) UpdatePricing(c *gin.Context) {
	ownerID, productID, ok := ids(c)
	if !ok {
		return
	}

	var req UpdatePricingRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	product, err := h.service.UpdatePricing(c.Request.Context(), ownerID, productID, &req)
	if err != nil {
		respondError(c, err, "failed to update product pricing")
		return
	}

	common.SuccessResponse(c, product)
}

// ReplaceVariants swaps the product's variants
func (h *Handler) ReplaceVariants(c *gin.Context) {
	ownerID, productID, ok := ids(c)
	if !ok {
		return
	}

	var req ReplaceVariantsRequest
	if !middleware.ValidateAndBind(c, &req) {
		return
	}

	product, err := h.service.ReplaceVariants(c.Request.Context(), ownerID, productID, &req)
	if err != nil {
		respondError(c, err, "failed to replace variants")
		return
	}

	common.SuccessResponse(c, product)
}

// GetDisplayPrices previews prices in another currency
func (h *Handler) GetDisplayPrices(c *gin.Context) {
	ownerID, productID, ok := ids(c)
	if !ok {
		return
	}

	var query DisplayQuery
	if !middleware.ValidateAndBindQuery(c, &query) {
		return
	}

	display, err := currency.ParseCode(query.Currency)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	prices, err := h.service.DisplayPrices(c.Request.Context(), ownerID, productID, display)
	if err != nil {
		respondError(c, err, "failed to compute display prices")
		return
	}

	common.SuccessResponse(c, prices)
}

// RegisterRoutes registers product routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	products.Use(middleware.RequireTenant())
	{
		products.POST("", h.CreateProduct)
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProduct)
		products.PUT("/:id/pricing", h.UpdatePricing)
		products.PUT("/:id/variants", h.ReplaceVariants)
		products.GET("/:id/display", h.GetDisplayPrices)
	}
}

func ids(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	ownerID, ok := middleware.GetTenantID(c)
	if !ok {
		common.ErrorResponse(c, http.StatusBadRequest, "missing tenant")
		return uuid.Nil, uuid.Nil, false
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid product ID")
		return uuid.Nil, uuid.Nil, false
	}
	return ownerID, productID, true
}

func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrProductNotFound):
		common.ErrorResponse(c, http.StatusNotFound, "product not found")
	case errors.Is(err, ErrInvalidName):
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
	case pricing.IsValidationError(err):
		common.ErrorResponse(c, http.StatusBadRequest, err.Error())
	default:
		logger.WithContext(c.Request.Context()).Error(fallback, zap.Error(err))
		common.ErrorResponse(c, http.StatusInternalServerError, fallback)
	}
}
