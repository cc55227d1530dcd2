package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/richxcame/pos-pricing/pkg/common"
	"github.com/richxcame/pos-pricing/pkg/validation"
)

// ValidateJSON binds the JSON body to req and validates it
func ValidateJSON(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return asValidationError(err)
	}
	return validation.ValidateStruct(req)
}

// ValidateQuery binds query parameters to req and validates it
func ValidateQuery(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindQuery(req); err != nil {
		return asValidationError(err)
	}
	return validation.ValidateStruct(req)
}

// RespondWithValidationError sends a standardized validation error response
func RespondWithValidationError(c *gin.Context, err error) {
	var valErr *validation.ValidationError
	if errors.As(err, &valErr) {
		common.ErrorResponseWithDetails(c, http.StatusBadRequest, "validation failed", valErr.Errors)
		return
	}
	common.ErrorResponse(c, http.StatusBadRequest, err.Error())
}

// ValidateAndBind validates and binds the JSON body, responding with 400 on failure
func ValidateAndBind(c *gin.Context, req interface{}) bool {
	if err := ValidateJSON(c, req); err != nil {
		RespondWithValidationError(c, err)
		return false
	}
	return true
}

// ValidateAndBindQuery validates and binds query parameters, responding with 400 on failure
func ValidateAndBindQuery(c *gin.Context, req interface{}) bool {
	if err := ValidateQuery(c, req); err != nil {
		RespondWithValidationError(c, err)
		return false
	}
	return true
}

func asValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return validation.NewValidationError(fieldErrs)
	}
	return err
}
