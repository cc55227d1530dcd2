package common

import (
	"github.com/gin-gonic/gin"
)

// Response is the envelope for every API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo describes a failed request
type ErrorInfo struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse writes a 200 response wrapping data
func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(200, Response{Success: true, Data: data})
}

// CreatedResponse writes a 201 response wrapping data
func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(201, Response{Success: true, Data: data})
}

// ErrorResponse writes an error response with the given status
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Error:   &ErrorInfo{Code: statusCode, Message: message},
	})
}

// ErrorResponseWithDetails writes an error response carrying structured details
func ErrorResponseWithDetails(c *gin.Context, statusCode int, message string, details interface{}) {
	c.JSON(statusCode, Response{
		Success: false,
		Error:   &ErrorInfo{Code: statusCode, Message: message, Details: details},
	})
}
