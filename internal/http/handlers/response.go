// Package handlers provides HTTP handler implementations for the admin API.
//
// This file defines the standard response utilities: a structured error
// envelope with a stable machine-readable code, and helpers keeping success
// and failure shapes uniform across endpoints.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/r9klabs/r9kbot/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code"`
	// Human-readable message (safe to show to operators)
	Message string `json:"message"`
}

// fail aborts the request with a structured error and logs server-side errors.
func Fail(c *gin.Context, status int, code, msg string) {
	reqID := c.Writer.Header().Get("X-Request-ID")
	resp := ErrorResponse{
		RequestID: reqID,
		Code:      code,
		Message:   msg,
	}

	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
