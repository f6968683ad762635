// Package respond writes the JSON bodies shared by every route. Failures
// use the envelope {"error": {"code": ..., "message": ...}}.
package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tirescan-backend/internal/shared/telemetry"
)

// Code is the machine-readable error code clients switch on.
type Code string

const (
	CodeValidation      Code = "validation_error"
	CodeNotFound        Code = "not_found"
	CodePayloadTooLarge Code = "payload_too_large"
	CodeRateLimited     Code = "rate_limited"
	CodeConfiguration   Code = "configuration_error"
	CodeUpstream        Code = "upstream_error"
	CodeUpstreamTimeout Code = "upstream_timeout"
	CodeInternal        Code = "internal_error"
)

type problem struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Error        problem `json:"error"`
	RetryAfterMs int     `json:"retryAfterMs,omitempty"`
}

// Error aborts the request with the error envelope. 5xx responses log at
// error level, everything else at warn.
func Error(c *gin.Context, status int, code Code, message string) {
	abort(c, status, envelope{Error: problem{Code: code, Message: message}})
}

// RateLimited aborts with 429 and tells the client how long to back off.
func RateLimited(c *gin.Context, retryAfterMs int) {
	abort(c, http.StatusTooManyRequests, envelope{
		Error:        problem{Code: CodeRateLimited, Message: "Too many requests, slow down."},
		RetryAfterMs: retryAfterMs,
	})
}

func abort(c *gin.Context, status int, body envelope) {
	fields := map[string]any{
		"status":     status,
		"code":       string(body.Error.Code),
		"message":    body.Error.Message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	for _, key := range []string{"analysisId", "shopId"} {
		if v := c.GetString(key); v != "" {
			fields[key] = v
		}
	}
	if status >= http.StatusInternalServerError {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Warn("http.error", fields)
	}
	c.AbortWithStatusJSON(status, body)
}

// OK writes payload with 200.
func OK(c *gin.Context, payload any) { c.JSON(http.StatusOK, payload) }

// Created writes payload with 201.
func Created(c *gin.Context, payload any) { c.JSON(http.StatusCreated, payload) }

// Status writes payload with an explicit status, e.g. 503 from health.
func Status(c *gin.Context, status int, payload any) { c.JSON(status, payload) }
