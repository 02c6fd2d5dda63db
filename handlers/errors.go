package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/codeauth/services/logging"
	"github.com/tech-arch1tect/codeauth/services/passcode"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	OK      bool   `json:"ok" doc:"Always false"`
	Error   string `json:"error" doc:"Stable error kind" example:"code_incorrect"`
	Message string `json:"message" doc:"Human readable message"`
}

type errorMapping struct {
	status  int
	message string
}

// Clients only ever see these messages; wrapped error detail stays in the logs.
var errorTable = map[string]errorMapping{
	"invalid_input":     {http.StatusBadRequest, "Provide a valid email, role and code."},
	"forbidden":         {http.StatusForbidden, "This email is not allowed to use this role."},
	"code_not_found":    {http.StatusBadRequest, "Request a new code."},
	"code_expired":      {http.StatusBadRequest, "Code expired. Request another one."},
	"too_many_attempts": {http.StatusTooManyRequests, "Too many attempts. Request another code."},
	"code_incorrect":    {http.StatusUnauthorized, "Incorrect code."},
	"conflict":          {http.StatusConflict, "The code was used by another request. Try again."},
	"dispatch_failed":   {http.StatusBadGateway, "Could not send the code right now."},
	"store_unavailable": {http.StatusServiceUnavailable, "Service temporarily unavailable. Try again shortly."},
	"internal":          {http.StatusInternalServerError, "Something went wrong. Try again."},
}

func StatusFor(err error) int {
	if m, ok := errorTable[passcode.Kind(err)]; ok {
		return m.status
	}
	return http.StatusInternalServerError
}

func respondError(c echo.Context, logger *logging.Service, err error) error {
	kind := passcode.Kind(err)
	m, ok := errorTable[kind]
	if !ok {
		kind = "internal"
		m = errorTable[kind]
	}

	if logger != nil {
		fields := []zap.Field{
			zap.String("kind", kind),
			zap.String("path", c.Path()),
			zap.Error(err),
		}
		if m.status >= 500 {
			logger.Error("request failed", fields...)
		} else {
			logger.Debug("request rejected", fields...)
		}
	}

	return c.JSON(m.status, ErrorResponse{
		OK:      false,
		Error:   kind,
		Message: m.message,
	})
}
