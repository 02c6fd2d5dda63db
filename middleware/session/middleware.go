package session

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/codeauth/services/jwt"
)

const ClaimsKey = "_session_claims"

type TokenValidator interface {
	ValidateToken(tokenString string) (*jwt.Claims, error)
}

// RequireSession accepts a bearer token in the Authorization header and falls
// back to the session cookie named cookieName.
func RequireSession(validator TokenValidator, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := extractToken(c, cookieName)
			if err != nil {
				return err
			}

			claims, err := validator.ValidateToken(tokenString)
			if err != nil {
				switch {
				case errors.Is(err, jwt.ErrExpiredToken):
					return echo.NewHTTPError(http.StatusUnauthorized, "Session has expired")
				case errors.Is(err, jwt.ErrMalformedToken):
					return echo.NewHTTPError(http.StatusUnauthorized, "Malformed session token")
				case errors.Is(err, jwt.ErrInvalidSignature):
					return echo.NewHTTPError(http.StatusUnauthorized, "Invalid session token signature")
				default:
					return echo.NewHTTPError(http.StatusUnauthorized, "Invalid session token")
				}
			}

			c.Set(ClaimsKey, claims)

			return next(c)
		}
	}
}

func extractToken(c echo.Context, cookieName string) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader != "" {
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenString == "" {
			return "", echo.NewHTTPError(http.StatusUnauthorized, "Session token required")
		}
		return tokenString, nil
	}

	if cookieName != "" {
		if cookie, err := c.Cookie(cookieName); err == nil && cookie.Value != "" {
			return cookie.Value, nil
		}
	}

	return "", echo.NewHTTPError(http.StatusUnauthorized, "Session token required")
}

func GetClaims(c echo.Context) *jwt.Claims {
	if claims, ok := c.Get(ClaimsKey).(*jwt.Claims); ok {
		return claims
	}
	return nil
}
