package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/codeauth/config"
	"github.com/tech-arch1tect/codeauth/middleware/session"
	"github.com/tech-arch1tect/codeauth/services/logging"
	"github.com/tech-arch1tect/codeauth/services/passcode"
	"go.uber.org/zap"
)

type CodeIssuer interface {
	Issue(ctx context.Context, req passcode.IssueRequest) (*passcode.IssueResult, error)
}

type CodeVerifier interface {
	Verify(ctx context.Context, req passcode.VerifyRequest) (*passcode.VerifyResult, error)
}

type SendCodeRequest struct {
	Email   string `json:"email" form:"email" doc:"Email address to send the code to" example:"a@x.com"`
	Role    string `json:"role" form:"role" doc:"Role the code is issued for" enum:"admin,customer,carrier,affiliate"`
	Purpose string `json:"purpose,omitempty" form:"purpose" doc:"Defaults to signin" enum:"signin,signup"`
}

type SendCodeResponse struct {
	OK        bool      `json:"ok"`
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
	Code      string    `json:"code,omitempty" doc:"Plaintext code, development mode only"`
}

type VerifyCodeRequest struct {
	Email string `json:"email" form:"email" example:"a@x.com"`
	Code  string `json:"code" form:"code" doc:"The 6-digit code" example:"123456"`
	Role  string `json:"role" form:"role" enum:"admin,customer,carrier,affiliate"`
}

type VerifyCodeResponse struct {
	OK            bool          `json:"ok"`
	Authenticated bool          `json:"authenticated"`
	Token         string        `json:"token" doc:"Session token, also set as an HttpOnly cookie"`
	Role          passcode.Role `json:"role"`
	Email         string        `json:"email"`
}

type SessionResponse struct {
	OK        bool          `json:"ok"`
	Email     string        `json:"email"`
	Role      passcode.Role `json:"role"`
	IssuedAt  time.Time     `json:"issued_at"`
	ExpiresAt time.Time     `json:"expires_at"`
}

type AuthHandler struct {
	issuer     CodeIssuer
	verifier   CodeVerifier
	cookie     config.SessionConfig
	sessionTTL time.Duration
	logger     *logging.Service
}

func NewAuthHandler(issuer CodeIssuer, verifier CodeVerifier, cookie config.SessionConfig, sessionTTL time.Duration, logger *logging.Service) *AuthHandler {
	return &AuthHandler{
		issuer:     issuer,
		verifier:   verifier,
		cookie:     cookie,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

func (h *AuthHandler) SendCode(c echo.Context) error {
	var req SendCodeRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, h.logger, fmt.Errorf("%w: %v", passcode.ErrInvalidInput, err))
	}

	result, err := h.issuer.Issue(c.Request().Context(), passcode.IssueRequest{
		Identity: req.Email,
		Role:     req.Role,
		Purpose:  req.Purpose,
		Origin:   originFrom(c),
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, SendCodeResponse{
		OK:        true,
		Message:   "Code sent. Check your email.",
		ExpiresAt: result.ExpiresAt,
		Code:      result.Code,
	})
}

func (h *AuthHandler) VerifyCode(c echo.Context) error {
	var req VerifyCodeRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, h.logger, fmt.Errorf("%w: %v", passcode.ErrInvalidInput, err))
	}

	result, err := h.verifier.Verify(c.Request().Context(), passcode.VerifyRequest{
		Identity: req.Email,
		Code:     req.Code,
		Role:     req.Role,
	})
	if err != nil {
		return respondError(c, h.logger, err)
	}

	c.SetCookie(h.sessionCookie(result.SessionToken))

	if h.logger != nil {
		h.logger.Info("session started",
			zap.String("role", string(result.Role)),
			zap.String("ip", c.RealIP()))
	}

	return c.JSON(http.StatusOK, VerifyCodeResponse{
		OK:            true,
		Authenticated: true,
		Token:         result.SessionToken,
		Role:          result.Role,
		Email:         result.Identity,
	})
}

// Session describes the token accepted by session.RequireSession.
func (h *AuthHandler) Session(c echo.Context) error {
	claims := session.GetClaims(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Session token required")
	}

	resp := SessionResponse{
		OK:    true,
		Email: claims.Email,
		Role:  claims.Role,
	}
	if claims.IssuedAt != nil {
		resp.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		resp.ExpiresAt = claims.ExpiresAt.Time
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) sessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookie.CookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.cookie.CookieDomain,
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.CookieSecure,
		SameSite: sameSiteMode(h.cookie.CookieSameSite),
	}
}

func sameSiteMode(mode string) http.SameSite {
	switch strings.ToLower(mode) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
