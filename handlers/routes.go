package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/codeauth/openapi"
)

const (
	SendCodePath   = "/auth/send-code"
	VerifyCodePath = "/auth/verify-code"
	SessionPath    = "/auth/session"
	DebugEnvPath   = "/debug/env"
	DebugFormPath  = "/debug/form"
)

// Routes wires the handlers to echo. Debug routes exist only when Debug is set.
type Routes struct {
	Auth          *AuthHandler
	Debug         *DebugHandler
	SessionGuard  echo.MiddlewareFunc
	SessionCookie string
	DocsJSONPath  string
	DocsYAMLPath  string
}

func (r Routes) Register(e *echo.Echo, api *openapi.OpenAPI) {
	e.POST(SendCodePath, r.Auth.SendCode)
	e.POST(VerifyCodePath, r.Auth.VerifyCode)
	e.GET(SessionPath, r.Auth.Session, r.SessionGuard)

	if r.Debug != nil {
		e.GET(DebugEnvPath, r.Debug.Env)
		e.GET(DebugFormPath, r.Debug.Form)
	}

	if api == nil {
		return
	}

	r.document(api)
	if r.DocsJSONPath != "" {
		e.GET(r.DocsJSONPath, api.JSONHandler())
	}
	if r.DocsYAMLPath != "" {
		e.GET(r.DocsYAMLPath, api.YAMLHandler())
	}
}

func (r Routes) document(api *openapi.OpenAPI) {
	api.Tag("auth", "Email code sign-in").
		BearerAuth("bearerAuth", "Session token from verify-code").
		CookieAuth("cookieAuth", r.SessionCookie, "Session cookie set by verify-code")

	api.Document(http.MethodPost, SendCodePath).
		Summary("Send a sign-in code").
		Description("Issues a single-use code for the email and role and sends it by email. Earlier codes for the same email, role and purpose stop working.").
		OperationID("sendCode").
		Tags("auth").
		Body(SendCodeRequest{}, "Who the code is for").
		Response(http.StatusOK, SendCodeResponse{}, "Code issued and sent").
		Response(http.StatusBadRequest, ErrorResponse{}, "Invalid email, role or purpose").
		Response(http.StatusForbidden, ErrorResponse{}, "Email not allowed for the admin role").
		Response(http.StatusBadGateway, ErrorResponse{}, "The code could not be delivered").
		Response(http.StatusServiceUnavailable, ErrorResponse{}, "Code store unavailable").
		Build()

	api.Document(http.MethodPost, VerifyCodePath).
		Summary("Verify a sign-in code").
		Description("Consumes the newest active code for the email and role and starts a session.").
		OperationID("verifyCode").
		Tags("auth").
		Body(VerifyCodeRequest{}, "The code to verify").
		Response(http.StatusOK, VerifyCodeResponse{}, "Signed in").
		Response(http.StatusBadRequest, ErrorResponse{}, "Invalid input, no active code or code expired").
		Response(http.StatusUnauthorized, ErrorResponse{}, "Incorrect code").
		Response(http.StatusForbidden, ErrorResponse{}, "Email not allowed for the admin role").
		Response(http.StatusConflict, ErrorResponse{}, "Code changed by a concurrent request").
		Response(http.StatusTooManyRequests, ErrorResponse{}, "Attempt limit reached").
		Response(http.StatusServiceUnavailable, ErrorResponse{}, "Code store unavailable").
		Build()

	api.Document(http.MethodGet, SessionPath).
		Summary("Describe the current session").
		OperationID("getSession").
		Tags("auth").
		Security("bearerAuth", "cookieAuth").
		Response(http.StatusOK, SessionResponse{}, "Current session").
		Response(http.StatusUnauthorized, ErrorResponse{}, "Missing, invalid or expired session").
		Build()

	if r.Debug != nil {
		api.Tag("debug", "Development helpers")

		api.Document(http.MethodGet, DebugEnvPath).
			Summary("Configuration readiness").
			OperationID("debugEnv").
			Tags("debug").
			Response(http.StatusOK, EnvResponse{}, "Readiness flags").
			Build()

		api.Document(http.MethodGet, DebugFormPath).
			Summary("Manual test form").
			OperationID("debugForm").
			Tags("debug").
			ResponseHTML(http.StatusOK, "HTML form for both endpoints").
			Build()
	}
}
