package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/codeauth/config"
	"github.com/tech-arch1tect/codeauth/services/passcode"
)

// EnvResponse reports readiness only; it never carries configured values.
type EnvResponse struct {
	OK                bool   `json:"ok"`
	DevMode           bool   `json:"dev_mode"`
	Store             string `json:"store"`
	HaveDatabase      bool   `json:"have_database"`
	MailReady         bool   `json:"mail_ready"`
	JWTReady          bool   `json:"jwt_ready"`
	AdminAllowedCount int    `json:"admin_allowed_count"`
}

type DebugHandler struct {
	cfg    *config.Config
	policy *passcode.AdminPolicy
}

func NewDebugHandler(cfg *config.Config, policy *passcode.AdminPolicy) *DebugHandler {
	return &DebugHandler{cfg: cfg, policy: policy}
}

func (h *DebugHandler) Env(c echo.Context) error {
	store := h.cfg.Passcode.Store
	if store == "" {
		store = "database"
	}

	return c.JSON(http.StatusOK, EnvResponse{
		OK:                true,
		DevMode:           h.cfg.Passcode.DevMode,
		Store:             store,
		HaveDatabase:      store == "database" && h.cfg.Database.DSN != "",
		MailReady:         h.cfg.Mail.Enabled && h.cfg.Mail.Host != "" && h.cfg.Mail.FromAddress != "",
		JWTReady:          h.cfg.JWT.Validate() == nil,
		AdminAllowedCount: h.policy.Len(),
	})
}

type formPage struct {
	AppName    string
	CodeLength int
	SendPath   string
	VerifyPath string
	Roles      []passcode.Role
	Purposes   []passcode.Purpose
}

func (h *DebugHandler) Form(c echo.Context) error {
	return c.Render(http.StatusOK, "debug_form.html", formPage{
		AppName:    h.cfg.App.Name,
		CodeLength: passcode.CodeLength,
		SendPath:   SendCodePath,
		VerifyPath: VerifyCodePath,
		Roles:      passcode.Roles,
		Purposes:   passcode.Purposes,
	})
}
