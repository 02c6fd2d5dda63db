package handlers

import (
	"github.com/tech-arch1tect/codeauth/config"
	"github.com/tech-arch1tect/codeauth/middleware/session"
	"github.com/tech-arch1tect/codeauth/openapi"
	"github.com/tech-arch1tect/codeauth/server"
	"github.com/tech-arch1tect/codeauth/services/jwt"
	"github.com/tech-arch1tect/codeauth/services/logging"
	"github.com/tech-arch1tect/codeauth/services/passcode"
	"github.com/tech-arch1tect/codeauth/services/templates"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const APIVersion = "1.0.0"

type Params struct {
	fx.In

	Config       *config.Config
	Server       *server.Server
	Issuance     *passcode.IssuanceService
	Verification *passcode.VerificationService
	Policy       *passcode.AdminPolicy
	JWT          *jwt.Service
	Templates    *templates.Service `optional:"true"`
	Logger       *logging.Service
}

func RegisterRoutes(p Params) {
	routes := Routes{
		Auth:          NewAuthHandler(p.Issuance, p.Verification, p.Config.Session, p.JWT.Expiry(), p.Logger),
		SessionGuard:  session.RequireSession(p.JWT, p.Config.Session.CookieName),
		SessionCookie: p.Config.Session.CookieName,
		DocsJSONPath:  "/openapi.json",
		DocsYAMLPath:  "/openapi.yaml",
	}

	if p.Config.Passcode.DevMode {
		routes.Debug = NewDebugHandler(p.Config, p.Policy)

		pages := p.Templates
		if pages == nil {
			pages = templates.New(p.Config.Server.TemplatesDir, p.Logger)
		}
		p.Server.SetRenderer(pages.Renderer())

		if p.Logger != nil {
			p.Logger.Warn("development mode: debug routes enabled and codes returned in responses",
				zap.String("form", DebugFormPath))
		}
	}

	api := openapi.New(p.Config.App.Name, APIVersion).
		Description("Email sign-in with single-use numeric codes.").
		Server(p.Config.App.URL, "")

	routes.Register(p.Server.Echo(), api)
}

var Module = fx.Options(
	fx.Invoke(RegisterRoutes),
)
