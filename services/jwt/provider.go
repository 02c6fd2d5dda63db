package jwt

import (
	"github.com/tech-arch1tect/codeauth/config"
	"github.com/tech-arch1tect/codeauth/services/logging"
	"github.com/tech-arch1tect/codeauth/services/passcode"
	"go.uber.org/fx"
)

func NewJWTService(cfg *config.Config, logger *logging.Service) *Service {
	return NewService(&cfg.JWT, logger)
}

func asSessionIssuer(s *Service) passcode.SessionIssuer {
	return s
}

var Module = fx.Options(
	fx.Provide(
		NewJWTService,
		asSessionIssuer,
	),
)
