package templates

import (
	"context"

	"github.com/tech-arch1tect/codeauth/config"
	"github.com/tech-arch1tect/codeauth/services/logging"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(func(cfg *config.Config, logger *logging.Service) *Service {
		return New(cfg.Server.TemplatesDir, logger)
	}),
	fx.Invoke(func(lc fx.Lifecycle, svc *Service) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return svc.LoadTemplates()
			},
		})
	}),
)
