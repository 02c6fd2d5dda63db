// Package codeauth issues and verifies single-use email sign-in codes.
//
// New assembles the HTTP service:
//
//	app, err := codeauth.New(codeauth.WithHandlers())
//	if err != nil {
//		log.Fatal(err)
//	}
//	log.Fatal(app.Run())
//
// Configuration is read from the environment (and a .env file) unless
// WithConfig supplies one.
package codeauth

import (
	"github.com/tech-arch1tect/codeauth/app"
	"github.com/tech-arch1tect/codeauth/config"
	"github.com/tech-arch1tect/codeauth/internal/options"
	"go.uber.org/fx"
)

type App = app.App

type Option = options.Option

func New(opts ...Option) (*App, error) {
	o := options.Apply(opts...)

	builder := app.NewApp()
	if o.Config != nil {
		builder.WithConfig(o.Config)
	}
	if o.EnableDatabase {
		builder.WithDatabase(o.DatabaseModels...)
	}
	if o.EnableMail {
		builder.WithMail()
	}
	if o.EnableJWT {
		builder.WithJWT()
	}
	if o.EnablePasscode {
		builder.WithPasscode()
	}
	if o.EnableHandlers {
		builder.WithHandlers()
	}
	if len(o.ExtraFxOptions) > 0 {
		builder.WithFxOptions(o.ExtraFxOptions...)
	}

	return builder.Build()
}

func WithConfig(cfg *config.Config) Option {
	return options.WithConfig(cfg)
}

func WithDatabase(models ...any) Option {
	return options.WithDatabase(models...)
}

func WithMail() Option {
	return options.WithMail()
}

func WithJWT() Option {
	return options.WithJWT()
}

func WithPasscode() Option {
	return options.WithPasscode()
}

// WithHandlers enables the HTTP API and everything it depends on.
func WithHandlers() Option {
	return options.WithHandlers()
}

func WithFxOptions(opts ...fx.Option) Option {
	return options.WithFxOptions(opts...)
}
