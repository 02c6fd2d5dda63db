package options

import (
	"github.com/tech-arch1tect/codeauth/config"
	"go.uber.org/fx"
)

type Options struct {
	Config         *config.Config
	EnableDatabase bool
	DatabaseModels []any
	EnableMail     bool
	EnableJWT      bool
	EnablePasscode bool
	EnableHandlers bool
	ExtraFxOptions []fx.Option
}

type Option func(*Options)

func Apply(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func WithConfig(cfg *config.Config) Option {
	return func(opts *Options) {
		opts.Config = cfg
	}
}

func WithDatabase(models ...any) Option {
	return func(opts *Options) {
		opts.EnableDatabase = true
		opts.DatabaseModels = append(opts.DatabaseModels, models...)
	}
}

func WithMail() Option {
	return func(opts *Options) {
		opts.EnableMail = true
	}
}

func WithJWT() Option {
	return func(opts *Options) {
		opts.EnableJWT = true
	}
}

func WithPasscode() Option {
	return func(opts *Options) {
		opts.EnablePasscode = true
	}
}

func WithHandlers() Option {
	return func(opts *Options) {
		opts.EnableHandlers = true
	}
}

func WithFxOptions(fxOpts ...fx.Option) Option {
	return func(opts *Options) {
		opts.ExtraFxOptions = append(opts.ExtraFxOptions, fxOpts...)
	}
}
