package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/tech-arch1tect/codeauth/config"
	"github.com/tech-arch1tect/codeauth/database"
	"github.com/tech-arch1tect/codeauth/handlers"
	"github.com/tech-arch1tect/codeauth/server"
	"github.com/tech-arch1tect/codeauth/services/jwt"
	"github.com/tech-arch1tect/codeauth/services/logging"
	"github.com/tech-arch1tect/codeauth/services/mail"
	"github.com/tech-arch1tect/codeauth/services/passcode"
	"github.com/tech-arch1tect/codeauth/services/templates"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AppBuilder struct {
	config    *config.Config
	services  map[string]bool
	models    []any
	fxOptions []fx.Option
	errors    []error
}

func NewApp() *AppBuilder {
	return &AppBuilder{
		services:  make(map[string]bool),
		models:    make([]any, 0),
		fxOptions: make([]fx.Option, 0),
		errors:    make([]error, 0),
	}
}

func (b *AppBuilder) WithConfig(cfg *config.Config) *AppBuilder {
	if cfg == nil {
		b.addError("config cannot be nil")
		return b
	}
	b.config = cfg
	return b
}

func (b *AppBuilder) WithAutoConfig() *AppBuilder {
	cfg := &config.Config{}
	if err := config.LoadConfig(cfg); err != nil {
		b.addError(fmt.Sprintf("failed to load config: %v", err))
		return b
	}
	b.config = cfg
	return b
}

func (b *AppBuilder) WithDatabase(models ...any) *AppBuilder {
	b.services["database"] = true
	b.models = append(b.models, models...)
	return b
}

func (b *AppBuilder) WithMail() *AppBuilder {
	b.services["mail"] = true
	return b
}

func (b *AppBuilder) WithJWT() *AppBuilder {
	b.services["jwt"] = true
	return b
}

func (b *AppBuilder) WithTemplates() *AppBuilder {
	b.services["templates"] = true
	return b
}

// WithPasscode enables code issuance and verification together with the
// services it depends on.
func (b *AppBuilder) WithPasscode() *AppBuilder {
	b.services["passcode"] = true
	b.services["jwt"] = true
	b.services["mail"] = true
	return b
}

// WithHandlers registers the HTTP API. It implies WithPasscode.
func (b *AppBuilder) WithHandlers() *AppBuilder {
	b.services["handlers"] = true
	return b.WithPasscode()
}

func (b *AppBuilder) WithFxOptions(opts ...fx.Option) *AppBuilder {
	b.fxOptions = append(b.fxOptions, opts...)
	return b
}

func (b *AppBuilder) Build() (*App, error) {
	if len(b.errors) > 0 {
		return nil, fmt.Errorf("configuration errors: %w", errors.Join(b.errors...))
	}

	if b.config == nil {
		b.WithAutoConfig()
		if len(b.errors) > 0 {
			return nil, fmt.Errorf("configuration errors: %w", errors.Join(b.errors...))
		}
	}

	if err := b.validate(); err != nil {
		return nil, err
	}

	logger, err := b.createLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	services, err := b.buildServices(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build services: %w", err)
	}

	app := &App{
		config: b.config,
		logger: logger,
		db:     services.database,
	}

	fxOptions := b.buildFxOptions(services, logger)
	fxOptions = append(fxOptions, fx.Invoke(func(srv *server.Server) {
		app.server = srv
	}))

	app.fx = fx.New(fxOptions...)
	if err := app.fx.Err(); err != nil {
		b.closeDatabase(services)
		return nil, fmt.Errorf("failed to assemble application: %w", err)
	}

	return app, nil
}

func (b *AppBuilder) addError(msg string) {
	b.errors = append(b.errors, errors.New(msg))
}

func (b *AppBuilder) validate() error {
	if b.services["passcode"] && b.config.Passcode.Store != "memory" {
		b.services["database"] = true
	}
	if b.services["passcode"] {
		b.models = append(b.models, &passcode.CodeRecord{})
	}
	if b.services["passcode"] && b.config.Passcode.DevMode {
		b.services["templates"] = true
	}

	if b.services["passcode"] || b.services["jwt"] || b.services["mail"] {
		if err := b.config.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}

	return nil
}

func (b *AppBuilder) createLogger() (*logging.Service, error) {
	if b.config == nil {
		return nil, fmt.Errorf("config required for logger creation")
	}

	return logging.NewService(logging.Config{
		Level:      logging.LogLevel(b.config.Log.Level),
		Format:     b.config.Log.Format,
		OutputPath: b.config.Log.Output,
	})
}

type ServiceContainer struct {
	database *gorm.DB
}

func (b *AppBuilder) buildServices(logger *logging.Service) (*ServiceContainer, error) {
	services := &ServiceContainer{}

	if b.services["database"] {
		modelsOpt := &database.ModelsOption{}
		if len(b.models) > 0 {
			modelsOpt = database.WithModels(b.models...)
		}

		db, err := database.ProvideDatabase(*b.config, modelsOpt, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		services.database = db
	}

	return services, nil
}

func (b *AppBuilder) closeDatabase(services *ServiceContainer) {
	if services.database == nil {
		return
	}
	if sqlDB, err := services.database.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func (b *AppBuilder) buildFxOptions(services *ServiceContainer, logger *logging.Service) []fx.Option {
	var options []fx.Option

	options = append(options,
		fx.Supply(b.config),
		fx.Supply(logger),
		fx.NopLogger,
	)

	if services.database != nil {
		options = append(options, fx.Supply(services.database))
	}

	options = append(options, server.NewProvider())

	if b.services["templates"] {
		options = append(options, templates.Module)
	}
	if b.services["jwt"] {
		options = append(options, jwt.Module)
	}
	if b.services["mail"] {
		options = append(options, b.notifierOption(logger))
	}
	if b.services["passcode"] {
		options = append(options, passcode.Module)
	}
	if b.services["handlers"] {
		options = append(options, handlers.Module)
	}

	options = append(options, b.fxOptions...)

	options = append(options, b.buildLifecycleHooks(services, logger)...)

	return options
}

// notifierOption selects SMTP delivery, or the log notifier when mail is
// disabled in development mode.
func (b *AppBuilder) notifierOption(logger *logging.Service) fx.Option {
	if b.config.Mail.Enabled {
		return mail.Module
	}

	logger.Warn("mail disabled, login codes will be written to the log")
	return fx.Provide(
		fx.Annotate(passcode.NewLogNotifier, fx.As(new(passcode.Notifier))),
	)
}

func (b *AppBuilder) buildLifecycleHooks(services *ServiceContainer, logger *logging.Service) []fx.Option {
	var hooks []fx.Option

	if services.database != nil {
		hooks = append(hooks, fx.Invoke(database.CloseOnStop))
	}

	hooks = append(hooks, fx.Invoke(func(lc fx.Lifecycle) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				logger.Info("application started",
					zap.String("name", b.config.App.Name),
					zap.Bool("dev_mode", b.config.Passcode.DevMode))
				return nil
			},
			OnStop: func(ctx context.Context) error {
				_ = logger.Sync()
				return nil
			},
		})
	}))

	return hooks
}
