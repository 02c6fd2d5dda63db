package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/codeauth/config"
	"github.com/tech-arch1tect/codeauth/server"
	"github.com/tech-arch1tect/codeauth/services/logging"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	fx     *fx.App
	config *config.Config
	logger *logging.Service
	db     *gorm.DB
	server *server.Server
}

func (a *App) Start() error {
	return a.fx.Start(context.Background())
}

// Run starts the application and blocks until SIGINT, SIGTERM or a fatal
// server error.
func (a *App) Run() error {
	if err := a.Start(); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		if a.logger != nil {
			a.logger.Info("received shutdown signal, stopping gracefully", zap.String("signal", sig.String()))
		} else {
			log.Printf("Received signal %v, shutting down gracefully...", sig)
		}
	case sig := <-a.fx.Wait():
		if a.logger != nil {
			a.logger.Warn("application requested shutdown", zap.Int("exit_code", sig.ExitCode))
		}
	}

	return a.Stop()
}

func (a *App) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.fx.Stop(ctx); err != nil {
		if a.logger != nil {
			a.logger.Error("failed to stop application gracefully", zap.Error(err))
		}
		return err
	}
	return nil
}

func (a *App) Server() *echo.Echo {
	if a.server == nil {
		if a.logger != nil {
			a.logger.Warn("server not properly initialized through dependency injection")
		}
		return nil
	}
	return a.server.Echo()
}

func (a *App) HTTPServer() *server.Server {
	return a.server
}

func (a *App) Database() *gorm.DB {
	return a.db
}

func (a *App) Logger() *logging.Service {
	return a.logger
}

func (a *App) Config() *config.Config {
	return a.config
}

func (a *App) RegisterRoutes(fn func(*echo.Echo)) {
	if server := a.Server(); server != nil {
		fn(server)
	}
}
