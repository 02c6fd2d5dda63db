package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/tech-arch1tect/codeauth/config"
	"github.com/tech-arch1tect/codeauth/services/logging"
	"go.uber.org/zap"
)

type Server struct {
	echo   *echo.Echo
	cfg    *config.Config
	logger *logging.Service
}

func New(cfg *config.Config, logger *logging.Service) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(e, logger)

	configureTrustedProxies(e, cfg.Server.TrustedProxies, logger)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(logging.RequestLogger(logger, "/healthz"))
	if len(cfg.Server.AllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.Server.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
			AllowCredentials: true,
		}))
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]bool{"ok": true})
	})

	return &Server{
		echo:   e,
		cfg:    cfg,
		logger: logger,
	}
}

// configureTrustedProxies makes c.RealIP() honour X-Forwarded-For only when
// the request arrives from a listed proxy. Echo's default trust of loopback,
// link-local and private peers is switched off.
func configureTrustedProxies(e *echo.Echo, proxies []string, logger *logging.Service) {
	var ranges []echo.TrustOption
	for _, proxy := range proxies {
		proxy = strings.TrimSpace(proxy)
		if proxy == "" {
			continue
		}

		if !strings.Contains(proxy, "/") {
			if ip := net.ParseIP(proxy); ip != nil {
				if ip.To4() != nil {
					proxy += "/32"
				} else {
					proxy += "/128"
				}
			}
		}

		_, ipNet, err := net.ParseCIDR(proxy)
		if err != nil {
			if logger != nil {
				logger.Warn("ignoring invalid trusted proxy", zap.String("proxy", proxy))
			}
			continue
		}
		ranges = append(ranges, echo.TrustIPRange(ipNet))
	}

	if len(ranges) == 0 {
		e.IPExtractor = echo.ExtractIPDirect()
		return
	}
	options := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	e.IPExtractor = echo.ExtractIPFromXFFHeader(append(options, ranges...)...)
}

// errorHandler renders errors that reach echo in the same envelope the API
// handlers use.
func errorHandler(e *echo.Echo, logger *logging.Service) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		message := http.StatusText(code)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(code)
			}
		} else if logger != nil {
			logger.Error("unhandled error", zap.Error(err), zap.String("path", c.Path()))
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(code)
		} else {
			writeErr = c.JSON(code, map[string]any{
				"ok":      false,
				"error":   errorKind(code),
				"message": message,
			})
		}
		if writeErr != nil {
			e.Logger.Error(writeErr)
		}
	}
}

func errorKind(code int) string {
	switch code {
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusBadRequest:
		return "invalid_input"
	default:
		if code >= 500 {
			return "internal"
		}
		return strings.ReplaceAll(strings.ToLower(http.StatusText(code)), " ", "_")
	}
}

func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%s", s.cfg.Server.Host, s.cfg.Server.Port)
}

// Start blocks until the server stops. A clean shutdown returns nil.
func (s *Server) Start() error {
	addr := s.Addr()
	if s.logger != nil {
		s.logger.Info("starting HTTP server", zap.String("addr", addr))
	}

	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.logger != nil {
		s.logger.Info("shutting down HTTP server")
	}
	return s.echo.Shutdown(ctx)
}

func (s *Server) Get(path string, handler echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.echo.GET(path, handler, m...)
}

func (s *Server) Post(path string, handler echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.echo.POST(path, handler, m...)
}

func (s *Server) Group(prefix string, m ...echo.MiddlewareFunc) *echo.Group {
	return s.echo.Group(prefix, m...)
}

func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) SetRenderer(renderer echo.Renderer) {
	s.echo.Renderer = renderer
}
