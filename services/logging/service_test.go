package logging

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewService(t *testing.T) {
	t.Run("json format", func(t *testing.T) {
		service, err := NewService(Config{Level: Info, Format: "json", OutputPath: "stdout"})

		require.NoError(t, err)
		assert.NotNil(t, service.Logger())
	})

	t.Run("console format", func(t *testing.T) {
		service, err := NewService(Config{Level: Debug, Format: "console", OutputPath: "stdout"})

		require.NoError(t, err)
		assert.NotNil(t, service.Logger())
	})

	t.Run("file output", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "codeauth.log")

		service, err := NewService(Config{Level: Warn, Format: "json", OutputPath: logFile})
		require.NoError(t, err)

		service.Warn("written to file")
		_ = service.Sync()

		_, err = os.Stat(logFile)
		assert.NoError(t, err)
	})
}

func TestService_LoggingMethods(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	service := NewFromZap(zap.New(core))

	service.Debug("debug message")
	service.Info("info message")
	service.Warn("warn message")
	service.Error("error message")

	logs := recorded.TakeAll()
	require.Len(t, logs, 4)
	assert.Equal(t, zapcore.DebugLevel, logs[0].Level)
	assert.Equal(t, zapcore.InfoLevel, logs[1].Level)
	assert.Equal(t, zapcore.WarnLevel, logs[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, logs[3].Level)
	assert.Equal(t, "warn message", logs[2].Message)
}

func TestService_WithAndNamed(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	service := NewFromZap(zap.New(core)).Named("passcode").With(zap.String("component", "issuance"))

	service.Info("code issued")

	logs := recorded.TakeAll()
	require.Len(t, logs, 1)
	assert.Equal(t, "passcode", logs[0].LoggerName)
	assert.Equal(t, "issuance", logs[0].ContextMap()["component"])
}

func TestService_NilSafety(t *testing.T) {
	var service *Service

	assert.NotPanics(t, func() {
		service.Debug("test")
		service.Info("test")
		service.Warn("test")
		service.Error("test")
		assert.Nil(t, service.With(zap.String("k", "v")))
		assert.Nil(t, service.Named("x"))
		assert.NoError(t, service.Sync())
	})
	assert.Nil(t, service.Logger())

	empty := &Service{}
	assert.NotPanics(t, func() {
		empty.Info("test")
		empty.With(zap.String("k", "v")).Info("test")
	})
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    LogLevel
		expected zapcore.Level
	}{
		{Debug, zapcore.DebugLevel},
		{Info, zapcore.InfoLevel},
		{Warn, zapcore.WarnLevel},
		{Error, zapcore.ErrorLevel},
		{LogLevel("unknown"), zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLogLevel(tt.input))
		})
	}
}

func TestRequestLogger(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	logger := NewFromZap(zap.New(core))

	e := echo.New()
	e.Use(RequestLogger(logger, "/healthz"))
	e.GET("/healthz", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/bad", func(c echo.Context) error { return c.NoContent(http.StatusBadRequest) })

	for _, path := range []string{"/healthz", "/ok", "/bad"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	logs := recorded.TakeAll()
	require.Len(t, logs, 2)
	assert.Equal(t, "request", logs[0].Message)
	assert.Equal(t, zapcore.InfoLevel, logs[0].Level)
	assert.Equal(t, "client error", logs[1].Message)
	assert.Equal(t, zapcore.WarnLevel, logs[1].Level)
}
