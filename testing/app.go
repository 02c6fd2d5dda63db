package e2etesting

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/codeauth/app"
	"github.com/tech-arch1tect/codeauth/config"
	"github.com/tech-arch1tect/codeauth/testutils"
)

// E2EApp serves a fully assembled application over a real HTTP listener.
type E2EApp struct {
	App             *app.App
	TestServer      *httptest.Server
	BaseURL         string
	Config          *config.Config
	CoverageTracker *CoverageTracker
}

// TestConfig returns a development configuration with mail disabled and the
// in-memory code store.
func TestConfig() *config.Config {
	cfg := testutils.GetTestConfig()
	cfg.Log.Level = "error"
	cfg.Log.Format = "json"
	cfg.Mail.Enabled = false
	cfg.Passcode.DevMode = true
	cfg.Passcode.Store = "memory"
	return cfg
}

func NewE2EApp(t *testing.T, mutate ...func(*config.Config)) *E2EApp {
	t.Helper()

	cfg := TestConfig()
	for _, m := range mutate {
		m(cfg)
	}

	application, err := app.NewApp().WithConfig(cfg).WithHandlers().Build()
	require.NoError(t, err)

	e := application.Server()
	require.NotNil(t, e)

	tracker := NewCoverageTracker()
	tracker.RegisterRoutes(e)
	e.Use(tracker.TrackingMiddleware())

	ts := httptest.NewServer(e)
	t.Cleanup(ts.Close)

	return &E2EApp{
		App:             application,
		TestServer:      ts,
		BaseURL:         ts.URL,
		Config:          cfg,
		CoverageTracker: tracker,
	}
}

// Client returns a client with its own cookie jar.
func (e *E2EApp) Client() *HTTPClient {
	return NewHTTPClient(e.BaseURL).WithCookieJar()
}
