package templates

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type formData struct {
	AppName    string
	CodeLength int
	SendPath   string
	VerifyPath string
	Roles      []string
	Purposes   []string
}

func testData() formData {
	return formData{
		AppName:    "codeauth",
		CodeLength: 6,
		SendPath:   "/auth/send-code",
		VerifyPath: "/auth/verify-code",
		Roles:      []string{"customer", "admin"},
		Purposes:   []string{"signin", "signup"},
	}
}

func render(t *testing.T, svc *Service, name string, data any) string {
	t.Helper()
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	var buf bytes.Buffer
	require.NoError(t, svc.Renderer().Render(&buf, name, data, c))
	return buf.String()
}

func TestLoadTemplates_Embedded(t *testing.T) {
	svc := New("", nil)

	require.NoError(t, svc.LoadTemplates())

	out := render(t, svc, "debug_form.html", testData())
	assert.Contains(t, out, `action="/auth/send-code"`)
	assert.Contains(t, out, `action="/auth/verify-code"`)
	assert.Contains(t, out, "<option>customer</option>")
	assert.Contains(t, out, "<option>signup</option>")
	assert.Contains(t, out, "6-digit code")
}

func TestRenderer_LoadsLazily(t *testing.T) {
	svc := New("", nil)

	out := render(t, svc, "debug_form.html", testData())

	assert.Contains(t, out, "Email sign-in")
}

func TestLoadTemplates_Overrides(t *testing.T) {
	dir := t.TempDir()
	page := `custom {{.AppName}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "debug_form.html"), []byte(page), 0o644))

	svc := New(dir, nil)
	require.NoError(t, svc.LoadTemplates())

	assert.Equal(t, "custom codeauth", render(t, svc, "debug_form.html", testData()))
}

func TestLoadTemplates_MissingDir(t *testing.T) {
	svc := New(filepath.Join(t.TempDir(), "missing"), nil)

	err := svc.LoadTemplates()

	assert.ErrorContains(t, err, "template directory")
}

func TestRenderer_UnknownTemplate(t *testing.T) {
	svc := New("", nil)
	require.NoError(t, svc.LoadTemplates())

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	var buf bytes.Buffer

	assert.Error(t, svc.Renderer().Render(&buf, "missing.html", nil, c))
}
