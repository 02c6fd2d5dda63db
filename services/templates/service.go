package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/codeauth/services/logging"
	"go.uber.org/zap"
)

//go:embed pages/*.html
var pages embed.FS

const Extension = ".html"

// Service renders the built-in HTML pages. Files in an override directory
// replace embedded pages of the same name.
type Service struct {
	dir       string
	logger    *logging.Service
	mu        sync.RWMutex
	templates *template.Template
}

func New(dir string, logger *logging.Service) *Service {
	return &Service{
		dir:    dir,
		logger: logger,
	}
}

func (s *Service) LoadTemplates() error {
	tmpl, err := template.ParseFS(pages, "pages/*"+Extension)
	if err != nil {
		return fmt.Errorf("failed to parse embedded pages: %w", err)
	}

	if s.dir != "" {
		if _, err := os.Stat(s.dir); err != nil {
			return fmt.Errorf("template directory %s: %w", s.dir, err)
		}
		overrides, err := filepath.Glob(filepath.Join(s.dir, "*"+Extension))
		if err != nil {
			return err
		}
		if len(overrides) > 0 {
			if tmpl, err = tmpl.ParseFiles(overrides...); err != nil {
				return fmt.Errorf("failed to parse page overrides: %w", err)
			}
		}
		if s.logger != nil {
			s.logger.Debug("loaded page overrides", zap.String("dir", s.dir), zap.Int("count", len(overrides)))
		}
	}

	s.mu.Lock()
	s.templates = tmpl
	s.mu.Unlock()
	return nil
}

func (s *Service) Renderer() *Renderer {
	return &Renderer{service: s}
}

type Renderer struct {
	service *Service
}

// Render implements echo.Renderer. Pages are loaded on first use when
// LoadTemplates has not run yet.
func (r *Renderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	r.service.mu.RLock()
	tmpl := r.service.templates
	r.service.mu.RUnlock()

	if tmpl == nil {
		if err := r.service.LoadTemplates(); err != nil {
			return err
		}
		r.service.mu.RLock()
		tmpl = r.service.templates
		r.service.mu.RUnlock()
	}

	return tmpl.ExecuteTemplate(w, name, data)
}
