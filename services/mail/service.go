package mail

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	htmlTemplate "html/template"
	"os"
	"path/filepath"
	textTemplate "text/template"
	"time"

	"github.com/tech-arch1tect/codeauth/config"
	"github.com/tech-arch1tect/codeauth/services/logging"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

//go:embed templates/*.html templates/*.txt
var defaultTemplates embed.FS

// Client is the part of *mail.Client the service depends on.
type Client interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type Service struct {
	config        *config.MailConfig
	client        Client
	htmlTemplates *htmlTemplate.Template
	textTemplates *textTemplate.Template
	logger        *logging.Service
}

type TemplateData map[string]any

func NewService(cfg *config.MailConfig, logger *logging.Service) (*Service, error) {
	if logger != nil {
		logger.Info("initializing mail service",
			zap.String("host", cfg.Host),
			zap.Int("port", cfg.Port),
			zap.String("encryption", cfg.Encryption),
			zap.String("from_address", cfg.FromAddress))
	}

	client, err := newClient(cfg)
	if err != nil {
		if logger != nil {
			logger.Error("failed to create mail client",
				zap.Error(err),
				zap.String("host", cfg.Host),
				zap.Int("port", cfg.Port))
		}
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	return NewServiceWithClient(cfg, logger, client)
}

// NewServiceWithClient builds a service around an existing client; tests pass
// a mock here.
func NewServiceWithClient(cfg *config.MailConfig, logger *logging.Service, client Client) (*Service, error) {
	if cfg.FromAddress == "" {
		if logger != nil {
			logger.Error("mail service initialization failed: FROM_ADDRESS is required")
		}
		return nil, errors.New("MAIL_FROM_ADDRESS is required")
	}
	if client == nil {
		return nil, errors.New("mail client is required")
	}

	service := &Service{
		config: cfg,
		client: client,
		logger: logger,
	}

	if err := service.loadTemplates(); err != nil {
		if logger != nil {
			logger.Error("failed to load mail templates", zap.Error(err))
		}
		return nil, fmt.Errorf("failed to load mail templates: %w", err)
	}

	if logger != nil {
		logger.Info("mail service initialized successfully")
	}
	return service, nil
}

func newClient(cfg *config.MailConfig) (*mail.Client, error) {
	clientOpts := []mail.Option{
		mail.WithPort(cfg.Port),
	}

	switch cfg.Encryption {
	case "ssl":
		clientOpts = append(clientOpts, mail.WithSSL())
	case "none":
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.NoTLS))
	default:
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}

	if cfg.Username != "" {
		clientOpts = append(clientOpts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username))
	}
	if cfg.Password != "" {
		clientOpts = append(clientOpts, mail.WithPassword(cfg.Password))
	}

	return mail.NewClient(cfg.Host, clientOpts...)
}

// loadTemplates parses the embedded defaults, then lets files in
// TemplatesDir replace them by name.
func (s *Service) loadTemplates() error {
	var err error
	s.htmlTemplates, err = htmlTemplate.ParseFS(defaultTemplates, "templates/*.html")
	if err != nil {
		return fmt.Errorf("failed to parse default HTML templates: %w", err)
	}
	s.textTemplates, err = textTemplate.ParseFS(defaultTemplates, "templates/*.txt")
	if err != nil {
		return fmt.Errorf("failed to parse default text templates: %w", err)
	}

	if s.config.TemplatesDir == "" {
		if s.logger != nil {
			s.logger.Debug("no template directory configured, using built-in templates")
		}
		return nil
	}

	if _, err := os.Stat(s.config.TemplatesDir); err != nil {
		return fmt.Errorf("templates directory: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("loading mail templates", zap.String("templates_dir", s.config.TemplatesDir))
	}

	htmlPattern := filepath.Join(s.config.TemplatesDir, "*.html")
	if matches, _ := filepath.Glob(htmlPattern); len(matches) > 0 {
		if s.htmlTemplates, err = s.htmlTemplates.ParseFiles(matches...); err != nil {
			return fmt.Errorf("failed to parse HTML templates: %w", err)
		}
	}

	textPattern := filepath.Join(s.config.TemplatesDir, "*.txt")
	if matches, _ := filepath.Glob(textPattern); len(matches) > 0 {
		if s.textTemplates, err = s.textTemplates.ParseFiles(matches...); err != nil {
			return fmt.Errorf("failed to parse text templates: %w", err)
		}
	}

	if s.logger != nil {
		s.logger.Info("mail templates loaded successfully",
			zap.Int("html_templates", len(s.htmlTemplates.Templates())),
			zap.Int("text_templates", len(s.textTemplates.Templates())))
	}

	return nil
}

func (s *Service) NewMessage() (*mail.Msg, error) {
	message := mail.NewMsg()

	fromAddr := s.config.FromAddress
	if s.config.FromName != "" {
		fromAddr = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromAddress)
	}

	if err := message.From(fromAddr); err != nil {
		return nil, fmt.Errorf("failed to set FROM address: %w", err)
	}

	return message, nil
}

func (s *Service) Send(ctx context.Context, message *mail.Msg) error {
	if s.logger != nil {
		s.logger.Debug("sending email message")
	}

	startTime := time.Now()
	err := s.client.DialAndSendWithContext(ctx, message)
	duration := time.Since(startTime)

	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to send email",
				zap.Error(err),
				zap.Duration("attempt_duration", duration))
		}
		return err
	}

	if s.logger != nil {
		s.logger.Info("email sent successfully",
			zap.Duration("send_duration", duration))
	}
	return nil
}

func (s *Service) SendTemplate(ctx context.Context, templateName string, to []string, subject string, data TemplateData) error {
	if s.logger != nil {
		s.logger.Debug("sending template email",
			zap.String("template", templateName),
			zap.Int("recipients", len(to)))
	}

	message, err := s.NewMessage()
	if err != nil {
		return err
	}

	if err := message.To(to...); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to set TO addresses", zap.Error(err))
		}
		return fmt.Errorf("failed to set TO addresses: %w", err)
	}

	message.Subject(subject)

	if err := s.renderTemplate(templateName, data, message); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to render template",
				zap.Error(err),
				zap.String("template", templateName))
		}
		return fmt.Errorf("failed to render template: %w", err)
	}

	return s.Send(ctx, message)
}

func (s *Service) renderTemplate(templateName string, data TemplateData, message *mail.Msg) error {
	var hasHTML bool

	if tmpl := s.htmlTemplates.Lookup(templateName + ".html"); tmpl != nil {
		var htmlBuf bytes.Buffer
		if err := tmpl.Execute(&htmlBuf, data); err != nil {
			return fmt.Errorf("failed to execute HTML template: %w", err)
		}
		message.SetBodyString(mail.TypeTextHTML, htmlBuf.String())
		hasHTML = true
	}

	tmpl := s.textTemplates.Lookup(templateName + ".txt")
	if tmpl == nil {
		if !hasHTML {
			return fmt.Errorf("template '%s' not found", templateName)
		}
		return nil
	}

	var textBuf bytes.Buffer
	if err := tmpl.Execute(&textBuf, data); err != nil {
		return fmt.Errorf("failed to execute text template: %w", err)
	}
	if hasHTML {
		message.AddAlternativeString(mail.TypeTextPlain, textBuf.String())
	} else {
		message.SetBodyString(mail.TypeTextPlain, textBuf.String())
	}

	return nil
}
