package config

import (
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig      `envPrefix:"APP_"`
	Server   ServerConfig   `envPrefix:"SERVER_"`
	Log      LogConfig      `envPrefix:"LOG_"`
	Database DatabaseConfig `envPrefix:"DATABASE_"`
	Mail     MailConfig     `envPrefix:"MAIL_"`
	JWT      JWTConfig      `envPrefix:"JWT_"`
	Session  SessionConfig  `envPrefix:"SESSION_"`
	Passcode PasscodeConfig `envPrefix:"PASSCODE_"`
}

type AppConfig struct {
	Name string `env:"NAME" envDefault:"codeauth"`
	URL  string `env:"URL" envDefault:"http://localhost:3000"`
}

type ServerConfig struct {
	Port           string   `env:"PORT" envDefault:"3000"`
	Host           string   `env:"HOST" envDefault:"localhost"`
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
	TemplatesDir   string   `env:"TEMPLATES_DIR"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"codeauth.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type MailConfig struct {
	Enabled      bool   `env:"ENABLED" envDefault:"true"`
	Host         string `env:"HOST" envDefault:"localhost"`
	Port         int    `env:"PORT" envDefault:"587"`
	Username     string `env:"USERNAME"`
	Password     string `env:"PASSWORD"`
	Encryption   string `env:"ENCRYPTION" envDefault:"starttls"`
	FromAddress  string `env:"FROM_ADDRESS" envDefault:"no-reply@localhost"`
	FromName     string `env:"FROM_NAME" envDefault:"No Reply"`
	TemplatesDir string `env:"TEMPLATES_DIR"`
}

type JWTConfig struct {
	SecretKey string        `env:"SECRET_KEY"`
	Algorithm string        `env:"ALGORITHM" envDefault:"HS256"`
	Expiry    time.Duration `env:"EXPIRY" envDefault:"720h"`
	Issuer    string        `env:"ISSUER" envDefault:"codeauth"`
}

type SessionConfig struct {
	CookieName     string `env:"COOKIE_NAME" envDefault:"session"`
	CookieDomain   string `env:"COOKIE_DOMAIN"`
	CookieSecure   bool   `env:"COOKIE_SECURE" envDefault:"true"`
	CookieSameSite string `env:"COOKIE_SAME_SITE" envDefault:"lax"`
}

// PasscodeConfig controls issuance and verification of one-time login codes.
// DevMode exposes plaintext codes in API responses and enables the debug routes;
// it must stay off in production.
type PasscodeConfig struct {
	TTL                time.Duration `env:"TTL" envDefault:"10m"`
	MaxAttempts        int           `env:"MAX_ATTEMPTS" envDefault:"5"`
	BcryptCost         int           `env:"BCRYPT_COST" envDefault:"10"`
	AdminAllowedEmails []string      `env:"ADMIN_ALLOWED_EMAILS" envSeparator:","`
	OperationTimeout   time.Duration `env:"OPERATION_TIMEOUT" envDefault:"15s"`
	Store              string        `env:"STORE" envDefault:"database"`
	DevMode            bool          `env:"DEV_MODE" envDefault:"false"`
}

func LoadConfig(cfg any) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	return env.Parse(cfg)
}

func (c *Config) Validate() error {
	var errs []error

	if err := c.JWT.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Passcode.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Database.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Mail.Enabled {
		if err := c.Mail.Validate(); err != nil {
			errs = append(errs, err)
		}
	} else if !c.Passcode.DevMode {
		errs = append(errs, errors.New("mail can only be disabled when PASSCODE_DEV_MODE is enabled"))
	}
	if err := c.Session.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (j *JWTConfig) Validate() error {
	if len(j.SecretKey) < 32 {
		return errors.New("JWT secret key must be at least 32 characters long")
	}
	if j.Algorithm != "HS256" {
		return fmt.Errorf("unsupported JWT algorithm: %s (supported: HS256)", j.Algorithm)
	}
	if j.Expiry <= 0 {
		return errors.New("JWT expiry must be positive")
	}
	return nil
}

func (p *PasscodeConfig) Validate() error {
	if p.TTL <= 0 {
		return errors.New("passcode TTL must be positive")
	}
	if p.MaxAttempts <= 0 {
		return errors.New("passcode max attempts must be positive")
	}
	if p.OperationTimeout <= 0 {
		return errors.New("passcode operation timeout must be positive")
	}
	switch p.Store {
	case "database", "memory":
	default:
		return fmt.Errorf("unsupported passcode store: %s (supported: database, memory)", p.Store)
	}
	if p.Store == "memory" && !p.DevMode {
		return errors.New("the memory passcode store is only available in dev mode")
	}
	for _, email := range p.AdminAllowedEmails {
		entry := strings.TrimSpace(email)
		if entry == "" {
			continue
		}
		addr, err := mail.ParseAddress(entry)
		if err != nil {
			return fmt.Errorf("invalid admin allow-list entry %q: %w", email, err)
		}
		if addr.Address != entry {
			return fmt.Errorf("invalid admin allow-list entry %q: must be a bare address", email)
		}
	}
	return nil
}

func (d *DatabaseConfig) Validate() error {
	switch d.Driver {
	case "sqlite", "postgres", "postgresql", "mysql":
	default:
		return fmt.Errorf("unsupported database driver: %s (supported: sqlite, postgres, mysql)", d.Driver)
	}
	if d.DSN == "" {
		return errors.New("DATABASE_DSN is required")
	}
	return nil
}

func (m *MailConfig) Validate() error {
	if m.FromAddress == "" {
		return errors.New("MAIL_FROM_ADDRESS is required")
	}
	if m.Host == "" {
		return errors.New("MAIL_HOST is required")
	}
	switch m.Encryption {
	case "tls", "starttls", "ssl", "none":
	default:
		return fmt.Errorf("unsupported mail encryption: %s (supported: tls, starttls, ssl, none)", m.Encryption)
	}
	return nil
}

func (s *SessionConfig) Validate() error {
	if s.CookieName == "" {
		return errors.New("SESSION_COOKIE_NAME is required")
	}
	switch strings.ToLower(s.CookieSameSite) {
	case "lax", "strict", "none":
	default:
		return fmt.Errorf("unsupported cookie SameSite mode: %s (supported: lax, strict, none)", s.CookieSameSite)
	}
	return nil
}
