package testutils

import (
	"time"

	"github.com/tech-arch1tect/codeauth/config"
	"golang.org/x/crypto/bcrypt"
)

const TestJWTSecret = "test-secret-key-that-is-at-least-32-chars"

func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name: "Test App",
			URL:  "http://localhost:8080",
		},
		Server: config.ServerConfig{
			Host: "localhost",
			Port: "0",
		},
		Log: config.LogConfig{
			Level:  "debug",
			Format: "console",
			Output: "stdout",
		},
		Database: config.DatabaseConfig{
			Driver:      "sqlite",
			DSN:         ":memory:",
			AutoMigrate: true,
		},
		Mail: config.MailConfig{
			Enabled:     true,
			Host:        "localhost",
			Port:        1025,
			Encryption:  "none",
			FromAddress: "no-reply@example.com",
			FromName:    "Test App",
		},
		JWT: config.JWTConfig{
			SecretKey: TestJWTSecret,
			Algorithm: "HS256",
			Expiry:    30 * 24 * time.Hour,
			Issuer:    "test-issuer",
		},
		Session: config.SessionConfig{
			CookieName:     "session",
			CookieSecure:   false,
			CookieSameSite: "lax",
		},
		Passcode: config.PasscodeConfig{
			TTL:              10 * time.Minute,
			MaxAttempts:      5,
			BcryptCost:       bcrypt.MinCost,
			OperationTimeout: 5 * time.Second,
			Store:            "database",
		},
	}
}

var TestIdentities = struct {
	Customer string
	Admin    string
	Outsider string
}{
	Customer: "a@x.com",
	Admin:    "boss@example.com",
	Outsider: "mallory@example.com",
}
