package jwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tech-arch1tect/codeauth/config"
	"github.com/tech-arch1tect/codeauth/services/logging"
	"github.com/tech-arch1tect/codeauth/services/passcode"
	"go.uber.org/zap"
)

var (
	ErrInvalidToken     = errors.New("invalid JWT token")
	ErrExpiredToken     = errors.New("JWT token has expired")
	ErrMalformedToken   = errors.New("malformed JWT token")
	ErrInvalidSignature = errors.New("invalid JWT token signature")
)

// Claims identify a signed-in identity and the role it verified for. The
// subject carries the identity as well.
type Claims struct {
	Email string        `json:"email"`
	Role  passcode.Role `json:"role"`
	jwt.RegisteredClaims
}

type Service struct {
	config *config.JWTConfig
	logger *logging.Service
}

func NewService(cfg *config.JWTConfig, logger *logging.Service) *Service {
	return &Service{
		config: cfg,
		logger: logger,
	}
}

func (s *Service) Expiry() time.Duration {
	return s.config.Expiry
}

func (s *Service) ExpirySeconds() int {
	return int(s.config.Expiry.Seconds())
}

// IssueSession signs a session token valid from issuedAt for the configured
// expiry.
func (s *Service) IssueSession(ctx context.Context, identity string, role passcode.Role, issuedAt time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	jti := uuid.New().String()
	claims := Claims{
		Email: identity,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    s.config.Issuer,
			Subject:   identity,
			Audience:  []string{s.config.Issuer},
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.Expiry)),
			NotBefore: jwt.NewNumericDate(issuedAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to sign session token", zap.Error(err))
		}
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("session token issued",
			zap.String("jti", jti),
			zap.String("role", string(role)))
	}

	return tokenString, nil
}

func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() == "none" {
			return nil, errors.New("'none' algorithm is not allowed")
		}

		if token.Method.Alg() != "HS256" {
			return nil, fmt.Errorf("unexpected algorithm: expected HS256, got %s", token.Method.Alg())
		}

		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid algorithm family: %v", token.Header["alg"])
		}

		return []byte(s.config.SecretKey), nil
	}, jwt.WithIssuer(s.config.Issuer))

	if err != nil {
		if s.logger != nil {
			s.logger.Warn("session token validation failed", zap.Error(err))
		}

		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformedToken
		case errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Email == "" {
		return nil, ErrInvalidToken
	}
	if _, err := passcode.ParseRole(string(claims.Role)); err != nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
