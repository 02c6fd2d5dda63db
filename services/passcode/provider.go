package passcode

import (
	"errors"
	"fmt"

	"github.com/tech-arch1tect/codeauth/config"
	"github.com/tech-arch1tect/codeauth/services/logging"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type StoreParams struct {
	fx.In

	Config *config.Config
	DB     *gorm.DB `optional:"true"`
	Logger *logging.Service
}

func ProvideCodeStore(p StoreParams) (CodeStore, error) {
	switch p.Config.Passcode.Store {
	case "", "database":
		if p.DB == nil {
			return nil, errors.New("passcode database store requires the database module")
		}
		return NewGormStore(p.DB, p.Logger), nil
	case "memory":
		if !p.Config.Passcode.DevMode {
			return nil, errors.New("the memory passcode store is only available in dev mode")
		}
		if p.Logger != nil {
			p.Logger.Warn("using in-memory passcode store; codes are lost on restart")
		}
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported passcode store: %s", p.Config.Passcode.Store)
	}
}

func ProvideHasher(cfg *config.Config) *Hasher {
	return NewHasher(cfg.Passcode.BcryptCost)
}

func ProvideAdminPolicy(cfg *config.Config) *AdminPolicy {
	return NewAdminPolicy(cfg.Passcode.AdminAllowedEmails)
}

func ProvideIssuanceService(cfg *config.Config, store CodeStore, notifier Notifier, hasher *Hasher, policy *AdminPolicy, logger *logging.Service) *IssuanceService {
	return NewIssuanceService(store, notifier, NewGenerator(), hasher, policy, IssuanceOptions{
		TTL:              cfg.Passcode.TTL,
		OperationTimeout: cfg.Passcode.OperationTimeout,
		DevMode:          cfg.Passcode.DevMode,
	}, logger)
}

func ProvideVerificationService(cfg *config.Config, store CodeStore, sessions SessionIssuer, hasher *Hasher, policy *AdminPolicy, logger *logging.Service) *VerificationService {
	return NewVerificationService(store, sessions, hasher, policy, VerificationOptions{
		MaxAttempts:      cfg.Passcode.MaxAttempts,
		OperationTimeout: cfg.Passcode.OperationTimeout,
	}, logger)
}

// Module expects a Notifier and a SessionIssuer to be provided elsewhere.
var Module = fx.Options(
	fx.Provide(
		ProvideCodeStore,
		ProvideHasher,
		ProvideAdminPolicy,
		ProvideIssuanceService,
		ProvideVerificationService,
	),
)
