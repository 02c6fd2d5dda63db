package passcode

import (
	"context"
	"fmt"
	"time"

	"github.com/tech-arch1tect/codeauth/services/logging"
	"go.uber.org/zap"
)

const (
	DefaultTTL         = 10 * time.Minute
	DefaultMaxAttempts = 5
)

type IssuanceOptions struct {
	TTL              time.Duration
	OperationTimeout time.Duration
	// DevMode returns the plaintext code in IssueResult. Never enable in production.
	DevMode bool
}

type IssuanceService struct {
	store     CodeStore
	notifier  Notifier
	generator *Generator
	hasher    *Hasher
	policy    *AdminPolicy
	opts      IssuanceOptions
	logger    *logging.Service
	now       func() time.Time
}

func NewIssuanceService(store CodeStore, notifier Notifier, generator *Generator, hasher *Hasher, policy *AdminPolicy, opts IssuanceOptions, logger *logging.Service) *IssuanceService {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	return &IssuanceService{
		store:     store,
		notifier:  notifier,
		generator: generator,
		hasher:    hasher,
		policy:    policy,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// SetClock replaces the time source.
func (s *IssuanceService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *IssuanceService) DevMode() bool {
	return s.opts.DevMode
}

func (s *IssuanceService) Issue(ctx context.Context, req IssueRequest) (*IssueResult, error) {
	in, err := req.validate()
	if err != nil {
		if s.logger != nil {
			s.logger.Debug("rejected code issuance request", zap.Error(err))
		}
		return nil, err
	}

	if !s.policy.Allows(in.identity, in.role) {
		if s.logger != nil {
			s.logger.Warn("admin code requested by identity outside allow-list",
				zap.String("identity", in.identity))
		}
		return nil, ErrForbidden
	}

	if s.opts.OperationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.OperationTimeout)
		defer cancel()
	}

	s.invalidateActive(ctx, in)

	code, err := s.generator.Generate()
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to generate login code", zap.Error(err))
		}
		return nil, err
	}

	hash, err := s.hasher.Hash(code)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to hash login code", zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %w", ErrCodeGeneration, err)
	}

	ttl := s.opts.TTL
	if in.ttl > 0 {
		ttl = in.ttl
	}
	now := s.now()
	record := &CodeRecord{
		Identity:        in.identity,
		Role:            in.role,
		Purpose:         in.purpose,
		CodeHash:        hash,
		Attempts:        0,
		Used:            false,
		OriginIP:        in.origin.IP,
		OriginUserAgent: in.origin.UserAgent,
		OriginDevice:    in.origin.Device,
		CreatedAt:       now,
		ExpiresAt:       now.Add(ttl),
	}

	id, err := s.store.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	err = s.notifier.Send(ctx, Notification{
		Identity:  in.identity,
		Code:      code,
		Role:      in.role,
		Purpose:   in.purpose,
		ExpiresAt: record.ExpiresAt,
		TTL:       ttl,
	})
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to dispatch login code",
				zap.Uint("record_id", id),
				zap.String("identity", in.identity),
				zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %w", ErrDispatchFailed, err)
	}

	if s.logger != nil {
		s.logger.Info("login code issued",
			zap.Uint("record_id", id),
			zap.String("identity", in.identity),
			zap.String("role", string(in.role)),
			zap.String("purpose", string(in.purpose)),
			zap.Time("expires_at", record.ExpiresAt))
	}

	result := &IssueResult{Issued: true, ExpiresAt: record.ExpiresAt}
	if s.opts.DevMode {
		result.Code = code
	}
	return result, nil
}

// invalidateActive supersedes every active record for the tuple. Failures are
// logged only; an unreachable stale code still expires on its own.
func (s *IssuanceService) invalidateActive(ctx context.Context, in issueInput) {
	records, err := s.store.FindActive(ctx, in.identity, in.role, in.purpose)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("failed to look up previous login codes",
				zap.String("identity", in.identity),
				zap.Error(err))
		}
		return
	}

	for _, r := range records {
		if err := s.store.Update(ctx, r.ID, MarkUsed()); err != nil {
			if s.logger != nil {
				s.logger.Warn("failed to invalidate previous login code",
					zap.Uint("record_id", r.ID),
					zap.Error(err))
			}
			continue
		}
		if s.logger != nil {
			s.logger.Debug("previous login code superseded", zap.Uint("record_id", r.ID))
		}
	}
}
