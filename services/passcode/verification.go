package passcode

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tech-arch1tect/codeauth/services/logging"
	"go.uber.org/zap"
)

type VerificationOptions struct {
	MaxAttempts      int
	OperationTimeout time.Duration
}

type VerificationService struct {
	store    CodeStore
	sessions SessionIssuer
	hasher   *Hasher
	policy   *AdminPolicy
	opts     VerificationOptions
	logger   *logging.Service
	now      func() time.Time
}

func NewVerificationService(store CodeStore, sessions SessionIssuer, hasher *Hasher, policy *AdminPolicy, opts VerificationOptions, logger *logging.Service) *VerificationService {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	return &VerificationService{
		store:    store,
		sessions: sessions,
		hasher:   hasher,
		policy:   policy,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *VerificationService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *VerificationService) MaxAttempts() int {
	return s.opts.MaxAttempts
}

func (s *VerificationService) Verify(ctx context.Context, req VerifyRequest) (*VerifyResult, error) {
	in, err := req.validate()
	if err != nil {
		if s.logger != nil {
			s.logger.Debug("rejected code verification request", zap.Error(err))
		}
		return nil, err
	}

	if !s.policy.Allows(in.identity, in.role) {
		if s.logger != nil {
			s.logger.Warn("admin verification attempted by identity outside allow-list",
				zap.String("identity", in.identity))
		}
		return nil, ErrForbidden
	}

	if s.opts.OperationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.OperationTimeout)
		defer cancel()
	}

	records, err := s.store.FindActive(ctx, in.identity, in.role, PurposeSignIn, PurposeSignUp)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if len(records) == 0 {
		if s.logger != nil {
			s.logger.Info("no active login code",
				zap.String("identity", in.identity),
				zap.String("role", string(in.role)))
		}
		return nil, ErrCodeNotFound
	}
	record := records[0]

	now := s.now()
	if record.IsExpired(now) {
		if err := s.store.Update(ctx, record.ID, MarkUsed()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		if s.logger != nil {
			s.logger.Info("login code expired", zap.Uint("record_id", record.ID))
		}
		return nil, ErrCodeExpired
	}

	if record.Attempts >= s.opts.MaxAttempts {
		if err := s.store.Update(ctx, record.ID, MarkUsed()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		if s.logger != nil {
			s.logger.Warn("login code attempts exhausted", zap.Uint("record_id", record.ID))
		}
		return nil, ErrTooManyAttempts
	}

	if !s.hasher.Verify(in.code, record.CodeHash) {
		return nil, s.recordFailure(ctx, record)
	}

	if err := s.store.Update(ctx, record.ID, MarkUsed().Expect(record.Attempts)); err != nil {
		return nil, s.writeError(err, record.ID)
	}

	token, err := s.sessions.IssueSession(ctx, in.identity, in.role, now)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to issue session after verification",
				zap.Uint("record_id", record.ID),
				zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %w", ErrSessionIssue, err)
	}

	if s.logger != nil {
		s.logger.Info("login code verified",
			zap.Uint("record_id", record.ID),
			zap.String("identity", in.identity),
			zap.String("role", string(in.role)))
	}

	return &VerifyResult{
		SessionToken: token,
		Identity:     in.identity,
		Role:         in.role,
		IssuedAt:     now,
	}, nil
}

// recordFailure counts a wrong guess. The guess that reaches the cap also
// retires the record.
func (s *VerificationService) recordFailure(ctx context.Context, record CodeRecord) error {
	attempts := record.Attempts + 1
	update := SetAttempts(attempts).Expect(record.Attempts)
	exhausted := attempts >= s.opts.MaxAttempts
	if exhausted {
		used := true
		update.Used = &used
	}

	if err := s.store.Update(ctx, record.ID, update); err != nil {
		return s.writeError(err, record.ID)
	}

	if s.logger != nil {
		s.logger.Info("incorrect login code",
			zap.Uint("record_id", record.ID),
			zap.Int("attempts", attempts),
			zap.Int("max_attempts", s.opts.MaxAttempts))
	}

	if exhausted {
		return ErrTooManyAttempts
	}
	return ErrCodeIncorrect
}

func (s *VerificationService) writeError(err error, id uint) error {
	if errors.Is(err, ErrStaleRecord) {
		if s.logger != nil {
			s.logger.Warn("login code changed during verification", zap.Uint("record_id", id))
		}
		return ErrConflict
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
