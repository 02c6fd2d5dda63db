package passcode

import (
	"context"
	"fmt"

	"github.com/tech-arch1tect/codeauth/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type GormStore struct {
	db     *gorm.DB
	logger *logging.Service
}

func NewGormStore(db *gorm.DB, logger *logging.Service) *GormStore {
	return &GormStore{db: db, logger: logger}
}

func (s *GormStore) Create(ctx context.Context, record *CodeRecord) (uint, error) {
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		if s.logger != nil {
			s.logger.Error("failed to create login code record",
				zap.String("identity", record.Identity),
				zap.String("role", string(record.Role)),
				zap.Error(err))
		}
		return 0, fmt.Errorf("failed to create login code: %w", err)
	}
	return record.ID, nil
}

func (s *GormStore) FindActive(ctx context.Context, identity string, role Role, purposes ...Purpose) ([]CodeRecord, error) {
	var records []CodeRecord

	query := s.db.WithContext(ctx).
		Where("identity = ? AND role = ? AND used = ?", identity, role, false)
	if len(purposes) > 0 {
		query = query.Where("purpose IN ?", purposes)
	}

	if err := query.Order("created_at DESC").Order("id DESC").Find(&records).Error; err != nil {
		if s.logger != nil {
			s.logger.Error("failed to query login codes",
				zap.String("identity", identity),
				zap.String("role", string(role)),
				zap.Error(err))
		}
		return nil, fmt.Errorf("failed to query login codes: %w", err)
	}

	return records, nil
}

func (s *GormStore) Update(ctx context.Context, id uint, update RecordUpdate) error {
	if update.empty() {
		return nil
	}

	values := map[string]any{}
	if update.Attempts != nil {
		values["attempts"] = *update.Attempts
	}
	if update.Used != nil {
		values["used"] = *update.Used
	}

	query := s.db.WithContext(ctx).Model(&CodeRecord{}).Where("id = ?", id)
	if update.IfAttempts != nil {
		query = query.Where("used = ? AND attempts = ?", false, *update.IfAttempts)
	}

	result := query.Updates(values)
	if result.Error != nil {
		if s.logger != nil {
			s.logger.Error("failed to update login code", zap.Uint("id", id), zap.Error(result.Error))
		}
		return fmt.Errorf("failed to update login code: %w", result.Error)
	}

	if update.IfAttempts != nil && result.RowsAffected == 0 {
		if s.logger != nil {
			s.logger.Warn("conditional login code update matched no rows",
				zap.Uint("id", id),
				zap.Int("expected_attempts", *update.IfAttempts))
		}
		return ErrStaleRecord
	}

	return nil
}
