package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/goldassay/internal/assay/entity"
	"gorm.io/gorm"
)

// ErrorLogRepository 错误日志仓库
type ErrorLogRepository struct {
	db *gorm.DB
}

func NewErrorLogRepository(db *gorm.DB) *ErrorLogRepository {
	return &ErrorLogRepository{db: db}
}

// Create 写入错误日志
func (r *ErrorLogRepository) Create(ctx context.Context, message string, at time.Time) error {
	return r.db.WithContext(ctx).Create(&entity.ErrorLog{
		ID:        newID(),
		Message:   message,
		Timestamp: at,
	}).Error
}

// Recent 最近的错误日志
func (r *ErrorLogRepository) Recent(ctx context.Context, limit int) ([]entity.ErrorLog, error) {
	var logs []entity.ErrorLog
	err := r.db.WithContext(ctx).Order("timestamp DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
