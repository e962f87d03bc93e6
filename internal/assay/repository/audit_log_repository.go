package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/goldassay/internal/assay/entity"
	"gorm.io/gorm"
)

// AuditLogRepository 审计日志仓库
type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Create 创建审计日志
func (r *AuditLogRepository) Create(ctx context.Context, log *entity.AuditLog) error {
	if log.ID == "" {
		log.ID = newID()
	}
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now()
	}
	return r.db.WithContext(ctx).Create(log).Error
}

// List 审计日志，最新在前
func (r *AuditLogRepository) List(ctx context.Context, page, pageSize int) ([]entity.AuditLog, int64, error) {
	var items []entity.AuditLog
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.AuditLog{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("timestamp DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error
	return items, total, err
}

// LogAction 便捷记录审计日志
func (r *AuditLogRepository) LogAction(ctx context.Context, action, userID, subject string) error {
	return r.Create(ctx, &entity.AuditLog{
		Action:    action,
		UserID:    userID,
		Subject:   subject,
		Timestamp: time.Now(),
	})
}
