package repository

import (
	"context"

	"github.com/bitfantasy/goldassay/internal/assay/entity"
	"gorm.io/gorm"
)

// TemplateRepository 模板仓库
type TemplateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository 创建模板仓库
func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// ListByUser 用户的模板，按创建顺序
func (r *TemplateRepository) ListByUser(ctx context.Context, userID string) ([]entity.Template, error) {
	var templates []entity.Template
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&templates).Error
	return templates, err
}

// Create 创建模板
func (r *TemplateRepository) Create(ctx context.Context, tmpl *entity.Template) error {
	if tmpl.ID == "" {
		tmpl.ID = newID()
	}
	return r.db.WithContext(ctx).Create(tmpl).Error
}
