package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bitfantasy/goldassay/internal/assay/entity"
	"gorm.io/gorm"
)

// formUpdateColumns 更新时写入的列；id、user_id、created_at 永不改写
var formUpdateColumns = []string{
	"form_number", "date", "time", "customer_name", "item_name", "mobile_number",
	"gross_weight", "net_weight", "gold", "karat", "photo", "updated_at",
}

// FormRepository 表单仓库
type FormRepository struct {
	db *gorm.DB
}

// NewFormRepository 创建表单仓库
func NewFormRepository(db *gorm.DB) *FormRepository {
	return &FormRepository{db: db}
}

// NextFormNumber 用户最大表单号 + 1，没有表单时为 1
func (r *FormRepository) NextFormNumber(ctx context.Context, userID string) (int, error) {
	return nextFormNumber(r.db.WithContext(ctx), userID)
}

func nextFormNumber(db *gorm.DB, userID string) (int, error) {
	var max int
	err := db.Model(&entity.Form{}).
		Where("user_id = ?", userID).
		Select("COALESCE(MAX(form_number), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// ListByUser 用户的表单，按表单号倒序
func (r *FormRepository) ListByUser(ctx context.Context, userID string) ([]entity.Form, error) {
	var forms []entity.Form
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("form_number DESC").
		Find(&forms).Error
	return forms, err
}

// ListWithUsers 所有用户的表单（管理端）
func (r *FormRepository) ListWithUsers(ctx context.Context) ([]entity.FormWithUser, error) {
	var rows []entity.FormWithUser
	err := r.db.WithContext(ctx).
		Table("forms").
		Select("forms.*, users.username").
		Joins("JOIN users ON users.id = forms.user_id").
		Order("forms.form_number DESC").
		Scan(&rows).Error
	return rows, err
}

// FindByID 根据ID查找
func (r *FormRepository) FindByID(ctx context.Context, id string) (*entity.Form, error) {
	var form entity.Form
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&form).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &form, nil
}

// Create 创建表单
func (r *FormRepository) Create(ctx context.Context, form *entity.Form) error {
	if form.ID == "" {
		form.ID = newID()
	}
	return r.db.WithContext(ctx).Create(form).Error
}

// CreateNumbered 新建表单；表单号不大于该用户现有最大号时改用下一个号并回写 form.FormNumber。
// 并发插入撞上 idx_forms_user_number 时返回数据库错误
func (r *FormRepository) CreateNumbered(ctx context.Context, form *entity.Form) error {
	if form.ID == "" {
		form.ID = newID()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next, err := nextFormNumber(tx, form.UserID)
		if err != nil {
			return err
		}
		if form.FormNumber < next {
			form.FormNumber = next
		}
		return tx.Create(form).Error
	})
}

// Update 原位更新，保持 id 和所属用户不变
func (r *FormRepository) Update(ctx context.Context, form *entity.Form) error {
	form.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).
		Model(form).
		Where("user_id = ?", form.UserID).
		Select(formUpdateColumns).
		Updates(form)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Upsert 无ID时新建，否则更新
func (r *FormRepository) Upsert(ctx context.Context, form *entity.Form) (string, error) {
	if form.ID == "" {
		if err := r.CreateNumbered(ctx, form); err != nil {
			return "", err
		}
		return form.ID, nil
	}
	if err := r.Update(ctx, form); err != nil {
		return "", err
	}
	return form.ID, nil
}

// Delete 删除表单
func (r *FormRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Form{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
