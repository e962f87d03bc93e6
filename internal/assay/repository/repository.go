package repository

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 错误定义
var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 仓库集合
type Repositories struct {
	User     *UserRepository
	Form     *FormRepository
	Template *TemplateRepository
	AuditLog *AuditLogRepository
	ErrorLog *ErrorLogRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:     NewUserRepository(db),
		Form:     NewFormRepository(db),
		Template: NewTemplateRepository(db),
		AuditLog: NewAuditLogRepository(db),
		ErrorLog: NewErrorLogRepository(db),
	}
}

func newID() string {
	return uuid.New().String()[:32]
}
