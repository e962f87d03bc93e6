package entity

import "time"

// 审计动作
const (
	AuditActionLogin          = "login"
	AuditActionCreateUser     = "create_user"
	AuditActionCreateForm     = "create_form"
	AuditActionUpdateForm     = "update_form"
	AuditActionDeleteForm     = "delete_form"
	AuditActionCreateTemplate = "create_template"
)

// AuditLog 审计日志
type AuditLog struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Action    string    `json:"action" gorm:"size:50;not null;index"`
	UserID    string    `json:"user_id" gorm:"size:32;index"`
	Subject   string    `json:"subject" gorm:"size:128"` // 登录用户名、新建用户名或 "Form N"
	Timestamp time.Time `json:"timestamp" gorm:"not null;index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// ErrorLog 错误日志
type ErrorLog struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	Timestamp time.Time `json:"timestamp" gorm:"not null"`
}

func (ErrorLog) TableName() string {
	return "error_logs"
}
