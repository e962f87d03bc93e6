package entity

import "time"

// Form 检测表单（证书记录）
// NetWeight 始终等于 GrossWeight，Karat 始终由 Gold 推导，两列都会落库，证书版式分别读取。
type Form struct {
	ID           string   `json:"id" gorm:"primaryKey;size:32"`
	FormNumber   int      `json:"form_number" gorm:"not null;uniqueIndex:idx_forms_user_number"`
	Date         string   `json:"date" gorm:"size:10"`
	Time         string   `json:"time" gorm:"size:8"`
	CustomerName string   `json:"customer_name" gorm:"size:128"`
	ItemName     string   `json:"item_name" gorm:"size:128"`
	MobileNumber string   `json:"mobile_number" gorm:"size:10"`
	GrossWeight  *float64 `json:"gross_weight"`
	NetWeight    *float64 `json:"net_weight"`
	Gold         *float64 `json:"gold"`
	Karat        *float64 `json:"karat"`
	Photo        string   `json:"photo" gorm:"type:text"`
	UserID       string   `json:"user_id" gorm:"size:32;not null;uniqueIndex:idx_forms_user_number"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Form) TableName() string {
	return "forms"
}

// IsDraft 缺少金含量或毛重的表单只能作为草稿存在
func (f *Form) IsDraft() bool {
	return f.Gold == nil || f.GrossWeight == nil
}

// FormWithUser 管理端列表行（表单 + 用户名）
type FormWithUser struct {
	Form
	Username string `json:"username"`
}
