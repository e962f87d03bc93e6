package entity

import "time"

// Template 表单模板，只保存物品、重量和纯度，不含客户信息
type Template struct {
	ID          string   `json:"id" gorm:"primaryKey;size:32"`
	ItemName    string   `json:"item_name" gorm:"size:128;not null"`
	GrossWeight *float64 `json:"gross_weight"`
	NetWeight   *float64 `json:"net_weight"`
	Gold        *float64 `json:"gold"`
	Karat       *float64 `json:"karat"`
	UserID      string   `json:"user_id" gorm:"size:32;not null;index"`

	CreatedAt time.Time `json:"created_at"`
}

func (Template) TableName() string {
	return "templates"
}
