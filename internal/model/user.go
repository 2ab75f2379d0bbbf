package model

import (
	"time"
)

// User 用户模型
// 说明：密码仅存储哈希（PasswordHash），不存储明文
// Media 为九宫格照片墙，按JSON存储
type User struct {
	ID           string    `gorm:"type:varchar(64);primaryKey;comment:用户ID"`
	Username     string    `gorm:"type:varchar(32);not null;uniqueIndex;comment:用户名"`
	PasswordHash string    `gorm:"type:varchar(255);comment:密码哈希(种子用户为空)"`
	Name         string    `gorm:"type:varchar(64);comment:显示名"`
	Bio          string    `gorm:"type:text;comment:个人简介"`
	Avatar       string    `gorm:"type:varchar(255);comment:头像URL"`
	Media        []string  `gorm:"type:text;serializer:json;comment:照片墙"`
	CreatedAt    time.Time `gorm:"comment:创建时间"`
	UpdatedAt    time.Time `gorm:"comment:更新时间"`
}

// TableName 指定表名（因全局配置使用单数表名，这里与结构体名一致为 user）
func (User) TableName() string { return "user" }
