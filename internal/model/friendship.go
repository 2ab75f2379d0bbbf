package model

import (
	"time"
)

// 好友关系状态
const (
	FriendshipPending  = "pending"  // UserID 向 FriendID 发出的请求
	FriendshipAccepted = "accepted" // 已是好友，只存一条且 UserID < FriendID
)

// Friendship 好友关系
type Friendship struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_friendship_pair;comment:用户ID"`
	FriendID  string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_friendship_pair;index;comment:好友ID"`
	Status    string    `gorm:"type:varchar(32);not null;default:'pending';comment:关系状态"`
	CreatedAt time.Time `gorm:"comment:创建时间"`
	UpdatedAt time.Time `gorm:"comment:更新时间"`
}

func (Friendship) TableName() string { return "friendship" }
