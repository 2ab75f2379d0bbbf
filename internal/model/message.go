package model

import (
	"time"
)

// 会话类型
const (
	SessionDirect = 1 // 私聊
	SessionEvent  = 2 // 活动群聊
)

// Message 消息模型
// Seq 为内存中的消息ID，同一会话类型内唯一且递增
type Message struct {
	ID           uint      `gorm:"primaryKey"`
	SessionType  int       `gorm:"type:int;not null;default:1;uniqueIndex:idx_message_seq;comment:会话类型(1私聊,2活动群聊)"`
	Seq          uint64    `gorm:"not null;uniqueIndex:idx_message_seq;comment:会话内消息ID"`
	Conversation string    `gorm:"type:varchar(160);not null;index;comment:会话key"`
	SenderID     string    `gorm:"type:varchar(64);not null;index;comment:发送者ID"`
	SenderName   string    `gorm:"type:varchar(64);comment:发送时的显示名"`
	SenderAvatar string    `gorm:"type:varchar(255);comment:发送时的头像"`
	Content      string    `gorm:"type:text;not null;comment:消息内容"`
	CreatedAt    time.Time `gorm:"comment:创建时间"`
}

func (Message) TableName() string { return "message" }

// All 全部需要迁移的表
func All() []interface{} {
	return []interface{}{&User{}, &Friendship{}, &Event{}, &EventAttendee{}, &Message{}}
}
