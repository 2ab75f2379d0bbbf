package model

import (
	"time"
)

// Event 活动
type Event struct {
	ID          string    `gorm:"type:varchar(64);primaryKey;comment:活动ID"`
	CreatorID   string    `gorm:"type:varchar(64);not null;index;comment:创建者ID"`
	Title       string    `gorm:"type:varchar(255);not null;comment:标题"`
	Description string    `gorm:"type:text;comment:描述"`
	Date        string    `gorm:"type:varchar(64);comment:日期(自由文本)"`
	Location    string    `gorm:"type:varchar(255);comment:地点"`
	Image       string    `gorm:"type:varchar(255);comment:封面"`
	Capacity    int       `gorm:"not null;default:5;comment:人数上限"`
	CreatedAt   time.Time `gorm:"index;comment:创建时间"`

	Attendees []EventAttendee `gorm:"foreignKey:EventID"`
}

func (Event) TableName() string { return "event" }

// EventAttendee 活动参与者，ID 顺序即加入顺序
type EventAttendee struct {
	ID        uint      `gorm:"primaryKey"`
	EventID   string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_event_attendee;comment:活动ID"`
	UserID    string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_event_attendee;index;comment:用户ID"`
	CreatedAt time.Time `gorm:"comment:加入时间"`
}

func (EventAttendee) TableName() string { return "event_attendee" }
