package repository

import (
	"context"

	"event-social/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventRepository 活动仓储
type EventRepository struct {
	orm *gorm.DB
}

// NewEventRepository 创建EventRepository实例
func NewEventRepository(orm *gorm.DB) *EventRepository {
	return &EventRepository{orm: orm}
}

// Create 创建活动，连同 Attendees 一起写入
func (r *EventRepository) Create(ctx context.Context, event *model.Event) error {
	return r.orm.WithContext(ctx).Create(event).Error
}

// AddAttendee 记录参与者，重复加入忽略
func (r *EventRepository) AddAttendee(ctx context.Context, eventID, userID string) error {
	return r.orm.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.EventAttendee{EventID: eventID, UserID: userID}).Error
}

// RemoveAttendee 移除参与者
func (r *EventRepository) RemoveAttendee(ctx context.Context, eventID, userID string) error {
	return r.orm.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&model.EventAttendee{}).Error
}

// List 全部活动，参与者按加入顺序
func (r *EventRepository) List(ctx context.Context) ([]*model.Event, error) {
	var events []*model.Event
	err := r.orm.WithContext(ctx).
		Preload("Attendees", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("created_at DESC").
		Find(&events).Error
	return events, err
}
