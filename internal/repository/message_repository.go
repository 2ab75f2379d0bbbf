package repository

import (
	"context"

	"event-social/internal/model"

	"gorm.io/gorm"
)

// MessageRepository 消息数据仓储
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建MessageRepository实例
func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create 创建消息
func (r *MessageRepository) Create(ctx context.Context, message *model.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// ListBySession 某类会话的全部消息，按 Seq 升序
func (r *MessageRepository) ListBySession(ctx context.Context, sessionType int) ([]*model.Message, error) {
	var messages []*model.Message
	err := r.db.WithContext(ctx).
		Where("session_type = ?", sessionType).
		Order("seq ASC").
		Find(&messages).Error
	return messages, err
}
