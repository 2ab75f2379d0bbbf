package repository

import (
	"context"

	"event-social/internal/model"

	"gorm.io/gorm"
)

// FriendshipRepository 好友关系仓储
type FriendshipRepository struct {
	orm *gorm.DB
}

// NewFriendshipRepository 创建FriendshipRepository实例
func NewFriendshipRepository(orm *gorm.DB) *FriendshipRepository {
	return &FriendshipRepository{orm: orm}
}

func ordered(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// SavePending 记录 from 向 to 的好友请求
func (r *FriendshipRepository) SavePending(ctx context.Context, from, to string) error {
	return r.orm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND friend_id = ? AND status = ?", from, to, model.FriendshipPending).
			Delete(&model.Friendship{}).Error; err != nil {
			return err
		}
		return tx.Create(&model.Friendship{UserID: from, FriendID: to, Status: model.FriendshipPending}).Error
	})
}

// DeletePending 删除 from 向 to 的好友请求（取消或拒绝）
func (r *FriendshipRepository) DeletePending(ctx context.Context, from, to string) error {
	return r.orm.WithContext(ctx).
		Where("user_id = ? AND friend_id = ? AND status = ?", from, to, model.FriendshipPending).
		Delete(&model.Friendship{}).Error
}

// Accept 建立好友关系，同时清除双方之间的所有请求
func (r *FriendshipRepository) Accept(ctx context.Context, a, b string) error {
	lo, hi := ordered(a, b)
	return r.orm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("((user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?))", a, b, b, a).
			Delete(&model.Friendship{}).Error; err != nil {
			return err
		}
		return tx.Create(&model.Friendship{UserID: lo, FriendID: hi, Status: model.FriendshipAccepted}).Error
	})
}

// Remove 解除好友关系
func (r *FriendshipRepository) Remove(ctx context.Context, a, b string) error {
	lo, hi := ordered(a, b)
	return r.orm.WithContext(ctx).
		Where("user_id = ? AND friend_id = ? AND status = ?", lo, hi, model.FriendshipAccepted).
		Delete(&model.Friendship{}).Error
}

// List 全部关系，按写入顺序
func (r *FriendshipRepository) List(ctx context.Context) ([]*model.Friendship, error) {
	var rows []*model.Friendship
	err := r.orm.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, err
}
