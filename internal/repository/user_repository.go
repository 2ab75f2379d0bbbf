package repository

import (
	"context"

	"event-social/internal/model"

	"gorm.io/gorm"
)

// UserRepository 用户数据仓储
type UserRepository struct {
	orm *gorm.DB
}

// NewUserRepository 创建UserRepository实例
func NewUserRepository(orm *gorm.DB) *UserRepository {
	return &UserRepository{orm: orm}
}

// Create 创建用户
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.orm.WithContext(ctx).Create(user).Error
}

// UpdateProfile 更新资料字段（显示名、简介、头像、照片墙）
func (r *UserRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	return r.orm.WithContext(ctx).Model(&model.User{ID: user.ID}).
		Select("name", "bio", "avatar", "media").
		Updates(user).Error
}

// List 按注册顺序列出全部用户
func (r *UserRepository) List(ctx context.Context) ([]*model.User, error) {
	var users []*model.User
	err := r.orm.WithContext(ctx).Order("created_at ASC, id ASC").Find(&users).Error
	return users, err
}

// Count 用户总数
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.orm.WithContext(ctx).Model(&model.User{}).Count(&n).Error
	return n, err
}
