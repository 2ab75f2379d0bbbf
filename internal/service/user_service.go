package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"event-social/internal/model"
	"event-social/internal/social"
	"event-social/pkg/jwt"
	"event-social/pkg/logger"
	"event-social/pkg/password"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserStore 用户归档，未启用数据库时为 nil
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	UpdateProfile(ctx context.Context, user *model.User) error
}

// UserService 账号与资料
// 资料保存在会话的 Directory 中，密码哈希单独保存
type UserService struct {
	session    *social.Session
	jwtService *jwt.JWTService
	store      UserStore
	newID      func() string

	mu    sync.RWMutex
	creds map[string]string // userID -> 密码哈希
}

func NewUserService(session *social.Session, jwtService *jwt.JWTService, store UserStore) *UserService {
	return &UserService{
		session:    session,
		jwtService: jwtService,
		store:      store,
		newID:      uuid.NewString,
		creds:      make(map[string]string),
	}
}

// Register 注册，用户名先规范化再校验
func (s *UserService) Register(ctx context.Context, username, plainPassword, name string) (social.Profile, string, error) {
	username = social.NormalizeUsername(username)
	if err := social.ValidateUsername(username); err != nil {
		return social.Profile{}, "", err
	}
	if err := password.Validate(plainPassword); err != nil {
		return social.Profile{}, "", err
	}
	// 密码哈希
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return social.Profile{}, "", err
	}

	profile, err := s.session.Directory.Register(social.Profile{
		ID:       s.newID(),
		Username: username,
		Name:     name,
	})
	if err != nil {
		return social.Profile{}, "", err
	}
	s.SetCredential(profile.ID, hash)

	if s.store != nil {
		user := toUserModel(profile)
		user.PasswordHash = hash
		if err := s.store.Create(ctx, user); err != nil {
			logger.Error("归档新用户失败", zap.String("user_id", profile.ID), zap.Error(err))
		}
	}

	token, err := s.jwtService.GenerateUserToken(profile.ID, profile.Username)
	if err != nil {
		return social.Profile{}, "", err
	}
	logger.Info("用户注册成功", zap.String("user_id", profile.ID), zap.String("username", profile.Username))
	return profile, token, nil
}

// Login 登录
func (s *UserService) Login(username, plainPassword string) (social.Profile, string, error) {
	username = social.NormalizeUsername(username)
	if username == "" || plainPassword == "" {
		return social.Profile{}, "", ErrInvalidCredentials
	}
	profile, ok := s.session.Directory.ByUsername(username)
	if !ok {
		return social.Profile{}, "", ErrInvalidCredentials
	}
	hash := s.Credential(profile.ID)
	if hash == "" || !password.Verify(plainPassword, hash) {
		return social.Profile{}, "", ErrInvalidCredentials
	}
	token, err := s.jwtService.GenerateUserToken(profile.ID, profile.Username)
	if err != nil {
		return social.Profile{}, "", err
	}
	return profile, token, nil
}

// Profile 获取用户资料
func (s *UserService) Profile(id string) (social.Profile, error) {
	p, ok := s.session.Directory.Get(id)
	if !ok {
		return social.Profile{}, ErrUserNotFound
	}
	return p, nil
}

// List 全部用户，按用户名排序
func (s *UserService) List() []social.Profile {
	return s.session.Directory.List()
}

// UpdateProfile 更新自己的资料
func (s *UserService) UpdateProfile(ctx context.Context, id string, upd social.ProfileUpdate) (social.Profile, error) {
	p, err := s.session.Directory.Update(id, upd)
	if errors.Is(err, social.ErrProfileNotFound) {
		return social.Profile{}, ErrUserNotFound
	}
	if err != nil {
		return social.Profile{}, err
	}
	if s.store != nil {
		if err := s.store.UpdateProfile(ctx, toUserModel(p)); err != nil {
			logger.Error("归档用户资料失败", zap.String("user_id", id), zap.Error(err))
		}
	}
	return p, nil
}

// SetCredential 设置密码哈希（归档恢复、种子导入）
func (s *UserService) SetCredential(userID, hash string) {
	if hash == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[userID] = hash
}

// Credential 获取密码哈希，没有密码的用户（种子数据）返回空串
func (s *UserService) Credential(userID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds[userID]
}

// ApplySeed 导入种子数据，带密码的种子用户可直接登录
func (s *UserService) ApplySeed(seed *social.Seed) error {
	if err := seed.Apply(s.session); err != nil {
		return err
	}
	for _, p := range seed.Profiles {
		if strings.TrimSpace(p.Password) == "" {
			continue
		}
		hash, err := password.Hash(p.Password)
		if err != nil {
			return fmt.Errorf("种子用户 %q 密码哈希失败: %w", p.ID, err)
		}
		s.SetCredential(p.ID, hash)
	}
	return nil
}

func toUserModel(p social.Profile) *model.User {
	return &model.User{
		ID:        p.ID,
		Username:  p.Username,
		Name:      p.Name,
		Bio:       p.Bio,
		Avatar:    p.Avatar,
		Media:     p.Media,
		CreatedAt: p.CreatedAt,
	}
}
