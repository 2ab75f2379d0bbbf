package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// PresenceData 在线状态数据
type PresenceData struct {
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	LastSeen time.Time `json:"last_seen"`
}

// 在线状态相关常量
const (
	PresenceKeyPrefix = KeyPrefix + "presence:" // 用户在线状态key前缀
	OnlineUsersKey    = KeyPrefix + "online"    // 在线用户集合key
	PresenceTTL       = 2 * time.Minute         // 在线状态TTL（大于心跳超时）
)

// ErrNotOnline 用户不在线
var ErrNotOnline = errors.New("user is not online")

func presenceKey(userID string) string {
	return PresenceKeyPrefix + userID
}

// SetOnline 标记用户在线
func (s *Store) SetOnline(ctx context.Context, userID, username string) error {
	data, err := json.Marshal(PresenceData{UserID: userID, Username: username, LastSeen: s.now()})
	if err != nil {
		return fmt.Errorf("序列化在线状态失败: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, presenceKey(userID), data, PresenceTTL)
	pipe.SAdd(ctx, OnlineUsersKey, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("设置用户在线状态失败: %w", err)
	}
	return nil
}

// SetOffline 移除用户在线状态
func (s *Store) SetOffline(ctx context.Context, userID string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, presenceKey(userID))
	pipe.SRem(ctx, OnlineUsersKey, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("删除用户在线状态失败: %w", err)
	}
	return nil
}

// RefreshPresence 刷新用户在线状态（延长TTL），心跳时调用
func (s *Store) RefreshPresence(ctx context.Context, userID string) error {
	ok, err := s.client.Expire(ctx, presenceKey(userID), PresenceTTL).Result()
	if err != nil {
		return fmt.Errorf("刷新用户在线状态失败: %w", err)
	}
	if !ok {
		return ErrNotOnline
	}
	return nil
}

// Presence 获取用户在线状态
func (s *Store) Presence(ctx context.Context, userID string) (*PresenceData, error) {
	data, err := s.client.Get(ctx, presenceKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotOnline
	}
	if err != nil {
		return nil, fmt.Errorf("获取用户在线状态失败: %w", err)
	}

	var presence PresenceData
	if err := json.Unmarshal(data, &presence); err != nil {
		return nil, fmt.Errorf("反序列化在线状态失败: %w", err)
	}
	return &presence, nil
}

// IsOnline 检查用户是否在线
func (s *Store) IsOnline(ctx context.Context, userID string) (bool, error) {
	n, err := s.client.Exists(ctx, presenceKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("检查用户在线状态失败: %w", err)
	}
	return n > 0, nil
}

// OnlineUsers 获取在线用户ID列表，顺带清理TTL已过期的成员
func (s *Store) OnlineUsers(ctx context.Context) ([]string, error) {
	members, err := s.client.SMembers(ctx, OnlineUsersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("获取在线用户列表失败: %w", err)
	}

	online := make([]string, 0, len(members))
	for _, id := range members {
		alive, err := s.IsOnline(ctx, id)
		if err != nil {
			return nil, err
		}
		if !alive {
			s.client.SRem(ctx, OnlineUsersKey, id)
			continue
		}
		online = append(online, id)
	}
	sort.Strings(online)
	return online, nil
}
