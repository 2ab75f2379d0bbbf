package redis

import (
	"context"
	"fmt"
	"strconv"
)

// UnreadKeyPrefix 未读计数key前缀，每个用户一个hash，field为会话key
const UnreadKeyPrefix = KeyPrefix + "unread:"

func unreadKey(userID string) string {
	return UnreadKeyPrefix + userID
}

// IncrementUnread 增加用户在某会话的未读计数
func (s *Store) IncrementUnread(ctx context.Context, userID, conversation string) (int64, error) {
	n, err := s.client.HIncrBy(ctx, unreadKey(userID), conversation, 1).Result()
	if err != nil {
		return 0, fmt.Errorf("增加未读消息计数失败: %w", err)
	}
	return n, nil
}

// ResetUnread 将用户在某会话的未读计数清零
func (s *Store) ResetUnread(ctx context.Context, userID, conversation string) error {
	if err := s.client.HDel(ctx, unreadKey(userID), conversation).Err(); err != nil {
		return fmt.Errorf("重置未读消息计数失败: %w", err)
	}
	return nil
}

// UnreadCounts 获取用户各会话的未读计数
func (s *Store) UnreadCounts(ctx context.Context, userID string) (map[string]int64, error) {
	raw, err := s.client.HGetAll(ctx, unreadKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("获取未读消息计数失败: %w", err)
	}

	counts := make(map[string]int64, len(raw))
	for conversation, val := range raw {
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("解析未读消息计数失败: %w", err)
		}
		if n > 0 {
			counts[conversation] = n
		}
	}
	return counts, nil
}

// TotalUnread 获取用户未读总数
func (s *Store) TotalUnread(ctx context.Context, userID string) (int64, error) {
	counts, err := s.UnreadCounts(ctx, userID)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, n := range counts {
		total += n
	}
	return total, nil
}
