package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// 最近会话相关常量
const (
	ConversationsKeyPrefix = KeyPrefix + "conversations:" // 按时间排序的会话zset
	PreviewKeyPrefix       = KeyPrefix + "preview:"       // 会话最后一条消息hash
	MaxConversations       = 50                           // 每个用户保留的最近会话数
)

// ConversationPreview 最近会话条目
type ConversationPreview struct {
	Conversation string    `json:"conversation"`
	PeerID       string    `json:"peer_id"`
	LastSender   string    `json:"last_sender"`
	LastMessage  string    `json:"last_message"`
	LastTime     time.Time `json:"last_time"`
	UnreadCount  int64     `json:"unread_count"`
}

// TouchConversation 记录用户的一条会话活动，超过上限时淘汰最旧的会话
func (s *Store) TouchConversation(ctx context.Context, userID string, preview ConversationPreview) error {
	data, err := json.Marshal(preview)
	if err != nil {
		return fmt.Errorf("序列化会话失败: %w", err)
	}

	zkey := ConversationsKeyPrefix + userID
	hkey := PreviewKeyPrefix + userID

	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, zkey, redis.Z{Score: float64(preview.LastTime.UnixNano()), Member: preview.Conversation})
	pipe.HSet(ctx, hkey, preview.Conversation, data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("更新会话列表失败: %w", err)
	}

	// 淘汰多余的会话
	stale, err := s.client.ZRange(ctx, zkey, 0, -MaxConversations-1).Result()
	if err != nil {
		return fmt.Errorf("获取过期会话失败: %w", err)
	}
	if len(stale) > 0 {
		members := make([]interface{}, len(stale))
		for i, m := range stale {
			members[i] = m
		}
		pipe := s.client.TxPipeline()
		pipe.ZRem(ctx, zkey, members...)
		pipe.HDel(ctx, hkey, stale...)
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("清理过期会话失败: %w", err)
		}
	}
	return nil
}

// RecentConversations 获取用户最近的会话，新的在前，附带未读数
func (s *Store) RecentConversations(ctx context.Context, userID string, limit int) ([]ConversationPreview, error) {
	if limit <= 0 || limit > MaxConversations {
		limit = MaxConversations
	}

	keys, err := s.client.ZRevRange(ctx, ConversationsKeyPrefix+userID, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("获取会话列表失败: %w", err)
	}
	if len(keys) == 0 {
		return []ConversationPreview{}, nil
	}

	raw, err := s.client.HMGet(ctx, PreviewKeyPrefix+userID, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("获取会话详情失败: %w", err)
	}
	unread, err := s.UnreadCounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]ConversationPreview, 0, len(keys))
	for _, v := range raw {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var p ConversationPreview
		if err := json.Unmarshal([]byte(str), &p); err != nil {
			return nil, fmt.Errorf("反序列化会话失败: %w", err)
		}
		p.UnreadCount = unread[p.Conversation]
		out = append(out, p)
	}
	return out, nil
}
