package service

import (
	"context"
	"sort"

	"event-social/internal/social"
	"event-social/pkg/logger"
	"event-social/pkg/redis"

	"go.uber.org/zap"
)

// ConversationTracker 未读数与最近会话，未启用Redis时为 nil
type ConversationTracker interface {
	IncrementUnread(ctx context.Context, userID, conversation string) (int64, error)
	ResetUnread(ctx context.Context, userID, conversation string) error
	UnreadCounts(ctx context.Context, userID string) (map[string]int64, error)
	TotalUnread(ctx context.Context, userID string) (int64, error)
	TouchConversation(ctx context.Context, userID string, preview redis.ConversationPreview) error
	RecentConversations(ctx context.Context, userID string, limit int) ([]redis.ConversationPreview, error)
}

// ChatService 私聊
type ChatService struct {
	session  *social.Session
	tracker  ConversationTracker
	pageSize int
}

func NewChatService(session *social.Session, tracker ConversationTracker, pageSize int) *ChatService {
	return &ChatService{session: session, tracker: tracker, pageSize: pageSize}
}

// Send 给 peerID 发送私聊消息，空消息、超长或发给自己时返回 false
func (s *ChatService) Send(ctx context.Context, me, peerID, text string) (social.Message, bool, error) {
	if !s.session.Directory.Exists(me) || !s.session.Directory.Exists(peerID) {
		return social.Message{}, false, ErrUserNotFound
	}
	if me != peerID && !s.session.Friends.IsFriends(me, peerID) {
		return social.Message{}, false, ErrNotFriends
	}
	msg, ok := s.session.SendDirectMessage(me, peerID, text)
	if !ok {
		logger.Debug("私聊消息未发送", zap.String("user_id", me), zap.String("peer_id", peerID))
		return msg, false, nil
	}
	if s.tracker != nil {
		s.track(ctx, me, peerID, msg)
	}
	return msg, true, nil
}

// track Redis 写入失败不影响消息本身
func (s *ChatService) track(ctx context.Context, me, peerID string, msg social.Message) {
	if _, err := s.tracker.IncrementUnread(ctx, peerID, msg.Conversation); err != nil {
		logger.Warn("更新未读数失败", zap.String("user_id", peerID), zap.Error(err))
	}
	for _, pair := range [][2]string{{me, peerID}, {peerID, me}} {
		err := s.tracker.TouchConversation(ctx, pair[0], redis.ConversationPreview{
			Conversation: msg.Conversation,
			PeerID:       pair[1],
			LastSender:   msg.SenderID,
			LastMessage:  msg.Text,
			LastTime:     msg.CreatedAt,
		})
		if err != nil {
			logger.Warn("更新会话列表失败", zap.String("user_id", pair[0]), zap.Error(err))
		}
	}
}

// Messages 与 peerID 的聊天记录，读取即视为已读；解除好友后不能再查看
func (s *ChatService) Messages(ctx context.Context, me, peerID string, afterID uint64, limit int) ([]social.Message, error) {
	if !s.session.Directory.Exists(peerID) {
		return nil, ErrUserNotFound
	}
	if me != peerID && !s.session.Friends.IsFriends(me, peerID) {
		return nil, ErrNotFriends
	}
	key := social.DirectKey(me, peerID)
	msgs := page(s.session.DirectChat, key, afterID, limit, s.pageSize)
	if s.tracker != nil {
		if err := s.tracker.ResetUnread(ctx, me, key); err != nil {
			logger.Warn("重置未读数失败", zap.String("user_id", me), zap.Error(err))
		}
	}
	return msgs, nil
}

// Recent 最近会话，新的在前
// 未启用Redis时从内存会话计算，未读数为 0
func (s *ChatService) Recent(ctx context.Context, me string, limit int) ([]redis.ConversationPreview, error) {
	if s.tracker != nil {
		return s.tracker.RecentConversations(ctx, me, limit)
	}

	out := []redis.ConversationPreview{}
	for _, key := range s.session.DirectChat.Keys() {
		a, b, ok := social.ParseDirectKey(key)
		if !ok || (a != me && b != me) {
			continue
		}
		last, ok := s.session.DirectChat.Last(key)
		if !ok {
			continue
		}
		peer := a
		if peer == me {
			peer = b
		}
		out = append(out, redis.ConversationPreview{
			Conversation: key,
			PeerID:       peer,
			LastSender:   last.SenderID,
			LastMessage:  last.Text,
			LastTime:     last.CreatedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].LastTime.After(out[j].LastTime) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Unread 各会话未读数及总数
func (s *ChatService) Unread(ctx context.Context, me string) (map[string]int64, int64, error) {
	if s.tracker == nil {
		return map[string]int64{}, 0, nil
	}
	counts, err := s.tracker.UnreadCounts(ctx, me)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.tracker.TotalUnread(ctx, me)
	if err != nil {
		return nil, 0, err
	}
	return counts, total, nil
}
