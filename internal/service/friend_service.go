package service

import (
	"event-social/internal/social"
	"event-social/pkg/logger"

	"go.uber.org/zap"
)

// FriendService 好友关系
// 目标用户不存在时返回 ErrUserNotFound；前置条件不满足时返回 false
type FriendService struct {
	session *social.Session
}

func NewFriendService(session *social.Session) *FriendService {
	return &FriendService{session: session}
}

func (s *FriendService) requireUsers(ids ...string) error {
	for _, id := range ids {
		if !s.session.Directory.Exists(id) {
			return ErrUserNotFound
		}
	}
	return nil
}

func (s *FriendService) apply(action, me, other string, op func(string, string) bool) (bool, error) {
	if err := s.requireUsers(me, other); err != nil {
		return false, err
	}
	changed := op(me, other)
	if !changed {
		logger.Debug("好友操作未生效", zap.String("action", action), zap.String("user_id", me), zap.String("target_id", other))
		return false, nil
	}
	logger.Info("好友关系变更", zap.String("action", action), zap.String("user_id", me), zap.String("target_id", other))
	return true, nil
}

// SendRequest 发送好友请求
func (s *FriendService) SendRequest(me, target string) (bool, error) {
	return s.apply(social.FriendRequested, me, target, s.session.Friends.SendRequest)
}

// CancelRequest 撤回好友请求
func (s *FriendService) CancelRequest(me, target string) (bool, error) {
	return s.apply(social.FriendCanceled, me, target, s.session.Friends.CancelRequest)
}

// AcceptRequest 接受好友请求
func (s *FriendService) AcceptRequest(me, from string) (bool, error) {
	return s.apply(social.FriendAccepted, me, from, s.session.Friends.AcceptRequest)
}

// DeclineRequest 拒绝好友请求
func (s *FriendService) DeclineRequest(me, from string) (bool, error) {
	return s.apply(social.FriendDeclined, me, from, s.session.Friends.DeclineRequest)
}

// RemoveFriend 删除好友
func (s *FriendService) RemoveFriend(me, target string) (bool, error) {
	return s.apply(social.FriendRemoved, me, target, s.session.Friends.RemoveFriend)
}

// Friends 用户的好友资料列表
func (s *FriendService) Friends(userID string) ([]social.Profile, error) {
	if err := s.requireUsers(userID); err != nil {
		return nil, err
	}
	return s.profiles(s.session.Friends.FriendsOf(userID)), nil
}

// Requests 收到的和发出的待处理请求
func (s *FriendService) Requests(me string) (incoming, outgoing []social.Profile) {
	return s.profiles(s.session.Friends.Incoming(me)), s.profiles(s.session.Friends.Outgoing(me))
}

// Relation 两个用户之间的关系
func (s *FriendService) Relation(me, other string) (string, error) {
	if err := s.requireUsers(me, other); err != nil {
		return "", err
	}
	return s.session.Friends.Relation(me, other), nil
}

func (s *FriendService) profiles(ids []string) []social.Profile {
	out := make([]social.Profile, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.session.Directory.Get(id); ok {
			out = append(out, p)
		}
	}
	return out
}
