package service

import (
	"event-social/internal/social"
	"event-social/pkg/logger"

	"go.uber.org/zap"
)

// EventService 活动与活动群聊
type EventService struct {
	session  *social.Session
	pageSize int
}

func NewEventService(session *social.Session, pageSize int) *EventService {
	return &EventService{session: session, pageSize: pageSize}
}

// Create 创建活动，创建者必须存在
func (s *EventService) Create(creatorID string, in social.NewEvent) (social.Event, error) {
	if !s.session.Directory.Exists(creatorID) {
		return social.Event{}, ErrUserNotFound
	}
	e, err := s.session.Events.Create(creatorID, in)
	if err != nil {
		return social.Event{}, err
	}
	logger.Info("活动已创建", zap.String("event_id", e.ID), zap.String("creator_id", creatorID))
	return e, nil
}

// Get 获取活动
func (s *EventService) Get(eventID string) (social.Event, error) {
	e, ok := s.session.Events.Get(eventID)
	if !ok {
		return social.Event{}, ErrEventNotFound
	}
	return e, nil
}

// Feed 全部活动，新的在前
func (s *EventService) Feed() []social.Event {
	return s.session.Events.Feed()
}

// Mine 用户参加的活动
func (s *EventService) Mine(userID string) []social.Event {
	return s.session.Events.EventsOf(userID)
}

// Join 加入活动，满员或已加入时返回 false
func (s *EventService) Join(eventID, userID string) (bool, error) {
	if _, err := s.Get(eventID); err != nil {
		return false, err
	}
	changed := s.session.Events.Join(eventID, userID)
	if !changed {
		logger.Debug("加入活动未生效", zap.String("event_id", eventID), zap.String("user_id", userID))
	}
	return changed, nil
}

// Leave 退出活动
func (s *EventService) Leave(eventID, userID string) (bool, error) {
	if _, err := s.Get(eventID); err != nil {
		return false, err
	}
	changed := s.session.Events.Leave(eventID, userID)
	if !changed {
		logger.Debug("退出活动未生效", zap.String("event_id", eventID), zap.String("user_id", userID))
	}
	return changed, nil
}

// Attendees 参与者资料，按加入顺序
func (s *EventService) Attendees(eventID string) ([]social.Profile, error) {
	e, err := s.Get(eventID)
	if err != nil {
		return nil, err
	}
	out := make([]social.Profile, 0, len(e.Attendees))
	for _, id := range e.Attendees {
		if p, ok := s.session.Directory.Get(id); ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// SendMessage 发送活动群聊消息，空消息或超长时返回 false
func (s *EventService) SendMessage(eventID, userID, text string) (social.Message, bool, error) {
	if _, err := s.Get(eventID); err != nil {
		return social.Message{}, false, err
	}
	if !s.session.Directory.Exists(userID) {
		return social.Message{}, false, ErrUserNotFound
	}
	if !s.session.Events.IsMember(eventID, userID) {
		return social.Message{}, false, ErrNotMember
	}
	msg, ok := s.session.SendEventMessage(eventID, userID, text)
	return msg, ok, nil
}

// Messages 活动群聊历史，只有参与者可以查看
func (s *EventService) Messages(eventID, userID string, afterID uint64, limit int) ([]social.Message, error) {
	if _, err := s.Get(eventID); err != nil {
		return nil, err
	}
	if !s.session.Events.IsMember(eventID, userID) {
		return nil, ErrNotMember
	}
	return page(s.session.EventChat, eventID, afterID, limit, s.pageSize), nil
}

// page afterID 为 0 时取最近 limit 条，否则取 afterID 之后的 limit 条
func page(store *social.ChatStore, key string, afterID uint64, limit, defaultLimit int) []social.Message {
	if limit <= 0 {
		limit = defaultLimit
	}
	if afterID > 0 {
		return store.Page(key, afterID, limit)
	}
	msgs := store.Messages(key)
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs
}
