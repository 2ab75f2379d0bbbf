package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"event-social/internal/model"
	"event-social/internal/repository"
	"event-social/internal/social"
	"event-social/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Archiver 把会话中的变更写入数据库，并在启动时恢复
// 内存状态是唯一真相，归档失败只记录日志
type Archiver struct {
	session  *social.Session
	accounts *UserService
	users    *repository.UserRepository
	friends  *repository.FriendshipRepository
	events   *repository.EventRepository
	messages *repository.MessageRepository
	timeout  time.Duration
}

// NewArchiver 创建归档器
func NewArchiver(orm *gorm.DB, session *social.Session, accounts *UserService) *Archiver {
	return &Archiver{
		session:  session,
		accounts: accounts,
		users:    repository.NewUserRepository(orm),
		friends:  repository.NewFriendshipRepository(orm),
		events:   repository.NewEventRepository(orm),
		messages: repository.NewMessageRepository(orm),
		timeout:  5 * time.Second,
	}
}

// Start 订阅全部通知，返回停止函数
func (a *Archiver) Start() func() {
	return a.session.Broker.SubscribeAll(a.handle)
}

func (a *Archiver) handle(n social.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	var err error
	switch n.Kind {
	case social.KindFriend:
		err = a.saveFriendChange(ctx, n.Friend)
	case social.KindEvent:
		err = a.saveEventChange(ctx, n.Event)
	case social.KindMessage:
		err = a.saveMessage(ctx, n.Topic, n.Message)
	}
	if err != nil {
		logger.Error("归档失败", zap.String("kind", n.Kind), zap.String("topic", n.Topic), zap.Error(err))
	}
}

func (a *Archiver) saveFriendChange(ctx context.Context, c *social.FriendChange) error {
	if c == nil {
		return nil
	}
	switch c.Action {
	case social.FriendRequested:
		return a.friends.SavePending(ctx, c.From, c.To)
	case social.FriendCanceled:
		return a.friends.DeletePending(ctx, c.From, c.To)
	case social.FriendDeclined:
		// From 是拒绝方，请求方向为 To -> From
		return a.friends.DeletePending(ctx, c.To, c.From)
	case social.FriendAccepted:
		return a.friends.Accept(ctx, c.From, c.To)
	case social.FriendRemoved:
		return a.friends.Remove(ctx, c.From, c.To)
	}
	return nil
}

func (a *Archiver) saveEventChange(ctx context.Context, c *social.EventChange) error {
	if c == nil {
		return nil
	}
	switch c.Action {
	case social.EventCreated:
		e, ok := a.session.Events.Get(c.EventID)
		if !ok {
			return fmt.Errorf("活动 %s 不存在", c.EventID)
		}
		return a.events.Create(ctx, toEventModel(e))
	case social.EventJoined:
		return a.events.AddAttendee(ctx, c.EventID, c.UserID)
	case social.EventLeft:
		return a.events.RemoveAttendee(ctx, c.EventID, c.UserID)
	}
	return nil
}

func (a *Archiver) saveMessage(ctx context.Context, topic string, msg *social.Message) error {
	if msg == nil {
		return nil
	}
	sessionType := model.SessionDirect
	if strings.HasPrefix(topic, social.EventChatPrefix) {
		sessionType = model.SessionEvent
	}
	return a.messages.Create(ctx, toMessageModel(sessionType, *msg))
}

// Restore 从数据库恢复会话，数据库为空时返回 false
func (a *Archiver) Restore(ctx context.Context) (bool, error) {
	users, err := a.users.List(ctx)
	if err != nil {
		return false, fmt.Errorf("读取用户失败: %w", err)
	}
	if len(users) == 0 {
		return false, nil
	}
	for _, u := range users {
		if _, err := a.session.Directory.Register(social.Profile{
			ID:        u.ID,
			Username:  u.Username,
			Name:      u.Name,
			Bio:       u.Bio,
			Avatar:    u.Avatar,
			Media:     u.Media,
			CreatedAt: u.CreatedAt,
		}); err != nil {
			return false, fmt.Errorf("恢复用户 %s 失败: %w", u.ID, err)
		}
		a.accounts.SetCredential(u.ID, u.PasswordHash)
	}

	rows, err := a.friends.List(ctx)
	if err != nil {
		return false, fmt.Errorf("读取好友关系失败: %w", err)
	}
	for _, f := range rows {
		if f.Status == model.FriendshipAccepted {
			a.session.Friends.SeedFriendship(f.UserID, f.FriendID)
		} else {
			a.session.Friends.SeedRequest(f.UserID, f.FriendID)
		}
	}

	events, err := a.events.List(ctx)
	if err != nil {
		return false, fmt.Errorf("读取活动失败: %w", err)
	}
	for _, e := range events {
		a.session.Events.Restore(fromEventModel(e))
	}

	for _, st := range []struct {
		sessionType int
		store       *social.ChatStore
	}{
		{model.SessionEvent, a.session.EventChat},
		{model.SessionDirect, a.session.DirectChat},
	} {
		msgs, err := a.messages.ListBySession(ctx, st.sessionType)
		if err != nil {
			return false, fmt.Errorf("读取消息失败: %w", err)
		}
		for _, m := range msgs {
			st.store.Restore(fromMessageModel(m))
		}
	}

	logger.Info("已从数据库恢复会话",
		zap.Int("users", len(users)),
		zap.Int("friendships", len(rows)),
		zap.Int("events", len(events)),
	)
	return true, nil
}

// SaveAll 把当前会话整体写入数据库（导入种子数据后调用）
func (a *Archiver) SaveAll(ctx context.Context) error {
	for _, p := range a.session.Directory.List() {
		u := toUserModel(p)
		u.PasswordHash = a.accounts.Credential(p.ID)
		if err := a.users.Create(ctx, u); err != nil {
			return fmt.Errorf("写入用户 %s 失败: %w", p.ID, err)
		}
	}
	for _, edge := range a.session.Friends.Edges() {
		if err := a.friends.Accept(ctx, edge[0], edge[1]); err != nil {
			return fmt.Errorf("写入好友关系失败: %w", err)
		}
	}
	for _, req := range a.session.Friends.Requests() {
		if err := a.friends.SavePending(ctx, req[0], req[1]); err != nil {
			return fmt.Errorf("写入好友请求失败: %w", err)
		}
	}
	for _, e := range a.session.Events.Feed() {
		if err := a.events.Create(ctx, toEventModel(e)); err != nil {
			return fmt.Errorf("写入活动 %s 失败: %w", e.ID, err)
		}
	}
	for _, st := range []struct {
		sessionType int
		store       *social.ChatStore
	}{
		{model.SessionEvent, a.session.EventChat},
		{model.SessionDirect, a.session.DirectChat},
	} {
		for _, key := range st.store.Keys() {
			for _, m := range st.store.Messages(key) {
				if err := a.messages.Create(ctx, toMessageModel(st.sessionType, m)); err != nil {
					return fmt.Errorf("写入消息失败: %w", err)
				}
			}
		}
	}
	return nil
}

func toEventModel(e social.Event) *model.Event {
	m := &model.Event{
		ID:          e.ID,
		CreatorID:   e.CreatorID,
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Location:    e.Location,
		Image:       e.Image,
		Capacity:    e.Capacity,
		CreatedAt:   e.CreatedAt,
	}
	for _, uid := range e.Attendees {
		m.Attendees = append(m.Attendees, model.EventAttendee{UserID: uid})
	}
	return m
}

func fromEventModel(m *model.Event) social.Event {
	e := social.Event{
		ID:          m.ID,
		CreatorID:   m.CreatorID,
		Title:       m.Title,
		Description: m.Description,
		Date:        m.Date,
		Location:    m.Location,
		Image:       m.Image,
		Capacity:    m.Capacity,
		Attendees:   []string{},
		CreatedAt:   m.CreatedAt,
	}
	for _, att := range m.Attendees {
		e.Attendees = append(e.Attendees, att.UserID)
	}
	return e
}

func toMessageModel(sessionType int, msg social.Message) *model.Message {
	return &model.Message{
		SessionType:  sessionType,
		Seq:          msg.ID,
		Conversation: msg.Conversation,
		SenderID:     msg.SenderID,
		SenderName:   msg.SenderName,
		SenderAvatar: msg.SenderAvatar,
		Content:      msg.Text,
		CreatedAt:    msg.CreatedAt,
	}
}

func fromMessageModel(m *model.Message) social.Message {
	return social.Message{
		ID:           m.Seq,
		Conversation: m.Conversation,
		SenderID:     m.SenderID,
		SenderName:   m.SenderName,
		SenderAvatar: m.SenderAvatar,
		Text:         m.Content,
		CreatedAt:    m.CreatedAt,
	}
}
