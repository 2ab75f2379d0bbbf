// Package social 实现活动社交应用的内存状态：用户资料、好友关系图、
// 活动、活动群聊和私聊，以及用于驱动界面刷新的发布/订阅。
//
// 所有状态由 Session 持有，进程启动时创建，关闭时丢弃。
// 不满足前置条件的修改操作不会报错，只返回 false 且不改变状态。
package social

import "time"

// broker 上的会话 topic 前缀
const (
	EventChatPrefix  = "event-chat:"
	DirectChatPrefix = "dm:"
)

// Options Session 配置
type Options struct {
	MaxMessageLength int
	Clock            func() time.Time
	EventIDs         func() string
}

// Session 一次应用会话的全部状态
type Session struct {
	Broker     *Broker
	Directory  *Directory
	Friends    *FriendGraph
	Events     *EventStore
	EventChat  *ChatStore
	DirectChat *ChatStore
}

// NewSession 创建空会话
func NewSession(opts Options) *Session {
	broker := NewBroker()

	chatOpts := []ChatOption{WithMaxLength(opts.MaxMessageLength)}
	var eventOpts []EventOption
	if opts.Clock != nil {
		chatOpts = append(chatOpts, WithClock(opts.Clock))
		eventOpts = append(eventOpts, WithEventClock(opts.Clock))
	}
	if opts.EventIDs != nil {
		eventOpts = append(eventOpts, WithEventIDs(opts.EventIDs))
	}

	return &Session{
		Broker:     broker,
		Directory:  NewDirectory(),
		Friends:    NewFriendGraph(broker),
		Events:     NewEventStore(broker, eventOpts...),
		EventChat:  NewChatStore(EventChatPrefix, broker, chatOpts...),
		DirectChat: NewChatStore(DirectChatPrefix, broker, chatOpts...),
	}
}

// SendEventMessage 以 userID 当前资料发送活动群聊消息，只有活动参与者可以发言
func (s *Session) SendEventMessage(eventID, userID, text string) (Message, bool) {
	if !s.Events.IsMember(eventID, userID) {
		return Message{}, false
	}
	from, ok := s.Directory.Sender(userID)
	if !ok {
		return Message{}, false
	}
	return s.EventChat.Send(eventID, from, text)
}

// SendDirectMessage 以 userID 当前资料给 peerID 发送私聊消息，只能发给好友
func (s *Session) SendDirectMessage(userID, peerID, text string) (Message, bool) {
	if userID == peerID || !s.Directory.Exists(peerID) || !s.Friends.IsFriends(userID, peerID) {
		return Message{}, false
	}
	from, ok := s.Directory.Sender(userID)
	if !ok {
		return Message{}, false
	}
	return s.DirectChat.Send(DirectKey(userID, peerID), from, text)
}

// Close 结束会话，丢弃所有订阅
func (s *Session) Close() {
	s.Broker.Close()
}
