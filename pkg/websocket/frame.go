package websocket

import (
	"event-social/internal/social"
)

// 客户端帧类型
const (
	TypeSubscribe   = "subscribe"
	TypeUnsubscribe = "unsubscribe"
	TypeHeartbeat   = "heartbeat"
)

// 服务端帧类型
const (
	TypeWelcome      = "welcome"
	TypeSubscribed   = "subscribed"
	TypeUnsubscribed = "unsubscribed"
	TypePong         = "pong"
	TypeMessage      = "message"
	TypeFriend       = "friend"
	TypeEvent        = "event"
	TypeError        = "error"
)

// 会话类型
const (
	KindEvent  = "event"  // ID 为活动ID
	KindDirect = "direct" // ID 为对方用户ID
)

// ClientFrame 客户端发来的帧
type ClientFrame struct {
	Type string `json:"type"`
	Kind string `json:"kind,omitempty"`
	ID   string `json:"id,omitempty"`
}

// Frame 推送给客户端的帧
type Frame struct {
	Type    string               `json:"type"`
	Kind    string               `json:"kind,omitempty"`
	ID      string               `json:"id,omitempty"`
	Message *social.Message      `json:"message,omitempty"`
	Friend  *social.FriendChange `json:"friend,omitempty"`
	Event   *social.EventChange  `json:"event,omitempty"`
	Error   string               `json:"error,omitempty"`
}
