package websocket

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"event-social/config"
	"event-social/internal/social"
	"event-social/pkg/jwt"
	"event-social/pkg/logger"
	"event-social/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 5 * time.Second

var (
	errEventNotFound = errors.New("event not found")
	errUserNotFound  = errors.New("user not found")
	errUnknownKind   = errors.New("unknown conversation kind")
	errNotMember     = errors.New("only attendees can use the event chat")
	errNotFriends    = errors.New("you can only message friends")
)

// Handler WebSocket 接入
type Handler struct {
	manager    *Manager
	session    *social.Session
	jwtService *jwt.JWTService
	cfg        config.WebSocketConfig
	upgrader   websocket.Upgrader
}

// NewHandler 创建WebSocket处理器
func NewHandler(manager *Manager, session *social.Session, jwtService *jwt.JWTService, cfg config.WebSocketConfig) *Handler {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 2 * cfg.PingInterval
	}
	return &Handler{
		manager:    manager,
		session:    session,
		jwtService: jwtService,
		cfg:        cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许跨域
			},
		},
	}
}

// Serve Gin路由处理函数
func (h *Handler) Serve(c *gin.Context) {
	// 浏览器无法自定义header，允许通过子协议携带token
	protocols := websocket.Subprotocols(c.Request)
	token := jwt.ExtractToken(c)
	if token == "" && len(protocols) > 0 {
		token = strings.TrimPrefix(protocols[0], "Bearer ")
	}
	if token == "" {
		response.Unauthorized(c, "缺少token")
		return
	}

	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		response.Unauthorized(c, "token无效或已过期")
		return
	}
	profile, ok := h.session.Directory.Get(claims.Subject)
	if !ok {
		response.Unauthorized(c, "用户不存在")
		return
	}

	// 回显子协议，避免客户端提示 "Server sent no subprotocol"
	upgrader := h.upgrader
	if len(protocols) > 0 {
		upgrader.Subprotocols = protocols[:1]
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("WebSocket升级失败", zap.Error(err))
		return
	}

	client := newClient(profile.ID, profile.Username, conn, h.cfg.SendBuffer)
	h.manager.AddClient(client)
	defer h.manager.RemoveClient(client)

	go h.writePump(client)
	client.enqueue(Frame{Type: TypeWelcome, ID: client.UserID})

	h.readPump(client)
}

// writePump 写协程，定时发送ping心跳
func (h *Handler) writePump(client *Client) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = client.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := client.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// readPump 读协程，超时未收到任何读事件则断开
func (h *Handler) readPump(client *Client) {
	conn := client.conn
	_ = conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))
	})
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("WebSocket读取结束", zap.String("user_id", client.UserID), zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(h.cfg.ReadTimeout))

		var frame ClientFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			client.enqueue(Frame{Type: TypeError, Error: "invalid frame"})
			continue
		}
		h.dispatch(client, frame)
	}
}

func (h *Handler) dispatch(client *Client, frame ClientFrame) {
	switch frame.Type {
	case TypeSubscribe:
		if err := h.subscribe(client, frame.Kind, frame.ID); err != nil {
			client.enqueue(Frame{Type: TypeError, Kind: frame.Kind, ID: frame.ID, Error: err.Error()})
			return
		}
		client.enqueue(Frame{Type: TypeSubscribed, Kind: frame.Kind, ID: frame.ID})
	case TypeUnsubscribe:
		if !client.untrack(subscriptionKey(frame.Kind, frame.ID)) {
			client.enqueue(Frame{Type: TypeError, Kind: frame.Kind, ID: frame.ID, Error: "not subscribed"})
			return
		}
		client.enqueue(Frame{Type: TypeUnsubscribed, Kind: frame.Kind, ID: frame.ID})
	case TypeHeartbeat:
		h.manager.Heartbeat(client)
		client.enqueue(Frame{Type: TypePong})
	default:
		client.enqueue(Frame{Type: TypeError, Error: "unknown frame type"})
	}
}

func subscriptionKey(kind, id string) string {
	return kind + ":" + id
}

// subscribe 订阅会话消息，活动会话同时订阅活动成员变化
func (h *Handler) subscribe(client *Client, kind, id string) error {
	broker := h.session.Broker
	switch kind {
	case KindEvent:
		if _, ok := h.session.Events.Get(id); !ok {
			return errEventNotFound
		}
		if !h.session.Events.IsMember(id, client.UserID) {
			return errNotMember
		}
		onMessage := broker.Subscribe(h.session.EventChat.Topic(id), func(n social.Notification) {
			// 退出活动后不再推送聊天
			if n.Kind == social.KindMessage && n.Message != nil && h.session.Events.IsMember(id, client.UserID) {
				client.enqueue(Frame{Type: TypeMessage, Kind: KindEvent, ID: id, Message: n.Message})
			}
		})
		onChange := broker.Subscribe(social.EventTopic(id), func(n social.Notification) {
			if n.Kind == social.KindEvent && n.Event != nil {
				client.enqueue(Frame{Type: TypeEvent, ID: id, Event: n.Event})
			}
		})
		client.track(subscriptionKey(kind, id), func() {
			onMessage()
			onChange()
		})
	case KindDirect:
		if id == client.UserID || !h.session.Directory.Exists(id) {
			return errUserNotFound
		}
		if !h.session.Friends.IsFriends(client.UserID, id) {
			return errNotFriends
		}
		topic := h.session.DirectChat.Topic(social.DirectKey(client.UserID, id))
		client.track(subscriptionKey(kind, id), broker.Subscribe(topic, func(n social.Notification) {
			if n.Kind == social.KindMessage && n.Message != nil {
				client.enqueue(Frame{Type: TypeMessage, Kind: KindDirect, ID: id, Message: n.Message})
			}
		}))
	default:
		return errUnknownKind
	}
	return nil
}
