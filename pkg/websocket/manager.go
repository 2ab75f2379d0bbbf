package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"event-social/internal/social"
	"event-social/pkg/logger"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Presence 在线状态存储，未启用Redis时为 nil
type Presence interface {
	SetOnline(ctx context.Context, userID, username string) error
	SetOffline(ctx context.Context, userID string) error
	RefreshPresence(ctx context.Context, userID string) error
}

// Client 代表一个WebSocket连接
// 同一用户可以有多个连接，每个连接各自订阅
type Client struct {
	UserID   string
	Username string
	conn     *websocket.Conn
	send     chan []byte

	mu     sync.Mutex
	subs   map[string]func() // 订阅key -> 取消订阅
	closed bool
}

func newClient(userID, username string, conn *websocket.Conn, buffer int) *Client {
	if buffer <= 0 {
		buffer = 256
	}
	return &Client{
		UserID:   userID,
		Username: username,
		conn:     conn,
		send:     make(chan []byte, buffer),
		subs:     make(map[string]func()),
	}
}

// enqueue 非阻塞投递，缓冲区满时丢弃
// 由 broker 回调同步调用，不能阻塞发布方
func (c *Client) enqueue(f Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		logger.Error("序列化推送帧失败", zap.Error(err))
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		logger.Warn("推送缓冲区已满，丢弃消息", zap.String("user_id", c.UserID), zap.String("type", f.Type))
	}
}

// track 记录订阅，重复订阅时先取消旧的
func (c *Client) track(key string, cancel func()) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		cancel()
		return false
	}
	old := c.subs[key]
	c.subs[key] = cancel
	c.mu.Unlock()
	if old != nil {
		old()
	}
	return true
}

// untrack 取消订阅，返回是否存在
func (c *Client) untrack(key string) bool {
	c.mu.Lock()
	cancel, ok := c.subs[key]
	delete(c.subs, key)
	c.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

// shutdown 取消所有订阅并关闭发送通道，可重复调用
func (c *Client) shutdown() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	subs := c.subs
	c.subs = nil
	close(c.send)
	c.mu.Unlock()

	for _, cancel := range subs {
		cancel()
	}
}

// Manager 管理所有在线连接
type Manager struct {
	broker   *social.Broker
	presence Presence
	clients  map[string]map[*Client]struct{} // 用户ID -> 连接
	lock     sync.RWMutex
}

// NewManager 创建连接管理器
func NewManager(broker *social.Broker, presence Presence) *Manager {
	return &Manager{
		broker:   broker,
		presence: presence,
		clients:  make(map[string]map[*Client]struct{}),
	}
}

// AddClient 添加新连接并订阅用户自己的 topic（好友变化）
func (m *Manager) AddClient(c *Client) {
	m.lock.Lock()
	conns, ok := m.clients[c.UserID]
	if !ok {
		conns = make(map[*Client]struct{})
		m.clients[c.UserID] = conns
	}
	conns[c] = struct{}{}
	m.lock.Unlock()

	c.track(social.UserTopic(c.UserID), m.broker.Subscribe(social.UserTopic(c.UserID), func(n social.Notification) {
		if n.Kind == social.KindFriend && n.Friend != nil {
			c.enqueue(Frame{Type: TypeFriend, Friend: n.Friend})
		}
	}))

	if m.presence != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := m.presence.SetOnline(ctx, c.UserID, c.Username); err != nil {
			logger.Warn("设置在线状态失败", zap.String("user_id", c.UserID), zap.Error(err))
		}
	}
	logger.Info("WebSocket连接建立", zap.String("user_id", c.UserID))
}

// RemoveClient 移除连接，用户最后一个连接断开时标记离线
func (m *Manager) RemoveClient(c *Client) {
	c.shutdown()

	m.lock.Lock()
	conns := m.clients[c.UserID]
	if _, ok := conns[c]; !ok {
		m.lock.Unlock()
		return
	}
	delete(conns, c)
	last := len(conns) == 0
	if last {
		delete(m.clients, c.UserID)
	}
	m.lock.Unlock()

	if last && m.presence != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := m.presence.SetOffline(ctx, c.UserID); err != nil {
			logger.Warn("设置离线状态失败", zap.String("user_id", c.UserID), zap.Error(err))
		}
	}
	logger.Info("WebSocket连接断开", zap.String("user_id", c.UserID))
}

// Heartbeat 客户端心跳，刷新在线状态TTL
func (m *Manager) Heartbeat(c *Client) {
	if m.presence == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := m.presence.RefreshPresence(ctx, c.UserID); err != nil {
		// TTL 已过期时重新写入
		if err := m.presence.SetOnline(ctx, c.UserID, c.Username); err != nil {
			logger.Warn("刷新在线状态失败", zap.String("user_id", c.UserID), zap.Error(err))
		}
	}
}

// IsOnline 判断用户在本进程是否有连接
func (m *Manager) IsOnline(userID string) bool {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.clients[userID]) > 0
}

// OnlineCount 在线用户数
func (m *Manager) OnlineCount() int {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return len(m.clients)
}

// Close 断开所有连接（服务关闭时调用）
func (m *Manager) Close() {
	m.lock.RLock()
	var all []*Client
	for _, conns := range m.clients {
		for c := range conns {
			all = append(all, c)
		}
	}
	m.lock.RUnlock()

	for _, c := range all {
		_ = c.conn.Close()
	}
}
