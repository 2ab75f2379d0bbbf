package social

import (
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// Message 会话消息，创建后不可修改
// 发送者的昵称和头像在发送时快照，之后资料变更不影响历史消息
type Message struct {
	ID           uint64    `json:"id"`
	Conversation string    `json:"conversation"`
	SenderID     string    `json:"sender_id"`
	SenderName   string    `json:"sender_name"`
	SenderAvatar string    `json:"sender_avatar"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"created_at"`
}

// Sender 发送时的资料快照
type Sender struct {
	ID     string
	Name   string
	Avatar string
}

// SenderOf 由资料生成发送者快照
func SenderOf(p Profile) Sender {
	return Sender{ID: p.ID, Name: p.Name, Avatar: p.Avatar}
}

// DirectKeySep 私聊会话key分隔符，用户ID中不允许出现
const DirectKeySep = "|"

// DirectKey 私聊会话key：min(a,b)|max(a,b)，与参数顺序无关
func DirectKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + DirectKeySep + b
}

// ParseDirectKey 拆分私聊会话key
func ParseDirectKey(key string) (string, string, bool) {
	a, b, ok := strings.Cut(key, DirectKeySep)
	if !ok || a == "" || b == "" {
		return "", "", false
	}
	return a, b, true
}

// ChatOption ChatStore 可选配置
type ChatOption func(*ChatStore)

// WithClock 替换时间源（测试用）
func WithClock(now func() time.Time) ChatOption {
	return func(s *ChatStore) { s.now = now }
}

// WithMaxLength 限制单条消息的最大字符数，0 表示不限制
func WithMaxLength(n int) ChatOption {
	return func(s *ChatStore) { s.maxLen = n }
}

// ChatStore 只追加的会话消息存储
// 每个会话按发送顺序保存；消息ID在整个 store 内单调递增
type ChatStore struct {
	pub    sync.Mutex // 追加与通知串行执行，推送顺序即消息ID顺序
	mu     sync.RWMutex
	prefix string
	seq    uint64
	convos map[string][]Message
	broker *Broker
	now    func() time.Time
	maxLen int
}

// NewChatStore 创建会话存储，prefix 用于区分 broker 上的 topic
func NewChatStore(prefix string, broker *Broker, opts ...ChatOption) *ChatStore {
	s := &ChatStore{
		prefix: prefix,
		convos: make(map[string][]Message),
		broker: broker,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Topic 会话在 broker 上的 topic
func (s *ChatStore) Topic(key string) string {
	return s.prefix + key
}

// Send 追加一条消息
// 去除首尾空白后为空、会话key为空或超过长度限制时不做任何操作
func (s *ChatStore) Send(key string, from Sender, text string) (Message, bool) {
	text = strings.TrimSpace(text)
	if key == "" || text == "" {
		return Message{}, false
	}
	if s.maxLen > 0 && utf8.RuneCountInString(text) > s.maxLen {
		return Message{}, false
	}

	s.pub.Lock()
	defer s.pub.Unlock()
	s.mu.Lock()
	s.seq++
	msg := Message{
		ID:           s.seq,
		Conversation: key,
		SenderID:     from.ID,
		SenderName:   from.Name,
		SenderAvatar: from.Avatar,
		Text:         text,
		CreatedAt:    s.now(),
	}
	s.convos[key] = append(s.convos[key], msg)
	s.mu.Unlock()

	if s.broker != nil {
		m := msg
		s.broker.Notify(Notification{Topic: s.Topic(key), Kind: KindMessage, Message: &m})
	}
	return msg, true
}

// Messages 返回会话消息副本（发送顺序）
func (s *ChatStore) Messages(key string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.convos[key]
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// Page 分页读取，afterID 之后最多 limit 条
func (s *ChatStore) Page(key string, afterID uint64, limit int) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.convos[key]
	start := sort.Search(len(msgs), func(i int) bool { return msgs[i].ID > afterID })
	end := len(msgs)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	out := make([]Message, end-start)
	copy(out, msgs[start:end])
	return out
}

// Len 会话消息数
func (s *ChatStore) Len(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.convos[key])
}

// Last 会话最后一条消息
func (s *ChatStore) Last(key string) (Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.convos[key]
	if len(msgs) == 0 {
		return Message{}, false
	}
	return msgs[len(msgs)-1], true
}

// Keys 所有非空会话的key
func (s *ChatStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.convos))
	for k := range s.convos {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Subscribe 订阅会话，返回取消订阅函数
func (s *ChatStore) Subscribe(key string, fn func(Message)) func() {
	if s.broker == nil || fn == nil {
		return func() {}
	}
	return s.broker.Subscribe(s.Topic(key), func(n Notification) {
		if n.Message != nil {
			fn(*n.Message)
		}
	})
}

// Restore 按原ID和时间写回历史消息，不发通知
// 消息必须按ID升序写入，否则被忽略
func (s *ChatStore) Restore(msg Message) bool {
	if msg.Conversation == "" || msg.ID == 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.convos[msg.Conversation]
	if n := len(msgs); n > 0 && msgs[n-1].ID >= msg.ID {
		return false
	}
	s.convos[msg.Conversation] = append(msgs, msg)
	if msg.ID > s.seq {
		s.seq = msg.ID
	}
	return true
}
