package social

import (
	"sync"
)

// 通知类型
const (
	KindMessage = "message" // 会话新增消息
	KindFriend  = "friend"  // 好友关系/好友请求变化
	KindEvent   = "event"   // 活动创建/加入/退出
)

// Notification 广播给订阅者的变更通知
// 只有与 Kind 对应的字段会被填充
type Notification struct {
	Topic   string
	Kind    string
	Message *Message
	Friend  *FriendChange
	Event   *EventChange
}

// Listener 订阅回调，在变更完成后同步调用
// 回调可以读取 store，但不能调用同一 store 的修改操作（修改与通知串行执行）
type Listener func(Notification)

type subscription struct {
	id uint64
	fn Listener
}

// Broker 按 topic 分发通知的发布/订阅中心
// 与任何渲染或传输方式解耦，WebSocket、归档等都只是订阅者
type Broker struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string][]subscription
	any    []subscription // 订阅所有 topic（归档等）
	closed bool
}

// NewBroker 创建Broker实例
func NewBroker() *Broker {
	return &Broker{subs: make(map[string][]subscription)}
}

// Subscribe 订阅指定 topic，返回取消订阅函数（可重复调用）
func (b *Broker) Subscribe(topic string, fn Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || fn == nil {
		return func() {}
	}
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, fn: fn})
	return func() { b.remove(topic, id) }
}

// SubscribeAll 订阅所有 topic
func (b *Broker) SubscribeAll(fn Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed || fn == nil {
		return func() {}
	}
	b.nextID++
	id := b.nextID
	b.any = append(b.any, subscription{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.any = without(b.any, id)
	}
}

func (b *Broker) remove(topic string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rest := without(b.subs[topic], id)
	if len(rest) == 0 {
		delete(b.subs, topic)
		return
	}
	b.subs[topic] = rest
}

func without(subs []subscription, id uint64) []subscription {
	for i, s := range subs {
		if s.id == id {
			out := make([]subscription, 0, len(subs)-1)
			out = append(out, subs[:i]...)
			return append(out, subs[i+1:]...)
		}
	}
	return subs
}

// Notify 同步通知 n.Topic 及 extra 中各 topic 的订阅者，全局订阅者只通知一次
// 回调在锁外执行，回调内部可以再次读取 store 或取消订阅
func (b *Broker) Notify(n Notification, extra ...string) {
	type delivery struct {
		fn    Listener
		topic string
	}
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return
	}
	var deliveries []delivery
	for _, topic := range append([]string{n.Topic}, extra...) {
		for _, s := range b.subs[topic] {
			deliveries = append(deliveries, delivery{fn: s.fn, topic: topic})
		}
	}
	for _, s := range b.any {
		deliveries = append(deliveries, delivery{fn: s.fn, topic: n.Topic})
	}
	b.mu.RUnlock()

	for _, d := range deliveries {
		msg := n
		msg.Topic = d.topic
		d.fn(msg)
	}
}

// Subscribers 返回 topic 当前的订阅者数量
func (b *Broker) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}

// Close 清空所有订阅，之后的通知全部丢弃
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.subs = make(map[string][]subscription)
	b.any = nil
}
