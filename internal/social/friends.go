package social

import (
	"sort"
	"sync"
)

// 好友变更动作
const (
	FriendRequested = "requested" // 发出好友请求
	FriendCanceled  = "canceled"  // 撤回好友请求
	FriendAccepted  = "accepted"  // 接受请求，建立双向好友关系
	FriendDeclined  = "declined"  // 拒绝请求
	FriendRemoved   = "removed"   // 解除好友关系
)

// FriendChange 好友关系变更，From 为发起动作的用户
type FriendChange struct {
	Action string `json:"action"`
	From   string `json:"from"`
	To     string `json:"to"`
}

// UserTopic 用户个人 topic，好友相关通知发到双方的 topic
func UserTopic(userID string) string { return "user:" + userID }

type idSet map[string]struct{}

func (s idSet) sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// FriendGraph 好友关系图
// friends 为邻接集合，A∈friends[B] 当且仅当 B∈friends[A]
// outgoing/incoming 是同一条待处理请求边的两个索引，只通过 setPending/clearPending 修改
type FriendGraph struct {
	pub      sync.Mutex // 修改与通知作为一个整体串行执行，通知顺序即修改顺序
	mu       sync.RWMutex
	friends  map[string]idSet
	outgoing map[string]idSet // requester -> targets
	incoming map[string]idSet // target -> requesters
	broker   *Broker
}

// NewFriendGraph 创建好友关系图，broker 可为 nil
func NewFriendGraph(broker *Broker) *FriendGraph {
	return &FriendGraph{
		friends:  make(map[string]idSet),
		outgoing: make(map[string]idSet),
		incoming: make(map[string]idSet),
		broker:   broker,
	}
}

func add(m map[string]idSet, k, v string) {
	set, ok := m[k]
	if !ok {
		set = make(idSet)
		m[k] = set
	}
	set[v] = struct{}{}
}

func del(m map[string]idSet, k, v string) {
	set, ok := m[k]
	if !ok {
		return
	}
	delete(set, v)
	if len(set) == 0 {
		delete(m, k)
	}
}

func has(m map[string]idSet, k, v string) bool {
	_, ok := m[k][v]
	return ok
}

// 以下 4 个方法要求调用方持有写锁
func (g *FriendGraph) link(a, b string) {
	add(g.friends, a, b)
	add(g.friends, b, a)
}

func (g *FriendGraph) unlink(a, b string) {
	del(g.friends, a, b)
	del(g.friends, b, a)
}

func (g *FriendGraph) setPending(from, to string) {
	add(g.outgoing, from, to)
	add(g.incoming, to, from)
}

func (g *FriendGraph) clearPending(from, to string) {
	del(g.outgoing, from, to)
	del(g.incoming, to, from)
}

// SendRequest 发送好友请求
// 目标为空/自己、已是好友、或已有待处理的请求时不做任何操作
func (g *FriendGraph) SendRequest(me, target string) bool {
	if me == "" || target == "" || me == target {
		return false
	}
	g.pub.Lock()
	defer g.pub.Unlock()
	g.mu.Lock()
	if has(g.friends, me, target) || has(g.outgoing, me, target) {
		g.mu.Unlock()
		return false
	}
	g.setPending(me, target)
	g.mu.Unlock()

	g.publish(FriendChange{Action: FriendRequested, From: me, To: target})
	return true
}

// CancelRequest 撤回自己发出的好友请求
func (g *FriendGraph) CancelRequest(me, target string) bool {
	g.pub.Lock()
	defer g.pub.Unlock()
	g.mu.Lock()
	if !has(g.outgoing, me, target) {
		g.mu.Unlock()
		return false
	}
	g.clearPending(me, target)
	g.mu.Unlock()

	g.publish(FriendChange{Action: FriendCanceled, From: me, To: target})
	return true
}

// AcceptRequest 接受 from 发来的请求
// 删除请求并在同一临界区内建立双向好友关系；若双方互发过请求，反向请求一并清除
func (g *FriendGraph) AcceptRequest(me, from string) bool {
	g.pub.Lock()
	defer g.pub.Unlock()
	g.mu.Lock()
	if !has(g.incoming, me, from) {
		g.mu.Unlock()
		return false
	}
	g.clearPending(from, me)
	g.clearPending(me, from)
	g.link(me, from)
	g.mu.Unlock()

	g.publish(FriendChange{Action: FriendAccepted, From: me, To: from})
	return true
}

// DeclineRequest 拒绝 from 发来的请求，不建立关系
func (g *FriendGraph) DeclineRequest(me, from string) bool {
	g.pub.Lock()
	defer g.pub.Unlock()
	g.mu.Lock()
	if !has(g.incoming, me, from) {
		g.mu.Unlock()
		return false
	}
	g.clearPending(from, me)
	g.mu.Unlock()

	g.publish(FriendChange{Action: FriendDeclined, From: me, To: from})
	return true
}

// RemoveFriend 解除好友关系（双向）
func (g *FriendGraph) RemoveFriend(me, target string) bool {
	g.pub.Lock()
	defer g.pub.Unlock()
	g.mu.Lock()
	if !has(g.friends, me, target) {
		g.mu.Unlock()
		return false
	}
	g.unlink(me, target)
	g.mu.Unlock()

	g.publish(FriendChange{Action: FriendRemoved, From: me, To: target})
	return true
}

// Unfriend RemoveFriend 的别名
func (g *FriendGraph) Unfriend(me, target string) bool {
	return g.RemoveFriend(me, target)
}

// IsFriends me 与 other 是否为好友
func (g *FriendGraph) IsFriends(me, other string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return has(g.friends, me, other)
}

// IsPendingOutgoing me 是否已向 target 发出待处理请求
func (g *FriendGraph) IsPendingOutgoing(me, target string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return has(g.outgoing, me, target)
}

// CanAcceptFrom me 是否有来自 from 的待处理请求
func (g *FriendGraph) CanAcceptFrom(me, from string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return has(g.incoming, me, from)
}

// FriendsOf 返回用户的好友列表（按ID排序）
func (g *FriendGraph) FriendsOf(userID string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.friends[userID].sorted()
}

// Incoming 收到的待处理请求
func (g *FriendGraph) Incoming(me string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.incoming[me].sorted()
}

// Outgoing 发出的待处理请求
func (g *FriendGraph) Outgoing(me string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.outgoing[me].sorted()
}

// Relation 以 me 的视角描述与 other 的关系
func (g *FriendGraph) Relation(me, other string) string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	switch {
	case me == other:
		return "self"
	case has(g.friends, me, other):
		return "friends"
	case has(g.outgoing, me, other):
		return "outgoing"
	case has(g.incoming, me, other):
		return "incoming"
	default:
		return "none"
	}
}

// SeedFriendship 直接建立好友关系，不发通知（用于种子数据/归档恢复）
func (g *FriendGraph) SeedFriendship(a, b string) {
	if a == "" || b == "" || a == b {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clearPending(a, b)
	g.clearPending(b, a)
	g.link(a, b)
}

// SeedRequest 直接写入待处理请求，不发通知
func (g *FriendGraph) SeedRequest(from, to string) {
	if from == "" || to == "" || from == to {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if has(g.friends, from, to) {
		return
	}
	g.setPending(from, to)
}

// Edges 返回所有好友边（每对只出现一次，a<b）
func (g *FriendGraph) Edges() [][2]string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out [][2]string
	for a, set := range g.friends {
		for b := range set {
			if a < b {
				out = append(out, [2]string{a, b})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out
}

// Requests 返回所有待处理请求 (from, to)，按 from、to 排序
func (g *FriendGraph) Requests() [][2]string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out [][2]string
	for from, set := range g.outgoing {
		for _, to := range set.sorted() {
			out = append(out, [2]string{from, to})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out
}

func (g *FriendGraph) publish(c FriendChange) {
	if g.broker == nil {
		return
	}
	change := c
	g.broker.Notify(Notification{Topic: UserTopic(c.From), Kind: KindFriend, Friend: &change}, UserTopic(c.To))
}
