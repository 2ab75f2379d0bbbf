package social

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// 活动容量规则：未填写默认 5，最少 2
const (
	DefaultCapacity = 5
	MinCapacity     = 2
)

// 活动变更动作
const (
	EventCreated = "created"
	EventJoined  = "joined"
	EventLeft    = "left"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrEventInvalid  = errors.New("title, date, location and description are required")
)

// Event 活动
type Event struct {
	ID          string    `json:"id"`
	CreatorID   string    `json:"creator_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        string    `json:"date"`
	Location    string    `json:"location"`
	Image       string    `json:"image"`
	Capacity    int       `json:"capacity"`
	Attendees   []string  `json:"attendees"`
	CreatedAt   time.Time `json:"created_at"`
}

func (e *Event) clone() Event {
	out := *e
	out.Attendees = append([]string(nil), e.Attendees...)
	return out
}

func (e *Event) attending(userID string) bool {
	for _, id := range e.Attendees {
		if id == userID {
			return true
		}
	}
	return false
}

// Full 是否已满员
func (e Event) Full() bool {
	return e.Capacity > 0 && len(e.Attendees) >= e.Capacity
}

// NewEvent 创建活动的输入
type NewEvent struct {
	Title       string
	Description string
	Date        string
	Location    string
	Image       string
	Capacity    *int // nil 表示未填写
}

// Capacity 构造 NewEvent.Capacity
func Capacity(n int) *int { return &n }

// EventChange 活动变更通知
type EventChange struct {
	Action  string `json:"action"`
	EventID string `json:"event_id"`
	UserID  string `json:"user_id"`
}

// EventTopic 活动 topic
func EventTopic(eventID string) string { return "event:" + eventID }

// FeedTopic 活动流 topic，所有活动创建都会通知
const FeedTopic = "feed"

// EventOption EventStore 可选配置
type EventOption func(*EventStore)

// WithEventIDs 替换活动ID生成器
func WithEventIDs(next func() string) EventOption {
	return func(s *EventStore) { s.newID = next }
}

// WithEventClock 替换时间源
func WithEventClock(now func() time.Time) EventOption {
	return func(s *EventStore) { s.now = now }
}

// EventStore 活动存储，feed 按创建时间倒序
type EventStore struct {
	pub    sync.Mutex // 修改与通知串行执行
	mu     sync.RWMutex
	feed   []*Event
	byID   map[string]*Event
	broker *Broker
	newID  func() string
	now    func() time.Time
	seq    uint64
}

// NewEventStore 创建活动存储
func NewEventStore(broker *Broker, opts ...EventOption) *EventStore {
	s := &EventStore{
		byID:   make(map[string]*Event),
		broker: broker,
		now:    time.Now,
	}
	s.newID = func() string {
		s.seq++
		return strconv.FormatUint(s.seq, 10)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create 创建活动，创建者自动成为第一个参与者
func (s *EventStore) Create(creatorID string, in NewEvent) (Event, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Date = strings.TrimSpace(in.Date)
	in.Location = strings.TrimSpace(in.Location)
	in.Description = strings.TrimSpace(in.Description)
	if creatorID == "" || in.Title == "" || in.Date == "" || in.Location == "" || in.Description == "" {
		return Event{}, ErrEventInvalid
	}
	// 未填写时取默认值，填写了则至少为 MinCapacity（0 和负数也按 MinCapacity）
	capacity := DefaultCapacity
	if in.Capacity != nil {
		capacity = *in.Capacity
		if capacity < MinCapacity {
			capacity = MinCapacity
		}
	}

	s.pub.Lock()
	defer s.pub.Unlock()
	s.mu.Lock()
	e := &Event{
		ID:          s.newID(),
		CreatorID:   creatorID,
		Title:       in.Title,
		Description: in.Description,
		Date:        in.Date,
		Location:    in.Location,
		Image:       strings.TrimSpace(in.Image),
		Capacity:    capacity,
		Attendees:   []string{creatorID},
		CreatedAt:   s.now(),
	}
	if _, dup := s.byID[e.ID]; dup {
		s.mu.Unlock()
		return Event{}, errors.New("duplicate event id " + e.ID)
	}
	s.byID[e.ID] = e
	s.feed = append([]*Event{e}, s.feed...)
	out := e.clone()
	s.mu.Unlock()

	s.publish(EventChange{Action: EventCreated, EventID: out.ID, UserID: creatorID}, FeedTopic)
	return out, nil
}

// Join 加入活动；活动不存在、已加入或已满员时不做任何操作
func (s *EventStore) Join(eventID, userID string) bool {
	if userID == "" {
		return false
	}
	s.pub.Lock()
	defer s.pub.Unlock()
	s.mu.Lock()
	e, ok := s.byID[eventID]
	if !ok || e.attending(userID) || e.Full() {
		s.mu.Unlock()
		return false
	}
	e.Attendees = append(e.Attendees, userID)
	s.mu.Unlock()

	s.publish(EventChange{Action: EventJoined, EventID: eventID, UserID: userID})
	return true
}

// Leave 退出活动；未参加时不做任何操作
func (s *EventStore) Leave(eventID, userID string) bool {
	s.pub.Lock()
	defer s.pub.Unlock()
	s.mu.Lock()
	e, ok := s.byID[eventID]
	if !ok || !e.attending(userID) {
		s.mu.Unlock()
		return false
	}
	rest := make([]string, 0, len(e.Attendees)-1)
	for _, id := range e.Attendees {
		if id != userID {
			rest = append(rest, id)
		}
	}
	e.Attendees = rest
	s.mu.Unlock()

	s.publish(EventChange{Action: EventLeft, EventID: eventID, UserID: userID})
	return true
}

// Get 按ID获取活动
func (s *EventStore) Get(eventID string) (Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byID[eventID]
	if !ok {
		return Event{}, false
	}
	return e.clone(), true
}

// IsMember 用户是否参加了活动
func (s *EventStore) IsMember(eventID, userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byID[eventID]
	return ok && e.attending(userID)
}

// Feed 活动流（最新在前）
func (s *EventStore) Feed() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, 0, len(s.feed))
	for _, e := range s.feed {
		out = append(out, e.clone())
	}
	return out
}

// EventsOf 用户参加的活动
func (s *EventStore) EventsOf(userID string) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.feed {
		if e.attending(userID) {
			out = append(out, e.clone())
		}
	}
	return out
}

// Restore 写回已有活动（保留ID、参与者和创建时间），不发通知
func (s *EventStore) Restore(e Event) bool {
	if e.ID == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[e.ID]; ok {
		return false
	}
	// 避免默认ID生成器与写回的ID冲突
	if n, err := strconv.ParseUint(e.ID, 10, 64); err == nil && n > s.seq {
		s.seq = n
	}
	restored := e.clone()
	s.byID[e.ID] = &restored
	s.feed = append(s.feed, &restored)
	sort.SliceStable(s.feed, func(i, j int) bool {
		return s.feed[i].CreatedAt.After(s.feed[j].CreatedAt)
	})
	return true
}

func (s *EventStore) publish(c EventChange, extra ...string) {
	if s.broker == nil {
		return
	}
	s.broker.Notify(Notification{Topic: EventTopic(c.EventID), Kind: KindEvent, Event: &c}, extra...)
}
