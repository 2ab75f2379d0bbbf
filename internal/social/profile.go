package social

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"
)

// MediaSlots 个人主页媒体格子数量
const MediaSlots = 9

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrTooManyMedia    = errors.New("too many media items")
	ErrMissingID       = errors.New("profile id is required")
	ErrInvalidID       = errors.New("profile id must not contain '|'")
)

// Profile 用户资料
// Media 固定 MediaSlots 个格子，空字符串表示空格子
type Profile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio"`
	Avatar    string    `json:"avatar"`
	Media     []string  `json:"media"`
	CreatedAt time.Time `json:"created_at"`
}

func (p Profile) clone() Profile {
	media := make([]string, MediaSlots)
	copy(media, p.Media)
	p.Media = media
	return p
}

// ProfileUpdate 资料修改，nil 字段保持不变
type ProfileUpdate struct {
	Name   *string
	Bio    *string
	Avatar *string
	Media  []string
}

// Directory 用户资料目录
type Directory struct {
	mu         sync.RWMutex
	byID       map[string]Profile
	byUsername map[string]string
}

// NewDirectory 创建资料目录
func NewDirectory() *Directory {
	return &Directory{
		byID:       make(map[string]Profile),
		byUsername: make(map[string]string),
	}
}

// Register 新增用户资料，用户名必须合法且唯一
func (d *Directory) Register(p Profile) (Profile, error) {
	if p.ID == "" {
		return Profile{}, ErrMissingID
	}
	if strings.Contains(p.ID, DirectKeySep) {
		return Profile{}, ErrInvalidID
	}
	if err := ValidateUsername(p.Username); err != nil {
		return Profile{}, err
	}
	if len(p.Media) > MediaSlots {
		return Profile{}, ErrTooManyMedia
	}
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		p.Name = p.Username
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p = p.clone()

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.byID[p.ID]; ok {
		return Profile{}, ErrProfileExists
	}
	if _, ok := d.byUsername[p.Username]; ok {
		return Profile{}, ErrUsernameTaken
	}
	d.byID[p.ID] = p
	d.byUsername[p.Username] = p.ID
	return p.clone(), nil
}

// Get 按ID获取资料
func (d *Directory) Get(id string) (Profile, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	p, ok := d.byID[id]
	if !ok {
		return Profile{}, false
	}
	return p.clone(), true
}

// Exists 用户是否存在
func (d *Directory) Exists(id string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.byID[id]
	return ok
}

// ByUsername 按用户名获取资料
func (d *Directory) ByUsername(username string) (Profile, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	id, ok := d.byUsername[username]
	if !ok {
		return Profile{}, false
	}
	return d.byID[id].clone(), true
}

// List 所有资料，按用户名排序
func (d *Directory) List() []Profile {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Profile, 0, len(d.byID))
	for _, p := range d.byID {
		out = append(out, p.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

// Update 修改资料（用户名不可修改）
func (d *Directory) Update(id string, upd ProfileUpdate) (Profile, error) {
	if len(upd.Media) > MediaSlots {
		return Profile{}, ErrTooManyMedia
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.byID[id]
	if !ok {
		return Profile{}, ErrProfileNotFound
	}
	if upd.Name != nil {
		if name := strings.TrimSpace(*upd.Name); name != "" {
			p.Name = name
		}
	}
	if upd.Bio != nil {
		p.Bio = strings.TrimSpace(*upd.Bio)
	}
	if upd.Avatar != nil {
		p.Avatar = *upd.Avatar
	}
	if upd.Media != nil {
		p.Media = upd.Media
	}
	p = p.clone()
	d.byID[id] = p
	return p.clone(), nil
}

// Sender 当前资料的发送者快照
func (d *Directory) Sender(id string) (Sender, bool) {
	p, ok := d.Get(id)
	if !ok {
		return Sender{}, false
	}
	return SenderOf(p), true
}
