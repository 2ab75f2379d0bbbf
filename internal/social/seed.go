package social

import "fmt"

// Seed 启动时导入的初始数据
type Seed struct {
	Profiles    []SeedProfile `yaml:"profiles"`
	Friendships [][2]string   `yaml:"friendships"`
	Requests    []SeedRequest `yaml:"requests"`
	Events      []SeedEvent   `yaml:"events"`
}

// SeedProfile 初始用户
type SeedProfile struct {
	ID       string `yaml:"id"`
	Username string `yaml:"username"`
	Name     string `yaml:"name"`
	Bio      string `yaml:"bio"`
	Avatar   string `yaml:"avatar"`
	Password string `yaml:"password"` // 明文，仅在上层导入凭证时使用
}

// SeedRequest 初始好友请求
type SeedRequest struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// SeedEvent 初始活动，Attendees 之外创建者自动参加
type SeedEvent struct {
	Creator     string   `yaml:"creator"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Date        string   `yaml:"date"`
	Location    string   `yaml:"location"`
	Image       string   `yaml:"image"`
	Capacity    *int     `yaml:"capacity"`
	Attendees   []string `yaml:"attendees"`
}

// Apply 把种子数据写入会话，引用未知用户时返回错误
func (seed Seed) Apply(s *Session) error {
	for _, p := range seed.Profiles {
		if _, err := s.Directory.Register(Profile{
			ID:       p.ID,
			Username: p.Username,
			Name:     p.Name,
			Bio:      p.Bio,
			Avatar:   p.Avatar,
		}); err != nil {
			return fmt.Errorf("seed profile %q: %w", p.ID, err)
		}
	}
	known := func(ids ...string) error {
		for _, id := range ids {
			if !s.Directory.Exists(id) {
				return fmt.Errorf("seed references unknown user %q", id)
			}
		}
		return nil
	}
	for _, f := range seed.Friendships {
		if err := known(f[0], f[1]); err != nil {
			return err
		}
		s.Friends.SeedFriendship(f[0], f[1])
	}
	for _, r := range seed.Requests {
		if err := known(r.From, r.To); err != nil {
			return err
		}
		s.Friends.SeedRequest(r.From, r.To)
	}
	for _, e := range seed.Events {
		if err := known(append([]string{e.Creator}, e.Attendees...)...); err != nil {
			return err
		}
		created, err := s.Events.Create(e.Creator, NewEvent{
			Title:       e.Title,
			Description: e.Description,
			Date:        e.Date,
			Location:    e.Location,
			Image:       e.Image,
			Capacity:    e.Capacity,
		})
		if err != nil {
			return fmt.Errorf("seed event %q: %w", e.Title, err)
		}
		for _, uid := range e.Attendees {
			s.Events.Join(created.ID, uid)
		}
	}
	return nil
}
