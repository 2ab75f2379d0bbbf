package repository

import (
	"context"
	"testing"
	"time"

	"event-social/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	orm, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: true},
	})
	require.NoError(t, err)
	sqlDB, err := orm.DB()
	require.NoError(t, err)
	// 每个连接都是独立的内存库，固定为一个连接
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, orm.AutoMigrate(model.All()...))
	return orm
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	first := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, &model.User{ID: "u2", Username: "bob", Name: "Bob", CreatedAt: first.Add(time.Hour)}))
	require.NoError(t, repo.Create(ctx, &model.User{ID: "u1", Username: "alice", Name: "Alice", PasswordHash: "h", CreatedAt: first}))
	assert.Error(t, repo.Create(ctx, &model.User{ID: "u3", Username: "alice"}), "username unique")

	require.NoError(t, repo.UpdateProfile(ctx, &model.User{ID: "u1", Name: "Alice A", Bio: "hi", Media: []string{"a.png", ""}}))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	got := users[0]
	assert.Equal(t, "u1", got.ID, "registration order")
	assert.Equal(t, "Alice A", got.Name)
	assert.Equal(t, "hi", got.Bio)
	assert.Equal(t, []string{"a.png", ""}, got.Media)
	assert.Equal(t, "h", got.PasswordHash, "password untouched")

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestFriendshipRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewFriendshipRepository(newTestDB(t))

	statuses := func() map[[2]string]string {
		rows, err := repo.List(ctx)
		require.NoError(t, err)
		out := make(map[[2]string]string)
		for _, r := range rows {
			out[[2]string{r.UserID, r.FriendID}] = r.Status
		}
		return out
	}

	require.NoError(t, repo.SavePending(ctx, "u1", "u2"))
	require.NoError(t, repo.SavePending(ctx, "u1", "u2"))
	require.NoError(t, repo.SavePending(ctx, "u2", "u1"))
	require.NoError(t, repo.SavePending(ctx, "u3", "u1"))
	assert.Len(t, statuses(), 3)

	require.NoError(t, repo.Accept(ctx, "u2", "u1"))
	assert.Equal(t, map[[2]string]string{
		{"u1", "u2"}: model.FriendshipAccepted,
		{"u3", "u1"}: model.FriendshipPending,
	}, statuses())

	require.NoError(t, repo.DeletePending(ctx, "u3", "u1"))
	require.NoError(t, repo.Remove(ctx, "u2", "u1"))
	assert.Empty(t, statuses())
}

func TestEventRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(newTestDB(t))
	base := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, &model.Event{
		ID: "e1", CreatorID: "u1", Title: "Hike", Capacity: 5, CreatedAt: base,
		Attendees: []model.EventAttendee{{UserID: "u1"}},
	}))
	require.NoError(t, repo.Create(ctx, &model.Event{
		ID: "e2", CreatorID: "u2", Title: "Picnic", Capacity: 3, CreatedAt: base.Add(time.Hour),
		Attendees: []model.EventAttendee{{UserID: "u2"}},
	}))
	require.NoError(t, repo.AddAttendee(ctx, "e1", "u3"))
	require.NoError(t, repo.AddAttendee(ctx, "e1", "u2"))
	require.NoError(t, repo.AddAttendee(ctx, "e1", "u3"))
	require.NoError(t, repo.RemoveAttendee(ctx, "e1", "u3"))

	events, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "e2", events[0].ID, "newest first")

	var ids []string
	for _, a := range events[1].Attendees {
		ids = append(ids, a.UserID)
	}
	assert.Equal(t, []string{"u1", "u2"}, ids)
}

func TestMessageRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMessageRepository(newTestDB(t))

	for _, m := range []*model.Message{
		{SessionType: model.SessionDirect, Seq: 2, Conversation: "u1|u2", SenderID: "u2", Content: "second"},
		{SessionType: model.SessionDirect, Seq: 1, Conversation: "u1|u2", SenderID: "u1", Content: "first"},
		{SessionType: model.SessionEvent, Seq: 1, Conversation: "e1", SenderID: "u1", Content: "event"},
	} {
		require.NoError(t, repo.Create(ctx, m))
	}
	assert.Error(t, repo.Create(ctx, &model.Message{SessionType: model.SessionEvent, Seq: 1, Conversation: "e1", SenderID: "u1", Content: "dup"}))

	direct, err := repo.ListBySession(ctx, model.SessionDirect)
	require.NoError(t, err)
	require.Len(t, direct, 2)
	assert.Equal(t, "first", direct[0].Content)
	assert.Equal(t, "second", direct[1].Content)

	event, err := repo.ListBySession(ctx, model.SessionEvent)
	require.NoError(t, err)
	assert.Len(t, event, 1)
}
