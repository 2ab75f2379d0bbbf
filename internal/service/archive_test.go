package service

import (
	"context"
	"testing"

	"event-social/internal/model"
	"event-social/internal/repository"
	"event-social/internal/social"

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
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, orm.AutoMigrate(model.All()...))
	return orm
}

// restart 用同一个数据库创建新会话并恢复
func restart(t *testing.T, orm *gorm.DB) (*social.Session, *UserService, bool) {
	t.Helper()
	session := social.NewSession(social.Options{})
	t.Cleanup(session.Close)
	accounts := NewUserService(session, newTestJWT(), nil)
	restored, err := NewArchiver(orm, session, accounts).Restore(context.Background())
	require.NoError(t, err)
	return session, accounts, restored
}

func TestArchiver_LiveChangesSurviveRestart(t *testing.T) {
	ctx := context.Background()
	orm := newTestDB(t)

	session := social.NewSession(social.Options{})
	t.Cleanup(session.Close)
	archiver := NewArchiver(orm, session, nil)
	accounts := NewUserService(session, newTestJWT(), repository.NewUserRepository(orm))
	archiver.accounts = accounts
	stop := archiver.Start()
	defer stop()

	ape, _, err := accounts.Register(ctx, "apegeeky", "geeky123", "Ape")
	require.NoError(t, err)
	alice, _, err := accounts.Register(ctx, "alice", "alice123", "Alice")
	require.NoError(t, err)
	bob, _, err := accounts.Register(ctx, "bob", "bob12345", "Bob")
	require.NoError(t, err)

	friends := NewFriendService(session)
	_, _ = friends.SendRequest(ape.ID, alice.ID)
	_, _ = friends.AcceptRequest(alice.ID, ape.ID)
	_, _ = friends.SendRequest(bob.ID, ape.ID)
	_, _ = friends.SendRequest(alice.ID, bob.ID)
	_, _ = friends.DeclineRequest(bob.ID, alice.ID)

	events := NewEventService(session, 50)
	e, err := events.Create(ape.ID, social.NewEvent{Title: "Hike", Description: "d", Date: "July 4", Location: "Trail"})
	require.NoError(t, err)
	_, _ = events.Join(e.ID, bob.ID)
	_, _ = events.Join(e.ID, alice.ID)
	_, _ = events.Leave(e.ID, bob.ID)
	_, _, err = events.SendMessage(e.ID, alice.ID, "see you there")
	require.NoError(t, err)

	chat := NewChatService(session, nil, 50)
	_, _, err = chat.Send(ctx, ape.ID, alice.ID, "hi")
	require.NoError(t, err)
	_, _, err = chat.Send(ctx, alice.ID, ape.ID, "hey")
	require.NoError(t, err)

	name := "Alice W"
	_, err = accounts.UpdateProfile(ctx, alice.ID, social.ProfileUpdate{Name: &name})
	require.NoError(t, err)

	restoredSession, restoredAccounts, restored := restart(t, orm)
	require.True(t, restored)

	assert.Len(t, restoredSession.Directory.List(), 3)
	p, ok := restoredSession.Directory.Get(alice.ID)
	require.True(t, ok)
	assert.Equal(t, "Alice W", p.Name)
	_, _, err = restoredAccounts.Login("alice", "alice123")
	assert.NoError(t, err)

	assert.True(t, restoredSession.Friends.IsFriends(ape.ID, alice.ID))
	assert.True(t, restoredSession.Friends.CanAcceptFrom(ape.ID, bob.ID))
	assert.Empty(t, restoredSession.Friends.Incoming(bob.ID), "declined request is gone")

	got, ok := restoredSession.Events.Get(e.ID)
	require.True(t, ok)
	assert.Equal(t, []string{ape.ID, alice.ID}, got.Attendees)

	eventMsgs := restoredSession.EventChat.Messages(e.ID)
	require.Len(t, eventMsgs, 1)
	assert.Equal(t, "see you there", eventMsgs[0].Text)

	direct := restoredSession.DirectChat.Messages(social.DirectKey(ape.ID, alice.ID))
	require.Len(t, direct, 2)
	assert.Equal(t, "hi", direct[0].Text)
	assert.Equal(t, "hey", direct[1].Text)

	next, ok := restoredSession.SendDirectMessage(ape.ID, alice.ID, "after restart")
	require.True(t, ok)
	assert.Greater(t, next.ID, direct[1].ID)
}

func TestArchiver_SaveAllAfterSeed(t *testing.T) {
	orm := newTestDB(t)

	_, _, restored := restart(t, orm)
	assert.False(t, restored, "empty database")

	session := social.NewSession(social.Options{})
	t.Cleanup(session.Close)
	accounts := NewUserService(session, newTestJWT(), nil)
	seed, err := LoadSeed("../../config/seed.example.yaml")
	require.NoError(t, err)
	require.NoError(t, accounts.ApplySeed(seed))
	require.NoError(t, NewArchiver(orm, session, accounts).SaveAll(context.Background()))

	restoredSession, restoredAccounts, restored := restart(t, orm)
	require.True(t, restored)
	assert.Len(t, restoredSession.Directory.List(), 3)
	assert.True(t, restoredSession.Friends.IsFriends("user123", "user789"))
	assert.True(t, restoredSession.Friends.CanAcceptFrom("user123", "user456"))
	assert.Len(t, restoredSession.Events.Feed(), 2)
	_, _, err = restoredAccounts.Login("apegeeky", "geeky123")
	assert.NoError(t, err)
}
