package service

import (
	"context"
	"testing"
	"time"

	"event-social/config"
	"event-social/internal/model"
	"event-social/internal/social"
	"event-social/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubUserStore 记录写入的用户
type stubUserStore struct {
	created []*model.User
	updated []*model.User
}

func (s *stubUserStore) Create(_ context.Context, u *model.User) error {
	s.created = append(s.created, u)
	return nil
}

func (s *stubUserStore) UpdateProfile(_ context.Context, u *model.User) error {
	s.updated = append(s.updated, u)
	return nil
}

func newTestJWT() *jwt.JWTService {
	return jwt.NewJWTService(config.JWTConfig{Secret: "service-test-secret", ExpireTime: time.Hour, Issuer: "event-social"})
}

// newTestSession 三个预置用户：user123 / user456 / user789
func newTestSession(t *testing.T) *social.Session {
	t.Helper()
	s := social.NewSession(social.Options{MaxMessageLength: 100})
	t.Cleanup(s.Close)
	for _, p := range []social.Profile{
		{ID: "user123", Username: "apegeeky", Name: "Ape Geeky"},
		{ID: "user456", Username: "alice", Name: "Alice"},
		{ID: "user789", Username: "bob", Name: "Bob"},
	} {
		_, err := s.Directory.Register(p)
		require.NoError(t, err)
	}
	return s
}

func TestUserService_RegisterAndLogin(t *testing.T) {
	session := newTestSession(t)
	store := &stubUserStore{}
	jwtService := newTestJWT()
	svc := NewUserService(session, jwtService, store)

	p, token, err := svc.Register(context.Background(), "  New__Person! ", "secret123", "")
	require.NoError(t, err)
	assert.Equal(t, "new_person", p.Username)
	assert.Equal(t, "new_person", p.Name, "name defaults to username")
	assert.NotEmpty(t, p.ID)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, p.ID, claims.Subject)

	require.Len(t, store.created, 1)
	assert.NotEmpty(t, store.created[0].PasswordHash)
	assert.NotEqual(t, "secret123", store.created[0].PasswordHash)

	_, _, err = svc.Register(context.Background(), "new_person", "secret123", "")
	assert.ErrorIs(t, err, social.ErrUsernameTaken)

	_, _, err = svc.Register(context.Background(), "1abc", "secret123", "")
	assert.ErrorIs(t, err, social.ErrUsernameStart)

	_, _, err = svc.Register(context.Background(), "valid_name", "123", "")
	assert.Error(t, err)

	got, token, err := svc.Login("NEW_PERSON", "secret123")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.NotEmpty(t, token)

	_, _, err = svc.Login("new_person", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login("nobody", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login("alice", "anything")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "seed users without password cannot log in")
}

func TestUserService_UpdateProfile(t *testing.T) {
	session := newTestSession(t)
	store := &stubUserStore{}
	svc := NewUserService(session, newTestJWT(), store)

	bio := "  Climber.  "
	p, err := svc.UpdateProfile(context.Background(), "user456", social.ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Climber.", p.Bio)
	assert.Equal(t, "Alice", p.Name)
	require.Len(t, store.updated, 1)
	assert.Equal(t, "Climber.", store.updated[0].Bio)

	_, err = svc.UpdateProfile(context.Background(), "missing", social.ProfileUpdate{Bio: &bio})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Profile("missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Len(t, svc.List(), 3)
}

func TestUserService_ApplySeed(t *testing.T) {
	session := social.NewSession(social.Options{})
	t.Cleanup(session.Close)
	svc := NewUserService(session, newTestJWT(), nil)

	seed, err := LoadSeed("../../config/seed.example.yaml")
	require.NoError(t, err)
	require.NoError(t, svc.ApplySeed(seed))

	_, _, err = svc.Login("alice", "alice123")
	assert.NoError(t, err)
	_, _, err = svc.Login("bob", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.True(t, session.Friends.IsFriends("user123", "user789"))
	assert.True(t, session.Friends.CanAcceptFrom("user123", "user456"))
	assert.Len(t, session.Events.Feed(), 2)

	_, err = LoadSeed("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestFriendService(t *testing.T) {
	svc := NewFriendService(newTestSession(t))

	_, err := svc.SendRequest("user123", "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)

	changed, err := svc.SendRequest("user123", "user456")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = svc.SendRequest("user123", "user456")
	require.NoError(t, err)
	assert.False(t, changed, "duplicate request is a no-op")

	incoming, outgoing := svc.Requests("user456")
	require.Len(t, incoming, 1)
	assert.Equal(t, "user123", incoming[0].ID)
	assert.Empty(t, outgoing)

	rel, err := svc.Relation("user456", "user123")
	require.NoError(t, err)
	assert.Equal(t, "incoming", rel)

	changed, err = svc.AcceptRequest("user456", "user123")
	require.NoError(t, err)
	assert.True(t, changed)

	friends, err := svc.Friends("user123")
	require.NoError(t, err)
	require.Len(t, friends, 1)
	assert.Equal(t, "alice", friends[0].Username)

	changed, err = svc.DeclineRequest("user456", "user123")
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = svc.RemoveFriend("user123", "user456")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = svc.CancelRequest("user123", "user456")
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = svc.Friends("ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestEventService(t *testing.T) {
	svc := NewEventService(newTestSession(t), 2)

	_, err := svc.Create("ghost", social.NewEvent{Title: "t", Description: "d", Date: "x", Location: "l"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Create("user123", social.NewEvent{Title: "missing fields"})
	assert.ErrorIs(t, err, social.ErrEventInvalid)

	e, err := svc.Create("user123", social.NewEvent{
		Title: "Bonfire", Description: "s'mores", Date: "July 5", Location: "Backyard", Capacity: social.Capacity(2),
	})
	require.NoError(t, err)

	changed, err := svc.Join(e.ID, "user456")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = svc.Join(e.ID, "user789")
	require.NoError(t, err)
	assert.False(t, changed, "event is full")

	_, err = svc.Join("nope", "user789")
	assert.ErrorIs(t, err, ErrEventNotFound)

	attendees, err := svc.Attendees(e.ID)
	require.NoError(t, err)
	require.Len(t, attendees, 2)
	assert.Equal(t, "user123", attendees[0].ID)

	assert.Len(t, svc.Mine("user456"), 1)
	assert.Empty(t, svc.Mine("user789"))

	for _, text := range []string{"one", "two", "three"} {
		_, ok, err := svc.SendMessage(e.ID, "user456", text)
		require.NoError(t, err)
		require.True(t, ok)
	}
	_, ok, err := svc.SendMessage(e.ID, "user456", "   ")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = svc.SendMessage(e.ID, "user789", "let me in")
	assert.ErrorIs(t, err, ErrNotMember)
	_, err = svc.Messages(e.ID, "user789", 0, 0)
	assert.ErrorIs(t, err, ErrNotMember)
	assert.Equal(t, 3, svc.session.EventChat.Len(e.ID), "refused message is not stored")

	msgs, err := svc.Messages(e.ID, "user456", 0, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2, "default page size keeps the newest")
	assert.Equal(t, "two", msgs[0].Text)
	assert.Equal(t, "three", msgs[1].Text)

	msgs, err = svc.Messages(e.ID, "user456", msgs[0].ID, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "three", msgs[0].Text)

	changed, err = svc.Leave(e.ID, "user456")
	require.NoError(t, err)
	assert.True(t, changed)
	_, _, err = svc.SendMessage(e.ID, "user456", "bye")
	assert.ErrorIs(t, err, ErrNotMember, "left attendees lose chat access")

	_, err = svc.Messages("nope", "user456", 0, 0)
	assert.ErrorIs(t, err, ErrEventNotFound)
}
