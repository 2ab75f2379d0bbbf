package social

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(Options{})
	t.Cleanup(s.Close)
	for _, p := range []Profile{
		{ID: "user123", Username: "apegeeky", Name: "Ape Geeky"},
		{ID: "user456", Username: "alice", Name: "Alice Wander", Avatar: "avatar2.jpg"},
		{ID: "user789", Username: "bob", Name: "Bob Pine"},
	} {
		_, err := s.Directory.Register(p)
		require.NoError(t, err)
	}
	return s
}

func TestSession_FriendScenario(t *testing.T) {
	s := newTestSession(t)
	a, b := "user456", "user789"

	require.True(t, s.Friends.SendRequest(a, b))
	assert.Contains(t, s.Friends.Incoming(b), a)

	require.True(t, s.Friends.AcceptRequest(b, a))
	assert.Contains(t, s.Friends.FriendsOf(a), b)
	assert.Contains(t, s.Friends.FriendsOf(b), a)

	require.True(t, s.Friends.RemoveFriend(a, b))
	assert.NotContains(t, s.Friends.FriendsOf(a), b)
	assert.NotContains(t, s.Friends.FriendsOf(b), a)
}

func TestSession_EventChatSnapshotsProfile(t *testing.T) {
	s := newTestSession(t)
	e, err := s.Events.Create("user123", hike())
	require.NoError(t, err)

	_, ok := s.SendEventMessage(e.ID, "user456", "hello")
	assert.False(t, ok, "not attending yet")
	require.True(t, s.Events.Join(e.ID, "user456"))
	_, ok = s.SendEventMessage(e.ID, "user456", "hello")
	require.True(t, ok)

	renamed := "Alice W."
	_, err = s.Directory.Update("user456", ProfileUpdate{Name: &renamed})
	require.NoError(t, err)
	_, ok = s.SendEventMessage(e.ID, "user456", "again")
	require.True(t, ok)

	msgs := s.EventChat.Messages(e.ID)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Alice Wander", msgs[0].SenderName)
	assert.Equal(t, "avatar2.jpg", msgs[0].SenderAvatar)
	assert.Equal(t, "Alice W.", msgs[1].SenderName)

	_, ok = s.SendEventMessage("missing", "user456", "x")
	assert.False(t, ok)
	_, ok = s.SendEventMessage(e.ID, "ghost", "x")
	assert.False(t, ok)
}

func TestSession_DirectChat(t *testing.T) {
	s := newTestSession(t)

	var notified []string
	unsub := s.DirectChat.Subscribe(DirectKey("user789", "user123"), func(m Message) {
		notified = append(notified, m.Text)
	})
	defer unsub()

	_, ok := s.SendDirectMessage("user123", "user789", "a")
	assert.False(t, ok, "not friends yet")
	s.Friends.SeedFriendship("user123", "user789")

	_, ok = s.SendDirectMessage("user123", "user789", "a")
	require.True(t, ok)
	_, ok = s.SendDirectMessage("user789", "user123", "b")
	require.True(t, ok)
	_, ok = s.SendDirectMessage("user123", "user789", "   ")
	assert.False(t, ok)
	_, ok = s.SendDirectMessage("user123", "user123", "self")
	assert.False(t, ok)
	_, ok = s.SendDirectMessage("user123", "ghost", "hi")
	assert.False(t, ok)

	assert.Equal(t, []string{"a", "b"}, texts(s.DirectChat.Messages(DirectKey("user123", "user789"))))
	assert.Equal(t, []string{"a", "b"}, notified)
}

func TestSession_CloseDropsSubscriptions(t *testing.T) {
	s := newTestSession(t)
	calls := 0
	s.Friends.SeedFriendship("user123", "user456")
	s.DirectChat.Subscribe(DirectKey("user123", "user456"), func(Message) { calls++ })

	s.Close()
	_, ok := s.SendDirectMessage("user123", "user456", "after close")
	assert.True(t, ok)
	assert.Equal(t, 0, calls)
}

func TestSeed_Apply(t *testing.T) {
	s := NewSession(Options{})
	seed := Seed{
		Profiles: []SeedProfile{
			{ID: "u1", Username: "riley", Name: "Riley Hart"},
			{ID: "u2", Username: "skaterjoe", Name: "Joe Kim"},
			{ID: "u3", Username: "sarah", Name: "Sarah P."},
		},
		Friendships: [][2]string{{"u1", "u2"}},
		Requests:    []SeedRequest{{From: "u3", To: "u1"}},
		Events: []SeedEvent{{
			Creator: "u1", Title: "Bonfire & Jam Night", Description: "guitars",
			Date: "July 5", Location: "Riley's Backyard", Capacity: Capacity(10),
			Attendees: []string{"u2"},
		}},
	}
	require.NoError(t, seed.Apply(s))

	assert.True(t, s.Friends.IsFriends("u2", "u1"))
	assert.True(t, s.Friends.CanAcceptFrom("u1", "u3"))
	feed := s.Events.Feed()
	require.Len(t, feed, 1)
	assert.Equal(t, []string{"u1", "u2"}, feed[0].Attendees)

	bad := Seed{Friendships: [][2]string{{"u1", "nobody"}}}
	assert.Error(t, bad.Apply(s))
}

func TestSession_UnfriendStopsDirectChat(t *testing.T) {
	s := newTestSession(t)
	s.Friends.SeedFriendship("user123", "user456")

	_, ok := s.SendDirectMessage("user456", "user123", "hi")
	require.True(t, ok)
	require.True(t, s.Friends.RemoveFriend("user123", "user456"))
	_, ok = s.SendDirectMessage("user456", "user123", "still there?")
	assert.False(t, ok)
	assert.Equal(t, 1, s.DirectChat.Len(DirectKey("user123", "user456")))
}

func TestSession_LeavingEventStopsEventChat(t *testing.T) {
	s := newTestSession(t)
	e, err := s.Events.Create("user123", hike())
	require.NoError(t, err)
	require.True(t, s.Events.Join(e.ID, "user789"))

	_, ok := s.SendEventMessage(e.ID, "user789", "on my way")
	require.True(t, ok)
	require.True(t, s.Events.Leave(e.ID, "user789"))
	_, ok = s.SendEventMessage(e.ID, "user789", "never mind")
	assert.False(t, ok)
}
