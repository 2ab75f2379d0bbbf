package social

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendGraph_RequestAcceptRemove(t *testing.T) {
	g := NewFriendGraph(nil)

	require.True(t, g.SendRequest("alice", "bob"))
	assert.Equal(t, []string{"alice"}, g.Incoming("bob"))
	assert.Equal(t, []string{"bob"}, g.Outgoing("alice"))
	assert.True(t, g.IsPendingOutgoing("alice", "bob"))
	assert.True(t, g.CanAcceptFrom("bob", "alice"))

	require.True(t, g.AcceptRequest("bob", "alice"))
	assert.True(t, g.IsFriends("bob", "alice"))
	assert.True(t, g.IsFriends("alice", "bob"))
	assert.Equal(t, []string{"bob"}, g.FriendsOf("alice"))
	assert.Equal(t, []string{"alice"}, g.FriendsOf("bob"))
	assert.Empty(t, g.Incoming("bob"))
	assert.Empty(t, g.Outgoing("alice"))

	require.True(t, g.RemoveFriend("alice", "bob"))
	assert.NotContains(t, g.FriendsOf("alice"), "bob")
	assert.NotContains(t, g.FriendsOf("bob"), "alice")
}

func TestFriendGraph_SendRequestNoops(t *testing.T) {
	g := NewFriendGraph(nil)

	assert.False(t, g.SendRequest("alice", "alice"), "self")
	assert.False(t, g.SendRequest("alice", ""), "empty target")

	require.True(t, g.SendRequest("alice", "bob"))
	assert.False(t, g.SendRequest("alice", "bob"), "already pending")

	require.True(t, g.AcceptRequest("bob", "alice"))
	assert.False(t, g.SendRequest("alice", "bob"), "already friends")
	assert.False(t, g.SendRequest("bob", "alice"), "already friends")
	assert.Empty(t, g.Outgoing("alice"))
}

func TestFriendGraph_CancelThenAcceptFails(t *testing.T) {
	g := NewFriendGraph(nil)

	require.True(t, g.SendRequest("alice", "bob"))
	require.True(t, g.CancelRequest("alice", "bob"))
	assert.NotContains(t, g.Outgoing("alice"), "bob")
	assert.Empty(t, g.Incoming("bob"))

	assert.False(t, g.AcceptRequest("bob", "alice"))
	assert.False(t, g.IsFriends("alice", "bob"))
	assert.False(t, g.CancelRequest("alice", "bob"), "nothing left to cancel")
}

func TestFriendGraph_Decline(t *testing.T) {
	g := NewFriendGraph(nil)

	assert.False(t, g.DeclineRequest("bob", "alice"))
	require.True(t, g.SendRequest("alice", "bob"))
	require.True(t, g.DeclineRequest("bob", "alice"))

	assert.False(t, g.IsFriends("alice", "bob"))
	assert.False(t, g.IsPendingOutgoing("alice", "bob"))
	assert.False(t, g.CanAcceptFrom("bob", "alice"))
}

func TestFriendGraph_RemoveNonFriendIsNoop(t *testing.T) {
	g := NewFriendGraph(nil)
	g.SeedFriendship("alice", "carol")

	assert.False(t, g.RemoveFriend("alice", "bob"))
	assert.Equal(t, []string{"carol"}, g.FriendsOf("alice"))
	assert.True(t, g.Unfriend("carol", "alice"))
	assert.Empty(t, g.FriendsOf("alice"))
	assert.Empty(t, g.FriendsOf("carol"))
}

func TestFriendGraph_MutualRequestsResolveOnAccept(t *testing.T) {
	g := NewFriendGraph(nil)

	require.True(t, g.SendRequest("alice", "bob"))
	require.True(t, g.SendRequest("bob", "alice"))
	require.True(t, g.AcceptRequest("alice", "bob"))

	assert.True(t, g.IsFriends("alice", "bob"))
	assert.Empty(t, g.Outgoing("alice"))
	assert.Empty(t, g.Outgoing("bob"))
	assert.Empty(t, g.Incoming("alice"))
	assert.Empty(t, g.Incoming("bob"))
}

func TestFriendGraph_Relation(t *testing.T) {
	g := NewFriendGraph(nil)
	g.SeedFriendship("a", "b")
	g.SeedRequest("a", "c")

	assert.Equal(t, "self", g.Relation("a", "a"))
	assert.Equal(t, "friends", g.Relation("b", "a"))
	assert.Equal(t, "outgoing", g.Relation("a", "c"))
	assert.Equal(t, "incoming", g.Relation("c", "a"))
	assert.Equal(t, "none", g.Relation("b", "c"))
}

func TestFriendGraph_Edges(t *testing.T) {
	g := NewFriendGraph(nil)
	g.SeedFriendship("b", "a")
	g.SeedFriendship("c", "a")

	assert.Equal(t, [][2]string{{"a", "b"}, {"a", "c"}}, g.Edges())
}

func TestFriendGraph_Requests(t *testing.T) {
	g := NewFriendGraph(nil)
	g.SendRequest("c", "a")
	g.SendRequest("a", "b")
	g.SendRequest("a", "c")
	g.AcceptRequest("a", "c")

	assert.Equal(t, [][2]string{{"a", "b"}}, g.Requests())
}

func TestFriendGraph_NotifiesBothSides(t *testing.T) {
	b := NewBroker()
	g := NewFriendGraph(b)

	var got []string
	b.Subscribe(UserTopic("alice"), func(n Notification) { got = append(got, "alice:"+n.Friend.Action) })
	b.Subscribe(UserTopic("bob"), func(n Notification) { got = append(got, "bob:"+n.Friend.Action) })

	g.SendRequest("alice", "bob")
	g.AcceptRequest("bob", "alice")
	g.AcceptRequest("bob", "alice") // no-op, no notification

	assert.Equal(t, []string{
		"alice:requested", "bob:requested",
		"bob:accepted", "alice:accepted",
	}, got)
}

// 并发修改下对称性始终成立
func TestFriendGraph_SymmetryUnderConcurrency(t *testing.T) {
	g := NewFriendGraph(nil)
	users := []string{"u1", "u2", "u3", "u4", "u5"}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		for _, a := range users {
			for _, b := range users {
				wg.Add(1)
				go func(a, b string, i int) {
					defer wg.Done()
					switch i % 3 {
					case 0:
						g.SendRequest(a, b)
					case 1:
						g.AcceptRequest(b, a)
					default:
						g.RemoveFriend(a, b)
					}
				}(a, b, i)
			}
		}
	}
	wg.Wait()

	for _, a := range users {
		for _, b := range g.FriendsOf(a) {
			assert.Contains(t, g.FriendsOf(b), a)
		}
		for _, b := range g.Outgoing(a) {
			assert.Contains(t, g.Incoming(b), a)
		}
	}
}

// 监听方阻塞期间发起的后续修改要等前一个通知送达，通知顺序与修改顺序一致
func TestFriendGraph_NotificationsFollowMutationOrder(t *testing.T) {
	b := NewBroker()
	g := NewFriendGraph(b)

	entered := make(chan struct{})
	release := make(chan struct{})
	var mu sync.Mutex
	var got []string
	b.Subscribe(UserTopic("alice"), func(n Notification) {
		if n.Friend.Action == FriendRequested {
			close(entered)
			<-release
		}
		mu.Lock()
		got = append(got, n.Friend.Action)
		mu.Unlock()
	})

	go g.SendRequest("alice", "bob")
	<-entered

	canceled := make(chan bool, 1)
	go func() { canceled <- g.CancelRequest("alice", "bob") }()

	select {
	case <-canceled:
		t.Fatal("cancel completed before the request notification was delivered")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	assert.True(t, <-canceled)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{FriendRequested, FriendCanceled}, got)
}
