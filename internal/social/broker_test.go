package social

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBroker_TopicsAndUnsubscribe(t *testing.T) {
	b := NewBroker()

	var a, c int
	unsubA := b.Subscribe("a", func(Notification) { a++ })
	b.Subscribe("c", func(Notification) { c++ })
	assert.Equal(t, 1, b.Subscribers("a"))

	b.Notify(Notification{Topic: "a"})
	b.Notify(Notification{Topic: "b"})
	assert.Equal(t, 1, a)
	assert.Equal(t, 0, c)

	unsubA()
	b.Notify(Notification{Topic: "a"})
	assert.Equal(t, 1, a)
	assert.Equal(t, 0, b.Subscribers("a"))
}

func TestBroker_ExtraTopicsAndGlobalOnce(t *testing.T) {
	b := NewBroker()

	var topics []string
	b.Subscribe("x", func(n Notification) { topics = append(topics, n.Topic) })
	b.Subscribe("y", func(n Notification) { topics = append(topics, n.Topic) })
	all := 0
	b.SubscribeAll(func(Notification) { all++ })

	b.Notify(Notification{Topic: "x", Kind: KindFriend}, "y")
	assert.Equal(t, []string{"x", "y"}, topics)
	assert.Equal(t, 1, all)
}

func TestBroker_UnsubscribeInsideCallback(t *testing.T) {
	b := NewBroker()

	calls := 0
	var unsub func()
	unsub = b.Subscribe("t", func(Notification) {
		calls++
		unsub()
	})
	b.Notify(Notification{Topic: "t"})
	b.Notify(Notification{Topic: "t"})
	assert.Equal(t, 1, calls)
}

func TestBroker_Close(t *testing.T) {
	b := NewBroker()
	calls := 0
	b.Subscribe("t", func(Notification) { calls++ })

	b.Close()
	b.Notify(Notification{Topic: "t"})
	b.Subscribe("t", func(Notification) { calls++ })
	b.Notify(Notification{Topic: "t"})
	assert.Equal(t, 0, calls)
}
