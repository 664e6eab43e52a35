package websocket

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient() *Client {
	return &Client{send: make(chan *LiveMessage, 8)}
}

func stopped(r *Room) bool {
	select {
	case <-r.stop:
		return true
	default:
		return false
	}
}

func TestRoomLifecycle(t *testing.T) {
	// 拉长轮询间隔，测试期间不触发后端拉取
	t.Setenv("MESSAGE_POLL_INTERVAL", "1h")

	first := newTestClient()
	second := newTestClient()

	room := joinRoom("conv-lifecycle", "token-1", first)
	first.room = room

	t.Run("joining client lands in a live room", func(t *testing.T) {
		roomsMutex.RLock()
		registered, exists := rooms["conv-lifecycle"]
		roomsMutex.RUnlock()

		require.True(t, exists)
		assert.Same(t, room, registered)
		assert.False(t, stopped(room))
	})

	t.Run("second join reuses the room and refreshes the token", func(t *testing.T) {
		again := joinRoom("conv-lifecycle", "token-2", second)
		second.room = again

		assert.Same(t, room, again)

		room.mu.RLock()
		defer room.mu.RUnlock()
		assert.Equal(t, "token-2", room.token)
		assert.Len(t, room.clients, 2)
	})

	t.Run("room survives while a client remains", func(t *testing.T) {
		room.leave(first)

		roomsMutex.RLock()
		_, exists := rooms["conv-lifecycle"]
		roomsMutex.RUnlock()

		require.True(t, exists)
		assert.False(t, stopped(room))

		room.mu.RLock()
		defer room.mu.RUnlock()
		assert.Contains(t, room.clients, second)
	})

	t.Run("last leave tears the room down", func(t *testing.T) {
		room.leave(second)

		roomsMutex.RLock()
		_, exists := rooms["conv-lifecycle"]
		roomsMutex.RUnlock()

		assert.False(t, exists)
		assert.True(t, stopped(room))
	})
}

func TestRoomJoinDuringTeardown(t *testing.T) {
	t.Setenv("MESSAGE_POLL_INTERVAL", "1h")

	// 最后一个客户端离开的同时不断有新客户端加入同一会话：
	// 加入者拿到的房间必须是注册表里的活房间，不能挂在已停摆的房间上。
	const churn = 50

	var wg sync.WaitGroup
	for i := 0; i < churn; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			client := newTestClient()
			client.room = joinRoom("conv-churn", fmt.Sprintf("token-%d", i), client)
			client.room.leave(client)
		}(i)
	}
	wg.Wait()

	roomsMutex.RLock()
	_, exists := rooms["conv-churn"]
	roomsMutex.RUnlock()
	assert.False(t, exists, "all clients left, room must be gone")
}

func TestRoomBroadcastSkipsSlowClients(t *testing.T) {
	t.Setenv("MESSAGE_POLL_INTERVAL", "1h")

	fast := newTestClient()
	slow := &Client{send: make(chan *LiveMessage)} // 无缓冲，没人在读

	room := joinRoom("conv-broadcast", "token", fast)
	fast.room = room
	joinRoom("conv-broadcast", "token", slow)
	slow.room = room

	room.broadcast(&LiveMessage{Type: "messages", ConversationID: "conv-broadcast"})

	select {
	case message := <-fast.send:
		assert.Equal(t, "messages", message.Type)
	default:
		t.Fatal("fast client should have received the broadcast")
	}

	room.leave(fast)
	room.leave(slow)
}
