package streaming

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHub(t *testing.T) (*Hub, chan struct{}) {
	hub := NewHub(zap.NewNop())
	stop := make(chan struct{})
	go hub.Run(stop)
	t.Cleanup(func() { close(stop) })
	return hub, stop
}

func TestHub_PublishDeliversToRegisteredClient(t *testing.T) {
	hub, _ := newTestHub(t)
	userID := uuid.New()
	client := &Client{Hub: hub, Send: make(chan []byte, 4), UserID: userID}

	hub.Register <- client
	require.Eventually(t, func() bool {
		for _, u := range hub.ConnectedUsers() {
			if u == userID {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)

	hub.Publish(userID, "sync.result", map[string]string{"bank_code": "DEMO"})

	select {
	case msg := <-client.Send:
		var evt Event
		require.NoError(t, json.Unmarshal(msg, &evt))
		assert.Equal(t, "sync.result", evt.Kind)
	case <-time.After(time.Second):
		t.Fatal("expected event was not delivered")
	}
}

func TestHub_PublishToUnknownUserIsDropped(t *testing.T) {
	hub, _ := newTestHub(t)
	// No registered clients for this user; Publish must not block or panic.
	hub.Publish(uuid.New(), "sync.result", nil)
}

func TestHub_UnregisterClosesSendChannelAndForgetsUser(t *testing.T) {
	hub, _ := newTestHub(t)
	userID := uuid.New()
	client := &Client{Hub: hub, Send: make(chan []byte, 1), UserID: userID}

	hub.Register <- client
	require.Eventually(t, func() bool { return len(hub.ConnectedUsers()) == 1 }, time.Second, 10*time.Millisecond)

	hub.Unregister <- client
	require.Eventually(t, func() bool { return len(hub.ConnectedUsers()) == 0 }, time.Second, 10*time.Millisecond)

	_, open := <-client.Send
	assert.False(t, open)
}

func TestHub_ConnectedUsersTracksMultipleSubscribersPerUser(t *testing.T) {
	hub, _ := newTestHub(t)
	userID := uuid.New()
	a := &Client{Hub: hub, Send: make(chan []byte, 1), UserID: userID}
	b := &Client{Hub: hub, Send: make(chan []byte, 1), UserID: userID}

	hub.Register <- a
	hub.Register <- b
	require.Eventually(t, func() bool { return len(hub.ConnectedUsers()) == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(userID, "sync.result", "ok")
	require.Eventually(t, func() bool { return len(a.Send) == 1 && len(b.Send) == 1 }, time.Second, 10*time.Millisecond)
}
