package ws_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenera/backend/pkg/ws"
)

func newFeedServer(t *testing.T) (*ws.Hub, string) {
	t.Helper()
	hub := ws.NewHub()
	go hub.Run()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws.Upgrade(w, r, hub)
	}))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestBroadcastReachesEveryPanel(t *testing.T) {
	hub, url := newFeedServer(t)

	first := dial(t, url)
	second := dial(t, url)

	// Registration goes through the hub loop; give it a beat.
	time.Sleep(50 * time.Millisecond)
	hub.BroadcastJSON(map[string]string{"event": "order.placed", "orderId": "abc123"})

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var frame map[string]string
		require.NoError(t, conn.ReadJSON(&frame))
		assert.Equal(t, "order.placed", frame["event"])
		assert.Equal(t, "abc123", frame["orderId"])
	}
}

func TestBroadcastAfterDisconnect(t *testing.T) {
	hub, url := newFeedServer(t)

	gone := dial(t, url)
	stays := dial(t, url)
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, gone.Close())
	time.Sleep(50 * time.Millisecond)

	hub.BroadcastJSON(map[string]string{"event": "order.paid"})

	stays.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame map[string]string
	require.NoError(t, stays.ReadJSON(&frame))
	assert.Equal(t, "order.paid", frame["event"])
}
