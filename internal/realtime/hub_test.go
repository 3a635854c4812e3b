package realtime

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const group = "admin-notifications"

func newTestHub(t *testing.T, origins ...string) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(origins, slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, group)
	}))
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	return conn
}

func TestHub_PublishReachesJoinedClients(t *testing.T) {
	hub, srv := newTestHub(t)

	assert.Equal(t, 0, hub.Publish(group, []byte(`{"message":"nobody"}`)), "publishing to an empty group is not an error")

	first := dial(t, srv, nil)
	defer first.Close()
	second := dial(t, srv, nil)
	defer second.Close()

	require.Eventually(t, func() bool { return hub.Members(group) == 2 }, time.Second, 10*time.Millisecond)

	delivered := hub.Publish(group, []byte(`{"message":"hello"}`))
	assert.Equal(t, 2, delivered)

	for _, conn := range []*websocket.Conn{first, second} {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		kind, payload, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, websocket.TextMessage, kind)
		assert.JSONEq(t, `{"message":"hello"}`, string(payload))
	}

	assert.Equal(t, 0, hub.Publish("other-group", []byte("x")))
}

func TestHub_LeaveOnDisconnect(t *testing.T) {
	hub, srv := newTestHub(t)

	conn := dial(t, srv, nil)
	require.Eventually(t, func() bool { return hub.Members(group) == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Members(group) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_RejectsUnknownOrigin(t *testing.T) {
	_, srv := newTestHub(t, "https://booking.example.com")

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"https://evil.example.com"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn := dial(t, srv, http.Header{"Origin": []string{"https://booking.example.com"}})
	conn.Close()
}
