package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resource-booking-backend/internal/testfixtures"
)

func TestPutSubscription_InvalidBody(t *testing.T) {
	r := gin.New()
	handler := NewHandler(Deps{})
	r.PUT("/api/push/subscriptions", handler.PutSubscription)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPut, "/api/push/subscriptions", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid request"}`, w.Body.String())
}

func TestPushSubscriptionAPI(t *testing.T) {
	h := newAPIHarness(t)
	admin := testfixtures.SeedUser(t, h.store, "admin", true)
	alice := testfixtures.SeedUser(t, h.store, "alice", false)
	ctx := context.Background()

	w := h.do(t, http.MethodGet, "/api/push/vapid_public_key", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"public_key":"public-key"}`, w.Body.String())

	body := map[string]any{"endpoint": "https://push.example/1", "p256dh": "key", "auth": "secret"}
	assert.Equal(t, http.StatusForbidden, h.do(t, http.MethodPut, "/api/push/subscriptions", h.tokenFor(t, alice), body).Code)
	assert.Equal(t, http.StatusCreated, h.do(t, http.MethodPut, "/api/push/subscriptions", h.tokenFor(t, admin), body).Code)

	subs, err := h.store.ListStaffPushSubscriptions(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, admin.ID, subs[0].UserID)

	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodDelete, "/api/push/subscriptions", h.tokenFor(t, admin), map[string]any{"endpoint": "https://push.example/1"}).Code)
	subs, err = h.store.ListStaffPushSubscriptions(ctx)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestGetVAPIDPublicKey_NotConfigured(t *testing.T) {
	r := gin.New()
	r.GET("/key", NewHandler(Deps{}).GetVAPIDPublicKey)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/key", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestNotificationsWebsocket(t *testing.T) {
	h := newAPIHarness(t)
	admin := testfixtures.SeedUser(t, h.store, "admin", true)
	alice := testfixtures.SeedUser(t, h.store, "alice", false)

	srv := httptest.NewServer(h.router)
	defer srv.Close()
	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/notifications"

	_, resp, err := websocket.DefaultDialer.Dial(base+"?token="+h.tokenFor(t, alice), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(base, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(base+"?token="+h.tokenFor(t, admin), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return h.hub.Members("admin-notifications") == 1 }, time.Second, 10*time.Millisecond)
	h.hub.Publish("admin-notifications", []byte(`{"message":"hello"}`))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":"hello"}`, string(msg))
}
