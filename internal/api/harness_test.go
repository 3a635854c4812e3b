package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"resource-booking-backend/internal/auth"
	"resource-booking-backend/internal/model"
	"resource-booking-backend/internal/realtime"
	"resource-booking-backend/internal/service"
	"resource-booking-backend/internal/store"
	"resource-booking-backend/internal/testfixtures"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// brt renders and parses local times three hours behind UTC.
var brt = time.FixedZone("BRT", -3*60*60)

type apiHarness struct {
	router   *gin.Engine
	store    *store.GormStore
	clock    *testfixtures.Clock
	notifier *testfixtures.Notifier
	issuer   *auth.Issuer
	hub      *realtime.Hub
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := testfixtures.NewSQLiteStore(t)
	clock := testfixtures.NewClock(time.Time{})
	notifier := &testfixtures.Notifier{}
	issuer := auth.NewIssuer("api-test-secret-value", time.Hour, clock.Now)
	hub := realtime.NewHub(nil, logger)

	accounts := service.NewAccountService(s, issuer, clock.Now, logger)
	h := NewHandler(Deps{
		Accounts:      accounts,
		Resources:     service.NewResourceService(s, logger),
		Reservations:  service.NewReservationService(s, notifier, brt, clock.Now, logger),
		Invites:       service.NewInviteService(s, logger),
		Subscriptions: s,
		Hub:           hub,
		WebPush:       &webpush.Options{VAPIDPublicKey: "public-key"},
		Location:      brt,
		Group:         "admin-notifications",
		Logger:        logger,
	})
	router := NewRouter(h, accounts, RouterOptions{RateLimit: rate.Limit(1000), Burst: 1000, Logger: logger})

	return &apiHarness{router: router, store: s, clock: clock, notifier: notifier, issuer: issuer, hub: hub}
}

func (h *apiHarness) tokenFor(t *testing.T, u *model.User) string {
	t.Helper()
	token, _, err := h.issuer.Issue(u.ID, u.Username, u.IsStaff)
	require.NoError(t, err)
	return token
}

func (h *apiHarness) do(t *testing.T, method, target, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// local formats clock hours as an offset-free local timestamp.
func (h *apiHarness) local(hours int) string {
	return h.clock.Hours(hours).In(brt).Format("2006-01-02T15:04")
}
