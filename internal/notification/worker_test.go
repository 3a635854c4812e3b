package notification

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resource-booking-backend/internal/booking"
	"resource-booking-backend/internal/model"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// mockSender is a mock implementation of the NotificationSender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// Send calls the mock SendFunc.
func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []Mail
	err  error
	done chan struct{}
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{done: make(chan struct{}, 16)}
}

func (m *recordingMailer) Send(_ context.Context, mail Mail) error {
	m.mu.Lock()
	m.sent = append(m.sent, mail)
	m.mu.Unlock()
	m.done <- struct{}{}
	return m.err
}

func (m *recordingMailer) mails() []Mail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Mail(nil), m.sent...)
}

type recordingHub struct {
	mu       sync.Mutex
	messages map[string][][]byte
	done     chan struct{}
}

func newRecordingHub() *recordingHub {
	return &recordingHub{messages: make(map[string][][]byte), done: make(chan struct{}, 16)}
}

func (h *recordingHub) Publish(group string, payload []byte) int {
	h.mu.Lock()
	h.messages[group] = append(h.messages[group], payload)
	h.mu.Unlock()
	h.done <- struct{}{}
	return 0
}

func (h *recordingHub) published(group string) [][]byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.messages[group]
}

type fakeSubscriptions struct {
	mu      sync.Mutex
	subs    []model.PushSubscription
	deleted []string
}

func (f *fakeSubscriptions) ListStaffPushSubscriptions(context.Context) ([]model.PushSubscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.PushSubscription(nil), f.subs...), nil
}

func (f *fakeSubscriptions) DeletePushSubscription(_ context.Context, endpoint string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, endpoint)
	return nil
}

func sampleEvent(status booking.Status) Event {
	return Event{
		Kind:          KindCreated,
		ReservationID: 7,
		Requester:     "alice",
		Email:         "alice@example.com",
		ResourceName:  "Room 101",
		Start:         time.Date(2030, 5, 1, 13, 0, 0, 0, time.UTC),
		End:           time.Date(2030, 5, 1, 14, 0, 0, 0, time.UTC),
		Status:        status,
	}
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
	}
}

func TestWorkerPool_Dispatch(t *testing.T) {
	wp := NewWorkerPool(Options{Workers: 1, QueueSize: 1}, newRecordingMailer(), nil, nil, discard)

	assert.True(t, wp.Dispatch(sampleEvent(booking.StatusPending)))
	assert.False(t, wp.Dispatch(sampleEvent(booking.StatusPending)), "a full queue drops instead of blocking")

	select {
	case job := <-wp.jobs:
		assert.Equal(t, int64(7), job.ReservationID)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_DeliversEmailAndBroadcast(t *testing.T) {
	mailer := newRecordingMailer()
	hub := newRecordingHub()
	saoPaulo, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	wp := NewWorkerPool(Options{Workers: 2, QueueSize: 4, Group: "admin-notifications", Location: saoPaulo}, mailer, hub, nil, discard)
	ctx, cancel := context.WithCancel(context.Background())
	wp.Start(ctx)
	defer func() {
		cancel()
		wp.Wait()
	}()

	require.True(t, wp.Dispatch(sampleEvent(booking.StatusPending)))
	waitFor(t, mailer.done)
	waitFor(t, hub.done)

	mails := mailer.mails()
	require.Len(t, mails, 1)
	assert.Equal(t, "alice@example.com", mails[0].To)
	assert.Equal(t, "Reservation received", mails[0].Subject)
	assert.Contains(t, mails[0].Body, "Hello, alice!")
	assert.Contains(t, mails[0].Body, "Resource: Room 101")
	assert.Contains(t, mails[0].Body, "Start: 2030-05-01 10:00", "times render in the configured zone")
	assert.Contains(t, mails[0].Body, "Status: Pending")

	published := hub.published("admin-notifications")
	require.Len(t, published, 1)
	assert.JSONEq(t, `{"message":"New reservation: alice booked Room 101 at 2030-05-01 10:00 (Pending)"}`, string(published[0]))
}

func TestWorkerPool_FailuresAreSwallowed(t *testing.T) {
	mailer := newRecordingMailer()
	mailer.err = errors.New("smtp down")
	hub := newRecordingHub()

	wp := NewWorkerPool(Options{Workers: 1, QueueSize: 2, Group: "g"}, mailer, hub, nil, discard)
	ctx, cancel := context.WithCancel(context.Background())
	wp.Start(ctx)
	defer func() {
		cancel()
		wp.Wait()
	}()

	wp.Dispatch(sampleEvent(booking.StatusConfirmed))
	waitFor(t, mailer.done)
	waitFor(t, hub.done)
	assert.Len(t, hub.published("g"), 1, "a failed email does not stop the broadcast")
}

func TestPolicy(t *testing.T) {
	silent := Policy{}
	loud := Policy{EmailMaintenance: true, BroadcastMaintenance: true}

	maintenance := sampleEvent(booking.StatusMaintenance)
	assert.False(t, silent.allowEmail(maintenance))
	assert.False(t, silent.allowBroadcast(maintenance))
	assert.True(t, loud.allowEmail(maintenance))
	assert.True(t, loud.allowBroadcast(maintenance))

	confirmed := sampleEvent(booking.StatusConfirmed)
	assert.True(t, silent.allowEmail(confirmed))
	assert.True(t, silent.allowBroadcast(confirmed))

	confirmed.Email = ""
	assert.False(t, loud.allowEmail(confirmed), "no address, no email")
}

func TestWorkerPool_MaintenanceIsSilentByDefault(t *testing.T) {
	mailer := newRecordingMailer()
	hub := newRecordingHub()
	wp := NewWorkerPool(Options{Workers: 1, QueueSize: 2, Group: "g"}, mailer, hub, nil, discard)

	wp.deliver(context.Background(), discard, sampleEvent(booking.StatusMaintenance))

	assert.Empty(t, mailer.mails())
	assert.Empty(t, hub.published("g"))
}

func TestPushChannel_Send(t *testing.T) {
	subs := &fakeSubscriptions{subs: []model.PushSubscription{
		{Endpoint: "https://push.example.com/live", P256DH: "k1", Auth: "a1"},
		{Endpoint: "https://push.example.com/gone", P256DH: "k2", Auth: "a2"},
		{Endpoint: "https://push.example.com/broken", P256DH: "k3", Auth: "a3"},
	}}

	var mu sync.Mutex
	var payloads [][]byte
	sender := &mockSender{
		SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
			mu.Lock()
			payloads = append(payloads, payload)
			mu.Unlock()
			switch sub.Endpoint {
			case "https://push.example.com/gone":
				return &http.Response{StatusCode: http.StatusGone, Body: io.NopCloser(bytes.NewBufferString(""))}, nil
			case "https://push.example.com/broken":
				return nil, errors.New("dial tcp: refused")
			}
			assert.Equal(t, "k1", sub.Keys.P256dh)
			return &http.Response{StatusCode: http.StatusCreated, Body: io.NopCloser(bytes.NewBufferString(""))}, nil
		},
	}

	push := NewPushChannel(subs, &webpush.Options{TTL: 60})
	push.sender = sender

	sent := push.Send(context.Background(), discard, []byte(`{"message":"hi"}`))

	assert.Equal(t, 1, sent)
	assert.Len(t, payloads, 3)
	assert.Equal(t, []string{"https://push.example.com/gone"}, subs.deleted, "expired subscriptions are removed")
}

func TestComposeMail_Kinds(t *testing.T) {
	e := sampleEvent(booking.StatusRejected)
	e.Kind = KindRejected

	mail := ComposeMail(e, nil)
	assert.Equal(t, "Reservation rejected", mail.Subject)
	assert.Contains(t, mail.Body, "Your reservation was rejected.")
	assert.Contains(t, mail.Body, "Start: 2030-05-01 13:00")

	assert.Equal(t, "Reservation rejected: alice, Room 101 at 2030-05-01 13:00", BroadcastText(e, nil))
}

func TestEventFor(t *testing.T) {
	r := &model.Reservation{
		ID: 3, StartAt: time.Unix(0, 0), EndAt: time.Unix(3600, 0), Status: booking.StatusConfirmed,
		Resource: model.Resource{Name: "Lab"},
		User:     model.User{Username: "bob", Email: "bob@example.com"},
	}
	e := EventFor(KindApproved, r)
	assert.Equal(t, Event{
		Kind: KindApproved, ReservationID: 3, Requester: "bob", Email: "bob@example.com",
		ResourceName: "Lab", Start: r.StartAt, End: r.EndAt, Status: booking.StatusConfirmed,
	}, e)
}
