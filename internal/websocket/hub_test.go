package websocket

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bookit/experience-booking/internal/events"
	"github.com/bookit/experience-booking/internal/models"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	hub := NewHub(log)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	r := mux.NewRouter()
	r.HandleFunc("/api/experiences/{id}/ws", hub.HandleWebSocket)
	srv := httptest.NewServer(r)

	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, experienceID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/experiences/" + experienceID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestHub_BroadcastsSlotUpdate(t *testing.T) {
	hub, srv := newTestHub(t)

	watching := dial(t, srv, "exp-1")
	defer watching.Close()
	other := dial(t, srv, "exp-2")
	defer other.Close()

	require.Eventually(t, func() bool {
		return hub.ClientCount("exp-1") == 1 && hub.ClientCount("exp-2") == 1
	}, time.Second, 10*time.Millisecond)

	ev := events.NewBookingEvent(events.KindBookingCreated,
		models.Booking{ID: "b-1", ExperienceID: "exp-1"},
		models.Slot{ID: "s-1", ExperienceID: "exp-1", Date: "Oct 22", Time: "07:00 am", TotalSlots: 6, BookedSlots: 6},
	)
	require.NoError(t, hub.Publish(context.Background(), ev))

	watching.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := watching.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, MessageTypeSlotsUpdated, msg.Type)
	assert.Equal(t, "exp-1", msg.ExperienceID)
	assert.Equal(t, "b-1", msg.BookingID)
	assert.Equal(t, events.KindBookingCreated, msg.Event)
	require.Len(t, msg.Slots, 1)
	assert.Equal(t, "s-1", msg.Slots[0].SlotID)
	assert.Equal(t, 0, msg.Slots[0].SlotsLeft)

	other.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = other.ReadMessage()
	assert.Error(t, err, "clients of other experiences receive nothing")
}

func TestHub_UnregistersClosedClient(t *testing.T) {
	hub, srv := newTestHub(t)

	conn := dial(t, srv, "exp-1")
	require.Eventually(t, func() bool { return hub.ClientCount("exp-1") == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount("exp-1") == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_PublishQueueFull(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	hub := NewHub(log)

	ev := events.BookingEvent{Slot: models.Slot{ExperienceID: "exp-1"}}
	for i := 0; i < cap(hub.broadcast); i++ {
		require.NoError(t, hub.Publish(context.Background(), ev))
	}
	assert.ErrorIs(t, hub.Publish(context.Background(), ev), ErrBroadcastQueueFull)
}
