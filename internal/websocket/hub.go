package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/bookit/experience-booking/internal/events"
	"github.com/sirupsen/logrus"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeSlotsUpdated MessageType = "slots_updated"
)

// ErrBroadcastQueueFull is returned when the hub cannot keep up
var ErrBroadcastQueueFull = errors.New("websocket broadcast queue full")

// SlotUpdate is the capacity of one slot after a change
type SlotUpdate struct {
	SlotID      string `json:"slotId"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	TotalSlots  int    `json:"totalSlots"`
	BookedSlots int    `json:"bookedSlots"`
	SlotsLeft   int    `json:"slotsLeft"`
}

// Message represents a WebSocket message
type Message struct {
	Type         MessageType  `json:"type"`
	ExperienceID string       `json:"experienceId"`
	Slots        []SlotUpdate `json:"slots,omitempty"`
	BookingID    string       `json:"bookingId,omitempty"`
	Event        events.Kind  `json:"event,omitempty"`
	Timestamp    int64        `json:"timestamp"`
}

// Hub manages WebSocket connections per experience
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
	done       chan struct{}
	mu         sync.RWMutex
	log        logrus.FieldLogger
}

var _ events.Publisher = (*Hub)(nil)

// NewHub creates a new Hub
func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 256),
		done:       make(chan struct{}),
		log:        log.WithField("component", "websocket"),
	}
}

// Run is the hub's main loop. It disconnects every client when ctx ends.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.experienceID] == nil {
				h.clients[client.experienceID] = make(map[*Client]bool)
			}
			h.clients[client.experienceID][client] = true
			total := len(h.clients[client.experienceID])
			h.mu.Unlock()
			h.log.WithFields(logrus.Fields{"experience_id": client.experienceID, "clients": total}).Debug("client registered")

		case client := <-h.unregister:
			h.remove(client)

		case message := <-h.broadcast:
			data, err := json.Marshal(message)
			if err != nil {
				h.log.WithError(err).Error("failed to marshal message")
				continue
			}

			h.mu.RLock()
			clients := make([]*Client, 0, len(h.clients[message.ExperienceID]))
			for c := range h.clients[message.ExperienceID] {
				clients = append(clients, c)
			}
			h.mu.RUnlock()

			h.log.WithFields(logrus.Fields{
				"experience_id": message.ExperienceID,
				"type":          message.Type,
				"clients":       len(clients),
			}).Debug("broadcasting")

			for _, client := range clients {
				select {
				case client.send <- data:
				default:
					h.remove(client)
				}
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.clients[client.experienceID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.experienceID)
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, clients := range h.clients {
		for c := range clients {
			close(c.send)
		}
		delete(h.clients, id)
	}
	close(h.done)
}

// Publish broadcasts the slot's new capacity to clients watching its experience
func (h *Hub) Publish(ctx context.Context, ev events.BookingEvent) error {
	msg := &Message{
		Type:         MessageTypeSlotsUpdated,
		ExperienceID: ev.Slot.ExperienceID,
		BookingID:    ev.Booking.ID,
		Event:        ev.Kind,
		Slots: []SlotUpdate{{
			SlotID:      ev.Slot.ID,
			Date:        ev.Slot.Date,
			Time:        ev.Slot.Time,
			TotalSlots:  ev.Slot.TotalSlots,
			BookedSlots: ev.Slot.BookedSlots,
			SlotsLeft:   ev.Slot.SlotsLeft(),
		}},
		Timestamp: time.Now().UnixMilli(),
	}
	if msg.ExperienceID == "" {
		msg.ExperienceID = ev.Booking.ExperienceID
	}

	select {
	case h.broadcast <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBroadcastQueueFull
	}
}

// ClientCount returns the number of clients watching an experience
func (h *Hub) ClientCount(experienceID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[experienceID])
}
