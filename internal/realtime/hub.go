// Package realtime streams check-in events to admin dashboards over
// WebSocket, with Redis pub/sub bridging multiple server instances.
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushub/backend/internal/models"
)

// EventCheckIn is emitted when a registration transitions to checked in.
const EventCheckIn = "check_in"

// Publisher publishes a meetup event for cross-instance broadcast.
type Publisher interface {
	PublishMeetupEvent(meetupID uuid.UUID, event string, payload []byte) error
}

// Subscriber subscribes to a meetup channel and invokes handler for
// incoming events. Returns a cancel function.
type Subscriber interface {
	SubscribeMeetup(meetupID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error)
}

// Hub maintains meetup_id -> set of connections and broadcasts events.
type Hub struct {
	meetups map[uuid.UUID]map[string]*Client
	subs    map[uuid.UUID]func()
	mu      sync.RWMutex
	logger  *zap.Logger
	pub     Publisher
	sub     Subscriber
}

// NewHub creates a new WebSocket hub. pub and sub may be nil for
// single-instance deployments.
func NewHub(logger *zap.Logger, pub Publisher, sub Subscriber) *Hub {
	return &Hub{
		meetups: make(map[uuid.UUID]map[string]*Client),
		subs:    make(map[uuid.UUID]func()),
		logger:  logger,
		pub:     pub,
		sub:     sub,
	}
}

// Register adds a client to a meetup room. The first client starts the
// Redis subscription for that meetup.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.meetups[c.MeetupID] == nil {
		h.meetups[c.MeetupID] = make(map[string]*Client)
		if h.sub != nil {
			cancel, err := h.sub.SubscribeMeetup(c.MeetupID, func(event string, payload []byte) {
				h.broadcastLocal(c.MeetupID, event, payload)
			})
			if err == nil {
				h.subs[c.MeetupID] = cancel
			}
		}
	}
	h.meetups[c.MeetupID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client joined check-in feed", zap.String("client_id", c.ID), zap.String("meetup_id", c.MeetupID.String()))
}

// Unregister removes a client; the last client leaving cancels the
// Redis subscription.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.meetups[c.MeetupID]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.meetups, c.MeetupID)
			if cancel, ok := h.subs[c.MeetupID]; ok {
				cancel()
				delete(h.subs, c.MeetupID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("client left check-in feed", zap.String("client_id", c.ID), zap.String("meetup_id", c.MeetupID.String()))
}

// NotifyCheckIn broadcasts a check-in event to viewers on every
// instance. Implements the registrations handler's notifier.
//
// When this instance holds an active subscription for the meetup, the
// event is published to Redis only; the subscription echoes it back to
// local clients, so broadcasting locally as well would deliver it
// twice. The local path is the fallback for single-instance setups and
// failed publishes.
func (h *Hub) NotifyCheckIn(meetupID uuid.UUID, reg *models.Registration) {
	payload, err := json.Marshal(newCheckInEvent(reg))
	if err != nil {
		return
	}
	if h.pub != nil {
		if err := h.pub.PublishMeetupEvent(meetupID, EventCheckIn, payload); err != nil {
			h.logger.Warn("publish check-in event failed", zap.Error(err))
		} else {
			h.mu.RLock()
			_, subscribed := h.subs[meetupID]
			h.mu.RUnlock()
			if subscribed {
				return
			}
		}
	}
	h.broadcastLocal(meetupID, EventCheckIn, payload)
}

// checkInEvent is the wire shape of a check-in broadcast. The token is
// deliberately omitted; viewers only need identity and timing.
type checkInEvent struct {
	RegistrationID uuid.UUID `json:"registration_id"`
	MeetupID       uuid.UUID `json:"meetup_id"`
	UserName       string    `json:"user_name"`
	UserEmail      string    `json:"user_email"`
	CheckedInAt    string    `json:"checked_in_at,omitempty"`
}

func newCheckInEvent(reg *models.Registration) checkInEvent {
	ev := checkInEvent{
		RegistrationID: reg.ID,
		MeetupID:       reg.MeetupID,
		UserName:       reg.UserName,
		UserEmail:      reg.UserEmail,
	}
	if reg.CheckedInAt != nil {
		ev.CheckedInAt = reg.CheckedInAt.UTC().Format(time.RFC3339)
	}
	return ev
}

func (h *Hub) broadcastLocal(meetupID uuid.UUID, event string, payload []byte) {
	msg := WSMessage{Event: event, Data: payload}
	h.mu.RLock()
	clients := h.meetups[meetupID]
	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			// slow consumer; drop rather than block the broadcast
		}
	}
	h.mu.RUnlock()
}

// AudienceCount returns the number of connected viewers for a meetup.
func (h *Hub) AudienceCount(meetupID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.meetups[meetupID])
}
