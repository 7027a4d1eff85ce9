package memory

import (
	"context"
	"sync"
	"time"
)

// RoomEvent is what subscribers of a room receive.
type RoomEvent struct {
	Type    string    `json:"type"`
	RoomID  string    `json:"roomId"`
	Payload any       `json:"payload"`
	SentAt  time.Time `json:"sentAt"`
}

const subscriberBuffer = 16

// Broadcaster fans room events out to in-process subscribers. It implements
// app.Publisher; a slow subscriber loses its oldest buffered event instead of
// blocking the publisher.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[string]map[chan RoomEvent]struct{}
	now  func() time.Time
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[string]map[chan RoomEvent]struct{}),
		now:  time.Now,
	}
}

// Subscribe returns a channel of the room's events.
// The caller must invoke the returned cancel function to avoid leaks.
func (b *Broadcaster) Subscribe(roomID string) (<-chan RoomEvent, func()) {
	ch := make(chan RoomEvent, subscriberBuffer)

	b.mu.Lock()
	room, ok := b.subs[roomID]
	if !ok {
		room = make(map[chan RoomEvent]struct{})
		b.subs[roomID] = room
	}
	room[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			room := b.subs[roomID]
			if _, ok := room[ch]; ok {
				delete(room, ch)
				close(ch)
			}
			if len(room) == 0 {
				delete(b.subs, roomID)
			}
		})
	}
	return ch, cancel
}

func (b *Broadcaster) Publish(_ context.Context, roomID, eventType string, payload any) {
	ev := RoomEvent{Type: eventType, RoomID: roomID, Payload: payload, SentAt: b.now()}

	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[roomID] {
		select {
		case ch <- ev:
		default:
			// drop the oldest so the latest state still gets through
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

// Subscribers reports how many subscribers a room has.
func (b *Broadcaster) Subscribers(roomID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[roomID])
}
