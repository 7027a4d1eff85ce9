package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const publishTimeout = 2 * time.Second

// Envelope is the JSON message published on a room channel.
type Envelope struct {
	Type    string    `json:"type"`
	RoomID  string    `json:"roomId"`
	Payload any       `json:"payload"`
	SentAt  time.Time `json:"sentAt"`
}

// Publisher relays room events to other instances through Redis pub/sub:
// PUBLISH board:room:{roomID} {envelope JSON}
type Publisher struct {
	client *redis.Client
	log    *zap.Logger
	now    func() time.Time
}

func NewPublisher(client *redis.Client, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{client: client, log: log, now: time.Now}
}

// Publish sends in the background; failures are logged and dropped.
func (p *Publisher) Publish(ctx context.Context, roomID, eventType string, payload any) {
	raw, err := json.Marshal(Envelope{Type: eventType, RoomID: roomID, Payload: payload, SentAt: p.now()})
	if err != nil {
		p.log.Error("encode room event", zap.String("room_id", roomID), zap.String("type", eventType), zap.Error(err))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		if err := p.client.Publish(ctx, Channel(roomID), raw).Err(); err != nil {
			p.log.Warn("publish room event",
				zap.String("room_id", roomID),
				zap.String("type", eventType),
				zap.Error(err),
			)
		}
	}()
}

// Channel is the pub/sub channel of a room.
func Channel(roomID string) string {
	return "board:room:" + roomID
}
