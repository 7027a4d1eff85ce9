package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"quizboard-service/internal/app"
	"quizboard-service/internal/infra/memory"
)

// SessionStore is a Redis-aware implementation of SessionRepository.
// Sessions themselves stay in a local in-memory store since each one is an
// in-process actor; Redis carries a liveness marker per session and a room
// index so other instances can discover where a room is being played.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
	local  *memory.SessionStore
	log    *zap.Logger
}

func NewSessionStore(client *redis.Client, ttl time.Duration, log *zap.Logger) *SessionStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionStore{
		client: client,
		ttl:    ttl,
		local:  memory.NewSessionStore(),
		log:    log,
	}
}

func (s *SessionStore) Put(session *app.Session) {
	s.local.Put(session)

	// best-effort liveness marker
	ctx := context.Background()
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.sessionKey(session.ID()), session.RoomID(), s.ttl)
	pipe.SAdd(ctx, s.roomKey(session.RoomID()), session.ID())
	if s.ttl > 0 {
		pipe.Expire(ctx, s.roomKey(session.RoomID()), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn("mark session live",
			zap.String("session_id", session.ID()),
			zap.String("room_id", session.RoomID()),
			zap.Error(err),
		)
	}
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	return s.local.Get(sessionID)
}

func (s *SessionStore) ByRoom(roomID string) []*app.Session {
	return s.local.ByRoom(roomID)
}

func (s *SessionStore) DeleteIfEmpty(sessionID string) {
	session, ok := s.local.Get(sessionID)
	if !ok {
		return
	}
	s.local.DeleteIfEmpty(sessionID)
	if _, still := s.local.Get(sessionID); still {
		return
	}

	ctx := context.Background()
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.sessionKey(sessionID))
	pipe.SRem(ctx, s.roomKey(session.RoomID()), sessionID)
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn("clear session marker",
			zap.String("session_id", sessionID),
			zap.String("room_id", session.RoomID()),
			zap.Error(err),
		)
	}
}

// RoomSessions lists the session ids registered for a room across instances.
func (s *SessionStore) RoomSessions(ctx context.Context, roomID string) ([]string, error) {
	return s.client.SMembers(ctx, s.roomKey(roomID)).Result()
}

func (s *SessionStore) sessionKey(sessionID string) string {
	return "board:session:" + sessionID
}

func (s *SessionStore) roomKey(roomID string) string {
	return "board:room:" + roomID + ":sessions"
}
