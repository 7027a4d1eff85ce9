package memory

import (
	"sync"

	"quizboard-service/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
	rooms    map[string][]string
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.Session),
		rooms:    make(map[string][]string),
	}
}

func (s *SessionStore) Put(session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID()]; !ok {
		s.rooms[session.RoomID()] = append(s.rooms[session.RoomID()], session.ID())
	}
	s.sessions[session.ID()] = session
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

// ByRoom returns the room's sessions in creation order.
func (s *SessionStore) ByRoom(roomID string) []*app.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.rooms[roomID]
	out := make([]*app.Session, 0, len(ids))
	for _, id := range ids {
		if session, ok := s.sessions[id]; ok {
			out = append(out, session)
		}
	}
	return out
}

func (s *SessionStore) DeleteIfEmpty(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok || !session.IsEmpty() {
		return
	}
	delete(s.sessions, sessionID)

	roomID := session.RoomID()
	ids := s.rooms[roomID]
	for i, id := range ids {
		if id == sessionID {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(s.rooms, roomID)
	} else {
		s.rooms[roomID] = ids
	}
}
