package app

import (
	"sync"

	"quizboard-service/internal/domain"
)

// finishedSessions keeps the final roster of every finished session. Players
// leave a session once its game is over and the live store drops it when the
// last one goes, but room rollups still need the full roster.
type finishedSessions struct {
	mu     sync.RWMutex
	stats  map[string][]domain.PlayerStats
	byRoom map[string][]string
}

func newFinishedSessions() *finishedSessions {
	return &finishedSessions{
		stats:  make(map[string][]domain.PlayerStats),
		byRoom: make(map[string][]string),
	}
}

// record stores the roster once; later calls for the same session are ignored.
func (f *finishedSessions) record(roomID, sessionID string, stats []domain.PlayerStats) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.stats[sessionID]; ok {
		return
	}
	f.stats[sessionID] = stats
	f.byRoom[roomID] = append(f.byRoom[roomID], sessionID)
}

func (f *finishedSessions) statsOf(sessionID string) ([]domain.PlayerStats, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	stats, ok := f.stats[sessionID]
	if !ok {
		return nil, false
	}
	return append([]domain.PlayerStats(nil), stats...), true
}

// room returns the room's finished session ids in the order they finished.
func (f *finishedSessions) room(roomID string) []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]string(nil), f.byRoom[roomID]...)
}
