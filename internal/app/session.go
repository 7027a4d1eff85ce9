package app

import (
	"sync"
	"time"

	"quizboard-service/internal/domain"
)

// Session is the in-memory state of one game. All fields are guarded by mu;
// every read-modify-write of the turn state happens inside it.
type Session struct {
	id         string
	roomID     string
	maxPlayers int
	now        func() time.Time

	mu            sync.Mutex
	status        domain.SessionStatus
	participants  []*domain.Participant // index = player number - 1
	currentNumber int
	turnNumber    int
	pending       *domain.PendingTurn
	lastResult    *domain.TurnResult
	winnerID      string
	startedAt     time.Time
	endedAt       *time.Time
	expiry        *time.Timer
}

// NewSession seats players in the given order; it starts in the waiting state.
func NewSession(id, roomID string, seats []Seat) *Session {
	return NewSessionWithClock(id, roomID, seats, time.Now)
}

// NewSessionWithClock allows deterministic timestamps in tests.
func NewSessionWithClock(id, roomID string, seats []Seat, now func() time.Time) *Session {
	s := &Session{
		id:         id,
		roomID:     roomID,
		maxPlayers: domain.MaxPlayersPerGame,
		now:        now,
		status:     domain.StatusWaiting,
	}
	for _, seat := range seats {
		s.participants = append(s.participants, &domain.Participant{
			SessionID:    id,
			PlayerID:     seat.PlayerID,
			PlayerNumber: seat.PlayerNumber,
		})
	}
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// RoomID returns the room the session belongs to.
func (s *Session) RoomID() string { return s.roomID }

// IsEmpty reports whether every participant has left.
func (s *Session) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.participants) == 0
}

// Snapshot returns a copy of the session state safe to hand to callers.
func (s *Session) Snapshot() domain.GameSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Stats returns per-player statistics.
func (s *Session) Stats() []domain.PlayerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statsLocked()
}

// start promotes a waiting session to active with player 1 acting on turn 1.
func (s *Session) start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != domain.StatusWaiting {
		return
	}
	s.status = domain.StatusActive
	s.currentNumber = 1
	s.turnNumber = 1
	s.startedAt = s.now()
}

func (s *Session) phaseLocked() domain.TurnPhase {
	switch {
	case s.status == domain.StatusFinished:
		return domain.PhaseFinished
	case s.pending != nil && !s.pending.Consumed:
		return domain.PhaseAwaitingAnswer
	default:
		return domain.PhaseAwaitingRoll
	}
}

func (s *Session) currentLocked() *domain.Participant {
	if s.currentNumber < 1 || s.currentNumber > len(s.participants) {
		return nil
	}
	return s.participants[s.currentNumber-1]
}

func (s *Session) participantLocked(playerID string) *domain.Participant {
	for _, p := range s.participants {
		if p.PlayerID == playerID {
			return p
		}
	}
	return nil
}

// advanceLocked hands the turn to the next player number, round-robin.
func (s *Session) advanceLocked() {
	s.currentNumber = s.currentNumber%len(s.participants) + 1
	s.turnNumber++
}

func (s *Session) finishLocked(winnerID string) {
	now := s.now()
	s.status = domain.StatusFinished
	s.winnerID = winnerID
	s.endedAt = &now
	s.currentNumber = 0
	s.stopExpiryLocked()
}

func (s *Session) stopExpiryLocked() {
	if s.expiry != nil {
		s.expiry.Stop()
		s.expiry = nil
	}
}

func (s *Session) removeLocked(playerID string) bool {
	for i, p := range s.participants {
		if p.PlayerID == playerID {
			s.participants = append(s.participants[:i], s.participants[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Session) statsLocked() []domain.PlayerStats {
	out := make([]domain.PlayerStats, 0, len(s.participants))
	for _, p := range s.participants {
		out = append(out, domain.PlayerStats{
			PlayerID:     p.PlayerID,
			PlayerNumber: p.PlayerNumber,
			Position:     p.Position,
			DiceRolls:    p.DiceRolls,
			Won:          s.winnerID != "" && s.winnerID == p.PlayerID,
		})
	}
	return out
}

func (s *Session) snapshotLocked() domain.GameSession {
	snap := domain.GameSession{
		ID:          s.id,
		RoomID:      s.roomID,
		MaxPlayers:  s.maxPlayers,
		PlayerCount: len(s.participants),
		TurnNumber:  s.turnNumber,
		Status:      s.status,
		Phase:       s.phaseLocked(),
		StartedAt:   s.startedAt,
	}
	if s.endedAt != nil {
		ended := *s.endedAt
		snap.EndedAt = &ended
	}
	if s.status == domain.StatusActive {
		if cur := s.currentLocked(); cur != nil {
			snap.CurrentPlayerID = cur.PlayerID
			snap.CurrentPlayerNumber = cur.PlayerNumber
		}
	}
	snap.Participants = make([]domain.Participant, 0, len(s.participants))
	for _, p := range s.participants {
		snap.Participants = append(snap.Participants, *p)
	}
	if s.pending != nil && !s.pending.Consumed {
		pv := &domain.PendingView{
			PlayerID:          s.pending.PlayerID,
			DiceValue:         s.pending.DiceValue,
			PositionBefore:    s.pending.PositionBefore,
			PositionAfterDice: s.pending.PositionAfterDice,
			Transport:         s.pending.Transport,
			ExpiresAt:         s.pending.ExpiresAt,
		}
		if s.pending.Question != nil {
			pv.Question = s.pending.Question.Public()
		}
		snap.Pending = pv
	}
	return snap
}
