package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"quizboard-service/internal/board"
	"quizboard-service/internal/domain"
	"quizboard-service/internal/metrics"
)

const (
	defaultPendingTTL = 60 * time.Second
	// expiryResolveTimeout bounds ledger I/O when a timer auto-resolves a turn.
	expiryResolveTimeout = 5 * time.Second
)

// GameService is the turn engine: it owns session creation, the roll/answer cycle
// and the read models derived from sessions and the move ledger.
type GameService struct {
	sessions  SessionRepository
	gate      *QuestionGate
	ledger    MoveLedger
	board     *board.Board
	publisher Publisher
	dice      Dice
	log       *zap.Logger
	metrics   *metrics.Metrics
	finished  *finishedSessions

	pendingTTL time.Duration
	maxPlayers int
	now        func() time.Time
	newID      func() string
}

// Option customises a GameService.
type Option func(*GameService)

func WithPublisher(p Publisher) Option { return func(s *GameService) { s.publisher = p } }

func WithDice(d Dice) Option { return func(s *GameService) { s.dice = d } }

func WithLogger(l *zap.Logger) Option { return func(s *GameService) { s.log = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *GameService) { s.metrics = m } }

// WithPendingTTL sets how long a roll waits for its answer; zero disables expiry.
func WithPendingTTL(d time.Duration) Option { return func(s *GameService) { s.pendingTTL = d } }

// WithMaxPlayers caps the players per session (2..4).
func WithMaxPlayers(n int) Option { return func(s *GameService) { s.maxPlayers = n } }

// WithClock is test-only for deterministic timestamps.
func WithClock(now func() time.Time) Option { return func(s *GameService) { s.now = now } }

func NewGameService(sessions SessionRepository, gate *QuestionGate, ledger MoveLedger, b *board.Board, opts ...Option) *GameService {
	s := &GameService{
		sessions:   sessions,
		gate:       gate,
		ledger:     ledger,
		board:      b,
		publisher:  nopPublisher{},
		dice:       CryptoDice{},
		log:        zap.NewNop(),
		finished:   newFinishedSessions(),
		pendingTTL: defaultPendingTTL,
		maxPlayers: domain.MaxPlayersPerGame,
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type event struct {
	kind    string
	payload any
}

func (s *GameService) emit(ctx context.Context, roomID string, events []event) {
	for _, e := range events {
		s.publisher.Publish(ctx, roomID, e.kind, e.payload)
	}
}

// CreateSessions partitions a room's ready players into sessions and starts them.
func (s *GameService) CreateSessions(ctx context.Context, roomID string, readyPlayerIDs []string) ([]string, error) {
	if roomID == "" {
		return nil, domain.NewError(domain.KindInvalidSessionState, "room id is required")
	}
	groups, err := Partition(readyPlayerIDs, s.maxPlayers)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(groups))
	for _, group := range groups {
		session := NewSessionWithClock(s.newID(), roomID, group, s.now)
		session.maxPlayers = s.maxPlayers
		session.start()
		s.sessions.Put(session)
		s.metrics.SessionStarted()

		players := make([]string, 0, len(group))
		for _, seat := range group {
			players = append(players, seat.PlayerID)
		}
		s.log.Info("session started",
			zap.String("room_id", roomID),
			zap.String("session_id", session.ID()),
			zap.Strings("players", players),
		)
		s.emit(ctx, roomID, []event{{
			kind:    domain.EventSessionStarted,
			payload: domain.SessionStartedEvent{SessionID: session.ID(), PlayerIDs: players},
		}})
		ids = append(ids, session.ID())
	}
	return ids, nil
}

// GetSession returns a snapshot of a session.
func (s *GameService) GetSession(_ context.Context, sessionID string) (domain.GameSession, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.GameSession{}, domain.ErrSessionNotFound
	}
	return session.Snapshot(), nil
}

// GetStats returns position, roll count and win flag per player. A finished
// session reports its full roster even after players have left it.
func (s *GameService) GetStats(_ context.Context, sessionID string) ([]domain.PlayerStats, error) {
	if stats, ok := s.finished.statsOf(sessionID); ok {
		return stats, nil
	}
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session.Stats(), nil
}

// GetHistory returns up to limit moves of a session, most recent first.
// History outlives the in-memory session once every player has left.
func (s *GameService) GetHistory(ctx context.Context, sessionID string, limit int) ([]domain.Move, error) {
	_, live := s.sessions.Get(sessionID)
	moves, err := s.ledger.History(ctx, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if !live && len(moves) == 0 {
		return nil, domain.ErrSessionNotFound
	}
	return moves, nil
}

// LeaveSession removes a player from a session that is not being played and
// drops the session once it is empty.
func (s *GameService) LeaveSession(_ context.Context, sessionID, playerID string) error {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.ErrSessionNotFound
	}

	session.mu.Lock()
	if session.status == domain.StatusActive {
		session.mu.Unlock()
		return domain.NewError(domain.KindInvalidSessionState, "cannot leave an active session")
	}
	removed := session.removeLocked(playerID)
	session.mu.Unlock()

	if !removed {
		return domain.ErrParticipantNotFound
	}
	s.log.Info("player left session", zap.String("session_id", sessionID), zap.String("player_id", playerID))
	s.sessions.DeleteIfEmpty(sessionID)
	return nil
}

// EndRoom finishes every still-active session of an abandoned room.
func (s *GameService) EndRoom(ctx context.Context, roomID string) int {
	ended := 0
	for _, session := range s.sessions.ByRoom(roomID) {
		session.mu.Lock()
		if session.status != domain.StatusActive {
			session.mu.Unlock()
			continue
		}
		session.finishLocked("")
		session.pending = nil
		endedAt := *session.endedAt
		s.finished.record(roomID, session.ID(), session.statsLocked())
		session.mu.Unlock()

		ended++
		s.metrics.SessionEnded()
		s.emit(ctx, roomID, []event{{
			kind:    domain.EventSessionFinished,
			payload: domain.SessionFinishedEvent{SessionID: session.ID(), EndedAt: endedAt},
		}})
	}
	if ended > 0 {
		s.log.Info("room ended", zap.String("room_id", roomID), zap.Int("sessions", ended))
	}
	return ended
}
