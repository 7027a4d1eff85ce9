package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"quizboard-service/internal/board"
	"quizboard-service/internal/domain"
)

type mapStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	order    []string
}

func newMapStore() *mapStore { return &mapStore{sessions: make(map[string]*Session)} }

func (s *mapStore) Put(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = session
	s.order = append(s.order, session.ID())
}

func (s *mapStore) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	return session, ok
}

func (s *mapStore) ByRoom(roomID string) []*Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Session
	for _, id := range s.order {
		if session, ok := s.sessions[id]; ok && session.RoomID() == roomID {
			out = append(out, session)
		}
	}
	return out
}

func (s *mapStore) DeleteIfEmpty(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[id]; ok && session.IsEmpty() {
		delete(s.sessions, id)
	}
}

type sliceLedger struct {
	mu       sync.Mutex
	moves    []domain.Move
	failNext error
}

func (l *sliceLedger) Append(_ context.Context, m domain.Move) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failNext != nil {
		err := l.failNext
		l.failNext = nil
		return err
	}
	for _, existing := range l.moves {
		if existing.SessionID == m.SessionID && existing.TurnNumber == m.TurnNumber {
			return domain.ErrDuplicateSubmission
		}
	}
	l.moves = append(l.moves, m)
	return nil
}

func (l *sliceLedger) History(ctx context.Context, sessionID string, limit int) ([]domain.Move, error) {
	moves, _ := l.Moves(ctx, sessionID)
	out := make([]domain.Move, 0, len(moves))
	for i := len(moves) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, moves[i])
	}
	return out, nil
}

func (l *sliceLedger) Moves(_ context.Context, sessionID string) ([]domain.Move, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.Move
	for _, m := range l.moves {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (l *sliceLedger) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.moves)
}

type stubBank struct {
	questions map[domain.Difficulty]domain.Question
	err       error
}

func (b *stubBank) GetQuestion(_ context.Context, d domain.Difficulty) (domain.Question, error) {
	if b.err != nil {
		return domain.Question{}, b.err
	}
	q, ok := b.questions[d]
	if !ok {
		return domain.Question{}, domain.ErrQuestionUnavailable
	}
	return q, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, _, eventType string, _ any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
}

func (p *recordingPublisher) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

// Correct answers: easy "b", medium "true", hard "b".
func testQuestions() map[domain.Difficulty]domain.Question {
	mcq := func(id string, d domain.Difficulty) domain.Question {
		return domain.Question{
			ID:         id,
			Prompt:     "pick b",
			Type:       domain.TypeMultipleChoice,
			Difficulty: d,
			Options: []domain.Option{
				{ID: "a", Text: "not this", Correct: false},
				{ID: "b", Text: "this", Correct: true},
			},
		}
	}
	return map[domain.Difficulty]domain.Question{
		domain.DifficultyEasy: mcq("e1", domain.DifficultyEasy),
		domain.DifficultyMedium: {
			ID:         "m1",
			Prompt:     "true?",
			Type:       domain.TypeTrueFalse,
			Difficulty: domain.DifficultyMedium,
			Answer:     "true",
		},
		domain.DifficultyHard: mcq("h1", domain.DifficultyHard),
	}
}

type engine struct {
	svc       *GameService
	store     *mapStore
	ledger    *sliceLedger
	bank      *stubBank
	published *recordingPublisher
}

// newEngine builds a service on a board with a ladder 16->47 and a snake 62->18.
func newEngine(t *testing.T, policy DifficultyPolicy, dice []int, opts ...Option) *engine {
	t.Helper()
	e := &engine{
		store:     newMapStore(),
		ledger:    &sliceLedger{},
		bank:      &stubBank{questions: testQuestions()},
		published: &recordingPublisher{},
	}
	b, err := board.New([]domain.BoardTransport{
		{Source: 16, Destination: 47, Kind: domain.KindLadder, Active: true},
		{Source: 62, Destination: 18, Kind: domain.KindSnake, Active: true},
	})
	require.NoError(t, err)

	opts = append([]Option{
		WithDice(NewSequenceDice(dice...)),
		WithPublisher(e.published),
		WithPendingTTL(0),
	}, opts...)
	e.svc = NewGameService(e.store, NewQuestionGate(e.bank, policy), e.ledger, b, opts...)
	return e
}

func (e *engine) start(t *testing.T, players ...string) *Session {
	t.Helper()
	ids, err := e.svc.CreateSessions(context.Background(), "room-1", players)
	require.NoError(t, err)
	session, ok := e.store.Get(ids[0])
	require.True(t, ok)
	return session
}

func setPosition(session *Session, playerID string, pos int) {
	session.mu.Lock()
	defer session.mu.Unlock()
	session.participantLocked(playerID).Position = pos
}

var errBoom = errors.New("boom")
