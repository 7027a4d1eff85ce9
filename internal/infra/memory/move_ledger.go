package memory

import (
	"context"
	"fmt"
	"sync"

	"quizboard-service/internal/domain"
)

// MoveLedger is an append-only in-memory app.MoveLedger. Moves are kept per
// session in append order, which is turn order.
type MoveLedger struct {
	mu    sync.RWMutex
	moves map[string][]domain.Move
}

func NewMoveLedger() *MoveLedger {
	return &MoveLedger{moves: make(map[string][]domain.Move)}
}

func (l *MoveLedger) Append(_ context.Context, move domain.Move) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.moves[move.SessionID] {
		if m.TurnNumber == move.TurnNumber {
			return fmt.Errorf("%w: turn %d of session %s already recorded",
				domain.ErrDuplicateSubmission, move.TurnNumber, move.SessionID)
		}
	}
	l.moves[move.SessionID] = append(l.moves[move.SessionID], move)
	return nil
}

func (l *MoveLedger) History(_ context.Context, sessionID string, limit int) ([]domain.Move, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	moves := l.moves[sessionID]
	n := len(moves)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.Move, 0, n)
	for i := len(moves) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, moves[i])
	}
	return out, nil
}

func (l *MoveLedger) Moves(_ context.Context, sessionID string) ([]domain.Move, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.Move(nil), l.moves[sessionID]...), nil
}
