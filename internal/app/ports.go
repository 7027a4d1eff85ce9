package app

import (
	"context"

	"quizboard-service/internal/domain"
)

// SessionRepository abstracts where live sessions are kept (in-memory, Redis-marked, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	ByRoom(roomID string) []*Session
	DeleteIfEmpty(sessionID string)
}

// QuestionBank hands out questions for a difficulty. Implementations return
// domain.ErrQuestionUnavailable when the pool is empty.
type QuestionBank interface {
	GetQuestion(ctx context.Context, difficulty domain.Difficulty) (domain.Question, error)
}

// MoveLedger is the append-only log of resolved turns.
type MoveLedger interface {
	// Append stores a move; a second move for the same session turn is rejected
	// with domain.ErrDuplicateSubmission.
	Append(ctx context.Context, move domain.Move) error
	// History returns up to limit moves, most recent first. limit <= 0 means all.
	History(ctx context.Context, sessionID string, limit int) ([]domain.Move, error)
	// Moves returns every move of a session in turn order.
	Moves(ctx context.Context, sessionID string) ([]domain.Move, error)
}

// Publisher fans room events out to connected clients. Delivery is best-effort
// and must not block the caller.
type Publisher interface {
	Publish(ctx context.Context, roomID, eventType string, payload any)
}

// Publishers publishes to every member.
type Publishers []Publisher

func (ps Publishers) Publish(ctx context.Context, roomID, eventType string, payload any) {
	for _, p := range ps {
		p.Publish(ctx, roomID, eventType, payload)
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, string, any) {}
