package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizboard-service/internal/domain"
)

const uniqueViolation = "23505"

const moveColumns = `id, session_id, player_id, turn_number, dice_value,
	position_before, position_after_dice, position_final, hit_snake, hit_ladder,
	transport_from, transport_to, question_id, answer, correct, difficulty,
	bonus_steps, won_game, expired, created_at`

// MoveLedger persists resolved turns in game_moves. The (session_id, turn_number)
// unique constraint makes a replayed turn fail instead of double-applying.
type MoveLedger struct {
	pool *pgxpool.Pool
}

func NewMoveLedger(pool *pgxpool.Pool) *MoveLedger {
	return &MoveLedger{pool: pool}
}

func (l *MoveLedger) Append(ctx context.Context, m domain.Move) error {
	_, err := l.pool.Exec(ctx, `INSERT INTO game_moves (`+moveColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		m.ID, m.SessionID, m.PlayerID, m.TurnNumber, m.DiceValue,
		m.PositionBefore, m.PositionAfterDice, m.PositionFinal, m.HitSnake, m.HitLadder,
		m.TransportFrom, m.TransportTo, m.QuestionID, m.Answer, m.Correct, string(m.Difficulty),
		m.BonusSteps, m.WonGame, m.Expired, m.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: turn %d of session %s already recorded",
			domain.ErrDuplicateSubmission, m.TurnNumber, m.SessionID)
	}
	if err != nil {
		return fmt.Errorf("insert move: %w", err)
	}
	return nil
}

func (l *MoveLedger) History(ctx context.Context, sessionID string, limit int) ([]domain.Move, error) {
	if limit <= 0 {
		rows, err := l.pool.Query(ctx, `SELECT `+moveColumns+` FROM game_moves
			WHERE session_id=$1 ORDER BY turn_number DESC`, sessionID)
		return collectMoves(rows, err)
	}
	rows, err := l.pool.Query(ctx, `SELECT `+moveColumns+` FROM game_moves
		WHERE session_id=$1 ORDER BY turn_number DESC LIMIT $2`, sessionID, limit)
	return collectMoves(rows, err)
}

func (l *MoveLedger) Moves(ctx context.Context, sessionID string) ([]domain.Move, error) {
	rows, err := l.pool.Query(ctx, `SELECT `+moveColumns+` FROM game_moves
		WHERE session_id=$1 ORDER BY turn_number`, sessionID)
	return collectMoves(rows, err)
}

func collectMoves(rows pgx.Rows, err error) ([]domain.Move, error) {
	if err != nil {
		return nil, fmt.Errorf("query moves: %w", err)
	}
	defer rows.Close()

	var out []domain.Move
	for rows.Next() {
		var m domain.Move
		var difficulty string
		if err := rows.Scan(
			&m.ID, &m.SessionID, &m.PlayerID, &m.TurnNumber, &m.DiceValue,
			&m.PositionBefore, &m.PositionAfterDice, &m.PositionFinal, &m.HitSnake, &m.HitLadder,
			&m.TransportFrom, &m.TransportTo, &m.QuestionID, &m.Answer, &m.Correct, &difficulty,
			&m.BonusSteps, &m.WonGame, &m.Expired, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}
		m.Difficulty = domain.Difficulty(difficulty)
		out = append(out, m)
	}
	return out, rows.Err()
}
