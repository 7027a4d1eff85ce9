package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"quizboard-service/internal/board"
	"quizboard-service/internal/domain"
	"quizboard-service/internal/metrics"
)

// Roll draws the dice for the acting player and gates the move behind a question.
// When the question bank has nothing to offer the move resolves immediately with
// no bonus and RollResult.Resolution is set.
func (s *GameService) Roll(ctx context.Context, sessionID, actorID string) (domain.RollResult, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.RollResult{}, domain.ErrSessionNotFound
	}

	session.mu.Lock()
	result, events, err := s.rollLocked(ctx, session, actorID)
	session.mu.Unlock()
	if err != nil {
		return domain.RollResult{}, err
	}

	s.emit(ctx, session.roomID, events)
	return result, nil
}

func (s *GameService) rollLocked(ctx context.Context, session *Session, actorID string) (domain.RollResult, []event, error) {
	if session.status != domain.StatusActive {
		return domain.RollResult{}, nil, domain.NewError(domain.KindInvalidSessionState,
			fmt.Sprintf("cannot roll in a %s session", session.status))
	}
	actor := session.currentLocked()
	if actor == nil {
		return domain.RollResult{}, nil, fmt.Errorf("%w: no acting player in active session", domain.ErrInvariantViolation)
	}
	if actor.PlayerID != actorID {
		return domain.RollResult{}, nil, domain.ErrNotYourTurn
	}
	if session.pending != nil && !session.pending.Consumed {
		return domain.RollResult{}, nil, domain.NewError(domain.KindInvalidSessionState, "a roll is already waiting for its answer")
	}

	dice, err := s.dice.Roll()
	if err != nil {
		return domain.RollResult{}, nil, err
	}
	afterDice, err := board.AdvanceDice(actor.Position, dice)
	if err != nil {
		return domain.RollResult{}, nil, err
	}

	now := s.now()
	pending := &domain.PendingTurn{
		ID:                s.newID(),
		SessionID:         session.id,
		PlayerID:          actor.PlayerID,
		TurnNumber:        session.turnNumber,
		DiceValue:         dice,
		PositionBefore:    actor.Position,
		PositionAfterDice: afterDice,
		CreatedAt:         now,
	}
	if t, ok := s.board.Lookup(afterDice); ok {
		pending.Transport = &t
	}

	result := domain.RollResult{
		SessionID:          session.id,
		PlayerID:           actor.PlayerID,
		TurnNumber:         pending.TurnNumber,
		DiceValue:          dice,
		PositionBeforeRoll: pending.PositionBefore,
		PositionAfterDice:  afterDice,
		TransportPreview:   pending.Transport,
	}

	q, err := s.gate.Select(ctx, dice)
	if errors.Is(err, domain.ErrQuestionUnavailable) {
		s.log.Warn("no question available, resolving roll without a question",
			zap.String("session_id", session.id),
			zap.String("player_id", actor.PlayerID),
			zap.Int("turn", pending.TurnNumber),
		)
		resolution, events, err := s.resolveLocked(ctx, session, pending, "", false, false)
		if err != nil {
			return domain.RollResult{}, nil, err
		}
		s.metrics.Rolled()
		result.Resolution = &resolution
		return result, append([]event{{kind: domain.EventTurnRolled, payload: result}}, events...), nil
	}
	if err != nil {
		return domain.RollResult{}, nil, err
	}

	pending.Question = &q
	if s.pendingTTL > 0 {
		pending.ExpiresAt = now.Add(s.pendingTTL)
	}
	session.pending = pending
	s.armExpiryLocked(session, pending.ID)
	s.metrics.Rolled()

	result.Question = q.Public()
	result.ExpiresAt = pending.ExpiresAt
	s.log.Debug("dice rolled",
		zap.String("session_id", session.id),
		zap.String("player_id", actor.PlayerID),
		zap.Int("turn", pending.TurnNumber),
		zap.Int("dice", dice),
		zap.String("question_id", q.ID),
	)
	return result, []event{{kind: domain.EventTurnRolled, payload: result}}, nil
}

// SubmitAnswer resolves the pending roll of the acting player. Re-submitting for
// a turn that was already resolved returns the earlier outcome and writes nothing.
func (s *GameService) SubmitAnswer(ctx context.Context, sessionID, actorID, answer string) (domain.TurnResult, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.TurnResult{}, domain.ErrSessionNotFound
	}

	session.mu.Lock()
	result, events, err := s.submitLocked(ctx, session, actorID, answer)
	session.mu.Unlock()
	if err != nil {
		return domain.TurnResult{}, err
	}

	s.emit(ctx, session.roomID, events)
	return result, nil
}

func (s *GameService) submitLocked(ctx context.Context, session *Session, actorID, answer string) (domain.TurnResult, []event, error) {
	pending := session.pending
	if pending == nil {
		return domain.TurnResult{}, nil, domain.NewError(domain.KindInvalidSessionState, "no roll is waiting for an answer")
	}
	if pending.Consumed {
		last := session.lastResult
		if pending.PlayerID == actorID && last != nil && last.TurnNumber == pending.TurnNumber {
			s.log.Debug("duplicate answer ignored",
				zap.String("session_id", session.id),
				zap.String("player_id", actorID),
				zap.Int("turn", pending.TurnNumber),
			)
			return *last, nil, nil
		}
		return domain.TurnResult{}, nil, domain.NewError(domain.KindInvalidSessionState, "no roll is waiting for an answer")
	}
	if session.status != domain.StatusActive {
		return domain.TurnResult{}, nil, domain.NewError(domain.KindInvalidSessionState,
			fmt.Sprintf("cannot answer in a %s session", session.status))
	}
	if pending.PlayerID != actorID {
		return domain.TurnResult{}, nil, domain.ErrNotYourTurn
	}
	if pending.Question == nil {
		return domain.TurnResult{}, nil, fmt.Errorf("%w: pending turn without question", domain.ErrInvariantViolation)
	}

	correct := s.gate.Evaluate(*pending.Question, answer)
	return s.resolveLocked(ctx, session, pending, answer, correct, false)
}

// resolveLocked finishes a pending turn. The ledger append is the only step that
// can fail and it runs before any session state changes.
func (s *GameService) resolveLocked(ctx context.Context, session *Session, pending *domain.PendingTurn, answer string, correct, expired bool) (domain.TurnResult, []event, error) {
	player := session.participantLocked(pending.PlayerID)
	if player == nil {
		return domain.TurnResult{}, nil, domain.ErrParticipantNotFound
	}

	var difficulty domain.Difficulty
	var questionID string
	if pending.Question != nil {
		difficulty = pending.Question.Difficulty
		questionID = pending.Question.ID
	}
	bonus := board.BonusSteps(difficulty, correct)
	landing, err := board.Resolve(pending.PositionAfterDice, s.board, bonus)
	if err != nil {
		return domain.TurnResult{}, nil, err
	}
	won := board.IsWin(landing.Final)

	move := domain.Move{
		ID:                s.newID(),
		SessionID:         session.id,
		PlayerID:          player.PlayerID,
		TurnNumber:        pending.TurnNumber,
		DiceValue:         pending.DiceValue,
		PositionBefore:    pending.PositionBefore,
		PositionAfterDice: pending.PositionAfterDice,
		PositionFinal:     landing.Final,
		HitSnake:          landing.HitSnake(),
		HitLadder:         landing.HitLadder(),
		QuestionID:        questionID,
		Answer:            answer,
		Correct:           correct,
		Difficulty:        difficulty,
		BonusSteps:        bonus,
		WonGame:           won,
		Expired:           expired,
		CreatedAt:         s.now(),
	}
	if landing.Transport != nil {
		move.TransportFrom = landing.Transport.Source
		move.TransportTo = landing.Transport.Destination
	}
	if err := s.ledger.Append(ctx, move); err != nil {
		return domain.TurnResult{}, nil, fmt.Errorf("append move: %w", err)
	}

	pending.Consumed = true
	session.pending = pending
	session.stopExpiryLocked()
	player.Position = landing.Final
	player.DiceRolls++

	result := domain.TurnResult{
		SessionID:         session.id,
		PlayerID:          player.PlayerID,
		TurnNumber:        pending.TurnNumber,
		DiceValue:         pending.DiceValue,
		PositionBefore:    pending.PositionBefore,
		PositionAfterDice: pending.PositionAfterDice,
		IsCorrect:         correct,
		BonusSteps:        bonus,
		PositionFinal:     landing.Final,
		TransportApplied:  landing.Transport,
		WonGame:           won,
		Expired:           expired,
	}
	if won {
		session.finishLocked(player.PlayerID)
		s.finished.record(session.roomID, session.id, session.statsLocked())
		s.metrics.SessionEnded()
	} else {
		session.advanceLocked()
		result.NextPlayerID = session.currentLocked().PlayerID
	}
	session.lastResult = &result

	s.metrics.TurnResolved(outcomeOf(pending, correct, expired), won)
	s.log.Info("turn resolved",
		zap.String("session_id", session.id),
		zap.String("player_id", player.PlayerID),
		zap.Int("turn", pending.TurnNumber),
		zap.Int("from", pending.PositionBefore),
		zap.Int("to", landing.Final),
		zap.Bool("correct", correct),
		zap.Bool("expired", expired),
		zap.Bool("won", won),
	)

	events := []event{{kind: domain.EventTurnResolved, payload: result}}
	if won {
		events = append(events, event{
			kind:    domain.EventSessionFinished,
			payload: domain.SessionFinishedEvent{SessionID: session.id, WinnerID: player.PlayerID, EndedAt: *session.endedAt},
		})
	}
	return result, events, nil
}

func outcomeOf(pending *domain.PendingTurn, correct, expired bool) string {
	switch {
	case expired:
		return metrics.OutcomeExpired
	case pending.Question == nil:
		return metrics.OutcomeUngated
	case correct:
		return metrics.OutcomeCorrect
	default:
		return metrics.OutcomeIncorrect
	}
}

func (s *GameService) armExpiryLocked(session *Session, pendingID string) {
	if s.pendingTTL <= 0 {
		return
	}
	session.stopExpiryLocked()
	session.expiry = time.AfterFunc(s.pendingTTL, func() {
		s.expire(session, pendingID)
	})
}

// expire auto-resolves an unanswered roll as incorrect so a disconnected player
// cannot stall the session.
func (s *GameService) expire(session *Session, pendingID string) {
	ctx, cancel := context.WithTimeout(context.Background(), expiryResolveTimeout)
	defer cancel()

	session.mu.Lock()
	pending := session.pending
	if pending == nil || pending.ID != pendingID || pending.Consumed || session.status != domain.StatusActive {
		session.mu.Unlock()
		return
	}
	_, events, err := s.resolveLocked(ctx, session, pending, "", false, true)
	if err != nil {
		s.log.Error("auto-resolve of expired turn failed, retrying",
			zap.String("session_id", session.id),
			zap.String("player_id", pending.PlayerID),
			zap.Error(err),
		)
		session.expiry = nil
		s.armExpiryLocked(session, pendingID)
		session.mu.Unlock()
		return
	}
	session.mu.Unlock()

	s.log.Info("pending turn expired",
		zap.String("session_id", session.id),
		zap.String("player_id", pending.PlayerID),
		zap.Int("turn", pending.TurnNumber),
	)
	s.emit(ctx, session.roomID, events)
}
