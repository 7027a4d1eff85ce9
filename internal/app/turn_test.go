package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizboard-service/internal/domain"
	"quizboard-service/internal/metrics"
)

func TestOvershootWithHardCorrectAnswerWins(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, DiceDifficulty, []int{6})
	session := e.start(t, "p1", "p2")
	setPosition(session, "p1", 95)

	rolled, err := e.svc.Roll(ctx, session.ID(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 100, rolled.PositionAfterDice)
	require.NotNil(t, rolled.Question)
	assert.Equal(t, domain.DifficultyHard, rolled.Question.Difficulty)
	assert.Nil(t, rolled.Resolution)

	result, err := e.svc.SubmitAnswer(ctx, session.ID(), "p1", "b")
	require.NoError(t, err)
	assert.True(t, result.IsCorrect)
	assert.Equal(t, 3, result.BonusSteps)
	assert.Equal(t, 100, result.PositionFinal)
	assert.True(t, result.WonGame)
	assert.Empty(t, result.NextPlayerID)

	snap := session.Snapshot()
	assert.Equal(t, domain.StatusFinished, snap.Status)
	assert.Equal(t, domain.PhaseFinished, snap.Phase)
	assert.Equal(t, 1, snap.TurnNumber)
	assert.NotNil(t, snap.EndedAt)

	_, err = e.svc.Roll(ctx, session.ID(), "p2")
	assert.True(t, errors.Is(err, domain.ErrInvalidSessionState))

	assert.Equal(t, []string{
		domain.EventSessionStarted,
		domain.EventTurnRolled,
		domain.EventTurnResolved,
		domain.EventSessionFinished,
	}, e.published.kinds())
}

func TestLadderAppliesBeforeIncorrectAnswer(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, DiceDifficulty, []int{6})
	session := e.start(t, "p1", "p2")
	setPosition(session, "p1", 10)

	rolled, err := e.svc.Roll(ctx, session.ID(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 16, rolled.PositionAfterDice)
	require.NotNil(t, rolled.TransportPreview)
	assert.Equal(t, 47, rolled.TransportPreview.Destination)

	result, err := e.svc.SubmitAnswer(ctx, session.ID(), "p1", "a")
	require.NoError(t, err)
	assert.False(t, result.IsCorrect)
	assert.Equal(t, 0, result.BonusSteps)
	assert.Equal(t, 47, result.PositionFinal)
	assert.Equal(t, "p2", result.NextPlayerID)

	moves, _ := e.ledger.Moves(ctx, session.ID())
	require.Len(t, moves, 1)
	assert.True(t, moves[0].HitLadder)
	assert.Equal(t, 16, moves[0].TransportFrom)
	assert.Equal(t, 47, moves[0].TransportTo)
}

func TestSnakeThenMediumBonus(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, FixedDifficulty(domain.DifficultyMedium), []int{2})
	session := e.start(t, "p1", "p2")
	setPosition(session, "p1", 60)

	_, err := e.svc.Roll(ctx, session.ID(), "p1")
	require.NoError(t, err)
	result, err := e.svc.SubmitAnswer(ctx, session.ID(), "p1", "TRUE")
	require.NoError(t, err)
	assert.True(t, result.IsCorrect)
	assert.Equal(t, 2, result.BonusSteps)
	assert.Equal(t, 20, result.PositionFinal)
	require.NotNil(t, result.TransportApplied)
	assert.Equal(t, domain.KindSnake, result.TransportApplied.Kind)
}

func TestTurnsRotateRoundRobin(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, DiceDifficulty, []int{1})
	players := []string{"p1", "p2", "p3"}
	session := e.start(t, players...)

	for k := 0; k < 9; k++ {
		snap := session.Snapshot()
		require.Equal(t, k%3+1, snap.CurrentPlayerNumber, "turn %d", k+1)
		require.Equal(t, k+1, snap.TurnNumber)
		actor := players[k%3]

		_, err := e.svc.Roll(ctx, session.ID(), actor)
		require.NoError(t, err)
		_, err = e.svc.SubmitAnswer(ctx, session.ID(), actor, "a")
		require.NoError(t, err)
	}

	for _, st := range session.Stats() {
		assert.Equal(t, 3, st.Position)
		assert.Equal(t, 3, st.DiceRolls)
	}
}

func TestRollRejectsWrongActorAndDoubleRoll(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, DiceDifficulty, []int{3})
	session := e.start(t, "p1", "p2")

	_, err := e.svc.Roll(ctx, session.ID(), "p2")
	assert.True(t, errors.Is(err, domain.ErrNotYourTurn))
	_, err = e.svc.Roll(ctx, session.ID(), "stranger")
	assert.True(t, errors.Is(err, domain.ErrNotYourTurn))
	_, err = e.svc.Roll(ctx, "missing", "p1")
	assert.True(t, errors.Is(err, domain.ErrSessionNotFound))

	_, err = e.svc.Roll(ctx, session.ID(), "p1")
	require.NoError(t, err)
	_, err = e.svc.Roll(ctx, session.ID(), "p1")
	assert.True(t, errors.Is(err, domain.ErrInvalidSessionState))

	snap := session.Snapshot()
	assert.Equal(t, domain.PhaseAwaitingAnswer, snap.Phase)
	require.NotNil(t, snap.Pending)
	assert.Equal(t, 3, snap.Pending.PositionAfterDice)
}

func TestSubmitAnswerChecks(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, DiceDifficulty, []int{3})
	session := e.start(t, "p1", "p2")

	_, err := e.svc.SubmitAnswer(ctx, session.ID(), "p1", "b")
	assert.True(t, errors.Is(err, domain.ErrInvalidSessionState), "no roll yet")

	_, err = e.svc.Roll(ctx, session.ID(), "p1")
	require.NoError(t, err)
	_, err = e.svc.SubmitAnswer(ctx, session.ID(), "p2", "true")
	assert.True(t, errors.Is(err, domain.ErrNotYourTurn))
	assert.Zero(t, e.ledger.count())
}

func TestSubmitAnswerIsIdempotent(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, DiceDifficulty, []int{3})
	session := e.start(t, "p1", "p2")

	_, err := e.svc.Roll(ctx, session.ID(), "p1")
	require.NoError(t, err)
	first, err := e.svc.SubmitAnswer(ctx, session.ID(), "p1", "true")
	require.NoError(t, err)

	again, err := e.svc.SubmitAnswer(ctx, session.ID(), "p1", "false")
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, 1, e.ledger.count())
	assert.Equal(t, 5, session.Stats()[0].Position)

	_, err = e.svc.SubmitAnswer(ctx, session.ID(), "p2", "true")
	assert.True(t, errors.Is(err, domain.ErrInvalidSessionState))
}

func TestConcurrentSubmitsRecordOneMove(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, DiceDifficulty, []int{5})
	session := e.start(t, "p1", "p2")
	_, err := e.svc.Roll(ctx, session.ID(), "p1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]domain.TurnResult, 16)
	errs := make([]error, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = e.svc.SubmitAnswer(ctx, session.ID(), "p1", "b")
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0], results[i])
	}
	assert.Equal(t, 1, e.ledger.count())
	assert.Equal(t, 8, results[0].PositionFinal)
}

func TestQuestionUnavailableResolvesWithoutBonus(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, DiceDifficulty, []int{4})
	e.bank.questions = nil
	session := e.start(t, "p1", "p2")

	rolled, err := e.svc.Roll(ctx, session.ID(), "p1")
	require.NoError(t, err)
	assert.Nil(t, rolled.Question)
	require.NotNil(t, rolled.Resolution)
	assert.Equal(t, 4, rolled.Resolution.PositionFinal)
	assert.Equal(t, 0, rolled.Resolution.BonusSteps)
	assert.Equal(t, "p2", rolled.Resolution.NextPlayerID)

	moves, _ := e.ledger.Moves(ctx, session.ID())
	require.Len(t, moves, 1)
	assert.Empty(t, moves[0].QuestionID)
	assert.Equal(t, domain.PhaseAwaitingRoll, session.Snapshot().Phase)
}

func TestBankFailureAbortsRoll(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, DiceDifficulty, []int{4})
	e.bank.err = errBoom
	session := e.start(t, "p1", "p2")

	_, err := e.svc.Roll(ctx, session.ID(), "p1")
	assert.True(t, errors.Is(err, errBoom))

	snap := session.Snapshot()
	assert.Equal(t, domain.PhaseAwaitingRoll, snap.Phase)
	assert.Equal(t, "p1", snap.CurrentPlayerID)
	assert.Zero(t, e.ledger.count())
}

func TestLedgerFailureLeavesTurnPending(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, DiceDifficulty, []int{3})
	session := e.start(t, "p1", "p2")
	_, err := e.svc.Roll(ctx, session.ID(), "p1")
	require.NoError(t, err)

	e.ledger.failNext = errBoom
	_, err = e.svc.SubmitAnswer(ctx, session.ID(), "p1", "true")
	assert.True(t, errors.Is(err, errBoom))

	snap := session.Snapshot()
	assert.Equal(t, domain.PhaseAwaitingAnswer, snap.Phase)
	assert.Equal(t, "p1", snap.CurrentPlayerID)
	assert.Equal(t, 0, session.Stats()[0].Position)

	result, err := e.svc.SubmitAnswer(ctx, session.ID(), "p1", "true")
	require.NoError(t, err)
	assert.Equal(t, 5, result.PositionFinal)
}

func TestPendingTurnExpires(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	e := newEngine(t, DiceDifficulty, []int{2}, WithPendingTTL(20*time.Millisecond), WithMetrics(m))
	session := e.start(t, "p1", "p2")

	rolled, err := e.svc.Roll(ctx, session.ID(), "p1")
	require.NoError(t, err)
	assert.False(t, rolled.ExpiresAt.IsZero())

	require.Eventually(t, func() bool {
		return e.ledger.count() == 1
	}, 2*time.Second, 5*time.Millisecond)

	moves, _ := e.ledger.Moves(ctx, session.ID())
	assert.True(t, moves[0].Expired)
	assert.False(t, moves[0].Correct)
	assert.Equal(t, 2, moves[0].PositionFinal)

	snap := session.Snapshot()
	assert.Equal(t, "p2", snap.CurrentPlayerID)
	assert.Equal(t, domain.PhaseAwaitingRoll, snap.Phase)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PendingExpired))

	_, err = e.svc.SubmitAnswer(ctx, session.ID(), "p1", "b")
	require.NoError(t, err, "late answer returns the expired outcome")
	assert.Equal(t, 1, e.ledger.count())
}

func TestAnsweredTurnDoesNotExpire(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, DiceDifficulty, []int{2}, WithPendingTTL(30*time.Millisecond))
	session := e.start(t, "p1", "p2")

	_, err := e.svc.Roll(ctx, session.ID(), "p1")
	require.NoError(t, err)
	_, err = e.svc.SubmitAnswer(ctx, session.ID(), "p1", "b")
	require.NoError(t, err)

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 1, e.ledger.count())
	assert.Equal(t, "p2", session.Snapshot().CurrentPlayerID)
}

func TestMetricsCountOutcomes(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	e := newEngine(t, DiceDifficulty, []int{1}, WithMetrics(m))
	session := e.start(t, "p1", "p2")

	_, _ = e.svc.Roll(ctx, session.ID(), "p1")
	_, _ = e.svc.SubmitAnswer(ctx, session.ID(), "p1", "b")
	_, _ = e.svc.Roll(ctx, session.ID(), "p2")
	_, _ = e.svc.SubmitAnswer(ctx, session.ID(), "p2", "a")

	assert.Equal(t, float64(1), testutil.ToFloat64(m.SessionsCreated))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ActiveSessions))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.Rolls))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.TurnsResolved.WithLabelValues(metrics.OutcomeCorrect)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.TurnsResolved.WithLabelValues(metrics.OutcomeIncorrect)))
}
