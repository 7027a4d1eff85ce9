package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizboard-service/internal/domain"
)

func TestMoveLedgerHistoryMostRecentFirst(t *testing.T) {
	ledger := NewMoveLedger()
	ctx := context.Background()
	for turn := 1; turn <= 5; turn++ {
		require.NoError(t, ledger.Append(ctx, domain.Move{SessionID: "s-1", TurnNumber: turn}))
	}

	history, err := ledger.History(ctx, "s-1", 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, 5, history[0].TurnNumber)
	assert.Equal(t, 3, history[2].TurnNumber)

	all, err := ledger.History(ctx, "s-1", 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	moves, err := ledger.Moves(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, 1, moves[0].TurnNumber)
}

func TestMoveLedgerRejectsDuplicateTurn(t *testing.T) {
	ledger := NewMoveLedger()
	ctx := context.Background()
	require.NoError(t, ledger.Append(ctx, domain.Move{SessionID: "s-1", TurnNumber: 1}))

	err := ledger.Append(ctx, domain.Move{SessionID: "s-1", TurnNumber: 1})
	assert.True(t, errors.Is(err, domain.ErrDuplicateSubmission))

	// other sessions have their own turn space
	require.NoError(t, ledger.Append(ctx, domain.Move{SessionID: "s-2", TurnNumber: 1}))
}

func TestMoveLedgerUnknownSession(t *testing.T) {
	history, err := NewMoveLedger().History(context.Background(), "missing", 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}
