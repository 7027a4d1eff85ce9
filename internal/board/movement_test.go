package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizboard-service/internal/domain"
)

func testBoard(t *testing.T) *Board {
	t.Helper()
	b, err := New([]domain.BoardTransport{
		{Source: 16, Destination: 47, Kind: domain.KindLadder, Active: true},
		{Source: 62, Destination: 18, Kind: domain.KindSnake, Active: true},
		{Source: 30, Destination: 99, Kind: domain.KindLadder, Active: false},
	})
	require.NoError(t, err)
	return b
}

func TestAdvanceDiceCapsAndIsMonotonic(t *testing.T) {
	for p := 0; p <= domain.BoardSize; p++ {
		prev := -1
		for d := 1; d <= domain.DiceFaces; d++ {
			got, err := AdvanceDice(p, d)
			require.NoError(t, err)
			require.LessOrEqual(t, got, domain.BoardSize)
			require.GreaterOrEqual(t, got, prev, "non-decreasing in dice for p=%d", p)
			prev = got
			if p > 0 {
				lower, err := AdvanceDice(p-1, d)
				require.NoError(t, err)
				require.LessOrEqual(t, lower, got, "non-decreasing in position for d=%d", d)
			}
		}
	}
}

func TestAdvanceDiceRejectsImpossibleInputs(t *testing.T) {
	_, err := AdvanceDice(101, 3)
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)
	_, err = AdvanceDice(-1, 3)
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)
	_, err = AdvanceDice(10, 0)
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)
	_, err = AdvanceDice(10, 7)
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)
}

func TestBonusSchedule(t *testing.T) {
	assert.Equal(t, 0, BonusSteps(domain.DifficultyHard, false))
	assert.Equal(t, 1, BonusSteps(domain.DifficultyEasy, true))
	assert.Equal(t, 2, BonusSteps(domain.DifficultyMedium, true))
	assert.Equal(t, 3, BonusSteps(domain.DifficultyHard, true))
	assert.Equal(t, 0, BonusSteps("", true))
}

func TestResolveOvershootWins(t *testing.T) {
	b := testBoard(t)
	afterDice, err := AdvanceDice(95, 6)
	require.NoError(t, err)
	require.Equal(t, 100, afterDice)

	landing, err := Resolve(afterDice, b, BonusSteps(domain.DifficultyHard, true))
	require.NoError(t, err)
	assert.Equal(t, 100, landing.Final)
	assert.Nil(t, landing.Transport)
	assert.True(t, IsWin(landing.Final))
}

func TestResolveLadderThenNoBonus(t *testing.T) {
	b := testBoard(t)
	afterDice, err := AdvanceDice(10, 6)
	require.NoError(t, err)
	require.Equal(t, 16, afterDice)

	landing, err := Resolve(afterDice, b, BonusSteps(domain.DifficultyEasy, false))
	require.NoError(t, err)
	assert.Equal(t, 47, landing.Final)
	assert.True(t, landing.HitLadder())
	assert.False(t, landing.HitSnake())
	assert.False(t, IsWin(landing.Final))
}

func TestResolveSnakeBeforeBonus(t *testing.T) {
	b := testBoard(t)
	afterDice, err := AdvanceDice(60, 2)
	require.NoError(t, err)
	require.Equal(t, 62, afterDice)

	landing, err := Resolve(afterDice, b, BonusSteps(domain.DifficultyMedium, true))
	require.NoError(t, err)
	assert.Equal(t, 20, landing.Final)
	assert.True(t, landing.HitSnake())
	require.NotNil(t, landing.Transport)
	assert.Equal(t, 62, landing.Transport.Source)
	assert.Equal(t, 18, landing.Transport.Destination)
}

func TestResolveIsPure(t *testing.T) {
	b := testBoard(t)
	for pos := 0; pos <= domain.BoardSize; pos++ {
		for bonus := 0; bonus <= 3; bonus++ {
			first, err := Resolve(pos, b, bonus)
			require.NoError(t, err)
			second, err := Resolve(pos, b, bonus)
			require.NoError(t, err)
			assert.Equal(t, first, second)
			assert.LessOrEqual(t, first.Final, domain.BoardSize)
		}
	}
}

func TestResolveInactiveTransportIgnored(t *testing.T) {
	landing, err := Resolve(30, testBoard(t), 0)
	require.NoError(t, err)
	assert.Equal(t, 30, landing.Final)
	assert.Nil(t, landing.Transport)
}

func TestResolveRejectsInvalidInput(t *testing.T) {
	_, err := Resolve(101, testBoard(t), 0)
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)
	_, err = Resolve(10, testBoard(t), -1)
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)
}

func TestWinIffHundred(t *testing.T) {
	for p := 0; p <= domain.BoardSize; p++ {
		assert.Equal(t, p == 100, IsWin(p))
	}
}
