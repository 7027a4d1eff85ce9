package board

import (
	"fmt"

	"quizboard-service/internal/domain"
)

// Landing is the outcome of resolving one move.
type Landing struct {
	Final     int
	Transport *domain.BoardTransport
}

// HitSnake reports whether a snake was applied.
func (l Landing) HitSnake() bool {
	return l.Transport != nil && l.Transport.Kind == domain.KindSnake
}

// HitLadder reports whether a ladder was applied.
func (l Landing) HitLadder() bool {
	return l.Transport != nil && l.Transport.Kind == domain.KindLadder
}

// AdvanceDice moves a token by the dice value. Overshooting square 100 caps at 100.
func AdvanceDice(position, dice int) (int, error) {
	if position < 0 || position > domain.BoardSize {
		return 0, invariant("position %d outside board", position)
	}
	if dice < 1 || dice > domain.DiceFaces {
		return 0, invariant("dice value %d outside 1..%d", dice, domain.DiceFaces)
	}
	return min(position+dice, domain.BoardSize), nil
}

// BonusSteps is the bonus schedule: nothing for a wrong answer, otherwise
// easy 1, medium 2, hard 3.
func BonusSteps(difficulty domain.Difficulty, correct bool) int {
	if !correct {
		return 0
	}
	switch difficulty {
	case domain.DifficultyEasy:
		return 1
	case domain.DifficultyMedium:
		return 2
	case domain.DifficultyHard:
		return 3
	}
	return 0
}

// Resolve applies the transport at afterDice first and then adds the bonus,
// capping at square 100. It is a pure function of its inputs.
func Resolve(afterDice int, b *Board, bonus int) (Landing, error) {
	if afterDice < 0 || afterDice > domain.BoardSize {
		return Landing{}, invariant("position after dice %d outside board", afterDice)
	}
	if bonus < 0 {
		return Landing{}, invariant("negative bonus %d", bonus)
	}

	landing := Landing{Final: afterDice}
	if t, ok := b.Lookup(afterDice); ok {
		if t.Destination <= 0 || t.Destination > domain.BoardSize {
			return Landing{}, invariant("transport at %d leaves the board", t.Source)
		}
		landing.Final = t.Destination
		landing.Transport = &t
	}
	landing.Final = min(landing.Final+bonus, domain.BoardSize)
	return landing, nil
}

// IsWin reports whether a position ends the game.
func IsWin(position int) bool {
	return position == domain.BoardSize
}

func invariant(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvariantViolation, fmt.Sprintf(format, args...))
}
