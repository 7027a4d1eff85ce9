package app

import (
	"fmt"

	"quizboard-service/internal/domain"
)

// Seat is a player's place in a partitioned group.
type Seat struct {
	PlayerID     string
	PlayerNumber int
}

// Partition splits ready players into groups of at most maxPerGroup, keeping join
// order and numbering players 1..k within each group. Group sizes are balanced so
// that no group ends up with a single player (5 players -> 3+2).
func Partition(playerIDs []string, maxPerGroup int) ([][]Seat, error) {
	if maxPerGroup < domain.MinPlayers || maxPerGroup > domain.MaxPlayersPerGame {
		return nil, fmt.Errorf("partition: group size %d outside %d..%d", maxPerGroup, domain.MinPlayers, domain.MaxPlayersPerGame)
	}
	if len(playerIDs) < domain.MinPlayers {
		return nil, domain.NewError(domain.KindInvalidSessionState,
			fmt.Sprintf("need at least %d ready players, got %d", domain.MinPlayers, len(playerIDs)))
	}
	seen := make(map[string]struct{}, len(playerIDs))
	for _, id := range playerIDs {
		if id == "" {
			return nil, domain.NewError(domain.KindInvalidSessionState, "empty player id")
		}
		if _, dup := seen[id]; dup {
			return nil, domain.NewError(domain.KindInvalidSessionState, "duplicate player "+id)
		}
		seen[id] = struct{}{}
	}

	n := len(playerIDs)
	groups := (n + maxPerGroup - 1) / maxPerGroup
	base, extra := n/groups, n%groups

	out := make([][]Seat, 0, groups)
	next := 0
	for g := 0; g < groups; g++ {
		size := base
		if g < extra {
			size++
		}
		group := make([]Seat, 0, size)
		for i := 0; i < size; i++ {
			group = append(group, Seat{PlayerID: playerIDs[next], PlayerNumber: i + 1})
			next++
		}
		out = append(out, group)
	}
	return out, nil
}
