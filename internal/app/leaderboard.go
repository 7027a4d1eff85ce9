package app

import (
	"context"
	"fmt"
	"sort"

	"quizboard-service/internal/domain"
)

// Leaderboard ranks every player of a room's sessions. It is a read-only rollup
// over participant state and the move ledger.
func (s *GameService) Leaderboard(ctx context.Context, roomID string) (domain.Leaderboard, error) {
	var entries []domain.LeaderboardEntry
	for _, r := range s.rosters(roomID) {
		moves, err := s.ledger.Moves(ctx, r.sessionID)
		if err != nil {
			return domain.Leaderboard{}, fmt.Errorf("load moves for %s: %w", r.sessionID, err)
		}
		type tally struct{ moves, correct, bonus int }
		tallies := make(map[string]*tally)
		for _, m := range moves {
			t, ok := tallies[m.PlayerID]
			if !ok {
				t = &tally{}
				tallies[m.PlayerID] = t
			}
			t.moves++
			t.bonus += m.BonusSteps
			if m.Correct {
				t.correct++
			}
		}

		for _, st := range r.stats {
			e := domain.LeaderboardEntry{
				PlayerID:     st.PlayerID,
				SessionID:    r.sessionID,
				PlayerNumber: st.PlayerNumber,
				Position:     st.Position,
				Won:          st.Won,
			}
			if t, ok := tallies[st.PlayerID]; ok {
				e.TotalMoves = t.moves
				e.CorrectAnswers = t.correct
				e.BonusSteps = t.bonus
			}
			entries = append(entries, e)
		}
	}

	// Winners first, then furthest along, then fewest moves.
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Won != b.Won {
			return a.Won
		}
		if a.Position != b.Position {
			return a.Position > b.Position
		}
		if a.TotalMoves != b.TotalMoves {
			return a.TotalMoves < b.TotalMoves
		}
		return a.PlayerID < b.PlayerID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return domain.Leaderboard{
		RoomID:    roomID,
		Entries:   entries,
		UpdatedAt: s.now(),
	}, nil
}

type roster struct {
	sessionID string
	stats     []domain.PlayerStats
}

// rosters lists the live sessions of a room in creation order followed by the
// finished ones the live store has already dropped. Finished sessions always
// report their final roster.
func (s *GameService) rosters(roomID string) []roster {
	var out []roster
	live := make(map[string]bool)
	for _, session := range s.sessions.ByRoom(roomID) {
		live[session.ID()] = true
		stats, ok := s.finished.statsOf(session.ID())
		if !ok {
			stats = session.Stats()
		}
		out = append(out, roster{sessionID: session.ID(), stats: stats})
	}
	for _, id := range s.finished.room(roomID) {
		if live[id] {
			continue
		}
		stats, _ := s.finished.statsOf(id)
		out = append(out, roster{sessionID: id, stats: stats})
	}
	return out
}
