package http

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"quizboard-service/internal/app"
	"quizboard-service/internal/board"
	"quizboard-service/internal/domain"
	"quizboard-service/internal/infra/memory"
)

type fixture struct {
	service     *app.GameService
	broadcaster *memory.Broadcaster
	sessionIDs  []string
}

// newFixture starts one room with the given players on an empty board where
// every roll is a 3 and every question is the easy "2 + 2" one.
func newFixture(t *testing.T, players ...string) fixture {
	t.Helper()
	questions := memory.NewQuestionRepository(memory.NewStaticQuestionLoader([]domain.Question{{
		ID:         "q1",
		Prompt:     "What is 2 + 2?",
		Type:       domain.TypeMultipleChoice,
		Difficulty: domain.DifficultyEasy,
		Options: []domain.Option{
			{ID: "o1", Text: "3", Correct: false},
			{ID: "o2", Text: "4", Correct: true},
		},
	}}), time.Minute)
	broadcaster := memory.NewBroadcaster()
	service := app.NewGameService(
		memory.NewSessionStore(),
		app.NewQuestionGate(questions, app.FixedDifficulty(domain.DifficultyEasy)),
		memory.NewMoveLedger(),
		board.MustNew(nil),
		app.WithDice(app.NewSequenceDice(3)),
		app.WithPublisher(broadcaster),
		app.WithPendingTTL(0),
	)

	var ids []string
	if len(players) > 0 {
		var err error
		ids, err = service.CreateSessions(context.Background(), "room-1", players)
		require.NoError(t, err)
	}
	return fixture{service: service, broadcaster: broadcaster, sessionIDs: ids}
}
