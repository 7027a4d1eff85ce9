package domain

import "time"

// Board dimensions and session limits.
const (
	BoardSize         = 100
	DiceFaces         = 6
	MinPlayers        = 2
	MaxPlayersPerGame = 4
)

// SessionStatus is the persisted lifecycle status of a game session.
type SessionStatus string

const (
	StatusWaiting  SessionStatus = "waiting"
	StatusActive   SessionStatus = "active"
	StatusFinished SessionStatus = "finished"
)

// TurnPhase is the turn engine state of an active session.
type TurnPhase string

const (
	PhaseAwaitingRoll   TurnPhase = "awaiting_roll"
	PhaseAwaitingAnswer TurnPhase = "awaiting_answer"
	PhaseFinished       TurnPhase = "finished"
)

// TransportKind distinguishes snakes from ladders.
type TransportKind string

const (
	KindSnake  TransportKind = "snake"
	KindLadder TransportKind = "ladder"
)

// BoardTransport moves a token landing on Source to Destination.
type BoardTransport struct {
	Source      int           `json:"source"`
	Destination int           `json:"destination"`
	Kind        TransportKind `json:"kind"`
	Active      bool          `json:"active"`
}

// Participant is a player seated in a game session.
type Participant struct {
	SessionID    string `json:"sessionId"`
	PlayerID     string `json:"playerId"`
	PlayerNumber int    `json:"playerNumber"`
	Position     int    `json:"position"`
	DiceRolls    int    `json:"diceRolls"`
}

// PendingTurn carries the state between a roll and its matching answer.
type PendingTurn struct {
	ID                string          `json:"id"`
	SessionID         string          `json:"sessionId"`
	PlayerID          string          `json:"playerId"`
	TurnNumber        int             `json:"turnNumber"`
	DiceValue         int             `json:"diceValue"`
	PositionBefore    int             `json:"positionBefore"`
	PositionAfterDice int             `json:"positionAfterDice"`
	Transport         *BoardTransport `json:"transport,omitempty"`
	Question          *Question       `json:"-"`
	CreatedAt         time.Time       `json:"createdAt"`
	ExpiresAt         time.Time       `json:"expiresAt"`
	Consumed          bool            `json:"consumed"`
}

// Move is one resolved turn. Moves are never mutated after they are written.
type Move struct {
	ID                string     `json:"id"`
	SessionID         string     `json:"sessionId"`
	PlayerID          string     `json:"playerId"`
	TurnNumber        int        `json:"turnNumber"`
	DiceValue         int        `json:"diceValue"`
	PositionBefore    int        `json:"positionBefore"`
	PositionAfterDice int        `json:"positionAfterDice"`
	PositionFinal     int        `json:"positionFinal"`
	HitSnake          bool       `json:"hitSnake"`
	HitLadder         bool       `json:"hitLadder"`
	TransportFrom     int        `json:"transportFrom,omitempty"`
	TransportTo       int        `json:"transportTo,omitempty"`
	QuestionID        string     `json:"questionId,omitempty"`
	Answer            string     `json:"answer,omitempty"`
	Correct           bool       `json:"correct"`
	Difficulty        Difficulty `json:"difficulty,omitempty"`
	BonusSteps        int        `json:"bonusSteps"`
	WonGame           bool       `json:"wonGame"`
	Expired           bool       `json:"expired"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// PendingView is the client-safe view of a pending turn.
type PendingView struct {
	PlayerID          string          `json:"playerId"`
	DiceValue         int             `json:"diceValue"`
	PositionBefore    int             `json:"positionBefore"`
	PositionAfterDice int             `json:"positionAfterDice"`
	Transport         *BoardTransport `json:"transport,omitempty"`
	Question          *PublicQuestion `json:"question,omitempty"`
	ExpiresAt         time.Time       `json:"expiresAt"`
}

// GameSession is a point-in-time snapshot of a session.
type GameSession struct {
	ID                  string        `json:"id"`
	RoomID              string        `json:"roomId"`
	MaxPlayers          int           `json:"maxPlayers"`
	PlayerCount         int           `json:"playerCount"`
	CurrentPlayerID     string        `json:"currentPlayerId,omitempty"`
	CurrentPlayerNumber int           `json:"currentPlayerNumber,omitempty"`
	TurnNumber          int           `json:"turnNumber"`
	Status              SessionStatus `json:"status"`
	Phase               TurnPhase     `json:"phase"`
	Participants        []Participant `json:"participants"`
	Pending             *PendingView  `json:"pending,omitempty"`
	StartedAt           time.Time     `json:"startedAt"`
	EndedAt             *time.Time    `json:"endedAt,omitempty"`
}

// RollResult is returned to the acting player after a roll.
type RollResult struct {
	SessionID          string          `json:"sessionId"`
	PlayerID           string          `json:"playerId"`
	TurnNumber         int             `json:"turnNumber"`
	DiceValue          int             `json:"diceValue"`
	PositionBeforeRoll int             `json:"positionBeforeRoll"`
	PositionAfterDice  int             `json:"positionAfterDice"`
	TransportPreview   *BoardTransport `json:"transportPreview,omitempty"`
	Question           *PublicQuestion `json:"question,omitempty"`
	ExpiresAt          time.Time       `json:"expiresAt"`
	// Resolution is set when no question was available and the turn resolved immediately.
	Resolution *TurnResult `json:"resolution,omitempty"`
}

// TurnResult summarizes a resolved turn.
type TurnResult struct {
	SessionID         string          `json:"sessionId"`
	PlayerID          string          `json:"playerId"`
	TurnNumber        int             `json:"turnNumber"`
	DiceValue         int             `json:"diceValue"`
	PositionBefore    int             `json:"positionBefore"`
	PositionAfterDice int             `json:"positionAfterDice"`
	IsCorrect         bool            `json:"isCorrect"`
	BonusSteps        int             `json:"bonusSteps"`
	PositionFinal     int             `json:"positionFinal"`
	TransportApplied  *BoardTransport `json:"transportApplied,omitempty"`
	WonGame           bool            `json:"wonGame"`
	Expired           bool            `json:"expired"`
	NextPlayerID      string          `json:"nextPlayerId,omitempty"`
}

// PlayerStats is the per-player view returned by GetStats.
type PlayerStats struct {
	PlayerID     string `json:"playerId"`
	PlayerNumber int    `json:"playerNumber"`
	Position     int    `json:"position"`
	DiceRolls    int    `json:"diceRolls"`
	Won          bool   `json:"won"`
}

// LeaderboardEntry is one ranked player across a room's sessions.
type LeaderboardEntry struct {
	Rank           int    `json:"rank"`
	PlayerID       string `json:"playerId"`
	SessionID      string `json:"sessionId"`
	PlayerNumber   int    `json:"playerNumber"`
	Position       int    `json:"position"`
	TotalMoves     int    `json:"totalMoves"`
	CorrectAnswers int    `json:"correctAnswers"`
	BonusSteps     int    `json:"bonusSteps"`
	Won            bool   `json:"won"`
}

// Leaderboard captures in-progress standings for a room.
type Leaderboard struct {
	RoomID    string             `json:"roomId"`
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// Event types emitted to the broadcast publisher.
const (
	EventSessionStarted  = "session_started"
	EventTurnRolled      = "turn_rolled"
	EventTurnResolved    = "turn_resolved"
	EventSessionFinished = "session_finished"
)

// SessionFinishedEvent is the payload of EventSessionFinished.
type SessionFinishedEvent struct {
	SessionID string    `json:"sessionId"`
	WinnerID  string    `json:"winnerId,omitempty"`
	EndedAt   time.Time `json:"endedAt"`
}

// SessionStartedEvent is the payload of EventSessionStarted.
type SessionStartedEvent struct {
	SessionID string   `json:"sessionId"`
	PlayerIDs []string `json:"playerIds"`
}
