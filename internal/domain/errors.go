package domain

import "errors"

// ErrorKind classifies failures reported to callers of the turn engine.
type ErrorKind string

const (
	KindNotYourTurn         ErrorKind = "not_your_turn"
	KindInvalidSessionState ErrorKind = "invalid_session_state"
	KindDuplicateSubmission ErrorKind = "duplicate_submission"
	KindSessionNotFound     ErrorKind = "session_not_found"
	KindQuestionUnavailable ErrorKind = "question_unavailable"
	KindInvariantViolation  ErrorKind = "invariant_violation"
	KindParticipantNotFound ErrorKind = "participant_not_found"
)

// GameError is a structured failure carrying its kind.
type GameError struct {
	Kind    ErrorKind
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// Is matches any GameError of the same kind, so callers can compare against the
// sentinels below even when the message was specialised.
func (e *GameError) Is(target error) bool {
	t, ok := target.(*GameError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	// ErrNotYourTurn is returned when the actor is not the session's acting player.
	ErrNotYourTurn = &GameError{Kind: KindNotYourTurn, Message: "not your turn"}
	// ErrInvalidSessionState is returned when an operation is attempted outside its valid state.
	ErrInvalidSessionState = &GameError{Kind: KindInvalidSessionState, Message: "invalid session state"}
	// ErrDuplicateSubmission marks an answer for an already consumed pending turn.
	ErrDuplicateSubmission = &GameError{Kind: KindDuplicateSubmission, Message: "pending turn already consumed"}
	// ErrSessionNotFound is returned when a game session does not exist.
	ErrSessionNotFound = &GameError{Kind: KindSessionNotFound, Message: "game session not found"}
	// ErrQuestionUnavailable indicates the question bank has nothing to offer.
	ErrQuestionUnavailable = &GameError{Kind: KindQuestionUnavailable, Message: "no question available"}
	// ErrInvariantViolation aborts an operation whose computed state is impossible.
	ErrInvariantViolation = &GameError{Kind: KindInvariantViolation, Message: "turn engine invariant violated"}
	// ErrParticipantNotFound is returned when a player is not part of the session.
	ErrParticipantNotFound = &GameError{Kind: KindParticipantNotFound, Message: "participant not found in session"}
)

// NewError builds a GameError of the given kind with a specific message.
func NewError(kind ErrorKind, message string) *GameError {
	return &GameError{Kind: kind, Message: message}
}

// KindOf extracts the kind of a (possibly wrapped) GameError, or "" for other errors.
func KindOf(err error) ErrorKind {
	var ge *GameError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}
