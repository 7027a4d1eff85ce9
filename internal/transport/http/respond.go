package http

import (
	"encoding/json"
	"net/http"

	"quizboard-service/internal/domain"
)

type errorPayload struct {
	Message string           `json:"message"`
	Kind    domain.ErrorKind `json:"kind,omitempty"`
}

func newErrorPayload(err error) errorPayload {
	return errorPayload{Message: err.Error(), Kind: domain.KindOf(err)}
}

// statusFor maps a game error kind to an HTTP status.
func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindSessionNotFound, domain.KindParticipantNotFound:
		return http.StatusNotFound
	case domain.KindNotYourTurn, domain.KindInvalidSessionState, domain.KindDuplicateSubmission:
		return http.StatusConflict
	case domain.KindQuestionUnavailable:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), newErrorPayload(err))
}
