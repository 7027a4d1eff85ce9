package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quizboard-service/internal/app"
	"quizboard-service/internal/domain"
	"quizboard-service/internal/infra/memory"
)

// RoomSubscriber streams a room's broadcast events to one connection.
type RoomSubscriber interface {
	Subscribe(roomID string) (<-chan memory.RoomEvent, func())
}

type WSHandler struct {
	service  *app.GameService
	events   RoomSubscriber
	log      *zap.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler wires the gameplay socket. events may be nil when room
// broadcasts are not relayed to sockets.
func NewWSHandler(service *app.GameService, events RoomSubscriber, log *zap.Logger) *WSHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		events:  events,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Answer string `json:"answer"`
}

type historyPayload struct {
	Limit int `json:"limit"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the turn engine.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	userID := r.URL.Query().Get("userId")
	if sessionID == "" || userID == "" {
		http.Error(w, "missing sessionId or userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := r.Context()
	snapshot, err := h.service.GetSession(ctx, sessionID)
	if err == nil && !isParticipant(snapshot, userID) {
		err = domain.ErrParticipantNotFound
	}
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: newErrorPayload(err)})
		return
	}
	log := h.log.With(zap.String("session_id", sessionID), zap.String("player_id", userID))
	defer h.leaveIfFinished(sessionID, userID)

	var updates <-chan memory.RoomEvent
	if h.events != nil {
		var cancel func()
		updates, cancel = h.events.Subscribe(snapshot.RoomID)
		defer cancel()
	}

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// single writer; gorilla connections do not support concurrent writes
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Debug("ws write failed", zap.Error(err))
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "event", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- outboundMessage[any]{Type: "joined", Payload: snapshot}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		send <- h.dispatch(ctx, sessionID, userID, inbound)
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(ctx context.Context, sessionID, userID string, inbound inboundMessage) outboundMessage[any] {
	reply := func(typ string, payload any, err error) outboundMessage[any] {
		if err != nil {
			return outboundMessage[any]{Type: "error", Payload: newErrorPayload(err)}
		}
		return outboundMessage[any]{Type: typ, Payload: payload}
	}
	invalid := func(msg string) outboundMessage[any] {
		return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
	}

	switch inbound.Type {
	case "roll":
		result, err := h.service.Roll(ctx, sessionID, userID)
		return reply("rolled", result, err)
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return invalid("invalid answer payload")
		}
		result, err := h.service.SubmitAnswer(ctx, sessionID, userID, payload.Answer)
		return reply("turnResult", result, err)
	case "state":
		snapshot, err := h.service.GetSession(ctx, sessionID)
		return reply("session", snapshot, err)
	case "history":
		var payload historyPayload
		if len(inbound.Payload) > 0 {
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				return invalid("invalid history payload")
			}
		}
		moves, err := h.service.GetHistory(ctx, sessionID, payload.Limit)
		return reply("history", moves, err)
	case "stats":
		stats, err := h.service.GetStats(ctx, sessionID)
		return reply("stats", stats, err)
	default:
		return invalid("unsupported message type")
	}
}

// leaveIfFinished frees the seat once the game is over; active games keep the
// player seated so the pending-turn expiry can move play along.
func (h *WSHandler) leaveIfFinished(sessionID, userID string) {
	ctx := context.Background()
	snapshot, err := h.service.GetSession(ctx, sessionID)
	if err != nil || snapshot.Status != domain.StatusFinished {
		return
	}
	_ = h.service.LeaveSession(ctx, sessionID, userID)
}

func isParticipant(snapshot domain.GameSession, userID string) bool {
	for _, p := range snapshot.Participants {
		if p.PlayerID == userID {
			return true
		}
	}
	return false
}
