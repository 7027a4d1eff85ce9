package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"quizboard-service/internal/app"
)

// APIHandler exposes session lifecycle and read models as JSON.
type APIHandler struct {
	service *app.GameService
	log     *zap.Logger
}

func NewAPIHandler(service *app.GameService, log *zap.Logger) *APIHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &APIHandler{service: service, log: log}
}

// Routes registers the API on mux.
func (h *APIHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/rooms/{roomId}/sessions", h.createSessions)
	mux.HandleFunc("GET /api/rooms/{roomId}/leaderboard", h.leaderboard)
	mux.HandleFunc("POST /api/rooms/{roomId}/end", h.endRoom)
	mux.HandleFunc("GET /api/sessions/{id}", h.getSession)
	mux.HandleFunc("GET /api/sessions/{id}/history", h.history)
	mux.HandleFunc("GET /api/sessions/{id}/stats", h.stats)
}

type createSessionsRequest struct {
	Players []string `json:"players"`
}

type createSessionsResponse struct {
	RoomID     string   `json:"roomId"`
	SessionIDs []string `json:"sessionIds"`
}

type endRoomResponse struct {
	RoomID string `json:"roomId"`
	Ended  int    `json:"ended"`
}

func (h *APIHandler) createSessions(w http.ResponseWriter, r *http.Request) {
	var req createSessionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid request body"})
		return
	}
	roomID := r.PathValue("roomId")
	ids, err := h.service.CreateSessions(r.Context(), roomID, req.Players)
	if err != nil {
		h.log.Debug("create sessions rejected", zap.String("room_id", roomID), zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createSessionsResponse{RoomID: roomID, SessionIDs: ids})
}

func (h *APIHandler) getSession(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.GetSession(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *APIHandler) history(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorPayload{Message: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}
	moves, err := h.service.GetHistory(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, moves)
}

func (h *APIHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *APIHandler) leaderboard(w http.ResponseWriter, r *http.Request) {
	lb, err := h.service.Leaderboard(r.Context(), r.PathValue("roomId"))
	if err != nil {
		h.log.Error("leaderboard failed", zap.String("room_id", r.PathValue("roomId")), zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lb)
}

func (h *APIHandler) endRoom(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomId")
	ended := h.service.EndRoom(r.Context(), roomID)
	writeJSON(w, http.StatusOK, endRoomResponse{RoomID: roomID, Ended: ended})
}
