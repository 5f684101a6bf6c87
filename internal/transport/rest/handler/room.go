package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"quizboard/internal/cache"
	"quizboard/internal/model"
	"quizboard/internal/service"
	"quizboard/internal/transport/rest/middleware"

	"github.com/gorilla/mux"
	"github.com/skip2/go-qrcode"
)

// RoomService is what the room endpoints need from the service layer.
type RoomService interface {
	CreateRoom(ctx context.Context, hostID string, req model.CreateRoomRequest) (*model.CreateRoomResponse, error)
	GetRoom(ctx context.Context, code string) (*model.Room, error)
	JoinRoom(ctx context.Context, code string, req model.JoinRequest) (*model.PlayerJoinResponse, error)
	UpdateRoomState(ctx context.Context, code string, patch model.RoomPatch) (*model.Room, error)
	Buzz(ctx context.Context, code, playerID string) (*model.Room, error)
	Leaderboard(ctx context.Context, code string, limit int) ([]cache.LeaderboardEntry, error)
}

// RoomHandler handles room endpoints
type RoomHandler struct {
	roomSvc   RoomService
	publicURL string
}

// NewRoomHandler creates a new room handler. publicURL is the address
// players open to join; it is encoded into the room QR code.
func NewRoomHandler(roomSvc RoomService, publicURL string) *RoomHandler {
	return &RoomHandler{
		roomSvc:   roomSvc,
		publicURL: publicURL,
	}
}

// Create handles POST /v1/rooms
//
//	@Summary	Create a room for a quiz
//	@Tags		rooms
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		model.CreateRoomRequest	true	"room settings"
//	@Success	201		{object}	model.CreateRoomResponse
//	@Router		/rooms [post]
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	hostID := middleware.GetHostID(r.Context())
	if hostID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req model.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.roomSvc.CreateRoom(r.Context(), hostID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Get handles GET /v1/rooms/{code}
//
//	@Summary	Read a room
//	@Tags		rooms
//	@Produce	json
//	@Param		code	path		string	true	"room code"
//	@Success	200		{object}	model.Room
//	@Failure	404		{object}	map[string]string
//	@Router		/rooms/{code} [get]
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	room, err := h.roomSvc.GetRoom(r.Context(), code)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, room)
}

// Join handles POST /v1/rooms/{code}/join
//
//	@Summary	Join a room as a player
//	@Tags		rooms
//	@Accept		json
//	@Produce	json
//	@Param		code	path		string				true	"room code"
//	@Param		body	body		model.JoinRequest	true	"name and optional pin"
//	@Success	200		{object}	model.PlayerJoinResponse
//	@Failure	403		{object}	map[string]string
//	@Failure	409		{object}	map[string]string
//	@Router		/rooms/{code}/join [post]
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req model.JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.roomSvc.JoinRoom(r.Context(), code, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// UpdateState handles PATCH /v1/rooms/{code}/state
//
//	@Summary	Merge state and players into a room
//	@Tags		game
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		code	path		string			true	"room code"
//	@Param		body	body		model.RoomPatch	true	"fields to replace"
//	@Success	200		{object}	model.Room
//	@Router		/rooms/{code}/state [patch]
func (h *RoomHandler) UpdateState(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var patch model.RoomPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	room, err := h.roomSvc.UpdateRoomState(r.Context(), code, patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, room)
}

// Buzz handles POST /v1/rooms/{code}/buzz
//
//	@Summary	Buzz in on the open question
//	@Tags		game
//	@Produce	json
//	@Security	BearerAuth
//	@Param		code	path		string	true	"room code"
//	@Success	200		{object}	model.Room
//	@Failure	409		{object}	map[string]string
//	@Router		/rooms/{code}/buzz [post]
func (h *RoomHandler) Buzz(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	playerID := middleware.GetPlayerID(r.Context())

	room, err := h.roomSvc.Buzz(r.Context(), code, playerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, room)
}

// Leaderboard handles GET /v1/rooms/{code}/leaderboard
//
//	@Summary	Players ordered by score
//	@Tags		rooms
//	@Produce	json
//	@Param		code	path	string	true	"room code"
//	@Param		top		query	int		false	"number of entries"
//	@Success	200		{array}	cache.LeaderboardEntry
//	@Router		/rooms/{code}/leaderboard [get]
func (h *RoomHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	top := 20
	if topStr := r.URL.Query().Get("top"); topStr != "" {
		if n, err := strconv.Atoi(topStr); err == nil && n > 0 {
			top = n
		}
	}

	entries, err := h.roomSvc.Leaderboard(r.Context(), code, top)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"roomCode": service.NormalizeCode(code),
		"entries":  entries,
	})
}

// QR handles GET /v1/rooms/{code}/qr
//
//	@Summary	PNG QR code of the join link
//	@Tags		rooms
//	@Produce	png
//	@Param		code	path	string	true	"room code"
//	@Success	200
//	@Router		/rooms/{code}/qr [get]
func (h *RoomHandler) QR(w http.ResponseWriter, r *http.Request) {
	room, err := h.roomSvc.GetRoom(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	png, err := qrcode.Encode(h.JoinURL(room.Code), qrcode.Medium, 320)
	if err != nil {
		writeServiceError(w, r, fmt.Errorf("encode qr: %w", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// JoinURL is the link players follow to join the room.
func (h *RoomHandler) JoinURL(code string) string {
	return h.publicURL + "/join?code=" + url.QueryEscape(code)
}
