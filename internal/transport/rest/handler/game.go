package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"quizboard/internal/model"

	"github.com/gorilla/mux"
)

// HostService runs the room host's game commands.
type HostService interface {
	OpenQuestion(ctx context.Context, code string, categoryIdx, questionIdx int) (*model.Room, error)
	JudgeAnswer(ctx context.Context, code string, correct bool) (*model.Room, error)
	EndQuestion(ctx context.Context, code string) (*model.Room, error)
}

// GameHandler handles the host's game commands
type GameHandler struct {
	hostSvc HostService
}

func NewGameHandler(hostSvc HostService) *GameHandler {
	return &GameHandler{hostSvc: hostSvc}
}

// OpenQuestionRequest picks a cell of the active board. Both indexes are 1-based.
type OpenQuestionRequest struct {
	CategoryIdx int `json:"categoryIdx"`
	QuestionIdx int `json:"questionIdx"`
}

// JudgeRequest is the host's verdict on the current answer.
type JudgeRequest struct {
	Correct bool `json:"correct"`
}

// OpenQuestion handles POST /v1/rooms/{code}/questions/open
//
//	@Summary	Reveal a question
//	@Tags		game
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		code	path		string				true	"room code"
//	@Param		body	body		OpenQuestionRequest	true	"cell"
//	@Success	200		{object}	model.Room
//	@Router		/rooms/{code}/questions/open [post]
func (h *GameHandler) OpenQuestion(w http.ResponseWriter, r *http.Request) {
	var req OpenQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	room, err := h.hostSvc.OpenQuestion(r.Context(), mux.Vars(r)["code"], req.CategoryIdx, req.QuestionIdx)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// Judge handles POST /v1/rooms/{code}/judge
//
//	@Summary	Judge the current answer
//	@Tags		game
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		code	path		string			true	"room code"
//	@Param		body	body		JudgeRequest	true	"verdict"
//	@Success	200		{object}	model.Room
//	@Router		/rooms/{code}/judge [post]
func (h *GameHandler) Judge(w http.ResponseWriter, r *http.Request) {
	var req JudgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	room, err := h.hostSvc.JudgeAnswer(r.Context(), mux.Vars(r)["code"], req.Correct)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// EndQuestion handles POST /v1/rooms/{code}/questions/end
//
//	@Summary	Close the open question without scoring
//	@Tags		game
//	@Produce	json
//	@Security	BearerAuth
//	@Param		code	path		string	true	"room code"
//	@Success	200		{object}	model.Room
//	@Router		/rooms/{code}/questions/end [post]
func (h *GameHandler) EndQuestion(w http.ResponseWriter, r *http.Request) {
	room, err := h.hostSvc.EndQuestion(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}
