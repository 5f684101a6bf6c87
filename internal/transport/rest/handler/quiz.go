package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"quizboard/internal/model"

	"github.com/gorilla/mux"
)

type QuizService interface {
	LoadQuizByID(ctx context.Context, id string) (*model.Quiz, error)
	ListQuizzes(ctx context.Context) ([]model.QuizSummary, error)
	SaveQuiz(ctx context.Context, quiz *model.Quiz) (*model.Quiz, error)
}

// QuizHandler handles quiz endpoints
type QuizHandler struct {
	quizSvc QuizService
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(quizSvc QuizService) *QuizHandler {
	return &QuizHandler{quizSvc: quizSvc}
}

// Create handles POST /v1/quizzes
//
//	@Summary	Store a quiz
//	@Tags		quizzes
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		body	body		model.Quiz	true	"quiz"
//	@Success	201		{object}	model.Quiz
//	@Failure	400		{object}	map[string]string
//	@Router		/quizzes [post]
func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	var quiz model.Quiz
	if err := json.NewDecoder(r.Body).Decode(&quiz); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := h.quizSvc.SaveQuiz(r.Context(), &quiz)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

// List handles GET /v1/quizzes
//
//	@Summary	Newest quizzes first
//	@Tags		quizzes
//	@Produce	json
//	@Success	200	{array}	model.QuizSummary
//	@Router		/quizzes [get]
func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.quizSvc.ListQuizzes(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, quizzes)
}

// Get handles GET /v1/quizzes/{id}
//
//	@Summary	Read a quiz
//	@Tags		quizzes
//	@Produce	json
//	@Param		id	path		string	true	"quiz id"
//	@Success	200	{object}	model.Quiz
//	@Failure	404	{object}	map[string]string
//	@Router		/quizzes/{id} [get]
func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.quizSvc.LoadQuizByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, quiz)
}
