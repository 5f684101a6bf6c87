package service

import (
	"context"

	"quizboard/internal/game"
	"quizboard/internal/model"

	"github.com/rs/zerolog/log"
)

// HostService runs the host's game commands against the stored room. Each
// command reads the room under the room lock, applies one game.Host
// transition and writes state and players back in a single patch.
type HostService struct {
	rooms   *RoomService
	quizSvc *QuizService
}

// NewHostService creates a new host service
func NewHostService(rooms *RoomService, quizSvc *QuizService) *HostService {
	return &HostService{
		rooms:   rooms,
		quizSvc: quizSvc,
	}
}

// OpenQuestion reveals a cell of the active board. Indexes are 1-based.
func (s *HostService) OpenQuestion(ctx context.Context, code string, categoryIdx, questionIdx int) (*model.Room, error) {
	return s.run(ctx, code, model.FlashNone, func(h *game.Host) bool {
		return h.OpenQuestion(categoryIdx, questionIdx)
	})
}

// JudgeAnswer scores the current answer and tags the broadcast with the
// verdict.
func (s *HostService) JudgeAnswer(ctx context.Context, code string, correct bool) (*model.Room, error) {
	flash := model.FlashWrong
	if correct {
		flash = model.FlashCorrect
	}
	return s.run(ctx, code, flash, func(h *game.Host) bool {
		return h.JudgeAnswer(correct)
	})
}

// EndQuestion closes the open question without scoring.
func (s *HostService) EndQuestion(ctx context.Context, code string) (*model.Room, error) {
	return s.run(ctx, code, model.FlashNone, func(h *game.Host) bool {
		return h.EndQuestion()
	})
}

// run leaves the room untouched when the transition does not apply.
func (s *HostService) run(ctx context.Context, code string, flash model.FlashType, apply func(h *game.Host) bool) (*model.Room, error) {
	code = NormalizeCode(code)
	return s.rooms.withLock(ctx, code, func(room *model.Room) (*model.Room, error) {
		quiz, err := s.quizSvc.LoadQuizByID(ctx, room.QuizID)
		if err != nil {
			return nil, err
		}

		host := game.NewHost(quiz, room.Players, room.State)
		if !apply(host) {
			log.Debug().Str("room", code).Msg("host command ignored")
			return room, nil
		}
		host.Flash(flash)

		state := host.State()
		return s.rooms.applyPatch(ctx, code, model.RoomPatch{
			State:   &state,
			Players: host.Players(),
		})
	})
}
