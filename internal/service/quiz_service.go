package service

import (
	"context"
	"strings"

	"quizboard/internal/cache"
	"quizboard/internal/model"
	"quizboard/internal/repository"

	"github.com/rs/zerolog/log"
)

const quizListLimit = 50

// QuizService reads and stores quizzes. Loaded quizzes are kept in the quiz
// cache; a cache failure falls back to the store.
type QuizService struct {
	quizRepo  repository.QuizRepo
	quizCache cache.QuizCache
}

// NewQuizService creates a new quiz service
func NewQuizService(quizRepo repository.QuizRepo, quizCache cache.QuizCache) *QuizService {
	return &QuizService{
		quizRepo:  quizRepo,
		quizCache: quizCache,
	}
}

// LoadQuizByID returns ErrQuizNotFound for unknown ids.
func (s *QuizService) LoadQuizByID(ctx context.Context, id string) (*model.Quiz, error) {
	quiz, err := s.quizCache.Get(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("quiz", id).Msg("quiz cache read failed")
	}
	if quiz != nil {
		return quiz, nil
	}

	quiz, err = s.quizRepo.GetByID(ctx, id)
	if err != nil {
		return nil, transportErr("load quiz", err)
	}
	if quiz == nil {
		return nil, ErrQuizNotFound
	}

	if err := s.quizCache.Set(ctx, quiz); err != nil {
		log.Warn().Err(err).Str("quiz", id).Msg("quiz cache write failed")
	}
	return quiz, nil
}

// ListQuizzes returns the newest quizzes first.
func (s *QuizService) ListQuizzes(ctx context.Context) ([]model.QuizSummary, error) {
	quizzes, err := s.quizRepo.List(ctx, quizListLimit)
	if err != nil {
		return nil, transportErr("list quizzes", err)
	}
	return quizzes, nil
}

// SaveQuiz validates and stores a new quiz.
func (s *QuizService) SaveQuiz(ctx context.Context, quiz *model.Quiz) (*model.Quiz, error) {
	if err := ValidateQuiz(quiz); err != nil {
		return nil, err
	}
	if _, err := s.quizRepo.Create(ctx, quiz); err != nil {
		return nil, transportErr("save quiz", err)
	}
	return quiz, nil
}

// ValidateQuiz checks the shape a game needs: a title, one or two boards,
// named categories and questions with distinct positive indexes.
func ValidateQuiz(quiz *model.Quiz) error {
	if quiz == nil {
		return ErrInvalidQuiz
	}
	quiz.Title = strings.TrimSpace(quiz.Title)
	if quiz.Title == "" {
		return invalidQuiz("title is required")
	}
	if len(quiz.Boards) < 1 || len(quiz.Boards) > 2 {
		return invalidQuiz("a quiz has one or two boards")
	}
	for b, board := range quiz.Boards {
		if len(board.Categories) == 0 {
			return invalidQuiz("board %d has no categories", b+1)
		}
		for c, cat := range board.Categories {
			if strings.TrimSpace(cat.Name) == "" {
				return invalidQuiz("board %d category %d has no name", b+1, c+1)
			}
			if len(cat.Questions) == 0 {
				return invalidQuiz("category %q has no questions", cat.Name)
			}
			seen := make(map[int]bool, len(cat.Questions))
			for _, q := range cat.Questions {
				if q.Index < 1 || seen[q.Index] {
					return invalidQuiz("category %q has a bad question index %d", cat.Name, q.Index)
				}
				seen[q.Index] = true
				if strings.TrimSpace(q.Text) == "" {
					return invalidQuiz("category %q question %d has no text", cat.Name, q.Index)
				}
			}
		}
	}
	return nil
}
