package game

import (
	"fmt"
	"time"

	"quizboard/internal/model"
)

// testQuiz has board 0 with 2 categories x 4 questions and board 1 with one
// category of 2 questions.
func testQuiz() *model.Quiz {
	cat := func(name string, n int) model.Category {
		c := model.Category{Name: name}
		for i := 1; i <= n; i++ {
			c.Questions = append(c.Questions, model.Question{
				Index:  i,
				Text:   fmt.Sprintf("%s question %d", name, i),
				Answer: fmt.Sprintf("%s answer %d", name, i),
			})
		}
		return c
	}
	return &model.Quiz{
		ID:    "quiz-1",
		Title: "Test quiz",
		Boards: []model.Board{
			{Categories: []model.Category{cat("History", 4), cat("Science", 4)}},
			{Categories: []model.Category{cat("Final", 2)}},
		},
	}
}

func testPlayers(names ...string) []model.Player {
	players := make([]model.Player, len(names))
	for i, n := range names {
		players[i] = model.Player{ID: "p" + n, Name: n, JoinedAt: time.Unix(int64(i), 0)}
	}
	return players
}

func scoreOf(players []model.Player, id string) int {
	return players[model.IndexOfPlayer(players, id)].Score
}
