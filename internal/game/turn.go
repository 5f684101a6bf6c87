package game

import (
	"fmt"
	"strings"

	"quizboard/internal/model"
)

// NextPlayerID moves the turn pointer one step along join order. An unknown
// current id starts the rotation at the first player.
func NextPlayerID(players []model.Player, currentID string) string {
	if len(players) == 0 {
		return ""
	}
	idx := model.IndexOfPlayer(players, currentID)
	return players[(idx+1)%len(players)].ID
}

// UsedOnBoard counts used keys that belong to board.
func UsedOnBoard(used []string, board int) int {
	prefix := fmt.Sprintf("b%d-", board)
	n := 0
	for _, k := range used {
		if strings.HasPrefix(k, prefix) {
			n++
		}
	}
	return n
}

// ShouldAdvanceBoard is true once every cell of board 0 is used and there is
// a second board to move to. The last board never advances.
func ShouldAdvanceBoard(quiz *model.Quiz, state model.GameState) bool {
	if quiz == nil || state.BoardIndex != 0 || len(quiz.Boards) < 2 {
		return false
	}
	total := quiz.Board(0).QuestionCount()
	return total > 0 && UsedOnBoard(state.Used, 0) >= total
}
