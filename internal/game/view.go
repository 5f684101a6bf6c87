package game

import (
	"strconv"

	"quizboard/internal/model"
)

// Role decides what a client may see and do. It never changes how state is
// rebuilt.
type Role int

const (
	RoleViewer Role = iota
	RoleHost
)

// PromptPlaceholder is shown while no question is open.
const PromptPlaceholder = "Pick a cell to reveal the question."

type CellView struct {
	CategoryIdx int
	QuestionIdx int
	Label       string
	Used        bool
	Clickable   bool
}

type BoardView struct {
	Index   int
	Headers []string
	Rows    [][]CellView
}

type QuestionPanel struct {
	Open         bool
	Text         string
	Answer       string
	ShowAnswer   bool
	JudgeEnabled bool
	BuzzerName   string
}

type PlayerRow struct {
	ID      string
	Name    string
	Score   int
	Current bool
	Buzzing bool
}

// View is everything a client draws for one game state.
type View struct {
	Board          *BoardView
	Question       QuestionPanel
	Players        []PlayerRow
	BuzzCandidates []PlayerRow
	BuzzPhase      BuzzPhase
	TurnLabel      string
	CanBuzz        bool
}

// RenderInput is the resolved local state a View is drawn from.
type RenderInput struct {
	Role        Role
	Quiz        *model.Quiz
	BoardIndex  int
	Used        map[string]struct{}
	CurrentCell *model.CurrentCell
	Buzzer      Buzzer
	Players     []model.Player
	CurrentIdx  int
	Judged      *model.Player
	CanBuzz     bool
}

// Render is a pure function of its input.
func Render(in RenderInput) View {
	v := View{
		Board:     renderBoard(in),
		Question:  renderQuestion(in),
		Players:   make([]PlayerRow, 0, len(in.Players)),
		BuzzPhase: in.Buzzer.Phase(),
		TurnLabel: "—",
		CanBuzz:   in.Role == RoleViewer && in.CanBuzz,
	}

	for i, p := range in.Players {
		v.Players = append(v.Players, PlayerRow{
			ID:      p.ID,
			Name:    p.Name,
			Score:   p.Score,
			Current: i == in.CurrentIdx,
			Buzzing: in.Judged != nil && in.Judged.ID == p.ID,
		})
	}

	if in.Judged != nil {
		v.TurnLabel = in.Judged.Name
	} else if in.CurrentIdx >= 0 && in.CurrentIdx < len(in.Players) {
		v.TurnLabel = in.Players[in.CurrentIdx].Name
	}

	if in.Role == RoleHost {
		v.BuzzCandidates = []PlayerRow{}
		for _, id := range in.Buzzer.Queue() {
			i := model.IndexOfPlayer(in.Players, id)
			if i < 0 {
				continue
			}
			p := in.Players[i]
			v.BuzzCandidates = append(v.BuzzCandidates, PlayerRow{
				ID:      p.ID,
				Name:    p.Name,
				Score:   p.Score,
				Buzzing: in.Judged != nil && in.Judged.ID == p.ID,
			})
		}
	}
	return v
}

func renderBoard(in RenderInput) *BoardView {
	b := in.Quiz.Board(in.BoardIndex)
	if b == nil {
		return nil
	}
	bv := &BoardView{Index: in.BoardIndex, Headers: make([]string, len(b.Categories))}
	for ci, c := range b.Categories {
		bv.Headers[ci] = c.Name
		if c.Name == "" {
			bv.Headers[ci] = "—"
		}
	}
	for r := 1; r <= b.Rows(); r++ {
		row := make([]CellView, len(b.Categories))
		for ci := range b.Categories {
			cv := CellView{CategoryIdx: ci + 1, QuestionIdx: r, Label: "—"}
			if q, ok := b.Question(ci+1, r); ok {
				cv.Label = strconv.Itoa(q.Points())
				_, cv.Used = in.Used[model.CellKey(in.BoardIndex, ci+1, r)]
				cv.Clickable = in.Role == RoleHost && !cv.Used
			}
			row[ci] = cv
		}
		bv.Rows = append(bv.Rows, row)
	}
	return bv
}

func renderQuestion(in RenderInput) QuestionPanel {
	if in.CurrentCell == nil {
		return QuestionPanel{Text: PromptPlaceholder}
	}
	qp := QuestionPanel{
		Open: true,
		Text: in.CurrentCell.Text,
	}
	if in.Role == RoleHost {
		qp.Answer = in.CurrentCell.Answer
		qp.ShowAnswer = true
		qp.JudgeEnabled = in.Buzzer.Phase() != BuzzOpen
	}
	if in.Judged != nil {
		qp.BuzzerName = in.Judged.Name
	}
	return qp
}
