package model

import "time"

// Quiz is authored elsewhere and read-only to a running game
type Quiz struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Title     string    `json:"title" bson:"title"`
	Author    string    `json:"author,omitempty" bson:"author,omitempty"`
	Boards    []Board   `json:"boards" bson:"boards"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

type Board struct {
	Categories []Category `json:"categories" bson:"categories"`
}

type Category struct {
	Name      string     `json:"name" bson:"name"`
	Questions []Question `json:"questions" bson:"questions"`
}

// QuizSummary is the listing view of a quiz
type QuizSummary struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Title     string    `json:"title" bson:"title"`
	Author    string    `json:"author,omitempty" bson:"author,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Board returns the board at index i, or nil.
func (q *Quiz) Board(i int) *Board {
	if q == nil || i < 0 || i >= len(q.Boards) {
		return nil
	}
	return &q.Boards[i]
}

// Question looks up a cell by 1-based category position and question index.
func (b *Board) Question(categoryIdx, questionIdx int) (*Question, bool) {
	if b == nil || categoryIdx < 1 || categoryIdx > len(b.Categories) {
		return nil, false
	}
	cat := &b.Categories[categoryIdx-1]
	for i := range cat.Questions {
		if cat.Questions[i].Index == questionIdx {
			return &cat.Questions[i], true
		}
	}
	return nil, false
}

// QuestionCount is the number of cells on the board.
func (b *Board) QuestionCount() int {
	if b == nil {
		return 0
	}
	n := 0
	for _, c := range b.Categories {
		n += len(c.Questions)
	}
	return n
}

// Rows is the highest question index on the board.
func (b *Board) Rows() int {
	rows := 0
	for _, c := range b.Categories {
		for _, q := range c.Questions {
			if q.Index > rows {
				rows = q.Index
			}
		}
	}
	return rows
}
