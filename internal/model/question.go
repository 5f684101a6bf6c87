package model

// Question is a single cell of a board. Index is 1-based within its category
// and determines the point value.
type Question struct {
	Index  int    `json:"index" bson:"index"`
	Text   string `json:"text" bson:"text"`
	Answer string `json:"answer" bson:"answer"`
}

// Points returns the value of the question.
func (q Question) Points() int {
	return PointsFor(q.Index)
}

// PointsFor maps a question index to its value: 100, 200, 300, 500, then index*100.
func PointsFor(index int) int {
	switch index {
	case 1:
		return 100
	case 2:
		return 200
	case 3:
		return 300
	case 4:
		return 500
	}
	if index > 4 {
		return index * 100
	}
	return 0
}
