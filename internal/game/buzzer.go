package game

import "quizboard/internal/model"

// BuzzPhase is the state of the buzz-in window.
type BuzzPhase int

const (
	BuzzClosed BuzzPhase = iota
	BuzzOpen
	BuzzJudging
)

func (p BuzzPhase) String() string {
	switch p {
	case BuzzOpen:
		return "open"
	case BuzzJudging:
		return "judging"
	default:
		return "closed"
	}
}

// Buzzer is the buzz-in state as a tagged value: closed, open with nobody
// queued, or judging the front of a non-empty queue. The zero value is closed.
type Buzzer struct {
	phase BuzzPhase
	queue []string
}

func ClosedBuzzer() Buzzer { return Buzzer{} }

func OpenBuzzer() Buzzer { return Buzzer{phase: BuzzOpen} }

// BuzzerFromState parses the wire fields. A queue without buzzMode is
// dropped, duplicates keep their first position, and the legacy single
// buzzer field is used when the queue is empty.
func BuzzerFromState(s model.GameState) Buzzer {
	if !s.BuzzMode {
		return ClosedBuzzer()
	}
	queue := s.BuzzQueue
	if len(queue) == 0 && s.LegacyBuzzPlayerID != "" {
		queue = []string{s.LegacyBuzzPlayerID}
	}
	b := OpenBuzzer()
	for _, id := range queue {
		// the player whose turn it is never buzzes
		if id == s.CurrentPlayerID {
			continue
		}
		b, _ = b.Enqueue(id)
	}
	return b
}

func (b Buzzer) Phase() BuzzPhase { return b.phase }

// Judged is the player currently being judged, or "".
func (b Buzzer) Judged() string {
	if b.phase != BuzzJudging {
		return ""
	}
	return b.queue[0]
}

// Queue returns a copy of the queue, front first.
func (b Buzzer) Queue() []string {
	return append([]string{}, b.queue...)
}

func (b Buzzer) Contains(id string) bool {
	for _, q := range b.queue {
		if q == id {
			return true
		}
	}
	return false
}

// Enqueue appends id. Only an open or judging buzzer accepts buzzes and
// nobody is queued twice.
func (b Buzzer) Enqueue(id string) (Buzzer, bool) {
	if b.phase == BuzzClosed || id == "" || b.Contains(id) {
		return b, false
	}
	return Buzzer{phase: BuzzJudging, queue: append(b.Queue(), id)}, true
}

// Advance drops the judged player. The buzzer closes once the queue is empty.
func (b Buzzer) Advance() Buzzer {
	if b.phase != BuzzJudging || len(b.queue) <= 1 {
		return ClosedBuzzer()
	}
	return Buzzer{phase: BuzzJudging, queue: append([]string{}, b.queue[1:]...)}
}

// WriteTo stores the buzzer in the wire fields of s.
func (b Buzzer) WriteTo(s *model.GameState) {
	s.BuzzMode = b.phase != BuzzClosed
	s.BuzzQueue = b.Queue()
	s.LegacyBuzzPlayerID = ""
}

// CanBuzz reports whether playerID may buzz in against state: the player
// exists, the window is open on an open question, and they are neither the
// active player nor already queued.
func CanBuzz(state model.GameState, players []model.Player, playerID string) bool {
	if model.IndexOfPlayer(players, playerID) < 0 {
		return false
	}
	if !state.BuzzMode || state.CurrentCell == nil {
		return false
	}
	if playerID == state.CurrentPlayerID {
		return false
	}
	return !BuzzerFromState(state).Contains(playerID)
}
