package game

import "quizboard/internal/model"

// Update is the outcome of applying one snapshot. The one-shot fields are
// set at most once per transition.
type Update struct {
	View View

	// BuzzWindowOpened asks this viewer to show the buzz-in window.
	BuzzWindowOpened bool
	// BuzzerClosed means any local countdown must stop.
	BuzzerClosed bool

	Flash    model.FlashType
	FlashSeq int
}

// Reconciler rebuilds a client's derived state from inbound snapshots. Host
// and viewers run the same code; the role only changes what is shown.
type Reconciler struct {
	role   Role
	selfID string
	quiz   *model.Quiz

	boardIndex  int
	used        map[string]struct{}
	currentCell *model.CurrentCell
	buzzer      Buzzer
	state       model.GameState

	players    []model.Player
	currentIdx int
	judged     *model.Player

	synced   bool
	buzzMode bool
	flashSeq int
}

func NewReconciler(role Role, selfID string) *Reconciler {
	return &Reconciler{
		role:   role,
		selfID: selfID,
		used:   map[string]struct{}{},
	}
}

// SetQuiz loads the quiz; without one the board is not drawn.
func (r *Reconciler) SetQuiz(q *model.Quiz) { r.quiz = q }

// SetSelf sets this viewer's resolved player identity.
func (r *Reconciler) SetSelf(id string) { r.selfID = id }

func (r *Reconciler) Role() Role { return r.role }

// Apply handles one feed event: players first so ids in the state resolve
// against the list that came with it.
func (r *Reconciler) Apply(ev model.RoomEvent) Update {
	r.setPlayers(ev.Players)
	return r.ApplyState(ev.State)
}

// ApplyPlayers replaces the player list and re-resolves every reference.
func (r *Reconciler) ApplyPlayers(players []model.Player) View {
	r.setPlayers(players)
	r.resolve()
	return r.View()
}

// ApplyState overwrites local state with the snapshot. Applying the same
// snapshot twice gives the same View and no second event.
func (r *Reconciler) ApplyState(s model.GameState) Update {
	prevBuzzMode := r.buzzMode

	r.state = s.Clone()
	r.boardIndex = s.BoardIndex
	r.used = make(map[string]struct{}, len(s.Used))
	for _, k := range s.Used {
		r.used[k] = struct{}{}
	}
	r.currentCell = r.state.CurrentCell
	r.buzzer = BuzzerFromState(s)
	r.buzzMode = s.BuzzMode

	r.resolve()

	var u Update
	// the first snapshot replays current state, it is not news
	if r.synced && !prevBuzzMode && s.BuzzMode && s.CurrentCell != nil && r.canBuzz() {
		u.BuzzWindowOpened = true
	}
	if prevBuzzMode && !s.BuzzMode {
		u.BuzzerClosed = true
	}

	if !r.synced {
		r.flashSeq = s.FlashSeq
	} else if s.FlashSeq > r.flashSeq {
		u.Flash = s.FlashType
		u.FlashSeq = s.FlashSeq
		r.flashSeq = s.FlashSeq
	}
	r.synced = true

	u.View = r.View()
	return u
}

// MarkUsed records a cell locally before the host's write round-trips.
// A later snapshot overwrites it.
func (r *Reconciler) MarkUsed(board, categoryIdx, questionIdx int) {
	key := model.CellKey(board, categoryIdx, questionIdx)
	if _, ok := r.used[key]; ok {
		return
	}
	r.used[key] = struct{}{}
	r.state.Used = append(r.state.Used, key)
}

// View renders the current local state.
func (r *Reconciler) View() View {
	return Render(RenderInput{
		Role:        r.role,
		Quiz:        r.quiz,
		BoardIndex:  r.boardIndex,
		Used:        r.used,
		CurrentCell: r.currentCell,
		Buzzer:      r.buzzer,
		Players:     r.players,
		CurrentIdx:  r.currentIdx,
		Judged:      r.judged,
		CanBuzz:     r.canBuzz(),
	})
}

// State is the last applied snapshot plus local optimistic marks.
func (r *Reconciler) State() model.GameState { return r.state.Clone() }

func (r *Reconciler) Players() []model.Player { return model.ClonePlayers(r.players) }

// CurrentPlayer is whose turn it is, or nil.
func (r *Reconciler) CurrentPlayer() *model.Player {
	if r.currentIdx < 0 || r.currentIdx >= len(r.players) {
		return nil
	}
	p := r.players[r.currentIdx]
	return &p
}

// JudgedBuzzer is the player at the front of the buzz queue, or nil.
func (r *Reconciler) JudgedBuzzer() *model.Player { return r.judged }

// CanBuzz reports whether this viewer may buzz right now.
func (r *Reconciler) CanBuzz() bool { return r.canBuzz() }

func (r *Reconciler) LastFlashSeq() int { return r.flashSeq }

func (r *Reconciler) setPlayers(players []model.Player) {
	r.players = model.ClonePlayers(players)
}

func (r *Reconciler) resolve() {
	// unknown ids keep the previous index
	if i := model.IndexOfPlayer(r.players, r.state.CurrentPlayerID); i >= 0 {
		r.currentIdx = i
	}
	r.judged = nil
	if id := r.buzzer.Judged(); id != "" {
		if i := model.IndexOfPlayer(r.players, id); i >= 0 {
			p := r.players[i]
			r.judged = &p
		}
	}
}

func (r *Reconciler) canBuzz() bool {
	if r.role != RoleViewer {
		return false
	}
	return CanBuzz(r.state, r.players, r.selfID)
}
