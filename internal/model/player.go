package model

import "time"

// Player is a participant in a room. Players are appended on join and never removed.
type Player struct {
	ID       string    `json:"id" bson:"id"`
	Name     string    `json:"name" bson:"name"`
	Score    int       `json:"score" bson:"score"`
	JoinedAt time.Time `json:"joinedAt" bson:"joinedAt"`
}

// IndexOfPlayer returns the position of id in players, or -1.
func IndexOfPlayer(players []Player, id string) int {
	if id == "" {
		return -1
	}
	for i := range players {
		if players[i].ID == id {
			return i
		}
	}
	return -1
}

// ClonePlayers copies a player list so callers can mutate scores freely.
func ClonePlayers(players []Player) []Player {
	if players == nil {
		return nil
	}
	out := make([]Player, len(players))
	copy(out, players)
	return out
}

// JoinRequest is the body of a join call
type JoinRequest struct {
	Name string `json:"name"`
	Pin  string `json:"pin,omitempty"`
}

// PlayerJoinResponse is returned when a player joins a room
type PlayerJoinResponse struct {
	Room   *Room  `json:"room"`
	Player Player `json:"player"`
	Token  string `json:"token"`
}
