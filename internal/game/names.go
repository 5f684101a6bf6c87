package game

import (
	"fmt"
	"strings"

	"quizboard/internal/model"
)

// NormalizeName is the comparison form of a player name.
func NormalizeName(name string) string {
	return strings.ToLower(CleanName(name))
}

// CleanName trims and collapses whitespace.
func CleanName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// UniqueName returns the name a joining player is stored under. A name that
// collides with an existing one gets " (n)" appended to the existing
// spelling, with the smallest free n starting at 2.
func UniqueName(players []model.Player, name string) string {
	clean := CleanName(name)
	taken := make(map[string]string, len(players))
	for _, p := range players {
		taken[NormalizeName(p.Name)] = p.Name
	}
	base, ok := taken[NormalizeName(clean)]
	if !ok {
		return clean
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s (%d)", base, n)
		if _, ok := taken[NormalizeName(candidate)]; !ok {
			return candidate
		}
	}
}
