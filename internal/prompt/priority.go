package prompt

import (
	"strings"

	"github.com/rcliao/scene-adapter/internal/model"
)

// environmentFirst lists shot types where the setting outranks the subject.
var environmentFirst = map[string]bool{
	"wide":         true,
	"extreme-wide": true,
	"establishing": true,
}

// PriorityOrder returns the compression priority for a shot type, highest
// first. Wide framings swap subject and environment; nothing else moves.
func PriorityOrder(shotType string) []model.Category {
	order := make([]model.Category, len(model.CompressionPriority))
	copy(order, model.CompressionPriority)

	st := strings.ToLower(strings.TrimSpace(shotType))
	st = strings.ReplaceAll(st, "_", "-")
	if environmentFirst[st] {
		s, e := indexOf(order, model.CategorySubject), indexOf(order, model.CategoryEnvironment)
		order[s], order[e] = order[e], order[s]
	}
	return order
}

// RankOf maps each category to its 1-based rank for a shot type.
func RankOf(shotType string) map[model.Category]int {
	order := PriorityOrder(shotType)
	rank := make(map[model.Category]int, len(order))
	for i, c := range order {
		rank[c] = i + 1
	}
	return rank
}

func indexOf(order []model.Category, c model.Category) int {
	for i, o := range order {
		if o == c {
			return i
		}
	}
	return -1
}
