package entity

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Suggest возвращает ближайшее допустимое значение перечисления
// Совпадение ищется без учета регистра; слишком далекие варианты отбрасываются
func Suggest(value any, allowed []string) (string, bool) {
	s, ok := value.(string)
	if !ok {
		if value == nil {
			return "", false
		}
		s = fmt.Sprint(value)
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", false
	}

	best, bestDist := "", -1
	for _, candidate := range allowed {
		dist := levenshtein.ComputeDistance(s, strings.ToLower(candidate))
		if dist > distanceLimit(len(candidate)) {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = candidate, dist
		}
	}

	return best, bestDist >= 0
}

func distanceLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
