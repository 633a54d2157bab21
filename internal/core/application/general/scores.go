package general

import (
	"strings"

	"github.com/airbitz/abcd/internal/core/domain"
)

// reconcileScores appends every server not yet scored with a score of 0.
// Urls are compared case-insensitively and existing entries are never
// touched.
func reconcileScores(
	scores []domain.ServerScore, servers []string,
) []domain.ServerScore {
	out := make([]domain.ServerScore, len(scores), len(scores)+len(servers))
	copy(out, scores)

	for _, server := range servers {
		if !hasScore(out, server) {
			out = append(out, domain.ServerScore{ServerURL: server})
		}
	}
	return out
}

func hasScore(scores []domain.ServerScore, server string) bool {
	for _, s := range scores {
		if strings.EqualFold(s.ServerURL, server) {
			return true
		}
	}
	return false
}
