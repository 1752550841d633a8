// Package teams splits an ordered roster into balanced teams.
//
// Policy: with no seed the roster is used in insertion order. With a seed
// the roster is shuffled by a PCG generator built from that seed, so the
// same seed and the same roster always give the same partition. Either
// way members are then cut into consecutive blocks following SizePlan,
// with the earlier teams taking the extra member.
package teams

import (
	"fmt"
	"math/rand/v2"

	apperrors "github.com/DoyleJ11/teambot/internal/errors"
)

// Team is an ordered list of participant ids.
type Team []string

// second PCG word; any fixed constant works, it only has to never change
const pcgStream = 0x9e3779b97f4a7c15

// SizePlan returns the size of each of k teams for n members.
func SizePlan(n, k int) []int {
	base, rem := n/k, n%k
	sizes := make([]int, k)
	for i := range sizes {
		sizes[i] = base
		if i < rem {
			sizes[i]++
		}
	}
	return sizes
}

// Generate splits members into teamCount balanced teams. A nil seed keeps
// members in their given order; members itself is never modified.
func Generate(members []string, teamCount int, seed *int64) ([]Team, error) {
	n := len(members)
	if teamCount <= 0 {
		return nil, fmt.Errorf("%w: team count must be positive, got %d", apperrors.ErrInvalidArgument, teamCount)
	}
	if teamCount > n {
		return nil, fmt.Errorf("%w: team count %d exceeds %d participants", apperrors.ErrInvalidArgument, teamCount, n)
	}

	order := make([]string, n)
	copy(order, members)
	if seed != nil {
		r := rand.New(rand.NewPCG(uint64(*seed), pcgStream))
		r.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	out := make([]Team, 0, teamCount)
	next := 0
	for _, size := range SizePlan(n, teamCount) {
		out = append(out, Team(order[next:next+size:next+size]))
		next += size
	}
	return out, nil
}
