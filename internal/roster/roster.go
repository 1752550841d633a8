// Package roster holds the ordered participant list of one session.
//
// A Roster is a value: Join, Leave and Reset return a new Roster and
// never touch the receiver, so a caller can throw the result away when a
// later check fails.
package roster

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	apperrors "github.com/DoyleJ11/teambot/internal/errors"
	"github.com/samber/lo"
)

type Participant struct {
	ID        string `json:"id"`
	JoinOrder int    `json:"join_order"`
}

type Roster struct {
	participants []Participant
	nextOrder    int
}

// FromParticipants rebuilds a roster from exported participants, e.g. a
// restored snapshot. Order is taken by JoinOrder.
func FromParticipants(ps []Participant) (Roster, error) {
	if dups := lo.FindDuplicatesBy(ps, func(p Participant) string { return p.ID }); len(dups) > 0 {
		return Roster{}, fmt.Errorf("%w: participant %q appears twice", apperrors.ErrInvalidArgument, dups[0].ID)
	}
	if lo.SomeBy(ps, func(p Participant) bool { return p.ID == "" }) {
		return Roster{}, fmt.Errorf("%w: empty participant id", apperrors.ErrInvalidArgument)
	}

	// Join orders are handed out from 0 upward and never reused.
	if bad, ok := lo.Find(ps, func(p Participant) bool { return p.JoinOrder < 0 || p.JoinOrder == math.MaxInt }); ok {
		return Roster{}, fmt.Errorf("%w: participant %q has join order %d out of range", apperrors.ErrInvalidArgument, bad.ID, bad.JoinOrder)
	}
	if dups := lo.FindDuplicatesBy(ps, func(p Participant) int { return p.JoinOrder }); len(dups) > 0 {
		return Roster{}, fmt.Errorf("%w: join order %d used twice", apperrors.ErrInvalidArgument, dups[0].JoinOrder)
	}

	sorted := slices.Clone(ps)
	slices.SortFunc(sorted, func(a, b Participant) int { return cmp.Compare(a.JoinOrder, b.JoinOrder) })

	next := 0
	if len(sorted) > 0 {
		next = sorted[len(sorted)-1].JoinOrder + 1
	}
	return Roster{participants: sorted, nextOrder: next}, nil
}

func (r Roster) Len() int { return len(r.participants) }

func (r Roster) Contains(id string) bool {
	return lo.ContainsBy(r.participants, func(p Participant) bool { return p.ID == id })
}

// IDs returns participant ids in insertion order.
func (r Roster) IDs() []string {
	return lo.Map(r.participants, func(p Participant, _ int) string { return p.ID })
}

func (r Roster) Participants() []Participant {
	return slices.Clone(r.participants)
}

// Join appends id. The bool reports whether the roster changed; joining
// an existing member is a no-op.
func (r Roster) Join(id string) (Roster, bool) {
	if r.Contains(id) {
		return r, false
	}
	ps := make([]Participant, len(r.participants), len(r.participants)+1)
	copy(ps, r.participants)
	ps = append(ps, Participant{ID: id, JoinOrder: r.nextOrder})
	return Roster{participants: ps, nextOrder: r.nextOrder + 1}, true
}

// Leave removes id. Leaving as a non-member is a no-op.
func (r Roster) Leave(id string) (Roster, bool) {
	if !r.Contains(id) {
		return r, false
	}
	ps := lo.Reject(r.participants, func(p Participant, _ int) bool { return p.ID == id })
	return Roster{participants: ps, nextOrder: r.nextOrder}, true
}

// Reset empties the roster. Join order keeps counting up.
func (r Roster) Reset() Roster {
	return Roster{nextOrder: r.nextOrder}
}
