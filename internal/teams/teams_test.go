package teams

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"testing"

	apperrors "github.com/DoyleJ11/teambot/internal/errors"
)

func roster(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("p%02d", i)
	}
	return out
}

func TestGenerate_FiveIntoTwo(t *testing.T) {
	got, err := Generate([]string{"A", "B", "C", "D", "E"}, 2, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := []Team{{"A", "B", "C"}, {"D", "E"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestGenerate_RejectsBadTeamCount(t *testing.T) {
	cases := []struct {
		name      string
		members   []string
		teamCount int
	}{
		{name: "zero teams", members: []string{"A"}, teamCount: 0},
		{name: "negative teams", members: []string{"A", "B"}, teamCount: -1},
		{name: "more teams than members", members: []string{"A", "B"}, teamCount: 3},
		{name: "empty roster", members: nil, teamCount: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Generate(tc.members, tc.teamCount, nil)
			if !errors.Is(err, apperrors.ErrInvalidArgument) {
				t.Fatalf("want ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestGenerate_BalancedPartitionProperty(t *testing.T) {
	seed := int64(7)
	for n := 1; n <= 40; n++ {
		members := roster(n)
		for k := 1; k <= n; k++ {
			for _, s := range []*int64{nil, &seed} {
				got, err := Generate(members, k, s)
				if err != nil {
					t.Fatalf("n=%d k=%d: unexpected err %v", n, k, err)
				}
				if len(got) != k {
					t.Fatalf("n=%d k=%d: got %d teams", n, k, len(got))
				}

				var union []string
				for i, team := range got {
					if len(team) != n/k && len(team) != n/k+1 {
						t.Fatalf("n=%d k=%d: team %d has size %d", n, k, i, len(team))
					}
					if i > 0 && len(team) > len(got[i-1]) {
						t.Fatalf("n=%d k=%d: team %d larger than team %d", n, k, i, i-1)
					}
					union = append(union, team...)
				}
				slices.Sort(union)
				if !slices.Equal(union, members) {
					t.Fatalf("n=%d k=%d: union %v does not match roster", n, k, union)
				}
			}
		}
	}
}

func TestGenerate_SeededIsDeterministic(t *testing.T) {
	members := roster(11)
	seed := int64(424242)

	first, err := Generate(members, 3, &seed)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	second, err := Generate(members, 3, &seed)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if fmt.Sprint(first) != fmt.Sprint(second) {
		t.Fatalf("same seed gave different partitions:\n%v\n%v", first, second)
	}

	other := int64(1)
	third, _ := Generate(members, 3, &other)
	unshuffled, _ := Generate(members, 3, nil)
	if fmt.Sprint(third) == fmt.Sprint(first) && fmt.Sprint(first) == fmt.Sprint(unshuffled) {
		t.Fatalf("seeds do not change the order at all")
	}
}

func TestGenerate_DoesNotMutateInput(t *testing.T) {
	members := roster(6)
	before := slices.Clone(members)
	seed := int64(3)

	if _, err := Generate(members, 2, &seed); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !slices.Equal(before, members) {
		t.Fatalf("input mutated: %v", members)
	}
}

func TestSizePlan(t *testing.T) {
	cases := []struct {
		n, k int
		want []int
	}{
		{n: 5, k: 2, want: []int{3, 2}},
		{n: 7, k: 3, want: []int{3, 2, 2}},
		{n: 6, k: 3, want: []int{2, 2, 2}},
		{n: 4, k: 4, want: []int{1, 1, 1, 1}},
	}

	for _, tc := range cases {
		if got := SizePlan(tc.n, tc.k); !slices.Equal(got, tc.want) {
			t.Fatalf("SizePlan(%d, %d): got %v, want %v", tc.n, tc.k, got, tc.want)
		}
	}
}
