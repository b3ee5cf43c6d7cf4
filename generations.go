package diagram

import "sort"

// GenerationSet is an immutable set of generation indices.
type GenerationSet struct {
	members map[int]struct{}
}

func NewGenerationSet(generations ...int) GenerationSet {
	m := make(map[int]struct{}, len(generations))
	for _, g := range generations {
		m[g] = struct{}{}
	}
	return GenerationSet{members: m}
}

func (s GenerationSet) Contains(g int) bool {
	_, ok := s.members[g]
	return ok
}

func (s GenerationSet) Len() int {
	return len(s.members)
}

// Sorted returns the members in ascending order.
func (s GenerationSet) Sorted() []int {
	out := make([]int, 0, len(s.members))
	for g := range s.members {
		out = append(out, g)
	}
	sort.Ints(out)
	return out
}

// Intersect returns a new set holding the members present in both sets.
func (s GenerationSet) Intersect(other GenerationSet) GenerationSet {
	small, large := s, other
	if small.Len() > large.Len() {
		small, large = large, small
	}
	m := make(map[int]struct{}, small.Len())
	for g := range small.members {
		if large.Contains(g) {
			m[g] = struct{}{}
		}
	}
	return GenerationSet{members: m}
}

// CommonGenerations folds the runs in order, starting from the first run's
// generations and intersecting with each following run. No runs, or any run
// without records, yields the empty set.
func CommonGenerations(runs []*Run) GenerationSet {
	if len(runs) == 0 {
		return NewGenerationSet()
	}
	common := runs[0].DistinctGenerations()
	for _, r := range runs[1:] {
		common = common.Intersect(r.DistinctGenerations())
	}
	logger.WithField("stage", StageIntersect).
		WithField("runs", len(runs)).
		WithField("generations", common.Len()).
		Debug("computed common generations")
	return common
}
